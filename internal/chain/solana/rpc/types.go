package rpc

// getAssetsByOwner response
type AssetsPage struct {
	Total int     `json:"total"`
	Limit int     `json:"limit"`
	Page  int     `json:"page"`
	Items []Asset `json:"items"`
}

type Asset struct {
	ID        string       `json:"id"`
	Interface string       `json:"interface"`
	Content   AssetContent `json:"content"`
	Grouping  []Grouping   `json:"grouping"`
	Ownership Ownership    `json:"ownership"`
	Burnt     bool         `json:"burnt"`
}

type AssetContent struct {
	Metadata AssetMetadata `json:"metadata"`
	Links    AssetLinks    `json:"links"`
	Files    []AssetFile   `json:"files"`
}

type AssetMetadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type AssetLinks struct {
	Image string `json:"image"`
}

type AssetFile struct {
	URI  string `json:"uri"`
	Mime string `json:"mime"`
}

type Grouping struct {
	GroupKey           string              `json:"group_key"`
	GroupValue         string              `json:"group_value"`
	CollectionMetadata *CollectionMetadata `json:"collection_metadata,omitempty"`
}

type CollectionMetadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Image  string `json:"image"`
}

type Ownership struct {
	Owner string `json:"owner"`
}

// CollectionOf returns the collection grouping of the asset, if any.
func (a Asset) CollectionOf() (Grouping, bool) {
	for _, g := range a.Grouping {
		if g.GroupKey == "collection" && g.GroupValue != "" {
			return g, true
		}
	}
	return Grouping{}, false
}

// ImageURL prefers the content link and falls back to the first image file.
func (a Asset) ImageURL() string {
	if a.Content.Links.Image != "" {
		return a.Content.Links.Image
	}
	for _, f := range a.Content.Files {
		if f.URI != "" {
			return f.URI
		}
	}
	return ""
}

// grouping lookup response (GET /v2/tokens/{mint})
type TokenInfo struct {
	Mint       string           `json:"mint"`
	Name       string           `json:"name"`
	Symbol     string           `json:"symbol"`
	Collection *TokenCollection `json:"collection"`
}

type TokenCollection struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Image   string `json:"image"`
}
