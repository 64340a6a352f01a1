package rpc

// token-history response (GET /v2/account/{address}/token)
type TokensPage struct {
	Items  []OwnedToken `json:"items"`
	Cursor string       `json:"cursor"`
}

type OwnedToken struct {
	Kind            string      `json:"kind"`
	ContractAddress string      `json:"contractAddress"`
	UpdatedAt       int64       `json:"updatedAt"`
	Extras          TokenExtras `json:"extras"`
}

type TokenExtras struct {
	TokenID  string `json:"tokenId"`
	TokenURI string `json:"tokenUri"`
}

// contract metadata response (GET /v2/contract/nft/{address})
type Contract struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply string `json:"totalSupply"`
	Status      string `json:"status"`
}
