package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// getWalletNFTCollections response
type CollectionsPage struct {
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Cursor   string          `json:"cursor"`
	Result   []NFTCollection `json:"result"`
}

type NFTCollection struct {
	TokenAddress       string `json:"token_address"`
	ContractType       string `json:"contract_type"`
	Name               string `json:"name"`
	Symbol             string `json:"symbol"`
	PossibleSpam       bool   `json:"possible_spam"`
	VerifiedCollection bool   `json:"verified_collection"`
	CollectionLogo     string `json:"collection_logo"`
}

// getWalletNFTs response
type NFTsPage struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Cursor   string `json:"cursor"`
	Result   []NFT  `json:"result"`
}

type NFT struct {
	TokenAddress       string              `json:"token_address"`
	TokenID            string              `json:"token_id"`
	OwnerOf            string              `json:"owner_of"`
	Name               string              `json:"name"`
	Symbol             string              `json:"symbol"`
	ContractType       string              `json:"contract_type"`
	NormalizedMetadata *NormalizedMetadata `json:"normalized_metadata"`
}

type NormalizedMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// /info/endpointWeights response item
type EndpointWeight struct {
	Endpoint      string  `json:"endpoint"`
	Path          string  `json:"path"`
	RateLimitCost FlexInt `json:"rateLimitCost"`
	Price         FlexInt `json:"price"`
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flex int %q: %w", string(data), err)
	}
	*f = FlexInt(v)
	return nil
}
