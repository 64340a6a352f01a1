package rpc

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetOwnedNFTs lists the NFTs an account currently owns.
func (c *Client) GetOwnedNFTs(ctx context.Context, address, cursor string, size int) (*TokensPage, error) {
	q := url.Values{}
	q.Set("kind", "nft")
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page TokensPage
	if err := c.http.GetJSON(ctx, "/v2/account/"+url.PathEscape(address)+"/token", q, &page); err != nil {
		return nil, fmt.Errorf("getOwnedNFTs: %w", err)
	}
	return &page, nil
}

// GetNFTContract returns the metadata of an NFT contract.
func (c *Client) GetNFTContract(ctx context.Context, address string) (*Contract, error) {
	var contract Contract
	if err := c.http.GetJSON(ctx, "/v2/contract/nft/"+url.PathEscape(address), nil, &contract); err != nil {
		return nil, fmt.Errorf("getNFTContract: %w", err)
	}
	return &contract, nil
}
