package rpc

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetWalletNFTCollections lists the NFT collections a wallet holds on a chain.
func (c *Client) GetWalletNFTCollections(ctx context.Context, address, chainID, cursor string, limit int) (*CollectionsPage, error) {
	q := url.Values{}
	q.Set("chain", chainID)
	q.Set("exclude_spam", "false")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page CollectionsPage
	if err := c.http.GetJSON(ctx, "/"+url.PathEscape(address)+"/nft/collections", q, &page); err != nil {
		return nil, fmt.Errorf("getWalletNFTCollections: %w", err)
	}
	return &page, nil
}

// GetWalletNFTs lists a wallet's NFTs, optionally filtered to tokenAddresses.
func (c *Client) GetWalletNFTs(ctx context.Context, address, chainID string, tokenAddresses []string, cursor string, limit int) (*NFTsPage, error) {
	q := url.Values{}
	q.Set("chain", chainID)
	q.Set("format", "decimal")
	q.Set("normalizeMetadata", "true")
	q.Set("media_items", "false")
	for i, addr := range tokenAddresses {
		q.Set(fmt.Sprintf("token_addresses[%d]", i), addr)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var page NFTsPage
	if err := c.http.GetJSON(ctx, "/"+url.PathEscape(address)+"/nft", q, &page); err != nil {
		return nil, fmt.Errorf("getWalletNFTs: %w", err)
	}
	return &page, nil
}

// EndpointWeights returns the compute-unit cost of every endpoint, keyed by
// endpoint name.
func (c *Client) EndpointWeights(ctx context.Context) (map[string]int, error) {
	var items []EndpointWeight
	if err := c.http.GetJSON(ctx, "/info/endpointWeights", nil, &items); err != nil {
		return nil, fmt.Errorf("endpointWeights: %w", err)
	}
	out := make(map[string]int, len(items))
	for _, item := range items {
		if item.Endpoint == "" {
			continue
		}
		out[item.Endpoint] = int(item.RateLimitCost)
	}
	return out, nil
}
