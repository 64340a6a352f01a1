package rpc

import (
	"context"
	"fmt"
	"net/url"
)

// GetAssetsByOwner returns one page of assets owned by owner. Pages are
// 1-based.
func (c *Client) GetAssetsByOwner(ctx context.Context, owner string, page, limit int) (*AssetsPage, error) {
	params := map[string]any{
		"ownerAddress": owner,
		"page":         page,
		"limit":        limit,
		"displayOptions": map[string]bool{
			"showCollectionMetadata": true,
		},
	}

	var result AssetsPage
	if err := c.rpc.Call(ctx, "getAssetsByOwner", params, &result); err != nil {
		return nil, fmt.Errorf("getAssetsByOwner: %w", err)
	}
	return &result, nil
}

// GetToken looks up a mint's token record, including its collection.
func (g *GroupingLookup) GetToken(ctx context.Context, mint string) (*TokenInfo, error) {
	var info TokenInfo
	if err := g.http.GetJSON(ctx, "/v2/tokens/"+url.PathEscape(mint), nil, &info); err != nil {
		return nil, fmt.Errorf("get token %s: %w", mint, err)
	}
	return &info, nil
}
