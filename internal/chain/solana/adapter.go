// Package solana serves Solana holdings through the DAS getAssetsByOwner API.
// Assets are grouped into collections by their collection grouping; assets
// without one are resolved through the grouping lookup and, failing that,
// stand as their own single-item collection.
package solana

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/cache"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/gateway"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/solana/rpc"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

const (
	EndpointAssetsByOwner = "getAssetsByOwner"
	EndpointGetToken      = "getToken"

	defaultPageLimit = 100
)

type Config struct {
	// PageLimit is the DAS page size.
	PageLimit int
}

// CollectionRef is the cached result of a grouping lookup. An empty Address
// records that the mint belongs to no collection.
type CollectionRef struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Image   string `json:"image"`
}

type Adapter struct {
	das       rpc.RPCClient
	grouping  rpc.GroupingClient
	dasGW     *gateway.Gateway
	lookupGW  *gateway.Gateway
	refs      *cache.Tiered[CollectionRef]
	pageLimit int
	logger    *slog.Logger
}

var _ chain.HoldingsAdapter = (*Adapter)(nil)

// NewAdapter wires the DAS client and the grouping lookup, each behind its
// own gateway. grouping may be nil, in which case ungrouped assets always
// become their own collection.
func NewAdapter(
	das rpc.RPCClient,
	dasGW *gateway.Gateway,
	grouping rpc.GroupingClient,
	lookupGW *gateway.Gateway,
	refs *cache.Tiered[CollectionRef],
	cfg Config,
	logger *slog.Logger,
) *Adapter {
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = defaultPageLimit
	}
	return &Adapter{
		das:       das,
		grouping:  grouping,
		dasGW:     dasGW,
		lookupGW:  lookupGW,
		refs:      refs,
		pageLimit: pageLimit,
		logger:    logger.With("component", "solana_adapter"),
	}
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderDAS
}

func (a *Adapter) FetchPage(ctx context.Context, req chain.PageRequest) (*chain.Page, error) {
	if req.Chain != model.ChainSolana {
		return nil, fmt.Errorf("das %s: %w", req.Chain, chain.ErrNotImplemented)
	}

	pageNum := 1
	if req.PageToken != "" {
		n, err := strconv.Atoi(req.PageToken)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid das page token %q", req.PageToken)
		}
		pageNum = n
	}
	owner := req.Wallet.PublicAddress

	res, err := gateway.Call(ctx, a.dasGW, EndpointAssetsByOwner, func(ctx context.Context) (*rpc.AssetsPage, error) {
		return a.das.GetAssetsByOwner(ctx, owner, pageNum, a.pageLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("get assets %s: %w", owner, err)
	}

	groups := make([]*model.NormalizedCollection, 0)
	index := make(map[string]*model.NormalizedCollection)
	for _, asset := range res.Items {
		if asset.Burnt {
			continue
		}
		ref, err := a.collectionOf(ctx, asset)
		if err != nil {
			return nil, err
		}
		col, ok := index[ref.Address]
		if !ok {
			col = &model.NormalizedCollection{
				ChainSymbol:    model.ChainSolana.Symbol(),
				Chain:          model.ChainSolana,
				TokenAddress:   ref.Address,
				Name:           ref.Name,
				Symbol:         ref.Symbol,
				CollectionLogo: ref.Image,
			}
			index[ref.Address] = col
			groups = append(groups, col)
		}
		col.Tokens = append(col.Tokens, model.NormalizedToken{
			ID:                 model.TokenKey(model.ChainSolana, ref.Address, asset.ID),
			TokenID:            asset.ID,
			Name:               asset.Content.Metadata.Name,
			ImageURL:           asset.ImageURL(),
			OwnerWalletAddress: owner,
		})
	}

	window := chain.Window(groups, req.Offset, req.Limit)
	out := make([]model.NormalizedCollection, 0, len(window))
	for _, col := range window {
		out = append(out, *col)
	}

	page := &chain.Page{Collections: out, PageSize: len(groups)}
	if len(res.Items) >= a.pageLimit {
		page.NextPageToken = strconv.Itoa(pageNum + 1)
	}
	return page, nil
}

// collectionOf resolves the collection an asset belongs to. An asset the
// lookup knows no collection for is its own collection. A failed lookup is
// an error: falling back would change the asset's token id.
func (a *Adapter) collectionOf(ctx context.Context, asset rpc.Asset) (CollectionRef, error) {
	if g, ok := asset.CollectionOf(); ok {
		ref := CollectionRef{Address: g.GroupValue}
		if g.CollectionMetadata != nil {
			ref.Name = g.CollectionMetadata.Name
			ref.Symbol = g.CollectionMetadata.Symbol
			ref.Image = g.CollectionMetadata.Image
		}
		return ref, nil
	}

	self := CollectionRef{
		Address: asset.ID,
		Name:    asset.Content.Metadata.Name,
		Symbol:  asset.Content.Metadata.Symbol,
		Image:   asset.ImageURL(),
	}
	if a.grouping == nil || a.refs == nil {
		return self, nil
	}

	ref, err := a.refs.GetOrLoad(ctx, asset.ID, func(ctx context.Context) (CollectionRef, error) {
		return a.lookup(ctx, asset.ID)
	})
	if err != nil {
		a.logger.Warn("grouping lookup failed", "mint", asset.ID, "error", err)
		return CollectionRef{}, fmt.Errorf("resolve collection of %s: %w", asset.ID, err)
	}
	if ref.Address == "" {
		return self, nil
	}
	return ref, nil
}

func (a *Adapter) lookup(ctx context.Context, mint string) (CollectionRef, error) {
	info, err := gateway.Call(ctx, a.lookupGW, EndpointGetToken, func(ctx context.Context) (*rpc.TokenInfo, error) {
		return a.grouping.GetToken(ctx, mint)
	})
	if err != nil {
		return CollectionRef{}, err
	}
	if info == nil || info.Collection == nil {
		return CollectionRef{}, nil
	}
	return CollectionRef{
		Address: info.Collection.Address,
		Name:    info.Collection.Name,
		Symbol:  info.Collection.Symbol,
		Image:   info.Collection.Image,
	}, nil
}
