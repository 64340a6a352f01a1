// Package evm serves EVM-family chains through Moralis. Holdings are fetched
// in two phases because the provider prices them as separate endpoints:
// list the wallet's collections, then populate each returned collection with
// the wallet's tokens.
package evm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/evm/rpc"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/gateway"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

// Endpoint names as published by the provider's weight table.
const (
	EndpointCollections = "getWalletNFTCollections"
	EndpointNFTs        = "getWalletNFTs"
)

const (
	defaultCollectionPageLimit = 25
	defaultTokenPageLimit      = 100
	defaultPopulatePages       = 3
)

// DefaultWeights seeds the weight table until the provider's own table has
// been fetched.
var DefaultWeights = map[string]int{
	EndpointCollections: 5,
	EndpointNFTs:        5,
}

// chainIDs maps chains to the provider's chain identifiers.
var chainIDs = map[model.Chain]string{
	model.ChainEthereum: "eth",
	model.ChainPolygon:  "polygon",
	model.ChainBase:     "base",
	model.ChainArbitrum: "arbitrum",
	model.ChainBSC:      "bsc",
}

// SupportedChains returns the chains this adapter can serve.
func SupportedChains() []model.Chain {
	return []model.Chain{model.ChainEthereum, model.ChainPolygon, model.ChainBase, model.ChainArbitrum, model.ChainBSC}
}

// Config tunes page sizes and populate depth.
type Config struct {
	CollectionPageLimit int
	TokenPageLimit      int
	// PopulatePages caps the token pages fetched per collection.
	PopulatePages int
	// SkipSpam drops collections the provider flags as possible spam.
	SkipSpam bool
}

type Adapter struct {
	client  rpc.RPCClient
	gateway *gateway.Gateway
	cfg     Config
	logger  *slog.Logger
}

var _ chain.HoldingsAdapter = (*Adapter)(nil)

func NewAdapter(client rpc.RPCClient, gw *gateway.Gateway, cfg Config, logger *slog.Logger) *Adapter {
	if cfg.CollectionPageLimit <= 0 {
		cfg.CollectionPageLimit = defaultCollectionPageLimit
	}
	if cfg.TokenPageLimit <= 0 {
		cfg.TokenPageLimit = defaultTokenPageLimit
	}
	if cfg.PopulatePages <= 0 {
		cfg.PopulatePages = defaultPopulatePages
	}
	return &Adapter{
		client:  client,
		gateway: gw,
		cfg:     cfg,
		logger:  logger.With("component", "evm_adapter"),
	}
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderMoralis
}

func (a *Adapter) FetchPage(ctx context.Context, req chain.PageRequest) (*chain.Page, error) {
	chainID, ok := chainIDs[req.Chain]
	if !ok {
		return nil, fmt.Errorf("moralis %s: %w", req.Chain, chain.ErrNotImplemented)
	}
	address := req.Wallet.PublicAddress

	listing, err := gateway.Call(ctx, a.gateway, EndpointCollections, func(ctx context.Context) (*rpc.CollectionsPage, error) {
		return a.client.GetWalletNFTCollections(ctx, address, chainID, req.PageToken, a.cfg.CollectionPageLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("list collections %s/%s: %w", req.Chain, address, err)
	}

	collections := make([]rpc.NFTCollection, 0, len(listing.Result))
	for _, c := range listing.Result {
		if a.cfg.SkipSpam && c.PossibleSpam {
			continue
		}
		collections = append(collections, c)
	}

	window := chain.Window(collections, req.Offset, req.Limit)
	out := make([]model.NormalizedCollection, 0, len(window))
	truncated := false
	for _, c := range window {
		tokens, complete, err := a.populate(ctx, req.Chain, chainID, address, c.TokenAddress)
		if err != nil {
			return nil, err
		}
		truncated = truncated || !complete
		out = append(out, model.NormalizedCollection{
			ChainSymbol:    req.Chain.Symbol(),
			Chain:          req.Chain,
			TokenAddress:   strings.ToLower(c.TokenAddress),
			Name:           c.Name,
			Symbol:         c.Symbol,
			CollectionLogo: c.CollectionLogo,
			Tokens:         tokens,
		})
	}

	return &chain.Page{
		Collections:   out,
		PageSize:      len(collections),
		NextPageToken: listing.Cursor,
		Truncated:     truncated,
	}, nil
}

// populate pages through the wallet's tokens of one collection, up to the
// configured depth. Each page is a separately weighted call. complete is
// false when the depth ran out before the provider's last page.
func (a *Adapter) populate(ctx context.Context, c model.Chain, chainID, address, tokenAddress string) (tokens []model.NormalizedToken, complete bool, err error) {
	cursor := ""
	for page := 0; page < a.cfg.PopulatePages; page++ {
		res, err := gateway.Call(ctx, a.gateway, EndpointNFTs, func(ctx context.Context) (*rpc.NFTsPage, error) {
			return a.client.GetWalletNFTs(ctx, address, chainID, []string{tokenAddress}, cursor, a.cfg.TokenPageLimit)
		})
		if err != nil {
			return nil, false, fmt.Errorf("populate %s/%s: %w", c, tokenAddress, err)
		}
		for _, nft := range res.Result {
			tokens = append(tokens, normalizeNFT(c, address, nft))
		}
		if res.Cursor == "" {
			return tokens, true, nil
		}
		cursor = res.Cursor
	}

	a.logger.Info("populate depth reached, collection truncated",
		"chain", c,
		"collection", tokenAddress,
		"tokens", len(tokens),
	)
	return tokens, false, nil
}

func normalizeNFT(c model.Chain, owner string, nft rpc.NFT) model.NormalizedToken {
	name, image := "", ""
	if nft.NormalizedMetadata != nil {
		name = nft.NormalizedMetadata.Name
		image = nft.NormalizedMetadata.Image
	}
	if name == "" {
		name = strings.TrimSpace(nft.Name + " #" + nft.TokenID)
	}
	return model.NormalizedToken{
		ID:                 model.TokenKey(c, nft.TokenAddress, nft.TokenID),
		TokenID:            nft.TokenID,
		Name:               name,
		ImageURL:           image,
		OwnerWalletAddress: strings.ToLower(owner),
	}
}
