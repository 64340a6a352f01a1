// Package klaytn serves Klaytn holdings through the KAS token-history API.
package klaytn

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/cache"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/gateway"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/klaytn/rpc"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
)

const (
	EndpointOwnedNFTs   = "getOwnedNFTs"
	EndpointNFTContract = "getNFTContract"

	defaultPageLimit        = 100
	defaultContractCacheTTL = 24 * time.Hour
	contractCacheSize       = 4096
)

type Config struct {
	// PageLimit is the KAS page size.
	PageLimit int
	// ContractCacheTTL bounds how long contract metadata is reused.
	ContractCacheTTL time.Duration
}

type Adapter struct {
	client    rpc.RPCClient
	gw        *gateway.Gateway
	contracts *cache.LRU[string, rpc.Contract]
	pageLimit int
	logger    *slog.Logger
}

var _ chain.HoldingsAdapter = (*Adapter)(nil)

func NewAdapter(client rpc.RPCClient, gw *gateway.Gateway, cfg Config, logger *slog.Logger) *Adapter {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	if cfg.ContractCacheTTL <= 0 {
		cfg.ContractCacheTTL = defaultContractCacheTTL
	}
	return &Adapter{
		client:    client,
		gw:        gw,
		contracts: cache.NewLRU[string, rpc.Contract](contractCacheSize, cfg.ContractCacheTTL),
		pageLimit: cfg.PageLimit,
		logger:    logger.With("component", "klaytn_adapter"),
	}
}

func (a *Adapter) Provider() model.Provider {
	return model.ProviderKAS
}

func (a *Adapter) FetchPage(ctx context.Context, req chain.PageRequest) (*chain.Page, error) {
	if req.Chain != model.ChainKlaytn {
		return nil, fmt.Errorf("kas %s: %w", req.Chain, chain.ErrNotImplemented)
	}
	owner := req.Wallet.PublicAddress

	res, err := gateway.Call(ctx, a.gw, EndpointOwnedNFTs, func(ctx context.Context) (*rpc.TokensPage, error) {
		return a.client.GetOwnedNFTs(ctx, owner, req.PageToken, a.pageLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("get owned nfts %s: %w", owner, err)
	}

	groups := make([]*model.NormalizedCollection, 0)
	index := make(map[string]*model.NormalizedCollection)
	for _, item := range res.Items {
		if item.Kind != "" && item.Kind != "nft" {
			continue
		}
		addr := strings.ToLower(item.ContractAddress)
		col, ok := index[addr]
		if !ok {
			col = &model.NormalizedCollection{
				ChainSymbol:  model.ChainKlaytn.Symbol(),
				Chain:        model.ChainKlaytn,
				TokenAddress: addr,
			}
			index[addr] = col
			groups = append(groups, col)
		}
		tokenID := decimalTokenID(item.Extras.TokenID)
		col.Tokens = append(col.Tokens, model.NormalizedToken{
			ID:                 model.TokenKey(model.ChainKlaytn, addr, tokenID),
			TokenID:            tokenID,
			OwnerWalletAddress: owner,
		})
	}

	window := chain.Window(groups, req.Offset, req.Limit)
	out := make([]model.NormalizedCollection, 0, len(window))
	for _, col := range window {
		// Metadata is only fetched for collections that are returned.
		if contract, ok := a.contract(ctx, col.TokenAddress); ok {
			col.Name = contract.Name
			col.Symbol = contract.Symbol
			for i := range col.Tokens {
				col.Tokens[i].Name = contract.Name
			}
		}
		out = append(out, *col)
	}

	return &chain.Page{
		Collections:   out,
		PageSize:      len(groups),
		NextPageToken: res.Cursor,
	}, nil
}

// contract returns cached contract metadata. Lookup failures leave the
// collection unnamed and are retried on the next page.
func (a *Adapter) contract(ctx context.Context, address string) (rpc.Contract, bool) {
	if c, ok := a.contracts.Get(address); ok {
		return c, true
	}
	c, err := gateway.Call(ctx, a.gw, EndpointNFTContract, func(ctx context.Context) (*rpc.Contract, error) {
		return a.client.GetNFTContract(ctx, address)
	})
	if err != nil || c == nil {
		a.logger.Warn("contract metadata lookup failed", "contract", address, "error", err)
		return rpc.Contract{}, false
	}
	a.contracts.Put(address, *c)
	return *c, true
}

// decimalTokenID converts the hex token id KAS reports to decimal. Values
// that are not hex quantities are kept as reported.
func decimalTokenID(raw string) string {
	if !strings.HasPrefix(raw, "0x") && !strings.HasPrefix(raw, "0X") {
		return raw
	}
	n, ok := new(big.Int).SetString(raw[2:], 16)
	if !ok {
		return raw
	}
	return n.String()
}
