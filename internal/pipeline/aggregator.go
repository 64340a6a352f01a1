package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline/cursor"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/tracing"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrNoChains is returned when the aggregator is built without chains.
var ErrNoChains = errors.New("pipeline: no chains configured")

type Config struct {
	// Chains is the configured iteration order. Each wallet visits the
	// chains of its family in this order.
	Chains          []model.Chain
	DefaultPageSize int
	MaxPageSize     int
}

// HoldingsPage is one page of a user's holdings.
type HoldingsPage struct {
	Collections []model.NormalizedCollection `json:"collections"`
	// NextCursor is empty when there is nothing left to page through.
	NextCursor string `json:"nextCursor"`
	LiveData   bool   `json:"liveData"`
}

// Aggregator pages through a user's holdings across wallets, chains and
// provider pages, serving stored holdings first when it can.
type Aggregator struct {
	cfg      Config
	wallets  store.WalletDirectory
	holdings store.HoldingsStore
	router   *chain.Router
	codec    *cursor.Codec
	health   *HealthRegistry
	tracer   trace.Tracer
	logger   *slog.Logger
}

func NewAggregator(
	cfg Config,
	wallets store.WalletDirectory,
	holdings store.HoldingsStore,
	router *chain.Router,
	codec *cursor.Codec,
	logger *slog.Logger,
) (*Aggregator, error) {
	if len(cfg.Chains) == 0 {
		return nil, ErrNoChains
	}
	for _, c := range cfg.Chains {
		if _, err := router.Route(c); err != nil {
			return nil, fmt.Errorf("configured chain %s: %w", c, err)
		}
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = MaxPageSize
	}
	return &Aggregator{
		cfg:      cfg,
		wallets:  wallets,
		holdings: holdings,
		router:   router,
		codec:    codec,
		health:   NewHealthRegistry(cfg.Chains),
		tracer:   tracing.Tracer("pipeline"),
		logger:   logger.With("component", "aggregator"),
	}, nil
}

// FetchPage returns up to pageSize collections for the user, resuming at
// cursorToken. An empty token starts from the beginning. A token that does
// not decode is an error; the iteration is never silently restarted.
func (a *Aggregator) FetchPage(ctx context.Context, userID uuid.UUID, cursorToken string, pageSize int) (page *HoldingsPage, err error) {
	ctx, span := a.tracer.Start(ctx, "pipeline.FetchPage",
		trace.WithAttributes(attribute.String("user_id", userID.String())),
	)
	defer func() { tracing.EndSpan(span, err) }()

	pageSize = a.clampPageSize(pageSize)

	var cur cursor.Cursor
	if cursorToken != "" {
		cur, err = a.codec.Decode(cursorToken)
		if err != nil {
			return nil, err
		}
	}

	wallets, err := a.wallets.ListWallets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets of %s: %w", userID, err)
	}

	if !cur.LiveData {
		page, err := a.fetchCached(ctx, wallets, cur, pageSize)
		if err != nil {
			return nil, err
		}
		if page != nil {
			metrics.PipelinePagesServed.WithLabelValues("cached").Inc()
			return page, nil
		}
		cur = cursor.Cursor{}
	}

	page, err = a.fetchLive(ctx, wallets, cur, pageSize)
	if err != nil {
		return nil, err
	}
	metrics.PipelinePagesServed.WithLabelValues("live").Inc()
	span.SetAttributes(attribute.Int("collections", len(page.Collections)))
	return page, nil
}

// Health returns the per-chain provider health observed by the aggregator.
func (a *Aggregator) Health() *HealthRegistry {
	return a.health
}

func (a *Aggregator) clampPageSize(n int) int {
	if n <= 0 {
		return a.cfg.DefaultPageSize
	}
	if n > a.cfg.MaxPageSize {
		return a.cfg.MaxPageSize
	}
	return n
}

// fetchCached serves from stored holdings in wallet linkage order. It returns
// nil when a first request finds nothing stored, so the caller falls through
// to live data.
func (a *Aggregator) fetchCached(ctx context.Context, wallets []model.Wallet, cur cursor.Cursor, pageSize int) (*HoldingsPage, error) {
	if len(wallets) == 0 {
		return nil, nil
	}
	// One extra group tells whether another page follows.
	stored, err := a.holdings.ListHoldingsByOwners(ctx, model.Addresses(wallets), cur.ItemOffset, pageSize+1)
	if err != nil {
		return nil, fmt.Errorf("list stored holdings: %w", err)
	}
	if len(stored) == 0 && cur.ItemOffset == 0 {
		return nil, nil
	}

	page := &HoldingsPage{Collections: stored}
	if len(stored) > pageSize {
		page.Collections = stored[:pageSize]
		token, err := a.codec.Encode(cursor.Cursor{ItemOffset: cur.ItemOffset + pageSize})
		if err != nil {
			return nil, err
		}
		page.NextCursor = token
	}
	if page.Collections == nil {
		page.Collections = []model.NormalizedCollection{}
	}
	return page, nil
}

// position is a point in the wallet × chain × provider page iteration.
type position struct {
	wallet int
	chain  int
	token  string
	offset int
}

func (a *Aggregator) fetchLive(ctx context.Context, wallets []model.Wallet, cur cursor.Cursor, pageSize int) (*HoldingsPage, error) {
	pos := position{wallet: cur.WalletIndex, chain: cur.ChainIndex, token: cur.ProviderToken, offset: cur.ItemOffset}
	page := &HoldingsPage{Collections: []model.NormalizedCollection{}, LiveData: true}

	for pos.wallet < len(wallets) {
		wallet := wallets[pos.wallet]
		if pos.chain >= len(a.cfg.Chains) {
			pos = position{wallet: pos.wallet + 1}
			continue
		}
		c := a.cfg.Chains[pos.chain]
		if !wallet.SupportsChain(c) {
			pos = position{wallet: pos.wallet, chain: pos.chain + 1}
			continue
		}

		remaining := pageSize - len(page.Collections)
		res, err := a.fetchProviderPage(ctx, wallet, c, pos.token, pos.offset, remaining)
		if err != nil {
			return nil, err
		}
		page.Collections = append(page.Collections, res.Collections...)
		pos = a.advance(pos, res)

		if len(page.Collections) >= pageSize {
			break
		}
	}

	if pos.wallet >= len(wallets) {
		return page, nil
	}
	token, err := a.codec.Encode(cursor.Cursor{
		WalletIndex:   pos.wallet,
		ChainIndex:    pos.chain,
		ProviderToken: pos.token,
		ItemOffset:    pos.offset,
		LiveData:      true,
	})
	if err != nil {
		return nil, err
	}
	page.NextCursor = token
	return page, nil
}

// advance moves past the collections res consumed: the rest of the same
// provider page, then the next provider page, then the next chain.
func (a *Aggregator) advance(pos position, res *chain.Page) position {
	consumed := pos.offset + len(res.Collections)
	switch {
	case len(res.Collections) > 0 && consumed < res.PageSize:
		pos.offset = consumed
	case res.HasMore():
		pos.token, pos.offset = res.NextPageToken, 0
	default:
		pos = position{wallet: pos.wallet, chain: pos.chain + 1}
	}
	if pos.chain >= len(a.cfg.Chains) {
		pos = position{wallet: pos.wallet + 1}
	}
	return pos
}

func (a *Aggregator) fetchProviderPage(ctx context.Context, wallet model.Wallet, c model.Chain, token string, offset, limit int) (*chain.Page, error) {
	adapter, err := a.router.Route(c)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := adapter.FetchPage(ctx, chain.PageRequest{
		Wallet:    wallet,
		Chain:     c,
		PageToken: token,
		Offset:    offset,
		Limit:     limit,
	})
	health := a.health.For(c)
	if err != nil {
		if ctx.Err() == nil && health.RecordFailure() {
			a.logger.Warn("chain provider unhealthy", "chain", c, "provider", adapter.Provider(), "error", err)
		}
		return nil, fmt.Errorf("fetch %s holdings of %s: %w", c, wallet.PublicAddress, err)
	}
	if health.RecordSuccess(time.Since(start)) {
		a.logger.Info("chain provider recovered", "chain", c, "provider", adapter.Provider())
	}
	metrics.PipelineProviderPages.WithLabelValues(string(c)).Inc()
	return res, nil
}

// ChainHoldings is everything collected for one wallet on one chain.
type ChainHoldings struct {
	Chain       model.Chain
	Collections []model.NormalizedCollection
	// Complete is false when the page cap stopped collection while the
	// provider still had pages, or when a provider page was truncated.
	Complete bool
}

// CollectWallet fetches up to maxPages provider pages per chain for wallet.
// Collections split across provider pages are merged and token ids are
// deduplicated. A maxPages of 0 means no cap.
func (a *Aggregator) CollectWallet(ctx context.Context, wallet model.Wallet, maxPages int) ([]ChainHoldings, error) {
	var out []ChainHoldings
	for _, c := range a.cfg.Chains {
		if !wallet.SupportsChain(c) {
			continue
		}
		holdings := ChainHoldings{Chain: c}
		index := make(map[string]int)
		seen := make(map[string]bool)

		token := ""
		truncated := false
		for pages := 0; ; pages++ {
			if maxPages > 0 && pages >= maxPages {
				a.logger.Info("page cap reached, chain partially collected",
					"wallet", wallet.PublicAddress,
					"chain", c,
					"max_pages", maxPages,
				)
				break
			}
			res, err := a.fetchProviderPage(ctx, wallet, c, token, 0, 0)
			if err != nil {
				return nil, err
			}
			truncated = truncated || res.Truncated
			for _, col := range res.Collections {
				i, ok := index[col.TokenAddress]
				if !ok {
					i = len(holdings.Collections)
					index[col.TokenAddress] = i
					merged := col
					merged.Tokens = nil
					holdings.Collections = append(holdings.Collections, merged)
				}
				for _, t := range col.Tokens {
					if seen[t.ID] {
						continue
					}
					seen[t.ID] = true
					holdings.Collections[i].Tokens = append(holdings.Collections[i].Tokens, t)
				}
			}
			if !res.HasMore() {
				holdings.Complete = !truncated
				break
			}
			token = res.NextPageToken
		}
		out = append(out, holdings)
	}
	return out, nil
}
