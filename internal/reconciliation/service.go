package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/alert"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/scheduler"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/tracing"
)

const (
	DefaultMaxPages      = 3
	DefaultWorkers       = 4
	DefaultSweepInterval = 24 * time.Hour

	SweepJobName = "holdings-sweep"
)

type Config struct {
	// MaxPages caps provider pages per chain per wallet. Holdings beyond the
	// cap are picked up by later sweeps only if the provider reorders them.
	MaxPages      int
	Workers       int
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Collector fetches everything a wallet currently holds.
type Collector interface {
	CollectWallet(ctx context.Context, wallet model.Wallet, maxPages int) ([]pipeline.ChainHoldings, error)
}

// WalletResult counts the writes of one wallet reconciliation. Updated is the
// number of tokens whose freshness timestamp was touched.
type WalletResult struct {
	WalletID           uuid.UUID `json:"wallet_id"`
	Address            string    `json:"address"`
	Created            int       `json:"created"`
	Updated            int       `json:"updated"`
	Deleted            int       `json:"deleted"`
	CollectionsCreated int       `json:"collections_created"`
	// Truncated lists chains collected only in part, so nothing was deleted.
	Truncated []model.Chain `json:"truncated,omitempty"`
}

type WalletFailure struct {
	WalletID uuid.UUID `json:"wallet_id"`
	Address  string    `json:"address"`
	Error    string    `json:"error"`
}

type UserResult struct {
	UserID  uuid.UUID       `json:"user_id"`
	Wallets []WalletResult  `json:"wallets"`
	Failed  []WalletFailure `json:"failed,omitempty"`
}

type SweepResult struct {
	Users      int             `json:"users"`
	Wallets    int             `json:"wallets"`
	Failed     []WalletFailure `json:"failed,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Service keeps stored holdings in line with what providers report.
type Service struct {
	collector Collector
	wallets   store.WalletDirectory
	holdings  store.HoldingsStore
	alerter   alert.Alerter
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	collector Collector,
	wallets store.WalletDirectory,
	holdings store.HoldingsStore,
	alerter alert.Alerter,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		collector: collector,
		wallets:   wallets,
		holdings:  holdings,
		alerter:   alerter,
		cfg:       cfg.withDefaults(),
		logger:    logger.With("component", "reconciliation"),
		now:       time.Now,
	}
}

// ReconcileWallet collects the wallet's holdings and applies the diff against
// storage: create missing collections, create missing tokens, touch tokens
// still held, then delete tokens this wallet no longer holds.
func (s *Service) ReconcileWallet(ctx context.Context, wallet model.Wallet) (result WalletResult, err error) {
	ctx, span := tracing.Tracer("reconciliation").Start(ctx, "reconciliation.ReconcileWallet")
	span.SetAttributes(attribute.String("wallet", wallet.PublicAddress))
	defer func() { tracing.EndSpan(span, err) }()

	result = WalletResult{WalletID: wallet.ID, Address: wallet.PublicAddress}
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ReconcileWalletsTotal.WithLabelValues(status).Inc()
	}()

	collected, err := s.collector.CollectWallet(ctx, wallet, s.cfg.MaxPages)
	if err != nil {
		return result, fmt.Errorf("collect wallet %s: %w", wallet.PublicAddress, err)
	}

	observedAt := s.now()
	for _, ch := range collected {
		if !ch.Complete {
			result.Truncated = append(result.Truncated, ch.Chain)
		}
		if err := s.reconcileChain(ctx, wallet, ch, observedAt, &result); err != nil {
			return result, fmt.Errorf("reconcile %s on %s: %w", wallet.PublicAddress, ch.Chain, err)
		}
	}

	metrics.ReconcileTokenChanges.WithLabelValues("created").Add(float64(result.Created))
	metrics.ReconcileTokenChanges.WithLabelValues("touched").Add(float64(result.Updated))
	metrics.ReconcileTokenChanges.WithLabelValues("deleted").Add(float64(result.Deleted))
	metrics.ReconcileCollectionsCreated.Add(float64(result.CollectionsCreated))

	s.logger.Info("wallet reconciled",
		"wallet", wallet.PublicAddress,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"collections_created", result.CollectionsCreated,
		"truncated", len(result.Truncated),
	)
	return result, nil
}

func (s *Service) reconcileChain(ctx context.Context, wallet model.Wallet, ch pipeline.ChainHoldings, observedAt time.Time, result *WalletResult) error {
	existingCollections, err := s.holdings.FindCollections(ctx, ch.Chain, collectionAddresses(ch.Collections))
	if err != nil {
		return fmt.Errorf("find collections: %w", err)
	}
	existingIDs, err := s.holdings.ListTokenIDsByOwner(ctx, ch.Chain, wallet.PublicAddress)
	if err != nil {
		return fmt.Errorf("list stored tokens: %w", err)
	}

	plan := diffChain(wallet.PublicAddress, ch.Collections, existingCollections, existingIDs, ch.Complete, observedAt)
	if plan.empty() {
		return nil
	}

	if len(plan.newCollections) > 0 {
		if err := s.holdings.CreateCollections(ctx, plan.newCollections); err != nil {
			return fmt.Errorf("create collections: %w", err)
		}
		result.CollectionsCreated += len(plan.newCollections)
	}
	if len(plan.toCreate) > 0 {
		if err := s.holdings.CreateTokens(ctx, plan.toCreate); err != nil {
			return fmt.Errorf("create tokens: %w", err)
		}
		result.Created += len(plan.toCreate)
	}
	if len(plan.toTouch) > 0 {
		if err := s.holdings.TouchTokens(ctx, plan.toTouch, observedAt); err != nil {
			return fmt.Errorf("touch tokens: %w", err)
		}
		result.Updated += len(plan.toTouch)
	}
	if len(plan.toDelete) > 0 {
		n, err := s.holdings.DeleteTokens(ctx, wallet.PublicAddress, plan.toDelete)
		if err != nil {
			return fmt.Errorf("delete tokens: %w", err)
		}
		result.Deleted += n
	}
	return nil
}

// ReconcileWalletByID looks the wallet up and reconciles it.
func (s *Service) ReconcileWalletByID(ctx context.Context, walletID uuid.UUID) (WalletResult, error) {
	wallet, err := s.wallets.GetWallet(ctx, walletID)
	if err != nil {
		return WalletResult{}, fmt.Errorf("get wallet %s: %w", walletID, err)
	}
	return s.ReconcileWallet(ctx, *wallet)
}

// ReconcileUser reconciles every wallet of a user on a bounded pool. A wallet
// failure is recorded in the result and alerted; it never stops its siblings.
// The returned error covers only failing to list the wallets.
func (s *Service) ReconcileUser(ctx context.Context, userID uuid.UUID) (*UserResult, error) {
	wallets, err := s.wallets.ListWallets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets of %s: %w", userID, err)
	}

	result := &UserResult{UserID: userID}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for _, w := range wallets {
		g.Go(func() error {
			res, err := s.ReconcileWallet(ctx, w)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.walletFailed(w, err)
				result.Failed = append(result.Failed, WalletFailure{
					WalletID: w.ID,
					Address:  w.PublicAddress,
					Error:    err.Error(),
				})
				return nil
			}
			result.Wallets = append(result.Wallets, res)
			return nil
		})
	}
	_ = g.Wait()
	return result, nil
}

func (s *Service) walletFailed(w model.Wallet, err error) {
	s.logger.Warn("wallet reconciliation failed",
		"wallet", w.PublicAddress,
		"wallet_id", w.ID,
		"error", err,
	)
	alert.NotifyDetached(s.alerter, alert.Alert{
		Type:    alert.AlertTypeWalletSyncFailed,
		Subject: w.PublicAddress,
		Title:   "Wallet holdings sync failed",
		Message: err.Error(),
		Fields: map[string]string{
			"wallet_id": w.ID.String(),
			"user_id":   w.UserID.String(),
			"family":    string(w.Family),
		},
	}, s.logger)
}

// ReconcileAllUsers sweeps users one after another; each user's wallets run
// on the pool.
func (s *Service) ReconcileAllUsers(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{StartedAt: s.now()}
	defer func() {
		result.FinishedAt = s.now()
		metrics.ReconcileSweepDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}()

	userIDs, err := s.wallets.ListUserIDs(ctx)
	if err != nil {
		alert.NotifyDetached(s.alerter, alert.Alert{
			Type:    alert.AlertTypeSweepFailed,
			Subject: "sweep",
			Title:   "Holdings sweep failed",
			Message: err.Error(),
		}, s.logger)
		return nil, fmt.Errorf("list users: %w", err)
	}

	s.logger.Info("holdings sweep started", "users", len(userIDs))
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sweep interrupted after %d users: %w", result.Users, err)
		}
		ur, err := s.ReconcileUser(ctx, userID)
		if err != nil {
			s.logger.Warn("user reconciliation failed", "user_id", userID, "error", err)
			continue
		}
		result.Users++
		result.Wallets += len(ur.Wallets) + len(ur.Failed)
		result.Failed = append(result.Failed, ur.Failed...)
	}

	s.logger.Info("holdings sweep finished",
		"users", result.Users,
		"wallets", result.Wallets,
		"failed", len(result.Failed),
	)
	return result, nil
}

// SweepJob is the scheduled full sweep.
func (s *Service) SweepJob() scheduler.Job {
	return scheduler.Job{
		Name:     SweepJobName,
		Interval: s.cfg.SweepInterval,
		Run: func(ctx context.Context) error {
			_, err := s.ReconcileAllUsers(ctx)
			return err
		},
	}
}
