package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/ratelimit"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline/cursor"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/reconciliation"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/scheduler"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
)

// HoldingsFetcher serves one page of a user's holdings. Satisfied by
// *pipeline.Aggregator.
type HoldingsFetcher interface {
	FetchPage(ctx context.Context, userID uuid.UUID, cursorToken string, pageSize int) (*pipeline.HoldingsPage, error)
}

// Reconciler runs on-demand reconciliation. Satisfied by
// *reconciliation.Service.
type Reconciler interface {
	ReconcileWalletByID(ctx context.Context, walletID uuid.UUID) (reconciliation.WalletResult, error)
	ReconcileUser(ctx context.Context, userID uuid.UUID) (*reconciliation.UserResult, error)
}

// JobTrigger starts a registered job out of schedule.
type JobTrigger interface {
	Trigger(name string) error
}

// BudgetReporter exposes the compute budget state.
type BudgetReporter interface {
	Available() int
	QueueLen() int
	Config() ratelimit.BudgetConfig
}

// HealthProvider returns per-chain provider health.
type HealthProvider interface {
	Snapshots() []pipeline.HealthSnapshot
}

// Server provides the HTTP admin API.
type Server struct {
	holdings   HoldingsFetcher
	reconciler Reconciler
	wallets    store.WalletLinker
	jobs       JobTrigger
	sweepJob   string
	budget     BudgetReporter
	health     HealthProvider
	logger     *slog.Logger
}

// NewServer creates the admin API server. Endpoints whose dependency is not
// configured answer 503.
func NewServer(holdings HoldingsFetcher, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		holdings: holdings,
		sweepJob: reconciliation.SweepJobName,
		logger:   logger.With("component", "admin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ServerOption func(*Server)

func WithReconciler(r Reconciler) ServerOption {
	return func(s *Server) { s.reconciler = r }
}

// WithJobTrigger sets the scheduler used by the sweep endpoint and the job
// name it triggers.
func WithJobTrigger(t JobTrigger, sweepJob string) ServerOption {
	return func(s *Server) {
		s.jobs = t
		if sweepJob != "" {
			s.sweepJob = sweepJob
		}
	}
}

func WithWalletLinker(l store.WalletLinker) ServerOption {
	return func(s *Server) { s.wallets = l }
}

func WithBudget(b BudgetReporter) ServerOption {
	return func(s *Server) { s.budget = b }
}

func WithHealthProvider(hp HealthProvider) ServerOption {
	return func(s *Server) { s.health = hp }
}

// Handler returns the HTTP handler for the admin API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/v1/holdings", s.handleHoldings)
	mux.HandleFunc("POST /admin/v1/wallets", s.handleLinkWallet)
	mux.HandleFunc("POST /admin/v1/reconcile", s.handleReconcile)
	mux.HandleFunc("POST /admin/v1/sweep", s.handleSweep)
	mux.HandleFunc("GET /admin/v1/budget", s.handleBudget)
	mux.HandleFunc("GET /admin/v1/health", s.handleHealth)
	return mux
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryUUID parses an optional uuid query parameter. ok is false (and a 400
// is written) when the value is present but malformed.
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (id uuid.UUID, present, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, false, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, true, false
	}
	return id, true, true
}

type holdingsResponse struct {
	Collections any    `json:"collections"`
	NextCursor  string `json:"next_cursor"`
	LiveData    bool   `json:"live_data"`
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	userID, present, ok := queryUUID(w, r, "user_id")
	if !ok {
		return
	}
	if !present {
		writeError(w, http.StatusBadRequest, "user_id query param required")
		return
	}

	pageSize := 0
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		pageSize = n
	}

	page, err := s.holdings.FetchPage(r.Context(), userID, r.URL.Query().Get("cursor"), pageSize)
	if err != nil {
		switch {
		case errors.Is(err, cursor.ErrInvalidCursor):
			writeError(w, http.StatusBadRequest, "invalid cursor")
		case errors.Is(err, chain.ErrNotImplemented):
			writeError(w, http.StatusNotImplemented, "chain not supported")
		default:
			s.logger.Error("fetch holdings failed", "user_id", userID, "error", err)
			writeError(w, http.StatusBadGateway, "holdings fetch failed")
		}
		return
	}

	resp := holdingsResponse{
		Collections: page.Collections,
		NextCursor:  page.NextCursor,
		LiveData:    page.LiveData,
	}
	if page.Collections == nil {
		resp.Collections = []any{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type walletResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	PublicAddress string    `json:"public_address"`
	Family        string    `json:"family"`
	LinkedAt      time.Time `json:"linked_at"`
}

func (s *Server) handleLinkWallet(w http.ResponseWriter, r *http.Request) {
	if s.wallets == nil {
		writeError(w, http.StatusServiceUnavailable, "wallet linking not available")
		return
	}

	userID, present, ok := queryUUID(w, r, "user_id")
	if !ok {
		return
	}
	if !present {
		writeError(w, http.StatusBadRequest, "user_id query param required")
		return
	}
	family := model.ChainFamily(strings.ToUpper(r.URL.Query().Get("family")))
	address, err := model.NormalizeAddress(family, r.URL.Query().Get("address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	linked, err := s.wallets.Link(r.Context(), model.Wallet{
		UserID:        userID,
		PublicAddress: address,
		Family:        family,
	})
	if err != nil {
		s.logger.Error("link wallet failed", "user_id", userID, "address", address, "error", err)
		writeError(w, http.StatusInternalServerError, "link wallet failed")
		return
	}
	s.logger.Info("wallet linked via admin API", "user_id", userID, "wallet_id", linked.ID, "family", family)
	writeJSON(w, http.StatusOK, walletResponse{
		ID:            linked.ID,
		UserID:        linked.UserID,
		PublicAddress: linked.PublicAddress,
		Family:        string(linked.Family),
		LinkedAt:      linked.LinkedAt,
	})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		writeError(w, http.StatusServiceUnavailable, "reconciliation not available")
		return
	}

	walletID, hasWallet, ok := queryUUID(w, r, "wallet_id")
	if !ok {
		return
	}
	userID, hasUser, ok := queryUUID(w, r, "user_id")
	if !ok {
		return
	}
	if hasWallet == hasUser {
		writeError(w, http.StatusBadRequest, "exactly one of wallet_id or user_id is required")
		return
	}

	if hasWallet {
		res, err := s.reconciler.ReconcileWalletByID(r.Context(), walletID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "wallet not found")
				return
			}
			s.logger.Error("wallet reconciliation failed", "wallet_id", walletID, "error", err)
			writeError(w, http.StatusBadGateway, "reconciliation failed")
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	res, err := s.reconciler.ReconcileUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("user reconciliation failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSweep(w http.ResponseWriter, _ *http.Request) {
	if s.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}
	if err := s.jobs.Trigger(s.sweepJob); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrJobRunning):
			writeError(w, http.StatusConflict, "sweep already running")
		case errors.Is(err, scheduler.ErrUnknownJob):
			writeError(w, http.StatusServiceUnavailable, "sweep not registered")
		default:
			s.logger.Error("trigger sweep failed", "error", err)
			writeError(w, http.StatusInternalServerError, "trigger failed")
		}
		return
	}
	s.logger.Info("sweep triggered via admin API", "job", s.sweepJob)
	writeJSON(w, http.StatusAccepted, map[string]string{"job": s.sweepJob, "status": "started"})
}

type budgetResponse struct {
	Available           int   `json:"available"`
	QueueDepth          int   `json:"queue_depth"`
	Capacity            int   `json:"capacity"`
	ReplenishIntervalMS int64 `json:"replenish_interval_ms"`
	ReleaseDelayMS      int64 `json:"release_delay_ms"`
}

func (s *Server) handleBudget(w http.ResponseWriter, _ *http.Request) {
	if s.budget == nil {
		writeError(w, http.StatusServiceUnavailable, "budget not available")
		return
	}
	cfg := s.budget.Config()
	writeJSON(w, http.StatusOK, budgetResponse{
		Available:           s.budget.Available(),
		QueueDepth:          s.budget.QueueLen(),
		Capacity:            cfg.Capacity,
		ReplenishIntervalMS: cfg.ReplenishInterval.Milliseconds(),
		ReleaseDelayMS:      cfg.ReleaseDelay.Milliseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.health == nil {
		writeError(w, http.StatusServiceUnavailable, "health provider not available")
		return
	}
	writeJSON(w, http.StatusOK, s.health.Snapshots())
}
