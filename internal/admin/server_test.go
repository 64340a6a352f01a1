package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/chain/ratelimit"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/domain/model"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/pipeline/cursor"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/reconciliation"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/scheduler"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store"
	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/store/memory"
)

type fakeHoldings struct {
	gotUser     uuid.UUID
	gotCursor   string
	gotPageSize int
	page        *pipeline.HoldingsPage
	err         error
}

func (f *fakeHoldings) FetchPage(_ context.Context, userID uuid.UUID, cursorToken string, pageSize int) (*pipeline.HoldingsPage, error) {
	f.gotUser, f.gotCursor, f.gotPageSize = userID, cursorToken, pageSize
	return f.page, f.err
}

type fakeReconciler struct {
	walletRes reconciliation.WalletResult
	userRes   *reconciliation.UserResult
	err       error
	calls     []string
}

func (f *fakeReconciler) ReconcileWalletByID(_ context.Context, id uuid.UUID) (reconciliation.WalletResult, error) {
	f.calls = append(f.calls, "wallet:"+id.String())
	return f.walletRes, f.err
}

func (f *fakeReconciler) ReconcileUser(_ context.Context, id uuid.UUID) (*reconciliation.UserResult, error) {
	f.calls = append(f.calls, "user:"+id.String())
	return f.userRes, f.err
}

type fakeTrigger struct {
	triggered []string
	err       error
}

func (f *fakeTrigger) Trigger(name string) error {
	f.triggered = append(f.triggered, name)
	return f.err
}

type fakeBudget struct{}

func (fakeBudget) Available() int { return 120 }
func (fakeBudget) QueueLen() int { return 3 }
func (fakeBudget) Config() ratelimit.BudgetConfig {
	return ratelimit.BudgetConfig{Capacity: 150, ReplenishInterval: time.Second, ReleaseDelay: time.Second}
}

type fakeHealth []pipeline.HealthSnapshot

func (f fakeHealth) Snapshots() []pipeline.HealthSnapshot { return f }

func testServer(h HoldingsFetcher, opts ...ServerOption) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewServer(h, logger, opts...).Handler()
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleHoldings(t *testing.T) {
	userID := uuid.New()
	fh := &fakeHoldings{page: &pipeline.HoldingsPage{
		Collections: []model.NormalizedCollection{{
			ChainSymbol:  "ETH",
			Chain:        model.ChainEthereum,
			TokenAddress: "0xabc",
			Tokens:       []model.NormalizedToken{{ID: "ethereum:0xabc:1", TokenID: "1"}},
		}},
		NextCursor: "next-token",
		LiveData:   true,
	}}
	h := testServer(fh)

	rec := do(h, http.MethodGet, fmt.Sprintf("/admin/v1/holdings?user_id=%s&cursor=abc&page_size=5", userID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, fh.gotUser)
	assert.Equal(t, "abc", fh.gotCursor)
	assert.Equal(t, 5, fh.gotPageSize)

	body := decodeBody(t, rec)
	assert.Equal(t, "next-token", body["next_cursor"])
	assert.Equal(t, true, body["live_data"])
	cols := body["collections"].([]any)
	require.Len(t, cols, 1)
	assert.Equal(t, "0xabc", cols[0].(map[string]any)["tokenAddress"])
}

func TestHandleHoldings_EmptyPageEncodesEmptyList(t *testing.T) {
	h := testServer(&fakeHoldings{page: &pipeline.HoldingsPage{}})
	rec := do(h, http.MethodGet, "/admin/v1/holdings?user_id="+uuid.NewString())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decodeBody(t, rec)["collections"])
}

func TestHandleHoldings_BadRequests(t *testing.T) {
	h := testServer(&fakeHoldings{})
	for name, target := range map[string]string{
		"missing user":   "/admin/v1/holdings",
		"malformed user": "/admin/v1/holdings?user_id=nope",
		"bad page size":  "/admin/v1/holdings?user_id=" + uuid.NewString() + "&page_size=x",
		"negative size":  "/admin/v1/holdings?user_id=" + uuid.NewString() + "&page_size=-1",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, target).Code)
		})
	}
}

func TestHandleHoldings_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: signature", cursor.ErrInvalidCursor), http.StatusBadRequest},
		{fmt.Errorf("route: %w", chain.ErrNotImplemented), http.StatusNotImplemented},
		{errors.New("provider 502"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := testServer(&fakeHoldings{err: tc.err})
			rec := do(h, http.MethodGet, "/admin/v1/holdings?user_id="+uuid.NewString()+"&cursor=x")
			assert.Equal(t, tc.status, rec.Code)
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

func TestHandleReconcile_Wallet(t *testing.T) {
	walletID := uuid.New()
	fr := &fakeReconciler{walletRes: reconciliation.WalletResult{WalletID: walletID, Created: 2, Deleted: 1}}
	h := testServer(&fakeHoldings{}, WithReconciler(fr))

	rec := do(h, http.MethodPost, "/admin/v1/reconcile?wallet_id="+walletID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"wallet:" + walletID.String()}, fr.calls)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2, body["created"])
	assert.EqualValues(t, 1, body["deleted"])
}

func TestHandleReconcile_User(t *testing.T) {
	userID := uuid.New()
	fr := &fakeReconciler{userRes: &reconciliation.UserResult{UserID: userID}}
	h := testServer(&fakeHoldings{}, WithReconciler(fr))

	rec := do(h, http.MethodPost, "/admin/v1/reconcile?user_id="+userID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"user:" + userID.String()}, fr.calls)
	assert.Equal(t, userID.String(), decodeBody(t, rec)["user_id"])
}

func TestHandleReconcile_Validation(t *testing.T) {
	fr := &fakeReconciler{}
	h := testServer(&fakeHoldings{}, WithReconciler(fr))

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/admin/v1/reconcile").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost,
		"/admin/v1/reconcile?wallet_id="+uuid.NewString()+"&user_id="+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/admin/v1/reconcile?wallet_id=bad").Code)
	assert.Empty(t, fr.calls)
}

func TestHandleReconcile_WalletNotFound(t *testing.T) {
	fr := &fakeReconciler{err: fmt.Errorf("get wallet: %w", store.ErrNotFound)}
	h := testServer(&fakeHoldings{}, WithReconciler(fr))
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/admin/v1/reconcile?wallet_id="+uuid.NewString()).Code)
}

func TestHandleReconcile_Unavailable(t *testing.T) {
	h := testServer(&fakeHoldings{})
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodPost, "/admin/v1/reconcile?user_id="+uuid.NewString()).Code)
}

func TestHandleSweep(t *testing.T) {
	ft := &fakeTrigger{}
	h := testServer(&fakeHoldings{}, WithJobTrigger(ft, ""))

	rec := do(h, http.MethodPost, "/admin/v1/sweep")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{reconciliation.SweepJobName}, ft.triggered)
}

func TestHandleSweep_AlreadyRunning(t *testing.T) {
	ft := &fakeTrigger{err: scheduler.ErrJobRunning}
	h := testServer(&fakeHoldings{}, WithJobTrigger(ft, "custom-sweep"))

	assert.Equal(t, http.StatusConflict, do(h, http.MethodPost, "/admin/v1/sweep").Code)
	assert.Equal(t, []string{"custom-sweep"}, ft.triggered)
}

func TestHandleSweep_WrongMethod(t *testing.T) {
	h := testServer(&fakeHoldings{}, WithJobTrigger(&fakeTrigger{}, ""))
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/admin/v1/sweep").Code)
}

func TestHandleBudget(t *testing.T) {
	h := testServer(&fakeHoldings{}, WithBudget(fakeBudget{}))

	rec := do(h, http.MethodGet, "/admin/v1/budget")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 120, body["available"])
	assert.EqualValues(t, 3, body["queue_depth"])
	assert.EqualValues(t, 150, body["capacity"])
	assert.EqualValues(t, 1000, body["replenish_interval_ms"])
	assert.EqualValues(t, 1000, body["release_delay_ms"])
}

func TestHandleHealth(t *testing.T) {
	h := testServer(&fakeHoldings{}, WithHealthProvider(fakeHealth{
		{Chain: "ethereum", Status: "HEALTHY"},
		{Chain: "solana", Status: "UNHEALTHY", ConsecutiveFailures: 5},
	}))

	rec := do(h, http.MethodGet, "/admin/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var snaps []pipeline.HealthSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, 5, snaps[1].ConsecutiveFailures)

	assert.Equal(t, http.StatusServiceUnavailable, do(testServer(&fakeHoldings{}), http.MethodGet, "/admin/v1/health").Code)
}

func TestHandleLinkWallet(t *testing.T) {
	mem := memory.New()
	h := testServer(&fakeHoldings{}, WithWalletLinker(mem))
	userID := uuid.New()

	target := "/admin/v1/wallets?family=evm&user_id=" + userID.String() +
		"&address=0xAbCdEf0123456789AbCdEf0123456789aBcDeF01"
	rec := do(h, http.MethodPost, target)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "0xabcdef0123456789abcdef0123456789abcdef01", body["public_address"])
	assert.Equal(t, "EVM", body["family"])

	again := decodeBody(t, do(h, http.MethodPost, target))
	assert.Equal(t, body["id"], again["id"])

	wallets, err := mem.ListWallets(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}

func TestHandleLinkWallet_Validation(t *testing.T) {
	h := testServer(&fakeHoldings{}, WithWalletLinker(memory.New()))
	user := uuid.NewString()
	for name, target := range map[string]string{
		"missing user":   "/admin/v1/wallets?family=evm&address=0x0000000000000000000000000000000000000001",
		"bad evm":        "/admin/v1/wallets?family=evm&address=0x12&user_id=" + user,
		"bad solana":     "/admin/v1/wallets?family=solana&address=0OIl&user_id=" + user,
		"unknown family": "/admin/v1/wallets?family=btc&address=bc1q&user_id=" + user,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, target).Code)
		})
	}

	assert.Equal(t, http.StatusServiceUnavailable,
		do(testServer(&fakeHoldings{}), http.MethodPost, "/admin/v1/wallets?user_id="+user).Code)
}
