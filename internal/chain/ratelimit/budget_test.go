package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// newManualBudget returns a budget whose tick is driven by the test and whose
// releases apply immediately.
func newManualBudget(capacity int) *Budget {
	return NewBudget(BudgetConfig{
		Capacity:          capacity,
		ReplenishInterval: time.Hour,
	}, testLogger())
}

type acquireResult struct {
	grant Grant
	err   error
}

func acquireAsync(ctx context.Context, b *Budget, units int) <-chan acquireResult {
	ch := make(chan acquireResult, 1)
	go func() {
		g, err := b.Acquire(ctx, units)
		ch <- acquireResult{grant: g, err: err}
	}()
	return ch
}

func waitQueueLen(t *testing.T, b *Budget, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return b.QueueLen() == n },
		time.Second, time.Millisecond, "queue length never reached %d", n)
}

func assertPending(t *testing.T, ch <-chan acquireResult) {
	t.Helper()
	select {
	case res := <-ch:
		t.Fatalf("expected acquire to still be pending, got %+v", res)
	case <-time.After(20 * time.Millisecond):
	}
}

func receive(t *testing.T, ch <-chan acquireResult) acquireResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(time.Second):
		t.Fatal("acquire did not complete")
		return acquireResult{}
	}
}

func TestBudget_ImmediateGrant(t *testing.T) {
	b := newManualBudget(10)

	g, err := b.Acquire(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Units)
	assert.Zero(t, g.Waited)
	assert.Equal(t, 6, b.Available())
	assert.Equal(t, 0, b.QueueLen())
}

func TestBudget_ZeroUnitsIsFree(t *testing.T) {
	b := newManualBudget(10)

	g, err := b.Acquire(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Units)
	assert.Equal(t, 10, b.Available())
}

func TestBudget_OversizedRequestAccumulatesAcrossTicks(t *testing.T) {
	b := newManualBudget(10)
	ctx := context.Background()

	_, err := b.Acquire(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 0, b.Available())

	pending := acquireAsync(ctx, b, 15)
	waitQueueLen(t, b, 1)

	b.tick()
	assertPending(t, pending)
	assert.Equal(t, 10, b.Available(), "first tick must not grant a partial 15")

	b.tick()
	res := receive(t, pending)
	require.NoError(t, res.err)
	assert.Equal(t, 15, res.grant.Units)
	assert.Equal(t, 0, b.Available())
	assert.Equal(t, 0, b.QueueLen())

	b.tick()
	assert.Equal(t, 10, b.Available(), "ceiling drops back to capacity once the head is served")
}

func TestBudget_StrictFIFONoHeadOfLineBypass(t *testing.T) {
	b := newManualBudget(10)
	ctx := context.Background()

	_, err := b.Acquire(ctx, 10)
	require.NoError(t, err)

	first := acquireAsync(ctx, b, 8)
	waitQueueLen(t, b, 1)
	second := acquireAsync(ctx, b, 5)
	waitQueueLen(t, b, 2)

	// 6 units would satisfy the second request but not the head.
	b.Release(6)
	assertPending(t, first)
	assertPending(t, second)
	assert.Equal(t, 6, b.Available())

	b.tick()
	res := receive(t, first)
	require.NoError(t, res.err)
	assertPending(t, second)
	assert.Equal(t, 2, b.Available())

	b.Release(8)
	res = receive(t, second)
	require.NoError(t, res.err)
	assert.Equal(t, 5, b.Available())
}

func TestBudget_NewArrivalQueuesBehindWaiter(t *testing.T) {
	b := newManualBudget(10)
	ctx := context.Background()

	_, err := b.Acquire(ctx, 7)
	require.NoError(t, err)

	head := acquireAsync(ctx, b, 5)
	waitQueueLen(t, b, 1)

	// 3 units are free, but a waiter is already queued.
	late := acquireAsync(ctx, b, 1)
	waitQueueLen(t, b, 2)
	assertPending(t, late)

	b.Release(7)
	require.NoError(t, receive(t, head).err)
	require.NoError(t, receive(t, late).err)
	assert.Equal(t, 4, b.Available())
}

func TestBudget_CancelledWaiterIsNeverCharged(t *testing.T) {
	b := newManualBudget(10)

	_, err := b.Acquire(context.Background(), 10)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	pending := acquireAsync(ctx, b, 5)
	waitQueueLen(t, b, 1)

	cancel()
	res := receive(t, pending)
	require.ErrorIs(t, res.err, context.Canceled)
	assert.Equal(t, 0, b.QueueLen())

	b.tick()
	assert.Equal(t, 10, b.Available())
}

func TestBudget_CancelledHeadUnblocksNext(t *testing.T) {
	b := newManualBudget(10)

	_, err := b.Acquire(context.Background(), 6)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	head := acquireAsync(ctx, b, 8)
	waitQueueLen(t, b, 1)
	next := acquireAsync(context.Background(), b, 3)
	waitQueueLen(t, b, 2)

	cancel()
	require.ErrorIs(t, receive(t, head).err, context.Canceled)
	require.NoError(t, receive(t, next).err)
	assert.Equal(t, 1, b.Available())
}

func TestBudget_ReleaseHonoursDelay(t *testing.T) {
	b := NewBudget(BudgetConfig{
		Capacity:          10,
		ReplenishInterval: time.Hour,
		ReleaseDelay:      500 * time.Millisecond,
	}, testLogger())

	var (
		scheduled []func()
		delays    []time.Duration
	)
	b.afterFunc = func(d time.Duration, f func()) {
		delays = append(delays, d)
		scheduled = append(scheduled, f)
	}

	_, err := b.Acquire(context.Background(), 4)
	require.NoError(t, err)

	b.Release(4)
	assert.Equal(t, 6, b.Available(), "units return only after the delay")
	require.Len(t, scheduled, 1)
	assert.Equal(t, 500*time.Millisecond, delays[0])

	scheduled[0]()
	assert.Equal(t, 10, b.Available())
}

func TestBudget_ReleaseNeverExceedsCapacity(t *testing.T) {
	b := newManualBudget(10)

	b.Release(5)
	assert.Equal(t, 10, b.Available())

	b.tick()
	assert.Equal(t, 10, b.Available())
}

func TestBudget_ResetFailsQueuedWaiters(t *testing.T) {
	b := newManualBudget(10)

	_, err := b.Acquire(context.Background(), 10)
	require.NoError(t, err)

	pending := acquireAsync(context.Background(), b, 3)
	waitQueueLen(t, b, 1)

	b.Reset()
	res := receive(t, pending)
	assert.True(t, errors.Is(res.err, ErrBudgetClosed))
	assert.Equal(t, 10, b.Available())
	assert.Equal(t, 0, b.QueueLen())
}

func TestBudget_StartReplenishes(t *testing.T) {
	b := NewBudget(BudgetConfig{Capacity: 10, ReplenishInterval: 10 * time.Millisecond}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Start(ctx)

	_, err := b.Acquire(ctx, 10)
	require.NoError(t, err)

	g, err := b.Acquire(ctx, 10)
	require.NoError(t, err)
	assert.Greater(t, g.Waited, time.Duration(0))
}

func TestBudget_AvailableNeverNegativeUnderContention(t *testing.T) {
	b := newManualBudget(10)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		wg       sync.WaitGroup
		negative atomic.Bool
		stop     = make(chan struct{})
	)

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				if b.Available() < 0 {
					negative.Store(true)
				}
			}
		}
	}()

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for j := 0; j < 50; j++ {
				units := 1 + rng.Intn(5)
				if _, err := b.Acquire(ctx, units); err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				b.Release(units)
			}
		}(int64(i))
	}

	wg.Wait()
	close(stop)

	assert.False(t, negative.Load(), "available went negative")
	assert.Equal(t, 10, b.Available())
	assert.Equal(t, 0, b.QueueLen())
}
