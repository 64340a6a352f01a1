package ratelimit

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
)

// ErrBudgetClosed is returned to queued callers when the budget is reset.
var ErrBudgetClosed = errors.New("ratelimit: budget closed")

const (
	DefaultCapacity          = 150
	DefaultReplenishInterval = time.Second
	DefaultReleaseDelay      = time.Second
)

// BudgetConfig describes the provider-side compute-unit quota.
type BudgetConfig struct {
	// Capacity is the number of compute units replenished per interval.
	Capacity int
	// ReplenishInterval is the period of the refill tick.
	ReplenishInterval time.Duration
	// ReleaseDelay is the minimum spacing between a call finishing and its
	// units becoming available again.
	ReleaseDelay time.Duration
}

func (c BudgetConfig) withDefaults() BudgetConfig {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.ReplenishInterval <= 0 {
		c.ReplenishInterval = DefaultReplenishInterval
	}
	if c.ReleaseDelay < 0 {
		c.ReleaseDelay = 0
	}
	return c
}

// Grant is the receipt of a successful Acquire.
type Grant struct {
	Units  int
	Waited time.Duration
}

type waiter struct {
	units    int
	enqueued time.Time
	ready    chan struct{}
	granted  bool
	err      error
}

// Budget is a process-wide compute-unit budget with strict FIFO admission.
// A caller is granted immediately only when nobody is queued and enough
// units are available; otherwise it waits at the tail. Only the queue head
// is ever considered for admission, so a small request never overtakes a
// larger one that arrived earlier.
type Budget struct {
	cfg    BudgetConfig
	logger *slog.Logger

	mu        sync.Mutex
	available int
	queue     *list.List

	afterFunc func(time.Duration, func())
	now       func() time.Time
}

// NewBudget creates a budget that starts full.
func NewBudget(cfg BudgetConfig, logger *slog.Logger) *Budget {
	cfg = cfg.withDefaults()
	b := &Budget{
		cfg:       cfg,
		logger:    logger.With("component", "compute_budget"),
		available: cfg.Capacity,
		queue:     list.New(),
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		now:       time.Now,
	}
	b.publishLocked()
	return b
}

// Config returns the effective configuration.
func (b *Budget) Config() BudgetConfig {
	return b.cfg
}

// Start runs the replenish tick until ctx is cancelled.
func (b *Budget) Start(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.ReplenishInterval)
	defer ticker.Stop()

	b.logger.Info("compute budget started",
		"capacity", b.cfg.Capacity,
		"replenish_interval", b.cfg.ReplenishInterval,
		"release_delay", b.cfg.ReleaseDelay,
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.tick()
		}
	}
}

// Acquire blocks until units are granted or ctx is done. A cancelled caller
// is never charged.
func (b *Budget) Acquire(ctx context.Context, units int) (Grant, error) {
	if units <= 0 {
		return Grant{}, nil
	}

	b.mu.Lock()
	if b.queue.Len() == 0 && b.available >= units {
		b.available -= units
		b.publishLocked()
		b.mu.Unlock()
		metrics.BudgetUnitsGranted.Add(float64(units))
		metrics.BudgetWaitDuration.Observe(0)
		return Grant{Units: units}, nil
	}

	w := &waiter{units: units, enqueued: b.now(), ready: make(chan struct{})}
	elem := b.queue.PushBack(w)
	b.publishLocked()
	b.mu.Unlock()

	if units > b.cfg.Capacity {
		b.logger.Debug("request exceeds per-interval capacity, accumulating",
			"units", units, "capacity", b.cfg.Capacity)
	}

	select {
	case <-w.ready:
		if w.err != nil {
			return Grant{}, w.err
		}
		waited := b.now().Sub(w.enqueued)
		metrics.BudgetUnitsGranted.Add(float64(units))
		metrics.BudgetWaitDuration.Observe(waited.Seconds())
		return Grant{Units: units, Waited: waited}, nil
	case <-ctx.Done():
		b.mu.Lock()
		if w.granted {
			// Granted between ctx firing and taking the lock: hand the units back.
			b.available += w.units
		} else if w.err == nil {
			b.queue.Remove(elem)
		}
		if ceiling := b.ceilingLocked(); b.available > ceiling {
			b.available = ceiling
		}
		b.drainLocked()
		b.publishLocked()
		b.mu.Unlock()
		return Grant{}, fmt.Errorf("acquire %d units: %w", units, ctx.Err())
	}
}

// Release returns units to the budget once the release delay has elapsed and
// then tries to admit the queue head. It must be called exactly once per
// successful Acquire, whether or not the guarded call succeeded.
func (b *Budget) Release(units int) {
	if units <= 0 {
		return
	}
	if b.cfg.ReleaseDelay <= 0 {
		b.credit(units)
		return
	}
	b.afterFunc(b.cfg.ReleaseDelay, func() { b.credit(units) })
}

// Available returns the current number of unallocated units.
func (b *Budget) Available() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.available
}

// QueueLen returns the number of waiting callers.
func (b *Budget) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Len()
}

// Reset refills the budget to capacity and fails every queued caller with
// ErrBudgetClosed. Intended for tests and controlled restarts.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for e := b.queue.Front(); e != nil; e = e.Next() {
		w := e.Value.(*waiter)
		w.err = ErrBudgetClosed
		close(w.ready)
	}
	b.queue.Init()
	b.available = b.cfg.Capacity
	b.publishLocked()
}

func (b *Budget) tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	ceiling := b.ceilingLocked()
	if b.available < ceiling {
		b.available += b.cfg.Capacity
		if b.available > ceiling {
			b.available = ceiling
		}
	}
	b.drainLocked()
	b.publishLocked()
}

func (b *Budget) credit(units int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.available += units
	if ceiling := b.ceilingLocked(); b.available > ceiling {
		b.available = ceiling
	}
	b.drainLocked()
	b.publishLocked()
}

// ceilingLocked is the most the budget may hold: capacity, lifted to the
// head's request while an oversized head is waiting.
func (b *Budget) ceilingLocked() int {
	ceiling := b.cfg.Capacity
	if front := b.queue.Front(); front != nil {
		if units := front.Value.(*waiter).units; units > ceiling {
			ceiling = units
		}
	}
	return ceiling
}

// drainLocked admits waiters from the head only; it stops at the first head
// that cannot be satisfied.
func (b *Budget) drainLocked() {
	for {
		front := b.queue.Front()
		if front == nil {
			return
		}
		w := front.Value.(*waiter)
		if b.available < w.units {
			return
		}
		b.available -= w.units
		w.granted = true
		b.queue.Remove(front)
		close(w.ready)
	}
}

func (b *Budget) publishLocked() {
	metrics.BudgetAvailableUnits.Set(float64(b.available))
	metrics.BudgetQueueDepth.Set(float64(b.queue.Len()))
}
