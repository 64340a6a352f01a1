// Package scheduler runs named periodic jobs. A job's errors are logged and
// counted, never propagated, and a job never overlaps with itself.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
)

var (
	ErrUnknownJob = errors.New("scheduler: unknown job")
	ErrJobRunning = errors.New("scheduler: job already running")
)

type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type entry struct {
	job     Job
	running atomic.Bool
}

type Scheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	jobs    map[string]*entry
	order   []string
	baseCtx context.Context
	wg      sync.WaitGroup
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger:  logger.With("component", "scheduler"),
		jobs:    make(map[string]*entry),
		baseCtx: context.Background(),
	}
}

// Register adds a job. It must be called before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("invalid job %q", job.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("job %q already registered", job.Name)
	}
	s.jobs[job.Name] = &entry{job: job}
	s.order = append(s.order, job.Name)
	return nil
}

// Start ticks every registered job until ctx is cancelled, then waits for
// in-flight runs to return.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	entries := make([]*entry, 0, len(s.order))
	for _, name := range s.order {
		entries = append(entries, s.jobs[name])
	}
	s.mu.Unlock()

	var loops sync.WaitGroup
	for _, e := range entries {
		loops.Add(1)
		go func(e *entry) {
			defer loops.Done()
			s.loop(ctx, e)
		}(e)
	}
	loops.Wait()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	ticker := time.NewTicker(e.job.Interval)
	defer ticker.Stop()

	s.logger.Info("job scheduled", "job", e.job.Name, "interval", e.job.Interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, e)
		}
	}
}

// Trigger starts a job now, outside its schedule, without waiting for it.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	ctx := s.baseCtx
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if e.running.Load() {
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, e)
	}()
	return nil
}

// Running reports whether the named job is in flight.
func (s *Scheduler) Running(name string) bool {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	return ok && e.running.Load()
}

func (s *Scheduler) run(ctx context.Context, e *entry) {
	name := e.job.Name
	if !e.running.CompareAndSwap(false, true) {
		s.logger.Warn("job still running, skipping tick", "job", name)
		metrics.SchedulerJobRuns.WithLabelValues(name, "skipped").Inc()
		return
	}
	defer e.running.Store(false)

	start := time.Now()
	err := s.safeRun(ctx, e.job)
	if err != nil {
		s.logger.Error("job failed", "job", name, "elapsed", time.Since(start), "error", err)
		metrics.SchedulerJobRuns.WithLabelValues(name, "error").Inc()
		return
	}
	s.logger.Info("job completed", "job", name, "elapsed", time.Since(start))
	metrics.SchedulerJobRuns.WithLabelValues(name, "ok").Inc()
}

func (s *Scheduler) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v\n%s", job.Name, r, debug.Stack())
		}
	}()
	return job.Run(ctx)
}
