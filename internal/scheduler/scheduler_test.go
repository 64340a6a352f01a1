package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmp-dev/HideMePleaseBE-sub000/internal/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegister_Validation(t *testing.T) {
	s := New(testLogger())
	noop := func(context.Context) error { return nil }

	require.Error(t, s.Register(Job{Name: "", Interval: time.Second, Run: noop}))
	require.Error(t, s.Register(Job{Name: "a", Interval: 0, Run: noop}))
	require.Error(t, s.Register(Job{Name: "a", Interval: time.Second}))
	require.NoError(t, s.Register(Job{Name: "a", Interval: time.Second, Run: noop}))
	require.Error(t, s.Register(Job{Name: "a", Interval: time.Second, Run: noop}), "duplicate name")
}

func TestStart_RunsJobPeriodically(t *testing.T) {
	s := New(testLogger())
	var runs atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestTrigger_NoOverlap(t *testing.T) {
	s := New(testLogger())
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	require.NoError(t, s.Register(Job{
		Name:     "sweep",
		Interval: time.Hour,
		Run: func(context.Context) error {
			started <- struct{}{}
			<-release
			return nil
		},
	}))

	require.NoError(t, s.Trigger("sweep"))
	<-started
	assert.True(t, s.Running("sweep"))

	err := s.Trigger("sweep")
	assert.ErrorIs(t, err, ErrJobRunning)

	close(release)
	assert.Eventually(t, func() bool { return !s.Running("sweep") }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, s.Trigger("missing"), ErrUnknownJob)
}

func TestRun_ErrorsAndPanicsAreContained(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.Register(Job{Name: "fails", Interval: time.Hour, Run: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, s.Register(Job{Name: "panics", Interval: time.Hour, Run: func(context.Context) error {
		panic("bad")
	}}))

	before := testutil.ToFloat64(metrics.SchedulerJobRuns.WithLabelValues("panics", "error"))

	s.run(context.Background(), s.jobs["fails"])
	s.run(context.Background(), s.jobs["panics"])

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SchedulerJobRuns.WithLabelValues("panics", "error")))
	assert.False(t, s.Running("panics"))
}

func TestRun_SkipsWhileRunning(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.Register(Job{Name: "busy", Interval: time.Hour, Run: func(context.Context) error { return nil }}))
	e := s.jobs["busy"]
	e.running.Store(true)

	before := testutil.ToFloat64(metrics.SchedulerJobRuns.WithLabelValues("busy", "skipped"))
	s.run(context.Background(), e)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SchedulerJobRuns.WithLabelValues("busy", "skipped")))
}
