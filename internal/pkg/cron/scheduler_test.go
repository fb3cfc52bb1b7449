package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(clock.NewFake(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	var order []string
	boom := errors.New("boom")
	s.AddJob("test_first", time.Hour, func(ctx context.Context) error {
		order = append(order, "first")
		return boom
	})
	s.AddJob("test_second", time.Hour, func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	before := testutil.ToFloat64(metrics.JobRuns.WithLabelValues("test_first", "error"))

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []string{"test_first", "test_second"}, s.Jobs())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.JobRuns.WithLabelValues("test_first", "error")))
}

func TestScheduler_RunJob(t *testing.T) {
	s := NewScheduler(clock.New())

	var runs int
	s.AddJob("test_job", time.Hour, func(ctx context.Context) error {
		runs++
		return nil
	})

	require.NoError(t, s.RunJob(context.Background(), "test_job"))
	assert.Equal(t, 1, runs)

	assert.Error(t, s.RunJob(context.Background(), "unknown"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(clock.New())

	var runs atomic.Int32
	s.AddJob("test_loop", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}
