package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"zyan/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func startPool(t *testing.T, size, capacity int) *Pool {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	pool := NewPool(log, size, capacity)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go NewSupervisor(log).Add(pool.Workers()...).Run(ctx)
	return pool
}

func TestPool_Runs_Submitted_Tasks(t *testing.T) {
	req := require.New(t)
	pool := startPool(t, 4, 100)
	var done atomic.Int32

	for i := 0; i < 50; i++ {
		req.NoError(pool.Submit(func() { done.Add(1) }))
	}

	req.Eventually(func() bool { return done.Load() == 50 }, time.Second, 10*time.Millisecond)
}

func TestPool_Survives_Panicking_Task(t *testing.T) {
	req := require.New(t)
	pool := startPool(t, 1, 10)
	var done atomic.Bool

	req.NoError(pool.Submit(func() { panic("task exploded") }))
	req.NoError(pool.Submit(func() { done.Store(true) }))

	req.Eventually(done.Load, time.Second, 10*time.Millisecond)
}

func TestPool_Saturated(t *testing.T) {
	req := require.New(t)
	// No worker drains the queue
	pool := NewPool(logs.GetLoggerFromLevel(slog.LevelDebug), 1, 2)

	req.NoError(pool.Submit(func() {}))
	req.NoError(pool.Submit(func() {}))
	err := pool.Submit(func() {})

	req.ErrorIs(err, errors.ErrPoolSaturated)
	req.Equal(int64(1), pool.Dropped())
	req.Equal(2, pool.QueueLength())
}

func TestPool_Stopped(t *testing.T) {
	req := require.New(t)
	pool := NewPool(logs.GetLoggerFromLevel(slog.LevelDebug), 1, 2)

	pool.Stop()

	req.ErrorIs(pool.Submit(func() {}), errors.ErrPoolStopped)
}

type fakeSweeper struct {
	calls atomic.Int32
}

func (f *fakeSweeper) Sweep() int {
	f.calls.Add(1)
	return 0
}

func TestSessionSweeperWorker(t *testing.T) {
	req := require.New(t)
	sweeper := &fakeSweeper{}
	w := NewSessionSweeperWorker(logs.GetLoggerFromLevel(slog.LevelDebug), 10*time.Millisecond, sweeper)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- w.Run(ctx) }()
	req.Eventually(func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	req.NoError(<-done)
}
