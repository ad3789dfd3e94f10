package client

import (
	"context"
	"log/slog"

	"zyan/contract"
)

// Scheduler decides on which goroutine a callback runs. Schedule gives up
// once ctx is done.
type Scheduler interface {
	Schedule(ctx context.Context, task func())
}

// InlineScheduler runs callbacks on the goroutine receiving the stream.
type InlineScheduler struct{}

func (InlineScheduler) Schedule(_ context.Context, task func()) { task() }

var _ contract.Worker = (*SerialScheduler)(nil)

// SerialScheduler delivers every callback of a connection on one dedicated
// goroutine, in arrival order. Code that owns single-threaded state can rely
// on never being entered concurrently by a callback.
type SerialScheduler struct {
	tasks chan func()
	log   *slog.Logger
}

func NewSerialScheduler(log *slog.Logger, bufferSize int) *SerialScheduler {
	return &SerialScheduler{tasks: make(chan func(), bufferSize), log: log}
}

// Schedule blocks while the buffer is full. A callback is only dropped when
// ctx ends first, i.e. when the connection is closing.
func (s *SerialScheduler) Schedule(ctx context.Context, task func()) {
	select {
	case s.tasks <- task:
	case <-ctx.Done():
		s.log.Debug("Connection closing, callback dropped")
	}
}

func (s *SerialScheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-s.tasks:
			s.execute(task)
		}
	}
}

func (s *SerialScheduler) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Callback panicked", "panic", r)
		}
	}()
	task()
}
