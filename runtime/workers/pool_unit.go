package workers

import (
	"context"
	"log/slog"

	"zyan/contract"
	"zyan/errors"
)

// Ensure *PoolUnitWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*PoolUnitWorker)(nil)

// PoolUnitWorker drains the task queue of a Pool. A panicking task is logged
// and the worker moves on to the next one.
type PoolUnitWorker struct {
	id    int
	tasks <-chan func()
	log   *slog.Logger
}

func NewPoolUnitWorker(id int, tasks <-chan func(), log *slog.Logger) *PoolUnitWorker {
	return &PoolUnitWorker{id: id, tasks: tasks, log: log}
}

func (w *PoolUnitWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping pool worker", "worker", w.id)
			return nil
		case task, ok := <-w.tasks:
			if !ok {
				w.log.Debug("Task queue is closed", "worker", w.id)
				return nil
			}
			w.execute(task)
		}
	}
}

func (w *PoolUnitWorker) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			pe := errors.NewPanicError(r)
			w.log.Error("Pool task panicked", "worker", w.id, "error", errors.ErrWorkerPanic, "panic", pe.Value, "stack", string(pe.Stack))
		}
	}()
	task()
}
