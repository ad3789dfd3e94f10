package workers

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"zyan/contract"
	"zyan/errors"

	"github.com/samber/lo"
)

var _ contract.ThreadPool = (*Pool)(nil)

// Pool is a bounded thread pool. Tasks wait in a buffered queue drained by
// PoolUnitWorkers, which the caller runs under a Supervisor. Submit never
// blocks: a full queue rejects the task.
type Pool struct {
	size    int
	queue   chan func()
	stopped atomic.Bool
	dropped atomic.Int64
	log     *slog.Logger
}

func NewPool(log *slog.Logger, size, capacity int) *Pool {
	return &Pool{
		size:  max(size, 1),
		queue: make(chan func(), max(capacity, 0)),
		log:   log,
	}
}

// Workers returns the unit workers draining the queue.
func (p *Pool) Workers() []contract.Worker {
	return lo.Times(p.size, func(i int) contract.Worker {
		return NewPoolUnitWorker(i, p.queue, p.log)
	})
}

func (p *Pool) Submit(task func()) error {
	if p.stopped.Load() {
		return errors.ErrPoolStopped
	}
	select {
	case p.queue <- task:
		return nil
	default:
		dropped := p.dropped.Add(1)
		p.log.Warn("Thread pool saturated, task rejected", "capacity", cap(p.queue), "dropped", dropped)
		return fmt.Errorf("%w: %d tasks queued", errors.ErrPoolSaturated, len(p.queue))
	}
}

// Stop refuses new tasks. Queued ones are left to the workers until their
// context ends.
func (p *Pool) Stop() {
	p.stopped.Store(true)
}

func (p *Pool) QueueLength() int {
	return len(p.queue)
}

func (p *Pool) Capacity() int {
	return cap(p.queue)
}

func (p *Pool) Dropped() int64 {
	return p.dropped.Load()
}
