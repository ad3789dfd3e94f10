package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"zyan/contract"
	"zyan/errors"
)

const waitTimeBeforeRestart = 200 * time.Millisecond

var _ contract.ISupervisor = (*Supervisor)(nil)

// Supervisor Own a context and a Cancel function
// Run each worker in a goroutine
// Restart crashed workers (error or panic) until the context is canceled
// Wait for the end of all goroutines via WaitGroup
type Supervisor struct {
	Cancel  context.CancelFunc
	wg      *sync.WaitGroup
	log     *slog.Logger
	workers []contract.Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log}
}

// Run blocks until every worker returned. Canceling the parent context, or
// calling Stop, stops them all.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs a worker under supervision in a dedicated goroutine.
// A nil return means the worker is done and it is never restarted.
// An error or a panic restarts it after a short delay, the supervisor itself
// keeps running.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()
		restarts := 0

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := s.runOnce(ctx, worker)
			if err == nil {
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			restarts++
			s.log.Warn("Worker crashed, restarting", "name", workerName, "restarts", restarts, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(waitTimeBeforeRestart):
			}
		}
	}()
}

func (s *Supervisor) runOnce(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %w", errors.ErrWorkerPanic, errors.NewPanicError(r))
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels the supervised context; Run returns once every worker exited.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
