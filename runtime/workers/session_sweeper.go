package workers

import (
	"context"
	"log/slog"
	"time"

	"zyan/contract"
)

var _ contract.Worker = (*SessionSweeperWorker)(nil)

// Sweeper destroys expired sessions and reports how many.
type Sweeper interface {
	Sweep() int
}

// SessionSweeperWorker reclaims sessions nobody touches anymore. Expiry stays
// lazy on the call path; the sweep only bounds how long an abandoned session
// keeps its subscriptions.
type SessionSweeperWorker struct {
	log      *slog.Logger
	interval time.Duration
	sessions Sweeper
}

func NewSessionSweeperWorker(log *slog.Logger, interval time.Duration, sessions Sweeper) *SessionSweeperWorker {
	return &SessionSweeperWorker{log: log, interval: interval, sessions: sessions}
}

func (w *SessionSweeperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping session sweeper")
			return nil
		case <-ticker.C:
			w.sessions.Sweep()
		}
	}
}
