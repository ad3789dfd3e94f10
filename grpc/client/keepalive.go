package client

import (
	"context"
	"log/slog"
	"time"

	"zyan/contract"
)

var _ contract.Worker = (*KeepAliveWorker)(nil)

type renewer interface {
	Renew(ctx context.Context) (time.Time, error)
}

// KeepAliveWorker renews the session periodically so that an idle client
// does not lose it to the sliding expiry.
type KeepAliveWorker struct {
	conn     renewer
	interval time.Duration
	log      *slog.Logger
}

func NewKeepAliveWorker(log *slog.Logger, conn renewer, interval time.Duration) *KeepAliveWorker {
	return &KeepAliveWorker{conn: conn, interval: interval, log: log}
}

func (w *KeepAliveWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			expiresAt, err := w.conn.Renew(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				// Supervisor restarts us
				return err
			}
			w.log.Debug("Session renewed", "expires_at", expiresAt)
		}
	}
}
