// Package components holds the services the sample host exposes.
package components

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"zyan/contract"
	"zyan/domain"
	"zyan/invoker"
)

const (
	ClockInterface = "IClock"
	TickEvent      = "Tick"
)

// TickParams is the argument list of the Tick event.
var TickParams = []domain.ParamDef{
	domain.Param("seq", domain.TypeInt64),
	domain.Param("at", domain.TypeTime),
}

// Clock is a singleton raising Tick(seq, at) each time the ticker fires.
type Clock struct {
	seq  atomic.Int64
	tick *domain.EventSlot
	now  func() time.Time
}

func NewClock() *Clock {
	return &Clock{
		tick: domain.NewEventSlot(TickEvent, TickParams...),
		now: time.Now,
	}
}

func (c *Clock) Describe() domain.Descriptor {
	return domain.Descriptor{
		Methods: []domain.Method{
			{Name: "Now", Returns: domain.TypeTime, Fn: invoker.Func0(c.currentTime)},
			{Name: "Sequence", Returns: domain.TypeInt64, Fn: invoker.Func0(c.sequence)},
		},
		Events: []*domain.EventSlot{c.tick},
	}
}

func (c *Clock) currentTime(_ context.Context) (time.Time, error) {
	return c.now().UTC(), nil
}

func (c *Clock) sequence(_ context.Context) (int64, error) {
	return c.seq.Load(), nil
}

// Tick advances the sequence and raises the event.
func (c *Clock) Tick(ctx context.Context) (int64, error) {
	seq := c.seq.Add(1)
	_, err := c.tick.Raise(ctx, seq, c.now().UTC())
	return seq, err
}

var _ contract.Worker = (*ClockWorker)(nil)

type ClockWorker struct {
	clock    *Clock
	interval time.Duration
	log      *slog.Logger
}

func NewClockWorker(log *slog.Logger, clock *Clock, interval time.Duration) *ClockWorker {
	return &ClockWorker{clock: clock, interval: interval, log: log}
}

func (w *ClockWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping clock")
			return nil
		case <-ticker.C:
			if seq, err := w.clock.Tick(ctx); err != nil {
				w.log.Warn("Tick delivery failed", "seq", seq, "error", err)
			}
		}
	}
}
