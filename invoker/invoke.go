package invoker

import (
	"context"
	"log/slog"
	"sync/atomic"

	"zyan/contract"
	"zyan/errors"
)

// SafeInvoke runs every entry of d in order, whatever the outcome of the
// previous ones. Entries reporting errors.ErrSuppressed are skipped. The
// result is the one of the last entry that did not fail. A single failure is
// returned as is; several are aggregated in *errors.SubscriberInvocationError.
func SafeInvoke(ctx context.Context, d *Delegate, args []any) (any, error) {
	var (
		result any
		errs   []error
	)
	for _, e := range d.Entries() {
		res, err := Call(ctx, e.Fn, args)
		switch {
		case err == nil:
			result = res
		case errors.Is(err, errors.ErrSuppressed):
		default:
			errs = append(errs, err)
		}
	}
	switch len(errs) {
	case 0:
		return result, nil
	case 1:
		return result, errs[0]
	default:
		return result, &errors.SubscriberInvocationError{Errs: errs}
	}
}

// OneWay schedules entries on a thread pool and never waits for them.
type OneWay struct {
	pool contract.ThreadPool
	log  *slog.Logger
}

func NewOneWay(pool contract.ThreadPool, log *slog.Logger) *OneWay {
	return &OneWay{pool: pool, log: log}
}

// Invoke submits each entry of d as its own task and returns immediately.
// Entries see a context detached from the caller's cancellation. Failures are
// logged only. onDone, when set, runs once after every entry has finished or
// failed to be scheduled.
func (o *OneWay) Invoke(ctx context.Context, d *Delegate, args []any, onDone func()) {
	entries := d.Entries()
	detached := context.WithoutCancel(ctx)

	var pending atomic.Int32
	pending.Store(int32(len(entries)))
	finish := func() {
		if pending.Add(-1) == 0 && onDone != nil {
			onDone()
		}
	}
	if len(entries) == 0 && onDone != nil {
		onDone()
		return
	}

	for _, e := range entries {
		err := o.pool.Submit(func() {
			defer finish()
			_, err := Call(detached, e.Fn, args)
			if err != nil && !errors.Is(err, errors.ErrSuppressed) {
				o.log.Warn("One way invocation failed", "key", e.Key, "error", err)
			}
		})
		if err != nil {
			o.log.Warn("One way invocation dropped", "key", e.Key, "error", err)
			finish()
		}
	}
}

// OneWayInvoke is the fire-and-forget counterpart of SafeInvoke.
func OneWayInvoke(ctx context.Context, pool contract.ThreadPool, log *slog.Logger, d *Delegate, args []any) {
	NewOneWay(pool, log).Invoke(ctx, d, args, nil)
}

// GoPool runs each task on its own goroutine.
type GoPool struct{}

var _ contract.ThreadPool = GoPool{}

func (GoPool) Submit(task func()) error {
	go task()
	return nil
}
