package invoker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"zyan/domain"
	"zyan/errors"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func recorder(calls *[]int, mu *sync.Mutex, id int, res any, err error) Entry {
	return Entry{Key: id, Fn: func(context.Context, []any) (any, error) {
		mu.Lock()
		*calls = append(*calls, id)
		mu.Unlock()
		return res, err
	}}
}

func TestSafeInvoke_One_Failure_Does_Not_Stop_Others(t *testing.T) {
	req := require.New(t)
	var (
		mu    sync.Mutex
		calls []int
	)
	boom := fmt.Errorf("subscriber 2 is down")
	d := NewDelegate(
		recorder(&calls, &mu, 1, "one", nil),
		recorder(&calls, &mu, 2, nil, boom),
		recorder(&calls, &mu, 3, "three", nil),
	)

	res, err := SafeInvoke(context.Background(), d, []any{"payload"})

	req.Equal([]int{1, 2, 3}, calls)
	req.Equal(boom, err)
	req.Equal("three", res)
}

func TestSafeInvoke_Aggregates_Several_Failures(t *testing.T) {
	req := require.New(t)
	e1, e2 := fmt.Errorf("first"), fmt.Errorf("second")
	d := NewDelegate(
		Entry{Key: "a", Fn: func(context.Context, []any) (any, error) { return nil, e1 }},
		Entry{Key: "b", Fn: func(context.Context, []any) (any, error) { return nil, e2 }},
	)

	_, err := SafeInvoke(context.Background(), d, nil)

	req.ErrorIs(err, errors.ErrSubscriberInvocationFailure)
	req.ErrorIs(err, e1)
	req.ErrorIs(err, e2)
	var agg *errors.SubscriberInvocationError
	req.True(errors.As(err, &agg))
	req.Len(agg.Errs, 2)
}

func TestSafeInvoke_Last_Result_Wins_And_Suppressed_Skipped(t *testing.T) {
	req := require.New(t)
	d := NewDelegate(
		Entry{Key: 1, Fn: func(context.Context, []any) (any, error) { return 1, nil }},
		Entry{Key: 2, Fn: func(context.Context, []any) (any, error) { return 2, nil }},
		Entry{Key: 3, Fn: func(context.Context, []any) (any, error) { return nil, errors.ErrSuppressed }},
	)

	res, err := SafeInvoke(context.Background(), d, nil)

	req.NoError(err)
	req.Equal(2, res)
}

func TestSafeInvoke_Captures_Panic(t *testing.T) {
	req := require.New(t)
	ran := false
	d := NewDelegate(
		Entry{Key: 1, Fn: func(context.Context, []any) (any, error) { panic("kaboom") }},
		Entry{Key: 2, Fn: func(context.Context, []any) (any, error) { ran = true; return "ok", nil }},
	)

	res, err := SafeInvoke(context.Background(), d, nil)

	req.True(ran)
	req.Equal("ok", res)
	var pe *errors.PanicError
	req.True(errors.As(err, &pe))
	req.Equal("kaboom", pe.Value)
	req.NotEmpty(pe.Stack)
}

func TestSafeInvoke_Empty_Delegate(t *testing.T) {
	req := require.New(t)

	res, err := SafeInvoke(context.Background(), nil, []any{1})

	req.NoError(err)
	req.Nil(res)
}

func TestOneWayInvoke_Returns_Immediately(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	var done atomic.Bool
	d := NewDelegate(Entry{Key: "slow", Fn: func(ctx context.Context, _ []any) (any, error) {
		time.Sleep(5 * time.Second)
		done.Store(ctx.Err() == nil)
		return nil, nil
	}})
	ctx, cancel := context.WithCancel(context.Background())

	start := time.Now()
	OneWayInvoke(ctx, GoPool{}, log, d, nil)
	cancel()

	req.Less(time.Since(start), 100*time.Millisecond)
	req.Eventually(done.Load, 5500*time.Millisecond, 50*time.Millisecond)
}

func TestOneWay_OnDone_After_All_Entries(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	var ran atomic.Int32
	finished := make(chan int32, 1)
	failing := Entry{Key: 1, Fn: func(context.Context, []any) (any, error) {
		ran.Add(1)
		return nil, fmt.Errorf("logged only")
	}}
	ok := Entry{Key: 2, Fn: func(context.Context, []any) (any, error) {
		ran.Add(1)
		return nil, nil
	}}

	NewOneWay(GoPool{}, log).Invoke(context.Background(), NewDelegate(failing, ok), nil, func() {
		finished <- ran.Load()
	})

	select {
	case n := <-finished:
		req.Equal(int32(2), n)
	case <-time.After(time.Second):
		req.Fail("onDone was never called")
	}
}

type saturatedPool struct{}

func (saturatedPool) Submit(func()) error { return errors.ErrPoolSaturated }

func TestOneWay_Dropped_Tasks_Still_Complete(t *testing.T) {
	req := require.New(t)
	called := false

	NewOneWay(saturatedPool{}, logs.GetLoggerFromLevel(slog.LevelDebug)).Invoke(
		context.Background(),
		NewDelegate(Entry{Key: 1, Fn: func(context.Context, []any) (any, error) { return nil, nil }}),
		nil,
		func() { called = true },
	)

	req.True(called)
}

func TestDelegate_Is_Immutable(t *testing.T) {
	req := require.New(t)
	noop := func(context.Context, []any) (any, error) { return nil, nil }
	d1 := NewDelegate(Entry{Key: "a", Fn: noop})
	d2 := d1.With(Entry{Key: "b", Fn: noop})
	d3 := d2.With(Entry{Key: "a", Fn: noop})
	d4 := d3.Without("a")

	req.Equal(1, d1.Len())
	req.Equal(2, d2.Len())
	req.Equal(2, d3.Len())
	req.Equal("a", d3.Entries()[0].Key)
	req.Equal(1, d4.Len())
	req.False(d4.Has("a"))
	req.Nil(d4.Without("b"))
}

func TestGetInvoker_Is_Memoized(t *testing.T) {
	req := require.New(t)
	ResetCache()
	sig := domain.Signature{domain.TypeString, domain.TypeInt}

	t1 := GetInvoker(sig)
	t2 := GetInvoker(domain.Signature{domain.TypeString, domain.TypeInt})
	req.Same(t1, t2)

	ResetCache()
	req.NotSame(t1, GetInvoker(sig))
}

func TestThunk_Bind_Coerces_Wire_Values(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	thunk := GetInvoker(domain.Signature{
		domain.TypeInt, domain.TypeInt64, domain.TypeUUID, domain.TypeTime, domain.TypeBytes, domain.TypeAny,
	})

	bound, err := thunk.Bind([]any{float64(42), float64(7), id.String(), at.Format(time.RFC3339Nano), "aGk=", nil})

	req.NoError(err)
	req.Equal(42, bound[0])
	req.Equal(int64(7), bound[1])
	req.Equal(id, bound[2])
	req.True(at.Equal(bound[3].(time.Time)))
	req.Equal([]byte("hi"), bound[4])
	req.Nil(bound[5])
}

func TestThunk_Bind_Rejects_Bad_Arguments(t *testing.T) {
	req := require.New(t)
	thunk := GetInvoker(domain.Signature{domain.TypeInt})

	_, err := thunk.Bind([]any{1.5})
	req.ErrorIs(err, errors.ErrInvalidArgument)

	_, err = thunk.Bind([]any{"one"})
	req.ErrorIs(err, errors.ErrInvalidArgument)

	_, err = thunk.Bind(nil)
	req.ErrorIs(err, errors.ErrInvalidArgument)
}

func TestThunk_Bind_Rejects_Int64_Overflow(t *testing.T) {
	req := require.New(t)
	thunk := GetInvoker(domain.Signature{domain.TypeInt64})

	_, err := thunk.Bind([]any{float64(1e30)})
	req.ErrorIs(err, errors.ErrInvalidArgument)

	_, err = thunk.Bind([]any{float64(1 << 63)})
	req.ErrorIs(err, errors.ErrInvalidArgument)

	bound, err := thunk.Bind([]any{float64(-(1 << 63))})
	req.NoError(err)
	req.Equal(int64(math.MinInt64), bound[0])

	bound, err = thunk.Bind([]any{float64(1 << 53)})
	req.NoError(err)
	req.Equal(int64(1<<53), bound[0])
}

func TestThunk_Invoke_With_Typed_Func(t *testing.T) {
	req := require.New(t)
	add := Func2(func(_ context.Context, a, b int) (int, error) { return a + b, nil })
	thunk := GetInvoker(domain.Signature{domain.TypeInt, domain.TypeInt})

	res, err := thunk.Invoke(context.Background(), add, []any{float64(2), float64(3)})

	req.NoError(err)
	req.Equal(5, res)

	_, err = add(context.Background(), []any{"2", 3})
	req.ErrorIs(err, errors.ErrInvalidArgument)
}
