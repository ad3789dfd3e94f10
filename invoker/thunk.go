// Package invoker runs handlers and multicast delegates safely: argument
// binding against a signature, panic capture, partial failure aggregation and
// fire-and-forget scheduling on a thread pool.
package invoker

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"sync"
	"time"

	"zyan/domain"
	"zyan/errors"

	"github.com/google/uuid"
)

// Converter coerces one wire value into the Go type of a parameter.
type Converter func(v any) (any, error)

// Thunk is the compiled invoker for one signature. It is immutable and shared.
type Thunk struct {
	Signature  domain.Signature
	converters []Converter
}

var cache sync.Map // signature key -> *Thunk

// GetInvoker returns the memoized thunk for sig, compiling it on first use.
func GetInvoker(sig domain.Signature) *Thunk {
	key := sig.Key()
	if t, ok := cache.Load(key); ok {
		return t.(*Thunk)
	}
	t, _ := cache.LoadOrStore(key, compile(sig))
	return t.(*Thunk)
}

// ResetCache drops every compiled thunk.
func ResetCache() {
	cache.Clear()
}

func compile(sig domain.Signature) *Thunk {
	converters := make([]Converter, len(sig))
	for i, t := range sig {
		converters[i] = converterFor(t)
	}
	return &Thunk{Signature: append(domain.Signature(nil), sig...), converters: converters}
}

// Bind converts args to the Go types of the signature. The returned slice is
// a fresh copy; args is left untouched.
func (t *Thunk) Bind(args []any) ([]any, error) {
	if len(args) != len(t.converters) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d",
			errors.ErrInvalidArgument, t.Signature.Key(), len(t.converters), len(args))
	}
	bound := make([]any, len(args))
	for i, conv := range t.converters {
		v, err := conv(args[i])
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d (%s): %v", errors.ErrInvalidArgument, i, t.Signature[i], err)
		}
		bound[i] = v
	}
	return bound, nil
}

// Invoke binds args and runs fn, turning a panic into an error.
func (t *Thunk) Invoke(ctx context.Context, fn domain.Handler, args []any) (any, error) {
	bound, err := t.Bind(args)
	if err != nil {
		return nil, err
	}
	return Call(ctx, fn, bound)
}

// Call runs fn and recovers a panic into *errors.PanicError.
func Call(ctx context.Context, fn domain.Handler, args []any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errors.NewPanicError(r)
		}
	}()
	return fn(ctx, args)
}

func converterFor(t domain.ParamType) Converter {
	switch t {
	case domain.TypeString:
		return toString
	case domain.TypeInt:
		return func(v any) (any, error) {
			n, err := toInt64(v)
			if err != nil {
				return nil, err
			}
			if n > math.MaxInt || n < math.MinInt {
				return nil, fmt.Errorf("%d overflows int", n)
			}
			return int(n), nil
		}
	case domain.TypeInt64:
		return func(v any) (any, error) { return toInt64(v) }
	case domain.TypeFloat64:
		return toFloat64
	case domain.TypeBool:
		return toBool
	case domain.TypeBytes:
		return toBytes
	case domain.TypeUUID:
		return toUUID
	case domain.TypeTime:
		return toTime
	case domain.TypeMap:
		return toMap
	case domain.TypeList:
		return toList
	default:
		return func(v any) (any, error) { return v, nil }
	}
}

func toString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return nil, fmt.Errorf("expected string, got %T", v)
	}
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not integral", n)
		}
		if n >= 1<<63 || n < -(1<<63) {
			return 0, fmt.Errorf("%v overflows int64", n)
		}
		return int64(n), nil
	case float32:
		return toInt64(float64(n))
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func toFloat64(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return nil, fmt.Errorf("expected number, got %T", v)
	}
}

func toBool(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

// Bytes travel as standard base64 text on the wire.
func toBytes(v any) (any, error) {
	switch b := v.(type) {
	case nil:
		return []byte(nil), nil
	case []byte:
		return b, nil
	case string:
		return base64.StdEncoding.DecodeString(b)
	default:
		return nil, fmt.Errorf("expected bytes, got %T", v)
	}
}

func toUUID(v any) (any, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, nil
	case string:
		return uuid.Parse(id)
	default:
		return nil, fmt.Errorf("expected uuid, got %T", v)
	}
}

func toTime(v any) (any, error) {
	switch ts := v.(type) {
	case time.Time:
		return ts, nil
	case string:
		return time.Parse(time.RFC3339Nano, ts)
	default:
		return nil, fmt.Errorf("expected time, got %T", v)
	}
}

func toMap(v any) (any, error) {
	switch m := v.(type) {
	case nil:
		return map[string]any(nil), nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

func toList(v any) (any, error) {
	switch l := v.(type) {
	case nil:
		return []any(nil), nil
	case []any:
		return l, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", v)
	}
}
