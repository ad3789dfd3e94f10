package invoker

import (
	"context"
	"fmt"

	"zyan/domain"
	"zyan/errors"
)

// Func0, Func1 and Func2 adapt strongly typed functions to domain.Handler.
// Arguments must already be bound, see Thunk.Bind.

func Func0[R any](fn func(ctx context.Context) (R, error)) domain.Handler {
	return func(ctx context.Context, args []any) (any, error) {
		if err := arity(args, 0); err != nil {
			return nil, err
		}
		return fn(ctx)
	}
}

func Func1[A, R any](fn func(ctx context.Context, a A) (R, error)) domain.Handler {
	return func(ctx context.Context, args []any) (any, error) {
		if err := arity(args, 1); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a)
	}
}

func Func2[A, B, R any](fn func(ctx context.Context, a A, b B) (R, error)) domain.Handler {
	return func(ctx context.Context, args []any) (any, error) {
		if err := arity(args, 2); err != nil {
			return nil, err
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		return fn(ctx, a, b)
	}
}

// Action1 and Action2 adapt functions without a result, typically event
// subscribers.

func Action1[A any](fn func(ctx context.Context, a A) error) domain.Handler {
	return Func1(func(ctx context.Context, a A) (any, error) {
		return nil, fn(ctx, a)
	})
}

func Action2[A, B any](fn func(ctx context.Context, a A, b B) error) domain.Handler {
	return Func2(func(ctx context.Context, a A, b B) (any, error) {
		return nil, fn(ctx, a, b)
	})
}

func arity(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d arguments, got %d", errors.ErrInvalidArgument, n, len(args))
	}
	return nil
}

func arg[T any](args []any, i int) (T, error) {
	v, ok := args[i].(T)
	if !ok && args[i] != nil {
		var zero T
		return zero, fmt.Errorf("%w: argument %d is %T, expected %T", errors.ErrInvalidArgument, i, args[i], zero)
	}
	return v, nil
}
