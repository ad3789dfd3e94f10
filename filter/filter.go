// Package filter provides composable predicates over event invocation
// arguments. Filters combine with logical AND; a nil filter allows everything.
//
// The same filter may run twice: once on the publisher side, so that a
// suppressed notification never crosses the wire, and once on the subscriber
// side when a handler is marked FilterLocally.
package filter

import (
	"context"

	"zyan/domain"
	"zyan/errors"
)

type Filter interface {
	AllowInvocation(args []any) bool
}

// Func is an arbitrary predicate over the raw argument list.
type Func func(args []any) bool

func (f Func) AllowInvocation(args []any) bool {
	return f(args)
}

// Allow evaluates f, treating nil as the identity filter.
func Allow(f Filter, args []any) bool {
	return f == nil || f.AllowInvocation(args)
}

// Chain is the flattened conjunction of several filters.
type Chain struct {
	filters []Filter
}

func (c *Chain) AllowInvocation(args []any) bool {
	for _, f := range c.filters {
		if !f.AllowInvocation(args) {
			return false
		}
	}
	return true
}

func (c *Chain) Len() int {
	return len(c.filters)
}

// Combine returns a filter allowing an invocation iff every input allows it.
// Nil inputs are dropped and nested chains are flattened, so combining never
// deepens indirection.
func Combine(filters ...Filter) Filter {
	var flat []Filter
	for _, f := range filters {
		switch v := f.(type) {
		case nil:
		case *Chain:
			flat = append(flat, v.filters...)
		default:
			flat = append(flat, v)
		}
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return &Chain{filters: flat}
	}
}

type notFilter struct {
	inner Filter
}

func (n notFilter) AllowInvocation(args []any) bool {
	return !Allow(n.inner, args)
}

func Not(f Filter) Filter {
	return notFilter{inner: f}
}

// Typed builds a strongly typed predicate over the argument at index. The
// invocation is rejected when the argument is missing or of another type.
func Typed[T any](index int, pred func(T) bool) Filter {
	return Func(func(args []any) bool {
		if index < 0 || index >= len(args) {
			return false
		}
		v, ok := args[index].(T)
		if !ok {
			return false
		}
		return pred(v)
	})
}

// Handler pairs a subscriber callback with its filter. Wrapping an already
// wrapped handler recombines the filters around the same target instead of
// nesting, so a callback re-registered any number of times costs one filter
// evaluation pass per trigger.
type Handler struct {
	target        domain.Handler
	filter        Filter
	FilterLocally bool
}

func Wrap(target domain.Handler, f Filter) *Handler {
	return &Handler{target: target, filter: f}
}

func (h *Handler) Wrap(f Filter) *Handler {
	return &Handler{target: h.target, filter: Combine(h.filter, f), FilterLocally: h.FilterLocally}
}

func (h *Handler) Filter() Filter {
	return h.filter
}

func (h *Handler) Target() domain.Handler {
	return h.target
}

// Invoke runs the target when the filter allows it, otherwise it reports
// errors.ErrSuppressed.
func (h *Handler) Invoke(ctx context.Context, args []any) (any, error) {
	if !Allow(h.filter, args) {
		return nil, errors.ErrSuppressed
	}
	return h.target(ctx, args)
}

func (h *Handler) AsHandler() domain.Handler {
	return h.Invoke
}
