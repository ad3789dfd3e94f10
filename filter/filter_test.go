package filter

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"zyan/domain"
	"zyan/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type countingFilter struct {
	calls atomic.Int32
	allow bool
}

func (c *countingFilter) AllowInvocation([]any) bool {
	c.calls.Add(1)
	return c.allow
}

func TestCombine_Nil_Is_Identity(t *testing.T) {
	req := require.New(t)
	f := &countingFilter{allow: true}

	req.Nil(Combine())
	req.Nil(Combine(nil, nil))
	req.Same(f, Combine(nil, f, nil))
	req.True(Allow(nil, []any{1}))
}

func TestCombine_Is_Logical_And(t *testing.T) {
	req := require.New(t)
	yes := Func(func([]any) bool { return true })
	no := Func(func([]any) bool { return false })

	req.True(Allow(Combine(yes, yes), nil))
	req.False(Allow(Combine(yes, no), nil))
	req.False(Allow(Combine(no, yes), nil))
}

func TestCombine_Flattens_Nested_Chains(t *testing.T) {
	req := require.New(t)
	a, b, c := &countingFilter{allow: true}, &countingFilter{allow: true}, &countingFilter{allow: true}

	combined := Combine(Combine(a, b), c)

	chain, ok := combined.(*Chain)
	req.True(ok)
	req.Equal(3, chain.Len())
}

func TestHandler_Rewrap_Applies_Each_Filter_Once(t *testing.T) {
	req := require.New(t)
	f1 := &countingFilter{allow: true}
	f2 := &countingFilter{allow: true}
	var hits atomic.Int32
	target := func(context.Context, []any) (any, error) {
		hits.Add(1)
		return "ok", nil
	}

	h := Wrap(target, f1).Wrap(f2)
	res, err := h.Invoke(context.Background(), []any{"x"})

	req.NoError(err)
	req.Equal("ok", res)
	req.Equal(int32(1), hits.Load())
	req.Equal(int32(1), f1.calls.Load())
	req.Equal(int32(1), f2.calls.Load())
	chain, ok := h.Filter().(*Chain)
	req.True(ok)
	req.Equal(2, chain.Len())
}

func TestHandler_Suppressed(t *testing.T) {
	req := require.New(t)
	called := false
	h := Wrap(func(context.Context, []any) (any, error) {
		called = true
		return nil, nil
	}, Func(func([]any) bool { return false }))

	_, err := h.AsHandler()(context.Background(), nil)

	req.ErrorIs(err, errors.ErrSuppressed)
	req.False(called)
}

func TestNot(t *testing.T) {
	req := require.New(t)

	req.False(Allow(Not(nil), nil))
	req.True(Allow(Not(Func(func([]any) bool { return false })), nil))
}

func TestTyped(t *testing.T) {
	req := require.New(t)
	f := Typed(0, func(s string) bool { return strings.HasPrefix(s, "go") })

	req.True(f.AllowInvocation([]any{"gopher"}))
	req.False(f.AllowInvocation([]any{"rust"}))
	req.False(f.AllowInvocation([]any{42}))
	req.False(f.AllowInvocation(nil))
}

func TestSessionFilter(t *testing.T) {
	req := require.New(t)
	alice, bob := uuid.New(), uuid.New()
	f := NewSessionFilter(1, alice)

	req.True(f.AllowInvocation([]any{"msg", alice}))
	req.True(f.AllowInvocation([]any{"msg", alice.String()}))
	req.False(f.AllowInvocation([]any{"msg", bob}))
	req.False(f.AllowInvocation([]any{"msg", "not-a-uuid"}))
	req.False(f.AllowInvocation([]any{"msg"}))
}

func TestKeywordFilter(t *testing.T) {
	req := require.New(t)
	f, err := NewKeywordFilter(0, "alert", "Outage")
	req.NoError(err)

	req.True(f.AllowInvocation([]any{"Major OUTAGE in eu-west"}))
	req.True(f.AllowInvocation([]any{"new alert raised"}))
	req.False(f.AllowInvocation([]any{"all good"}))
	req.False(f.AllowInvocation([]any{12}))

	_, err = NewKeywordFilter(0, "", "")
	req.Error(err)
}

func TestEquals_Coerces_Numbers(t *testing.T) {
	req := require.New(t)
	f := Equals(0, 3)
	id := uuid.New()

	req.True(f.AllowInvocation([]any{float64(3)}))
	req.True(f.AllowInvocation([]any{int64(3)}))
	req.False(f.AllowInvocation([]any{3.5}))
	req.True(Equals(0, id).AllowInvocation([]any{id.String()}))
	req.True(Equals(0, "a").AllowInvocation([]any{"a"}))
}

func TestBuild_From_Descriptor(t *testing.T) {
	req := require.New(t)
	alice := uuid.New()
	desc := CombineDescriptors(
		SessionsDescriptor(0, alice),
		KeywordsDescriptor(1, "deploy"),
		NotDescriptor(EqualsDescriptor(2, "draft")),
	)

	f, err := Build(desc)
	req.NoError(err)
	req.Equal(KindAnd, desc.Kind)
	req.Len(desc.Children, 3)

	req.True(Allow(f, []any{alice.String(), "deploy started", "final"}))
	req.False(Allow(f, []any{alice.String(), "deploy started", "draft"}))
	req.False(Allow(f, []any{uuid.NewString(), "deploy started", "final"}))
	req.False(Allow(f, []any{alice.String(), "idle", "final"}))
}

func TestBuild_Nil_And_Invalid(t *testing.T) {
	req := require.New(t)

	f, err := Build(nil)
	req.NoError(err)
	req.Nil(f)

	_, err = Build(&domain.FilterDescriptor{Kind: "unknown"})
	req.ErrorIs(err, errors.ErrInvalidFilter)

	_, err = Build(&domain.FilterDescriptor{})
	req.ErrorIs(err, errors.ErrInvalidFilter)

	_, err = Build(&domain.FilterDescriptor{Kind: KindSessions, Values: []any{"nope"}})
	req.ErrorIs(err, errors.ErrInvalidFilter)

	_, err = Build(&domain.FilterDescriptor{Kind: KindNot})
	req.ErrorIs(err, errors.ErrInvalidFilter)
}

func TestRegisterKind(t *testing.T) {
	req := require.New(t)
	RegisterKind("min-length", func(desc domain.FilterDescriptor) (Filter, error) {
		n, ok := desc.Values[0].(float64)
		if !ok {
			return nil, errors.ErrInvalidArgument
		}
		return Typed(desc.Index, func(s string) bool { return len(s) >= int(n) }), nil
	})

	f, err := Build(&domain.FilterDescriptor{Kind: "min-length", Values: []any{float64(3)}})

	req.NoError(err)
	req.True(Allow(f, []any{"abcd"}))
	req.False(Allow(f, []any{"ab"}))
}

func TestBuild_Nested_Composites(t *testing.T) {
	req := require.New(t)
	desc := &domain.FilterDescriptor{Kind: KindNot, Children: []domain.FilterDescriptor{{
		Kind: KindAnd,
		Children: []domain.FilterDescriptor{
			*KeywordsDescriptor(0, "alert"),
			*NotDescriptor(EqualsDescriptor(1, "muted")),
		},
	}}}

	f, err := Build(desc)

	req.NoError(err)
	req.False(Allow(f, []any{"alert raised", "loud"}))
	req.True(Allow(f, []any{"alert raised", "muted"}))
	req.True(Allow(f, []any{"all quiet", "loud"}))
}
