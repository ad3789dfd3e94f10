package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"zyan/domain"
	"zyan/errors"
	"zyan/filter"
	"zyan/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	iface  = "IFeed"
	member = "Published"
)

func newBlockingRegistry() *Registry {
	return NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug), WithBlockingDelivery())
}

func localToken(session uuid.UUID) domain.CorrelationToken {
	return domain.CorrelationToken{
		SessionID:     session,
		InterfaceName: iface,
		MemberName:    member,
		HandlerID:     uuid.New(),
		DeliveryMode:  domain.DeliveryLocal,
	}
}

func remoteToken(session uuid.UUID) domain.CorrelationToken {
	t := localToken(session)
	t.DeliveryMode = domain.DeliveryRemote
	return t
}

func counting(n *atomic.Int32) domain.Handler {
	return func(context.Context, []any) (any, error) {
		n.Add(1)
		return nil, nil
	}
}

func feed() (*domain.EventSlot, domain.Descriptor) {
	ev := domain.NewEventSlot(member, domain.Param("text", domain.TypeString))
	return ev, domain.Descriptor{Events: []*domain.EventSlot{ev}}
}

func TestRegistry_Add_Add_Remove(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	var a, b atomic.Int32
	tokenA, tokenB := localToken(uuid.New()), localToken(uuid.New())

	req.NoError(r.AddEventHandler(tokenA, counting(&a)))
	req.NoError(r.AddEventHandler(tokenB, counting(&b)))
	req.Equal(2, r.EntryCount(iface, member))

	req.NoError(r.RemoveEventHandler(tokenA))
	req.Equal(1, r.EntryCount(iface, member))

	_, err := r.Raise(context.Background(), iface, member, "hello")
	req.NoError(err)
	req.Equal(int32(0), a.Load())
	req.Equal(int32(1), b.Load())
}

func TestRegistry_Slot_Detached_When_Empty(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	ev, desc := feed()
	unbind := r.Bind(iface, desc)
	defer unbind()
	var n atomic.Int32
	token := localToken(uuid.New())

	req.False(ev.Attached())

	req.NoError(r.AddEventHandler(token, counting(&n)))
	req.True(ev.Attached())
	_, err := ev.Raise(context.Background(), "first")
	req.NoError(err)
	req.Equal(int32(1), n.Load())

	req.NoError(r.RemoveEventHandler(token))
	req.False(ev.Attached())
	_, err = ev.Raise(context.Background(), "second")
	req.NoError(err)
	req.Equal(int32(1), n.Load())
}

func TestRegistry_Unbind_Detaches_Instance(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	var n atomic.Int32
	req.NoError(r.AddEventHandler(localToken(uuid.New()), counting(&n)))
	ev, desc := feed()

	unbind := r.Bind(iface, desc)
	req.True(ev.Attached())

	unbind()
	unbind()
	req.False(ev.Attached())
	req.Equal(1, r.EntryCount(iface, member))
}

func TestRegistry_Rewrap_Combines_Filters_Without_Nesting(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	var n atomic.Int32
	token := localToken(uuid.New())
	first, second := token, token
	first.Filter = filter.KeywordsDescriptor(0, "alpha")
	second.Filter = filter.KeywordsDescriptor(0, "beta")

	req.NoError(r.AddEventHandler(first, counting(&n)))
	req.NoError(r.AddEventHandler(second, counting(&n)))
	req.Equal(1, r.EntryCount(iface, member))

	_, _ = r.Raise(context.Background(), iface, member, "alpha only")
	req.Equal(int32(0), n.Load())
	_, _ = r.Raise(context.Background(), iface, member, "alpha and beta")
	req.Equal(int32(1), n.Load())

	tokens := r.Tokens(token.SessionID, iface)
	req.Len(tokens, 1)
	req.Equal(filter.KindAnd, tokens[0].Filter.Kind)
	req.Len(tokens[0].Filter.Children, 2)
}

func TestRegistry_Readd_Takes_Latest_Target(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	var old, latest atomic.Int32
	token := localToken(uuid.New())
	first, second := token, token
	first.Filter = filter.KeywordsDescriptor(0, "alpha")
	second.FilterLocally = true

	req.NoError(r.AddEventHandler(first, counting(&old)))
	req.NoError(r.AddEventHandler(second, counting(&latest)))

	_, _ = r.Raise(context.Background(), iface, member, "beta")
	_, _ = r.Raise(context.Background(), iface, member, "alpha")
	req.Equal(int32(0), old.Load())
	req.Equal(int32(1), latest.Load())

	tokens := r.Tokens(token.SessionID, iface)
	req.Len(tokens, 1)
	req.True(tokens[0].FilterLocally)
	req.Equal(filter.KindKeywords, tokens[0].Filter.Kind)
}

func TestRegistry_Always_False_Filter_Never_Delivers(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	var n atomic.Int32
	token := localToken(uuid.New())
	token.Filter = filter.EqualsDescriptor(0, "never sent")
	req.NoError(r.AddEventHandler(token, counting(&n)))

	for i := 0; i < 100; i++ {
		_, err := r.Raise(context.Background(), iface, member, fmt.Sprintf("event %d", i))
		req.NoError(err)
	}

	req.Equal(int32(0), n.Load())
}

func TestRegistry_Remote_Delivery_Through_Sink(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockCallbackSink(ctrl)
	r := newBlockingRegistry()
	session := uuid.New()
	token := remoteToken(session)

	sink.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n domain.Notification) error {
			req.Equal(token.HandlerID, n.HandlerID)
			req.Equal(iface, n.InterfaceName)
			req.Equal(member, n.MemberName)
			req.Equal([]any{"breaking news"}, n.Args)
			return nil
		}).
		Times(1)

	unregister := r.RegisterSink(session, sink)
	req.NoError(r.AddEventHandler(token, nil))

	_, err := r.Raise(context.Background(), iface, member, "breaking news")
	req.NoError(err)

	unregister()
	_, err = r.Raise(context.Background(), iface, member, "nobody listens")
	req.ErrorIs(err, errors.ErrNoCallbackSink)
}

func TestRegistry_Blocking_Aggregates_Failures(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	failing := func(context.Context, []any) (any, error) { return nil, fmt.Errorf("subscriber down") }
	req.NoError(r.AddEventHandler(localToken(uuid.New()), failing))
	req.NoError(r.AddEventHandler(localToken(uuid.New()), failing))

	_, err := r.Raise(context.Background(), iface, member, "x")

	req.ErrorIs(err, errors.ErrSubscriberInvocationFailure)
}

func TestRegistry_Async_Delivery(t *testing.T) {
	req := require.New(t)
	r := NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug))
	var n atomic.Int32
	req.NoError(r.AddEventHandler(localToken(uuid.New()), counting(&n)))
	req.NoError(r.AddEventHandler(localToken(uuid.New()), counting(&n)))

	res, err := r.Raise(context.Background(), iface, member, "x")

	req.NoError(err)
	req.Nil(res)
	req.Eventually(func() bool { return n.Load() == 2 }, time.Second, 10*time.Millisecond)
}

func TestRegistry_Invalid_Tokens(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()

	req.ErrorIs(r.AddEventHandler(domain.CorrelationToken{}, nil), errors.ErrInvalidToken)
	req.ErrorIs(r.AddEventHandler(localToken(uuid.New()), nil), errors.ErrInvalidToken)

	bad := localToken(uuid.New())
	bad.Filter = &domain.FilterDescriptor{Kind: "unknown"}
	req.ErrorIs(r.AddEventHandler(bad, counting(new(atomic.Int32))), errors.ErrInvalidFilter)
	req.Equal(0, r.EntryCount(iface, member))
}

func TestRegistry_Reconcile_Keeps_Unchanged_Entries(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	session := uuid.New()
	_, desc := feed()
	members := Members(desc)
	t1, t2 := remoteToken(session), remoteToken(session)

	req.NoError(r.Reconcile(session, iface, []domain.CorrelationToken{t1, t2}, members))
	before := r.lookup(iface, member).delegate.Load()
	req.Equal(2, before.Len())

	req.NoError(r.Reconcile(session, iface, []domain.CorrelationToken{t2, t1}, members))
	req.Same(before, r.lookup(iface, member).delegate.Load())

	req.NoError(r.Reconcile(session, iface, []domain.CorrelationToken{t2}, members))
	tokens := r.Tokens(session, iface)
	req.Len(tokens, 1)
	req.Equal(t2.HandlerID, tokens[0].HandlerID)

	req.NoError(r.Reconcile(session, iface, nil, members))
	req.Equal(0, r.EntryCount(iface, member))
}

func TestRegistry_Reconcile_Leaves_Local_Handlers(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	session := uuid.New()
	_, desc := feed()
	members := Members(desc)
	var n atomic.Int32
	local := localToken(session)
	req.NoError(r.AddEventHandler(local, counting(&n)))

	req.NoError(r.Reconcile(session, iface, nil, members))
	req.NoError(r.Reconcile(session, iface, []domain.CorrelationToken{remoteToken(session)}, members))
	req.NoError(r.Reconcile(session, iface, nil, members))

	tokens := r.Tokens(session, iface)
	req.Len(tokens, 1)
	req.Equal(local.HandlerID, tokens[0].HandlerID)
	_, err := r.Raise(context.Background(), iface, member, "still here")
	req.NoError(err)
	req.Equal(int32(1), n.Load())
}

func TestRegistry_Reconcile_Fills_Session_And_Interface(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	session := uuid.New()
	token := domain.CorrelationToken{MemberName: member, HandlerID: uuid.New()}

	req.NoError(r.Reconcile(session, iface, []domain.CorrelationToken{token}, nil))

	tokens := r.Tokens(session, iface)
	req.Len(tokens, 1)
	req.Equal(session, tokens[0].SessionID)
	req.Equal(iface, tokens[0].InterfaceName)
}

func TestRegistry_Reconcile_Is_All_Or_Nothing(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	session := uuid.New()
	_, desc := feed()
	members := Members(desc)
	existing := remoteToken(session)
	req.NoError(r.Reconcile(session, iface, []domain.CorrelationToken{existing}, members))

	good := remoteToken(session)
	unknownMember := remoteToken(session)
	unknownMember.MemberName = "Deleted"

	err := r.Reconcile(session, iface, []domain.CorrelationToken{good, unknownMember}, members)

	req.ErrorIs(err, errors.ErrEventNotFound)
	tokens := r.Tokens(session, iface)
	req.Len(tokens, 1)
	req.Equal(existing.HandlerID, tokens[0].HandlerID)

	foreign := remoteToken(uuid.New())
	req.ErrorIs(r.Reconcile(session, iface, []domain.CorrelationToken{foreign}, members), errors.ErrInvalidToken)
	req.Len(r.Tokens(session, iface), 1)
}

func TestRegistry_RemoveSession(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockCallbackSink(ctrl)
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Times(0)
	r := newBlockingRegistry()
	gone, stays := uuid.New(), uuid.New()
	var n atomic.Int32

	r.RegisterSink(gone, sink)
	req.NoError(r.AddEventHandler(remoteToken(gone), nil))
	req.NoError(r.AddEventHandler(localToken(stays), counting(&n)))

	r.RemoveSession(gone)

	req.Empty(r.Tokens(gone, iface))
	req.Len(r.Tokens(stays, iface), 1)
	_, err := r.Raise(context.Background(), iface, member, "x")
	req.NoError(err)
	req.Equal(int32(1), n.Load())
}

func TestRegistry_Concurrent_Add_Remove_Raise(t *testing.T) {
	req := require.New(t)
	r := newBlockingRegistry()
	ev, desc := feed()
	defer r.Bind(iface, desc)()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				_, _ = ev.Raise(context.Background(), "tick")
			}
		}
	}()

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token := localToken(uuid.New())
			var n atomic.Int32
			for j := 0; j < 20; j++ {
				_ = r.AddEventHandler(token, counting(&n))
				_ = r.RemoveEventHandler(token)
			}
		}()
	}
	wg.Wait()
	close(stop)

	req.Equal(0, r.EntryCount(iface, member))
	req.False(ev.Attached())
}
