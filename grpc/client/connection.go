// Package client is the caller side of a zyan host. A Connection owns one
// session: it keeps the table of local handlers its subscriptions point to,
// attaches their tokens to every call on the same interface and delivers
// incoming notifications through a Scheduler.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"zyan/contract"
	"zyan/domain"
	"zyan/errors"
	"zyan/filter"
	"zyan/grpc/wire"
	"zyan/invoker"
	"zyan/runtime/workers"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultSchedulerBuffer = 256

type Option func(*Connection)

// WithScheduler replaces the default SerialScheduler. A scheduler that is
// also a contract.Worker runs under the connection's supervisor.
func WithScheduler(s Scheduler) Option {
	return func(c *Connection) { c.scheduler = s }
}

// WithKeepAlive renews the session every interval.
func WithKeepAlive(interval time.Duration) Option {
	return func(c *Connection) { c.keepAlive = interval }
}

type SubscribeOption func(*subscription)

type subscription struct {
	desc          *domain.FilterDescriptor
	local         filter.Filter
	filterLocally bool
}

// WithFilter sends a filter descriptor to the host, which evaluates it before
// anything crosses the wire.
func WithFilter(desc *domain.FilterDescriptor) SubscribeOption {
	return func(s *subscription) { s.desc = filter.CombineDescriptors(s.desc, desc) }
}

// FilterLocally re-evaluates the descriptor filter when the notification
// arrives.
func FilterLocally() SubscribeOption {
	return func(s *subscription) { s.filterLocally = true }
}

// WithLocalFilter adds a predicate that never leaves this process.
func WithLocalFilter(f filter.Filter) SubscribeOption {
	return func(s *subscription) {
		s.local = filter.Combine(s.local, f)
		s.filterLocally = true
	}
}

type handlerEntry struct {
	token     domain.CorrelationToken
	signature domain.Signature
	handler   domain.Handler
	filter    filter.Filter
}

type Connection struct {
	host      wire.HostClient
	log       *slog.Logger
	session   domain.Session
	scheduler Scheduler
	keepAlive time.Duration

	mu       sync.RWMutex
	handlers map[uuid.UUID]*handlerEntry

	cancel context.CancelFunc
	done   chan struct{}
	closed sync.Once
}

// Dial logs on with credentials and opens the callback stream. It returns
// once the host is ready to deliver notifications to this session.
func Dial(ctx context.Context, cc grpc.ClientConnInterface, log *slog.Logger,
	credentials map[string]string, opts ...Option) (*Connection, error) {
	c := &Connection{
		host:     wire.NewHostClient(cc),
		log:      log,
		handlers: make(map[uuid.UUID]*handlerEntry),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	resp, err := c.host.Logon(ctx, wire.LogonRequest(credentials))
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	if c.session, err = wire.DecodeSession(resp); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	receiver := &callbackReceiver{conn: c, ready: make(chan struct{})}
	supervisor := workers.NewSupervisor(log)
	supervisor.Add(receiver)
	if c.scheduler == nil {
		c.scheduler = NewSerialScheduler(log, defaultSchedulerBuffer)
	}
	if w, ok := c.scheduler.(contract.Worker); ok {
		supervisor.Add(w)
	}
	if c.keepAlive > 0 {
		supervisor.Add(NewKeepAliveWorker(log, c, c.keepAlive))
	}
	go func() {
		supervisor.Run(runCtx)
		close(c.done)
	}()

	select {
	case <-receiver.ready:
		log.Debug("Connected", "session_id", c.session.ID, "identity", c.session.Identity.Name)
		return c, nil
	case <-c.done:
		return nil, fmt.Errorf("%w: callback stream refused", errors.ErrInvalidSession)
	case <-ctx.Done():
		c.stop()
		return nil, ctx.Err()
	}
}

func (c *Connection) Session() domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Connection) outgoing(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, wire.SessionMetadataKey, c.session.ID.String())
}

// Invoke calls method on the host. The tokens of every handler this
// connection registered on interfaceName travel with the call, so the host
// always sees the full set of subscriptions of this session.
func (c *Connection) Invoke(ctx context.Context, interfaceName, method string,
	params []domain.ParamDef, args ...any) (any, error) {
	call := domain.Call{
		TrackingID:     uuid.New(),
		SessionID:      c.session.ID,
		InterfaceName:  interfaceName,
		MethodName:     method,
		ParamDefs:      params,
		Args:           args,
		CorrelationSet: c.correlationSet(interfaceName),
	}
	req, err := wire.EncodeCall(call)
	if err != nil {
		return nil, err
	}
	resp, err := c.host.Invoke(c.outgoing(ctx), req)
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return wire.DecodeResult(resp), nil
}

// AddEventHandler subscribes handler to an event of a hosted component.
// params describe the event arguments so they can be bound on arrival.
func (c *Connection) AddEventHandler(ctx context.Context, interfaceName, member string,
	params []domain.ParamDef, handler domain.Handler, opts ...SubscribeOption) (domain.CorrelationToken, error) {
	token, err := c.register(interfaceName, member, params, handler, opts)
	if err != nil {
		return domain.CorrelationToken{}, err
	}
	if err := c.send(ctx, c.host.AddEventHandler, token); err != nil {
		c.forget(token.HandlerID)
		return domain.CorrelationToken{}, err
	}
	return token, nil
}

func (c *Connection) RemoveEventHandler(ctx context.Context, token domain.CorrelationToken) error {
	c.forget(token.HandlerID)
	return c.send(ctx, c.host.RemoveEventHandler, token)
}

// Subscribe attaches handler to a host-wide named event.
func (c *Connection) Subscribe(ctx context.Context, name string, params []domain.ParamDef,
	handler domain.Handler, opts ...SubscribeOption) (domain.CorrelationToken, error) {
	token, err := c.register(domain.HostEventsInterface, name, params, handler, opts)
	if err != nil {
		return domain.CorrelationToken{}, err
	}
	if err := c.send(ctx, c.host.Subscribe, token); err != nil {
		c.forget(token.HandlerID)
		return domain.CorrelationToken{}, err
	}
	return token, nil
}

func (c *Connection) Unsubscribe(ctx context.Context, token domain.CorrelationToken) error {
	c.forget(token.HandlerID)
	return c.send(ctx, c.host.Unsubscribe, token)
}

func (c *Connection) Renew(ctx context.Context) (time.Time, error) {
	resp, err := c.host.RenewSession(c.outgoing(ctx), &structpb.Struct{})
	if err != nil {
		return time.Time{}, errors.FromGRPCError(err)
	}
	expiresAt := wire.ExpiryFromResponse(resp)
	c.mu.Lock()
	c.session.ExpiresAt = expiresAt
	c.session.LastRenewedAt = time.Now().UTC()
	c.mu.Unlock()
	return expiresAt, nil
}

// Close stops the background workers and logs off. The grpc.ClientConn
// stays open and belongs to the caller.
func (c *Connection) Close(ctx context.Context) error {
	c.stop()
	if _, err := c.host.Logoff(c.outgoing(ctx), &structpb.Struct{}); err != nil {
		return errors.FromGRPCError(err)
	}
	return nil
}

func (c *Connection) stop() {
	c.closed.Do(func() {
		if c.cancel != nil {
			c.cancel()
			<-c.done
		}
	})
}

type tokenCall func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

func (c *Connection) send(ctx context.Context, rpc tokenCall, token domain.CorrelationToken) error {
	req, err := wire.TokenRequest(token)
	if err != nil {
		return err
	}
	if _, err := rpc(c.outgoing(ctx), req); err != nil {
		return errors.FromGRPCError(err)
	}
	return nil
}

// register installs the local handler before the host knows the token, so
// that no notification can arrive for an unknown handler.
func (c *Connection) register(interfaceName, member string, params []domain.ParamDef,
	handler domain.Handler, opts []SubscribeOption) (domain.CorrelationToken, error) {
	if handler == nil {
		return domain.CorrelationToken{}, fmt.Errorf("%w: nil handler", errors.ErrInvalidArgument)
	}
	var sub subscription
	for _, opt := range opts {
		opt(&sub)
	}
	token := domain.CorrelationToken{
		SessionID:     c.session.ID,
		InterfaceName: interfaceName,
		MemberName:    member,
		HandlerID:     uuid.New(),
		Filter:        sub.desc,
		FilterLocally: sub.filterLocally,
		DeliveryMode:  domain.DeliveryRemote,
	}
	entry := &handlerEntry{token: token, signature: domain.SignatureOf(params), handler: handler}
	if sub.filterLocally {
		remote, err := filter.Build(sub.desc)
		if err != nil {
			return domain.CorrelationToken{}, err
		}
		entry.filter = filter.Combine(remote, sub.local)
	}
	c.mu.Lock()
	c.handlers[token.HandlerID] = entry
	c.mu.Unlock()
	return token, nil
}

func (c *Connection) forget(handlerID uuid.UUID) {
	c.mu.Lock()
	delete(c.handlers, handlerID)
	c.mu.Unlock()
}

func (c *Connection) correlationSet(interfaceName string) []domain.CorrelationToken {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var set []domain.CorrelationToken
	for _, e := range c.handlers {
		if e.token.InterfaceName == interfaceName {
			set = append(set, e.token)
		}
	}
	sort.Slice(set, func(i, j int) bool {
		return set[i].HandlerID.String() < set[j].HandlerID.String()
	})
	return set
}

// deliver binds the notification to the handler signature, applies the local
// filter and hands the call to the scheduler.
func (c *Connection) deliver(ctx context.Context, n domain.Notification) {
	c.mu.RLock()
	e, ok := c.handlers[n.HandlerID]
	c.mu.RUnlock()
	if !ok {
		c.log.Debug("No local handler for notification", "handler_id", n.HandlerID, "member", n.MemberName)
		return
	}
	args, err := invoker.GetInvoker(e.signature).Bind(n.Args)
	if err != nil {
		c.log.Warn("Notification arguments rejected", "member", n.MemberName, "error", err)
		return
	}
	if !filter.Allow(e.filter, args) {
		return
	}
	c.scheduler.Schedule(ctx, func() {
		if _, err := invoker.Call(ctx, e.handler, args); err != nil {
			c.log.Warn("Callback failed", "interface", n.InterfaceName, "member", n.MemberName, "error", err)
		}
	})
}
