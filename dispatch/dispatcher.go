// Package dispatch routes inbound calls to component instances under session
// control and manages the subscriptions attached to them.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"zyan/catalog"
	"zyan/contract"
	"zyan/correlation"
	"zyan/domain"
	"zyan/errors"
	"zyan/invoker"
	"zyan/session"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

var _ contract.IDispatcher = (*Dispatcher)(nil)

type Option func(*Dispatcher)

func WithObserver(o CallObserver) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// WithPool sets the pool one way methods run on.
func WithPool(pool contract.ThreadPool) Option {
	return func(d *Dispatcher) { d.pool = pool }
}

func WithAuthenticationProvider(p contract.AuthenticationProvider) Option {
	return func(d *Dispatcher) { d.auth = p }
}

type Dispatcher struct {
	log      *slog.Logger
	sessions *session.Registry
	catalog  *catalog.Catalog
	registry *correlation.Registry
	auth     contract.AuthenticationProvider
	pool     contract.ThreadPool
	oneWay   *invoker.OneWay
	observer CallObserver

	mu         sync.Mutex
	singletons map[string]func() // interface -> unbind of its singleton instance
}

func NewDispatcher(
	log *slog.Logger,
	sessions *session.Registry,
	catalog *catalog.Catalog,
	registry *correlation.Registry,
	opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:        log,
		sessions:   sessions,
		catalog:    catalog,
		registry:   registry,
		pool:       invoker.GoPool{},
		singletons: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.oneWay = invoker.NewOneWay(d.pool, log)
	sessions.OnDestroy(func(s domain.Session) {
		registry.RemoveSession(s.ID)
	})
	return d
}

func (d *Dispatcher) RegisterComponent(interfaceName string, factory domain.Factory, policy domain.ActivationPolicy) error {
	return d.catalog.Register(interfaceName, factory, policy)
}

func (d *Dispatcher) Components() []catalog.Registration {
	return d.catalog.Registrations()
}

func (d *Dispatcher) Sessions() []domain.Session {
	return d.sessions.List()
}

// Logon consults the authentication provider once and opens a session for
// the identity it returns.
func (d *Dispatcher) Logon(ctx context.Context, req domain.AuthRequest) (domain.Session, error) {
	if d.auth == nil {
		return domain.Session{}, fmt.Errorf("%w: no authentication provider configured", errors.ErrAuthenticationFailed)
	}
	res := d.auth.Authenticate(ctx, req)
	if !res.Success {
		d.log.Info("Logon refused", "reason", res.ErrorMessage)
		return domain.Session{}, fmt.Errorf("%w: %s", errors.ErrAuthenticationFailed, res.ErrorMessage)
	}
	s := d.sessions.Create(res.Identity)
	d.log.Info("Logon", "session", s.ID, "identity", s.Identity.Name, "type", s.Identity.AuthenticationType)
	return s, nil
}

func (d *Dispatcher) Logoff(_ context.Context, sessionID uuid.UUID) error {
	if err := d.sessions.Destroy(sessionID); err != nil {
		return err
	}
	d.log.Info("Logoff", "session", sessionID)
	return nil
}

func (d *Dispatcher) RenewSession(_ context.Context, sessionID uuid.UUID) (time.Time, error) {
	return d.sessions.Renew(sessionID)
}

// Invoke runs one call through its whole lifecycle. The target method is
// never entered when the session is invalid, and a SingleCall instance is
// always released, after the asynchronous run for one way methods.
func (d *Dispatcher) Invoke(ctx context.Context, call domain.Call) (any, error) {
	if call.TrackingID == uuid.Nil {
		call.TrackingID = uuid.New()
	}
	d.observe(call, Received, nil)
	fault := func(err error) (any, error) {
		d.observe(call, Faulted, err)
		return nil, err
	}

	sess, err := d.sessions.Validate(call.SessionID)
	if err != nil {
		return fault(err)
	}
	d.observe(call, SessionValidated, nil)
	if err := validate.Struct(call); err != nil {
		return fault(fmt.Errorf("%w: %v", errors.ErrInvalidArgument, err))
	}

	handle, err := d.catalog.Resolve(call.InterfaceName)
	if err != nil {
		return fault(err)
	}
	d.observe(call, Activated, nil)

	descriptor := handle.Component.Describe()
	unbind := d.bind(handle, descriptor)
	var once sync.Once
	deactivate := func() {
		once.Do(func() {
			unbind()
			handle.Release()
			d.observe(call, Deactivated, nil)
		})
	}
	async := false
	defer func() {
		if !async {
			deactivate()
		}
	}()

	// Method resolution comes before reconciliation so an unknown method
	// leaves the subscriptions untouched.
	method, ok := descriptor.Method(call.MethodName, call.ParamDefs)
	if !ok {
		return fault(fmt.Errorf("%w: %s.%s", errors.ErrMethodResolution, call.InterfaceName, call.MethodName))
	}
	args, err := invoker.GetInvoker(method.Signature()).Bind(call.Args)
	if err != nil {
		return fault(err)
	}
	if err := d.registry.Reconcile(sess.ID, call.InterfaceName, call.CorrelationSet, correlation.Members(descriptor)); err != nil {
		return fault(err)
	}

	ctx = withSession(ctx, sess)
	d.observe(call, Invoking, nil)

	if method.OneWay {
		async = true
		entry := invoker.Entry{Key: call.TrackingID, Fn: method.Fn}
		d.oneWay.Invoke(ctx, invoker.NewDelegate(entry), args, deactivate)
		d.observe(call, Completed, nil)
		return nil, nil
	}

	res, err := invoker.Call(ctx, method.Fn, args)
	if err != nil {
		return fault(err)
	}
	d.observe(call, Completed, nil)
	return res, nil
}

// AddEventHandler subscribes to an event of a registered component. A
// singleton is activated on the spot so that its events flow from now on.
func (d *Dispatcher) AddEventHandler(_ context.Context, token domain.CorrelationToken, local domain.Handler) error {
	if _, err := d.sessions.Validate(token.SessionID); err != nil {
		return err
	}
	handle, err := d.catalog.Resolve(token.InterfaceName)
	if err != nil {
		return err
	}
	descriptor := handle.Component.Describe()
	if handle.Policy == domain.Singleton {
		d.bind(handle, descriptor)
	}
	handle.Release()
	if _, ok := descriptor.Event(token.MemberName); !ok {
		return fmt.Errorf("%w: %s.%s", errors.ErrEventNotFound, token.InterfaceName, token.MemberName)
	}
	return d.registry.AddEventHandler(token, local)
}

func (d *Dispatcher) RemoveEventHandler(_ context.Context, token domain.CorrelationToken) error {
	if _, err := d.sessions.Validate(token.SessionID); err != nil {
		return err
	}
	return d.registry.RemoveEventHandler(token)
}

// Subscribe attaches a handler to a host-wide named event.
func (d *Dispatcher) Subscribe(_ context.Context, token domain.CorrelationToken, local domain.Handler) error {
	if _, err := d.sessions.Validate(token.SessionID); err != nil {
		return err
	}
	token.InterfaceName = domain.HostEventsInterface
	return d.registry.AddEventHandler(token, local)
}

func (d *Dispatcher) Unsubscribe(_ context.Context, token domain.CorrelationToken) error {
	if _, err := d.sessions.Validate(token.SessionID); err != nil {
		return err
	}
	token.InterfaceName = domain.HostEventsInterface
	return d.registry.RemoveEventHandler(token)
}

// PublishEvent raises a host-wide named event.
func (d *Dispatcher) PublishEvent(ctx context.Context, name string, args ...any) (any, error) {
	return d.registry.Raise(ctx, domain.HostEventsInterface, name, args...)
}

func (d *Dispatcher) RegisterCallbackSink(sessionID uuid.UUID, sink contract.CallbackSink) (func(), error) {
	if _, err := d.sessions.Validate(sessionID); err != nil {
		return nil, err
	}
	return d.registry.RegisterSink(sessionID, sink), nil
}

// Reset detaches and disposes every singleton instance.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	for name, unbind := range d.singletons {
		unbind()
		delete(d.singletons, name)
	}
	d.mu.Unlock()
	d.catalog.Reset()
}

// bind wires the instance event slots. Singletons are bound once for their
// lifetime and the returned function is a no-op; SingleCall instances are
// bound for the duration of the call.
func (d *Dispatcher) bind(handle *catalog.Handle, descriptor domain.Descriptor) (unbind func()) {
	if handle.Policy == domain.SingleCall {
		return d.registry.Bind(handle.InterfaceName, descriptor)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.singletons[handle.InterfaceName]; !ok {
		d.singletons[handle.InterfaceName] = d.registry.Bind(handle.InterfaceName, descriptor)
	}
	return func() {}
}

func (d *Dispatcher) observe(call domain.Call, state CallState, err error) {
	if d.observer != nil {
		d.observer(call, state, err)
	}
}
