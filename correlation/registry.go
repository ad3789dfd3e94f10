// Package correlation keeps the live link between correlation tokens and the
// event slots of component instances. One wired delegate exists per
// (interface, member); its entries are 1:1 with the live tokens.
package correlation

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"zyan/contract"
	"zyan/domain"
	"zyan/errors"
	"zyan/filter"
	"zyan/invoker"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var validate = validator.New()

// MemberSet lists the event members an interface exposes, with their
// signature. A nil MemberSet disables member validation.
type MemberSet map[string]domain.Signature

func Members(d domain.Descriptor) MemberSet {
	ms := make(MemberSet, len(d.Events))
	for _, e := range d.Events {
		ms[e.Name] = e.Signature
	}
	return ms
}

type slotKey struct {
	iface  string
	member string
}

type entry struct {
	token   domain.CorrelationToken
	handler *filter.Handler
}

// slot is the wired delegate of one (interface, member). Writers serialize on
// mu; triggers only load the delegate snapshot.
type slot struct {
	key      slotKey
	mu       sync.Mutex
	entries  map[domain.TokenKey]entry
	bound    map[*domain.EventSlot]func()
	delegate atomic.Pointer[invoker.Delegate]
	trigger  domain.Handler
}

type Option func(*Registry)

// WithBlockingDelivery runs subscribers on the raiser's goroutine, in list
// order, and hands their aggregated outcome back to the raiser.
func WithBlockingDelivery() Option {
	return func(r *Registry) { r.blocking = true }
}

// WithPool sets the thread pool used by asynchronous delivery.
func WithPool(pool contract.ThreadPool) Option {
	return func(r *Registry) { r.pool = pool }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

type Registry struct {
	log      *slog.Logger
	pool     contract.ThreadPool
	oneWay   *invoker.OneWay
	blocking bool
	now      func() time.Time

	mu    sync.RWMutex
	slots map[slotKey]*slot

	sinksMu sync.RWMutex
	sinks   map[uuid.UUID]*sinkBox
}

type sinkBox struct {
	sink contract.CallbackSink
}

func NewRegistry(log *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		log:   log,
		pool:  invoker.GoPool{},
		now:   time.Now,
		slots: make(map[slotKey]*slot),
		sinks: make(map[uuid.UUID]*sinkBox),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.oneWay = invoker.NewOneWay(r.pool, log)
	return r
}

// AddEventHandler registers a subscriber. Local tokens need the in-process
// handler; remote ones forward to the session's callback sink. Adding a
// token already present combines the filters and replaces the entry: the
// target, delivery mode and FilterLocally of the latest token win.
func (r *Registry) AddEventHandler(token domain.CorrelationToken, local domain.Handler) error {
	prepared, err := r.prepare(token, local, nil)
	if err != nil {
		return err
	}
	s := r.slotFor(prepared.token.InterfaceName, prepared.token.MemberName)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[prepared.token.Key()]; ok {
		h := filter.Wrap(prepared.handler.Target(), filter.Combine(existing.handler.Filter(), prepared.handler.Filter()))
		h.FilterLocally = prepared.token.FilterLocally
		prepared.handler = h
		prepared.token.Filter = filter.CombineDescriptors(existing.token.Filter, token.Filter)
	}
	r.put(s, prepared)
	return nil
}

// RemoveEventHandler drops the subscriber identified by the token key. An
// unknown token is a no-op.
func (r *Registry) RemoveEventHandler(token domain.CorrelationToken) error {
	s := r.lookup(token.InterfaceName, token.MemberName)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.remove(s, token.Key())
	return nil
}

// Reconcile brings the tokens of sessionID on interfaceName to the desired
// set. Unchanged tokens keep their entry. Every desired token is validated
// and built before anything is mutated, so a bad token leaves the registry
// untouched.
func (r *Registry) Reconcile(sessionID uuid.UUID, interfaceName string, desired []domain.CorrelationToken, members MemberSet) error {
	prepared := make(map[domain.TokenKey]entry, len(desired))
	for _, t := range desired {
		if t.SessionID == uuid.Nil {
			t.SessionID = sessionID
		}
		if t.InterfaceName == "" {
			t.InterfaceName = interfaceName
		}
		if t.SessionID != sessionID || t.InterfaceName != interfaceName {
			return fmt.Errorf("%w: token %s does not belong to session %s on %s",
				errors.ErrInvalidToken, t.HandlerID, sessionID, interfaceName)
		}
		if t.DeliveryMode != domain.DeliveryRemote {
			return fmt.Errorf("%w: correlation sets carry remote tokens only", errors.ErrInvalidToken)
		}
		e, err := r.prepare(t, nil, members)
		if err != nil {
			return err
		}
		prepared[t.Key()] = e
	}

	// Local subscribers never travel in a correlation set.
	current := lo.Filter(r.Tokens(sessionID, interfaceName), func(t domain.CorrelationToken, _ int) bool {
		return t.DeliveryMode == domain.DeliveryRemote
	})
	for _, t := range current {
		if _, keep := prepared[t.Key()]; keep {
			continue
		}
		_ = r.RemoveEventHandler(t)
	}
	for _, t := range current {
		if e, ok := prepared[t.Key()]; ok && reflect.DeepEqual(e.token, t) {
			delete(prepared, t.Key())
		}
	}
	for _, e := range prepared {
		s := r.slotFor(e.token.InterfaceName, e.token.MemberName)
		s.mu.Lock()
		r.put(s, e)
		s.mu.Unlock()
	}
	return nil
}

// Bind attaches the wired delegates of interfaceName to the event slots of
// one instance. Slots whose delegate is empty are attached later, when their
// first entry arrives. The returned function detaches everything Bind did.
func (r *Registry) Bind(interfaceName string, descriptor domain.Descriptor) (unbind func()) {
	events := append([]*domain.EventSlot(nil), descriptor.Events...)
	for _, ev := range events {
		s := r.slotFor(interfaceName, ev.Name)
		s.mu.Lock()
		if _, ok := s.bound[ev]; !ok {
			var detach func()
			if s.delegate.Load() != nil {
				detach = ev.Attach(s.trigger)
			}
			s.bound[ev] = detach
		}
		s.mu.Unlock()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for _, ev := range events {
				s := r.lookup(interfaceName, ev.Name)
				if s == nil {
					continue
				}
				s.mu.Lock()
				if detach, ok := s.bound[ev]; ok {
					if detach != nil {
						detach()
					}
					delete(s.bound, ev)
				}
				s.mu.Unlock()
			}
		})
	}
}

// Raise runs the wired delegate of (interfaceName, member) directly. It is how
// host-wide events, which have no component slot, are published.
func (r *Registry) Raise(ctx context.Context, interfaceName, member string, args ...any) (any, error) {
	s := r.lookup(interfaceName, member)
	if s == nil {
		return nil, nil
	}
	return s.trigger(ctx, args)
}

// RemoveSession drops every token owned by sessionID together with its sink.
func (r *Registry) RemoveSession(sessionID uuid.UUID) {
	removed := 0
	for _, s := range r.allSlots() {
		s.mu.Lock()
		for key := range s.entries {
			if key.SessionID == sessionID {
				r.remove(s, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	r.UnregisterSink(sessionID)
	if removed > 0 {
		r.log.Debug("Session tokens removed", "session", sessionID, "count", removed)
	}
}

// Tokens lists the live tokens of sessionID on interfaceName, ordered by
// member then handler id.
func (r *Registry) Tokens(sessionID uuid.UUID, interfaceName string) []domain.CorrelationToken {
	var res []domain.CorrelationToken
	for _, s := range r.allSlots() {
		if s.key.iface != interfaceName {
			continue
		}
		s.mu.Lock()
		for key, e := range s.entries {
			if key.SessionID == sessionID {
				res = append(res, e.token)
			}
		}
		s.mu.Unlock()
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].MemberName != res[j].MemberName {
			return res[i].MemberName < res[j].MemberName
		}
		return res[i].HandlerID.String() < res[j].HandlerID.String()
	})
	return res
}

func (r *Registry) EntryCount(interfaceName, member string) int {
	s := r.lookup(interfaceName, member)
	if s == nil {
		return 0
	}
	return s.delegate.Load().Len()
}

// RegisterSink sets the callback sink of a session, replacing any previous
// one. The returned function only unregisters this very sink.
func (r *Registry) RegisterSink(sessionID uuid.UUID, sink contract.CallbackSink) (unregister func()) {
	box := &sinkBox{sink: sink}
	r.sinksMu.Lock()
	r.sinks[sessionID] = box
	r.sinksMu.Unlock()
	return func() {
		r.sinksMu.Lock()
		defer r.sinksMu.Unlock()
		if r.sinks[sessionID] == box {
			delete(r.sinks, sessionID)
		}
	}
}

func (r *Registry) UnregisterSink(sessionID uuid.UUID) {
	r.sinksMu.Lock()
	defer r.sinksMu.Unlock()
	delete(r.sinks, sessionID)
}

func (r *Registry) sink(sessionID uuid.UUID) contract.CallbackSink {
	r.sinksMu.RLock()
	defer r.sinksMu.RUnlock()
	if box, ok := r.sinks[sessionID]; ok {
		return box.sink
	}
	return nil
}

// prepare validates a token and builds its entry without touching any slot.
func (r *Registry) prepare(token domain.CorrelationToken, local domain.Handler, members MemberSet) (entry, error) {
	if err := validate.Struct(token); err != nil {
		return entry{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	if members != nil {
		if _, ok := members[token.MemberName]; !ok {
			return entry{}, fmt.Errorf("%w: %s.%s", errors.ErrEventNotFound, token.InterfaceName, token.MemberName)
		}
	}
	f, err := filter.Build(token.Filter)
	if err != nil {
		return entry{}, err
	}

	var target domain.Handler
	switch token.DeliveryMode {
	case domain.DeliveryLocal:
		if local == nil {
			return entry{}, fmt.Errorf("%w: local token without handler", errors.ErrInvalidToken)
		}
		target = local
	default:
		target = r.forward(token)
	}
	h := filter.Wrap(target, f)
	h.FilterLocally = token.FilterLocally
	return entry{token: token, handler: h}, nil
}

// forward builds the target of a remote token: a notification pushed to the
// sink registered for the owning session at raise time.
func (r *Registry) forward(token domain.CorrelationToken) domain.Handler {
	return func(ctx context.Context, args []any) (any, error) {
		sink := r.sink(token.SessionID)
		if sink == nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrNoCallbackSink, token.SessionID)
		}
		return nil, sink.Consume(ctx, domain.Notification{
			HandlerID:     token.HandlerID,
			InterfaceName: token.InterfaceName,
			MemberName:    token.MemberName,
			Args:          args,
			RaisedAt:      r.now().UTC(),
		})
	}
}

func (r *Registry) lookup(iface, member string) *slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[slotKey{iface: iface, member: member}]
}

func (r *Registry) slotFor(iface, member string) *slot {
	if s := r.lookup(iface, member); s != nil {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := slotKey{iface: iface, member: member}
	if s, ok := r.slots[key]; ok {
		return s
	}
	s := &slot{
		key:     key,
		entries: make(map[domain.TokenKey]entry),
		bound:   make(map[*domain.EventSlot]func()),
	}
	s.trigger = r.triggerOf(s)
	r.slots[key] = s
	return s
}

func (r *Registry) allSlots() []*slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*slot, 0, len(r.slots))
	for _, s := range r.slots {
		res = append(res, s)
	}
	return res
}

func (r *Registry) triggerOf(s *slot) domain.Handler {
	return func(ctx context.Context, args []any) (any, error) {
		d := s.delegate.Load()
		if d == nil {
			return nil, nil
		}
		args = append([]any(nil), args...)
		if r.blocking {
			return invoker.SafeInvoke(ctx, d, args)
		}
		r.oneWay.Invoke(ctx, d, args, nil)
		return nil, nil
	}
}

// put and remove must be called with s.mu held.

func (r *Registry) put(s *slot, e entry) {
	key := e.token.Key()
	s.entries[key] = e
	prev := s.delegate.Load()
	s.delegate.Store(prev.With(invoker.Entry{Key: key, Fn: e.handler.AsHandler()}))
	if prev == nil {
		for ev := range s.bound {
			s.bound[ev] = ev.Attach(s.trigger)
		}
	}
	r.log.Debug("Event handler added",
		"interface", key.InterfaceName, "member", key.MemberName,
		"session", key.SessionID, "handler", key.HandlerID, "mode", e.token.DeliveryMode.String())
}

func (r *Registry) remove(s *slot, key domain.TokenKey) {
	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	next := s.delegate.Load().Without(key)
	s.delegate.Store(next)
	if next == nil {
		for ev, detach := range s.bound {
			if detach != nil {
				detach()
			}
			s.bound[ev] = nil
		}
	}
	r.log.Debug("Event handler removed",
		"interface", key.InterfaceName, "member", key.MemberName,
		"session", key.SessionID, "handler", key.HandlerID)
}
