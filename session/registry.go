// Package session keeps track of authenticated sessions and their sliding
// expiry. Sessions live in memory only.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"zyan/domain"
	"zyan/errors"

	"github.com/google/uuid"
)

const DefaultAgeLimit = 20 * time.Minute

type Option func(*Registry)

// WithAgeLimit sets the sliding expiry window measured from the last renewal.
func WithAgeLimit(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.ageLimit = d
		}
	}
}

// WithClock replaces time.Now, mostly to simulate expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

type entry struct {
	id        uuid.UUID
	identity  domain.Identity
	createdAt time.Time
	renewedAt atomic.Int64
	expiresAt atomic.Int64
}

func (e *entry) snapshot() domain.Session {
	return domain.Session{
		ID:            e.id,
		Identity:      e.identity,
		CreatedAt:     e.createdAt,
		LastRenewedAt: time.Unix(0, e.renewedAt.Load()).UTC(),
		ExpiresAt:     time.Unix(0, e.expiresAt.Load()).UTC(),
	}
}

// Registry is safe for any number of concurrent Validate/Renew callers: the
// hot path only touches a sync.Map and atomics. Create and Destroy serialize
// on mu.
type Registry struct {
	mu       sync.Mutex
	sessions sync.Map // uuid.UUID -> *entry
	count    atomic.Int64
	ageLimit time.Duration
	now      func() time.Time
	log      *slog.Logger

	hooksMu   sync.RWMutex
	onDestroy []func(domain.Session)
}

func NewRegistry(log *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		ageLimit: DefaultAgeLimit,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) AgeLimit() time.Duration {
	return r.ageLimit
}

// OnDestroy registers a hook called exactly once for every session removed by
// Destroy, by lazy expiry or by Sweep.
func (r *Registry) OnDestroy(fn func(domain.Session)) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.onDestroy = append(r.onDestroy, fn)
}

// Create opens a new session for an already authenticated identity.
func (r *Registry) Create(identity domain.Identity) domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	e := &entry{id: uuid.New(), identity: identity, createdAt: now}
	e.renewedAt.Store(now.UnixNano())
	e.expiresAt.Store(now.Add(r.ageLimit).UnixNano())
	r.sessions.Store(e.id, e)
	r.count.Add(1)

	r.log.Debug("Session created", "session_id", e.id, "identity", identity.Name)
	return e.snapshot()
}

// Validate returns the session if it exists and has not expired. An expired
// session is destroyed on the spot.
func (r *Registry) Validate(id uuid.UUID) (domain.Session, error) {
	v, ok := r.sessions.Load(id)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: unknown session %s", errors.ErrInvalidSession, id)
	}
	e := v.(*entry)
	s := e.snapshot()
	if s.Expired(r.now()) {
		r.expire(e)
		return domain.Session{}, fmt.Errorf("%w: session %s expired at %s",
			errors.ErrInvalidSession, id, s.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return s, nil
}

// Renew slides the expiry window forward and returns the new expiry.
func (r *Registry) Renew(id uuid.UUID) (time.Time, error) {
	v, ok := r.sessions.Load(id)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown session %s", errors.ErrInvalidSession, id)
	}
	e := v.(*entry)
	now := r.now()
	next := now.Add(r.ageLimit).UnixNano()
	for {
		current := e.expiresAt.Load()
		if now.UnixNano() > current {
			r.expire(e)
			return time.Time{}, fmt.Errorf("%w: session %s expired", errors.ErrInvalidSession, id)
		}
		if e.expiresAt.CompareAndSwap(current, next) {
			e.renewedAt.Store(now.UnixNano())
			return time.Unix(0, next).UTC(), nil
		}
	}
}

// Destroy removes the session and runs the destroy hooks.
func (r *Registry) Destroy(id uuid.UUID) error {
	r.mu.Lock()
	v, ok := r.sessions.LoadAndDelete(id)
	if ok {
		r.count.Add(-1)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown session %s", errors.ErrInvalidSession, id)
	}
	s := v.(*entry).snapshot()
	r.log.Debug("Session destroyed", "session_id", id)
	r.runHooks(s)
	return nil
}

// Sweep destroys every session already past its expiry and returns how many
// were removed.
func (r *Registry) Sweep() int {
	var expired []*entry
	now := r.now().UnixNano()
	r.sessions.Range(func(_, v any) bool {
		e := v.(*entry)
		if now > e.expiresAt.Load() {
			expired = append(expired, e)
		}
		return true
	})
	removed := 0
	for _, e := range expired {
		if r.expire(e) {
			removed++
		}
	}
	if removed > 0 {
		r.log.Info(fmt.Sprintf("%d expired sessions swept", removed))
	}
	return removed
}

func (r *Registry) Count() int {
	return int(r.count.Load())
}

// List returns a snapshot of every live session.
func (r *Registry) List() []domain.Session {
	now := r.now()
	var res []domain.Session
	r.sessions.Range(func(_, v any) bool {
		s := v.(*entry).snapshot()
		if !s.Expired(now) {
			res = append(res, s)
		}
		return true
	})
	return res
}

// expire removes e only if it is still registered and still expired, so that
// a concurrent renewal which won the race keeps the session alive.
func (r *Registry) expire(e *entry) bool {
	r.mu.Lock()
	current, ok := r.sessions.Load(e.id)
	if !ok || current.(*entry) != e || r.now().UnixNano() <= e.expiresAt.Load() {
		r.mu.Unlock()
		return false
	}
	r.sessions.Delete(e.id)
	r.count.Add(-1)
	r.mu.Unlock()

	r.log.Debug("Session expired", "session_id", e.id)
	r.runHooks(e.snapshot())
	return true
}

func (r *Registry) runHooks(s domain.Session) {
	r.hooksMu.RLock()
	hooks := append([]func(domain.Session){}, r.onDestroy...)
	r.hooksMu.RUnlock()
	for _, hook := range hooks {
		hook(s)
	}
}
