package session

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"zyan/domain"
	"zyan/errors"
	"zyan/internal/testutil"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(clock *testutil.Clock) *Registry {
	return NewRegistry(logs.GetLoggerFromLevel(slog.LevelDebug),
		WithAgeLimit(10*time.Minute), WithClock(clock.Now))
}

func TestRegistry_Create_And_Validate(t *testing.T) {
	req := require.New(t)
	clock := testutil.NewClock()
	registry := newTestRegistry(clock)

	s := registry.Create(domain.Identity{Name: "alice", AuthenticationType: "password"})

	req.NotEqual(uuid.Nil, s.ID)
	req.True(clock.Now().Add(10 * time.Minute).Equal(s.ExpiresAt))
	req.Equal(1, registry.Count())

	got, err := registry.Validate(s.ID)
	req.NoError(err)
	req.Equal("alice", got.Identity.Name)
}

func TestRegistry_Validate_Unknown_Session(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(testutil.NewClock())

	_, err := registry.Validate(uuid.New())

	req.ErrorIs(err, errors.ErrInvalidSession)
}

func TestRegistry_Expired_Session_Is_Destroyed_Lazily(t *testing.T) {
	req := require.New(t)
	clock := testutil.NewClock()
	registry := newTestRegistry(clock)
	var destroyed []uuid.UUID
	registry.OnDestroy(func(s domain.Session) { destroyed = append(destroyed, s.ID) })

	s := registry.Create(domain.Identity{Name: "bob"})

	// When the age limit elapses without renewal
	clock.Advance(11 * time.Minute)

	// Then the session is still counted until someone uses it
	req.Equal(1, registry.Count())

	_, err := registry.Validate(s.ID)
	req.ErrorIs(err, errors.ErrInvalidSession)
	req.Equal(0, registry.Count())
	req.Equal([]uuid.UUID{s.ID}, destroyed)

	// And a second use doesn't run the hook again
	_, err = registry.Validate(s.ID)
	req.ErrorIs(err, errors.ErrInvalidSession)
	req.Len(destroyed, 1)
}

func TestRegistry_Renew_Slides_Expiry(t *testing.T) {
	req := require.New(t)
	clock := testutil.NewClock()
	registry := newTestRegistry(clock)
	s := registry.Create(domain.Identity{Name: "carol"})

	clock.Advance(8 * time.Minute)
	expiry, err := registry.Renew(s.ID)
	req.NoError(err)
	req.True(clock.Now().Add(10 * time.Minute).Equal(expiry))

	// 16 minutes after creation, but only 8 after renewal
	clock.Advance(8 * time.Minute)
	got, err := registry.Validate(s.ID)
	req.NoError(err)
	req.True(expiry.Equal(got.ExpiresAt))
}

func TestRegistry_Renew_Expired_Session_Fails(t *testing.T) {
	req := require.New(t)
	clock := testutil.NewClock()
	registry := newTestRegistry(clock)
	s := registry.Create(domain.Identity{Name: "dave"})

	clock.Advance(time.Hour)
	_, err := registry.Renew(s.ID)

	req.ErrorIs(err, errors.ErrInvalidSession)
	req.Equal(0, registry.Count())
}

func TestRegistry_Destroy(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(testutil.NewClock())
	hooks := 0
	registry.OnDestroy(func(domain.Session) { hooks++ })
	s := registry.Create(domain.Identity{Name: "erin"})

	req.NoError(registry.Destroy(s.ID))
	req.ErrorIs(registry.Destroy(s.ID), errors.ErrInvalidSession)

	_, err := registry.Validate(s.ID)
	req.ErrorIs(err, errors.ErrInvalidSession)
	req.Equal(1, hooks)
}

func TestRegistry_Sweep(t *testing.T) {
	req := require.New(t)
	clock := testutil.NewClock()
	registry := newTestRegistry(clock)
	old := registry.Create(domain.Identity{Name: "old"})
	clock.Advance(6 * time.Minute)
	fresh := registry.Create(domain.Identity{Name: "fresh"})
	clock.Advance(6 * time.Minute)

	req.Equal(1, registry.Sweep())

	_, err := registry.Validate(old.ID)
	req.ErrorIs(err, errors.ErrInvalidSession)
	_, err = registry.Validate(fresh.ID)
	req.NoError(err)
	req.Len(registry.List(), 1)
}

func TestRegistry_Concurrent_Validate_And_Renew(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(testutil.NewClock())
	s := registry.Create(domain.Identity{Name: "frank"})

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := registry.Validate(s.ID)
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := registry.Renew(s.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		req.NoError(err)
	}
	req.Equal(1, registry.Count())
}
