package main

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"zyan/auth"
	"zyan/components"
	"zyan/domain"
	"zyan/errors"
	"zyan/grpc/client"
	"zyan/internal"
	"zyan/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func testConfig(t *testing.T) internal.Config {
	return internal.Config{
		Port:                 9090,
		LogLevel:             "DEBUG",
		SessionAgeLimit:      time.Minute,
		SessionSweepInterval: 50 * time.Millisecond,
		NumberOfWorkers:      4,
		QueueCapacity:        100,
		CallbackBufferSize:   16,
		AuthMode:             internal.AuthPassword,
		AuthTokenDuration:    time.Hour,
		BadgerFilepath:       t.TempDir(),
		StatsInterval:        50 * time.Millisecond,
		ClockInterval:        20 * time.Millisecond,
	}
}

func TestHost_Password_Logon_And_Events(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	config := testConfig(t)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLogger(nil))
	req.NoError(err)
	defer func() { _ = db.Close() }()

	hash, err := auth.HashPassword("ComplexPass123!")
	req.NoError(err)
	_, err = repositories.NewUserRepository(db, log).CreateUser("alice@example.com", hash, []string{"admin"})
	req.NoError(err)

	h, err := newHost(config, log, db)
	req.NoError(err)
	listener := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- h.serve(ctx, listener) }()

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)
	defer func() { _ = cc.Close() }()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer dialCancel()
	_, err = client.Dial(dialCtx, cc, log, map[string]string{
		auth.CredentialEmail: "alice@example.com", auth.CredentialPassword: "wrong-Password1!",
	})
	req.ErrorIs(err, errors.ErrAuthenticationFailed)

	conn, err := client.Dial(dialCtx, cc, log, map[string]string{
		auth.CredentialEmail: "alice@example.com", auth.CredentialPassword: "ComplexPass123!",
	})
	req.NoError(err)
	req.True(conn.Session().Identity.HasRole("admin"))

	// Ticks come from the clock worker through the async pool
	var mu sync.Mutex
	var seqs []int64
	_, err = conn.AddEventHandler(context.Background(), components.ClockInterface, components.TickEvent,
		[]domain.ParamDef{domain.Param("seq", domain.TypeInt64), domain.Param("at", domain.TypeTime)},
		func(_ context.Context, args []any) (any, error) {
			mu.Lock()
			defer mu.Unlock()
			seqs = append(seqs, args[0].(int64))
			return nil, nil
		})
	req.NoError(err)
	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seqs) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	count, err := conn.Invoke(context.Background(), components.BoardInterface, "Post", nil, "hello")
	req.NoError(err)
	req.Equal(float64(1), count)
	req.Equal(1, h.stats().Sessions)

	req.NoError(conn.Close(context.Background()))
	cancel()
	select {
	case err := <-served:
		req.NoError(err)
	case <-time.After(10 * time.Second):
		req.Fail("host did not stop")
	}
}

func TestUserMapper(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	req.NoError(err)
	defer func() { _ = db.Close() }()
	repo := repositories.NewUserRepository(db, logs.GetLoggerFromLevel(slog.LevelDebug))
	_, err = repo.CreateUser("bob@example.com", "secret-hash", []string{"user", "ops"})
	req.NoError(err)

	var raw []byte
	req.NoError(db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:bob@example.com"))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	}))
	row := UserMapper("user:bob@example.com", raw)

	req.Equal("USER", row.Type)
	req.Contains(row.Detail, "bob@example.com")
	req.NotContains(row.Detail, "secret-hash")
	req.Equal("user,ops", row.Scores)
}
