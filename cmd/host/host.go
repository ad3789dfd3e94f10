package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"zyan/auth"
	"zyan/catalog"
	"zyan/components"
	"zyan/contract"
	"zyan/correlation"
	"zyan/dispatch"
	"zyan/grpc/server"
	"zyan/grpc/wire"
	"zyan/internal"
	"zyan/repositories"
	"zyan/runtime/workers"
	"zyan/session"

	"github.com/dgraph-io/badger/v4"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const gracefulStopTimeout = 5 * time.Second

type host struct {
	log        *slog.Logger
	dispatcher *dispatch.Dispatcher
	sessions   *session.Registry
	pool       *workers.Pool
	server     *grpc.Server
	supervisor *workers.Supervisor
}

func newHost(config internal.Config, log *slog.Logger, db *badger.DB) (*host, error) {
	sessions := session.NewRegistry(log, session.WithAgeLimit(config.SessionAgeLimit))
	pool := workers.NewPool(log, config.NumberOfWorkers, config.QueueCapacity)

	registryOpts := []correlation.Option{correlation.WithPool(pool)}
	if config.BlockingDelivery {
		registryOpts = append(registryOpts, correlation.WithBlockingDelivery())
	}
	registry := correlation.NewRegistry(log, registryOpts...)

	provider, err := authProvider(config, log, db)
	if err != nil {
		return nil, err
	}
	dispatcher := dispatch.NewDispatcher(log, sessions, catalog.NewCatalog(log), registry,
		dispatch.WithPool(pool),
		dispatch.WithAuthenticationProvider(provider))

	clock := components.NewClock()
	if err := components.Register(dispatcher, log, clock); err != nil {
		return nil, fmt.Errorf("component registration failed: %w", err)
	}

	s := grpc.NewServer(server.ServerOptions(
		[]grpc.UnaryServerInterceptor{grpc3.UnaryLoggingInterceptor(log)}, nil)...)
	wire.RegisterHostServer(s, server.NewHostServer(log, dispatcher, config.CallbackBufferSize))

	h := &host{
		log:        log,
		dispatcher: dispatcher,
		sessions:   sessions,
		pool:       pool,
		server:     s,
		supervisor: workers.NewSupervisor(log),
	}
	h.supervisor.Add(pool.Workers()...)
	h.supervisor.Add(
		workers.NewSessionSweeperWorker(log, config.SessionSweepInterval, sessions),
		workers.NewHostStatsWorker(log, config.StatsInterval, h.stats),
		components.NewClockWorker(log, clock, config.ClockInterval),
	)
	return h, nil
}

func authProvider(config internal.Config, log *slog.Logger, db *badger.DB) (contract.AuthenticationProvider, error) {
	switch config.AuthMode {
	case internal.AuthAnonymous:
		return auth.AnonymousProvider{}, nil
	case internal.AuthPassword:
		return auth.NewPasswordProvider(repositories.NewUserRepository(db, log), log), nil
	case internal.AuthToken:
		return auth.NewTokenProvider(auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", config.AuthMode)
	}
}

func (h *host) stats() workers.HostStats {
	return workers.HostStats{
		Sessions:    h.sessions.Count(),
		Components:  len(h.dispatcher.Components()),
		QueueLength: h.pool.QueueLength(),
		Dropped:     h.pool.Dropped(),
	}
}

// serve runs the workers and the gRPC server until ctx is done or one of
// them fails.
func (h *host) serve(ctx context.Context, listener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.supervisor.Run(gctx)
		return nil
	})
	g.Go(func() error {
		h.log.Info("Starting gRPC server", "address", listener.Addr().String(), "at", time.Now().UTC())
		for serviceName := range h.server.GetServiceInfo() {
			h.log.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := h.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.log.Info("Shutting down gracefully...")
		h.stopServer()
		h.pool.Stop()
		return nil
	})
	return g.Wait()
}

// stopServer lets unary calls finish. Callback streams only end when their
// client leaves, so they are cut after gracefulStopTimeout.
func (h *host) stopServer() {
	done := make(chan struct{})
	go func() {
		h.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(gracefulStopTimeout):
		h.log.Warn("Graceful stop timed out, closing remaining streams")
		h.server.Stop()
	}
}
