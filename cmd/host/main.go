package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"zyan/internal"
	"zyan/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Host terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run owns every resource of the process so that deferred cleanups execute
// before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Database (BadgerDB), user store of the password provider
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) && config.DebugPort > 0 {
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugPort, endpoint, UserMapper)
	}

	// 4. Engine & transport
	h, err := newHost(config, logger, db)
	if err != nil {
		return exitConfig, err
	}
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	// 5. Block until a signal or a fatal error
	if err := h.serve(ctx, listener); err != nil {
		return exitRuntime, err
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}

// UserMapper renders user records in the Badger inspector without the hash.
func UserMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	if !strings.HasPrefix(key, "user:") {
		return row
	}
	user, err := repositories.DecodeUser(val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = "USER"
	row.Detail = fmt.Sprintf("%s (created %s)", user.Email, user.CreatedAt.Format("2006-01-02 15:04:05"))
	row.Scores = strings.Join(user.Roles, ",")
	return row
}
