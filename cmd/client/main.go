// Command client logs on to a zyan host, follows the clock and the message
// board, and posts any text given on the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"zyan/auth"
	"zyan/components"
	"zyan/filter"
	"zyan/grpc/client"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerAddress string        `envconfig:"ZYAN_SERVER_ADDR" default:"localhost:8080"`
	Name          string        `envconfig:"ZYAN_NAME" default:"guest"`
	Email         string        `envconfig:"ZYAN_EMAIL"`
	Password      string        `envconfig:"ZYAN_PASSWORD"`
	Token         string        `envconfig:"ZYAN_TOKEN"`
	Keyword       string        `envconfig:"ZYAN_KEYWORD"`
	KeepAlive     time.Duration `envconfig:"ZYAN_KEEPALIVE" default:"5m"`
	ShowTicks     bool          `envconfig:"ZYAN_SHOW_TICKS" default:"false"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"INFO"`
}

// credentials picks what the host's provider expects: a token, then an
// email and password pair, then an anonymous name.
func (c Config) credentials() map[string]string {
	switch {
	case c.Token != "":
		return map[string]string{auth.CredentialToken: c.Token}
	case c.Email != "":
		return map[string]string{auth.CredentialEmail: c.Email, auth.CredentialPassword: c.Password}
	default:
		return map[string]string{auth.CredentialName: c.Name}
	}
}

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc, err := grpc.NewClient(config.ServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() { _ = cc.Close() }()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := client.Dial(dialCtx, cc, log, config.credentials(), client.WithKeepAlive(config.KeepAlive))
	cancel()
	if err != nil {
		return exitRuntime, fmt.Errorf("logon failed: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.Close(closeCtx); err != nil {
			log.Warn("Logoff failed", "error", err)
		}
	}()

	session := conn.Session()
	color.Green.Printf(">>> Logged on to %s as %s (%s)\n", config.ServerAddress, session.Identity.Name, strings.Join(session.Identity.Roles, ","))

	if err := follow(ctx, conn, config); err != nil {
		return exitRuntime, err
	}

	if len(args) > 0 {
		count, err := conn.Invoke(ctx, components.BoardInterface, "Post", nil, strings.Join(args, " "))
		if err != nil {
			return exitRuntime, fmt.Errorf("post failed: %w", err)
		}
		log.Info("Message posted", "count", count)
	}

	<-ctx.Done()
	log.Info("Stopping client...")
	return exitOK, nil
}

func follow(ctx context.Context, conn *client.Connection, config Config) error {
	var opts []client.SubscribeOption
	if config.Keyword != "" {
		opts = append(opts, client.WithFilter(filter.KeywordsDescriptor(2, config.Keyword)))
	}
	_, err := conn.AddEventHandler(ctx, components.BoardInterface, components.PostedEvent, components.PostedParams,
		func(_ context.Context, args []any) (any, error) {
			color.Cyan.Printf("[%s] ", time.Now().Format(time.TimeOnly))
			fmt.Printf("%s: %s\n", args[0], args[2])
			return nil, nil
		}, opts...)
	if err != nil {
		return fmt.Errorf("board subscription failed: %w", err)
	}

	if !config.ShowTicks {
		return nil
	}
	_, err = conn.AddEventHandler(ctx, components.ClockInterface, components.TickEvent, components.TickParams,
		func(_ context.Context, args []any) (any, error) {
			color.Gray.Printf("tick #%d at %s\n", args[0], args[1].(time.Time).Format(time.TimeOnly))
			return nil, nil
		})
	if err != nil {
		return fmt.Errorf("clock subscription failed: %w", err)
	}
	return nil
}
