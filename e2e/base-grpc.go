package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"zyan/auth"
	"zyan/grpc/client"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.HostAddr == "" {
		s.T().Skip("HOST_ADDR not set, no host to talk to")
	}
}

// GrpcConn initializes a gRPC connection with logging, colors, and JSON debugging
func (s *BaseGrpcSuite) GrpcConn(t *testing.T, name string, addr string) *grpc.ClientConn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	marshaler := protojson.MarshalOptions{
		UseProtoNames:   true,
		Multiline:       true,
		EmitUnpopulated: true,
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, marshaler.Format(req.(proto.Message)))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+addr)
	return conn
}

// WithConnection logs on anonymously under name and hands the connection to
// fn within a contextual test step. The session is logged off afterwards.
func (s *BaseGrpcSuite) WithConnection(name string, fn func(ctx context.Context, conn *client.Connection)) {
	cc := s.GrpcConn(s.T(), name, s.Config.HostAddr)
	defer cc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.Timeout)
	defer cancel()

	conn, err := client.Dial(ctx, cc, logs.GetLoggerFromLevel(slog.LevelDebug),
		map[string]string{auth.CredentialName: s.Config.Name}, client.WithScheduler(client.InlineScheduler{}))
	s.Require().NoError(err, "Logon failed on "+s.Config.HostAddr)
	defer func() { s.NoError(conn.Close(context.Background())) }()

	fn(ctx, conn)
}
