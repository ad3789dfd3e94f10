// Package server binds the dispatcher to the zyan.Host gRPC service.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"zyan/auth"
	"zyan/contract"
	"zyan/domain"
	"zyan/grpc/wire"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ wire.HostServer = (*HostServer)(nil)

type HostServer struct {
	dispatcher       contract.IDispatcher
	callbackBufferSz int
	log              *slog.Logger
}

func NewHostServer(log *slog.Logger, dispatcher contract.IDispatcher, callbackBufferSize int) *HostServer {
	return &HostServer{dispatcher: dispatcher, callbackBufferSz: callbackBufferSize, log: log}
}

// ServerOptions returns the interceptors a zyan host needs, placed after the
// given outer interceptors (logging, tracing).
func ServerOptions(unary []grpc.UnaryServerInterceptor, stream []grpc.StreamServerInterceptor) []grpc.ServerOption {
	unary = append(unary, ErrorInterceptor, SessionInterceptor)
	stream = append(stream, StreamErrorInterceptor, StreamSessionInterceptor)
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	}
}

func (s *HostServer) Logon(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	creds := auth.CredentialsFromMetadata(ctx, wire.CredentialsFromRequest(req))
	session, err := s.dispatcher.Logon(ctx, domain.AuthRequest{Credentials: creds})
	if err != nil {
		return nil, err
	}
	return wire.EncodeSession(session), nil
}

func (s *HostServer) Logoff(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, err := SessionID(ctx)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{}, s.dispatcher.Logoff(ctx, id)
}

func (s *HostServer) RenewSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, err := SessionID(ctx)
	if err != nil {
		return nil, err
	}
	expiresAt, err := s.dispatcher.RenewSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return wire.ExpiryResponse(expiresAt), nil
}

func (s *HostServer) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := SessionID(ctx)
	if err != nil {
		return nil, err
	}
	call, err := wire.DecodeCall(req)
	if err != nil {
		return nil, err
	}
	call.SessionID = id
	if call.TrackingID == uuid.Nil {
		call.TrackingID = uuid.New()
	}
	// Only the owning session may appear in its own correlation set, and
	// everything coming over the wire is delivered remotely.
	for i := range call.CorrelationSet {
		call.CorrelationSet[i].SessionID = id
		call.CorrelationSet[i].DeliveryMode = domain.DeliveryRemote
	}
	result, err := s.dispatcher.Invoke(ctx, call)
	if err != nil {
		return nil, err
	}
	return wire.EncodeResult(result)
}

func (s *HostServer) remoteToken(ctx context.Context, req *structpb.Struct) (domain.CorrelationToken, error) {
	id, err := SessionID(ctx)
	if err != nil {
		return domain.CorrelationToken{}, err
	}
	token, err := wire.TokenFromRequest(req)
	if err != nil {
		return domain.CorrelationToken{}, err
	}
	token.SessionID = id
	token.DeliveryMode = domain.DeliveryRemote
	return token, nil
}

func (s *HostServer) AddEventHandler(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := s.remoteToken(ctx, req)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{}, s.dispatcher.AddEventHandler(ctx, token, nil)
}

func (s *HostServer) RemoveEventHandler(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := s.remoteToken(ctx, req)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{}, s.dispatcher.RemoveEventHandler(ctx, token)
}

func (s *HostServer) Subscribe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := s.remoteToken(ctx, req)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{}, s.dispatcher.Subscribe(ctx, token, nil)
}

func (s *HostServer) Unsubscribe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := s.remoteToken(ctx, req)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{}, s.dispatcher.Unsubscribe(ctx, token)
}

// Callbacks registers a sink for the caller's session and blocks until the
// client disconnects or the stream fails. The sink is unregistered on return.
func (s *HostServer) Callbacks(_ *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	id, err := SessionID(ctx)
	if err != nil {
		return err
	}
	sink := NewSink(s.log, id.String(), s.callbackBufferSz)
	unregister, err := s.dispatcher.RegisterCallbackSink(id, sink)
	if err != nil {
		return err
	}
	defer unregister()
	// Headers tell the client the sink is in place
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}
	s.log.Debug("Callback stream opened", "session_id", id)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug(fmt.Sprintf("Session %s closed its callback stream", id))
			return nil
		case n := <-sink.Notifications:
			msg, err := wire.EncodeNotification(n)
			if err != nil {
				s.log.Warn("Notification not encodable", "member", n.MemberName, "error", err)
				continue
			}
			if err := stream.Send(msg); err != nil {
				s.log.Error("failed to push notification to stream",
					"session_id", id,
					"member", n.MemberName,
					"error", err)
				return err
			}
		}
	}
}
