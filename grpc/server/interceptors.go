package server

import (
	"context"

	"zyan/errors"
	"zyan/grpc/wire"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type sessionKey struct{}

// SessionInterceptor reads the session id from the x-zyan-session header.
// Logon is the only method allowed without one.
func SessionInterceptor(ctx context.Context, req any,
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == wire.Host_Logon_FullMethodName {
		return handler(ctx, req)
	}
	id, err := sessionFromMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return handler(context.WithValue(ctx, sessionKey{}, id), req)
}

func StreamSessionInterceptor(srv any, ss grpc.ServerStream,
	_ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	id, err := sessionFromMetadata(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &sessionStream{ServerStream: ss, ctx: context.WithValue(ss.Context(), sessionKey{}, id)})
}

// ErrorInterceptor turns domain errors into gRPC statuses so that the client
// can rebuild them with errors.FromGRPCError.
func ErrorInterceptor(ctx context.Context, req any,
	_ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	return resp, errors.MapToGRPCError(err)
}

func StreamErrorInterceptor(srv any, ss grpc.ServerStream,
	_ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	return errors.MapToGRPCError(handler(srv, ss))
}

type sessionStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *sessionStream) Context() context.Context {
	return s.ctx
}

func sessionFromMetadata(ctx context.Context) (uuid.UUID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, errors.ErrInvalidSession
	}
	values := md.Get(wire.SessionMetadataKey)
	if len(values) == 0 {
		return uuid.Nil, errors.ErrInvalidSession
	}
	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, errors.ErrInvalidSession
	}
	return id, nil
}

// SessionID returns the session id placed in the context by the interceptors.
func SessionID(ctx context.Context) (uuid.UUID, error) {
	if id, ok := ctx.Value(sessionKey{}).(uuid.UUID); ok {
		return id, nil
	}
	return sessionFromMetadata(ctx)
}
