package errors

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type grpcMapping struct {
	sentinel error
	code     codes.Code
}

// Order matters: the first sentinel matched by errors.Is wins.
var grpcMappings = []grpcMapping{
	{ErrInvalidSession, codes.Unauthenticated},
	{ErrAuthenticationFailed, codes.Unauthenticated},
	{ErrInvalidCredentials, codes.Unauthenticated},
	{ErrComponentNotFound, codes.NotFound},
	{ErrEventNotFound, codes.NotFound},
	{ErrMethodResolution, codes.Unimplemented},
	{ErrActivationFailure, codes.FailedPrecondition},
	{ErrNoCallbackSink, codes.FailedPrecondition},
	{ErrInvalidToken, codes.InvalidArgument},
	{ErrInvalidFilter, codes.InvalidArgument},
	{ErrInvalidArgument, codes.InvalidArgument},
	{ErrInvalidPassword, codes.InvalidArgument},
	{ErrUserAlreadyExists, codes.AlreadyExists},
	{ErrComponentAlreadyRegistered, codes.AlreadyExists},
	{ErrSubscriberInvocationFailure, codes.Aborted},
	{ErrPoolSaturated, codes.ResourceExhausted},
}

// MapToGRPCError converts a domain error into a gRPC status error. The
// sentinel message is kept as the status message prefix so that the client
// side can rebuild an error chain with FromGRPCError.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && !isDomainError(err) {
		return err
	}
	for _, m := range grpcMappings {
		if errors.Is(err, m.sentinel) {
			msg := err.Error()
			if !strings.HasPrefix(msg, m.sentinel.Error()) {
				msg = m.sentinel.Error() + ": " + msg
			}
			return status.Error(m.code, msg)
		}
	}
	return status.Error(codes.Unknown, err.Error())
}

// FromGRPCError turns a status error received by a client back into an error
// wrapping the matching sentinel, so errors.Is keeps working across the wire.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	msg := st.Message()
	for _, m := range grpcMappings {
		if m.code == st.Code() && strings.HasPrefix(msg, m.sentinel.Error()) {
			return &remoteError{sentinel: m.sentinel, msg: msg, code: st.Code()}
		}
	}
	return err
}

func isDomainError(err error) bool {
	for _, m := range grpcMappings {
		if errors.Is(err, m.sentinel) {
			return true
		}
	}
	return false
}

type remoteError struct {
	sentinel error
	msg      string
	code     codes.Code
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.sentinel }

// GRPCStatus keeps the original status available to grpc/status helpers.
func (e *remoteError) GRPCStatus() *status.Status { return status.New(e.code, e.msg) }
