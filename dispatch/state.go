package dispatch

import (
	"context"

	"zyan/domain"
)

// CallState is the lifecycle position of one inbound call.
type CallState int

const (
	Received CallState = iota
	SessionValidated
	Activated
	Invoking
	Completed
	Faulted
	Deactivated
)

func (s CallState) String() string {
	switch s {
	case Received:
		return "Received"
	case SessionValidated:
		return "SessionValidated"
	case Activated:
		return "Activated"
	case Invoking:
		return "Invoking"
	case Completed:
		return "Completed"
	case Faulted:
		return "Faulted"
	case Deactivated:
		return "Deactivated"
	default:
		return "Unknown"
	}
}

// CallObserver is told about every state transition of a call. err is set
// on Faulted only. It runs inline and must not block.
type CallObserver func(call domain.Call, state CallState, err error)

type sessionKey struct{}

func withSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session of the call being served.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.Session)
	return s, ok
}
