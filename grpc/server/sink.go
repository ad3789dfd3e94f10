package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"zyan/contract"
	"zyan/domain"
	"zyan/errors"
)

var _ contract.CallbackSink = (*Sink)(nil)

// Sink buffers the notifications of one session until its Callbacks stream
// pushes them to the client.
type Sink struct {
	Notifications chan domain.Notification
	sessionID     string
	dropped       atomic.Int64
	log           *slog.Logger
}

func NewSink(log *slog.Logger, sessionID string, bufferSize int) *Sink {
	return &Sink{
		Notifications: make(chan domain.Notification, bufferSize),
		sessionID:     sessionID,
		log:           log,
	}
}

// Consume is called by the correlation registry on the raiser side.
// It never waits for the stream: a full buffer drops the notification.
func (s *Sink) Consume(ctx context.Context, n domain.Notification) error {
	select {
	case s.Notifications <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		dropped := s.dropped.Add(1)
		s.log.Warn("Callback buffer full, notification dropped",
			"session_id", s.sessionID,
			"member", n.MemberName,
			"dropped", dropped)
		return fmt.Errorf("%w: callback buffer of session %s is full", errors.ErrPoolSaturated, s.sessionID)
	}
}

func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}
