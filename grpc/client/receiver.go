package client

import (
	"context"
	"fmt"
	"sync"

	"zyan/contract"
	"zyan/errors"
	"zyan/grpc/wire"

	"google.golang.org/protobuf/types/known/structpb"
)

var _ contract.Worker = (*callbackReceiver)(nil)

// callbackReceiver pulls notifications off the Callbacks stream. A broken
// stream makes it fail so the supervisor reopens it.
type callbackReceiver struct {
	conn  *Connection
	ready chan struct{}
	once  sync.Once
}

func (r *callbackReceiver) Run(ctx context.Context) error {
	c := r.conn
	stream, err := c.host.Callbacks(c.outgoing(ctx), &structpb.Struct{})
	if err != nil {
		return r.failure(ctx, err)
	}
	if _, err := stream.Header(); err != nil {
		return r.failure(ctx, err)
	}
	r.once.Do(func() { close(r.ready) })

	for {
		msg, err := stream.Recv()
		if err != nil {
			return r.failure(ctx, err)
		}
		n, err := wire.DecodeNotification(msg)
		if err != nil {
			c.log.Warn("Malformed notification", "error", err)
			continue
		}
		c.deliver(ctx, n)
	}
}

func (r *callbackReceiver) failure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	err = errors.FromGRPCError(err)
	if errors.Is(err, errors.ErrInvalidSession) {
		r.conn.log.Warn("Session is gone, callback stream closed", "session_id", r.conn.session.ID)
		return nil
	}
	return fmt.Errorf("callback stream broken: %w", err)
}
