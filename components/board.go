package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"zyan/dispatch"
	"zyan/domain"
	"zyan/errors"
	"zyan/invoker"
)

const (
	BoardInterface = "IBoard"
	PostedEvent    = "Posted"
	maxHistory     = 100
)

// PostedParams is the argument list of the Posted event.
var PostedParams = []domain.ParamDef{
	domain.Param("author", domain.TypeString),
	domain.Param("session", domain.TypeUUID),
	domain.Param("text", domain.TypeString),
}

// Board is a singleton message board. Posted carries the author session so
// subscribers can filter by session or keyword on the host side.
type Board struct {
	mu      sync.Mutex
	history []string
	posted  *domain.EventSlot
	log     *slog.Logger
}

func NewBoard(log *slog.Logger) *Board {
	return &Board{posted: domain.NewEventSlot(PostedEvent, PostedParams...), log: log}
}

func (b *Board) Describe() domain.Descriptor {
	return domain.Descriptor{
		Methods: []domain.Method{
			{
				Name:    "Post",
				Params:  []domain.ParamDef{domain.Param("text", domain.TypeString)},
				Returns: domain.TypeInt,
				Fn:      invoker.Func1(b.post),
			},
			{Name: "History", Returns: domain.TypeList, Fn: invoker.Func0(b.recent)},
		},
		Events: []*domain.EventSlot{b.posted},
	}
}

func (b *Board) post(ctx context.Context, text string) (int, error) {
	s, ok := dispatch.SessionFromContext(ctx)
	if !ok {
		return 0, errors.ErrInvalidSession
	}
	if text == "" {
		return 0, fmt.Errorf("%w: empty post", errors.ErrInvalidArgument)
	}
	b.mu.Lock()
	b.history = append(b.history, fmt.Sprintf("%s: %s", s.Identity.Name, text))
	if len(b.history) > maxHistory {
		b.history = b.history[len(b.history)-maxHistory:]
	}
	count := len(b.history)
	b.mu.Unlock()

	// A failing subscriber never fails the post
	if _, err := b.posted.Raise(ctx, s.Identity.Name, s.ID, text); err != nil {
		b.log.Warn("Posted delivery failed", "author", s.Identity.Name, "error", err)
	}
	return count, nil
}

func (b *Board) recent(_ context.Context) ([]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]any, len(b.history))
	for i, h := range b.history {
		out[i] = h
	}
	return out, nil
}
