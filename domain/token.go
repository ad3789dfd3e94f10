package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DeliveryMode int

const (
	// DeliveryRemote forwards the notification to the owning session's callback sink.
	DeliveryRemote DeliveryMode = iota
	// DeliveryLocal invokes an in-process handler directly.
	DeliveryLocal
)

func (m DeliveryMode) String() string {
	switch m {
	case DeliveryRemote:
		return "remote"
	case DeliveryLocal:
		return "local"
	default:
		return fmt.Sprintf("DeliveryMode(%d)", int(m))
	}
}

// FilterDescriptor is the serializable form of an event filter. It travels
// inside a CorrelationToken so the publisher side can rebuild the predicate.
type FilterDescriptor struct {
	Kind     string `validate:"required"`
	Index    int    `validate:"gte=0"`
	Values   []any
	Children []FilterDescriptor `validate:"dive"`
}

// CorrelationToken links one subscriber to one event slot of one interface,
// scoped to a session. A callable never crosses the process boundary: the
// HandlerID is resolved by the owning side when a notification comes back.
type CorrelationToken struct {
	SessionID     uuid.UUID `validate:"required"`
	InterfaceName string    `validate:"required"`
	MemberName    string    `validate:"required"`
	HandlerID     uuid.UUID `validate:"required"`
	Filter        *FilterDescriptor
	FilterLocally bool
	DeliveryMode  DeliveryMode `validate:"oneof=0 1"`
}

type TokenKey struct {
	SessionID     uuid.UUID
	InterfaceName string
	MemberName    string
	HandlerID     uuid.UUID
}

func (t CorrelationToken) Key() TokenKey {
	return TokenKey{
		SessionID:     t.SessionID,
		InterfaceName: t.InterfaceName,
		MemberName:    t.MemberName,
		HandlerID:     t.HandlerID,
	}
}

// Notification is what a remote subscriber receives when an event it is
// correlated with is raised.
type Notification struct {
	HandlerID     uuid.UUID
	InterfaceName string
	MemberName    string
	Args          []any
	RaisedAt      time.Time
}
