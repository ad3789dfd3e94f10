// Package domain contains the core concepts of the dispatch engine: sessions,
// components and their descriptors, event slots and correlation tokens.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated principal a session acts for.
type Identity struct {
	Name               string
	AuthenticationType string
	Roles              []string
}

func (i Identity) IsAuthenticated() bool {
	return i.AuthenticationType != ""
}

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// Session is an authenticated, time-bounded caller context.
// Expiry is a sliding window: ExpiresAt = LastRenewedAt + age limit.
type Session struct {
	ID            uuid.UUID
	Identity      Identity
	CreatedAt     time.Time
	ExpiresAt     time.Time
	LastRenewedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
