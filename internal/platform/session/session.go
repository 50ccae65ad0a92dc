// Package session keeps server-side session state for issued auth tokens.
// The token table stays authoritative for authentication; sessions only
// record activity and are dropped at logout.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session exists for a key.
var ErrNotFound = errors.New("session not found")

// Session is the state kept for one auth token.
type Session struct {
	UserID     int64     `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeen   time.Time `json:"last_seen"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// Store persists sessions keyed by auth token key.
type Store interface {
	// Save creates or replaces the session for key.
	Save(ctx context.Context, key string, s *Session) error

	// Get returns the session for key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Session, error)

	// Touch records activity at the given time and extends the expiry.
	// A missing session is not an error.
	Touch(ctx context.Context, key string, at time.Time) error

	// Delete removes the session for key. A missing session is not an error.
	Delete(ctx context.Context, key string) error
}

// NopStore discards every write. It is used when Redis is not configured.
type NopStore struct{}

var _ Store = NopStore{}

func (NopStore) Save(context.Context, string, *Session) error { return nil }

func (NopStore) Get(context.Context, string) (*Session, error) { return nil, ErrNotFound }

func (NopStore) Touch(context.Context, string, time.Time) error { return nil }

func (NopStore) Delete(context.Context, string) error { return nil }
