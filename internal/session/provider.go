package session

import (
	"context"
	"time"

	"github.com/pulseboard/api/internal/database"
)

// Config controls session lifetime policy.
type Config struct {
	// TTL is the session lifetime measured from creation. Zero means sessions
	// never expire and live until explicitly revoked. Non-expiring sessions
	// are the default policy for this application; operators who want bounded
	// lifetimes set SESSION_TTL.
	TTL time.Duration
}

// Provider defines operations for managing opaque server-side sessions.
//
// Session tokens MUST be opaque and high-entropy: they are capability handles
// resolved by server-side lookup, never derived from the user id or time.
type Provider interface {
	// Create mints a new session for the given user and returns its token.
	Create(ctx context.Context, userID string) (token string, err error)

	// Validate looks up the session and returns the owning user ID if the
	// session exists and has not expired. It returns ErrNotFound or ErrExpired
	// otherwise; it never panics on garbage input.
	Validate(ctx context.Context, token string) (userID string, err error)

	// Delete revokes a session by token. It is idempotent.
	Delete(ctx context.Context, token string) error
}

// NewPostgresProvider returns a Postgres-backed Provider implementation.
// Implemented in postgres.go.
func NewPostgresProvider(db database.DBTX, cfg Config) Provider {
	return newPostgresProvider(db, cfg)
}
