package user

import (
	"time"
)

// AuthProvider discriminates how an account authenticates.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// User represents an identity record.
//
// Invariants (enforced by the store): provider=email implies PasswordHash is
// non-nil; provider=google implies ProviderID is non-nil and unique. Emails
// are stored lowercase and are globally unique.
type User struct {
	ID            string       `db:"id"`
	Name          string       `db:"name"`
	Email         string       `db:"email"`
	PasswordHash  *string      `db:"password_hash"`
	EmailVerified bool         `db:"email_verified"`
	Provider      AuthProvider `db:"provider"`
	ProviderID    *string      `db:"provider_id"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

// PasswordResetToken is a single-use capability to change one password.
// Only the SHA-256 hash of the raw token is persisted; the raw value exists
// solely inside the emailed link. At most one valid token per user exists at
// any time.
type PasswordResetToken struct {
	TokenHash string    `db:"token_hash"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
