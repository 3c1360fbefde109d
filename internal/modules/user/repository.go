package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pulseboard/api/internal/database"
)

// Repository defines the interface for database operations for the user module.
// This abstraction allows the service layer to be independent of the database
// implementation.
//
// Uniqueness of email and provider_id is enforced by storage constraints, not
// by pre-checks: under concurrent writes the losing insert fails with
// ErrEmailExists/ErrProviderIDExists and that outcome is authoritative.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByProviderID(ctx context.Context, providerID string) (*User, error)
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error

	// IssueResetToken atomically replaces any existing reset tokens for the
	// user with a single new one, so at most one valid token per user exists.
	IssueResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ConsumeResetToken atomically validates the token hash, updates the
	// user's password and deletes the token row, so a token can never be
	// replayed nor consumed without the password actually changing.
	// Returns the owning user ID, or ErrNotFound when the token does not
	// exist or has expired.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (userID string, err error)
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new user repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// withTx runs fn inside a transaction when the underlying handle supports it.
// Plain DBTX fakes in tests run fn directly.
func (r *repository) withTx(ctx context.Context, fn func(tx database.DBTX) error) error {
	starter, ok := r.db.(database.TxStarter)
	if !ok {
		return fn(r.db)
	}

	tx, err := starter.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
