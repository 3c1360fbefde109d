package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Create inserts a new user record into the database.
// A unique constraint violation is translated to ErrEmailExists or
// ErrProviderIDExists depending on the violated index.
func (r *repository) Create(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	query, args, err := r.psql.Insert("users").
		Columns("id", "name", "email", "password_hash", "email_verified", "provider", "provider_id", "created_at", "updated_at").
		Values(user.ID, user.Name, user.Email, user.PasswordHash, user.EmailVerified, user.Provider, user.ProviderID, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "provider_id") {
				return ErrProviderIDExists.WithCause(err)
			}
			return ErrEmailExists.WithCause(err)
		}
		return err
	}

	return nil
}

// FindByEmail retrieves a user by their email address. The lookup is
// case-normalized. It returns ErrNotFound if no user is found.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": strings.ToLower(email)})
}

// FindByID retrieves a user by their unique ID.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByProviderID retrieves a user by the external provider subject id.
// This is the sole matching key for returning OAuth users; email is never
// used for linking.
func (r *repository) FindByProviderID(ctx context.Context, providerID string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"provider_id": providerID})
}

// UpdatePassword sets a new password hash for a user.
func (r *repository) UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error {
	sql, args, err := r.psql.Update("users").
		Set("password_hash", newPasswordHash).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// findOne is a helper method to find a single user by a given condition.
func (r *repository) findOne(ctx context.Context, condition squirrel.Sqlizer) (*User, error) {
	query, args, err := r.psql.Select(
		"id", "name", "email", "password_hash", "email_verified",
		"provider", "provider_id", "created_at", "updated_at",
	).From("users").Where(condition).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}

	return &user, nil
}
