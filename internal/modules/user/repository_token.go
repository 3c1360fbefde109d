package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pulseboard/api/internal/database"
)

// IssueResetToken replaces any existing reset tokens for the user with a
// single new one. The delete and insert run in one transaction so concurrent
// forgot-password requests can never leave zero or two valid tokens behind.
func (r *repository) IssueResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return r.withTx(ctx, func(tx database.DBTX) error {
		if _, err := tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, created_at)
			VALUES ($1, $2, $3, $4)
		`, tokenHash, userID, expiresAt, time.Now())
		return err
	})
}

// ConsumeResetToken validates a token hash, updates the owning user's
// password, and deletes the token row, all in one transaction. The row lock
// taken by FOR UPDATE serializes concurrent consumption attempts so the token
// is spent exactly once.
func (r *repository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (string, error) {
	var userID string

	err := r.withTx(ctx, func(tx database.DBTX) error {
		row := tx.QueryRow(ctx, `
			SELECT user_id
			FROM password_reset_tokens
			WHERE token_hash = $1 AND expires_at > $2
			FOR UPDATE
		`, tokenHash, time.Now())
		if err := row.Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound.WithCause(err)
			}
			return err
		}

		ct, err := tx.Exec(ctx, `
			UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3
		`, newPasswordHash, time.Now(), userID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}

		_, err = tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE token_hash = $1`, tokenHash)
		return err
	})
	if err != nil {
		return "", err
	}

	return userID, nil
}
