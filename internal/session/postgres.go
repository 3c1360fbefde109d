package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/pulseboard/api/internal/database"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

type postgresProvider struct {
	db  database.DBTX
	cfg Config
}

func newPostgresProvider(db database.DBTX, cfg Config) *postgresProvider {
	return &postgresProvider{db: db, cfg: cfg}
}

func (p *postgresProvider) Create(ctx context.Context, userID string) (string, error) {
	token, err := randomOpaque(32)
	if err != nil {
		return "", err
	}

	now := time.Now()
	var expiresAt *time.Time
	if p.cfg.TTL > 0 {
		t := now.Add(p.cfg.TTL)
		expiresAt = &t
	}

	sql := `
		INSERT INTO sessions (token, user_id, expires_at, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := p.db.Exec(ctx, sql, token, userID, expiresAt, now, now); err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	return token, nil
}

func (p *postgresProvider) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}

	var (
		userID    string
		expiresAt *time.Time
	)

	query := `
		SELECT user_id, expires_at
		FROM sessions
		WHERE token = $1
		LIMIT 1
	`
	row := p.db.QueryRow(ctx, query, token)
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", ErrNotFound
	}

	now := time.Now()
	if expiresAt != nil && now.After(*expiresAt) {
		// Best effort cleanup
		_, _ = p.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
		return "", ErrExpired
	}

	// Activity bookkeeping only; does not extend the lifetime.
	_, _ = p.db.Exec(ctx, `UPDATE sessions SET last_active_at = $1 WHERE token = $2`, now, token)

	return userID, nil
}

func (p *postgresProvider) Delete(ctx context.Context, token string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func randomOpaque(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand read: %w", err)
	}
	// base64url without padding
	return base64.RawURLEncoding.EncodeToString(b), nil
}
