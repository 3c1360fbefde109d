package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	signinAttemptMax    = 10
	signinAttemptWindow = 15 * time.Minute
)

// SignUp handles the business logic for creating a new email/password account.
// Email uniqueness is ultimately decided by the store's constraint, so a
// concurrent duplicate signup loses with ErrEmailExists here.
func (s *service) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	newUser := &User{
		ID:            id.String(),
		Name:          name,
		Email:         email,
		PasswordHash:  &hash,
		EmailVerified: false,
		Provider:      AuthProviderEmail,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	s.logger.Info("user registered successfully", "user_id", newUser.ID)

	return newUser, nil
}

// SignIn authenticates an email/password pair and mints a session on success.
// All credential failures collapse into ErrInvalidCredentials so callers
// cannot learn whether the email exists.
func (s *service) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	allowed, err := s.limiter.Allow(ctx, "signin:"+email, signinAttemptMax, signinAttemptWindow)
	if err != nil {
		// Throttle outages must not lock users out.
		s.logger.Error("signin limiter unavailable", "error", err)
	} else if !allowed {
		return "", ErrTooManyAttempts
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		s.logger.Error("failed to find user by email", "error", err)
		return "", ErrInternal.WithCause(err)
	}

	// Provider-only accounts have no password to check.
	if u.PasswordHash == nil || !checkPasswordHash(password, *u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		s.logger.Error("failed to create session", "error", err, "user_id", u.ID)
		return "", ErrInternal.WithCause(err)
	}

	if err := s.limiter.Reset(ctx, "signin:"+email); err != nil {
		s.logger.Warn("failed to reset signin attempt counter", "error", err)
	}

	s.logger.Info("user signed in", "user_id", u.ID)

	return token, nil
}

// SignOut revokes the session. Unknown tokens are a no-op.
func (s *service) SignOut(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionToken); err != nil {
		s.logger.Error("failed to delete session", "error", err)
		return ErrInternal.WithCause(err)
	}
	return nil
}

// CurrentUser resolves a session cookie value to the owning user record.
func (s *service) CurrentUser(ctx context.Context, sessionToken string) (*User, error) {
	if sessionToken == "" {
		return nil, nil
	}

	userID, err := s.sessions.Validate(ctx, sessionToken)
	if err != nil {
		// Invalid and expired sessions are both simply "not signed in".
		return nil, nil
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to load user for session", "error", err, "user_id", userID)
		return nil, ErrInternal.WithCause(err)
	}
	return u, nil
}
