package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pulseboard/api/internal/notification"
	"github.com/pulseboard/api/internal/notification/templates"
)

const (
	resetTokenTTL       = time.Hour
	resetResendCooldown = time.Minute
	resetEmailTimeout   = 15 * time.Second
)

// InitiatePasswordReset issues a fresh reset token and emails the reset link.
//
// It always returns nil for unknown emails and when email delivery fails, so
// the caller-visible outcome never reveals whether the account exists. Issuing
// a new token invalidates all prior tokens for the user.
func (s *service) InitiatePasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		s.logger.Error("failed to find user by email for password reset", "error", err)
		return ErrInternal.WithCause(err)
	}

	ok, err := s.limiter.Cooldown(ctx, "pwreset:"+email, resetResendCooldown)
	if err != nil {
		s.logger.Error("reset cooldown limiter unavailable", "error", err)
	} else if !ok {
		// Still report generic success upstream; just skip the email.
		s.logger.Info("password reset email suppressed by cooldown", "user_id", u.ID)
		return nil
	}

	token, err := generateSecureToken(32)
	if err != nil {
		s.logger.Error("failed to generate reset token", "error", err)
		return ErrInternal.WithCause(err)
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.repo.IssueResetToken(ctx, u.ID, hashToken(token), expiresAt); err != nil {
		s.logger.Error("failed to store reset token", "error", err, "user_id", u.ID)
		return ErrInternal.WithCause(err)
	}

	// Fire-and-forget: delivery failures are logged, never surfaced, so the
	// response cannot be used as an email oracle.
	go s.sendResetEmail(u, token)

	return nil
}

func (s *service) sendResetEmail(u *User, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), resetEmailTimeout)
	defer cancel()

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, url.QueryEscape(token))
	rendered, err := templates.RenderPasswordReset(templates.PasswordResetData{
		Name:      u.Name,
		ResetURL:  resetURL,
		ExpiresIn: "1 hour",
	})
	if err != nil {
		s.logger.Error("failed to render reset email", "error", err, "user_id", u.ID)
		return
	}

	err = s.notifier.SendEmail(ctx, notification.Email{
		To:       u.Email,
		Subject:  "Reset your password",
		HTMLBody: rendered.HTML,
		TextBody: rendered.Text,
	})
	if err != nil {
		s.logger.Error("failed to send reset email", "error", err, "user_id", u.ID)
	}
}

// FinalizePasswordReset validates a reset token and updates the password.
// Validation, password update and token deletion happen in one repository
// transaction, so a token can never be replayed and never consumed without
// the password changing. Absent and expired tokens produce the same error.
func (s *service) FinalizePasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	newHash, err := hashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password during reset", "error", err)
		return ErrInternal.WithCause(err)
	}

	userID, err := s.repo.ConsumeResetToken(ctx, hashToken(token), newHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidResetToken
		}
		s.logger.Error("failed to consume reset token", "error", err)
		return ErrInternal.WithCause(err)
	}

	s.logger.Info("user password has been reset", "user_id", userID)

	return nil
}
