package notification

import (
	"context"
	"log/slog"
)

// Email is a single transactional email.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender delivers a single email. Implementations must respect the
// context deadline; the SMTP implementation enforces its own bounded
// connect/send timeouts as well.
type EmailSender interface {
	Send(ctx context.Context, email Email) error
}

// Service is the outbound notification surface used by the auth services.
// Delivery failures are reported to the caller, which decides whether they
// are user-visible; auth flows log them and degrade gracefully.
type Service interface {
	SendEmail(ctx context.Context, email Email) error
}

type service struct {
	log    *slog.Logger
	sender EmailSender
}

// NewService creates a new notification service.
func NewService(log *slog.Logger, sender EmailSender) Service {
	return &service{log: log, sender: sender}
}

func (s *service) SendEmail(ctx context.Context, email Email) error {
	s.log.Info("dispatching email notification", "to", email.To, "subject", email.Subject)
	if err := s.sender.Send(ctx, email); err != nil {
		s.log.Error("failed to send email", "to", email.To, "error", err)
		return err
	}
	return nil
}
