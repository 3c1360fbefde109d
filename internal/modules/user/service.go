package user

import (
	"context"
	"log/slog"

	"github.com/pulseboard/api/internal/cache"
	"github.com/pulseboard/api/internal/config"
	"github.com/pulseboard/api/internal/notification"
	"github.com/pulseboard/api/internal/session"
)

// GoogleCallback carries everything the callback action needs to validate an
// authorization response: query values from the provider redirect plus the
// transient values recovered from the browser's cookies.
type GoogleCallback struct {
	Code         string
	QueryState   string
	CookieState  string
	CodeVerifier string
}

// Service defines the interface for the user module's business logic.
// It orchestrates the flow of data between the handlers and the repository,
// and contains the core authentication rules.
type Service interface {
	// Email/password auth
	SignUp(ctx context.Context, name, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (sessionToken string, err error)
	SignOut(ctx context.Context, sessionToken string) error

	// CurrentUser resolves the session cookie value to a user record.
	// An absent, unknown or expired session yields (nil, nil), never an error.
	CurrentUser(ctx context.Context, sessionToken string) (*User, error)

	// Password reset
	InitiatePasswordReset(ctx context.Context, email string) error
	FinalizePasswordReset(ctx context.Context, token, newPassword string) error

	// Google OAuth
	InitiateGoogleLogin(ctx context.Context) (redirectURL, state, codeVerifier string, err error)
	HandleGoogleCallback(ctx context.Context, cb GoogleCallback) (sessionToken, userID string, err error)
}

// service implements the Service interface.
type service struct {
	repo     Repository
	sessions session.Provider
	notifier notification.Service
	limiter  cache.Limiter
	logger   *slog.Logger
	config   *config.Config
}

// Config holds the dependencies for the user service.
type Config struct {
	Repo     Repository
	Sessions session.Provider
	Notifier notification.Service
	Limiter  cache.Limiter
	Logger   *slog.Logger
	Config   *config.Config
}

// NewService creates a new user service with the given dependencies.
func NewService(cfg *Config) Service {
	return &service{
		repo:     cfg.Repo,
		sessions: cfg.Sessions,
		notifier: cfg.Notifier,
		limiter:  cfg.Limiter,
		logger:   cfg.Logger,
		config:   cfg.Config,
	}
}
