package user

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pulseboard/api/internal/config"
)

// Handler holds the dependencies for the user module's HTTP handlers.
// It owns the cookie adapter side of the auth flows: services produce
// decisions and tokens, handlers turn them into Set-Cookie directives.
type Handler struct {
	service Service
	logger  *slog.Logger
	config  *config.Config
}

// NewHandler creates a new handler for the user module.
func NewHandler(service Service, logger *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		config:  cfg,
	}
}

// RegisterRoutes sets up the routing for the user module.
func (h *Handler) RegisterRoutes(api huma.API) {
	// --- Email/password auth ---
	huma.Register(api, huma.Operation{
		OperationID:   "auth-signup",
		Method:        http.MethodPost,
		Path:          "/auth/signup",
		Summary:       "Create a new account",
		DefaultStatus: http.StatusCreated,
	}, h.SignUpHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-signin",
		Method:      http.MethodPost,
		Path:        "/auth/signin",
		Summary:     "Sign in with email and password",
	}, h.SignInHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-signout",
		Method:      http.MethodPost,
		Path:        "/auth/signout",
		Summary:     "Sign out and revoke the session",
	}, h.SignOutHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Get the currently signed-in user",
	}, h.CurrentUserHandler)

	// --- Password reset ---
	huma.Register(api, huma.Operation{
		OperationID: "auth-password-forgot",
		Method:      http.MethodPost,
		Path:        "/auth/password/forgot",
		Summary:     "Request a password reset email",
	}, h.ForgotPasswordHandler)

	huma.Register(api, huma.Operation{
		OperationID: "auth-password-reset",
		Method:      http.MethodPost,
		Path:        "/auth/password/reset",
		Summary:     "Reset password with an emailed token",
	}, h.ResetPasswordHandler)

	// --- Google OAuth ---
	huma.Register(api, huma.Operation{
		OperationID:   "auth-google-signin",
		Method:        http.MethodGet,
		Path:          "/auth/oauth/google",
		Summary:       "Redirect to Google for sign-in",
		DefaultStatus: http.StatusFound,
	}, h.GoogleLoginHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "auth-google-callback",
		Method:        http.MethodGet,
		Path:          "/auth/oauth/google/callback",
		Summary:       "Handle the Google OAuth callback",
		DefaultStatus: http.StatusFound,
	}, h.GoogleCallbackHandler)
}
