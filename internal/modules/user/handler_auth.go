package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pulseboard/api/internal/httpx"
	"github.com/pulseboard/api/internal/session"
	"github.com/pulseboard/api/internal/validation"
)

// --- DTOs ---

// SignUpRequest defines the structure for the signup request body.
type SignUpRequest struct {
	Body struct {
		Name            string `json:"name" validate:"required,min=2"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=8"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	}
}

// SignUpResponse defines the structure for a successful signup response.
type SignUpResponse struct {
	Body struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
}

// SignInRequest defines the structure for the signin request body.
type SignInRequest struct {
	Body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
}

// SignInResponse sets the session cookie on success.
type SignInResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		UserID string `json:"userId"`
	}
}

// SignOutRequest reads the session cookie to revoke.
type SignOutRequest struct {
	Session string `cookie:"session"`
}

// SignOutResponse clears the session cookie.
type SignOutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

// CurrentUserRequest reads the session cookie.
type CurrentUserRequest struct {
	Session string `cookie:"session"`
}

// CurrentUserBody is the public view of a user record.
type CurrentUserBody struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Provider      string `json:"provider"`
}

// CurrentUserResponse returns the signed-in user, or null when the request
// carries no valid session.
type CurrentUserResponse struct {
	Body struct {
		User *CurrentUserBody `json:"user"`
	}
}

// --- Handlers ---

// SignUpHandler handles account creation.
func (h *Handler) SignUpHandler(ctx context.Context, input *SignUpRequest) (*SignUpResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	u, err := h.service.SignUp(ctx, input.Body.Name, input.Body.Email, input.Body.Password)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, httpx.ToProblem(ctx, err)
		}
		h.logger.Error("signup failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &SignUpResponse{}
	resp.Body.ID = u.ID
	resp.Body.Name = u.Name
	resp.Body.Email = u.Email
	return resp, nil
}

// SignInHandler authenticates the user and writes the session cookie.
func (h *Handler) SignInHandler(ctx context.Context, input *SignInRequest) (*SignInResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	token, err := h.service.SignIn(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// Same message regardless of which part of the credential failed.
			return nil, huma.Error401Unauthorized("invalid email or password")
		}
		return nil, httpx.ToProblem(ctx, err)
	}

	userID := ""
	if u, err := h.service.CurrentUser(ctx, token); err == nil && u != nil {
		userID = u.ID
	}

	resp := &SignInResponse{
		SetCookie: *session.NewCookie(token, h.config.Session.TTL, h.config.Server.IsProduction()),
	}
	resp.Body.UserID = userID
	return resp, nil
}

// SignOutHandler revokes the session and clears the cookie. Idempotent.
func (h *Handler) SignOutHandler(ctx context.Context, input *SignOutRequest) (*SignOutResponse, error) {
	if err := h.service.SignOut(ctx, input.Session); err != nil {
		h.logger.Error("signout failed", "error", err)
		// The cookie is cleared regardless; a stale server-side row expires
		// or is removed on a later attempt.
	}

	return &SignOutResponse{
		SetCookie: *session.ClearCookie(h.config.Server.IsProduction()),
	}, nil
}

// CurrentUserHandler resolves the session cookie to a user record.
func (h *Handler) CurrentUserHandler(ctx context.Context, input *CurrentUserRequest) (*CurrentUserResponse, error) {
	u, err := h.service.CurrentUser(ctx, input.Session)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &CurrentUserResponse{}
	if u != nil {
		resp.Body.User = &CurrentUserBody{
			ID:            u.ID,
			Name:          u.Name,
			Email:         u.Email,
			EmailVerified: u.EmailVerified,
			Provider:      string(u.Provider),
		}
	}
	return resp, nil
}
