package user

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/pulseboard/api/internal/httpx"
	"github.com/pulseboard/api/internal/validation"
)

// genericForgotMessage is returned for every forgot-password request, whether
// or not the account exists and whether or not the email could be sent.
const genericForgotMessage = "If an account exists for that email, a reset link has been sent."

// --- DTOs ---

// ForgotPasswordRequest defines the structure for initiating a password reset.
type ForgotPasswordRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
	}
}

// ForgotPasswordResponse always carries the same generic message.
type ForgotPasswordResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// ResetPasswordRequest defines the structure for finalizing a password reset.
type ResetPasswordRequest struct {
	Body struct {
		Token           string `json:"token" validate:"required"`
		Password        string `json:"password" validate:"required,min=8"`
		ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	}
}

// ResetPasswordResponse confirms the password change.
type ResetPasswordResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// --- Handlers ---

// ForgotPasswordHandler initiates a password reset. The response is identical
// for existing and unknown emails so the endpoint cannot be used to probe for
// accounts; real failures are logged server-side only.
func (h *Handler) ForgotPasswordHandler(ctx context.Context, input *ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.InitiatePasswordReset(ctx, input.Body.Email); err != nil {
		h.logger.Error("failed to initiate password reset", "error", err)
	}

	resp := &ForgotPasswordResponse{}
	resp.Body.Message = genericForgotMessage
	return resp, nil
}

// ResetPasswordHandler sets a new password using an emailed reset token.
func (h *Handler) ResetPasswordHandler(ctx context.Context, input *ResetPasswordRequest) (*ResetPasswordResponse, error) {
	if err := validation.ValidateStruct(input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	if err := h.service.FinalizePasswordReset(ctx, input.Body.Token, input.Body.Password); err != nil {
		h.logger.Warn("failed to reset password", "error", err)
		if errors.Is(err, ErrInvalidResetToken) {
			return nil, huma.Error400BadRequest("the provided token is invalid or has expired")
		}
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &ResetPasswordResponse{}
	resp.Body.Message = "Your password has been updated. You can sign in now."
	return resp, nil
}
