package user

import (
	"fmt"
	"net/http"
)

// DomainError is a structured, self-describing domain error used across the
// user module. It carries RFC 7807-friendly metadata so a shared formatter can
// convert any domain error into a Problem response without enumerating error
// types.
type DomainError struct {
	// Code is a stable, machine-readable business code (e.g., "ErrInvalidResetToken").
	Code string

	// HTTPStatus is the HTTP status suggested for this error.
	HTTPStatus int

	// Title is a short human summary; if empty the formatter defaults to
	// StatusText(HTTPStatus).
	Title string

	// Message is a human-readable message primarily for logs. When Detail is
	// empty, this is used as the public detail.
	Message string

	// Detail is a user-friendly, safe explanation for clients.
	Detail string

	// TypeURI is an RFC 7807 type URI, e.g. "urn:problem:user/err-invalid-reset-token".
	TypeURI string

	// cause is the underlying error that triggered this one, if any.
	cause error
}

// Error satisfies the standard Go error interface.
func (e *DomainError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap provides compatibility with errors.Is and errors.As.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is enables errors.Is comparisons based on the stable Code rather than
// pointer identity, so copies created via WithCause match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the DomainError wrapping the provided cause.
func (e *DomainError) WithCause(err error) *DomainError {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

// WithDetail sets a public-friendly detail message for clients.
func (e *DomainError) WithDetail(detail string) *DomainError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// --- RFC 7807 mapping accessors (satisfy httpx.DomainProblem) ---

func (e *DomainError) ProblemCode() string { return e.Code }
func (e *DomainError) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
func (e *DomainError) ProblemTitle() string { return e.Title }
func (e *DomainError) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
func (e *DomainError) ProblemTypeURI() string { return e.TypeURI }
func (e *DomainError) ProblemContext() any    { return nil }

// --- Pre-defined Domain Errors ---

var (
	// Resource & identity
	ErrNotFound = &DomainError{
		Code:       "ErrNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "user not found",
		TypeURI:    "urn:problem:user/err-not-found",
	}

	ErrUnauthorized = &DomainError{
		Code:       "ErrUnauthorized",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "authentication required",
		TypeURI:    "urn:problem:user/err-unauthorized",
	}

	// Credentials. Deliberately generic so callers cannot learn which field
	// was wrong.
	ErrInvalidCredentials = &DomainError{
		Code:       "ErrInvalidCredentials",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "invalid email or password",
		TypeURI:    "urn:problem:user/err-invalid-credentials",
	}

	// Signup conflicts
	ErrEmailExists = &DomainError{
		Code:       "ErrEmailExists",
		HTTPStatus: http.StatusConflict,
		Title:      "Conflict",
		Message:    "a user with this email already exists",
		TypeURI:    "urn:problem:user/err-email-exists",
	}

	ErrProviderIDExists = &DomainError{
		Code:       "ErrProviderIDExists",
		HTTPStatus: http.StatusConflict,
		Title:      "Conflict",
		Message:    "an account for this provider identity already exists",
		TypeURI:    "urn:problem:user/err-provider-id-exists",
	}

	// Password reset. "not found" and "expired" are intentionally merged so
	// tokens cannot be enumerated.
	ErrInvalidResetToken = &DomainError{
		Code:       "ErrInvalidResetToken",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "the provided token is invalid or has expired",
		TypeURI:    "urn:problem:user/err-invalid-reset-token",
	}

	// Abuse controls
	ErrResendTooSoon = &DomainError{
		Code:       "ErrResendTooSoon",
		HTTPStatus: http.StatusTooManyRequests,
		Title:      "Too Many Requests",
		Message:    "please wait before requesting another email",
		TypeURI:    "urn:problem:user/err-resend-too-soon",
	}

	ErrTooManyAttempts = &DomainError{
		Code:       "ErrTooManyAttempts",
		HTTPStatus: http.StatusTooManyRequests,
		Title:      "Too Many Requests",
		Message:    "too many failed attempts, try again later",
		TypeURI:    "urn:problem:user/err-too-many-attempts",
	}

	// OAuth
	ErrOAuthStateMismatch = &DomainError{
		Code:       "ErrOAuthStateMismatch",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "oauth state is missing or does not match",
		TypeURI:    "urn:problem:user/err-oauth-state-mismatch",
	}

	ErrOAuthExchangeFailed = &DomainError{
		Code:       "ErrOAuthExchangeFailed",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "oauth authentication failed",
		TypeURI:    "urn:problem:user/err-oauth-exchange-failed",
	}

	ErrOAuthEmailMissing = &DomainError{
		Code:       "ErrOAuthEmailMissing",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "email not provided by oauth provider",
		TypeURI:    "urn:problem:user/err-oauth-email-missing",
	}

	// A Google signin whose new account would collide with an existing
	// email/password account. Accounts are never merged by email match; that
	// would allow takeover through an unverified address.
	ErrAccountConflict = &DomainError{
		Code:       "ErrAccountConflict",
		HTTPStatus: http.StatusConflict,
		Title:      "Conflict",
		Message:    "an account with this email already exists; sign in with your password instead",
		TypeURI:    "urn:problem:user/err-account-conflict",
	}

	// Generic internal
	ErrInternal = &DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal server error",
		TypeURI:    "urn:problem:user/err-internal",
	}
)
