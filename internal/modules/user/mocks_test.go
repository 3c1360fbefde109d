package user

import (
	"context"
	"time"

	"github.com/pulseboard/api/internal/notification"
)

// --- Repository mock ---

type mockRepository struct {
	createFn           func(ctx context.Context, u *User) error
	findByEmailFn      func(ctx context.Context, email string) (*User, error)
	findByIDFn         func(ctx context.Context, id string) (*User, error)
	findByProviderIDFn func(ctx context.Context, providerID string) (*User, error)
	updatePasswordFn   func(ctx context.Context, userID, hash string) error
	issueResetTokenFn  func(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	consumeResetFn     func(ctx context.Context, tokenHash, newHash string) (string, error)
}

func (m *mockRepository) Create(ctx context.Context, u *User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) FindByProviderID(ctx context.Context, providerID string) (*User, error) {
	if m.findByProviderIDFn != nil {
		return m.findByProviderIDFn(ctx, providerID)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, hash)
	}
	return nil
}

func (m *mockRepository) IssueResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	if m.issueResetTokenFn != nil {
		return m.issueResetTokenFn(ctx, userID, tokenHash, expiresAt)
	}
	return nil
}

func (m *mockRepository) ConsumeResetToken(ctx context.Context, tokenHash, newHash string) (string, error) {
	if m.consumeResetFn != nil {
		return m.consumeResetFn(ctx, tokenHash, newHash)
	}
	return "", ErrNotFound
}

// --- Session provider mock ---

type mockSessions struct {
	createFn   func(ctx context.Context, userID string) (string, error)
	validateFn func(ctx context.Context, token string) (string, error)
	deleteFn   func(ctx context.Context, token string) error
}

func (m *mockSessions) Create(ctx context.Context, userID string) (string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID)
	}
	return "session-token", nil
}

func (m *mockSessions) Validate(ctx context.Context, token string) (string, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, token)
	}
	return "", ErrNotFound
}

func (m *mockSessions) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

// --- Limiter mock ---

type mockLimiter struct {
	cooldownFn func(ctx context.Context, key string, d time.Duration) (bool, error)
	allowFn    func(ctx context.Context, key string, max int64, window time.Duration) (bool, error)
	resetFn    func(ctx context.Context, key string) error
}

func (m *mockLimiter) Cooldown(ctx context.Context, key string, d time.Duration) (bool, error) {
	if m.cooldownFn != nil {
		return m.cooldownFn(ctx, key, d)
	}
	return true, nil
}

func (m *mockLimiter) Allow(ctx context.Context, key string, max int64, window time.Duration) (bool, error) {
	if m.allowFn != nil {
		return m.allowFn(ctx, key, max, window)
	}
	return true, nil
}

func (m *mockLimiter) Reset(ctx context.Context, key string) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, key)
	}
	return nil
}

// --- Notifier mock ---

type mockNotifier struct {
	sendEmailFn func(ctx context.Context, email notification.Email) error
}

func (m *mockNotifier) SendEmail(ctx context.Context, email notification.Email) error {
	if m.sendEmailFn != nil {
		return m.sendEmailFn(ctx, email)
	}
	return nil
}

// --- Service mock (for handler tests) ---

type mockService struct {
	signUpFn         func(ctx context.Context, name, email, password string) (*User, error)
	signInFn         func(ctx context.Context, email, password string) (string, error)
	signOutFn        func(ctx context.Context, token string) error
	currentUserFn    func(ctx context.Context, token string) (*User, error)
	initiateResetFn  func(ctx context.Context, email string) error
	finalizeResetFn  func(ctx context.Context, token, newPassword string) error
	initiateGoogleFn func(ctx context.Context) (string, string, string, error)
	handleGoogleFn   func(ctx context.Context, cb GoogleCallback) (string, string, error)
}

func (m *mockService) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, name, email, password)
	}
	return nil, ErrInternal
}

func (m *mockService) SignIn(ctx context.Context, email, password string) (string, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return "", ErrInvalidCredentials
}

func (m *mockService) SignOut(ctx context.Context, token string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, token)
	}
	return nil
}

func (m *mockService) CurrentUser(ctx context.Context, token string) (*User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, token)
	}
	return nil, nil
}

func (m *mockService) InitiatePasswordReset(ctx context.Context, email string) error {
	if m.initiateResetFn != nil {
		return m.initiateResetFn(ctx, email)
	}
	return nil
}

func (m *mockService) FinalizePasswordReset(ctx context.Context, token, newPassword string) error {
	if m.finalizeResetFn != nil {
		return m.finalizeResetFn(ctx, token, newPassword)
	}
	return nil
}

func (m *mockService) InitiateGoogleLogin(ctx context.Context) (string, string, string, error) {
	if m.initiateGoogleFn != nil {
		return m.initiateGoogleFn(ctx)
	}
	return "", "", "", ErrInternal
}

func (m *mockService) HandleGoogleCallback(ctx context.Context, cb GoogleCallback) (string, string, error) {
	if m.handleGoogleFn != nil {
		return m.handleGoogleFn(ctx, cb)
	}
	return "", "", ErrOAuthStateMismatch
}
