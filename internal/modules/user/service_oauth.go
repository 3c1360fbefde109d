package user

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthExchangeTimeout     = 10 * time.Second
)

// oAuthUserInfo holds the standardized profile extracted from the provider.
type oAuthUserInfo struct {
	ID    string
	Email string
	Name  string
}

// googleOAuthConfig builds the oauth2 client configuration. Endpoints default
// to Google's and are overridable through config for tests.
func (s *service) googleOAuthConfig() *oauth2.Config {
	endpoint := google.Endpoint
	if s.config.Google.AuthURL != "" || s.config.Google.TokenURL != "" {
		endpoint = oauth2.Endpoint{
			AuthURL:  s.config.Google.AuthURL,
			TokenURL: s.config.Google.TokenURL,
		}
	}
	return &oauth2.Config{
		ClientID:     s.config.Google.ClientID,
		ClientSecret: s.config.Google.ClientSecret,
		RedirectURL:  s.config.Google.RedirectURL,
		Endpoint:     endpoint,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
	}
}

func (s *service) googleUserInfoURL() string {
	if s.config.Google.UserInfoURL != "" {
		return s.config.Google.UserInfoURL
	}
	return defaultGoogleUserInfoURL
}

// InitiateGoogleLogin starts the authorization-code flow. It generates a CSRF
// state nonce and a PKCE verifier and returns them alongside the provider
// authorization URL; the handler round-trips state and verifier through
// short-lived signed cookies.
func (s *service) InitiateGoogleLogin(ctx context.Context) (string, string, string, error) {
	state, err := generateSecureToken(32)
	if err != nil {
		return "", "", "", ErrInternal.WithCause(fmt.Errorf("failed to generate oauth state: %w", err))
	}
	verifier := oauth2.GenerateVerifier()

	url := s.googleOAuthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	return url, state, verifier, nil
}

// HandleGoogleCallback processes the provider redirect. It validates state
// before any network call, exchanges the code with the PKCE verifier, fetches
// the profile, resolves or creates the local account by provider subject id,
// and mints a session.
func (s *service) HandleGoogleCallback(ctx context.Context, cb GoogleCallback) (string, string, error) {
	// CSRF/replay gate. Missing code, missing state on either side, or a
	// mismatch all fail identically, and nothing has been sent to the
	// provider yet.
	if cb.Code == "" || cb.QueryState == "" || cb.CookieState == "" ||
		subtle.ConstantTimeCompare([]byte(cb.QueryState), []byte(cb.CookieState)) != 1 {
		return "", "", ErrOAuthStateMismatch
	}
	if cb.CodeVerifier == "" {
		return "", "", ErrOAuthStateMismatch
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, oauthExchangeTimeout)
	defer cancel()

	conf := s.googleOAuthConfig()
	token, err := conf.Exchange(exchangeCtx, cb.Code, oauth2.VerifierOption(cb.CodeVerifier))
	if err != nil {
		return "", "", ErrOAuthExchangeFailed.WithCause(fmt.Errorf("failed to exchange oauth code: %w", err))
	}

	info, err := s.fetchGoogleUserInfo(exchangeCtx, conf, token)
	if err != nil {
		return "", "", ErrOAuthExchangeFailed.WithCause(err)
	}
	if info.Email == "" {
		return "", "", ErrOAuthEmailMissing
	}

	u, err := s.resolveGoogleUser(ctx, info)
	if err != nil {
		return "", "", err
	}

	sessionToken, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		s.logger.Error("failed to create session after oauth login", "error", err, "user_id", u.ID)
		return "", "", ErrInternal.WithCause(err)
	}

	s.logger.Info("user signed in via google", "user_id", u.ID)

	return sessionToken, u.ID, nil
}

// resolveGoogleUser finds the account for a Google subject id, creating it on
// first login. The subject id is the sole matching key; an email collision
// with an existing account is a conflict, never an implicit merge.
func (s *service) resolveGoogleUser(ctx context.Context, info *oAuthUserInfo) (*User, error) {
	u, err := s.repo.FindByProviderID(ctx, info.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to find user by provider id", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	providerID := info.ID
	newUser := &User{
		ID:            id.String(),
		Name:          info.Name,
		Email:         info.Email,
		PasswordHash:  nil,
		EmailVerified: true,
		Provider:      AuthProviderGoogle,
		ProviderID:    &providerID,
	}

	err = s.repo.Create(ctx, newUser)
	if err == nil {
		s.logger.Info("new user created via google oauth", "user_id", newUser.ID)
		return newUser, nil
	}

	if errors.Is(err, ErrProviderIDExists) {
		// Lost a race against a concurrent callback for the same subject;
		// the existing row is the same identity, so use it.
		existing, findErr := s.repo.FindByProviderID(ctx, info.ID)
		if findErr != nil {
			return nil, ErrAccountConflict.WithCause(err)
		}
		return existing, nil
	}
	if errors.Is(err, ErrEmailExists) {
		return nil, ErrAccountConflict.WithCause(err)
	}

	s.logger.Error("failed to create user from oauth profile", "error", err)
	return nil, ErrInternal.WithCause(err)
}

// fetchGoogleUserInfo retrieves the provider profile with the exchanged token.
func (s *service) fetchGoogleUserInfo(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oAuthUserInfo, error) {
	client := conf.Client(ctx, token)
	resp, err := client.Get(s.googleUserInfoURL())
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response body: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("user info fetch failed with status %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("user info response missing subject id")
	}

	return &oAuthUserInfo{ID: info.ID, Email: info.Email, Name: info.Name}, nil
}
