package user

import (
	"context"
	"net/http"
	"time"

	"github.com/pulseboard/api/internal/session"
)

const (
	oauthStateCookie    = "google_oauth_state"
	oauthVerifierCookie = "google_code_verifier"

	// One authorization attempt gets at most an hour; abandoning the flow
	// simply lets the cookies lapse.
	oauthCookieTTL = time.Hour
)

// --- DTOs ---

// GoogleLoginRequest has no inputs; the flow starts server-side.
type GoogleLoginRequest struct{}

// GoogleLoginResponse redirects the browser to the provider and plants the
// transient state/verifier cookies.
type GoogleLoginResponse struct {
	Location  string        `header:"Location"`
	SetCookie []http.Cookie `header:"Set-Cookie"`
}

// GoogleCallbackRequest carries the provider's query parameters plus the
// transient cookies planted at initiation.
type GoogleCallbackRequest struct {
	Code           string `query:"code"`
	State          string `query:"state"`
	StateCookie    string `cookie:"google_oauth_state"`
	VerifierCookie string `cookie:"google_code_verifier"`
}

// GoogleCallbackResponse redirects back into the app. The transient cookies
// are cleared unconditionally; the session cookie is set only on success.
type GoogleCallbackResponse struct {
	Location  string        `header:"Location"`
	SetCookie []http.Cookie `header:"Set-Cookie"`
}

// --- Handlers ---

// GoogleLoginHandler initiates the Google OAuth flow.
func (h *Handler) GoogleLoginHandler(ctx context.Context, _ *GoogleLoginRequest) (*GoogleLoginResponse, error) {
	redirectURL, state, verifier, err := h.service.InitiateGoogleLogin(ctx)
	if err != nil {
		h.logger.Error("failed to initiate google login", "error", err)
		return h.loginErrorRedirect(), nil
	}

	signedState, err := signTransientValue(h.config.AuthSecret, state, oauthCookieTTL)
	if err != nil {
		h.logger.Error("failed to sign oauth state cookie", "error", err)
		return h.loginErrorRedirect(), nil
	}
	signedVerifier, err := signTransientValue(h.config.AuthSecret, verifier, oauthCookieTTL)
	if err != nil {
		h.logger.Error("failed to sign code verifier cookie", "error", err)
		return h.loginErrorRedirect(), nil
	}

	return &GoogleLoginResponse{
		Location: redirectURL,
		SetCookie: []http.Cookie{
			h.transientCookie(oauthStateCookie, signedState),
			h.transientCookie(oauthVerifierCookie, signedVerifier),
		},
	}, nil
}

// GoogleCallbackHandler validates the provider redirect and signs the user in.
// All failures land back on the signin page with an error flag rather than a
// problem response, since the browser arrives here by top-level navigation.
func (h *Handler) GoogleCallbackHandler(ctx context.Context, input *GoogleCallbackRequest) (*GoogleCallbackResponse, error) {
	// Single-use: drop both transient cookies no matter how the callback ends.
	cookies := []http.Cookie{
		h.clearTransientCookie(oauthStateCookie),
		h.clearTransientCookie(oauthVerifierCookie),
	}

	cb := GoogleCallback{
		Code:       input.Code,
		QueryState: input.State,
	}
	if input.StateCookie != "" {
		if v, err := parseTransientValue(h.config.AuthSecret, input.StateCookie); err == nil {
			cb.CookieState = v
		}
	}
	if input.VerifierCookie != "" {
		if v, err := parseTransientValue(h.config.AuthSecret, input.VerifierCookie); err == nil {
			cb.CodeVerifier = v
		}
	}

	sessionToken, userID, err := h.service.HandleGoogleCallback(ctx, cb)
	if err != nil {
		h.logger.Warn("google callback rejected", "error", err)
		return &GoogleCallbackResponse{
			Location:  h.config.App.SigninPath + "?error=oauth",
			SetCookie: cookies,
		}, nil
	}

	h.logger.Info("google signin completed", "user_id", userID)

	cookies = append(cookies, *session.NewCookie(sessionToken, h.config.Session.TTL, h.config.Server.IsProduction()))
	return &GoogleCallbackResponse{
		Location:  h.config.App.BaseURL,
		SetCookie: cookies,
	}, nil
}

// --- Cookie adapter helpers ---

func (h *Handler) loginErrorRedirect() *GoogleLoginResponse {
	return &GoogleLoginResponse{Location: h.config.App.SigninPath + "?error=oauth"}
}

// transientCookie builds a short-lived httpOnly cookie for OAuth round-trip
// state. SameSite is Lax, not Strict: the callback arrives via a cross-site
// top-level navigation from the provider and Strict cookies would be withheld.
func (h *Handler) transientCookie(name, value string) http.Cookie {
	return http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthCookieTTL.Seconds()),
	}
}

func (h *Handler) clearTransientCookie(name string) http.Cookie {
	c := h.transientCookie(name, "")
	c.MaxAge = -1
	return c
}
