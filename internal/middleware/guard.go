package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pulseboard/api/internal/contextx"
	"github.com/pulseboard/api/internal/session"
)

// AccessGuard gates protected path prefixes behind a valid session cookie.
// Unauthenticated requests to a protected path are redirected to the signin
// page with the original path attached as a return-to parameter; everything
// else passes through unchanged.
type AccessGuard struct {
	prefixes   []string
	signinPath string
	sessions   session.Provider
	logger     *slog.Logger
}

// NewAccessGuard builds a guard for the given comma-separated path prefixes,
// e.g. "/dashboard,/settings".
func NewAccessGuard(protectedPaths, signinPath string, sessions session.Provider, logger *slog.Logger) *AccessGuard {
	var prefixes []string
	for _, p := range strings.Split(protectedPaths, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &AccessGuard{
		prefixes:   prefixes,
		signinPath: signinPath,
		sessions:   sessions,
		logger:     logger,
	}
}

// Protects reports whether the given request path falls under a guarded prefix.
func (g *AccessGuard) Protects(path string) bool {
	for _, prefix := range g.prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Handler is the chi middleware. On a guarded path it validates the session
// cookie against the provider and injects the user ID into the request
// context; missing or invalid sessions are redirected to signin.
func (g *AccessGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Protects(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			g.redirectToSignin(w, r)
			return
		}

		userID, err := g.sessions.Validate(r.Context(), cookie.Value)
		if err != nil {
			g.redirectToSignin(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextx.UserIDKey, userID)
		ctx = context.WithValue(ctx, contextx.SessionTokenKey, cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *AccessGuard) redirectToSignin(w http.ResponseWriter, r *http.Request) {
	target := g.signinPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}
