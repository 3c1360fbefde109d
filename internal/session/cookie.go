package session

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// NewCookie builds the session cookie for a freshly minted token.
// The cookie is httpOnly, SameSite=Strict, path "/" and Secure when the
// server runs in production. A zero TTL produces a session cookie with no
// explicit expiry, matching the non-expiring server-side policy.
func NewCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}

// ClearCookie builds an expired session cookie that instructs the browser to
// drop the stored value.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	}
}
