package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulseboard/api/internal/contextx"
	"github.com/pulseboard/api/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	validateFn func(ctx context.Context, token string) (string, error)
}

func (s *stubSessions) Create(context.Context, string) (string, error) { return "", nil }
func (s *stubSessions) Delete(context.Context, string) error           { return nil }
func (s *stubSessions) Validate(ctx context.Context, token string) (string, error) {
	if s.validateFn != nil {
		return s.validateFn(ctx, token)
	}
	return "", session.ErrNotFound
}

func newGuard(sessions session.Provider) *AccessGuard {
	return NewAccessGuard("/dashboard, /settings", "/signin", sessions,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProtects(t *testing.T) {
	g := newGuard(&stubSessions{})

	assert.True(t, g.Protects("/dashboard"))
	assert.True(t, g.Protects("/dashboard/reports"))
	assert.True(t, g.Protects("/settings"))
	assert.False(t, g.Protects("/dashboards"), "prefix match must stop at path boundaries")
	assert.False(t, g.Protects("/"))
	assert.False(t, g.Protects("/auth/signin"))
}

func TestGuard_UnprotectedPathPassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, r.Context().Value(contextx.UserIDKey))
	})

	rec := httptest.NewRecorder()
	newGuard(&stubSessions{}).Handler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuard_MissingCookieRedirects(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("protected handler must not run without a session")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/reports?tab=1", nil)
	newGuard(&stubSessions{}).Handler(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin?next=%2Fdashboard%2Freports%3Ftab%3D1", rec.Header().Get("Location"))
}

func TestGuard_InvalidSessionRedirects(t *testing.T) {
	sessions := &stubSessions{
		validateFn: func(_ context.Context, _ string) (string, error) {
			return "", session.ErrExpired
		},
	}
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("protected handler must not run with an expired session")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})
	newGuard(sessions).Handler(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/signin?next=%2Fdashboard", rec.Header().Get("Location"))
}

func TestGuard_ValidSessionInjectsContext(t *testing.T) {
	sessions := &stubSessions{
		validateFn: func(_ context.Context, token string) (string, error) {
			assert.Equal(t, "tok-123", token)
			return "u1", nil
		},
	}

	var gotUserID, gotToken any
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Context().Value(contextx.UserIDKey)
		gotToken = r.Context().Value(contextx.SessionTokenKey)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "tok-123"})
	newGuard(sessions).Handler(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", gotUserID)
	assert.Equal(t, "tok-123", gotToken)
}
