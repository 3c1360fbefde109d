package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider stands in for Google's token and userinfo endpoints.
type fakeProvider struct {
	tokenServer    *httptest.Server
	userInfoServer *httptest.Server
	tokenCalls     atomic.Int64
	userInfo       map[string]string
}

func newFakeProvider(userInfo map[string]string) *fakeProvider {
	p := &fakeProvider{userInfo: userInfo}
	p.tokenServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fake-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	p.userInfoServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p.userInfo)
	}))
	return p
}

func (p *fakeProvider) Close() {
	p.tokenServer.Close()
	p.userInfoServer.Close()
}

func newOAuthTestService(t *testing.T, repo *mockRepository, sessions *mockSessions, p *fakeProvider) *service {
	t.Helper()
	svc := newTestService(t, repo, sessions, nil, nil)
	svc.config.Google.ClientID = "client-id"
	svc.config.Google.ClientSecret = "client-secret"
	svc.config.Google.RedirectURL = "http://localhost:8080/auth/oauth/google/callback"
	if p != nil {
		svc.config.Google.AuthURL = p.tokenServer.URL + "/auth"
		svc.config.Google.TokenURL = p.tokenServer.URL
		svc.config.Google.UserInfoURL = p.userInfoServer.URL
	}
	return svc
}

func TestInitiateGoogleLogin(t *testing.T) {
	svc := newOAuthTestService(t, nil, nil, nil)

	redirectURL, state, verifier, err := svc.InitiateGoogleLogin(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.NotEmpty(t, verifier)
	assert.NotEqual(t, state, verifier)

	u, err := url.Parse(redirectURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotEqual(t, verifier, q.Get("code_challenge"), "challenge must be derived, not the raw verifier")

	// Each attempt gets fresh transients.
	_, state2, verifier2, err := svc.InitiateGoogleLogin(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, state, state2)
	assert.NotEqual(t, verifier, verifier2)
}

func TestHandleGoogleCallback_StateMismatch_BeforeAnyNetworkCall(t *testing.T) {
	p := newFakeProvider(map[string]string{"id": "g-1", "email": "ann@x.com"})
	defer p.Close()
	svc := newOAuthTestService(t, nil, nil, p)

	cases := []struct {
		name string
		cb   GoogleCallback
	}{
		{"missing code", GoogleCallback{QueryState: "s", CookieState: "s", CodeVerifier: "v"}},
		{"missing query state", GoogleCallback{Code: "c", CookieState: "s", CodeVerifier: "v"}},
		{"missing cookie state", GoogleCallback{Code: "c", QueryState: "s", CodeVerifier: "v"}},
		{"state mismatch", GoogleCallback{Code: "c", QueryState: "s1", CookieState: "s2", CodeVerifier: "v"}},
		{"missing verifier", GoogleCallback{Code: "c", QueryState: "s", CookieState: "s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.HandleGoogleCallback(context.Background(), tc.cb)
			assert.ErrorIs(t, err, ErrOAuthStateMismatch)
		})
	}
	assert.Equal(t, int64(0), p.tokenCalls.Load(), "forged callbacks must be rejected before contacting the provider")
}

func TestHandleGoogleCallback_CreatesUserOnFirstLogin(t *testing.T) {
	p := newFakeProvider(map[string]string{"id": "g-123", "email": "Ann@X.com", "name": "Ann Example"})
	defer p.Close()

	var created *User
	repo := &mockRepository{
		findByProviderIDFn: func(_ context.Context, providerID string) (*User, error) {
			assert.Equal(t, "g-123", providerID)
			return nil, ErrNotFound
		},
		createFn: func(_ context.Context, u *User) error {
			created = u
			return nil
		},
	}
	sessions := &mockSessions{
		createFn: func(_ context.Context, userID string) (string, error) {
			return "sess-tok", nil
		},
	}
	svc := newOAuthTestService(t, repo, sessions, p)

	token, userID, err := svc.HandleGoogleCallback(context.Background(), GoogleCallback{
		Code: "code", QueryState: "s", CookieState: "s", CodeVerifier: "verifier",
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-tok", token)

	require.NotNil(t, created)
	assert.Equal(t, userID, created.ID)
	assert.Equal(t, AuthProviderGoogle, created.Provider)
	require.NotNil(t, created.ProviderID)
	assert.Equal(t, "g-123", *created.ProviderID)
	assert.Equal(t, "ann@x.com", created.Email)
	assert.True(t, created.EmailVerified, "google-sourced accounts arrive verified")
	assert.Nil(t, created.PasswordHash)
}

func TestHandleGoogleCallback_ReturningUser(t *testing.T) {
	p := newFakeProvider(map[string]string{"id": "g-123", "email": "ann@x.com"})
	defer p.Close()

	repo := &mockRepository{
		findByProviderIDFn: func(_ context.Context, _ string) (*User, error) {
			return &User{ID: "u1", Provider: AuthProviderGoogle}, nil
		},
		createFn: func(_ context.Context, _ *User) error {
			t.Fatal("returning users must not be re-created")
			return nil
		},
	}
	svc := newOAuthTestService(t, repo, nil, p)

	_, userID, err := svc.HandleGoogleCallback(context.Background(), GoogleCallback{
		Code: "code", QueryState: "s", CookieState: "s", CodeVerifier: "verifier",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestHandleGoogleCallback_MissingEmail(t *testing.T) {
	p := newFakeProvider(map[string]string{"id": "g-123"})
	defer p.Close()
	svc := newOAuthTestService(t, nil, nil, p)

	_, _, err := svc.HandleGoogleCallback(context.Background(), GoogleCallback{
		Code: "code", QueryState: "s", CookieState: "s", CodeVerifier: "verifier",
	})
	assert.ErrorIs(t, err, ErrOAuthEmailMissing)
}

func TestHandleGoogleCallback_EmailCollisionIsConflict(t *testing.T) {
	p := newFakeProvider(map[string]string{"id": "g-123", "email": "ann@x.com"})
	defer p.Close()

	repo := &mockRepository{
		findByProviderIDFn: func(_ context.Context, _ string) (*User, error) {
			return nil, ErrNotFound
		},
		createFn: func(_ context.Context, _ *User) error {
			// The email already belongs to an email/password account.
			return ErrEmailExists
		},
	}
	svc := newOAuthTestService(t, repo, nil, p)

	_, _, err := svc.HandleGoogleCallback(context.Background(), GoogleCallback{
		Code: "code", QueryState: "s", CookieState: "s", CodeVerifier: "verifier",
	})
	assert.ErrorIs(t, err, ErrAccountConflict, "accounts are never merged by email")
}

func TestHandleGoogleCallback_ConcurrentSubjectRaceResolves(t *testing.T) {
	p := newFakeProvider(map[string]string{"id": "g-123", "email": "ann@x.com"})
	defer p.Close()

	lookups := 0
	repo := &mockRepository{
		findByProviderIDFn: func(_ context.Context, _ string) (*User, error) {
			lookups++
			if lookups == 1 {
				return nil, ErrNotFound
			}
			// A concurrent callback inserted the row between our lookup and insert.
			return &User{ID: "winner", Provider: AuthProviderGoogle}, nil
		},
		createFn: func(_ context.Context, _ *User) error {
			return ErrProviderIDExists
		},
	}
	svc := newOAuthTestService(t, repo, nil, p)

	_, userID, err := svc.HandleGoogleCallback(context.Background(), GoogleCallback{
		Code: "code", QueryState: "s", CookieState: "s", CodeVerifier: "verifier",
	})
	require.NoError(t, err)
	assert.Equal(t, "winner", userID, "losing the insert race resolves to the existing identity")
}
