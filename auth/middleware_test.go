package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver returns a fixed identity or error for any username.
type stubResolver struct {
	identity *Identity
	err      error
	calls    int
}

func (s *stubResolver) Resolve(ctx context.Context, username string) (*Identity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

// identityCapture is a terminal handler that records whatever identity the
// middleware attached and always responds 200.
func identityCapture(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := IdentityFromContext(r.Context()); ok {
			*captured = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "empty header", header: "", ok: false},
		{name: "no prefix", header: "abc.def.ghi", ok: false},
		{name: "lowercase prefix", header: "bearer abc.def.ghi", ok: false},
		{name: "basic scheme", header: "Basic abc.def.ghi", ok: false},
		{name: "prefix without space", header: "Bearerabc.def.ghi", ok: false},
		{name: "zero separators", header: "Bearer abcdefghi", ok: false},
		{name: "one separator", header: "Bearer abc.def", ok: false},
		{name: "three separators", header: "Bearer a.b.c.d", ok: false},
		{name: "well formed", header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractBearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMiddlewareAttachesIdentityForValidToken(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)
	token, _, err := codec.Issue("alice")
	require.NoError(t, err)

	resolver := &stubResolver{identity: &Identity{
		UserID:   1,
		Username: "alice",
		Roles:    []string{RoleUser},
	}}
	var captured *Identity
	handler := NewAuthenticator(codec, resolver).Middleware()(identityCapture(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "alice", captured.Username)
	assert.Equal(t, []string{RoleUser}, captured.Roles)
	assert.Equal(t, 1, resolver.calls)
}

func TestMiddlewareContinuesAnonymously(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)
	otherCodec := newTestCodec(t, "other-secret", time.Hour)
	expiredCodec := newTestCodec(t, "test-secret", -time.Minute)

	foreign, _, err := otherCodec.Issue("alice")
	require.NoError(t, err)
	expired, _, err := expiredCodec.Issue("alice")
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantResolved  bool
	}{
		{name: "no header", authorization: ""},
		{name: "wrong scheme", authorization: "Basic abc.def.ghi"},
		{name: "malformed token", authorization: "Bearer not-a-token"},
		{name: "wrong signature", authorization: "Bearer " + foreign},
		{name: "expired token", authorization: "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &stubResolver{identity: &Identity{Username: "alice"}}
			var captured *Identity
			handler := NewAuthenticator(codec, resolver).Middleware()(identityCapture(&captured))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			// The request always reaches the handler, just without identity.
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Nil(t, captured)
			assert.Zero(t, resolver.calls, "resolver must not run for invalid tokens")
		})
	}
}

// panicResolver panics on every call, standing in for a resolver whose
// backing query blows up mid-request.
type panicResolver struct{}

func (panicResolver) Resolve(ctx context.Context, username string) (*Identity, error) {
	panic("resolver exploded")
}

func TestMiddlewareContinuesAnonymouslyWhenResolverPanics(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)
	token, _, err := codec.Issue("alice")
	require.NoError(t, err)

	var captured *Identity
	var handlerCalls int
	handler := NewAuthenticator(codec, panicResolver{}).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalls++
		if identity, ok := IdentityFromContext(r.Context()); ok {
			captured = identity
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
	assert.Equal(t, 1, handlerCalls, "handler must run exactly once")
}

func TestMiddlewareDoesNotReenterPanickingHandler(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)
	token, _, err := codec.Issue("alice")
	require.NoError(t, err)

	resolver := &stubResolver{identity: &Identity{Username: "alice", Roles: []string{RoleUser}}}
	var handlerCalls int
	handler := NewAuthenticator(codec, resolver).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalls++
		panic("handler exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	// A handler panic must pass through untouched so the server-level
	// recoverer can handle it, and the handler must not run a second time.
	assert.PanicsWithValue(t, "handler exploded", func() {
		handler.ServeHTTP(rec, req)
	})
	assert.Equal(t, 1, handlerCalls, "handler must not be re-entered after a panic")
	assert.Equal(t, 1, resolver.calls)
}

func TestMiddlewareContinuesWhenResolverFails(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)
	token, _, err := codec.Issue("ghost")
	require.NoError(t, err)

	resolver := &stubResolver{err: errors.New("user vanished")}
	var captured *Identity
	handler := NewAuthenticator(codec, resolver).Middleware()(identityCapture(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
	assert.Equal(t, 1, resolver.calls)
}

func TestExpiredTokenOnProtectedRoute(t *testing.T) {
	codec := newTestCodec(t, "test-secret", time.Hour)
	expiredCodec := newTestCodec(t, "test-secret", -time.Minute)
	token, _, err := expiredCodec.Issue("alice")
	require.NoError(t, err)

	resolver := &stubResolver{identity: &Identity{Username: "alice", Roles: []string{RoleUser}}}
	protected := RequireAuthenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := NewAuthenticator(codec, resolver).Middleware()(protected)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The expired token makes the request anonymous, and the gate then
	// rejects it cleanly.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, resolver.calls)
}

func withIdentity(identity *Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity != nil {
				r = r.WithContext(NewContextWithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		handler := withIdentity(nil)(RequireAuthenticated(ok))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		identity := &Identity{Username: "alice", Roles: []string{RoleUser}}
		handler := withIdentity(identity)(RequireAuthenticated(ok))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	admin := RequireRole(RoleAdmin)(ok)

	t.Run("anonymous gets 401", func(t *testing.T) {
		handler := withIdentity(nil)(admin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("user without role gets 403", func(t *testing.T) {
		identity := &Identity{Username: "alice", Roles: []string{RoleUser}}
		handler := withIdentity(identity)(admin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		identity := &Identity{Username: "root", Roles: []string{RoleUser, RoleAdmin}}
		handler := withIdentity(identity)(admin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("any of several roles passes", func(t *testing.T) {
		either := RequireRole(RoleUser, RoleAdmin)(ok)
		identity := &Identity{Username: "alice", Roles: []string{RoleUser}}
		handler := withIdentity(identity)(either)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
