package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel-agency/internal/data/entity"
	"travel-agency/internal/usecase"
	"travel-agency/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAuthenticator struct {
	principal *usecase.Principal
	err       error
	token     string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*usecase.Principal, error) {
	s.token = token
	return s.principal, s.err
}

// echoUser reports what the auth middleware put into the context.
func echoUser(seen *usecase.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := utils.GetUserIDFromContext(r.Context()); ok {
			role, _ := utils.GetRoleFromContext(r.Context())
			session, _ := utils.GetSessionIDFromContext(r.Context())
			*seen = usecase.Principal{
				Actor:     usecase.Actor{UserID: id, Role: entity.UserRole(role)},
				SessionID: session,
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth(t *testing.T) {
	principal := &usecase.Principal{
		Actor:     usecase.Actor{UserID: uuid.New(), Role: entity.RoleVIP},
		SessionID: uuid.New(),
	}

	tests := []struct {
		name   string
		header string
		auth   *stubAuthenticator
		code   int
	}{
		{name: "missing header", auth: &stubAuthenticator{}, code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", auth: &stubAuthenticator{}, code: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", auth: &stubAuthenticator{}, code: http.StatusUnauthorized},
		{name: "revoked session", header: "Bearer abc", auth: &stubAuthenticator{err: usecase.ErrInvalidCredentials}, code: http.StatusUnauthorized},
		{name: "inactive account", header: "Bearer abc", auth: &stubAuthenticator{err: usecase.ErrInactiveAccount}, code: http.StatusUnauthorized},
		{name: "store failure", header: "Bearer abc", auth: &stubAuthenticator{err: errors.New("db down")}, code: http.StatusInternalServerError},
		{name: "valid", header: "Bearer abc", auth: &stubAuthenticator{principal: principal}, code: http.StatusNoContent},
		{name: "scheme is case insensitive", header: "bearer abc", auth: &stubAuthenticator{principal: principal}, code: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen usecase.Principal
			h := Auth(tt.auth, zap.NewNop())(echoUser(&seen))

			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusNoContent {
				assert.Equal(t, "abc", tt.auth.token)
				assert.Equal(t, *principal, seen)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Run("anonymous passes", func(t *testing.T) {
		var seen usecase.Principal
		h := OptionalAuth(&stubAuthenticator{}, zap.NewNop())(echoUser(&seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, uuid.Nil, seen.UserID)
	})

	t.Run("bad token is still rejected", func(t *testing.T) {
		var seen usecase.Principal
		h := OptionalAuth(&stubAuthenticator{err: usecase.ErrInvalidCredentials}, zap.NewNop())(echoUser(&seen))

		req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Admin(zap.NewNop())(ok)

	tests := []struct {
		name string
		ctx  func(context.Context) context.Context
		code int
	}{
		{name: "anonymous", ctx: func(c context.Context) context.Context { return c }, code: http.StatusUnauthorized},
		{name: "client", ctx: func(c context.Context) context.Context {
			return utils.SetUserContext(c, uuid.New(), string(entity.RoleClient))
		}, code: http.StatusForbidden},
		{name: "vip", ctx: func(c context.Context) context.Context {
			return utils.SetUserContext(c, uuid.New(), string(entity.RoleVIP))
		}, code: http.StatusForbidden},
		{name: "admin", ctx: func(c context.Context) context.Context {
			return utils.SetUserContext(c, uuid.New(), string(entity.RoleAdmin))
		}, code: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			req = req.WithContext(tt.ctx(req.Context()))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("preflight from allowed origin", func(t *testing.T) {
		h := CORS("https://travel.example.com")(next)
		req := httptest.NewRequest(http.MethodOptions, "/api/packages", nil)
		req.Header.Set("Origin", "https://travel.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://travel.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		h := CORS("https://travel.example.com")(next)
		req := httptest.NewRequest(http.MethodGet, "/api/packages", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecover(t *testing.T) {
	h := Recover(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
