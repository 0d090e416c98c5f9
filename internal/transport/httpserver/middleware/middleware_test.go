package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happi-app-go/internal/auth"
	"happi-app-go/internal/config"
	userdomain "happi-app-go/internal/domain/user"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/pkg/logger"
)

type stubUsers map[string]*userdomain.User

func (s stubUsers) Get(_ context.Context, id string) (*userdomain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, userdomain.ErrUserNotFound
}

func newTestAuth(t *testing.T) (*SessionAuth, string) {
	t.Helper()
	sessions := auth.NewSessions("test-secret", time.Hour)
	users := stubUsers{"u-1": {ID: "u-1", Email: "ana@example.com", Name: "Ana", MembershipTier: "gold", HappiCoins: 40}}
	token, _, err := sessions.Issue("u-1", "ana@example.com")
	require.NoError(t, err)
	return NewSessionAuth(sessions, users, "happi_session", nil), token
}

func captureUser(got *User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := UserFromContext(r.Context()); ok {
			*got = user
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireWithCookie(t *testing.T) {
	a, token := newTestAuth(t)
	var got User

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "happi_session", Value: token})
	rec := httptest.NewRecorder()
	a.Require(captureUser(&got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "gold", got.MembershipTier)
	assert.EqualValues(t, 40, got.HappiCoins)
}

func TestRequireRedirectsAnonymousToLogin(t *testing.T) {
	a, _ := newTestAuth(t)
	var got User

	rec := httptest.NewRecorder()
	a.Require(captureUser(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, flash.CookieName, cookies[0].Name)
	assert.Empty(t, got.ID)
}

func TestRequireRejectsBadBearerWith401(t *testing.T) {
	a, _ := newTestAuth(t)
	var got User

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	a.Require(captureUser(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestRequireRejectsDeletedUser(t *testing.T) {
	sessions := auth.NewSessions("test-secret", time.Hour)
	token, _, err := sessions.Issue("gone", "gone@example.com")
	require.NoError(t, err)
	a := NewSessionAuth(sessions, stubUsers{}, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.Require(captureUser(&User{})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalLetsAnonymousThrough(t *testing.T) {
	a, token := newTestAuth(t)

	var anon User
	rec := httptest.NewRecorder()
	a.Optional(captureUser(&anon)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/family/join/abc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, anon.ID)

	var known User
	req := httptest.NewRequest(http.MethodGet, "/family/join/abc", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	a.Optional(captureUser(&known)).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "ana@example.com", known.Email)
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := UserIDFromContext(WithUser(context.Background(), User{ID: "u-9"}))
	assert.True(t, ok)
	assert.Equal(t, "u-9", id)
}

func TestCORS(t *testing.T) {
	handler := NewCORS(config.CORSConfig{
		AllowedOrigins: []string{"https://app.example/", " ", "*"},
		MaxAge:         time.Hour,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	preflight := httptest.NewRequest(http.MethodOptions, "/insurance", nil)
	preflight.Header.Set("Origin", "https://app.example")
	preflight.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))

	simple := httptest.NewRequest(http.MethodPost, "/insurance/purchase", nil)
	simple.Header.Set("Origin", "https://app.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, simple)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Location")

	other := httptest.NewRequest(http.MethodGet, "/insurance", nil)
	other.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	foreignPreflight := httptest.NewRequest(http.MethodOptions, "/insurance", nil)
	foreignPreflight.Header.Set("Origin", "https://evil.example")
	foreignPreflight.Header.Set("Access-Control-Request-Method", "DELETE")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, foreignPreflight)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestLoggerScopesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(&buf, slog.LevelInfo, "json")

	var scoped logger.Logger
	h := chimw.RequestID(RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = logger.FromContext(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, scoped)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/vehicles", entry["path"])
	assert.EqualValues(t, http.StatusTeapot, entry["status"])
}
