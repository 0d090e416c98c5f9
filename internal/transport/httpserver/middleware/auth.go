package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"happi-app-go/internal/auth"
	userdomain "happi-app-go/internal/domain/user"
	"happi-app-go/internal/transport/httpserver/flash"
	"happi-app-go/pkg/logger"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

const loginPath = "/login"

// User is the authenticated caller as handlers see it.
type User struct {
	ID             string
	Email          string
	Name           string
	MembershipTier string
	HappiCoins     int64
}

type SessionParser interface {
	Parse(raw string) (*auth.Claims, error)
}

type UserLoader interface {
	Get(ctx context.Context, id string) (*userdomain.User, error)
}

type SessionAuth struct {
	sessions   SessionParser
	users      UserLoader
	cookieName string
	log        logger.Logger
}

func NewSessionAuth(sessions SessionParser, users UserLoader, cookieName string, log logger.Logger) *SessionAuth {
	if cookieName == "" {
		cookieName = "happi_session"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SessionAuth{
		sessions:   sessions,
		users:      users,
		cookieName: cookieName,
		log:        log,
	}
}

// Require rejects anonymous requests. Browser sessions are sent to the login
// page; bearer clients get a 401 envelope.
func (a *SessionAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err != nil {
			if _, ok := bearerToken(r.Header.Get("Authorization")); ok {
				unauthorized(w)
				return
			}
			flash.Set(w, flash.Error("Please log in to continue."))
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Optional attaches the user when a valid session is present and lets
// anonymous requests through.
func (a *SessionAuth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

var errNoSession = errors.New("no session")

func (a *SessionAuth) authenticate(r *http.Request) (User, error) {
	raw := a.sessionToken(r)
	if raw == "" {
		return User{}, errNoSession
	}

	claims, err := a.sessions.Parse(raw)
	if err != nil {
		return User{}, err
	}

	loaded, err := a.users.Get(r.Context(), claims.Subject)
	if err != nil {
		if !errors.Is(err, userdomain.ErrUserNotFound) {
			logger.FromContext(r.Context(), a.log).InternalError("auth: load user failed", err, "user_id", claims.Subject)
		}
		return User{}, err
	}

	return User{
		ID:             loaded.ID,
		Email:          loaded.Email,
		Name:           loaded.Name,
		MembershipTier: loaded.MembershipTier,
		HappiCoins:     loaded.HappiCoins,
	}, nil
}

func (a *SessionAuth) sessionToken(r *http.Request) string {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token
	}
	cookie, err := r.Cookie(a.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
