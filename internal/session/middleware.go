package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CookieName = "mashur_session"

type ctxKey struct{}

// FromContext returns the session id set by Manager.Middleware.
func FromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxKey{}).(string)
	return sid, ok && sid != ""
}

// WithID returns ctx carrying sid. Middleware sets it per request; tests
// call handlers directly with it.
func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sid)
}

type Manager struct {
	Tokens *TokenMaker
	TTL    time.Duration
	Secure bool
	Log    *zap.Logger
}

// Middleware resolves the session cookie. Requests without a valid cookie
// get a fresh session id, and the cookie is re-issued once half its
// lifetime has passed.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, renew := m.resolve(r)
		if renew {
			if err := m.issue(w, sid); err != nil && m.Log != nil {
				m.Log.Error("session cookie", zap.Error(err))
			}
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
	})
}

func (m *Manager) resolve(r *http.Request) (sid string, renew bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return uuid.NewString(), true
	}

	claims, err := m.Tokens.Parse(c.Value)
	if err != nil {
		return uuid.NewString(), true
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return uuid.NewString(), true
	}

	if claims.IssuedAt != nil && m.Tokens.now().Sub(claims.IssuedAt.Time) > m.TTL/2 {
		return claims.SessionID, true
	}
	return claims.SessionID, false
}

func (m *Manager) issue(w http.ResponseWriter, sid string) error {
	token, err := m.Tokens.New(sid, m.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
