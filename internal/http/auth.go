package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/core"
)

// Context key type to avoid collisions.
type contextKey string

// userContextKey is the context key for the authenticated user.
const userContextKey contextKey = "user"

// SessionCookieName is the name of the session cookie.
const SessionCookieName = "session"

// userFromContext retrieves the authenticated user from request context.
func userFromContext(r *http.Request) *core.User {
	if user, ok := r.Context().Value(userContextKey).(*core.User); ok {
		return user
	}
	return nil
}

// requireAuth wraps handlers to require authentication.
// It also implements rolling sessions: a session past the halfway point of
// its lifetime is automatically renewed, so active users stay logged in
// while inactive sessions expire.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		info, err := s.repo.GetSession(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		now := time.Now()
		if info.ExpiresAt.Sub(now) < s.sessionTTL/2 {
			newExpiresAt := now.Add(s.sessionTTL)
			if err := s.repo.RenewSession(r.Context(), cookie.Value, newExpiresAt); err == nil {
				s.setSessionCookie(w, cookie.Value)
			}
			// If renewal fails, just continue with the current session
		}

		ctx := context.WithValue(r.Context(), userContextKey, info.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
