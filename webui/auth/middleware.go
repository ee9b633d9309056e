package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Middleware guards routes behind a shared password. When no password is
// configured the middleware is a pass-through, so a local single-user
// deployment needs no login at all.
type Middleware struct {
	passwordHash string
	sessions     *SessionStore
	logger       *zap.Logger
}

// NewMiddleware creates the auth middleware. password may be "" to disable
// authentication entirely.
func NewMiddleware(password string, logger *zap.Logger) (*Middleware, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Middleware{
		sessions: NewSessionStore(DefaultSessionTTL),
		logger:   logger,
	}
	if password != "" {
		hash, err := HashPassword(password)
		if err != nil {
			return nil, err
		}
		m.passwordHash = hash
	}
	return m, nil
}

// Enabled reports whether a password is configured.
func (m *Middleware) Enabled() bool {
	return m.passwordHash != ""
}

// Protect wraps a handler with the session check.
func (m *Middleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || !m.sessions.Valid(cookie.Value) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginHandler verifies the posted password and issues a session cookie.
func (m *Middleware) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := VerifyPassword(m.passwordHash, body.Password); err != nil {
			m.logger.Warn("login rejected", zap.String("remote", r.RemoteAddr))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid password"})
			return
		}

		id := m.sessions.Create()
		http.SetCookie(w, sessionCookie(id, int(DefaultSessionTTL.Seconds())))
		m.logger.Info("login accepted", zap.String("remote", r.RemoteAddr))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}

// LogoutHandler invalidates the current session.
func (m *Middleware) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			m.sessions.Delete(cookie.Value)
		}
		http.SetCookie(w, sessionCookie("", -1))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}
