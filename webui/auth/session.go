package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session_id"

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore keeps active sessions in memory. Sessions do not survive a
// restart; users simply log in again.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time // session ID -> expiry
	ttl      time.Duration
}

// NewSessionStore creates a store with the given TTL (0 uses the default).
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]time.Time),
		ttl:      ttl,
	}
}

// Create registers a new session and returns its ID.
func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = time.Now().Add(s.ttl)
	s.mu.Unlock()
	return id
}

// Valid reports whether the session exists and has not expired.
// Expired sessions are removed on sight.
func (s *SessionStore) Valid(id string) bool {
	if id == "" {
		return false
	}
	s.mu.RLock()
	expiry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		s.Delete(id)
		return false
	}
	return true
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Count returns the number of stored sessions, expired included.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// sessionCookie builds the session cookie with its security attributes.
func sessionCookie(id string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
