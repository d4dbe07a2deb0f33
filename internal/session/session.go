package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the session cookie the HTTP layer reads and writes.
const CookieName = "pdf_session"

// User is the identity attached to an active session.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type entry struct {
	user    User
	expires time.Time
}

// Store holds active sessions in memory. Credentials are checked against a
// single configured account; this is an internal tool, not an identity
// system.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	user     User
	password string
}

func NewStore(user User, password string, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]entry),
		ttl:      ttl,
		user:     user,
		password: password,
	}
}

// Login validates credentials and creates a session, returning its token.
func (s *Store) Login(username, password string) (string, User, bool) {
	if username != s.user.Username || password != s.password {
		return "", User{}, false
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.sessions[token] = entry{user: s.user, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token, s.user, true
}

// Get returns the user for a token, if the session exists and has not
// expired.
func (s *Store) Get(token string) (User, bool) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return User{}, false
	}
	if time.Now().After(e.expires) {
		s.Destroy(token)
		return User{}, false
	}
	return e.user, true
}

// Destroy removes a session. Unknown tokens are ignored.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
