// Package store holds the in-process view state. Containers are built by
// the composition root and injected where needed; there is no package-level
// singleton. All containers are safe for concurrent use and resolve
// concurrent writes last-writer-wins.
package store

import (
	"sync"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

// Session is the credential half of the signed-in state, known as soon as
// the auth backend confirms the credentials.
type Session struct {
	UID   string
	Email string
	Token string
}

// AuthStore tracks the signed-in identity in two phases: the session
// arrives first, the profile document follows once fetched. Loading is
// true in between.
type AuthStore struct {
	mu      sync.Mutex
	session *Session
	user    *models.User
}

func NewAuthStore() *AuthStore {
	return &AuthStore{}
}

// SetSession records the credential half and drops any profile belonging
// to a previous identity.
func (s *AuthStore) SetSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.session = nil
		s.user = nil
		return
	}
	if s.session != nil && s.session.UID != session.UID {
		s.user = nil
	}
	s.session = session
}

// SetUser records the profile half. A profile for another UID than the
// current session is ignored; it belongs to a login that was superseded.
func (s *AuthStore) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user != nil && s.session != nil && user.ID != s.session.UID {
		return
	}
	s.user = user
}

func (s *AuthStore) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *AuthStore) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// UID returns the signed-in UID, or "" when signed out.
func (s *AuthStore) UID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.UID
}

// Authenticated reports whether a session exists, profile or not.
func (s *AuthStore) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Loading reports the window between credential confirmation and profile
// arrival.
func (s *AuthStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.user == nil
}

// Clear wipes both halves on logout.
func (s *AuthStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.user = nil
}
