package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToastLevel is the visual severity of a toast.
type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
	ToastInfo    ToastLevel = "info"
)

const toastTTL = 4 * time.Second

// Toast is one transient notification.
type Toast struct {
	ID        string
	Level     ToastLevel
	Message   string
	CreatedAt time.Time
}

// UIStore holds cross-screen transient state: toasts and the global
// pull-to-refresh flag.
type UIStore struct {
	mu         sync.Mutex
	toasts     []Toast
	refreshing bool
	now        func() time.Time
}

func NewUIStore() *UIStore {
	return &UIStore{now: time.Now}
}

// SetClock replaces the timestamp source, for tests.
func (s *UIStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Push queues a toast and returns its ID.
func (s *UIStore) Push(level ToastLevel, message string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.toasts = append(s.toasts, t)
	return t.ID
}

// Dismiss removes a toast before its expiry.
func (s *UIStore) Dismiss(toastID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.toasts {
		if t.ID == toastID {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// Active returns the toasts still inside their display window and prunes
// the expired ones.
func (s *UIStore) Active() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-toastTTL)
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if t.CreatedAt.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.toasts = kept
	return append([]Toast(nil), s.toasts...)
}

func (s *UIStore) SetRefreshing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshing = v
}

func (s *UIStore) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing
}
