package store

import (
	"sync"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

// ApplicationStore caches the signed-in user's candidacies, the active
// status filter and the one currently open in detail view.
type ApplicationStore struct {
	mu           sync.Mutex
	applications []*models.Application
	statusFilter map[models.ApplicationStatus]bool
	selectedID   string
}

func NewApplicationStore() *ApplicationStore {
	return &ApplicationStore{statusFilter: make(map[models.ApplicationStatus]bool)}
}

// SetApplications replaces the cached set.
func (s *ApplicationStore) SetApplications(apps []*models.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = append([]*models.Application(nil), apps...)
}

// Upsert replaces one cached candidacy in place, or prepends it. Used for
// optimistic status updates and subscription pushes alike.
func (s *ApplicationStore) Upsert(app *models.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.applications {
		if a.ID == app.ID {
			s.applications[i] = app
			return
		}
	}
	s.applications = append([]*models.Application{app}, s.applications...)
}

// Get returns the cached candidacy, or nil.
func (s *ApplicationStore) Get(applicationID string) *models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.applications {
		if a.ID == applicationID {
			return a
		}
	}
	return nil
}

// Applications returns the cached set, narrowed to the status filter when
// one is active.
func (s *ApplicationStore) Applications() []*models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statusFilter) == 0 {
		return append([]*models.Application(nil), s.applications...)
	}
	out := make([]*models.Application, 0, len(s.applications))
	for _, a := range s.applications {
		if s.statusFilter[a.Status] {
			out = append(out, a)
		}
	}
	return out
}

// SetStatusFilter replaces the status filter; an empty set means all.
func (s *ApplicationStore) SetStatusFilter(statuses ...models.ApplicationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusFilter = make(map[models.ApplicationStatus]bool, len(statuses))
	for _, st := range statuses {
		s.statusFilter[st] = true
	}
}

// CountByStatus tallies the cached set per status, filter ignored.
func (s *ApplicationStore) CountByStatus() map[models.ApplicationStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.ApplicationStatus]int)
	for _, a := range s.applications {
		counts[a.Status]++
	}
	return counts
}

func (s *ApplicationStore) Select(applicationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = applicationID
}

// Selected returns the candidacy open in detail view, or nil.
func (s *ApplicationStore) Selected() *models.Application {
	s.mu.Lock()
	id := s.selectedID
	s.mu.Unlock()
	if id == "" {
		return nil
	}
	return s.Get(id)
}

// Clear wipes the container on logout.
func (s *ApplicationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = nil
	s.statusFilter = make(map[models.ApplicationStatus]bool)
	s.selectedID = ""
}
