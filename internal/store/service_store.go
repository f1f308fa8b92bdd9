package store

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

// ServiceFilters are the client-side filters the search screen applies on
// top of whatever the backend query already narrowed. Zero values are off.
type ServiceFilters struct {
	Category   models.ServiceType
	Query      string
	City       string
	PriceMin   float64
	PriceMax   float64
	DateFrom   *time.Time
	DateTo     *time.Time
	OnlyUrgent bool
	RadiusKM   int
}

// ServiceStore caches recent listings, the user's favorites and the active
// search filters.
type ServiceStore struct {
	mu        sync.Mutex
	services  []*models.Service
	favorites map[string]bool
	filters   ServiceFilters
}

func NewServiceStore() *ServiceStore {
	return &ServiceStore{favorites: make(map[string]bool)}
}

// SetServices replaces the cached listing set.
func (s *ServiceStore) SetServices(services []*models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = append([]*models.Service(nil), services...)
}

// AppendServices adds a further page, skipping IDs already cached.
func (s *ServiceStore) AppendServices(services []*models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.services))
	for _, sv := range s.services {
		seen[sv.ID] = true
	}
	for _, sv := range services {
		if !seen[sv.ID] {
			s.services = append(s.services, sv)
			seen[sv.ID] = true
		}
	}
}

// Upsert replaces the cached copy of one listing, or prepends it when new.
func (s *ServiceStore) Upsert(service *models.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sv := range s.services {
		if sv.ID == service.ID {
			s.services[i] = service
			return
		}
	}
	s.services = append([]*models.Service{service}, s.services...)
}

// Remove drops one listing from the cache.
func (s *ServiceStore) Remove(serviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sv := range s.services {
		if sv.ID == serviceID {
			s.services = append(s.services[:i], s.services[i+1:]...)
			return
		}
	}
}

// Get returns the cached listing, or nil.
func (s *ServiceStore) Get(serviceID string) *models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sv := range s.services {
		if sv.ID == serviceID {
			return sv
		}
	}
	return nil
}

// Services returns a copy of the cached listing set.
func (s *ServiceStore) Services() []*models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Service(nil), s.services...)
}

// ToggleFavorite flips the favorite bit and returns the new state. The
// flip happens under the lock, so two rapid invocations land back on the
// starting state instead of racing.
func (s *ServiceStore) ToggleFavorite(serviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.favorites[serviceID] {
		delete(s.favorites, serviceID)
		return false
	}
	s.favorites[serviceID] = true
	return true
}

func (s *ServiceStore) IsFavorite(serviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites[serviceID]
}

// FavoriteIDs returns the favorite listing IDs in no particular order.
func (s *ServiceStore) FavoriteIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		out = append(out, id)
	}
	return out
}

func (s *ServiceStore) SetFilters(f ServiceFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

func (s *ServiceStore) Filters() ServiceFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// ResetFilters clears every active filter.
func (s *ServiceStore) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = ServiceFilters{}
}

// FilteredServices applies the active filters to the cached set, sorted
// newest first. origin is the viewer's position; it is only consulted when
// a radius filter is active, and listings without coordinates pass a
// radius filter unhindered.
func (s *ServiceStore) FilteredServices(origin *models.Coordinates) []*models.Service {
	s.mu.Lock()
	f := s.filters
	services := append([]*models.Service(nil), s.services...)
	s.mu.Unlock()

	out := make([]*models.Service, 0, len(services))
	for _, sv := range services {
		if matchesFilters(sv, f, origin) {
			out = append(out, sv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesFilters(sv *models.Service, f ServiceFilters, origin *models.Coordinates) bool {
	if f.Category != "" && !sv.HasType(f.Category) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(sv.Title), q) &&
			!strings.Contains(strings.ToLower(sv.Description), q) {
			return false
		}
	}
	if f.City != "" && !strings.EqualFold(sv.Location.City, f.City) {
		return false
	}
	if f.PriceMin > 0 && sv.Payment.Amount < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && sv.Payment.Amount > f.PriceMax {
		return false
	}
	if f.DateFrom != nil && sv.Date.StartDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && sv.Date.StartDate.After(*f.DateTo) {
		return false
	}
	if f.OnlyUrgent && !sv.IsUrgent {
		return false
	}
	if f.RadiusKM > 0 && origin != nil && sv.Location.Coordinates != nil {
		d := haversineKM(origin.Latitude, origin.Longitude,
			sv.Location.Coordinates.Latitude, sv.Location.Coordinates.Longitude)
		if d > float64(f.RadiusKM) {
			return false
		}
	}
	return true
}

const earthRadiusKM = 6371.0

// haversineKM is the great-circle distance between two points in km.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
