package viewmodel

import (
	"context"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// SearchViewModel drives the search screen. The backend query narrows by
// status and category; everything else is applied client-side over the
// cached set, so typing refines results without a round trip. Callers are
// expected to debounce SetQuery themselves.
type SearchViewModel struct {
	services repository.ServiceRepository

	authStore    *store.AuthStore
	serviceStore *store.ServiceStore
	ui           *store.UIStore
	nav          Navigator
	logger       *zap.Logger
}

func NewSearchViewModel(
	services repository.ServiceRepository,
	authStore *store.AuthStore,
	serviceStore *store.ServiceStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *SearchViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &SearchViewModel{
		services:     services,
		authStore:    authStore,
		serviceStore: serviceStore,
		ui:           ui,
		nav:          nav,
		logger:       logger,
	}
}

// Load fetches the active listings the current category filter allows and
// caches them for client-side refinement.
func (vm *SearchViewModel) Load(ctx context.Context) error {
	f := vm.serviceStore.Filters()
	page, err := vm.services.List(ctx, repository.ServiceFilters{
		Statuses: []models.ServiceStatus{models.ServiceActive},
		Type:     f.Category,
		City:     f.City,
	}, 50, "")
	if err != nil {
		vm.logger.Error("search load failed", zap.Error(err))
		vm.ui.Push(store.ToastError, "Recherche indisponible")
		return err
	}
	vm.serviceStore.SetServices(page.Services)
	return nil
}

// SetQuery updates the free-text filter.
func (vm *SearchViewModel) SetQuery(q string) {
	f := vm.serviceStore.Filters()
	f.Query = q
	vm.serviceStore.SetFilters(f)
}

// SetFilters replaces the whole filter set.
func (vm *SearchViewModel) SetFilters(f store.ServiceFilters) {
	vm.serviceStore.SetFilters(f)
}

// ResetFilters clears every filter.
func (vm *SearchViewModel) ResetFilters() {
	vm.serviceStore.ResetFilters()
}

// Results applies the active filters, using the signed-in user's
// coordinates for the radius filter when available.
func (vm *SearchViewModel) Results() []*models.Service {
	var origin *models.Coordinates
	if u := vm.authStore.User(); u != nil {
		origin = u.Location.Coordinates
	}
	return vm.serviceStore.FilteredServices(origin)
}

// OpenService navigates to a result's detail screen.
func (vm *SearchViewModel) OpenService(serviceID string) {
	vm.nav.Push(RouteServiceDetail, map[string]string{"id": serviceID})
}
