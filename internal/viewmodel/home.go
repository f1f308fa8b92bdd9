package viewmodel

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

const homePageSize = 10

// HomeViewModel drives the landing screen: categories, featured banners
// and the recent-listings feed with cursor pagination.
type HomeViewModel struct {
	services   repository.ServiceRepository
	categories repository.CategoryRepository
	featured   repository.FeaturedRepository

	serviceStore *store.ServiceStore
	ui           *store.UIStore
	nav          Navigator
	logger       *zap.Logger

	mu           sync.Mutex
	categoryList []*models.Category
	banners      []*models.FeaturedBanner
	cursor       string
	hasMore      bool
}

func NewHomeViewModel(
	services repository.ServiceRepository,
	categories repository.CategoryRepository,
	featured repository.FeaturedRepository,
	serviceStore *store.ServiceStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *HomeViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &HomeViewModel{
		services:     services,
		categories:   categories,
		featured:     featured,
		serviceStore: serviceStore,
		ui:           ui,
		nav:          nav,
		logger:       logger,
	}
}

// Load fetches categories, banners and the first page of active listings
// in parallel. A failure of one block does not abort the others; the
// screen renders what arrived.
func (vm *HomeViewModel) Load(ctx context.Context) error {
	var wg sync.WaitGroup
	var pageErr error

	wg.Add(3)
	go func() {
		defer wg.Done()
		cats, err := vm.categories.ListActive(ctx)
		if err != nil {
			vm.logger.Warn("category load failed", zap.Error(err))
			return
		}
		vm.mu.Lock()
		vm.categoryList = cats
		vm.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		banners, err := vm.featured.ActiveBanners(ctx)
		if err != nil {
			vm.logger.Warn("banner load failed", zap.Error(err))
			return
		}
		vm.mu.Lock()
		vm.banners = banners
		vm.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		page, err := vm.services.List(ctx, repository.ServiceFilters{
			Statuses: []models.ServiceStatus{models.ServiceActive},
		}, homePageSize, "")
		if err != nil {
			vm.logger.Error("listing feed load failed", zap.Error(err))
			pageErr = err
			return
		}
		vm.serviceStore.SetServices(page.Services)
		vm.mu.Lock()
		vm.cursor = page.LastID
		vm.hasMore = page.HasMore
		vm.mu.Unlock()
	}()
	wg.Wait()

	if pageErr != nil {
		vm.ui.Push(store.ToastError, "Impossible de charger les prestations")
	}
	return pageErr
}

// Refresh reloads everything from the top; the pagination cursor resets.
func (vm *HomeViewModel) Refresh(ctx context.Context) error {
	vm.ui.SetRefreshing(true)
	defer vm.ui.SetRefreshing(false)

	vm.mu.Lock()
	vm.cursor = ""
	vm.hasMore = false
	vm.mu.Unlock()
	return vm.Load(ctx)
}

// LoadMore fetches the next page of the feed and appends it. It is a
// no-op once the feed is exhausted.
func (vm *HomeViewModel) LoadMore(ctx context.Context) error {
	vm.mu.Lock()
	cursor, hasMore := vm.cursor, vm.hasMore
	vm.mu.Unlock()
	if !hasMore {
		return nil
	}

	page, err := vm.services.List(ctx, repository.ServiceFilters{
		Statuses: []models.ServiceStatus{models.ServiceActive},
	}, homePageSize, cursor)
	if err != nil {
		vm.logger.Error("listing feed page failed", zap.Error(err))
		vm.ui.Push(store.ToastError, "Impossible de charger la suite")
		return err
	}
	vm.serviceStore.AppendServices(page.Services)
	vm.mu.Lock()
	vm.cursor = page.LastID
	vm.hasMore = page.HasMore
	vm.mu.Unlock()
	return nil
}

// Categories returns the loaded category list.
func (vm *HomeViewModel) Categories() []*models.Category {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]*models.Category(nil), vm.categoryList...)
}

// Banners returns the loaded featured banners, priority order.
func (vm *HomeViewModel) Banners() []*models.FeaturedBanner {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]*models.FeaturedBanner(nil), vm.banners...)
}

// HasMore reports whether a further feed page may exist.
func (vm *HomeViewModel) HasMore() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.hasMore
}

// SelectCategory narrows the feed to one category and opens the search
// screen.
func (vm *HomeViewModel) SelectCategory(t models.ServiceType) {
	f := vm.serviceStore.Filters()
	f.Category = t
	vm.serviceStore.SetFilters(f)
	vm.nav.Push(RouteSearch, map[string]string{"category": string(t)})
}

// ToggleFavorite flips the favorite bit for a listing.
func (vm *HomeViewModel) ToggleFavorite(serviceID string) bool {
	return vm.serviceStore.ToggleFavorite(serviceID)
}

// OpenService navigates to a listing's detail screen.
func (vm *HomeViewModel) OpenService(serviceID string) {
	vm.nav.Push(RouteServiceDetail, map[string]string{"id": serviceID})
}

// OpenBanner follows a banner to its target.
func (vm *HomeViewModel) OpenBanner(b *models.FeaturedBanner) {
	switch b.Type {
	case models.BannerService:
		vm.nav.Push(RouteServiceDetail, map[string]string{"id": b.TargetID})
	case models.BannerProfile:
		vm.nav.Push(RouteProfile, map[string]string{"id": b.TargetID})
	case models.BannerExternal:
		vm.nav.Push(RouteHome, map[string]string{"externalUrl": b.ExternalURL})
	}
}

// FeedCount reports how many listings the feed currently holds.
func (vm *HomeViewModel) FeedCount() int {
	return len(vm.serviceStore.Services())
}
