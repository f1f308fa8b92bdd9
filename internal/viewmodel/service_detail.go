package viewmodel

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// ServiceDetailViewModel drives one listing's detail screen for both
// roles: the owning professional sees applicants and status controls, a
// model sees the apply button when eligible.
type ServiceDetailViewModel struct {
	services     repository.ServiceRepository
	users        repository.UserRepository
	applications repository.ApplicationRepository
	ratings      repository.RatingRepository

	authStore    *store.AuthStore
	serviceStore *store.ServiceStore
	appStore     *store.ApplicationStore
	ui           *store.UIStore
	nav          Navigator
	logger       *zap.Logger

	mu             sync.Mutex
	service        *models.Service
	professional   *models.User
	applicants     []*models.Application
	serviceRatings []*models.Rating
	ownApplication *models.Application
	unsubs         []gateway.Unsubscribe
}

func NewServiceDetailViewModel(
	services repository.ServiceRepository,
	users repository.UserRepository,
	applications repository.ApplicationRepository,
	ratings repository.RatingRepository,
	authStore *store.AuthStore,
	serviceStore *store.ServiceStore,
	appStore *store.ApplicationStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *ServiceDetailViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &ServiceDetailViewModel{
		services:     services,
		users:        users,
		applications: applications,
		ratings:      ratings,
		authStore:    authStore,
		serviceStore: serviceStore,
		appStore:     appStore,
		ui:           ui,
		nav:          nav,
		logger:       logger,
	}
}

// Load fetches the listing and, in parallel, its owner, its ratings, the
// viewer's own candidacy, and the applicant list when the viewer owns it.
func (vm *ServiceDetailViewModel) Load(ctx context.Context, serviceID string) error {
	service, err := vm.services.GetByID(ctx, serviceID)
	if err != nil {
		vm.logger.Error("service detail load failed", zap.String("serviceId", serviceID), zap.Error(err))
		vm.ui.Push(store.ToastError, "Prestation introuvable")
		return err
	}
	vm.mu.Lock()
	vm.service = service
	vm.mu.Unlock()
	vm.serviceStore.Upsert(service)

	viewer := vm.authStore.UID()
	isOwner := viewer != "" && viewer == service.ProfessionalID

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		owner, err := vm.users.GetByID(ctx, service.ProfessionalID)
		if err != nil {
			vm.logger.Warn("listing owner fetch failed", zap.String("serviceId", serviceID), zap.Error(err))
			return
		}
		vm.mu.Lock()
		vm.professional = owner
		vm.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		rs, err := vm.ratings.ForService(ctx, serviceID)
		if err != nil {
			vm.logger.Warn("service ratings fetch failed", zap.String("serviceId", serviceID), zap.Error(err))
			return
		}
		vm.mu.Lock()
		vm.serviceRatings = rs
		vm.mu.Unlock()
	}()
	if isOwner {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := vm.applications.ForService(ctx, serviceID, 50, "")
			if err != nil {
				vm.logger.Warn("applicant list fetch failed", zap.String("serviceId", serviceID), zap.Error(err))
				return
			}
			vm.mu.Lock()
			vm.applicants = page.Applications
			vm.mu.Unlock()
		}()
	} else if viewer != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := vm.applications.ForModel(ctx, viewer, nil, 50, "")
			if err != nil {
				vm.logger.Warn("own candidacy fetch failed", zap.String("serviceId", serviceID), zap.Error(err))
				return
			}
			vm.mu.Lock()
			for _, a := range page.Applications {
				if a.ServiceID == serviceID && a.Status != models.ApplicationCancelled {
					vm.ownApplication = a
					break
				}
			}
			vm.mu.Unlock()
		}()
	}
	wg.Wait()
	return nil
}

// Watch keeps the screen current while it is open. Close releases the
// listener.
func (vm *ServiceDetailViewModel) Watch(ctx context.Context, serviceID string) error {
	unsub, err := vm.services.Subscribe(ctx, serviceID, func(s *models.Service) {
		if s == nil {
			return
		}
		vm.mu.Lock()
		vm.service = s
		vm.mu.Unlock()
		vm.serviceStore.Upsert(s)
	})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.unsubs = append(vm.unsubs, unsub)
	vm.mu.Unlock()
	return nil
}

// Close releases every live listener the screen holds.
func (vm *ServiceDetailViewModel) Close() {
	vm.mu.Lock()
	unsubs := vm.unsubs
	vm.unsubs = nil
	vm.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// Service returns the loaded listing.
func (vm *ServiceDetailViewModel) Service() *models.Service {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.service
}

// Professional returns the listing owner's profile.
func (vm *ServiceDetailViewModel) Professional() *models.User {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.professional
}

// Applicants returns the applicant list; empty unless the viewer owns the
// listing.
func (vm *ServiceDetailViewModel) Applicants() []*models.Application {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]*models.Application(nil), vm.applicants...)
}

// Ratings returns the listing's evaluations.
func (vm *ServiceDetailViewModel) Ratings() []*models.Rating {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]*models.Rating(nil), vm.serviceRatings...)
}

// OwnApplication returns the viewer's live candidacy for this listing.
func (vm *ServiceDetailViewModel) OwnApplication() *models.Application {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.ownApplication
}

// IsOwner reports whether the viewer owns the listing.
func (vm *ServiceDetailViewModel) IsOwner() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.service != nil && vm.service.ProfessionalID == vm.authStore.UID()
}

// HasApplied reports whether the viewer holds a live candidacy.
func (vm *ServiceDetailViewModel) HasApplied() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.ownApplication != nil
}

// CanApply reports whether the apply button shows: signed-in model, not
// the owner, listing active and not lapsed, no live candidacy yet.
func (vm *ServiceDetailViewModel) CanApply() bool {
	user := vm.authStore.User()
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if user == nil || vm.service == nil {
		return false
	}
	return user.Role == models.RoleModel &&
		user.ID != vm.service.ProfessionalID &&
		vm.service.Status == models.ServiceActive &&
		!vm.service.IsExpired(time.Now()) &&
		vm.ownApplication == nil
}

// CanEdit reports whether edit controls show.
func (vm *ServiceDetailViewModel) CanEdit() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.service == nil || vm.service.ProfessionalID != vm.authStore.UID() {
		return false
	}
	return vm.service.Status == models.ServiceDraft || vm.service.Status == models.ServiceActive
}

// CanDelete reports whether the delete control shows.
func (vm *ServiceDetailViewModel) CanDelete() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.service != nil && vm.service.ProfessionalID == vm.authStore.UID()
}

// Apply submits the viewer's candidacy with an optional message and
// photos. The one-live-candidacy rule is enforced repository-side; a
// duplicate surfaces as a toast, not a crash.
func (vm *ServiceDetailViewModel) Apply(ctx context.Context, message string, photos []repository.Upload) error {
	if !vm.CanApply() {
		return ErrPermissionDenied
	}
	vm.mu.Lock()
	service := vm.service
	vm.mu.Unlock()

	app := &models.Application{
		ServiceID:      service.ID,
		ModelID:        vm.authStore.UID(),
		ProfessionalID: service.ProfessionalID,
		Message:        message,
	}
	id, err := vm.applications.Create(ctx, app)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			vm.ui.Push(store.ToastError, "Vous avez deja postule a cette prestation")
		} else {
			vm.logger.Error("apply failed", zap.String("serviceId", service.ID), zap.Error(err))
			vm.ui.Push(store.ToastError, "Candidature impossible")
		}
		return err
	}
	app.ID = id

	if len(photos) > 0 {
		urls, err := vm.applications.UploadPhotos(ctx, id, photos)
		if err != nil {
			vm.logger.Warn("candidacy photo upload failed", zap.String("applicationId", id), zap.Error(err))
		} else {
			app.Photos = urls
		}
	}

	vm.mu.Lock()
	vm.ownApplication = app
	if vm.service != nil {
		vm.service.ApplicationCount++
	}
	vm.mu.Unlock()
	vm.appStore.Upsert(app)
	vm.ui.Push(store.ToastSuccess, "Candidature envoyee")
	return nil
}

// UpdateStatus moves the listing along its lifecycle; owner only, legal
// transitions only.
func (vm *ServiceDetailViewModel) UpdateStatus(ctx context.Context, next models.ServiceStatus) error {
	if !vm.CanDelete() {
		return ErrPermissionDenied
	}
	vm.mu.Lock()
	serviceID := vm.service.ID
	vm.mu.Unlock()

	if err := vm.services.UpdateStatus(ctx, serviceID, next); err != nil {
		if errors.Is(err, repository.ErrIllegalTransition) {
			vm.ui.Push(store.ToastError, "Changement de statut impossible")
		}
		return err
	}
	vm.mu.Lock()
	if vm.service != nil {
		vm.service.Status = next
	}
	service := vm.service
	vm.mu.Unlock()
	if service != nil {
		vm.serviceStore.Upsert(service)
	}
	return nil
}

// Delete removes the listing and its images, then leaves the screen.
func (vm *ServiceDetailViewModel) Delete(ctx context.Context) error {
	if !vm.CanDelete() {
		return ErrPermissionDenied
	}
	vm.mu.Lock()
	serviceID := vm.service.ID
	vm.mu.Unlock()

	if err := vm.services.Delete(ctx, serviceID); err != nil {
		vm.ui.Push(store.ToastError, "Suppression impossible")
		return err
	}
	vm.serviceStore.Remove(serviceID)
	vm.ui.Push(store.ToastSuccess, "Prestation supprimee")
	vm.nav.Back()
	return nil
}

// OpenApplication navigates to one applicant's candidacy.
func (vm *ServiceDetailViewModel) OpenApplication(applicationID string) {
	vm.appStore.Select(applicationID)
	vm.nav.Push(RouteApplicationDetail, map[string]string{"id": applicationID})
}
