package viewmodel

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// ApplicationDetailViewModel drives one candidacy's detail screen. The
// owning professional decides on it, the model can cancel it, and either
// side can open the conversation once it is accepted.
type ApplicationDetailViewModel struct {
	applications repository.ApplicationRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
	messages     repository.MessageRepository

	authStore *store.AuthStore
	appStore  *store.ApplicationStore
	ui        *store.UIStore
	nav       Navigator
	logger    *zap.Logger

	mu          sync.Mutex
	application *models.Application
	service     *models.Service
	model       *models.User
	unsubs      []gateway.Unsubscribe
}

func NewApplicationDetailViewModel(
	applications repository.ApplicationRepository,
	services repository.ServiceRepository,
	users repository.UserRepository,
	messages repository.MessageRepository,
	authStore *store.AuthStore,
	appStore *store.ApplicationStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *ApplicationDetailViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &ApplicationDetailViewModel{
		applications: applications,
		services:     services,
		users:        users,
		messages:     messages,
		authStore:    authStore,
		appStore:     appStore,
		ui:           ui,
		nav:          nav,
		logger:       logger,
	}
}

// Load fetches the candidacy and verifies the viewer is one of its two
// parties, then pulls the listing and the applicant's profile alongside.
func (vm *ApplicationDetailViewModel) Load(ctx context.Context, applicationID string) error {
	app, err := vm.applications.GetByID(ctx, applicationID)
	if err != nil {
		vm.logger.Error("application load failed", zap.String("applicationId", applicationID), zap.Error(err))
		vm.ui.Push(store.ToastError, "Candidature introuvable")
		return err
	}
	viewer := vm.authStore.UID()
	if !app.Participant(viewer) {
		return ErrPermissionDenied
	}
	vm.mu.Lock()
	vm.application = app
	vm.mu.Unlock()
	vm.appStore.Upsert(app)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s, err := vm.services.GetByID(ctx, app.ServiceID)
		if err != nil {
			vm.logger.Warn("candidacy listing fetch failed", zap.String("serviceId", app.ServiceID), zap.Error(err))
			return
		}
		vm.mu.Lock()
		vm.service = s
		vm.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		m, err := vm.users.GetByID(ctx, app.ModelID)
		if err != nil {
			vm.logger.Warn("applicant profile fetch failed", zap.String("modelId", app.ModelID), zap.Error(err))
			return
		}
		vm.mu.Lock()
		vm.model = m
		vm.mu.Unlock()
	}()
	wg.Wait()
	return nil
}

// Watch keeps the candidacy current while the screen is open.
func (vm *ApplicationDetailViewModel) Watch(ctx context.Context, applicationID string) error {
	unsub, err := vm.applications.Subscribe(ctx, applicationID, func(app *models.Application) {
		if app == nil {
			return
		}
		vm.mu.Lock()
		vm.application = app
		vm.mu.Unlock()
		vm.appStore.Upsert(app)
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
func (vm *ApplicationDetailViewModel) Close() {
	vm.mu.Lock()
	unsubs := vm.unsubs
	vm.unsubs = nil
	vm.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// Application returns the loaded candidacy.
func (vm *ApplicationDetailViewModel) Application() *models.Application {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.application
}

// Service returns the candidacy's listing.
func (vm *ApplicationDetailViewModel) Service() *models.Service {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.service
}

// Model returns the applicant's profile.
func (vm *ApplicationDetailViewModel) Model() *models.User {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.model
}

// CanDecide reports whether accept/reject controls show: the owning
// professional, on a pending candidacy.
func (vm *ApplicationDetailViewModel) CanDecide() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.application != nil &&
		vm.application.ProfessionalID == vm.authStore.UID() &&
		vm.application.Status == models.ApplicationPending
}

// CanCancel reports whether the cancel control shows: the applying model,
// while the candidacy is pending or accepted.
func (vm *ApplicationDetailViewModel) CanCancel() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.application != nil &&
		vm.application.ModelID == vm.authStore.UID() &&
		!vm.application.Status.Terminal()
}

// Accept moves the candidacy to accepted and posts the acceptance notice
// into the thread.
func (vm *ApplicationDetailViewModel) Accept(ctx context.Context) error {
	return vm.decide(ctx, models.ApplicationAccepted, "", "Votre candidature a ete acceptee")
}

// Reject moves the candidacy to rejected with an optional reason, and
// posts the notice into the thread.
func (vm *ApplicationDetailViewModel) Reject(ctx context.Context, reason string) error {
	return vm.decide(ctx, models.ApplicationRejected, reason, "Votre candidature n'a pas ete retenue")
}

func (vm *ApplicationDetailViewModel) decide(ctx context.Context, next models.ApplicationStatus, reason, notice string) error {
	if !vm.CanDecide() {
		return ErrPermissionDenied
	}
	vm.mu.Lock()
	app := vm.application
	vm.mu.Unlock()

	if err := vm.applications.UpdateStatus(ctx, app.ID, next, reason); err != nil {
		if errors.Is(err, repository.ErrIllegalTransition) {
			vm.ui.Push(store.ToastError, "Decision impossible dans cet etat")
		} else {
			vm.logger.Error("candidacy decision failed", zap.String("applicationId", app.ID), zap.Error(err))
		}
		return err
	}

	// The decision notice lands in the thread addressed to the model.
	if _, err := vm.messages.SendSystem(ctx, app.ID, app.ModelID, notice); err != nil {
		vm.logger.Warn("decision notice failed", zap.String("applicationId", app.ID), zap.Error(err))
	}

	vm.applyLocal(next, reason)
	return nil
}

// Cancel withdraws the candidacy; model only.
func (vm *ApplicationDetailViewModel) Cancel(ctx context.Context) error {
	if !vm.CanCancel() {
		return ErrPermissionDenied
	}
	vm.mu.Lock()
	app := vm.application
	vm.mu.Unlock()

	if err := vm.applications.UpdateStatus(ctx, app.ID, models.ApplicationCancelled, ""); err != nil {
		vm.logger.Error("candidacy cancel failed", zap.String("applicationId", app.ID), zap.Error(err))
		return err
	}
	vm.applyLocal(models.ApplicationCancelled, "")
	vm.ui.Push(store.ToastInfo, "Candidature annulee")
	return nil
}

// Complete closes out an accepted candidacy; the owning professional only.
func (vm *ApplicationDetailViewModel) Complete(ctx context.Context) error {
	vm.mu.Lock()
	app := vm.application
	vm.mu.Unlock()
	if app == nil || app.ProfessionalID != vm.authStore.UID() {
		return ErrPermissionDenied
	}

	if err := vm.applications.UpdateStatus(ctx, app.ID, models.ApplicationCompleted, ""); err != nil {
		if errors.Is(err, repository.ErrIllegalTransition) {
			vm.ui.Push(store.ToastError, "Cloture impossible dans cet etat")
		}
		return err
	}
	vm.applyLocal(models.ApplicationCompleted, "")
	vm.ui.Push(store.ToastSuccess, "Prestation terminee")
	return nil
}

// applyLocal mirrors a confirmed transition into the local copy and the
// store, so the screen updates without waiting for the listener.
func (vm *ApplicationDetailViewModel) applyLocal(next models.ApplicationStatus, reason string) {
	vm.mu.Lock()
	if vm.application != nil {
		vm.application.Status = next
		if reason != "" {
			vm.application.RejectionReason = reason
		}
	}
	app := vm.application
	vm.mu.Unlock()
	if app != nil {
		vm.appStore.Upsert(app)
	}
}

// OpenConversation navigates to the candidacy's message thread.
func (vm *ApplicationDetailViewModel) OpenConversation() {
	vm.mu.Lock()
	app := vm.application
	vm.mu.Unlock()
	if app == nil {
		return
	}
	vm.nav.Push(RouteConversation, map[string]string{"id": app.ID})
}
