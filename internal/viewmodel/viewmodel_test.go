package viewmodel

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// fakeAuth stands in for the Firebase Auth adapter. It hands out
// sequential UIDs and records every rollback so tests can assert on the
// compensation path.
type fakeAuth struct {
	mu        sync.Mutex
	nextUID   string
	createErr error
	created   []string
	deleted   []string
	resets    []string
}

func newFakeAuth(uid string) *fakeAuth {
	return &fakeAuth{nextUID: uid}
}

func (f *fakeAuth) CreateUser(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, f.nextUID)
	return f.nextUID, nil
}

func (f *fakeAuth) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeAuth) SendPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, email)
	return nil
}

// recordingNav captures navigation so tests can assert on routes without a
// presentation layer.
type navCall struct {
	route  string
	params map[string]string
}

type recordingNav struct {
	mu     sync.Mutex
	pushed []navCall
	backs  int
}

func (n *recordingNav) Push(route string, params map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushed = append(n.pushed, navCall{route: route, params: params})
}

func (n *recordingNav) Back() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.backs++
}

func (n *recordingNav) last() (navCall, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.pushed) == 0 {
		return navCall{}, false
	}
	return n.pushed[len(n.pushed)-1], true
}

// testEnv wires real repositories over the in-memory gateway to fresh
// stores, the way the composition root does in production.
type testEnv struct {
	gw    *gateway.MemoryGateway
	blobs *gateway.MemoryBlobStore

	users        repository.UserRepository
	services     repository.ServiceRepository
	applications repository.ApplicationRepository
	messages     repository.MessageRepository
	ratings      repository.RatingRepository
	categories   repository.CategoryRepository
	featured     repository.FeaturedRepository

	authStore    *store.AuthStore
	serviceStore *store.ServiceStore
	appStore     *store.ApplicationStore
	msgStore     *store.MessageStore
	ui           *store.UIStore

	auth *fakeAuth
	nav  *recordingNav
}

func newTestEnv() *testEnv {
	gw := gateway.NewMemoryGateway()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gw.SetClock(func() func() time.Time {
		now := start
		return func() time.Time {
			now = now.Add(time.Second)
			return now
		}
	}())
	blobs := gateway.NewMemoryBlobStore()
	logger := zap.NewNop()
	return &testEnv{
		gw:           gw,
		blobs:        blobs,
		users:        repository.NewUserRepository(gw, blobs, logger),
		services:     repository.NewServiceRepository(gw, blobs, logger),
		applications: repository.NewApplicationRepository(gw, blobs, logger),
		messages:     repository.NewMessageRepository(gw, blobs, logger),
		ratings:      repository.NewRatingRepository(gw, logger),
		categories:   repository.NewCategoryRepository(gw, logger),
		featured:     repository.NewFeaturedRepository(gw, blobs, logger),
		authStore:    store.NewAuthStore(),
		serviceStore: store.NewServiceStore(),
		appStore:     store.NewApplicationStore(),
		msgStore:     store.NewMessageStore(),
		ui:           store.NewUIStore(),
		auth:         newFakeAuth("uid-1"),
		nav:          &recordingNav{},
	}
}

func (e *testEnv) authVM() *AuthViewModel {
	return NewAuthViewModel(e.auth, e.users, e.authStore, e.serviceStore, e.appStore, e.msgStore, e.ui, e.nav, zap.NewNop())
}

func (e *testEnv) homeVM() *HomeViewModel {
	return NewHomeViewModel(e.services, e.categories, e.featured, e.serviceStore, e.ui, e.nav, zap.NewNop())
}

func (e *testEnv) serviceDetailVM() *ServiceDetailViewModel {
	return NewServiceDetailViewModel(e.services, e.users, e.applications, e.ratings, e.authStore, e.serviceStore, e.appStore, e.ui, e.nav, zap.NewNop())
}

func (e *testEnv) applicationDetailVM() *ApplicationDetailViewModel {
	return NewApplicationDetailViewModel(e.applications, e.services, e.users, e.messages, e.authStore, e.appStore, e.ui, e.nav, zap.NewNop())
}

func (e *testEnv) messagingVM() *MessagingViewModel {
	return NewMessagingViewModel(e.applications, e.messages, e.services, e.users, e.authStore, e.msgStore, e.ui, e.nav, zap.NewNop())
}

func (e *testEnv) profileVM() *ProfileViewModel {
	return NewProfileViewModel(e.users, e.ratings, e.authStore, e.ui, e.nav, zap.NewNop())
}

func (e *testEnv) searchVM() *SearchViewModel {
	return NewSearchViewModel(e.services, e.authStore, e.serviceStore, e.ui, e.nav, zap.NewNop())
}

func (e *testEnv) createVM() *ServiceCreateViewModel {
	return NewServiceCreateViewModel(e.services, e.authStore, e.ui, e.nav, zap.NewNop())
}

// signIn writes the profile document and seeds both halves of the auth
// state, as if login just completed.
func (e *testEnv) signIn(ctx context.Context, user *models.User) {
	if err := e.users.Create(ctx, user); err != nil {
		panic(err)
	}
	e.authStore.SetSession(&store.Session{UID: user.ID, Email: user.Email})
	e.authStore.SetUser(user)
}

func session(uid string) *store.Session {
	return &store.Session{UID: uid, Email: uid + "@example.com"}
}

func (e *testEnv) toastMessages() []string {
	var msgs []string
	for _, t := range e.ui.Active() {
		msgs = append(msgs, t.Message)
	}
	return msgs
}

func testModel(id string) *models.User {
	return &models.User{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "Model " + id,
		Role:     models.RoleModel,
		Model: &models.ModelProfile{
			Age:    24,
			Gender: models.GenderFemale,
		},
	}
}

func testProfessional(id string) *models.User {
	return &models.User{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "Pro " + id,
		Role:     models.RoleProfessional,
		Professional: &models.ProfessionalProfile{
			BusinessName: "Studio " + id,
			Status:       models.StatusFreelance,
		},
	}
}

// upcomingService builds an active listing whose date is still ahead, so
// the apply button logic sees it as live.
func upcomingService(professionalID string) *models.Service {
	return &models.Service{
		ProfessionalID: professionalID,
		Title:          "Coupe et brushing",
		Description:    "Recherche modele pour coupe",
		Types:          []models.ServiceType{models.TypeHair},
		Status:         models.ServiceActive,
		Date:           models.ServiceDate{StartDate: time.Now().Add(30 * 24 * time.Hour)},
		Location:       models.ServiceLocation{City: "Paris"},
		Payment:        models.ServicePayment{Type: models.PaymentFree},
	}
}
