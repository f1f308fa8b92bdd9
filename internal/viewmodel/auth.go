package viewmodel

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

// Authenticator is the credential backend. The Firebase Auth adapter
// implements it in production; tests plug a fake.
type Authenticator interface {
	CreateUser(ctx context.Context, email, password string) (uid string, err error)
	DeleteUser(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, email string) error
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email       string          `validate:"required,email"`
	Password    string          `validate:"required,min=8"`
	FullName    string          `validate:"required,min=2"`
	PhoneNumber string          `validate:"omitempty,e164"`
	Role        models.UserRole `validate:"required"`
	// Model-role fields, required through Validate when Role is model.
	Age      int             `validate:"omitempty,gte=16,lte=100"`
	Gender   models.Gender   `validate:"omitempty"`
	HeightCM int             `validate:"omitempty,gte=100,lte=250"`
	// Professional-role fields.
	BusinessName string `validate:"omitempty,min=2"`
}

// AuthViewModel drives registration, login follow-up and logout.
type AuthViewModel struct {
	auth         Authenticator
	users        repository.UserRepository
	authStore    *store.AuthStore
	serviceStore *store.ServiceStore
	appStore     *store.ApplicationStore
	msgStore     *store.MessageStore
	ui           *store.UIStore
	nav          Navigator
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewAuthViewModel(
	auth Authenticator,
	users repository.UserRepository,
	authStore *store.AuthStore,
	serviceStore *store.ServiceStore,
	appStore *store.ApplicationStore,
	msgStore *store.MessageStore,
	ui *store.UIStore,
	nav Navigator,
	logger *zap.Logger,
) *AuthViewModel {
	if nav == nil {
		nav = NoopNavigator()
	}
	return &AuthViewModel{
		auth:         auth,
		users:        users,
		authStore:    authStore,
		serviceStore: serviceStore,
		appStore:     appStore,
		msgStore:     msgStore,
		ui:           ui,
		nav:          nav,
		validate:     validator.New(),
		logger:       logger,
	}
}

// Register creates the auth record and then the profile document. When the
// profile write fails the auth record is deleted again, so a half-created
// account never lingers.
func (vm *AuthViewModel) Register(ctx context.Context, in RegisterInput) error {
	if err := vm.validate.Struct(in); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if !in.Role.Valid() {
		return models.ErrInvalidRole
	}

	uid, err := vm.auth.CreateUser(ctx, in.Email, in.Password)
	if err != nil {
		vm.logger.Error("auth record creation failed", zap.String("email", in.Email), zap.Error(err))
		vm.ui.Push(store.ToastError, "Impossible de creer le compte")
		return err
	}

	user := &models.User{
		ID:          uid,
		Email:       in.Email,
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Role:        in.Role,
	}
	switch in.Role {
	case models.RoleModel:
		user.Model = &models.ModelProfile{
			Age:      in.Age,
			Gender:   in.Gender,
			HeightCM: in.HeightCM,
		}
	case models.RoleProfessional:
		user.Professional = &models.ProfessionalProfile{
			BusinessName: in.BusinessName,
			Status:       models.StatusFreelance,
		}
	}

	if err := vm.users.Create(ctx, user); err != nil {
		vm.logger.Error("profile creation failed, rolling back auth record",
			zap.String("uid", uid), zap.Error(err))
		if delErr := vm.auth.DeleteUser(ctx, uid); delErr != nil {
			vm.logger.Error("auth record rollback failed", zap.String("uid", uid), zap.Error(delErr))
		}
		vm.ui.Push(store.ToastError, "Impossible de creer le profil")
		return err
	}

	vm.authStore.SetSession(&store.Session{UID: uid, Email: in.Email})
	vm.authStore.SetUser(user)
	vm.ui.Push(store.ToastSuccess, "Bienvenue sur Modelo")
	vm.nav.Push(RouteHome, nil)
	return nil
}

// CompleteLogin runs after the credential backend confirmed a sign-in: it
// stores the session, fetches the profile and stamps last activity.
func (vm *AuthViewModel) CompleteLogin(ctx context.Context, session *store.Session) error {
	vm.authStore.SetSession(session)

	user, err := vm.users.GetByID(ctx, session.UID)
	if err != nil {
		vm.logger.Error("profile fetch after login failed", zap.String("uid", session.UID), zap.Error(err))
		vm.ui.Push(store.ToastError, "Profil introuvable")
		return err
	}
	vm.authStore.SetUser(user)

	if err := vm.users.UpdateLastActive(ctx, session.UID); err != nil {
		vm.logger.Warn("last-active stamp failed", zap.String("uid", session.UID), zap.Error(err))
	}
	vm.nav.Push(RouteHome, nil)
	return nil
}

// RequestPasswordReset sends the reset email.
func (vm *AuthViewModel) RequestPasswordReset(ctx context.Context, email string) error {
	if err := vm.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("password reset: %w", err)
	}
	if err := vm.auth.SendPasswordReset(ctx, email); err != nil {
		vm.logger.Error("password reset failed", zap.String("email", email), zap.Error(err))
		return err
	}
	vm.ui.Push(store.ToastInfo, "Email de reinitialisation envoye")
	return nil
}

// Logout clears every user-scoped container and returns to the login
// screen.
func (vm *AuthViewModel) Logout() {
	vm.authStore.Clear()
	vm.appStore.Clear()
	vm.msgStore.Clear()
	vm.serviceStore.ResetFilters()
	vm.nav.Push(RouteLogin, nil)
}
