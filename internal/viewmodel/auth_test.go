package viewmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:    "nina@example.com",
		Password: "secret-pass",
		FullName: "Nina Martin",
		Role:     models.RoleModel,
		Age:      24,
		Gender:   models.GenderFemale,
		HeightCM: 172,
	}
}

func TestRegisterCreatesProfileAndSignsIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	vm := env.authVM()

	require.NoError(t, vm.Register(ctx, validRegisterInput()))

	assert.True(t, env.authStore.Authenticated())
	assert.Equal(t, "uid-1", env.authStore.UID())
	user := env.authStore.User()
	require.NotNil(t, user)
	assert.Equal(t, models.RoleModel, user.Role)
	assert.Equal(t, "Nina Martin", user.FullName)

	stored, err := env.users.GetByID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "nina@example.com", stored.Email)
	require.NotNil(t, stored.Model)
	assert.Equal(t, 24, stored.Model.Age)

	last, ok := env.nav.last()
	require.True(t, ok)
	assert.Equal(t, RouteHome, last.route)
	assert.Contains(t, env.toastMessages(), "Bienvenue sur Modelo")
}

func TestRegisterProfessionalShape(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	vm := env.authVM()

	in := RegisterInput{
		Email:        "studio@example.com",
		Password:     "secret-pass",
		FullName:     "Studio Lux",
		Role:         models.RoleProfessional,
		BusinessName: "Studio Lux",
	}
	require.NoError(t, vm.Register(ctx, in))

	stored, err := env.users.GetByID(ctx, "uid-1")
	require.NoError(t, err)
	require.NotNil(t, stored.Professional)
	assert.Equal(t, "Studio Lux", stored.Professional.BusinessName)
	assert.Nil(t, stored.Model)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	vm := env.authVM()

	in := validRegisterInput()
	in.Email = "not-an-email"
	require.Error(t, vm.Register(ctx, in))

	in = validRegisterInput()
	in.Password = "short"
	require.Error(t, vm.Register(ctx, in))

	assert.Empty(t, env.auth.created, "no auth record before validation passes")
	assert.False(t, env.authStore.Authenticated())
}

func TestRegisterRollsBackAuthRecordWhenProfileWriteFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	// A document already sits at the UID the auth backend will hand out,
	// so the profile write must fail.
	require.NoError(t, env.users.Create(ctx, testModel("uid-1")))

	vm := env.authVM()
	err := vm.Register(ctx, validRegisterInput())
	require.Error(t, err)

	assert.Equal(t, []string{"uid-1"}, env.auth.deleted, "auth record rolled back")
	assert.False(t, env.authStore.Authenticated())
	assert.Contains(t, env.toastMessages(), "Impossible de creer le profil")
}

func TestCompleteLoginFetchesProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	require.NoError(t, env.users.Create(ctx, testModel("m1")))

	vm := env.authVM()
	require.NoError(t, vm.CompleteLogin(ctx, &store.Session{UID: "m1", Email: "m1@example.com"}))

	assert.False(t, env.authStore.Loading())
	user := env.authStore.User()
	require.NotNil(t, user)
	assert.Equal(t, "m1", user.ID)

	stored, err := env.users.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastActive, "login stamps last activity")

	last, ok := env.nav.last()
	require.True(t, ok)
	assert.Equal(t, RouteHome, last.route)
}

func TestCompleteLoginWithoutProfileFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	vm := env.authVM()

	err := vm.CompleteLogin(ctx, &store.Session{UID: "ghost"})
	require.Error(t, err)
	assert.True(t, env.authStore.Loading(), "session kept, profile missing")
}

func TestRequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	vm := env.authVM()

	require.Error(t, vm.RequestPasswordReset(ctx, "not-an-email"))
	require.NoError(t, vm.RequestPasswordReset(ctx, "nina@example.com"))
	assert.Equal(t, []string{"nina@example.com"}, env.auth.resets)
}

func TestLogoutClearsEveryUserScopedStore(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.signIn(ctx, testModel("m1"))
	env.appStore.Upsert(&models.Application{ID: "a1", ModelID: "m1"})
	env.msgStore.SetConversations([]*store.Conversation{{ID: "a1"}})
	env.serviceStore.SetFilters(store.ServiceFilters{Query: "coiffure"})

	env.authVM().Logout()

	assert.False(t, env.authStore.Authenticated())
	assert.Empty(t, env.appStore.Applications())
	assert.Empty(t, env.msgStore.Conversations())
	assert.Empty(t, env.serviceStore.Filters().Query)

	last, ok := env.nav.last()
	require.True(t, ok)
	assert.Equal(t, RouteLogin, last.route)
}
