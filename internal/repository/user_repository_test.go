package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

func TestUserCreateAndGet(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()

	require.NoError(t, users.Create(ctx, modelUser("m1")))

	got, err := users.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, models.RoleModel, got.Role)
	require.NotNil(t, got.Model)
	assert.Equal(t, 24, got.Model.Age)
	assert.Nil(t, got.Professional)
	assert.NotZero(t, got.CreatedAt)
}

func TestUserCreateProfessionalShape(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()

	require.NoError(t, users.Create(ctx, professionalUser("p1")))

	got, err := users.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleProfessional, got.Role)
	require.NotNil(t, got.Professional)
	assert.Equal(t, models.StatusFreelance, got.Professional.Status)
	assert.Nil(t, got.Model)
}

func TestUserCreateRejectsInvalidRoleShape(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()

	err := users.Create(ctx, &models.User{ID: "u1", Email: "u@example.com", FullName: "U", Role: "admin"})
	assert.ErrorIs(t, err, models.ErrInvalidRole)

	err = users.Create(ctx, &models.User{ID: "u1", Email: "u@example.com", FullName: "U", Role: models.RoleModel})
	assert.ErrorIs(t, err, models.ErrMissingProfile)

	mismatched := modelUser("u1")
	mismatched.Professional = &models.ProfessionalProfile{Status: models.StatusCompany}
	err = users.Create(ctx, mismatched)
	assert.ErrorIs(t, err, models.ErrRoleMismatch)
}

func TestUserCreateDuplicateUID(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()

	require.NoError(t, users.Create(ctx, modelUser("m1")))
	assert.Error(t, users.Create(ctx, modelUser("m1")))
}

func TestUserGetMissing(t *testing.T) {
	b := newTestBackend()
	_, err := b.users().GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestUserModelPhotos(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()
	require.NoError(t, users.Create(ctx, modelUser("m1")))

	urls, err := users.UploadModelPhotos(ctx, "m1", []Upload{
		{Reader: bytesReader("one"), ContentType: "image/jpeg"},
		{Reader: bytesReader("two"), ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)

	got, err := users.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got.Model)
	assert.ElementsMatch(t, urls, got.Model.Photos)

	require.NoError(t, users.RemoveModelPhoto(ctx, "m1", urls[0]))
	got, err = users.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.ElementsMatch(t, urls[1:], got.Model.Photos)

	path, _ := b.blobs.PathFromURL(urls[0])
	assert.False(t, b.blobs.Exists(path))
}

func TestUserUploadProfilePicture(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()
	require.NoError(t, users.Create(ctx, professionalUser("p1")))

	url, err := users.UploadProfilePicture(ctx, "p1", Upload{Reader: bytesReader("pic"), ContentType: "image/jpeg"})
	require.NoError(t, err)

	got, err := users.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, url, got.ProfilePicture)
}

func TestUserBlockUnblock(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()
	require.NoError(t, users.Create(ctx, modelUser("m1")))

	require.NoError(t, users.BlockUser(ctx, "m1", "p9"))
	require.NoError(t, users.BlockUser(ctx, "m1", "p9"), "blocking twice is idempotent")

	got, err := users.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p9"}, got.BlockedUsers)

	require.NoError(t, users.UnblockUser(ctx, "m1", "p9"))
	got, err = users.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, got.BlockedUsers)
}

func TestUserFCMTokens(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()
	require.NoError(t, users.Create(ctx, modelUser("m1")))

	require.NoError(t, users.AddFCMToken(ctx, "m1", "tok-1"))
	require.NoError(t, users.AddFCMToken(ctx, "m1", "tok-2"))
	require.NoError(t, users.RemoveFCMToken(ctx, "m1", "tok-1"))

	got, err := users.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-2"}, got.FCMTokens)
}

func TestUserUpdateLastActive(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()
	require.NoError(t, users.Create(ctx, modelUser("m1")))

	require.NoError(t, users.UpdateLastActive(ctx, "m1"))
	got, err := users.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.NotNil(t, got.LastActive)
}

func TestUserSubscribe(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	users := b.users()
	require.NoError(t, users.Create(ctx, modelUser("m1")))

	var got []*models.User
	unsub, err := users.Subscribe(ctx, "m1", func(u *models.User) {
		got = append(got, u)
	})
	require.NoError(t, err)

	require.NoError(t, users.Update(ctx, "m1", map[string]any{"bio": "Nouvelle bio"}))
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, "Nouvelle bio", got[len(got)-1].Bio)

	unsub()
	assert.Equal(t, 0, b.gw.ActiveListeners())
}
