package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

func createListing(t *testing.T, b *testBackend) string {
	t.Helper()
	id, err := b.services().Create(context.Background(), activeService("p1"))
	require.NoError(t, err)
	return id
}

func TestApplicationCreateAppearsInServiceList(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	serviceID := createListing(t, b)

	id, err := apps.Create(ctx, &models.Application{
		ServiceID:      serviceID,
		ModelID:        "m1",
		ProfessionalID: "p1",
		Message:        "Hello, interested!",
		Photos:         []string{"mem://application-photos/x/photo.jpg"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	page, err := apps.ForService(ctx, serviceID, 0, "")
	require.NoError(t, err)
	require.Len(t, page.Applications, 1)
	assert.Equal(t, "m1", page.Applications[0].ModelID)
	assert.Equal(t, models.ApplicationPending, page.Applications[0].Status)
	assert.Equal(t, "Hello, interested!", page.Applications[0].Message)
	assert.NotZero(t, page.Applications[0].CreatedAt)
	assert.NotNil(t, page.Applications[0].ExpiredAt)
}

func TestApplicationCreateForcesPendingStatus(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	serviceID := createListing(t, b)

	id, err := apps.Create(ctx, &models.Application{
		ServiceID:      serviceID,
		ModelID:        "m1",
		ProfessionalID: "p1",
		Status:         models.ApplicationAccepted,
	})
	require.NoError(t, err)

	app, err := apps.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
}

func TestApplicationDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	serviceID := createListing(t, b)

	app := func() *models.Application {
		return &models.Application{ServiceID: serviceID, ModelID: "m1", ProfessionalID: "p1"}
	}
	_, err := apps.Create(ctx, app())
	require.NoError(t, err)

	_, err = apps.Create(ctx, app())
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	// Another model still can apply.
	_, err = apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m2", ProfessionalID: "p1"})
	assert.NoError(t, err)
}

func TestApplicationReapplyAfterCancel(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	serviceID := createListing(t, b)

	id, err := apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m1", ProfessionalID: "p1"})
	require.NoError(t, err)
	require.NoError(t, apps.UpdateStatus(ctx, id, models.ApplicationCancelled, ""))

	_, err = apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m1", ProfessionalID: "p1"})
	assert.NoError(t, err, "a cancelled candidacy frees the slot")
}

func TestApplicationCountTracksCreateAndCancel(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	services := b.services()
	serviceID := createListing(t, b)

	id1, err := apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m1", ProfessionalID: "p1"})
	require.NoError(t, err)
	_, err = apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m2", ProfessionalID: "p1"})
	require.NoError(t, err)

	service, err := services.GetByID(ctx, serviceID)
	require.NoError(t, err)
	assert.Equal(t, 2, service.ApplicationCount)

	require.NoError(t, apps.UpdateStatus(ctx, id1, models.ApplicationCancelled, ""))
	service, err = services.GetByID(ctx, serviceID)
	require.NoError(t, err)
	assert.Equal(t, 1, service.ApplicationCount)
}

func TestApplicationStatusTransitions(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	serviceID := createListing(t, b)

	id, err := apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m1", ProfessionalID: "p1"})
	require.NoError(t, err)

	// pending -> completed skips acceptance.
	err = apps.UpdateStatus(ctx, id, models.ApplicationCompleted, "")
	assert.ErrorIs(t, err, ErrIllegalTransition)

	require.NoError(t, apps.UpdateStatus(ctx, id, models.ApplicationAccepted, ""))
	app, err := apps.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, app.Status)

	// accepted -> rejected is not allowed.
	err = apps.UpdateStatus(ctx, id, models.ApplicationRejected, "")
	assert.ErrorIs(t, err, ErrIllegalTransition)

	require.NoError(t, apps.UpdateStatus(ctx, id, models.ApplicationCompleted, ""))
	err = apps.UpdateStatus(ctx, id, models.ApplicationCancelled, "")
	assert.ErrorIs(t, err, ErrIllegalTransition, "completed is terminal")
}

func TestApplicationRejectionReason(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	serviceID := createListing(t, b)

	id, err := apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m1", ProfessionalID: "p1"})
	require.NoError(t, err)
	require.NoError(t, apps.UpdateStatus(ctx, id, models.ApplicationRejected, "profil incomplet"))

	app, err := apps.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationRejected, app.Status)
	assert.Equal(t, "profil incomplet", app.RejectionReason)
}

func TestApplicationForModelStatusFilter(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	s1 := createListing(t, b)
	s2 := createListing(t, b)

	id1, err := apps.Create(ctx, &models.Application{ServiceID: s1, ModelID: "m1", ProfessionalID: "p1"})
	require.NoError(t, err)
	_, err = apps.Create(ctx, &models.Application{ServiceID: s2, ModelID: "m1", ProfessionalID: "p1"})
	require.NoError(t, err)
	require.NoError(t, apps.UpdateStatus(ctx, id1, models.ApplicationAccepted, ""))

	page, err := apps.ForModel(ctx, "m1", []models.ApplicationStatus{models.ApplicationAccepted}, 0, "")
	require.NoError(t, err)
	require.Len(t, page.Applications, 1)
	assert.Equal(t, id1, page.Applications[0].ID)

	page, err = apps.ForModel(ctx, "m1", nil, 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Applications, 2)

	page, err = apps.ForProfessional(ctx, "p1",
		[]models.ApplicationStatus{models.ApplicationAccepted, models.ApplicationPending}, 0, "")
	require.NoError(t, err)
	assert.Len(t, page.Applications, 2)
}

func TestApplicationDeleteCascadesPhotos(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	apps := b.applications()
	serviceID := createListing(t, b)

	id, err := apps.Create(ctx, &models.Application{ServiceID: serviceID, ModelID: "m1", ProfessionalID: "p1"})
	require.NoError(t, err)

	urls, err := apps.UploadPhotos(ctx, id, []Upload{
		{Reader: bytesReader("one"), ContentType: "image/jpeg"},
		{Reader: bytesReader("two"), ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)

	require.NoError(t, apps.Delete(ctx, id))
	for _, url := range urls {
		path, ok := b.blobs.PathFromURL(url)
		require.True(t, ok)
		assert.False(t, b.blobs.Exists(path))
	}
}
