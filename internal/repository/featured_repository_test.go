package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

func TestActiveBannersWindowAndPriority(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	featured := b.featured()
	now := time.Now()

	_, err := featured.Create(ctx, &models.FeaturedBanner{
		Title: "En cours", Type: models.BannerService, TargetID: "s1",
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
		IsActive: true, Priority: 1,
	})
	require.NoError(t, err)
	_, err = featured.Create(ctx, &models.FeaturedBanner{
		Title: "Prioritaire", Type: models.BannerExternal, ExternalURL: "https://example.com",
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
		IsActive: true, Priority: 5,
	})
	require.NoError(t, err)
	_, err = featured.Create(ctx, &models.FeaturedBanner{
		Title: "Expiree", Type: models.BannerService, TargetID: "s2",
		StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour),
		IsActive: true, Priority: 9,
	})
	require.NoError(t, err)
	_, err = featured.Create(ctx, &models.FeaturedBanner{
		Title: "Inactive", Type: models.BannerService, TargetID: "s3",
		StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
		IsActive: false, Priority: 9,
	})
	require.NoError(t, err)

	got, err := featured.ActiveBanners(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Prioritaire", got[0].Title, "highest priority first")
	assert.Equal(t, "En cours", got[1].Title)
}

func TestBannerDeleteCascadesImage(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	featured := b.featured()
	now := time.Now()

	id, err := featured.Create(ctx, &models.FeaturedBanner{
		Title: "Promo", Type: models.BannerService, TargetID: "s1",
		StartDate: now, EndDate: now.Add(time.Hour), IsActive: true,
	})
	require.NoError(t, err)

	url, err := featured.UploadBannerImage(ctx, id, Upload{Reader: bytesReader("img"), ContentType: "image/jpeg"})
	require.NoError(t, err)

	require.NoError(t, featured.Delete(ctx, id))
	path, ok := b.blobs.PathFromURL(url)
	require.True(t, ok)
	assert.False(t, b.blobs.Exists(path))
}
