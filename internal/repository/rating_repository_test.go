package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

func TestRatingCreateUpdatesAggregate(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	ratings := b.ratings()
	users := b.users()
	require.NoError(t, users.Create(ctx, modelUser("m1")))

	_, err := ratings.Create(ctx, &models.Rating{
		ServiceID: "s1", ApplicationID: "a1",
		RatedUserID: "m1", RaterUserID: "p1",
		Score: 5, IsPublic: true,
	})
	require.NoError(t, err)
	_, err = ratings.Create(ctx, &models.Rating{
		ServiceID: "s2", ApplicationID: "a2",
		RatedUserID: "m1", RaterUserID: "p2",
		Score: 4, IsPublic: true,
	})
	require.NoError(t, err)

	got, err := users.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.5, got.Rating.Average)
	assert.Equal(t, 2, got.Rating.Count)
}

func TestRatingScoreRange(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	ratings := b.ratings()

	for _, score := range []int{0, 6, -1} {
		_, err := ratings.Create(ctx, &models.Rating{
			ServiceID: "s1", RatedUserID: "m1", RaterUserID: "p1", Score: score,
		})
		assert.Error(t, err, "score %d must be rejected", score)
	}
}

func TestRatingDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	ratings := b.ratings()
	require.NoError(t, b.users().Create(ctx, modelUser("m1")))

	_, err := ratings.Create(ctx, &models.Rating{
		ServiceID: "s1", RatedUserID: "m1", RaterUserID: "p1", Score: 5,
	})
	require.NoError(t, err)

	_, err = ratings.Create(ctx, &models.Rating{
		ServiceID: "s1", RatedUserID: "m1", RaterUserID: "p1", Score: 3,
	})
	assert.ErrorIs(t, err, ErrAlreadyRated)

	// A different service is a fresh slate for the same pair.
	_, err = ratings.Create(ctx, &models.Rating{
		ServiceID: "s2", RatedUserID: "m1", RaterUserID: "p1", Score: 3,
	})
	assert.NoError(t, err)
}

func TestRatingForUserPublicOnly(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	ratings := b.ratings()
	require.NoError(t, b.users().Create(ctx, modelUser("m1")))

	_, err := ratings.Create(ctx, &models.Rating{
		ServiceID: "s1", RatedUserID: "m1", RaterUserID: "p1", Score: 5, IsPublic: true,
	})
	require.NoError(t, err)
	_, err = ratings.Create(ctx, &models.Rating{
		ServiceID: "s2", RatedUserID: "m1", RaterUserID: "p2", Score: 2, IsPublic: false,
	})
	require.NoError(t, err)

	visible, err := ratings.ForUser(ctx, "m1", true)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := ratings.ForUser(ctx, "m1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRatingDeleteRefreshesAggregate(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend()
	ratings := b.ratings()
	users := b.users()
	require.NoError(t, users.Create(ctx, modelUser("m1")))

	id, err := ratings.Create(ctx, &models.Rating{
		ServiceID: "s1", RatedUserID: "m1", RaterUserID: "p1", Score: 2,
	})
	require.NoError(t, err)
	_, err = ratings.Create(ctx, &models.Rating{
		ServiceID: "s2", RatedUserID: "m1", RaterUserID: "p2", Score: 4,
	})
	require.NoError(t, err)

	require.NoError(t, ratings.Delete(ctx, id))

	got, err := users.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.0, got.Rating.Average)
	assert.Equal(t, 1, got.Rating.Count)
}
