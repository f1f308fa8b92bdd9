package viewmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/store"
)

func TestSearchLoadHonorsCategoryFilter(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	require.NoError(t, env.users.Create(ctx, testProfessional("p1")))
	_, err := env.services.Create(ctx, upcomingService("p1"))
	require.NoError(t, err)
	nails := upcomingService("p1")
	nails.Title = "Pose de vernis"
	nails.Types = []models.ServiceType{models.TypeNails}
	_, err = env.services.Create(ctx, nails)
	require.NoError(t, err)

	vm := env.searchVM()
	vm.SetFilters(store.ServiceFilters{Category: models.TypeNails})
	require.NoError(t, vm.Load(ctx))

	results := vm.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Pose de vernis", results[0].Title)
}

func TestSearchQueryRefinesClientSide(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	require.NoError(t, env.users.Create(ctx, testProfessional("p1")))
	_, err := env.services.Create(ctx, upcomingService("p1"))
	require.NoError(t, err)
	other := upcomingService("p1")
	other.Title = "Seance photo mode"
	_, err = env.services.Create(ctx, other)
	require.NoError(t, err)

	vm := env.searchVM()
	require.NoError(t, vm.Load(ctx))
	assert.Len(t, vm.Results(), 2)

	vm.SetQuery("brushing")
	require.Len(t, vm.Results(), 1)
	assert.Equal(t, "Coupe et brushing", vm.Results()[0].Title)

	vm.ResetFilters()
	assert.Len(t, vm.Results(), 2)
}

func TestSearchRadiusUsesViewerCoordinates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	require.NoError(t, env.users.Create(ctx, testProfessional("p1")))

	paris := upcomingService("p1")
	paris.Location.Coordinates = &models.Coordinates{Latitude: 48.8566, Longitude: 2.3522}
	_, err := env.services.Create(ctx, paris)
	require.NoError(t, err)
	lyon := upcomingService("p1")
	lyon.Title = "Shooting Lyon"
	lyon.Location.City = "Lyon"
	lyon.Location.Coordinates = &models.Coordinates{Latitude: 45.764, Longitude: 4.8357}
	_, err = env.services.Create(ctx, lyon)
	require.NoError(t, err)

	viewer := testModel("m1")
	viewer.Location = models.Location{Coordinates: &models.Coordinates{Latitude: 48.85, Longitude: 2.35}}
	env.signIn(ctx, viewer)

	vm := env.searchVM()
	require.NoError(t, vm.Load(ctx))
	vm.SetFilters(store.ServiceFilters{RadiusKM: 50})

	results := vm.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "Coupe et brushing", results[0].Title)
}

func TestSearchOpenService(t *testing.T) {
	env := newTestEnv()
	vm := env.searchVM()

	vm.OpenService("s1")

	last, ok := env.nav.last()
	require.True(t, ok)
	assert.Equal(t, RouteServiceDetail, last.route)
	assert.Equal(t, "s1", last.params["id"])
}
