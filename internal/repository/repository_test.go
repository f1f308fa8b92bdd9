package repository

import (
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

// testBackend bundles the fakes shared by the repository tests.
type testBackend struct {
	gw    *gateway.MemoryGateway
	blobs *gateway.MemoryBlobStore
}

func newTestBackend() *testBackend {
	gw := gateway.NewMemoryGateway()
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gw.SetClock(func() func() time.Time {
		now := start
		return func() time.Time {
			now = now.Add(time.Second)
			return now
		}
	}())
	return &testBackend{gw: gw, blobs: gateway.NewMemoryBlobStore()}
}

func (b *testBackend) users() UserRepository {
	return NewUserRepository(b.gw, b.blobs, zap.NewNop())
}

func (b *testBackend) services() ServiceRepository {
	return NewServiceRepository(b.gw, b.blobs, zap.NewNop())
}

func (b *testBackend) applications() ApplicationRepository {
	return NewApplicationRepository(b.gw, b.blobs, zap.NewNop())
}

func (b *testBackend) messages() MessageRepository {
	return NewMessageRepository(b.gw, b.blobs, zap.NewNop())
}

func (b *testBackend) ratings() RatingRepository {
	return NewRatingRepository(b.gw, zap.NewNop())
}

func (b *testBackend) categories() CategoryRepository {
	return NewCategoryRepository(b.gw, zap.NewNop())
}

func (b *testBackend) featured() FeaturedRepository {
	return NewFeaturedRepository(b.gw, b.blobs, zap.NewNop())
}

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}

func modelUser(id string) *models.User {
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

func professionalUser(id string) *models.User {
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

func activeService(professionalID string) *models.Service {
	return &models.Service{
		ProfessionalID: professionalID,
		Title:          "Coupe et brushing",
		Description:    "Recherche modele pour coupe",
		Types:          []models.ServiceType{models.TypeHair},
		Status:         models.ServiceActive,
		Date:           models.ServiceDate{StartDate: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		Location:       models.ServiceLocation{City: "Paris"},
		Payment:        models.ServicePayment{Type: models.PaymentFree},
	}
}
