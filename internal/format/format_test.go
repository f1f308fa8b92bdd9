package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

func TestDateAndDateTime(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "01/06/2025", Date(ts))
	assert.Equal(t, "01/06/2025 à 14:30", DateTime(ts))
}

func TestMessageDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, "09:15", MessageDate(time.Date(2025, 6, 10, 9, 15, 0, 0, time.UTC), now))
	assert.Equal(t, "Hier à 22:05", MessageDate(time.Date(2025, 6, 9, 22, 5, 0, 0, time.UTC), now))
	assert.Equal(t, "01/06/2025 à 14:30", MessageDate(time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC), now))
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "à l'instant"},
		{time.Minute, "il y a 1 minute"},
		{45 * time.Minute, "il y a 45 minutes"},
		{90 * time.Minute, "il y a 1 heure"},
		{5 * time.Hour, "il y a 5 heures"},
		{36 * time.Hour, "il y a 1 jour"},
		{6 * 24 * time.Hour, "il y a 6 jours"},
		{45 * 24 * time.Hour, "il y a 1 mois"},
		{100 * 24 * time.Hour, "il y a 3 mois"},
		{400 * 24 * time.Hour, "il y a 1 an"},
		{800 * 24 * time.Hour, "il y a 2 ans"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RelativeDate(now.Add(-c.ago), now), c.ago.String())
	}
}

func TestServiceTypes(t *testing.T) {
	assert.Equal(t, "Coiffure", ServiceType(models.TypeHair))
	assert.Equal(t, "Inconnu", ServiceType(models.ServiceType("unknown")))
	assert.Equal(t, "Coiffure, Maquillage", ServiceTypes([]models.ServiceType{models.TypeHair, models.TypeMakeup}))
	assert.Empty(t, ServiceTypes(nil))
}

func TestPaymentType(t *testing.T) {
	assert.Equal(t, "Gratuit", PaymentType(models.PaymentFree, 0))
	assert.Equal(t, "50,00 €", PaymentType(models.PaymentPaid, 50))
	assert.Equal(t, "Payant", PaymentType(models.PaymentPaid, 0), "paid without amount stays generic")
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Acceptée", ApplicationStatus(models.ApplicationAccepted))
	assert.Equal(t, "Refusée", ApplicationStatus(models.ApplicationRejected))
	assert.Equal(t, "Modèle", UserRole(models.RoleModel))
	assert.Equal(t, "Professionnel", UserRole(models.RoleProfessional))
}

func TestRatingStars(t *testing.T) {
	assert.Equal(t, "4.5 ★★★★★", Rating(4.5))
	assert.Equal(t, "3.2 ★★★☆☆", Rating(3.2))
	assert.Equal(t, "0.0 ☆☆☆☆☆", Rating(0))
}

func TestUnitFormats(t *testing.T) {
	assert.Equal(t, "12,50 €", Price(12.5))
	assert.Equal(t, "172 cm", Height(172))
	assert.Equal(t, "1 an", Age(1))
	assert.Equal(t, "24 ans", Age(24))
}
