// Package format holds the pure presentation formatters. Everything here
// is locale-fixed French output for the mobile screens; no I/O, no state.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

// Date renders a calendar date as dd/MM/yyyy.
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

// DateTime renders a timestamp as dd/MM/yyyy à HH:mm.
func DateTime(t time.Time) string {
	return t.Format("02/01/2006 à 15:04")
}

// MessageDate renders a message timestamp the way the thread shows it:
// bare time for today, "Hier à HH:mm" for yesterday, full date otherwise.
func MessageDate(t, now time.Time) string {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}
	yesterday := now.AddDate(0, 0, -1)
	y2, m2, d2 = yesterday.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Hier à " + t.Format("15:04")
	}
	return DateTime(t)
}

// RelativeDate renders "il y a X" style distances.
func RelativeDate(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "à l'instant"
	case d < time.Hour:
		return plural(int(d.Minutes()), "il y a %d minute", "il y a %d minutes")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "il y a %d heure", "il y a %d heures")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "il y a %d jour", "il y a %d jours")
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/(24*30)), "il y a %d mois", "il y a %d mois")
	default:
		return plural(int(d.Hours()/(24*365)), "il y a %d an", "il y a %d ans")
	}
}

func plural(n int, singular, pluralForm string) string {
	if n <= 1 {
		return fmt.Sprintf(singular, max(n, 1))
	}
	return fmt.Sprintf(pluralForm, n)
}

// ServiceType renders one service type tag.
func ServiceType(t models.ServiceType) string {
	switch t {
	case models.TypeHair:
		return "Coiffure"
	case models.TypeMakeup:
		return "Maquillage"
	case models.TypePhotography:
		return "Photographie"
	case models.TypeFashion:
		return "Mode"
	case models.TypeNails:
		return "Ongles"
	case models.TypeAesthetic:
		return "Esthétique"
	case models.TypeOther:
		return "Autre"
	default:
		return "Inconnu"
	}
}

// ServiceTypes renders a tag list as a comma-joined label.
func ServiceTypes(types []models.ServiceType) string {
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = ServiceType(t)
	}
	return strings.Join(labels, ", ")
}

// PaymentType renders the price line of a listing card.
func PaymentType(t models.PaymentType, amount float64) string {
	switch t {
	case models.PaymentFree:
		return "Gratuit"
	case models.PaymentPaid:
		if amount > 0 {
			return Price(amount)
		}
		return "Payant"
	default:
		return "Inconnu"
	}
}

// ApplicationStatus renders a candidacy status badge.
func ApplicationStatus(s models.ApplicationStatus) string {
	switch s {
	case models.ApplicationPending:
		return "En attente"
	case models.ApplicationAccepted:
		return "Acceptée"
	case models.ApplicationRejected:
		return "Refusée"
	case models.ApplicationCancelled:
		return "Annulée"
	case models.ApplicationCompleted:
		return "Terminée"
	default:
		return "Inconnu"
	}
}

// ServiceStatus renders a listing status badge.
func ServiceStatus(s models.ServiceStatus) string {
	switch s {
	case models.ServiceDraft:
		return "Brouillon"
	case models.ServiceActive:
		return "Active"
	case models.ServiceCompleted:
		return "Terminée"
	case models.ServiceCancelled:
		return "Annulée"
	case models.ServiceExpired:
		return "Expirée"
	default:
		return "Inconnu"
	}
}

// UserRole renders an account role.
func UserRole(r models.UserRole) string {
	switch r {
	case models.RoleModel:
		return "Modèle"
	case models.RoleProfessional:
		return "Professionnel"
	default:
		return "Inconnu"
	}
}

// Gender renders a gender label.
func Gender(g models.Gender) string {
	switch g {
	case models.GenderMale:
		return "Homme"
	case models.GenderFemale:
		return "Femme"
	case models.GenderOther:
		return "Autre"
	default:
		return "Non spécifié"
	}
}

// HairColor renders a hair color label.
func HairColor(c models.HairColor) string {
	switch c {
	case models.HairBlack:
		return "Noir"
	case models.HairBrown:
		return "Brun"
	case models.HairBlonde:
		return "Blond"
	case models.HairRed:
		return "Roux"
	case models.HairWhite:
		return "Blanc"
	case models.HairGray:
		return "Gris"
	case models.HairOther:
		return "Autre"
	default:
		return "Non spécifié"
	}
}

// EyeColor renders an eye color label.
func EyeColor(c models.EyeColor) string {
	switch c {
	case models.EyesBrown:
		return "Brun"
	case models.EyesBlue:
		return "Bleu"
	case models.EyesGreen:
		return "Vert"
	case models.EyesGray:
		return "Gris"
	case models.EyesHazel:
		return "Noisette"
	case models.EyesOther:
		return "Autre"
	default:
		return "Non spécifié"
	}
}

// ProfessionalStatus renders a professional's legal status.
func ProfessionalStatus(s models.ProfessionalStatus) string {
	switch s {
	case models.StatusFreelance:
		return "Freelance"
	case models.StatusSelfEmployed:
		return "Auto-entrepreneur"
	case models.StatusCompany:
		return "Société"
	default:
		return "Non spécifié"
	}
}

// Rating renders "4.5 ★★★★☆" style summaries.
func Rating(score float64) string {
	rounded := int(score + 0.5)
	var stars strings.Builder
	for i := 1; i <= 5; i++ {
		if i <= rounded {
			stars.WriteRune('★')
		} else {
			stars.WriteRune('☆')
		}
	}
	return fmt.Sprintf("%.1f %s", score, stars.String())
}

// Price renders a euro amount with a French decimal comma.
func Price(amount float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f €", amount), ".", ",")
}

// Height renders centimetres.
func Height(cm int) string {
	return fmt.Sprintf("%d cm", cm)
}

// Age renders years with French pluralization.
func Age(years int) string {
	if years > 1 {
		return fmt.Sprintf("%d ans", years)
	}
	return fmt.Sprintf("%d an", years)
}
