package models

import "time"

// ServiceStatus is the lifecycle state of a listing. The progression is
// linear: draft -> active -> completed, with cancelled reachable from draft
// or active. Expired is derived from the stored ExpiresAt timestamp by
// listing filters; it is never written by an active transition.
type ServiceStatus string

const (
	ServiceDraft     ServiceStatus = "draft"
	ServiceActive    ServiceStatus = "active"
	ServiceCompleted ServiceStatus = "completed"
	ServiceCancelled ServiceStatus = "cancelled"
	ServiceExpired   ServiceStatus = "expired"
)

// CanTransitionTo reports whether moving from s to next is a legal
// service-status transition.
func (s ServiceStatus) CanTransitionTo(next ServiceStatus) bool {
	switch s {
	case ServiceDraft:
		return next == ServiceActive || next == ServiceCancelled
	case ServiceActive:
		return next == ServiceCompleted || next == ServiceCancelled
	default:
		return false
	}
}

// ServiceType tags the kind of work a listing asks for.
type ServiceType string

const (
	TypeHair        ServiceType = "hair"
	TypeMakeup      ServiceType = "makeup"
	TypePhotography ServiceType = "photography"
	TypeFashion     ServiceType = "fashion"
	TypeNails       ServiceType = "nails"
	TypeAesthetic   ServiceType = "aesthetic"
	TypeOther       ServiceType = "other"
)

type PaymentType string

const (
	PaymentFree PaymentType = "free"
	PaymentPaid PaymentType = "paid"
)

// ServiceCriteria are the applicant-matching filters attached to a listing.
type ServiceCriteria struct {
	Gender               Gender      `json:"gender,omitempty"`
	AgeMin               int         `json:"ageMin,omitempty"`
	AgeMax               int         `json:"ageMax,omitempty"`
	HeightMinCM          int         `json:"heightMin,omitempty"`
	HeightMaxCM          int         `json:"heightMax,omitempty"`
	HairColors           []HairColor `json:"hairColor,omitempty"`
	EyeColors            []EyeColor  `json:"eyeColor,omitempty"`
	RequiresExperience   bool        `json:"experience,omitempty"`
	SpecificRequirements string      `json:"specificRequirements,omitempty"`
}

// ServiceLocation is where the listing takes place.
type ServiceLocation struct {
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city"`
	PostalCode  string       `json:"postalCode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	IsRemote    bool         `json:"isRemote,omitempty"`
}

// ServiceDate is the date window of the listing.
type ServiceDate struct {
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	DurationMinutes int        `json:"duration,omitempty"`
	IsFlexible      bool       `json:"isFlexible,omitempty"`
}

// ServicePayment is the payment terms of the listing. Amount is in euros
// and only meaningful when Type is PaymentPaid.
type ServicePayment struct {
	Type    PaymentType `json:"type"`
	Amount  float64     `json:"amount,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Service is a bookable listing owned by one professional.
// ApplicationCount caches the number of applications referencing the
// listing; it is maintained atomically alongside application creation.
type Service struct {
	ID               string          `json:"id"`
	ProfessionalID   string          `json:"professionalId"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Types            []ServiceType   `json:"type"`
	Status           ServiceStatus   `json:"status"`
	Date             ServiceDate     `json:"date"`
	Location         ServiceLocation `json:"location"`
	Criteria         ServiceCriteria `json:"criteria"`
	Payment          ServicePayment  `json:"payment"`
	Images           []string        `json:"images"`
	IsUrgent         bool            `json:"isUrgent"`
	ApplicationCount int             `json:"applicationCount"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	ExpiresAt        *time.Time      `json:"expiresAt,omitempty"`
}

// IsExpired reports whether the listing's expiry timestamp has passed.
func (s *Service) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// HasType reports whether the listing carries the given service type tag.
func (s *Service) HasType(t ServiceType) bool {
	for _, st := range s.Types {
		if st == t {
			return true
		}
	}
	return false
}
