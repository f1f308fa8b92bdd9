package models

import (
	"errors"
	"fmt"
	"time"
)

// UserRole discriminates the two profile variants of the marketplace.
type UserRole string

const (
	RoleModel        UserRole = "model"
	RoleProfessional UserRole = "professional"
)

// Valid reports whether the role is one of the two known variants.
func (r UserRole) Valid() bool {
	return r == RoleModel || r == RoleProfessional
}

// ProfessionalStatus is the legal status of a professional account.
type ProfessionalStatus string

const (
	StatusFreelance    ProfessionalStatus = "freelance"
	StatusSelfEmployed ProfessionalStatus = "self_employed"
	StatusCompany      ProfessionalStatus = "company"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type HairColor string

const (
	HairBlack  HairColor = "black"
	HairBrown  HairColor = "brown"
	HairBlonde HairColor = "blonde"
	HairRed    HairColor = "red"
	HairWhite  HairColor = "white"
	HairGray   HairColor = "gray"
	HairOther  HairColor = "other"
)

type EyeColor string

const (
	EyesBrown EyeColor = "brown"
	EyesBlue  EyeColor = "blue"
	EyesGreen EyeColor = "green"
	EyesGray  EyeColor = "gray"
	EyesHazel EyeColor = "hazel"
	EyesOther EyeColor = "other"
)

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is where a user operates. RadiusKM is the search radius around it.
type Location struct {
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city"`
	PostalCode  string       `json:"postalCode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	RadiusKM    int          `json:"radius"`
}

// SocialMedia holds the user's public handles.
type SocialMedia struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Other     string `json:"other,omitempty"`
}

// Availability describes when a model can work. Days use the YYYY-MM-DD format.
type Availability struct {
	Days      []string `json:"days"`
	Morning   bool     `json:"morning"`
	Afternoon bool     `json:"afternoon"`
	Evening   bool     `json:"evening"`
}

// RatingSummary is the denormalized aggregate of ratings received by a user.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ModelProfile carries the fields present only on model accounts.
type ModelProfile struct {
	Age          int          `json:"age"`
	Gender       Gender       `json:"gender"`
	HeightCM     int          `json:"height,omitempty"`
	HairColor    HairColor    `json:"hairColor,omitempty"`
	EyeColor     EyeColor     `json:"eyeColor,omitempty"`
	Photos       []string     `json:"photos"`
	Experience   string       `json:"experience,omitempty"`
	Availability Availability `json:"availability"`
}

// ProfessionalProfile carries the fields present only on professional accounts.
type ProfessionalProfile struct {
	BusinessName string             `json:"businessName,omitempty"`
	Status       ProfessionalStatus `json:"status"`
	Services     []string           `json:"services"`
	Portfolio    []string           `json:"portfolio,omitempty"`
}

// User is a marketplace account. The ID is the Firebase Auth UID and doubles
// as the users document ID. Exactly one of Model / Professional is non-nil,
// matching Role; role is immutable after creation.
type User struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FullName       string         `json:"fullName"`
	PhoneNumber    string         `json:"phoneNumber,omitempty"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
	Location       Location       `json:"location"`
	Role           UserRole       `json:"role"`
	Interests      []string       `json:"interests,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	SocialMedia    SocialMedia    `json:"socialMedia,omitempty"`
	Rating         *RatingSummary `json:"rating,omitempty"`
	IsVerified     bool           `json:"isVerified"`
	BlockedUsers   []string       `json:"blockedUsers,omitempty"`
	FCMTokens      []string       `json:"fcmTokens,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	LastActive     *time.Time     `json:"lastActive,omitempty"`

	Model        *ModelProfile        `json:"model,omitempty"`
	Professional *ProfessionalProfile `json:"professional,omitempty"`
}

var (
	ErrInvalidRole    = errors.New("user role must be model or professional")
	ErrRoleMismatch   = errors.New("role-specific profile does not match role")
	ErrMissingProfile = errors.New("role-specific profile is missing")
)

// Validate enforces the role invariant: a known role, and exactly the
// matching role-specific section populated.
func (u *User) Validate() error {
	if !u.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}
	switch u.Role {
	case RoleModel:
		if u.Model == nil {
			return fmt.Errorf("%w: model", ErrMissingProfile)
		}
		if u.Professional != nil {
			return fmt.Errorf("%w: professional section on model account", ErrRoleMismatch)
		}
	case RoleProfessional:
		if u.Professional == nil {
			return fmt.Errorf("%w: professional", ErrMissingProfile)
		}
		if u.Model != nil {
			return fmt.Errorf("%w: model section on professional account", ErrRoleMismatch)
		}
	}
	return nil
}

// HasBlocked reports whether the user has blocked the given UID.
func (u *User) HasBlocked(uid string) bool {
	for _, b := range u.BlockedUsers {
		if b == uid {
			return true
		}
	}
	return false
}
