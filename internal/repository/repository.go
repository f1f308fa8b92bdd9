// Package repository translates domain-shaped requests into gateway calls.
// Every date-bearing field coming back from the gateway is normalized to
// time.Time before it leaves this package.
package repository

import "errors"

// Backend collection names; these are the wire contract.
const (
	usersCollection        = "users"
	servicesCollection     = "services"
	applicationsCollection = "applications"
	messagesCollection     = "messages"
	ratingsCollection      = "ratings"
	categoriesCollection   = "categories"
	bannersCollection      = "featured_banners"
)

// Blob path roots, used as both write targets and delete-by-URL sources.
const (
	profilesPath          = "profiles"
	modelPhotosPath       = "model-photos"
	serviceImagesPath     = "service-images"
	applicationPhotosPath = "application-photos"
	messageMediaPath      = "message-media"
	bannerImagesPath      = "banner-images"
)

var (
	// ErrAlreadyApplied is returned when a model already has a
	// non-cancelled application for the service.
	ErrAlreadyApplied = errors.New("model already applied to this service")
	// ErrAlreadyRated is returned when the rater already rated this service.
	ErrAlreadyRated = errors.New("user already rated this service")
	// ErrIllegalTransition is returned for a status write that leaves the
	// entity's state machine.
	ErrIllegalTransition = errors.New("illegal status transition")
)

const defaultPageSize = 10
