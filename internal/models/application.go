package models

import "time"

// ApplicationStatus is the lifecycle state of a candidacy.
//
// pending -> {accepted, rejected, cancelled}
// accepted -> {completed, cancelled}
// rejected, cancelled and completed are terminal.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCancelled ApplicationStatus = "cancelled"
	ApplicationCompleted ApplicationStatus = "completed"
)

// Terminal reports whether no further transition is allowed from s.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationRejected, ApplicationCancelled, ApplicationCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	switch s {
	case ApplicationPending:
		return next == ApplicationAccepted || next == ApplicationRejected || next == ApplicationCancelled
	case ApplicationAccepted:
		return next == ApplicationCompleted || next == ApplicationCancelled
	default:
		return false
	}
}

// Application links one model to one service. ProfessionalID is denormalized
// from the service for query convenience. The application's own ID is the
// conversation ID of its message thread.
type Application struct {
	ID                string            `json:"id"`
	ServiceID         string            `json:"serviceId"`
	ModelID           string            `json:"modelId"`
	ProfessionalID    string            `json:"professionalId"`
	Message           string            `json:"message"`
	Photos            []string          `json:"photos"`
	Video             string            `json:"video,omitempty"`
	Status            ApplicationStatus `json:"status"`
	RejectionReason   string            `json:"rejectionReason,omitempty"`
	HasUnreadMessages bool              `json:"hasUnreadMessages"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	ExpiredAt         *time.Time        `json:"expiredAt,omitempty"`
}

// Participant reports whether the given UID is one of the two parties.
func (a *Application) Participant(uid string) bool {
	return a.ModelID == uid || a.ProfessionalID == uid
}

// PartnerOf returns the other party's UID, or "" when uid is not a party.
func (a *Application) PartnerOf(uid string) string {
	switch uid {
	case a.ModelID:
		return a.ProfessionalID
	case a.ProfessionalID:
		return a.ModelID
	}
	return ""
}
