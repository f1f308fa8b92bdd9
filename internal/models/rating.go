package models

import "time"

// Rating is one evaluation of one user by another, scoped to the
// (service, application) pair it came out of. Score is 1 to 5.
type Rating struct {
	ID            string     `json:"id"`
	ServiceID     string     `json:"serviceId"`
	ApplicationID string     `json:"applicationId"`
	RatedUserID   string     `json:"ratedUserId"`
	RaterUserID   string     `json:"raterUserId"`
	Score         int        `json:"score"`
	Comment       string     `json:"comment,omitempty"`
	IsPublic      bool       `json:"isPublic"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}
