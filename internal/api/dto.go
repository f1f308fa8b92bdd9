// Package api is the HTTP surface over the repositories. Handlers bind
// and validate requests, enforce ownership, and format repository output;
// no business rules live here.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type registerRequest struct {
	Email        string          `json:"email" binding:"required,email"`
	Password     string          `json:"password" binding:"required,min=8"`
	FullName     string          `json:"fullName" binding:"required,min=2"`
	PhoneNumber  string          `json:"phoneNumber"`
	Role         models.UserRole `json:"role" binding:"required,oneof=model professional"`
	Age          int             `json:"age"`
	Gender       models.Gender   `json:"gender"`
	Height       int             `json:"height"`
	BusinessName string          `json:"businessName"`
}

type createServiceRequest struct {
	Title       string                 `json:"title" binding:"required,min=3,max=120"`
	Description string                 `json:"description" binding:"required,min=10"`
	Types       []models.ServiceType   `json:"type" binding:"required,min=1"`
	StartDate   time.Time              `json:"startDate" binding:"required"`
	EndDate     *time.Time             `json:"endDate"`
	Duration    int                    `json:"duration"`
	IsFlexible  bool                   `json:"isFlexible"`
	Address     string                 `json:"address"`
	City        string                 `json:"city" binding:"required"`
	PostalCode  string                 `json:"postalCode"`
	IsRemote    bool                   `json:"isRemote"`
	Latitude    *float64               `json:"latitude"`
	Longitude   *float64               `json:"longitude"`
	PaymentType models.PaymentType     `json:"paymentType" binding:"required,oneof=free paid"`
	Amount      float64                `json:"amount"`
	Details     string                 `json:"details"`
	IsUrgent    bool                   `json:"isUrgent"`
	Criteria    models.ServiceCriteria `json:"criteria"`
	Publish     bool                   `json:"publish"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type applyRequest struct {
	Message string `json:"message"`
}

type sendMessageRequest struct {
	Type      models.MessageType `json:"type" binding:"required,oneof=text location"`
	Text      string             `json:"text"`
	Address   string             `json:"address"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
}

type rateRequest struct {
	ServiceID     string `json:"serviceId" binding:"required"`
	ApplicationID string `json:"applicationId" binding:"required"`
	Score         int    `json:"score" binding:"required,gte=1,lte=5"`
	Comment       string `json:"comment"`
	IsPublic      bool   `json:"isPublic"`
}

// pageResponse wraps a paged list with its cursor.
type pageResponse struct {
	Items   any    `json:"items"`
	LastID  string `json:"lastId,omitempty"`
	HasMore bool   `json:"hasMore"`
}

// writeError maps repository errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, repository.ErrAlreadyApplied):
		c.JSON(http.StatusConflict, ErrorResponse{Error: repository.ErrAlreadyApplied.Error()})
	case errors.Is(err, repository.ErrAlreadyRated):
		c.JSON(http.StatusConflict, ErrorResponse{Error: repository.ErrAlreadyRated.Error()})
	case errors.Is(err, repository.ErrIllegalTransition):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: repository.ErrIllegalTransition.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
}
