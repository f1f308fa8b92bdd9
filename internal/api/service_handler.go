package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/middleware"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
)

// ServiceHandler serves listing endpoints.
type ServiceHandler struct {
	services     repository.ServiceRepository
	users        repository.UserRepository
	applications repository.ApplicationRepository
	logger       *zap.Logger
}

func NewServiceHandler(services repository.ServiceRepository, users repository.UserRepository, applications repository.ApplicationRepository, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{services: services, users: users, applications: applications, logger: logger}
}

// List handles GET /services with query filters and cursor pagination.
func (h *ServiceHandler) List(c *gin.Context) {
	filters := repository.ServiceFilters{
		Type:           models.ServiceType(c.Query("type")),
		City:           c.Query("city"),
		ProfessionalID: c.Query("professionalId"),
		OnlyUrgent:     c.Query("urgent") == "true",
	}
	if status := c.Query("status"); status != "" {
		filters.Statuses = []models.ServiceStatus{models.ServiceStatus(status)}
	} else {
		filters.Statuses = []models.ServiceStatus{models.ServiceActive}
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))

	page, err := h.services.List(c.Request.Context(), filters, pageSize, c.Query("startAfter"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse{Items: page.Services, LastID: page.LastID, HasMore: page.HasMore})
}

// Get handles GET /services/:serviceId.
func (h *ServiceHandler) Get(c *gin.Context) {
	service, err := h.services.GetByID(c.Request.Context(), c.Param("serviceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

// Create handles POST /services; professionals only.
func (h *ServiceHandler) Create(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	if user.Role != models.RoleProfessional {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only professionals can create listings"})
		return
	}
	if req.PaymentType == models.PaymentPaid && req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "paid listing needs an amount"})
		return
	}

	status := models.ServiceDraft
	if req.Publish {
		status = models.ServiceActive
	}
	service := &models.Service{
		ProfessionalID: uid,
		Title:          req.Title,
		Description:    req.Description,
		Types:          req.Types,
		Status:         status,
		IsUrgent:       req.IsUrgent,
		Criteria:       req.Criteria,
		Date: models.ServiceDate{
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			DurationMinutes: req.Duration,
			IsFlexible:      req.IsFlexible,
		},
		Location: models.ServiceLocation{
			Address:    req.Address,
			City:       req.City,
			PostalCode: req.PostalCode,
			IsRemote:   req.IsRemote,
		},
		Payment: models.ServicePayment{
			Type:    req.PaymentType,
			Amount:  req.Amount,
			Details: req.Details,
		},
	}
	if req.Latitude != nil && req.Longitude != nil {
		service.Location.Coordinates = &models.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	id, err := h.services.Create(ctx, service)
	if err != nil {
		writeError(c, err)
		return
	}
	service.ID = id
	c.JSON(http.StatusCreated, service)
}

// requireOwner loads the listing and checks the caller owns it.
func (h *ServiceHandler) requireOwner(c *gin.Context) (*models.Service, bool) {
	service, err := h.services.GetByID(c.Request.Context(), c.Param("serviceId"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if service.ProfessionalID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not the listing owner"})
		return nil, false
	}
	return service, true
}

// Update handles PUT /services/:serviceId with a partial field map.
func (h *ServiceHandler) Update(c *gin.Context) {
	service, ok := h.requireOwner(c)
	if !ok {
		return
	}
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		bindError(c, err)
		return
	}
	// Ownership, status and the cached counter have their own endpoints.
	delete(data, "professionalId")
	delete(data, "status")
	delete(data, "applicationCount")

	if err := h.services.Update(c.Request.Context(), service.ID, data); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus handles PATCH /services/:serviceId/status.
func (h *ServiceHandler) UpdateStatus(c *gin.Context) {
	service, ok := h.requireOwner(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.services.UpdateStatus(c.Request.Context(), service.ID, models.ServiceStatus(req.Status)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /services/:serviceId.
func (h *ServiceHandler) Delete(c *gin.Context) {
	service, ok := h.requireOwner(c)
	if !ok {
		return
	}
	if err := h.services.Delete(c.Request.Context(), service.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImages handles POST /services/:serviceId/images (multipart).
func (h *ServiceHandler) UploadImages(c *gin.Context) {
	service, ok := h.requireOwner(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		bindError(c, err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files"})
		return
	}

	uploads := make([]repository.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(c, err)
			return
		}
		defer f.Close()
		uploads = append(uploads, repository.Upload{Reader: f, ContentType: fh.Header.Get("Content-Type")})
	}

	urls, err := h.services.UploadImages(c.Request.Context(), service.ID, uploads)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

// RemoveImages handles DELETE /services/:serviceId/images with a JSON
// body listing the image URLs to drop.
func (h *ServiceHandler) RemoveImages(c *gin.Context) {
	service, ok := h.requireOwner(c)
	if !ok {
		return
	}
	var req struct {
		URLs []string `json:"urls" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.services.RemoveImages(c.Request.Context(), service.ID, req.URLs); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Applications handles GET /services/:serviceId/applications; owner only.
func (h *ServiceHandler) Applications(c *gin.Context) {
	service, ok := h.requireOwner(c)
	if !ok {
		return
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	page, err := h.applications.ForService(c.Request.Context(), service.ID, pageSize, c.Query("startAfter"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse{Items: page.Applications, LastID: page.LastID, HasMore: page.HasMore})
}

// Apply handles POST /services/:serviceId/applications; models only.
func (h *ServiceHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		writeError(c, err)
		return
	}
	if user.Role != models.RoleModel {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only models can apply"})
		return
	}

	service, err := h.services.GetByID(ctx, c.Param("serviceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if service.Status != models.ServiceActive {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "listing is not open for applications"})
		return
	}
	if service.ProfessionalID == uid {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "cannot apply to your own listing"})
		return
	}

	app := &models.Application{
		ServiceID:      service.ID,
		ModelID:        uid,
		ProfessionalID: service.ProfessionalID,
		Message:        req.Message,
	}
	id, err := h.applications.Create(ctx, app)
	if err != nil {
		writeError(c, err)
		return
	}
	app.ID = id
	c.JSON(http.StatusCreated, app)
}
