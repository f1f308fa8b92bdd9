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

// ApplicationHandler serves candidacy endpoints.
type ApplicationHandler struct {
	applications repository.ApplicationRepository
	users        repository.UserRepository
	messages     repository.MessageRepository
	logger       *zap.Logger
}

func NewApplicationHandler(applications repository.ApplicationRepository, users repository.UserRepository, messages repository.MessageRepository, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, users: users, messages: messages, logger: logger}
}

// Mine handles GET /applications; returns the caller's candidacies, as
// applicant for models and as recipient for professionals.
func (h *ApplicationHandler) Mine(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		writeError(c, err)
		return
	}

	var statuses []models.ApplicationStatus
	for _, s := range c.QueryArray("status") {
		statuses = append(statuses, models.ApplicationStatus(s))
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	startAfter := c.Query("startAfter")

	var page *repository.ApplicationPage
	if user.Role == models.RoleModel {
		page, err = h.applications.ForModel(ctx, uid, statuses, pageSize, startAfter)
	} else {
		page, err = h.applications.ForProfessional(ctx, uid, statuses, pageSize, startAfter)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse{Items: page.Applications, LastID: page.LastID, HasMore: page.HasMore})
}

// requireParticipant loads the candidacy and checks the caller is a party.
func (h *ApplicationHandler) requireParticipant(c *gin.Context) (*models.Application, bool) {
	app, err := h.applications.GetByID(c.Request.Context(), c.Param("applicationId"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if !app.Participant(middleware.UserID(c)) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a participant"})
		return nil, false
	}
	return app, true
}

// Get handles GET /applications/:applicationId; participants only.
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, ok := h.requireParticipant(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, app)
}

// UpdateStatus handles PATCH /applications/:applicationId/status. Who may
// request which transition depends on their side of the candidacy:
// professionals accept, reject and complete, models cancel.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	app, ok := h.requireParticipant(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	uid := middleware.UserID(c)
	status := models.ApplicationStatus(req.Status)
	switch status {
	case models.ApplicationAccepted, models.ApplicationRejected, models.ApplicationCompleted:
		if uid != app.ProfessionalID {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the listing owner can decide"})
			return
		}
	case models.ApplicationCancelled:
		if uid != app.ModelID {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the applicant can cancel"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown status"})
		return
	}

	ctx := c.Request.Context()
	if err := h.applications.UpdateStatus(ctx, app.ID, status, req.Reason); err != nil {
		writeError(c, err)
		return
	}

	// The applicant learns about decisions through the thread.
	switch status {
	case models.ApplicationAccepted:
		h.notify(c, app, "Votre candidature a ete acceptee.")
	case models.ApplicationRejected:
		h.notify(c, app, "Votre candidature n'a pas ete retenue.")
	}
	c.Status(http.StatusNoContent)
}

func (h *ApplicationHandler) notify(c *gin.Context, app *models.Application, text string) {
	if _, err := h.messages.SendSystem(c.Request.Context(), app.ID, app.ModelID, text); err != nil {
		h.logger.Warn("decision notice not sent",
			zap.String("applicationId", app.ID),
			zap.Error(err))
	}
}

// UploadPhotos handles POST /applications/:applicationId/photos; the
// applicant attaches portfolio shots to their candidacy.
func (h *ApplicationHandler) UploadPhotos(c *gin.Context) {
	app, ok := h.requireParticipant(c)
	if !ok {
		return
	}
	if middleware.UserID(c) != app.ModelID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the applicant can add photos"})
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

	urls, err := h.applications.UploadPhotos(c.Request.Context(), app.ID, uploads)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}
