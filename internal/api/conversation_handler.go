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

// ConversationHandler serves the messaging endpoints. A conversation is
// the thread attached to one accepted candidacy.
type ConversationHandler struct {
	applications repository.ApplicationRepository
	messages     repository.MessageRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
	logger       *zap.Logger
}

func NewConversationHandler(applications repository.ApplicationRepository, messages repository.MessageRepository, services repository.ServiceRepository, users repository.UserRepository, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{applications: applications, messages: messages, services: services, users: users, logger: logger}
}

type conversationSummary struct {
	ID            string          `json:"id"`
	PartnerID     string          `json:"partnerId"`
	PartnerName   string          `json:"partnerName"`
	PartnerAvatar string          `json:"partnerAvatar,omitempty"`
	ServiceID     string          `json:"serviceId"`
	ServiceTitle  string          `json:"serviceTitle"`
	LastMessage   *models.Message `json:"lastMessage,omitempty"`
	Unread        bool            `json:"unread"`
}

// Inbox handles GET /conversations. Threads exist for accepted and
// completed candidacies the caller is a party to.
func (h *ConversationHandler) Inbox(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)

	user, err := h.users.GetByID(ctx, uid)
	if err != nil {
		writeError(c, err)
		return
	}

	statuses := []models.ApplicationStatus{models.ApplicationAccepted, models.ApplicationCompleted}
	var page *repository.ApplicationPage
	if user.Role == models.RoleModel {
		page, err = h.applications.ForModel(ctx, uid, statuses, 0, "")
	} else {
		page, err = h.applications.ForProfessional(ctx, uid, statuses, 0, "")
	}
	if err != nil {
		writeError(c, err)
		return
	}

	summaries := make([]conversationSummary, 0, len(page.Applications))
	for _, app := range page.Applications {
		summary := conversationSummary{
			ID:        app.ID,
			PartnerID: app.PartnerOf(uid),
			ServiceID: app.ServiceID,
			Unread:    app.HasUnreadMessages,
		}
		if partner, err := h.users.GetByID(ctx, summary.PartnerID); err == nil {
			summary.PartnerName = partner.FullName
			summary.PartnerAvatar = partner.ProfilePicture
		} else {
			h.logger.Warn("inbox partner lookup failed",
				zap.String("userId", summary.PartnerID),
				zap.Error(err))
		}
		if service, err := h.services.GetByID(ctx, app.ServiceID); err == nil {
			summary.ServiceTitle = service.Title
		}
		if msgs, err := h.messages.ConversationMessages(ctx, app.ID, 1, ""); err == nil && len(msgs.Messages) > 0 {
			summary.LastMessage = msgs.Messages[len(msgs.Messages)-1]
		}
		summaries = append(summaries, summary)
	}
	c.JSON(http.StatusOK, summaries)
}

// requireThread loads the backing candidacy and checks the caller is a party.
func (h *ConversationHandler) requireThread(c *gin.Context) (*models.Application, bool) {
	app, err := h.applications.GetByID(c.Request.Context(), c.Param("conversationId"))
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

// Messages handles GET /conversations/:conversationId/messages.
func (h *ConversationHandler) Messages(c *gin.Context) {
	app, ok := h.requireThread(c)
	if !ok {
		return
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	page, err := h.messages.ConversationMessages(c.Request.Context(), app.ID, pageSize, c.Query("startAfter"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResponse{Items: page.Messages, LastID: page.LastID, HasMore: page.HasMore})
}

// Send handles POST /conversations/:conversationId/messages.
func (h *ConversationHandler) Send(c *gin.Context) {
	app, ok := h.requireThread(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	receiver := app.PartnerOf(uid)

	var (
		id  string
		err error
	)
	switch req.Type {
	case models.MessageText:
		if req.Text == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty message"})
			return
		}
		id, err = h.messages.SendText(ctx, app.ID, uid, receiver, req.Text)
	case models.MessageLocation:
		id, err = h.messages.SendLocation(ctx, app.ID, uid, receiver, models.MessageLocationContent{
			Address:   req.Address,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		})
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// SendMedia handles POST /conversations/:conversationId/media (multipart,
// one image or video per request).
func (h *ConversationHandler) SendMedia(c *gin.Context) {
	app, ok := h.requireThread(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		bindError(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	mediaType := models.MessageImage
	if c.PostForm("type") == string(models.MessageVideo) {
		mediaType = models.MessageVideo
	}

	uid := middleware.UserID(c)
	id, err := h.messages.SendMedia(c.Request.Context(), app.ID, uid, app.PartnerOf(uid),
		repository.Upload{Reader: f, ContentType: fh.Header.Get("Content-Type")}, mediaType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// MarkRead handles POST /conversations/:conversationId/read; marks every
// message addressed to the caller as read.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	app, ok := h.requireThread(c)
	if !ok {
		return
	}
	if err := h.messages.MarkAllRead(c.Request.Context(), app.ID, middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
