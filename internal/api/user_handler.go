package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/middleware"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/viewmodel"
)

// UserHandler serves account and profile endpoints.
type UserHandler struct {
	auth    viewmodel.Authenticator
	users   repository.UserRepository
	ratings repository.RatingRepository
	logger  *zap.Logger
}

func NewUserHandler(auth viewmodel.Authenticator, users repository.UserRepository, ratings repository.RatingRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{auth: auth, users: users, ratings: ratings, logger: logger}
}

// Register handles POST /users/register. The auth record is created
// first; if the profile write fails the record is deleted again.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	uid, err := h.auth.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("auth record creation failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusConflict, ErrorResponse{Error: "account creation failed"})
		return
	}

	user := &models.User{
		ID:          uid,
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	}
	switch req.Role {
	case models.RoleModel:
		user.Model = &models.ModelProfile{Age: req.Age, Gender: req.Gender, HeightCM: req.Height}
	case models.RoleProfessional:
		user.Professional = &models.ProfessionalProfile{BusinessName: req.BusinessName, Status: models.StatusFreelance}
	}

	if err := h.users.Create(ctx, user); err != nil {
		if delErr := h.auth.DeleteUser(ctx, uid); delErr != nil {
			h.logger.Error("auth record rollback failed", zap.String("uid", uid), zap.Error(delErr))
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Get handles GET /users/:userId.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update handles PUT /users/me with a partial field map.
func (h *UserHandler) Update(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		bindError(c, err)
		return
	}
	// Identity and role are not editable through this endpoint.
	delete(data, "email")
	delete(data, "role")

	uid := middleware.UserID(c)
	if err := h.users.Update(c.Request.Context(), uid, data); err != nil {
		writeError(c, err)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadProfilePicture handles POST /users/me/picture (multipart).
func (h *UserHandler) UploadProfilePicture(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		bindError(c, err)
		return
	}
	f, err := file.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	url, err := h.users.UploadProfilePicture(c.Request.Context(), middleware.UserID(c), repository.Upload{
		Reader:      f,
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// UploadPhotos handles POST /users/me/photos (multipart, model book).
func (h *UserHandler) UploadPhotos(c *gin.Context) {
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

	urls, err := h.users.UploadModelPhotos(c.Request.Context(), middleware.UserID(c), uploads)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

// RemovePhoto handles DELETE /users/me/photos.
func (h *UserHandler) RemovePhoto(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.users.RemoveModelPhoto(c.Request.Context(), middleware.UserID(c), req.URL); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Block handles POST /users/me/blocked/:userId.
func (h *UserHandler) Block(c *gin.Context) {
	target := c.Param("userId")
	uid := middleware.UserID(c)
	if target == uid {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot block yourself"})
		return
	}
	if err := h.users.BlockUser(c.Request.Context(), uid, target); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unblock handles DELETE /users/me/blocked/:userId.
func (h *UserHandler) Unblock(c *gin.Context) {
	if err := h.users.UnblockUser(c.Request.Context(), middleware.UserID(c), c.Param("userId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Ratings handles GET /users/:userId/ratings. Only the owner sees private
// evaluations.
func (h *UserHandler) Ratings(c *gin.Context) {
	target := c.Param("userId")
	publicOnly := target != middleware.UserID(c)
	ratings, err := h.ratings.ForUser(c.Request.Context(), target, publicOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

// Rate handles POST /users/:userId/ratings.
func (h *UserHandler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	id, err := h.ratings.Create(c.Request.Context(), &models.Rating{
		ServiceID:     req.ServiceID,
		ApplicationID: req.ApplicationID,
		RatedUserID:   c.Param("userId"),
		RaterUserID:   middleware.UserID(c),
		Score:         req.Score,
		Comment:       req.Comment,
		IsPublic:      req.IsPublic,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
