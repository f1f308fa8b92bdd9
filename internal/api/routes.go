package api

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/middleware"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
	"github.com/AmauryLAPEYRE/Modelo/internal/viewmodel"
)

// Repositories bundles the stores the handlers are built on.
type Repositories struct {
	Users        repository.UserRepository
	Services     repository.ServiceRepository
	Applications repository.ApplicationRepository
	Messages     repository.MessageRepository
	Ratings      repository.RatingRepository
	Categories   repository.CategoryRepository
	Featured     repository.FeaturedRepository
}

// SetupRoutes wires every endpoint onto the engine. Global middleware
// (request logging, recovery, CORS) is expected to be installed by the
// caller before this runs.
func SetupRoutes(router *gin.Engine, firebaseAuth *auth.Client, authenticator viewmodel.Authenticator, repos Repositories, logger *zap.Logger) {
	authMW := middleware.AuthMiddleware(firebaseAuth, logger)

	userHandler := NewUserHandler(authenticator, repos.Users, repos.Ratings, logger)
	serviceHandler := NewServiceHandler(repos.Services, repos.Users, repos.Applications, logger)
	applicationHandler := NewApplicationHandler(repos.Applications, repos.Users, repos.Messages, logger)
	conversationHandler := NewConversationHandler(repos.Applications, repos.Messages, repos.Services, repos.Users, logger)
	catalogHandler := NewCatalogHandler(repos.Categories, repos.Featured, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		// Registration is the only endpoint without a verified token.
		apiV1.POST("/users/register", userHandler.Register)

		users := apiV1.Group("/users", authMW)
		{
			users.GET("/me", userHandler.Me)
			users.GET("/:userId", userHandler.Get)
			users.PUT("/me", userHandler.Update)
			users.POST("/me/picture", userHandler.UploadProfilePicture)
			users.POST("/me/photos", userHandler.UploadPhotos)
			users.DELETE("/me/photos", userHandler.RemovePhoto)
			users.POST("/:userId/block", userHandler.Block)
			users.DELETE("/:userId/block", userHandler.Unblock)
			users.GET("/:userId/ratings", userHandler.Ratings)
			users.POST("/:userId/ratings", userHandler.Rate)
		}

		services := apiV1.Group("/services", authMW)
		{
			services.GET("", serviceHandler.List)
			services.POST("", serviceHandler.Create)
			services.GET("/:serviceId", serviceHandler.Get)
			services.PUT("/:serviceId", serviceHandler.Update)
			services.PATCH("/:serviceId/status", serviceHandler.UpdateStatus)
			services.DELETE("/:serviceId", serviceHandler.Delete)
			services.POST("/:serviceId/images", serviceHandler.UploadImages)
			services.DELETE("/:serviceId/images", serviceHandler.RemoveImages)
			services.GET("/:serviceId/applications", serviceHandler.Applications)
			services.POST("/:serviceId/applications", serviceHandler.Apply)
		}

		applications := apiV1.Group("/applications", authMW)
		{
			applications.GET("", applicationHandler.Mine)
			applications.GET("/:applicationId", applicationHandler.Get)
			applications.PATCH("/:applicationId/status", applicationHandler.UpdateStatus)
			applications.POST("/:applicationId/photos", applicationHandler.UploadPhotos)
		}

		conversations := apiV1.Group("/conversations", authMW)
		{
			conversations.GET("", conversationHandler.Inbox)
			conversations.GET("/:conversationId/messages", conversationHandler.Messages)
			conversations.POST("/:conversationId/messages", conversationHandler.Send)
			conversations.POST("/:conversationId/media", conversationHandler.SendMedia)
			conversations.POST("/:conversationId/read", conversationHandler.MarkRead)
		}

		apiV1.GET("/categories", authMW, catalogHandler.Categories)
		apiV1.GET("/featured", authMW, catalogHandler.Featured)
	}
}
