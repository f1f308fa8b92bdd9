package repository

import (
	"context"
	"io"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

// Upload is one media file headed for blob storage.
type Upload struct {
	Reader      io.Reader
	ContentType string
}

// ServicePage is one page of listings.
type ServicePage struct {
	Services []*models.Service
	LastID   string
	HasMore  bool
}

// ApplicationPage is one page of candidacies.
type ApplicationPage struct {
	Applications []*models.Application
	LastID       string
	HasMore      bool
}

// MessagePage is one page of a conversation, oldest first.
type MessagePage struct {
	Messages []*models.Message
	LastID   string
	HasMore  bool
}

// ServiceFilters narrow a listing query. Zero values are ignored.
type ServiceFilters struct {
	Statuses       []models.ServiceStatus
	Type           models.ServiceType
	City           string
	ProfessionalID string
	OnlyUrgent     bool
}

// UserRepository stores marketplace accounts. The document ID is the
// Firebase Auth UID.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, userID string, data map[string]any) error
	UpdateLastActive(ctx context.Context, userID string) error
	UploadProfilePicture(ctx context.Context, userID string, file Upload) (string, error)
	UploadModelPhotos(ctx context.Context, userID string, files []Upload) ([]string, error)
	RemoveModelPhoto(ctx context.Context, userID, photoURL string) error
	BlockUser(ctx context.Context, userID, blockedID string) error
	UnblockUser(ctx context.Context, userID, blockedID string) error
	AddFCMToken(ctx context.Context, userID, token string) error
	RemoveFCMToken(ctx context.Context, userID, token string) error
	SetRating(ctx context.Context, userID string, summary models.RatingSummary) error
	Subscribe(ctx context.Context, userID string, fn func(*models.User)) (gateway.Unsubscribe, error)
}

// ServiceRepository stores listings.
type ServiceRepository interface {
	GetByID(ctx context.Context, serviceID string) (*models.Service, error)
	List(ctx context.Context, filters ServiceFilters, pageSize int, startAfter string) (*ServicePage, error)
	Create(ctx context.Context, service *models.Service) (string, error)
	Update(ctx context.Context, serviceID string, data map[string]any) error
	UpdateStatus(ctx context.Context, serviceID string, status models.ServiceStatus) error
	Delete(ctx context.Context, serviceID string) error
	UploadImages(ctx context.Context, serviceID string, files []Upload) ([]string, error)
	RemoveImages(ctx context.Context, serviceID string, imageURLs []string) error
	IncrementApplicationCount(ctx context.Context, serviceID string, delta int64) error
	Subscribe(ctx context.Context, serviceID string, fn func(*models.Service)) (gateway.Unsubscribe, error)
}

// ApplicationRepository stores candidacies.
type ApplicationRepository interface {
	GetByID(ctx context.Context, applicationID string) (*models.Application, error)
	ForService(ctx context.Context, serviceID string, pageSize int, startAfter string) (*ApplicationPage, error)
	ForModel(ctx context.Context, modelID string, statuses []models.ApplicationStatus, pageSize int, startAfter string) (*ApplicationPage, error)
	ForProfessional(ctx context.Context, professionalID string, statuses []models.ApplicationStatus, pageSize int, startAfter string) (*ApplicationPage, error)
	Create(ctx context.Context, application *models.Application) (string, error)
	UpdateStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, rejectionReason string) error
	UploadPhotos(ctx context.Context, applicationID string, files []Upload) ([]string, error)
	SetUnreadMessages(ctx context.Context, applicationID string, unread bool) error
	Delete(ctx context.Context, applicationID string) error
	Subscribe(ctx context.Context, applicationID string, fn func(*models.Application)) (gateway.Unsubscribe, error)
	SubscribeForModel(ctx context.Context, modelID string, fn func([]*models.Application)) (gateway.Unsubscribe, error)
	SubscribeForProfessional(ctx context.Context, professionalID string, fn func([]*models.Application)) (gateway.Unsubscribe, error)
}

// MessageRepository stores conversation messages. A conversation ID is the
// ID of the application the thread belongs to.
type MessageRepository interface {
	GetByID(ctx context.Context, messageID string) (*models.Message, error)
	ConversationMessages(ctx context.Context, conversationID string, pageSize int, startAfter string) (*MessagePage, error)
	SendText(ctx context.Context, conversationID, senderID, receiverID, text string) (string, error)
	SendMedia(ctx context.Context, conversationID, senderID, receiverID string, file Upload, mediaType models.MessageType) (string, error)
	SendLocation(ctx context.Context, conversationID, senderID, receiverID string, loc models.MessageLocationContent) (string, error)
	SendSystem(ctx context.Context, conversationID, receiverID, text string) (string, error)
	MarkRead(ctx context.Context, messageID string) error
	MarkAllRead(ctx context.Context, conversationID, receiverID string) error
	SubscribeToConversation(ctx context.Context, conversationID string, fn func([]*models.Message)) (gateway.Unsubscribe, error)
}

// RatingRepository stores evaluations and keeps the rated user's
// denormalized aggregate current.
type RatingRepository interface {
	GetByID(ctx context.Context, ratingID string) (*models.Rating, error)
	ForUser(ctx context.Context, userID string, publicOnly bool) ([]*models.Rating, error)
	ForService(ctx context.Context, serviceID string) ([]*models.Rating, error)
	HasRated(ctx context.Context, raterUserID, serviceID string) (bool, error)
	Create(ctx context.Context, rating *models.Rating) (string, error)
	Delete(ctx context.Context, ratingID string) error
}

// CategoryRepository stores the reference categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, categoryID string) (*models.Category, error)
	ListActive(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) (string, error)
	Update(ctx context.Context, categoryID string, data map[string]any) error
	Deactivate(ctx context.Context, categoryID string) error
}

// FeaturedRepository stores home-screen banners.
type FeaturedRepository interface {
	GetByID(ctx context.Context, bannerID string) (*models.FeaturedBanner, error)
	ActiveBanners(ctx context.Context) ([]*models.FeaturedBanner, error)
	Create(ctx context.Context, banner *models.FeaturedBanner) (string, error)
	UploadBannerImage(ctx context.Context, bannerID string, file Upload) (string, error)
	Delete(ctx context.Context, bannerID string) error
}
