package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

type userRepository struct {
	gw     gateway.Gateway
	blobs  gateway.BlobStore
	logger *zap.Logger
}

// NewUserRepository returns the users repository.
func NewUserRepository(gw gateway.Gateway, blobs gateway.BlobStore, logger *zap.Logger) UserRepository {
	return &userRepository{gw: gw, blobs: blobs, logger: logger}
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	doc, err := r.gw.GetByID(ctx, usersCollection, userID)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			r.logger.Error("get user failed", zap.String("userId", userID), zap.Error(err))
		}
		return nil, err
	}
	return decodeUser(doc), nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	// Profiles are keyed by the auth UID.
	if err := r.gw.Create(ctx, usersCollection, user.ID, encodeUser(user)); err != nil {
		r.logger.Error("create user failed", zap.String("userId", user.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, userID string, data map[string]any) error {
	if err := r.gw.Update(ctx, usersCollection, userID, data); err != nil {
		r.logger.Error("update user failed", zap.String("userId", userID), zap.Error(err))
		return err
	}
	return nil
}

func (r *userRepository) UpdateLastActive(ctx context.Context, userID string) error {
	return r.Update(ctx, userID, map[string]any{"lastActive": time.Now()})
}

func (r *userRepository) UploadProfilePicture(ctx context.Context, userID string, file Upload) (string, error) {
	path := fmt.Sprintf("%s/%s/profile-%d.jpg", profilesPath, userID, time.Now().UnixMilli())
	url, err := r.blobs.Upload(ctx, path, file.ContentType, file.Reader)
	if err != nil {
		r.logger.Error("profile picture upload failed", zap.String("userId", userID), zap.Error(err))
		return "", err
	}
	if err := r.Update(ctx, userID, map[string]any{"profilePicture": url}); err != nil {
		return "", err
	}
	return url, nil
}

func (r *userRepository) UploadModelPhotos(ctx context.Context, userID string, files []Upload) ([]string, error) {
	now := time.Now().UnixMilli()
	urls := make([]string, 0, len(files))
	for i, f := range files {
		path := fmt.Sprintf("%s/%s/photo-%d-%d.jpg", modelPhotosPath, userID, i, now)
		url, err := r.blobs.Upload(ctx, path, f.ContentType, f.Reader)
		if err != nil {
			r.logger.Error("model photo upload failed", zap.String("userId", userID), zap.Error(err))
			return nil, err
		}
		urls = append(urls, url)
	}

	union := make([]any, len(urls))
	for i, u := range urls {
		union[i] = u
	}
	if err := r.Update(ctx, userID, map[string]any{"photos": gateway.ArrayUnion(union...)}); err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *userRepository) RemoveModelPhoto(ctx context.Context, userID, photoURL string) error {
	if err := r.Update(ctx, userID, map[string]any{"photos": gateway.ArrayRemove(photoURL)}); err != nil {
		return err
	}
	if path, ok := r.blobs.PathFromURL(photoURL); ok {
		if err := r.blobs.Delete(ctx, path); err != nil {
			// The document no longer references the blob; an orphaned blob
			// is preferable to failing the user action.
			r.logger.Warn("orphaned model photo blob", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

func (r *userRepository) BlockUser(ctx context.Context, userID, blockedID string) error {
	return r.Update(ctx, userID, map[string]any{"blockedUsers": gateway.ArrayUnion(blockedID)})
}

func (r *userRepository) UnblockUser(ctx context.Context, userID, blockedID string) error {
	return r.Update(ctx, userID, map[string]any{"blockedUsers": gateway.ArrayRemove(blockedID)})
}

func (r *userRepository) AddFCMToken(ctx context.Context, userID, token string) error {
	return r.Update(ctx, userID, map[string]any{"fcmTokens": gateway.ArrayUnion(token)})
}

func (r *userRepository) RemoveFCMToken(ctx context.Context, userID, token string) error {
	return r.Update(ctx, userID, map[string]any{"fcmTokens": gateway.ArrayRemove(token)})
}

func (r *userRepository) SetRating(ctx context.Context, userID string, summary models.RatingSummary) error {
	return r.Update(ctx, userID, map[string]any{
		"rating": map[string]any{"average": summary.Average, "count": summary.Count},
	})
}

func (r *userRepository) Subscribe(ctx context.Context, userID string, fn func(*models.User)) (gateway.Unsubscribe, error) {
	return r.gw.SubscribeDocument(ctx, usersCollection, userID, func(doc *gateway.Document) {
		if doc == nil {
			fn(nil)
			return
		}
		fn(decodeUser(doc))
	})
}

func encodeUser(u *models.User) map[string]any {
	data := map[string]any{
		"email":       u.Email,
		"fullName":    u.FullName,
		"phoneNumber": u.PhoneNumber,
		"role":        string(u.Role),
		"bio":         u.Bio,
		"isVerified":  u.IsVerified,
		"location":    encodeLocation(u.Location),
		"interests":   u.Interests,
		"socialMedia": map[string]any{
			"instagram": u.SocialMedia.Instagram,
			"facebook":  u.SocialMedia.Facebook,
			"tiktok":    u.SocialMedia.TikTok,
			"portfolio": u.SocialMedia.Portfolio,
			"other":     u.SocialMedia.Other,
		},
	}
	if u.ProfilePicture != "" {
		data["profilePicture"] = u.ProfilePicture
	}
	if u.Rating != nil {
		data["rating"] = map[string]any{"average": u.Rating.Average, "count": u.Rating.Count}
	}
	if len(u.BlockedUsers) > 0 {
		data["blockedUsers"] = u.BlockedUsers
	}
	if len(u.FCMTokens) > 0 {
		data["fcmTokens"] = u.FCMTokens
	}
	switch u.Role {
	case models.RoleModel:
		m := u.Model
		data["age"] = m.Age
		data["gender"] = string(m.Gender)
		data["height"] = m.HeightCM
		data["hairColor"] = string(m.HairColor)
		data["eyeColor"] = string(m.EyeColor)
		data["photos"] = m.Photos
		data["experience"] = m.Experience
		data["availability"] = map[string]any{
			"days":      m.Availability.Days,
			"morning":   m.Availability.Morning,
			"afternoon": m.Availability.Afternoon,
			"evening":   m.Availability.Evening,
		}
	case models.RoleProfessional:
		p := u.Professional
		data["businessName"] = p.BusinessName
		data["status"] = string(p.Status)
		data["services"] = p.Services
		data["portfolio"] = p.Portfolio
	}
	return data
}

func decodeUser(doc *gateway.Document) *models.User {
	d := doc.Data
	u := &models.User{
		ID:             doc.ID,
		Email:          docString(d, "email"),
		FullName:       docString(d, "fullName"),
		PhoneNumber:    docString(d, "phoneNumber"),
		ProfilePicture: docString(d, "profilePicture"),
		Role:           models.UserRole(docString(d, "role")),
		Interests:      docStrings(d, "interests"),
		Bio:            docString(d, "bio"),
		IsVerified:     docBool(d, "isVerified"),
		BlockedUsers:   docStrings(d, "blockedUsers"),
		FCMTokens:      docStrings(d, "fcmTokens"),
		CreatedAt:      docTime(d, "createdAt"),
		UpdatedAt:      docTime(d, "updatedAt"),
		LastActive:     docTimePtr(d, "lastActive"),
		Location:       decodeLocation(docMap(d, "location")),
	}
	if sm := docMap(d, "socialMedia"); sm != nil {
		u.SocialMedia = models.SocialMedia{
			Instagram: docString(sm, "instagram"),
			Facebook:  docString(sm, "facebook"),
			TikTok:    docString(sm, "tiktok"),
			Portfolio: docString(sm, "portfolio"),
			Other:     docString(sm, "other"),
		}
	}
	if rt := docMap(d, "rating"); rt != nil {
		u.Rating = &models.RatingSummary{
			Average: docFloat(rt, "average"),
			Count:   docInt(rt, "count"),
		}
	}
	switch u.Role {
	case models.RoleModel:
		m := &models.ModelProfile{
			Age:        docInt(d, "age"),
			Gender:     models.Gender(docString(d, "gender")),
			HeightCM:   docInt(d, "height"),
			HairColor:  models.HairColor(docString(d, "hairColor")),
			EyeColor:   models.EyeColor(docString(d, "eyeColor")),
			Photos:     docStrings(d, "photos"),
			Experience: docString(d, "experience"),
		}
		if av := docMap(d, "availability"); av != nil {
			m.Availability = models.Availability{
				Days:      docStrings(av, "days"),
				Morning:   docBool(av, "morning"),
				Afternoon: docBool(av, "afternoon"),
				Evening:   docBool(av, "evening"),
			}
		}
		u.Model = m
	case models.RoleProfessional:
		u.Professional = &models.ProfessionalProfile{
			BusinessName: docString(d, "businessName"),
			Status:       models.ProfessionalStatus(docString(d, "status")),
			Services:     docStrings(d, "services"),
			Portfolio:    docStrings(d, "portfolio"),
		}
	}
	return u
}

func encodeLocation(l models.Location) map[string]any {
	data := map[string]any{
		"address":    l.Address,
		"city":       l.City,
		"postalCode": l.PostalCode,
		"radius":     l.RadiusKM,
	}
	if l.Coordinates != nil {
		data["coordinates"] = map[string]any{
			"latitude":  l.Coordinates.Latitude,
			"longitude": l.Coordinates.Longitude,
		}
	}
	return data
}

func decodeLocation(d map[string]any) models.Location {
	if d == nil {
		return models.Location{}
	}
	l := models.Location{
		Address:    docString(d, "address"),
		City:       docString(d, "city"),
		PostalCode: docString(d, "postalCode"),
		RadiusKM:   docInt(d, "radius"),
	}
	if c := docMap(d, "coordinates"); c != nil {
		l.Coordinates = &models.Coordinates{
			Latitude:  docFloat(c, "latitude"),
			Longitude: docFloat(c, "longitude"),
		}
	}
	return l
}
