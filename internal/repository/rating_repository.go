package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

type ratingRepository struct {
	gw     gateway.Gateway
	logger *zap.Logger
}

// NewRatingRepository returns the evaluations repository.
func NewRatingRepository(gw gateway.Gateway, logger *zap.Logger) RatingRepository {
	return &ratingRepository{gw: gw, logger: logger}
}

func (r *ratingRepository) GetByID(ctx context.Context, ratingID string) (*models.Rating, error) {
	doc, err := r.gw.GetByID(ctx, ratingsCollection, ratingID)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			r.logger.Error("get rating failed", zap.String("ratingId", ratingID), zap.Error(err))
		}
		return nil, err
	}
	return decodeRating(doc), nil
}

func (r *ratingRepository) ForUser(ctx context.Context, userID string, publicOnly bool) ([]*models.Rating, error) {
	q := gateway.Query{
		Filters: []gateway.Filter{{Field: "ratedUserId", Op: gateway.OpEqual, Value: userID}},
	}
	if publicOnly {
		q.Filters = append(q.Filters, gateway.Filter{Field: "isPublic", Op: gateway.OpEqual, Value: true})
	}
	return r.query(ctx, q)
}

func (r *ratingRepository) ForService(ctx context.Context, serviceID string) ([]*models.Rating, error) {
	return r.query(ctx, gateway.Query{
		Filters: []gateway.Filter{{Field: "serviceId", Op: gateway.OpEqual, Value: serviceID}},
	})
}

func (r *ratingRepository) HasRated(ctx context.Context, raterUserID, serviceID string) (bool, error) {
	page, err := r.gw.Query(ctx, ratingsCollection, gateway.Query{
		Filters: []gateway.Filter{
			{Field: "raterUserId", Op: gateway.OpEqual, Value: raterUserID},
			{Field: "serviceId", Op: gateway.OpEqual, Value: serviceID},
		},
		Limit: 1,
	})
	if err != nil {
		r.logger.Error("rated check failed", zap.String("serviceId", serviceID), zap.Error(err))
		return false, err
	}
	return len(page.Items) > 0, nil
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) (string, error) {
	if rating.Score < 1 || rating.Score > 5 {
		return "", fmt.Errorf("rating score %d out of range", rating.Score)
	}
	rated, err := r.HasRated(ctx, rating.RaterUserID, rating.ServiceID)
	if err != nil {
		return "", err
	}
	if rated {
		return "", fmt.Errorf("service %s, rater %s: %w", rating.ServiceID, rating.RaterUserID, ErrAlreadyRated)
	}

	id, err := r.gw.Add(ctx, ratingsCollection, encodeRating(rating))
	if err != nil {
		r.logger.Error("create rating failed", zap.Error(err))
		return "", err
	}

	if err := r.refreshAggregate(ctx, rating.RatedUserID); err != nil {
		r.logger.Warn("rating aggregate refresh failed", zap.String("userId", rating.RatedUserID), zap.Error(err))
	}
	return id, nil
}

func (r *ratingRepository) Delete(ctx context.Context, ratingID string) error {
	rating, err := r.GetByID(ctx, ratingID)
	if err != nil {
		return err
	}
	if err := r.gw.Delete(ctx, ratingsCollection, ratingID); err != nil {
		r.logger.Error("delete rating failed", zap.String("ratingId", ratingID), zap.Error(err))
		return err
	}
	if err := r.refreshAggregate(ctx, rating.RatedUserID); err != nil {
		r.logger.Warn("rating aggregate refresh failed", zap.String("userId", rating.RatedUserID), zap.Error(err))
	}
	return nil
}

// refreshAggregate recomputes the rated user's denormalized average from
// all stored ratings and writes it to the user document, rounded to one
// decimal place.
func (r *ratingRepository) refreshAggregate(ctx context.Context, userID string) error {
	ratings, err := r.ForUser(ctx, userID, false)
	if err != nil {
		return err
	}
	summary := map[string]any{"average": 0.0, "count": 0}
	if len(ratings) > 0 {
		var sum int
		for _, rt := range ratings {
			sum += rt.Score
		}
		avg := float64(sum) / float64(len(ratings))
		summary["average"] = math.Round(avg*10) / 10
		summary["count"] = len(ratings)
	}
	return r.gw.Update(ctx, usersCollection, userID, map[string]any{"rating": summary})
}

func (r *ratingRepository) query(ctx context.Context, q gateway.Query) ([]*models.Rating, error) {
	page, err := r.gw.Query(ctx, ratingsCollection, q)
	if err != nil {
		r.logger.Error("list ratings failed", zap.Error(err))
		return nil, err
	}
	out := make([]*models.Rating, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, decodeRating(&page.Items[i]))
	}
	return out, nil
}

func encodeRating(rt *models.Rating) map[string]any {
	return map[string]any{
		"serviceId":     rt.ServiceID,
		"applicationId": rt.ApplicationID,
		"ratedUserId":   rt.RatedUserID,
		"raterUserId":   rt.RaterUserID,
		"score":         rt.Score,
		"comment":       rt.Comment,
		"isPublic":      rt.IsPublic,
	}
}

func decodeRating(doc *gateway.Document) *models.Rating {
	d := doc.Data
	return &models.Rating{
		ID:            doc.ID,
		ServiceID:     docString(d, "serviceId"),
		ApplicationID: docString(d, "applicationId"),
		RatedUserID:   docString(d, "ratedUserId"),
		RaterUserID:   docString(d, "raterUserId"),
		Score:         docInt(d, "score"),
		Comment:       docString(d, "comment"),
		IsPublic:      docBool(d, "isPublic"),
		CreatedAt:     docTime(d, "createdAt"),
		UpdatedAt:     docTimePtr(d, "updatedAt"),
	}
}
