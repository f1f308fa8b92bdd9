package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

type featuredRepository struct {
	gw     gateway.Gateway
	blobs  gateway.BlobStore
	logger *zap.Logger
}

// NewFeaturedRepository returns the home-screen banners repository.
func NewFeaturedRepository(gw gateway.Gateway, blobs gateway.BlobStore, logger *zap.Logger) FeaturedRepository {
	return &featuredRepository{gw: gw, blobs: blobs, logger: logger}
}

func (r *featuredRepository) GetByID(ctx context.Context, bannerID string) (*models.FeaturedBanner, error) {
	doc, err := r.gw.GetByID(ctx, bannersCollection, bannerID)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			r.logger.Error("get banner failed", zap.String("bannerId", bannerID), zap.Error(err))
		}
		return nil, err
	}
	return decodeBanner(doc), nil
}

// ActiveBanners returns the banners currently inside their date window,
// highest priority first. The date window is filtered client-side so the
// query needs no composite index.
func (r *featuredRepository) ActiveBanners(ctx context.Context) ([]*models.FeaturedBanner, error) {
	page, err := r.gw.Query(ctx, bannersCollection, gateway.Query{
		Filters: []gateway.Filter{{Field: "isActive", Op: gateway.OpEqual, Value: true}},
	})
	if err != nil {
		r.logger.Error("list banners failed", zap.Error(err))
		return nil, err
	}
	now := time.Now()
	out := make([]*models.FeaturedBanner, 0, len(page.Items))
	for i := range page.Items {
		b := decodeBanner(&page.Items[i])
		if b.Visible(now) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (r *featuredRepository) Create(ctx context.Context, banner *models.FeaturedBanner) (string, error) {
	id, err := r.gw.Add(ctx, bannersCollection, encodeBanner(banner))
	if err != nil {
		r.logger.Error("create banner failed", zap.Error(err))
		return "", err
	}
	return id, nil
}

func (r *featuredRepository) UploadBannerImage(ctx context.Context, bannerID string, file Upload) (string, error) {
	path := fmt.Sprintf("%s/%s-%d.jpg", bannerImagesPath, bannerID, time.Now().UnixMilli())
	url, err := r.blobs.Upload(ctx, path, file.ContentType, file.Reader)
	if err != nil {
		r.logger.Error("banner image upload failed", zap.String("bannerId", bannerID), zap.Error(err))
		return "", err
	}
	if err := r.gw.Update(ctx, bannersCollection, bannerID, map[string]any{"imageUrl": url}); err != nil {
		return "", err
	}
	return url, nil
}

func (r *featuredRepository) Delete(ctx context.Context, bannerID string) error {
	banner, err := r.GetByID(ctx, bannerID)
	if err != nil {
		return err
	}
	if err := r.gw.Delete(ctx, bannersCollection, bannerID); err != nil {
		r.logger.Error("delete banner failed", zap.String("bannerId", bannerID), zap.Error(err))
		return err
	}
	if path, ok := r.blobs.PathFromURL(banner.ImageURL); ok {
		if err := r.blobs.Delete(ctx, path); err != nil {
			r.logger.Warn("orphaned banner image blob", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

func encodeBanner(b *models.FeaturedBanner) map[string]any {
	return map[string]any{
		"title":       b.Title,
		"subtitle":    b.Subtitle,
		"imageUrl":    b.ImageURL,
		"type":        string(b.Type),
		"targetId":    b.TargetID,
		"externalUrl": b.ExternalURL,
		"startDate":   b.StartDate,
		"endDate":     b.EndDate,
		"isActive":    b.IsActive,
		"priority":    b.Priority,
	}
}

func decodeBanner(doc *gateway.Document) *models.FeaturedBanner {
	d := doc.Data
	return &models.FeaturedBanner{
		ID:          doc.ID,
		Title:       docString(d, "title"),
		Subtitle:    docString(d, "subtitle"),
		ImageURL:    docString(d, "imageUrl"),
		Type:        models.BannerType(docString(d, "type")),
		TargetID:    docString(d, "targetId"),
		ExternalURL: docString(d, "externalUrl"),
		StartDate:   docTime(d, "startDate"),
		EndDate:     docTime(d, "endDate"),
		IsActive:    docBool(d, "isActive"),
		Priority:    docInt(d, "priority"),
	}
}
