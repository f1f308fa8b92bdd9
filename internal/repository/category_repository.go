package repository

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/models"
)

type categoryRepository struct {
	gw     gateway.Gateway
	logger *zap.Logger
}

// NewCategoryRepository returns the reference-categories repository.
func NewCategoryRepository(gw gateway.Gateway, logger *zap.Logger) CategoryRepository {
	return &categoryRepository{gw: gw, logger: logger}
}

func (r *categoryRepository) GetByID(ctx context.Context, categoryID string) (*models.Category, error) {
	doc, err := r.gw.GetByID(ctx, categoriesCollection, categoryID)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			r.logger.Error("get category failed", zap.String("categoryId", categoryID), zap.Error(err))
		}
		return nil, err
	}
	return decodeCategory(doc), nil
}

// ListActive returns the active categories ordered by their display order.
// When the collection is unreachable or empty the built-in defaults are
// served so listing filters never lose their options.
func (r *categoryRepository) ListActive(ctx context.Context) ([]*models.Category, error) {
	page, err := r.gw.Query(ctx, categoriesCollection, gateway.Query{
		Filters: []gateway.Filter{{Field: "isActive", Op: gateway.OpEqual, Value: true}},
		OrderBy: "order",
	})
	if err != nil {
		r.logger.Warn("category fetch failed, serving defaults", zap.Error(err))
		return models.DefaultCategories(), nil
	}
	if len(page.Items) == 0 {
		return models.DefaultCategories(), nil
	}
	out := make([]*models.Category, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, decodeCategory(&page.Items[i]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) (string, error) {
	id, err := r.gw.Add(ctx, categoriesCollection, encodeCategory(category))
	if err != nil {
		r.logger.Error("create category failed", zap.Error(err))
		return "", err
	}
	return id, nil
}

func (r *categoryRepository) Update(ctx context.Context, categoryID string, data map[string]any) error {
	if err := r.gw.Update(ctx, categoriesCollection, categoryID, data); err != nil {
		r.logger.Error("update category failed", zap.String("categoryId", categoryID), zap.Error(err))
		return err
	}
	return nil
}

func (r *categoryRepository) Deactivate(ctx context.Context, categoryID string) error {
	return r.Update(ctx, categoryID, map[string]any{"isActive": false})
}

func encodeCategory(c *models.Category) map[string]any {
	return map[string]any{
		"name":     c.Name,
		"icon":     c.Icon,
		"color":    c.Color,
		"order":    c.Order,
		"isActive": c.IsActive,
	}
}

func decodeCategory(doc *gateway.Document) *models.Category {
	d := doc.Data
	return &models.Category{
		ID:       doc.ID,
		Name:     docString(d, "name"),
		Icon:     docString(d, "icon"),
		Color:    docString(d, "color"),
		Order:    docInt(d, "order"),
		IsActive: docBool(d, "isActive"),
	}
}
