package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
)

// CatalogHandler serves the reference data consumed by the home screen.
type CatalogHandler struct {
	categories repository.CategoryRepository
	featured   repository.FeaturedRepository
	logger     *zap.Logger
}

func NewCatalogHandler(categories repository.CategoryRepository, featured repository.FeaturedRepository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{categories: categories, featured: featured, logger: logger}
}

// Categories handles GET /categories. The repository falls back to the
// built-in set when the collection is unreachable, so this never 500s
// for an empty catalog.
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.categories.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Featured handles GET /featured; active banners inside their display
// window, highest priority first.
func (h *CatalogHandler) Featured(c *gin.Context) {
	banners, err := h.featured.ActiveBanners(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, banners)
}
