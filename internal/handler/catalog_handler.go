package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/utils"
)

// CatalogHandler serves categories and occupations straight from the store.
type CatalogHandler struct {
	catalog service.CatalogStore
}

func NewCatalogHandler(catalog service.CatalogStore) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, categories)
}

// GetOccupations lists occupations, optionally of one category. An unknown
// category is a 404 rather than an empty list.
// GET /api/occupations[?category=ID]
func (h *CatalogHandler) GetOccupations(c *gin.Context) {
	categoryID, ok := queryID(c, "category")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if categoryID > 0 {
		exists, err := h.catalog.CategoryExists(ctx, categoryID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !exists {
			utils.Error(c, 404, "NOT_FOUND", "Category does not exist")
			return
		}
	}
	occupations, err := h.catalog.GetOccupations(ctx, categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.List(c, occupations)
}
