package handler

import (
	"github.com/cvassistant/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CategoriesHandler serves GET /api/categories
type CategoriesHandler struct {
	BaseHandler
	categories []string
}

// NewCategoriesHandler creates a handler listing categories in the given order
func NewCategoriesHandler(categories []string) *CategoriesHandler {
	list := make([]string, len(categories))
	copy(list, categories)
	return &CategoriesHandler{categories: list}
}

// List returns the configured categories
func (h *CategoriesHandler) List(c *gin.Context) {
	h.Success(c, dto.CategoriesResponse{Categories: h.categories})
}
