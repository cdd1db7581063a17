package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
)

// TaxonomyHandler serves the static category and county tables
type TaxonomyHandler struct {
	taxonomy *domain.Taxonomy
}

// NewTaxonomyHandler creates a new TaxonomyHandler
func NewTaxonomyHandler(taxonomy *domain.Taxonomy) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

// ListCategories handles GET /api/v1/taxonomy/categories
// @Summary List categories
// @Tags taxonomy
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.Category}
// @Router /taxonomy/categories [get]
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	common.SuccessResponse(c, h.taxonomy.Categories(), nil)
}

// ListCounties handles GET /api/v1/taxonomy/counties
// @Summary List counties
// @Tags taxonomy
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.County}
// @Router /taxonomy/counties [get]
func (h *TaxonomyHandler) ListCounties(c *gin.Context) {
	common.SuccessResponse(c, h.taxonomy.Counties(), nil)
}
