package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/middleware"
	"github.com/annonstorg/annonstorg-backend/internal/repository"
	"github.com/annonstorg/annonstorg-backend/internal/service"
)

// AdHandler handles listing requests
type AdHandler struct {
	service service.AdService
}

// NewAdHandler creates a new AdHandler
func NewAdHandler(service service.AdService) *AdHandler {
	return &AdHandler{service: service}
}

// parseIDParam reads a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func pagingQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}

// ListAds handles GET /api/v1/ads
// @Summary List live ads
// @Description Lists live ads, newest first, filterable by category and county
// @Tags ads
// @Produce json
// @Param category query string false "Category slug"
// @Param county query string false "County slug"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} common.APIResponse{data=[]domain.AdListResponse}
// @Router /ads [get]
func (h *AdHandler) ListAds(c *gin.Context) {
	page, limit := pagingQuery(c)
	ads, meta, err := h.service.ListAds(&repository.AdListParams{
		CategorySlug: c.Query("category"),
		CountySlug:   c.Query("county"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, ads, meta)
}

// SearchAds handles GET /api/v1/ads/search
// @Summary Full-text ad search
// @Tags ads
// @Produce json
// @Param q query string true "Search phrase"
// @Param category query string false "Category slug"
// @Param county query string false "County slug"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.AdListResponse}
// @Router /ads/search [get]
func (h *AdHandler) SearchAds(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing search phrase", nil)
		return
	}
	page, limit := pagingQuery(c)
	ads, meta, err := h.service.SearchAds(query, c.Query("category"), c.Query("county"), page, limit)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, ads, meta)
}

// GetAd handles GET /api/v1/ads/:id
// @Summary Get one ad
// @Tags ads
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} common.APIResponse{data=domain.AdResponse}
// @Failure 404 {object} common.APIResponse
// @Router /ads/{id} [get]
func (h *AdHandler) GetAd(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ad, err := h.service.GetAd(id)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, ad, nil)
}

// CreateAd handles POST /api/v1/ads
// @Summary Create an ad
// @Tags ads
// @Accept json
// @Produce json
// @Param request body domain.CreateAdRequest true "Ad fields"
// @Success 201 {object} common.APIResponse{data=domain.AdResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /ads [post]
func (h *AdHandler) CreateAd(c *gin.Context) {
	var req domain.CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ad, err := h.service.CreateAd(middleware.GetUserID(c), &req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.CreatedResponse(c, ad)
}

// UpdateAd handles PATCH /api/v1/ads/:id
// @Summary Update own ad
// @Description Partial update; only supplied fields change. Status accepts ok|sold.
// @Tags ads
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body domain.UpdateAdRequest true "Fields to change"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /ads/{id} [patch]
func (h *AdHandler) UpdateAd(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req domain.UpdateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.service.UpdateAd(id, middleware.GetUserID(c), &req); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"updated": true}, nil)
}

// DeleteAd handles DELETE /api/v1/ads/:id
// @Summary Delete own ad
// @Tags ads
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /ads/{id} [delete]
func (h *AdHandler) DeleteAd(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteAd(id, middleware.GetUserID(c)); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// ListMyAds handles GET /api/v1/me/ads
// @Summary List own ads
// @Description All own ads regardless of status, except purged ones
// @Tags ads
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.AdListResponse}
// @Security BearerAuth
// @Router /me/ads [get]
func (h *AdHandler) ListMyAds(c *gin.Context) {
	page, limit := pagingQuery(c)
	ads, meta, err := h.service.ListMyAds(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, ads, meta)
}

// UploadImage handles POST /api/v1/ads/:id/images
// @Summary Attach an image to own ad
// @Tags ads
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Ad ID"
// @Param image formData file true "Image file"
// @Success 201 {object} common.APIResponse{data=domain.ImageResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /ads/{id}/images [post]
func (h *AdHandler) UploadImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing image file", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Unreadable image file", err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	img, err := h.service.AddImage(id, middleware.GetUserID(c), fileHeader.Filename, contentType, file)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.CreatedResponse(c, img)
}

// DeleteImage handles DELETE /api/v1/ads/:id/images/:imageID
// @Summary Remove an image from own ad
// @Tags ads
// @Produce json
// @Param id path int true "Ad ID"
// @Param imageID path int true "Image ID"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /ads/{id}/images/{imageID} [delete]
func (h *AdHandler) DeleteImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseIDParam(c, "imageID")
	if !ok {
		return
	}
	if err := h.service.RemoveImage(id, imageID, middleware.GetUserID(c)); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
