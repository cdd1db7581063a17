package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/service"
)

// AdminHandler handles moderator endpoints
type AdminHandler struct {
	reports    service.ReportService
	moderation service.ModerationService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(reports service.ReportService, moderation service.ModerationService) *AdminHandler {
	return &AdminHandler{reports: reports, moderation: moderation}
}

// ListPendingReports handles GET /api/v1/admin/reports
// @Summary Moderation queue
// @Description Pending reports with reported-ad context, newest first
// @Tags admin
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ReportListResponse}
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/reports [get]
func (h *AdminHandler) ListPendingReports(c *gin.Context) {
	page, limit := pagingQuery(c)
	reports, meta, err := h.reports.ListPending(page, limit)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, reports, meta)
}

// DisableAd handles POST /api/v1/admin/ads/:id/disable
// @Summary Disable a reported ad
// @Description Takes the ad off the site and resolves its pending reports
// @Tags admin
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/ads/{id}/disable [post]
func (h *AdminHandler) DisableAd(c *gin.Context) {
	adID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.moderation.DisableAd(adID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"disabled": true}, nil)
}

// ReviveAd handles POST /api/v1/admin/ads/:id/revive
// @Summary Revive a reported ad
// @Description Clears the reported flag and resolves its pending reports
// @Tags admin
// @Produce json
// @Param id path int true "Ad ID"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/ads/{id}/revive [post]
func (h *AdminHandler) ReviveAd(c *gin.Context) {
	adID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.moderation.ReviveAd(adID); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"revived": true}, nil)
}
