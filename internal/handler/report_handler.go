package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/middleware"
	"github.com/annonstorg/annonstorg-backend/internal/service"
)

// ReportHandler handles abuse report submission
type ReportHandler struct {
	service service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// SubmitReport handles POST /api/v1/ads/:id/reports
// @Summary Report an ad
// @Description Anonymous reporting is allowed; the reporter IP is kept for abuse tracking
// @Tags reports
// @Accept json
// @Produce json
// @Param id path int true "Ad ID"
// @Param request body domain.CreateReportRequest true "Reason and details"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /ads/{id}/reports [post]
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	adID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req domain.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.service.SubmitReport(adID, &req, middleware.GetUserID(c), c.ClientIP()); err != nil {
		common.ServiceError(c, err)
		return
	}
	common.CreatedResponse(c, gin.H{"reported": true})
}
