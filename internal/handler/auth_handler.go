package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/service"
)

// AuthHandler handles login and token refresh
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Failure 401 {object} common.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	tokens, err := h.service.Login(&req)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, tokens, nil)
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary Refresh the token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.RefreshRequest true "Refresh token"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Failure 401 {object} common.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req domain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	tokens, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, tokens, nil)
}
