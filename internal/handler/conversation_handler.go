package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/internal/middleware"
	"github.com/annonstorg/annonstorg-backend/internal/service"
)

// ConversationHandler handles buyer↔seller messaging requests
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// StartConversation handles POST /api/v1/ads/:id/conversations
// @Summary Open a conversation about an ad
// @Description Returns the existing thread when one already exists for this buyer
// @Tags conversations
// @Produce json
// @Param id path int true "Ad ID"
// @Success 201 {object} common.APIResponse{data=domain.ConversationResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /ads/{id}/conversations [post]
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	adID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	conv, err := h.service.StartConversation(adID, middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.CreatedResponse(c, conv)
}

// ListConversations handles GET /api/v1/conversations
// @Summary List own conversations
// @Description Inbox for the authenticated user, most recently active first
// @Tags conversations
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ConversationResponse}
// @Security BearerAuth
// @Router /conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	page, limit := pagingQuery(c)
	convs, meta, err := h.service.ListConversations(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, convs, meta)
}

// ListMessages handles GET /api/v1/conversations/:id/messages
// @Summary Read a conversation
// @Description Full decrypted thread; readable even after the thread expired
// @Tags conversations
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {object} common.APIResponse{data=[]domain.MessageResponse}
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	msgs, err := h.service.ListMessages(id, middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.SuccessResponse(c, msgs, nil)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
// @Summary Send a message
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param request body domain.SendMessageRequest true "Message body"
// @Success 201 {object} common.APIResponse{data=domain.MessageResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	msg, err := h.service.SendMessage(id, middleware.GetUserID(c), req.Content)
	if err != nil {
		common.ServiceError(c, err)
		return
	}
	common.CreatedResponse(c, msg)
}
