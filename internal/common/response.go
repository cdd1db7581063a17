package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta pagination and additional metadata
type Meta struct {
	Page  int   `json:"page,omitempty"`
	Limit int   `json:"limit,omitempty"`
	Total int64 `json:"total,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// CreatedResponse returns a 201 JSON response
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Data: data})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{
		"error": &ErrorInfo{
			Code:    getErrorCode(status),
			Message: message,
		},
	})
}

// ServiceError maps service-layer sentinel errors to HTTP responses
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAdNotFound),
		errors.Is(err, ErrConversationNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken):
		ErrorResponse(c, http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidCounty),
		errors.Is(err, ErrNoContactMethod),
		errors.Is(err, ErrTooManyImages),
		errors.Is(err, ErrConversationExpired),
		errors.Is(err, ErrMessagingDisabled),
		errors.Is(err, ErrOwnAd),
		errors.Is(err, ErrMessageBlocked),
		errors.Is(err, ErrInvalidReason):
		ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
	default:
		ErrorResponse(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
