package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/internal/domain"
)

// RequireAdmin checks that the authenticated user has moderator level
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		level := GetUserLevel(c)
		if level < domain.AdminLevel {
			common.ErrorResponse(c, http.StatusForbidden, "Moderator access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
