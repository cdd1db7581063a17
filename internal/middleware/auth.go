package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/annonstorg/annonstorg-backend/internal/common"
	"github.com/annonstorg/annonstorg-backend/pkg/jwt"
)

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromHeader(c, jwtManager)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "Token expired", err)
			} else {
				common.ErrorResponse(c, 401, "Invalid or missing token", err)
			}
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("nickname", claims.Nickname)
		c.Set("level", claims.Level)

		c.Next()
	}
}

// OptionalJWTAuth populates user context when a valid token is present but
// never rejects the request. Used on public routes that behave differently
// for logged-in users.
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := claimsFromHeader(c, jwtManager); err == nil {
			c.Set("userID", claims.UserID)
			c.Set("nickname", claims.Nickname)
			c.Set("level", claims.Level)
		}
		c.Next()
	}
}

func claimsFromHeader(c *gin.Context, jwtManager *jwt.Manager) (*jwt.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, jwt.ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, jwt.ErrInvalidToken
	}

	return jwtManager.VerifyToken(parts[1])
}

// GetUserID extracts the authenticated user ID from context; 0 when anonymous
func GetUserID(c *gin.Context) uint64 {
	userID, exists := c.Get("userID")
	if !exists {
		return 0
	}
	if id, ok := userID.(uint64); ok {
		return id
	}
	return 0
}

// GetUserLevel extracts user level from context
func GetUserLevel(c *gin.Context) int {
	level, exists := c.Get("level")
	if !exists {
		return 0
	}
	if lvl, ok := level.(int); ok {
		return lvl
	}
	return 0
}

// GetNickname extracts nickname from context
func GetNickname(c *gin.Context) string {
	nickname, exists := c.Get("nickname")
	if !exists {
		return ""
	}
	if str, ok := nickname.(string); ok {
		return str
	}
	return ""
}
