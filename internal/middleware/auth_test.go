package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annonstorg/annonstorg-backend/internal/domain"
	"github.com/annonstorg/annonstorg-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(mgr *jwt.Manager) *gin.Engine {
	r := gin.New()
	r.GET("/private", JWTAuth(mgr), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	r.GET("/admin", JWTAuth(mgr), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/public", OptionalJWTAuth(mgr), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	mgr := jwt.NewManager("test-secret", 15, 60)
	r := newAuthRouter(mgr)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Token abc")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwt.NewManager("other-secret", 15, 60)
		token, err := other.GenerateToken(1, "anna", 1)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := mgr.GenerateToken(42, "anna", 1)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":42`)
	})
}

func TestOptionalJWTAuth(t *testing.T) {
	mgr := jwt.NewManager("test-secret", 15, 60)
	r := newAuthRouter(mgr)

	t.Run("anonymous passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":0`)
	})

	t.Run("valid token is picked up", func(t *testing.T) {
		token, err := mgr.GenerateToken(7, "anna", 1)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})
}

func TestRequireAdmin(t *testing.T) {
	mgr := jwt.NewManager("test-secret", 15, 60)
	r := newAuthRouter(mgr)

	t.Run("regular user is rejected", func(t *testing.T) {
		token, err := mgr.GenerateToken(1, "anna", 1)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("moderator is allowed", func(t *testing.T) {
		token, err := mgr.GenerateToken(2, "mod", domain.AdminLevel)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
