package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/annonstorg/annonstorg-backend/internal/handler"
	"github.com/annonstorg/annonstorg-backend/internal/middleware"
	"github.com/annonstorg/annonstorg-backend/pkg/jwt"
)

// Handlers collects everything Setup wires into the router
type Handlers struct {
	Ads           *handler.AdHandler
	Conversations *handler.ConversationHandler
	Reports       *handler.ReportHandler
	Admin         *handler.AdminHandler
	Auth          *handler.AuthHandler
	Taxonomy      *handler.TaxonomyHandler
}

// messagesPerMinute caps outgoing messages per sender
const messagesPerMinute = 20

// Setup configures all API routes. redisClient may be nil; the per-user
// message throttle is skipped then.
func Setup(router *gin.Engine, h *Handlers, jwtManager *jwt.Manager, redisClient *redis.Client) {
	api := router.Group("/api/v1")

	// Authentication (public)
	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Taxonomy (public, static)
	taxonomy := api.Group("/taxonomy")
	taxonomy.GET("/categories", h.Taxonomy.ListCategories)
	taxonomy.GET("/counties", h.Taxonomy.ListCounties)

	// Ads
	ads := api.Group("/ads")
	ads.GET("", middleware.OptionalJWTAuth(jwtManager), h.Ads.ListAds)
	ads.GET("/search", h.Ads.SearchAds)
	ads.GET("/:id", h.Ads.GetAd)
	ads.POST("", middleware.JWTAuth(jwtManager), h.Ads.CreateAd)
	ads.PATCH("/:id", middleware.JWTAuth(jwtManager), h.Ads.UpdateAd)
	ads.DELETE("/:id", middleware.JWTAuth(jwtManager), h.Ads.DeleteAd)

	// Ad images (owner only, checked in the service)
	ads.POST("/:id/images", middleware.JWTAuth(jwtManager), h.Ads.UploadImage)
	ads.DELETE("/:id/images/:imageID", middleware.JWTAuth(jwtManager), h.Ads.DeleteImage)

	// Reports (anonymous allowed, identity recorded when present)
	ads.POST("/:id/reports", middleware.OptionalJWTAuth(jwtManager), h.Reports.SubmitReport)

	// Conversations
	ads.POST("/:id/conversations", middleware.JWTAuth(jwtManager), h.Conversations.StartConversation)
	conversations := api.Group("/conversations", middleware.JWTAuth(jwtManager))
	conversations.GET("", h.Conversations.ListConversations)
	conversations.GET("/:id/messages", h.Conversations.ListMessages)
	if redisClient != nil {
		conversations.POST("/:id/messages", middleware.RateLimitPerUser(redisClient, messagesPerMinute), h.Conversations.SendMessage)
	} else {
		conversations.POST("/:id/messages", h.Conversations.SendMessage)
	}

	// Own listings
	me := api.Group("/me", middleware.JWTAuth(jwtManager))
	me.GET("/ads", h.Ads.ListMyAds)

	// Moderation
	admin := api.Group("/admin", middleware.JWTAuth(jwtManager), middleware.RequireAdmin())
	admin.GET("/reports", h.Admin.ListPendingReports)
	admin.POST("/ads/:id/disable", h.Admin.DisableAd)
	admin.POST("/ads/:id/revive", h.Admin.ReviveAd)
}
