package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"bitefeed-notify/config"
	"bitefeed-notify/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/healthz", handler.Healthz)

		// Device token registry.
		api.POST("/devices/tokens", handler.RegisterDeviceToken)
		api.DELETE("/devices/tokens", handler.RemoveDeviceToken)

		// Browser push subscriptions.
		api.PUT("/push/subscriptions", handler.PutSubscription)
		api.DELETE("/push/subscriptions", handler.DeleteSubscription)

		// Fan-out entry point for the platform's other services.
		api.POST("/notify", handler.Notify)

		// Notification reads. The list is per-user and mutates via the
		// read endpoints, so only presence gets response caching.
		api.GET("/users/:user_id/notifications", handler.ListNotifications)
		api.GET("/users/:user_id/notifications/unread_count", handler.UnreadCount)
		api.POST("/users/:user_id/notifications/:id/read", handler.MarkRead)
		api.POST("/users/:user_id/notifications/read_all", handler.MarkAllRead)

		// Live sessions and diagnostics.
		api.GET("/ws", handler.ServeWS)
		api.GET("/presence/:user_id", caching, handler.Presence)
	}

	return r
}
