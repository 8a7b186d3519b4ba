package handler

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Aashish23092/ghost-shift-audit/middleware"
)

// RouterConfig holds the handlers and cross-cutting pieces of the HTTP API.
type RouterConfig struct {
	Audit     *AuditHandler
	Roster    *RosterHandler
	History   *HistoryHandler
	Analytics *AnalyticsHandler
	Health    *HealthHandler

	Limiter        middleware.Limiter
	Logger         *zerolog.Logger
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/health", cfg.Health.Health)

	api := router.Group("/api/v1")
	{
		audit := api.Group("/audit")
		{
			audit.POST("/reconcile", cfg.Audit.Reconcile)
			audit.POST("/scan", middleware.RateLimit(cfg.Limiter, cfg.Logger), cfg.Audit.Scan)
			audit.GET("/demo/:scenario", cfg.Audit.Demo)
		}

		api.GET("/history", cfg.History.List)
		api.GET("/history/:id", cfg.History.Get)

		roster := api.Group("/roster")
		{
			roster.GET("", cfg.Roster.List)
			roster.POST("", cfg.Roster.Create)
			roster.GET("/:id", cfg.Roster.Get)
			roster.PUT("/:id", cfg.Roster.Update)
			roster.DELETE("/:id", cfg.Roster.Delete)
		}

		api.POST("/track", cfg.Analytics.Track)
		api.GET("/analytics/:secret", cfg.Analytics.Summary)
		api.GET("/rate-limit", cfg.Health.RateLimit)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	c.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Request-ID")
	c.AddExposeHeaders("Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining")
	return c
}
