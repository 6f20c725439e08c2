package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-report/internal/config"
	"github.com/stemsi/exstem-report/internal/handler"
	"github.com/stemsi/exstem-report/internal/middleware"
	"github.com/stemsi/exstem-report/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Report *handler.ReportHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// chartLimiter may be nil to leave chart rendering unthrottled.
func SetupRouter(handlers *Handlers, cfg *config.Config, chartLimiter *middleware.RateLimiter, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the request log and every envelope share it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Report API ─────────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/options", handlers.Report.GetOptions)
		api.GET("/summaries", handlers.Report.GetSummaries)
		api.GET("/dataset", handlers.Report.GetDataset)
		api.POST("/dataset/reload", handlers.Report.ReloadDataset)
	}

	// ─── 2. Chart Images (Rate Limited) ────────────────────────────────
	charts := api.Group("/charts")
	charts.Use(middleware.CacheControl(60))
	if chartLimiter != nil {
		charts.Use(chartLimiter.Middleware())
	}
	{
		charts.GET("/:panel", handlers.Report.GetChart)
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/dashboard", handlers.WS.DashboardStream)
	}

	return router
}
