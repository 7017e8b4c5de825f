package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/clipper/api/handler"
	"github.com/use-agent/clipper/cache"
	"github.com/use-agent/clipper/config"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//
// pool and cc may be nil when the renderer or cache is disabled.
func NewRouter(ex handler.Extractor, pool handler.PoolReporter, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(ex, pool, cc, startTime, Version))

	// Extract
	v1.POST("/extract", handler.Extract(ex, cc))
	v1.GET("/extract", handler.Extract(ex, cc))

	// Batch
	v1.POST("/batch/extract", handler.Batch(ex, cc, cfg.Batch))

	return r
}
