package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/clipper/cache"
	"github.com/use-agent/clipper/models"
)

// PoolReporter reports renderer slot usage.
type PoolReporter interface {
	Stats() models.PoolStats
}

// Health returns a handler for GET /api/v1/health.
//
// Reports the strategy chain and pool utilisation, and degrades status when
// more than 80% of render slots are active. pool and cc may be nil.
func Health(ex Extractor, pool PoolReporter, cc *cache.Cache, startTime time.Time, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats models.PoolStats
		if pool != nil {
			stats = pool.Stats()
		}

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
			status = "degraded"
		}

		resp := models.HealthResponse{
			Status:     status,
			Uptime:     time.Since(startTime).Round(time.Second).String(),
			Version:    version,
			Strategies: ex.Strategies(),
			Browser:    ex.BrowserAvailable(),
			PoolStats:  stats,
		}
		if cc != nil {
			resp.CacheSize = cc.Len()
		}
		c.JSON(http.StatusOK, resp)
	}
}
