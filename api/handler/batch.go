package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/clipper/cache"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/simhash"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Batch returns a handler for POST /api/v1/batch/extract.
//
// URLs run through an errgroup bounded by the requested concurrency. When
// delay_ms is set, job starts are spaced by a token bucket with burst 1.
// Results keep the input order.
func Batch(ex Extractor, cc *cache.Cache, cfg config.BatchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBatchError(c, models.ErrCodeInvalidInput, err.Error())
			return
		}
		if cfg.MaxURLs > 0 && len(req.URLs) > cfg.MaxURLs {
			respondBatchError(c, models.ErrCodeInvalidInput, fmt.Sprintf("maximum %d URLs per batch", cfg.MaxURLs))
			return
		}
		if req.Concurrency == 0 && cfg.DefaultConcurrency > 0 {
			req.Concurrency = cfg.DefaultConcurrency
		}
		req.Defaults()

		// ── 2. Run ──────────────────────────────────────────────────
		results := runBatch(c.Request.Context(), ex, cc, req)

		// ── 3. Assemble response ────────────────────────────────────
		resp := models.BatchResponse{
			Total:   len(results),
			Results: results,
		}
		for _, r := range results {
			if r.Success {
				resp.Succeeded++
			} else {
				resp.Failed++
			}
		}
		resp.Success = resp.Succeeded > 0
		resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}

		slog.Info("batch finished",
			"total", resp.Total,
			"succeeded", resp.Succeeded,
			"failed", resp.Failed,
			"elapsed_ms", resp.Timing.TotalMs,
		)
		c.JSON(http.StatusOK, resp)
	}
}

func runBatch(ctx context.Context, ex Extractor, cc *cache.Cache, req models.BatchRequest) []*models.ExtractResponse {
	results := make([]*models.ExtractResponse, len(req.URLs))

	var limiter *rate.Limiter
	if req.DelayMs > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Duration(req.DelayMs)*time.Millisecond), 1)
	}

	var g errgroup.Group
	g.SetLimit(req.Concurrency)
	for i, rawURL := range req.URLs {
		g.Go(func() error {
			start := time.Now()
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					results[i] = &models.ExtractResponse{
						MethodsTried: []string{},
						Error: &models.ErrorDetail{
							Code:    models.ErrCodeExtractionTimeout,
							Message: "batch canceled before this URL started",
						},
					}
					return nil
				}
			}
			resp := extractOne(ctx, ex, cc, req.Options.Request(rawURL))
			resp.Timing = models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
			results[i] = resp
			return nil
		})
	}
	_ = g.Wait()

	markDuplicates(results)
	return results
}

// markDuplicates points each successful result whose body matches an
// earlier one at that earlier result.
func markDuplicates(results []*models.ExtractResponse) {
	texts := make([]string, len(results))
	for i, r := range results {
		if r.Success && r.Article != nil {
			texts[i] = r.Article.Text
		}
	}
	for i, j := range simhash.DuplicateOf(texts) {
		if j >= 0 {
			results[i].DuplicateOf = &j
		}
	}
}

func respondBatchError(c *gin.Context, code, msg string) {
	c.JSON(statusForCode(code), models.BatchResponse{
		Success: false,
		Results: []*models.ExtractResponse{},
		Error:   &models.ErrorDetail{Code: code, Message: msg},
	})
}
