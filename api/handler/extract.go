package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/clipper/cache"
	"github.com/use-agent/clipper/extractor"
	"github.com/use-agent/clipper/models"
)

// Extractor is the part of the orchestrator the handlers use.
type Extractor interface {
	Run(ctx context.Context, rawURL string, opts extractor.Options) (*extractor.Report, error)
	Strategies() []string
	BrowserAvailable() bool
}

// Extract returns a handler for GET and POST /api/v1/extract.
//
// Flow:
//  1. Bind the JSON body (POST) or query string (GET), apply defaults.
//  2. Cache lookup when max_age > 0.
//  3. Run the strategy chain.
//  4. Cache store, respond.
func Extract(ex Extractor, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ExtractRequest
		var err error
		if c.Request.Method == http.MethodGet {
			err = c.ShouldBindQuery(&req)
		} else {
			err = c.ShouldBindJSON(&req)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success:      false,
				MethodsTried: []string{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		resp := extractOne(c.Request.Context(), ex, cc, req)
		resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}
		if resp.Error != nil {
			c.JSON(statusForCode(resp.Error.Code), resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// extractOne runs a single request through the cache and the orchestrator.
// It never fails: errors are carried in the response.
func extractOne(ctx context.Context, ex Extractor, cc *cache.Cache, req models.ExtractRequest) *models.ExtractResponse {
	useCache := cc != nil && req.MaxAge > 0
	var key string

	// ── 2. Cache lookup ─────────────────────────────────────────────
	if useCache {
		key = cache.Key(req.URL, req.Strategies, req.ForceBrowser)
		if article, tried, hit := cc.Get(key, req.MaxAge); hit {
			return &models.ExtractResponse{
				Success:      true,
				Article:      article,
				MethodsTried: tried,
				CacheStatus:  "hit",
			}
		}
	}

	// ── 3. Extract ──────────────────────────────────────────────────
	rep, err := ex.Run(ctx, req.URL, extractor.Options{
		Strategies:   req.Strategies,
		ForceBrowser: req.ForceBrowser,
		Timeout:      time.Duration(req.Timeout) * time.Second,
		Debug:        req.Debug,
	})

	resp := &models.ExtractResponse{MethodsTried: []string{}}
	if rep != nil {
		if rep.MethodsTried != nil {
			resp.MethodsTried = rep.MethodsTried
		}
		if req.Debug {
			for _, a := range rep.Attempts {
				resp.Attempts = append(resp.Attempts, a.Info())
			}
		}
	}
	if err != nil {
		xe := asExtractError(err)
		if len(xe.MethodsTried) == 0 {
			xe.MethodsTried = resp.MethodsTried
		}
		resp.Error = xe.ToDetail()
		return resp
	}

	resp.Success = true
	resp.Article = rep.Article

	// ── 4. Cache store ──────────────────────────────────────────────
	if useCache {
		cc.Set(key, rep.Article, rep.MethodsTried)
		resp.CacheStatus = "miss"
	}
	return resp
}

// asExtractError unwraps err to an ExtractError, wrapping anything else as
// INTERNAL_ERROR.
func asExtractError(err error) *models.ExtractError {
	var xe *models.ExtractError
	if errors.As(err, &xe) {
		return xe
	}
	return models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
}

// statusForCode translates error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeExtractionFailed:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeExtractionTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
