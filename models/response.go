package models

// ExtractResponse is the response for /api/v1/extract.
type ExtractResponse struct {
	// Success indicates whether an article (complete or partial) was produced.
	Success bool `json:"success"`

	// Article is populated only when Success is true.
	Article *ArticleResult `json:"article,omitempty"`

	// MethodsTried lists every strategy attempted, whatever its outcome.
	MethodsTried []string `json:"methods_tried"`

	// Attempts is populated when the request set debug.
	Attempts []AttemptInfo `json:"attempts,omitempty"`

	// DuplicateOf is set in batch results whose body matches an earlier
	// result. It is the index of that result.
	DuplicateOf *int `json:"duplicate_of,omitempty"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// AttemptInfo is the API view of one strategy invocation.
type AttemptInfo struct {
	Strategy  string `json:"strategy"`
	Verdict   string `json:"verdict"`
	Reason    string `json:"reason,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
	TextChars int    `json:"text_chars"`
	HasTitle  bool   `json:"has_title"`
	HasDate   bool   `json:"has_date"`
	Images    int    `json:"images"`
	Videos    int    `json:"videos"`
}

// BatchResponse is the response for POST /api/v1/batch/extract.
// Results are in the same order as the requested URLs.
type BatchResponse struct {
	Success   bool               `json:"success"`
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Results   []*ExtractResponse `json:"results"`
	Timing    TimingInfo         `json:"timing"`
	Error     *ErrorDetail       `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status     string    `json:"status"` // "healthy" or "degraded"
	Uptime     string    `json:"uptime"`
	Version    string    `json:"version"`
	Strategies []string  `json:"strategies"`
	Browser    bool      `json:"browser"`
	PoolStats  PoolStats `json:"pool_stats"`
	CacheSize  int       `json:"cache_size"`
}

// PoolStats describes the browser renderer's slot usage.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// TimingInfo provides duration breakdowns for an operation.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}
