package models

import "strings"

// Timeout bounds in seconds for a single extraction.
const (
	DefaultTimeoutSec = 30
	MinTimeoutSec     = 5
	MaxTimeoutSec     = 120
)

// ExtractRequest is the payload for POST /api/v1/extract. GET binds the
// same fields from the query string.
type ExtractRequest struct {
	// URL is the target article. Required.
	URL string `json:"url" form:"url" binding:"required"`

	// Strategies restricts the chain to the named strategies. Chain order
	// is kept regardless of the order given here.
	Strategies []string `json:"strategies,omitempty" form:"strategies"`

	// ForceBrowser forces (true) or forbids (false) the browser strategy.
	// When unset the server default applies.
	ForceBrowser *bool `json:"force_browser,omitempty" form:"force_browser"`

	// Timeout is the overall budget in seconds. Default: 30. Range: 5-120.
	Timeout int `json:"timeout,omitempty" form:"timeout" binding:"omitempty,min=5,max=120"`

	// MaxAge enables the response cache: a cached article younger than
	// MaxAge milliseconds is returned without extracting again.
	MaxAge int `json:"max_age,omitempty" form:"max_age" binding:"omitempty,min=0"`

	// Debug includes per-strategy attempts in the response.
	Debug bool `json:"debug,omitempty" form:"debug"`
}

// Defaults applies default values to unset fields and splits
// comma-separated strategy lists coming from query strings.
func (r *ExtractRequest) Defaults() {
	r.URL = strings.TrimSpace(r.URL)
	if r.Timeout == 0 {
		r.Timeout = DefaultTimeoutSec
	}
	var names []string
	for _, s := range r.Strategies {
		for _, part := range strings.Split(s, ",") {
			if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
				names = append(names, p)
			}
		}
	}
	r.Strategies = names
}

// BatchRequest is the payload for POST /api/v1/batch/extract.
type BatchRequest struct {
	// URLs is the list of target articles. Required.
	URLs []string `json:"urls" binding:"required,min=1,max=50"`

	// Options contains shared settings applied to every URL.
	Options BatchOptions `json:"options"`

	// Concurrency is the number of URLs extracted at once. Default: 5. Range: 1-10.
	Concurrency int `json:"concurrency,omitempty" binding:"omitempty,min=1,max=10"`

	// DelayMs spaces the start of consecutive extractions.
	DelayMs int `json:"delay_ms,omitempty" binding:"omitempty,min=0,max=10000"`
}

// BatchOptions are the shared extraction settings applied to every URL in a batch.
type BatchOptions struct {
	Strategies   []string `json:"strategies,omitempty"`
	ForceBrowser *bool    `json:"force_browser,omitempty"`
	Timeout      int      `json:"timeout,omitempty" binding:"omitempty,min=5,max=120"`
	MaxAge       int      `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Request builds the single-URL request for url.
func (o BatchOptions) Request(url string) ExtractRequest {
	req := ExtractRequest{
		URL:          url,
		Strategies:   o.Strategies,
		ForceBrowser: o.ForceBrowser,
		Timeout:      o.Timeout,
		MaxAge:       o.MaxAge,
	}
	req.Defaults()
	return req
}

// Defaults applies default values to unset fields.
func (r *BatchRequest) Defaults() {
	if r.Concurrency == 0 {
		r.Concurrency = 5
	}
}
