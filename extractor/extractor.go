// Package extractor runs a fixed chain of article extraction strategies
// over one URL, scores each result and merges the usable fields.
package extractor

import (
	"context"
	"net/url"
	"time"

	"github.com/use-agent/clipper/engine"
	"github.com/use-agent/clipper/models"
)

// Strategy names in chain order.
const (
	StrategyTrafilatura = "trafilatura"
	StrategyGoose       = "goose"
	StrategyPattern     = "pattern"
	StrategyBrowser     = "browser"
)

// Fetcher downloads a page once per request. engine.HTTPEngine implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, headers map[string]string) (*engine.Page, error)
}

// Renderer loads a page in a real browser. scraper.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (*engine.Page, error)
}

// Input is what a strategy receives. Page is a copy of the fetched page and
// is zero when the fetch failed; URL is always the requested URL.
type Input struct {
	URL     string
	Page    engine.Page
	BaseURL *url.URL
}

// Strategy is one link of the chain.
type Strategy struct {
	Name string

	// Browser marks the rendering strategy. It is skipped once a result
	// was accepted, and it does not need the fetched page.
	Browser bool

	// Timeout bounds one call to Run, inside the overall budget.
	Timeout time.Duration

	Run func(ctx context.Context, in Input) (*models.Candidate, error)
}

// Options controls a single extraction.
type Options struct {
	// Strategies restricts the chain. Empty means all.
	Strategies []string

	// ForceBrowser forces (true) or forbids (false) the browser
	// strategy. nil leaves the configured default.
	ForceBrowser *bool

	// Timeout is the overall budget. Zero uses the configured default.
	Timeout time.Duration

	// Debug records every attempt in Report.Attempts.
	Debug bool
}

// Report is the full outcome of one extraction.
type Report struct {
	Article *models.ArticleResult

	// MethodsTried lists every strategy invoked, in order.
	MethodsTried []string

	// Attempts is filled only when Options.Debug is set.
	Attempts []models.Attempt
}
