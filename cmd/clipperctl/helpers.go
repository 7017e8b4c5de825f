package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/engine"
	"github.com/use-agent/clipper/extractor"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/postprocess"
	"github.com/use-agent/clipper/scraper"
)

var chainFlags struct {
	strategies []string
	browser    bool
	noBrowser  bool
	timeout    time.Duration
	pretty     bool
}

// forceBrowser maps the --browser / --no-browser pair onto the request's
// tri-state.
func forceBrowser(on, off bool) *bool {
	switch {
	case on:
		v := true
		return &v
	case off:
		v := false
		return &v
	}
	return nil
}

func extractOptions(debug bool) extractor.Options {
	return extractor.Options{
		Strategies:   chainFlags.strategies,
		ForceBrowser: forceBrowser(chainFlags.browser, chainFlags.noBrowser),
		Timeout:      chainFlags.timeout,
		Debug:        debug,
	}
}

// wantsBrowser reports whether a browser has to be launched for this run.
func wantsBrowser(cfg *config.Config, opts extractor.Options) bool {
	if !cfg.Browser.Enabled || (opts.ForceBrowser != nil && !*opts.ForceBrowser) {
		return false
	}
	if opts.ForceBrowser != nil || cfg.Extract.BrowserByDefault {
		return true
	}
	for _, s := range opts.Strategies {
		if s == extractor.StrategyBrowser {
			return true
		}
	}
	return false
}

// buildOrchestrator wires the chain from the environment. The returned
// cleanup releases the fetcher and the browser, if one was launched.
func buildOrchestrator(opts extractor.Options) (*extractor.Orchestrator, func(), error) {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	profiles, err := config.LoadSiteProfiles(cfg.Extract.SitesFile)
	if err != nil {
		return nil, nil, err
	}
	sites, err := cleaner.NewSiteRegistry(profiles)
	if err != nil {
		return nil, nil, err
	}

	fetcher := engine.NewHTTPEngine(cfg.Fetch)
	cleanup := []func(){fetcher.Close}
	orchOpts := []extractor.Option{
		extractor.WithSites(sites),
		extractor.WithImageFilter(postprocess.NewImageFilter(cfg.Image)),
	}
	if wantsBrowser(cfg, opts) {
		renderer, err := scraper.NewRenderer(cfg.Browser)
		if err != nil {
			slog.Warn("browser unavailable, continuing without it", "error", err)
		} else {
			orchOpts = append(orchOpts, extractor.WithRenderer(renderer))
			cleanup = append(cleanup, renderer.Close)
		}
	}

	done := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}
	return extractor.New(fetcher, cfg.Extract, orchOpts...), done, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if chainFlags.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func errorDetail(err error) *models.ErrorDetail {
	var xe *models.ExtractError
	if errors.As(err, &xe) {
		return xe.ToDetail()
	}
	return &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()}
}
