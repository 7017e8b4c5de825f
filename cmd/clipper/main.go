package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/clipper/api"
	"github.com/use-agent/clipper/api/handler"
	"github.com/use-agent/clipper/cache"
	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/engine"
	"github.com/use-agent/clipper/extractor"
	"github.com/use-agent/clipper/postprocess"
	"github.com/use-agent/clipper/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("clipper starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Load site profiles ───────────────────────────────────────
	profiles, err := config.LoadSiteProfiles(cfg.Extract.SitesFile)
	if err != nil {
		slog.Error("failed to load site profiles", "error", err)
		os.Exit(1)
	}
	sites, err := cleaner.NewSiteRegistry(profiles)
	if err != nil {
		slog.Error("invalid site profile", "error", err)
		os.Exit(1)
	}
	slog.Info("site profiles loaded", "sites", sites.Names())

	// ── 4. Initialise fetcher ───────────────────────────────────────
	fetcher := engine.NewHTTPEngine(cfg.Fetch)
	defer fetcher.Close()

	opts := []extractor.Option{
		extractor.WithSites(sites),
		extractor.WithImageFilter(postprocess.NewImageFilter(cfg.Image)),
	}

	// ── 5. Initialise renderer (launches browser) ───────────────────
	// A browser that fails to start only removes the browser strategy.
	var pool handler.PoolReporter
	if cfg.Browser.Enabled {
		renderer, err := scraper.NewRenderer(cfg.Browser)
		if err != nil {
			slog.Warn("browser unavailable, continuing without it", "error", err)
		} else {
			defer renderer.Close()
			opts = append(opts, extractor.WithRenderer(renderer))
			pool = renderer
		}
	}

	// ── 6. Build the strategy chain ─────────────────────────────────
	orch := extractor.New(fetcher, cfg.Extract, opts...)
	slog.Info("strategy chain ready", "strategies", orch.Strategies())

	// ── 6b. Initialise cache ────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)
	defer cc.Close()

	// ── 7. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orch, pool, cc, cfg, startTime)

	// ── 8. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// Deferred closes drain the page pool and kill Chrome.
	slog.Info("clipper stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
