package scraper

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/models"
	"golang.org/x/sync/semaphore"
)

// Renderer owns the browser process and its tab pool. Rendering slots are
// bounded by a weighted semaphore of the same size as the pool so a waiting
// request gives up at its own deadline. It is safe for concurrent use.
type Renderer struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	slots       *semaphore.Weighted
	cfg         config.BrowserConfig
	launch      LaunchConfig
	activePages atomic.Int32
	startTime   time.Time
}

// NewRenderer launches the browser described by cfg.
func NewRenderer(cfg config.BrowserConfig) (*Renderer, error) {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	lc := NewLaunchConfig(cfg)

	l := lc.launcher()
	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeRenderFailed, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL, "args", lc.Args())

	browser := rod.New().ControlURL(controlURL)
	if err := connect(browser, l); err != nil {
		return nil, models.NewExtractError(models.ErrCodeRenderFailed, "failed to connect to browser", err)
	}

	slog.Info("page pool created", "maxPages", cfg.MaxPages)
	return &Renderer{
		browser:   browser,
		pagePool:  rod.NewPagePool(cfg.MaxPages),
		slots:     semaphore.NewWeighted(int64(cfg.MaxPages)),
		cfg:       cfg,
		launch:    lc,
		startTime: time.Now(),
	}, nil
}

// connector and killer are the parts of *rod.Browser and
// *launcher.Launcher that connect needs.
type (
	connector interface{ Connect() error }
	killer    interface{ Kill() }
)

// connect attaches to the launched browser and kills the process when the
// connection fails.
func connect(b connector, l killer) error {
	if err := b.Connect(); err != nil {
		l.Kill()
		return err
	}
	return nil
}

// Stats returns a snapshot of slot usage.
func (r *Renderer) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    r.cfg.MaxPages,
		ActivePages: int(r.activePages.Load()),
	}
}

// Close drains the page pool and kills the browser process.
func (r *Renderer) Close() {
	slog.Info("renderer shutting down: draining page pool")
	r.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	slog.Info("renderer shutting down: closing browser")
	if err := r.browser.Close(); err != nil {
		slog.Warn("renderer: browser close failed", "error", err)
	}
	slog.Info("renderer shutdown complete", "uptime", time.Since(r.startTime).Round(time.Second))
}
