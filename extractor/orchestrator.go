package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/engine"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/postprocess"
)

// Orchestrator drives the strategy chain. It holds no per-request state
// and is safe for concurrent use.
type Orchestrator struct {
	fetcher   Fetcher
	renderer  Renderer
	sites     *cleaner.SiteRegistry
	validator Validator
	dates     postprocess.DateNormalizer
	images    postprocess.ImageFilter
	videos    postprocess.VideoFilter
	cfg       config.ExtractConfig
	chain     []Strategy
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRenderer enables the browser strategy.
func WithRenderer(r Renderer) Option {
	return func(o *Orchestrator) { o.renderer = r }
}

// WithSites replaces the built-in site registry.
func WithSites(reg *cleaner.SiteRegistry) Option {
	return func(o *Orchestrator) {
		if reg != nil {
			o.sites = reg
		}
	}
}

// WithImageFilter replaces the default image thresholds.
func WithImageFilter(f postprocess.ImageFilter) Option {
	return func(o *Orchestrator) { o.images = f }
}

// WithDateNormalizer replaces the default date normalizer.
func WithDateNormalizer(n postprocess.DateNormalizer) Option {
	return func(o *Orchestrator) { o.dates = n }
}

// New builds an orchestrator over fetcher with the standard chain.
func New(fetcher Fetcher, cfg config.ExtractConfig, opts ...Option) *Orchestrator {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = time.Duration(models.DefaultTimeoutSec) * time.Second
	}
	if cfg.MaxTimeout <= 0 {
		cfg.MaxTimeout = time.Duration(models.MaxTimeoutSec) * time.Second
	}
	if cfg.FastStrategyTimeout <= 0 {
		cfg.FastStrategyTimeout = 8 * time.Second
	}
	if cfg.BrowserStrategyTimeout <= 0 {
		cfg.BrowserStrategyTimeout = 25 * time.Second
	}

	o := &Orchestrator{
		fetcher:   fetcher,
		sites:     cleaner.DefaultSiteRegistry(),
		validator: NewValidator(cfg.MinTextChars),
		dates:     postprocess.NewDateNormalizer(),
		images:    postprocess.DefaultImageFilter(),
		videos:    postprocess.DefaultVideoFilter(),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.chain = []Strategy{
		{Name: StrategyTrafilatura, Timeout: cfg.FastStrategyTimeout, Run: o.runTrafilatura},
		{Name: StrategyGoose, Timeout: cfg.FastStrategyTimeout, Run: o.runGoose},
		{Name: StrategyPattern, Timeout: cfg.FastStrategyTimeout, Run: o.runPattern},
		{Name: StrategyBrowser, Browser: true, Timeout: cfg.BrowserStrategyTimeout, Run: o.runBrowser},
	}
	return o
}

// Strategies returns the names of the usable strategies in chain order.
func (o *Orchestrator) Strategies() []string {
	names := make([]string, 0, len(o.chain))
	for _, s := range o.chain {
		if s.Browser && o.renderer == nil {
			continue
		}
		names = append(names, s.Name)
	}
	return names
}

// BrowserAvailable reports whether a renderer is wired in.
func (o *Orchestrator) BrowserAvailable() bool {
	return o.renderer != nil
}

// Extract returns the merged article for rawURL.
func (o *Orchestrator) Extract(ctx context.Context, rawURL string, opts Options) (*models.ArticleResult, error) {
	rep, err := o.Run(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	return rep.Article, nil
}

// Run extracts rawURL and returns the article together with the attempt
// log. Errors are *models.ExtractError with MethodsTried set.
func (o *Orchestrator) Run(ctx context.Context, rawURL string, opts Options) (*Report, error) {
	start := time.Now()

	// ── 1. Validate input ─────────────────────────────────────────────
	base, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	chain, err := o.plan(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.budget(opts.Timeout))
	defer cancel()

	// ── 2. Fetch once ─────────────────────────────────────────────────
	in := Input{URL: base.String(), BaseURL: base}
	var fetchErr error
	if needsFetch(chain) {
		var page *engine.Page
		page, fetchErr = o.fetcher.Fetch(ctx, in.URL, nil)
		if fetchErr != nil {
			slog.Warn("fetch failed, continuing with renderer only", "url", rawURL, "error", fetchErr)
		} else {
			in.Page = *page
			if final, perr := url.Parse(page.BaseURL()); perr == nil && final.Host != "" {
				in.BaseURL = final
			}
		}
	}

	// ── 3. Run the chain ──────────────────────────────────────────────
	rep := &Report{Article: models.NewArticleResult(in.URL)}
	acc := rep.Article
	accepted := false
	budgetExceeded := false
	lastTimedOut := false

	for _, s := range chain {
		if ctx.Err() != nil {
			budgetExceeded = true
			break
		}
		if s.Browser && accepted {
			slog.Debug("skipping browser strategy, result already accepted", "url", rawURL)
			continue
		}

		rep.MethodsTried = append(rep.MethodsTried, s.Name)
		var att models.Attempt
		if !s.Browser && fetchErr != nil {
			att = models.Attempt{Strategy: s.Name, Verdict: models.Reject, Reason: "fetch failed: " + fetchErr.Error()}
			lastTimedOut = errors.Is(fetchErr, context.DeadlineExceeded)
		} else {
			var timedOut bool
			att, timedOut = o.attempt(ctx, s, in)
			lastTimedOut = timedOut
		}
		if opts.Debug {
			rep.Attempts = append(rep.Attempts, att)
		}

		slog.Debug("strategy attempt",
			"url", rawURL, "strategy", s.Name, "verdict", att.Verdict.String(),
			"reason", att.Reason, "elapsed", att.Elapsed,
		)

		if att.Verdict == models.Partial {
			merge(acc, att.Candidate, s.Name)
		}
		if att.Verdict == models.Accept {
			accepted = true
			merge(acc, att.Candidate, s.Name)
			if acc.Complete() {
				break
			}
		}
	}
	if !budgetExceeded && ctx.Err() != nil && !acc.Complete() {
		budgetExceeded = true
	}

	// ── 4. Terminal outcome ───────────────────────────────────────────
	if len(acc.Method) == 0 {
		var xe *models.ExtractError
		switch {
		case len(chain) == 0:
			xe = models.NewExtractError(models.ErrCodeExtractionFailed, "no extraction strategy is available", nil)
		case budgetExceeded:
			xe = models.NewExtractError(models.ErrCodeExtractionTimeout, "extraction budget exceeded", ctx.Err())
		case lastTimedOut:
			xe = models.NewExtractError(models.ErrCodeExtractionTimeout, "last strategy timed out", context.DeadlineExceeded)
		default:
			xe = models.NewExtractError(models.ErrCodeExtractionFailed, "no strategy produced a usable article", fetchErr)
		}
		slog.Info("extraction failed",
			"url", rawURL, "code", xe.Code, "methods_tried", rep.MethodsTried,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return rep, xe.WithMethods(rep.MethodsTried)
	}

	// ── 5. Final post-processing ──────────────────────────────────────
	o.finalize(acc, in.BaseURL)

	slog.Info("extraction finished",
		"url", rawURL, "method", acc.Method, "methods_tried", rep.MethodsTried,
		"complete", acc.Complete(), "budget_exceeded", budgetExceeded,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return rep, nil
}

// attempt runs one strategy under its own timeout. Engines that ignore the
// context are abandoned at the deadline; their goroutine finishes on its own.
func (o *Orchestrator) attempt(ctx context.Context, s Strategy, in Input) (models.Attempt, bool) {
	att := models.Attempt{Strategy: s.Name, Verdict: models.Reject}
	start := time.Now()

	sctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	type outcome struct {
		c   *models.Candidate
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%s: panic: %v", s.Name, r)}
			}
		}()
		c, err := s.Run(sctx, in)
		done <- outcome{c: c, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-sctx.Done():
		res = outcome{err: sctx.Err()}
	}
	att.Elapsed = time.Since(start)

	if res.err != nil {
		timedOut := errors.Is(res.err, context.DeadlineExceeded)
		if timedOut {
			att.Reason = "timed out after " + s.Timeout.String()
		} else {
			att.Reason = res.err.Error()
		}
		slog.Warn("strategy failed", "url", in.URL, "strategy", s.Name, "error", res.err)
		return att, timedOut
	}
	if res.c == nil || (res.c.Empty() && len(res.c.DateCandidates) == 0 && len(res.c.ImageCandidates) == 0) {
		att.Reason = "no content"
		return att, false
	}

	o.prepare(res.c, in.BaseURL)
	att.Candidate = res.c
	att.Verdict, att.Reason = o.validator.Validate(res.c)
	return att, false
}

// prepare turns the raw evidence of c into the fields that are validated
// and merged.
func (o *Orchestrator) prepare(c *models.Candidate, base *url.URL) {
	c.Title = cleaner.CleanTitle(c.Title)
	c.Text = cleaner.CleanText(c.Text)

	if c.Date != "" {
		c.Date = o.dates.NormalizeOne(c.Date)
	}
	if c.Date == "" {
		c.Date = o.dates.Normalize(c.DateCandidates)
	}

	if len(c.Images) > 0 {
		c.Images = o.images.Apply(c.Images, base)
	} else {
		c.Images = o.images.Rank(c.ImageCandidates, base)
	}
	c.Videos = o.videos.Filter(append(append([]string{}, c.Videos...), c.VideoCandidates...), base)
}

// finalize re-applies the post-processors to the merged result. Every step
// is idempotent.
func (o *Orchestrator) finalize(acc *models.ArticleResult, base *url.URL) {
	acc.Date = o.dates.NormalizeOne(acc.Date)
	acc.Images = o.images.Apply(acc.Images, base)
	acc.Videos = o.videos.Filter(acc.Videos, base)
}

// plan returns the strategies to run, in chain order.
func (o *Orchestrator) plan(opts Options) ([]Strategy, error) {
	allowed := make(map[string]struct{}, len(opts.Strategies))
	for _, name := range opts.Strategies {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !slices.ContainsFunc(o.chain, func(s Strategy) bool { return s.Name == name }) {
			return nil, models.NewExtractError(models.ErrCodeInvalidInput,
				fmt.Sprintf("unknown strategy %q", name), nil)
		}
		allowed[name] = struct{}{}
	}

	useBrowser := o.cfg.BrowserByDefault
	if _, named := allowed[StrategyBrowser]; named {
		useBrowser = true
	}
	if opts.ForceBrowser != nil {
		useBrowser = *opts.ForceBrowser
	}

	var out []Strategy
	for _, s := range o.chain {
		if len(allowed) > 0 {
			if _, ok := allowed[s.Name]; !ok {
				continue
			}
		}
		if s.Browser && (!useBrowser || o.renderer == nil) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (o *Orchestrator) budget(d time.Duration) time.Duration {
	if d <= 0 {
		return o.cfg.DefaultTimeout
	}
	if d > o.cfg.MaxTimeout {
		return o.cfg.MaxTimeout
	}
	return d
}

func needsFetch(chain []Strategy) bool {
	return slices.ContainsFunc(chain, func(s Strategy) bool { return !s.Browser })
}

// parseTarget accepts absolute http and https URLs with a host.
func parseTarget(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, models.NewExtractError(models.ErrCodeInvalidInput, "url is required", nil)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeInvalidInput, "malformed url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, models.NewExtractError(models.ErrCodeInvalidInput, "url scheme must be http or https", nil)
	}
	if u.Hostname() == "" {
		return nil, models.NewExtractError(models.ErrCodeInvalidInput, "url has no host", nil)
	}
	return u, nil
}
