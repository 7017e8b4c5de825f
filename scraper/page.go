package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/clipper/engine"
	"github.com/use-agent/clipper/models"
	"github.com/ysmood/gson"
)

const acceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"

// Render navigates a pooled tab to rawURL and returns the rendered DOM.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Slot              – wait for a free render slot, bounded by ctx
//  2. Acquire page      – borrow a tab from the pool (or create one)
//  3. DEFER: cleanup    – about:blank + return to pool
//  4. Stealth injection – before navigation
//  5. Extra headers     – locale + search referer
//  6. Hijack mount      – block images/CSS/fonts/media/ads, before navigation
//  7. Navigate          – bounded by the navigation timeout
//  8. Wait              – DOM stable
//  9. Extract           – page.HTML() + final URL + status
//
// The about:blank in step 3 uses the page without the request context so
// cleanup succeeds after the deadline passed.
func (r *Renderer) Render(ctx context.Context, rawURL string) (*engine.Page, error) {
	// ── 1. Slot ───────────────────────────────────────────────────────
	if err := r.slots.Acquire(ctx, 1); err != nil {
		return nil, categorizeError(err, "no render slot available before deadline")
	}
	defer r.slots.Release(1)

	// ── 2. Acquire page from pool ─────────────────────────────────────
	r.activePages.Add(1)
	defer r.activePages.Add(-1)

	page, err := r.pagePool.Get(func() (*rod.Page, error) {
		return r.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeRenderFailed, "failed to acquire page from pool", err)
	}

	// ── 3. Cleanup: clear the DOM and return the tab ──────────────────
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		r.pagePool.Put(page)
	}()

	// ── 4. Stealth injection ──────────────────────────────────────────
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	// ── 5. Extra headers ──────────────────────────────────────────────
	headers := map[string]string{"Accept-Language": acceptLanguage}
	if u, parseErr := url.Parse(rawURL); parseErr == nil {
		headers["Referer"] = "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)

	// ── 6. Mount hijack router ────────────────────────────────────────
	if router := setupHijack(page, r.cfg.BlockedResourceTypes, r.cfg.BlockAds); router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	// ── 7. Navigate ───────────────────────────────────────────────────
	nav := p
	if r.cfg.NavigationTimeout > 0 {
		nav = p.Timeout(r.cfg.NavigationTimeout)
		defer nav.CancelTimeout()
	}
	if err := nav.Navigate(rawURL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}

	// ── 8. Wait for the DOM to settle ─────────────────────────────────
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		if ctx.Err() != nil {
			return nil, categorizeError(ctx.Err(), "render deadline exceeded")
		}
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", stableErr)
	}
	removeOverlays(p)

	// ── 9. Extract rendered HTML ──────────────────────────────────────
	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	statusCode := 0
	if res, evalErr := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`); evalErr == nil {
		statusCode = res.Value.Int()
	}
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = rawURL
	}

	return &engine.Page{
		URL:        rawURL,
		FinalURL:   finalURL,
		HTML:       rawHTML,
		Encoding:   "utf-8",
		StatusCode: statusCode,
		FetchedAt:  time.Now(),
	}, nil
}

func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain map to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// removeOverlays deletes fixed or sticky layers with a high z-index,
// which are usually consent banners, app-install prompts and paywall
// curtains.
func removeOverlays(p *rod.Page) {
	const js = `() => {
		for (const el of document.querySelectorAll('body *')) {
			const style = window.getComputedStyle(el);
			if (style.position === 'fixed' || style.position === 'sticky') {
				const z = parseInt(style.zIndex, 10);
				if (z >= 900) el.remove();
			}
		}
		const selectors = [
			'[class*="cookie"]', '[class*="consent"]', '[id*="cookie"]',
			'[class*="popup"]', '[id*="popup"]', '[class*="app_banner"]',
		];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const pos = window.getComputedStyle(el).position;
				if (pos === 'fixed' || pos === 'sticky' || pos === 'absolute') el.remove();
			});
		}
		document.documentElement.style.overflow = '';
		if (document.body) document.body.style.overflow = '';
	}`
	_, _ = p.Eval(js)
}

// categorizeError wraps rod failures as RENDER_FAILED. Deadline errors stay
// reachable through errors.Is.
func categorizeError(err error, msg string) *models.ExtractError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeRenderFailed, "render timed out: "+msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeRenderFailed, "render canceled", err)
	default:
		return models.NewExtractError(models.ErrCodeRenderFailed, msg, err)
	}
}
