package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	goose "github.com/advancedlogic/GoOse"
	"github.com/markusmobius/go-trafilatura"
	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/postprocess"
)

var errNoContent = errors.New("no article content found")

// runTrafilatura uses the trafilatura main-content extractor.
func (o *Orchestrator) runTrafilatura(ctx context.Context, in Input) (*models.Candidate, error) {
	res, err := trafilatura.Extract(strings.NewReader(in.Page.HTML), trafilatura.Options{
		OriginalURL:     in.BaseURL,
		EnableFallback:  true,
		ExcludeComments: true,
		IncludeImages:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("trafilatura: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &models.Candidate{
		Title: res.Metadata.Title,
		Text:  res.ContentText,
	}
	if d := postprocess.FormatTime(res.Metadata.Date); d != "" {
		c.DateCandidates = append(c.DateCandidates, models.DateCandidate{Source: models.SourceMeta, Value: d})
	}
	if img := strings.TrimSpace(res.Metadata.Image); img != "" {
		c.ImageCandidates = append(c.ImageCandidates, models.ImageCandidate{URL: img, Tier: models.TierMeta})
	}
	if res.ContentNode != nil {
		body := goquery.NewDocumentFromNode(res.ContentNode)
		c.ImageCandidates = append(c.ImageCandidates, cleaner.ImagesIn(body.Selection, models.TierContent)...)
	}

	if err := o.addHarvest(c, in); err != nil {
		return nil, err
	}
	return c, nil
}

// runGoose uses the GoOse article parser.
func (o *Orchestrator) runGoose(ctx context.Context, in Input) (*models.Candidate, error) {
	g := goose.New()
	article, err := g.ExtractFromRawHTML(in.Page.HTML, in.BaseURL.String())
	if err != nil {
		return nil, fmt.Errorf("goose: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &models.Candidate{
		Title: article.Title,
		Text:  article.CleanedText,
	}
	if article.PublishDate != nil {
		if d := postprocess.FormatTime(*article.PublishDate); d != "" {
			c.DateCandidates = append(c.DateCandidates, models.DateCandidate{Source: models.SourceMeta, Value: d})
		}
	}
	if img := strings.TrimSpace(article.TopImage); img != "" {
		c.ImageCandidates = append(c.ImageCandidates, models.ImageCandidate{URL: img, Tier: models.TierMeta})
	}

	if err := o.addHarvest(c, in); err != nil {
		return nil, err
	}
	return c, nil
}

// runPattern applies site-profile selectors to the fetched page.
func (o *Orchestrator) runPattern(ctx context.Context, in Input) (*models.Candidate, error) {
	c, err := o.pattern(ctx, in)
	if errors.Is(err, errNoContent) && in.Page.NeedsRendering() {
		return nil, fmt.Errorf("pattern: page appears script-rendered: %w", err)
	}
	return c, err
}

// runBrowser renders the page and runs the pattern extraction over the
// resulting DOM.
func (o *Orchestrator) runBrowser(ctx context.Context, in Input) (*models.Candidate, error) {
	if o.renderer == nil {
		return nil, models.NewExtractError(models.ErrCodeRenderFailed, "renderer not available", nil)
	}
	page, err := o.renderer.Render(ctx, in.URL)
	if err != nil {
		return nil, err
	}

	rendered := Input{URL: in.URL, Page: *page, BaseURL: in.BaseURL}
	if u, perr := url.Parse(page.BaseURL()); perr == nil && u.Host != "" {
		rendered.BaseURL = u
	}
	return o.pattern(ctx, rendered)
}

// pattern extracts with site selectors first, then the generic selectors,
// then pruning, then readability. Evidence is harvested before noise
// removal so meta and script sources survive.
func (o *Orchestrator) pattern(ctx context.Context, in Input) (*models.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in.Page.HTML))
	if err != nil {
		return nil, fmt.Errorf("pattern: parse html: %w", err)
	}
	site := o.sites.Match(in.BaseURL.Hostname())
	profiles := []*cleaner.Site{cleaner.Generic}
	if site != nil {
		profiles = []*cleaner.Site{site, cleaner.Generic}
	}

	// ── 1. Evidence ───────────────────────────────────────────────────
	c := &models.Candidate{}
	h := cleaner.HarvestDocument(doc, in.BaseURL, site)
	c.DateCandidates = h.Dates
	c.ImageCandidates = h.Images
	c.VideoCandidates = h.Videos

	// ── 2. Title ──────────────────────────────────────────────────────
	for _, p := range profiles {
		if c.Title = p.Title.FirstText(doc.Selection); c.Title != "" {
			break
		}
	}
	if c.Title == "" {
		c.Title = cleaner.CleanTitle(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}
	if c.Title == "" {
		c.Title = cleaner.CleanTitle(in.Page.Title())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// ── 3. Body ───────────────────────────────────────────────────────
	cleaner.RemoveNoise(doc)
	for _, p := range profiles {
		p.Content.Each(doc.Selection, func(s *goquery.Selection) bool {
			c.Text = cleaner.BlockText(s.First())
			return c.Text == ""
		})
		if c.Text != "" {
			break
		}
	}
	if models.VisibleLen(c.Text) < o.validator.MinTextChars {
		if pruned := cleaner.PruneContent(doc); models.VisibleLen(pruned) > models.VisibleLen(c.Text) {
			c.Text = pruned
		}
	}
	if models.VisibleLen(c.Text) < o.validator.MinTextChars {
		if r, ok := cleaner.Readable(in.Page.HTML, in.BaseURL); ok {
			if models.VisibleLen(r.Text) > models.VisibleLen(c.Text) {
				c.Text = r.Text
			}
			if c.Title == "" {
				c.Title = r.Title
			}
			if r.Image != "" {
				c.ImageCandidates = append(c.ImageCandidates, models.ImageCandidate{URL: r.Image, Tier: models.TierMeta})
			}
			if d := postprocess.FormatTime(r.Published); d != "" {
				c.DateCandidates = append(c.DateCandidates, models.DateCandidate{Source: models.SourceMeta, Value: d})
			}
		}
	}

	if c.Title == "" && c.Text == "" {
		return nil, errNoContent
	}
	return c, nil
}

// addHarvest adds the page-level evidence to a candidate produced by an
// engine that only reports a single image and date.
func (o *Orchestrator) addHarvest(c *models.Candidate, in Input) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in.Page.HTML))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	h := cleaner.HarvestDocument(doc, in.BaseURL, o.sites.Match(in.BaseURL.Hostname()))
	c.DateCandidates = append(c.DateCandidates, h.Dates...)
	c.ImageCandidates = append(c.ImageCandidates, h.Images...)
	c.VideoCandidates = append(c.VideoCandidates, h.Videos...)
	return nil
}
