package cleaner

import (
	"encoding/json"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/clipper/models"
	"github.com/use-agent/clipper/postprocess"
	"golang.org/x/net/html"
)

// Harvest is the raw image, date and video evidence found on a page.
type Harvest struct {
	Images []models.ImageCandidate
	Dates  []models.DateCandidate
	Videos []string
}

var (
	metaImageKeys = map[string]struct{}{
		"og:image": {}, "og:image:url": {}, "og:image:secure_url": {},
		"twitter:image": {}, "twitter:image:src": {},
	}
	metaDateKeys = map[string]struct{}{
		"article:published_time": {}, "og:article:published_time": {},
		"og:published_time": {}, "pubdate": {}, "publishdate": {},
		"publish-date": {}, "publish_date": {}, "datepublished": {},
		"dc.date": {}, "dc.date.issued": {}, "dcterms.created": {},
		"sailthru.date": {}, "parsely-pub-date": {}, "article:published": {},
	}
	metaVideoKeys = map[string]struct{}{
		"og:video": {}, "og:video:url": {}, "og:video:secure_url": {},
		"twitter:player": {},
	}
)

var iframeVideoTokens = []string{
	"youtube", "youtu.be", "vimeo", "dailymotion", "video", "player",
	"tv.naver", "tv.kakao",
}

var scriptVideoRe = regexp.MustCompile(`(?i)["']?(?:videoUrl|hlsUrl|mp4Url|vodUrl)["']?\s*[:=]\s*["']([^"'\s]+)["']`)

var lazySrcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

// HarvestDocument collects every image, date and video candidate from doc.
// Candidates are raw: ranking, normalization and filtering happen later.
// base resolves relative URLs and is itself a date candidate; site may be
// nil.
func HarvestDocument(doc *goquery.Document, base *url.URL, site *Site) Harvest {
	var h Harvest
	root := doc.Selection

	// ── 1. meta tags ──────────────────────────────────────────────
	root.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key := metaKey(s)
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if key == "" || content == "" {
			return
		}
		if _, ok := metaImageKeys[key]; ok {
			h.Images = append(h.Images, models.ImageCandidate{URL: content, Tier: models.TierMeta})
		}
		if _, ok := metaDateKeys[key]; ok {
			h.Dates = append(h.Dates, models.DateCandidate{Source: models.SourceMeta, Value: content})
		}
		if _, ok := metaVideoKeys[key]; ok {
			h.Videos = append(h.Videos, content)
		}
	})
	root.Find("link[rel='image_src']").Each(func(_ int, s *goquery.Selection) {
		if href := strings.TrimSpace(s.AttrOr("href", "")); href != "" {
			h.Images = append(h.Images, models.ImageCandidate{URL: href, Tier: models.TierMeta})
		}
	})

	// ── 2. JSON-LD ────────────────────────────────────────────────
	root.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		harvestJSONLD(&h, s.Text())
	})

	// ── 3. dates from markup ──────────────────────────────────────
	root.Find("time[datetime]").Each(func(_ int, s *goquery.Selection) {
		if v := strings.TrimSpace(s.AttrOr("datetime", "")); v != "" {
			h.Dates = append(h.Dates, models.DateCandidate{Source: models.SourceTimeElement, Value: v})
		}
	})
	if site != nil {
		site.Date.Each(root, func(s *goquery.Selection) bool {
			s.Each(func(_ int, el *goquery.Selection) {
				if v := dateValue(el); v != "" {
					h.Dates = append(h.Dates, models.DateCandidate{Source: models.SourceSiteAttribute, Value: v})
				}
			})
			return true
		})
	}
	if site != Generic {
		h.Dates = append(h.Dates, genericDates(root, site)...)
	}
	root.Find("[data-date-time], [data-date]").Each(func(_ int, s *goquery.Selection) {
		if v := dateValue(s); v != "" {
			h.Dates = append(h.Dates, models.DateCandidate{Source: models.SourceSiteAttribute, Value: v})
		}
	})
	if base != nil {
		h.Dates = append(h.Dates, models.DateCandidate{Source: models.SourceURL, Value: base.String()})
	}
	if canon := strings.TrimSpace(root.Find("link[rel='canonical']").AttrOr("href", "")); canon != "" {
		h.Dates = append(h.Dates, models.DateCandidate{Source: models.SourceURL, Value: canon})
	}

	// ── 4. body images ────────────────────────────────────────────
	h.Images = append(h.Images, harvestImages(root, site)...)

	// ── 5. videos from markup ─────────────────────────────────────
	if site != nil {
		site.Videos.Each(root, func(s *goquery.Selection) bool {
			s.Each(func(_ int, el *goquery.Selection) {
				h.Videos = append(h.Videos, mediaSources(el)...)
			})
			return true
		})
	}
	root.Find("video").Each(func(_ int, s *goquery.Selection) {
		h.Videos = append(h.Videos, mediaSources(s)...)
	})
	root.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || strings.EqualFold(src, "about:blank") {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		lower := strings.ToLower(src)
		for _, tok := range iframeVideoTokens {
			if strings.Contains(lower, tok) {
				h.Videos = append(h.Videos, src)
				return
			}
		}
	})
	root.Find("script").Each(func(_ int, s *goquery.Selection) {
		if t := s.AttrOr("type", ""); t != "" && !strings.Contains(t, "javascript") {
			return
		}
		for _, m := range scriptVideoRe.FindAllStringSubmatch(s.Text(), -1) {
			h.Videos = append(h.Videos, strings.ReplaceAll(m[1], `\/`, "/"))
		}
	})

	return h
}

func metaKey(s *goquery.Selection) string {
	for _, attr := range []string{"property", "name", "itemprop"} {
		if v, ok := s.Attr(attr); ok && v != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}

// genericDates walks the generic date selectors, skipping nodes the site
// profile or the attribute passes already cover.
func genericDates(root *goquery.Selection, site *Site) []models.DateCandidate {
	covered := make(map[*html.Node]struct{})
	if site != nil {
		site.Date.Each(root, func(s *goquery.Selection) bool {
			for _, n := range s.Nodes {
				covered[n] = struct{}{}
			}
			return true
		})
	}
	var out []models.DateCandidate
	seen := make(map[*html.Node]struct{})
	Generic.Date.Each(root, func(s *goquery.Selection) bool {
		s.Each(func(_ int, el *goquery.Selection) {
			n := el.Get(0)
			if _, ok := covered[n]; ok {
				return
			}
			if _, ok := seen[n]; ok {
				return
			}
			seen[n] = struct{}{}
			if goquery.NodeName(el) == "meta" || el.Is("[data-date-time], [data-date]") {
				return
			}
			if v := dateValue(el); v != "" {
				out = append(out, models.DateCandidate{Source: models.SourceSiteAttribute, Value: v})
			}
		})
		return true
	})
	return out
}

func dateValue(s *goquery.Selection) string {
	for _, attr := range []string{"data-date-time", "data-date", "datetime", "content"} {
		if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return collapseSpaces(s.Text())
}

// mediaSources returns the src of a player element and of any <video> or
// <source> inside it.
func mediaSources(s *goquery.Selection) []string {
	var out []string
	add := func(el *goquery.Selection) {
		for _, attr := range []string{"src", "data-src"} {
			if v := strings.TrimSpace(el.AttrOr(attr, "")); v != "" {
				out = append(out, v)
				return
			}
		}
	}
	add(s)
	s.Find("video, source").Each(func(_ int, el *goquery.Selection) { add(el) })
	return out
}

// harvestImages walks every <img> in document order. Images inside a
// content container are tier 2, the rest tier 3.
func harvestImages(root *goquery.Selection, site *Site) []models.ImageCandidate {
	containers := make(map[*html.Node]struct{})
	mark := func(l SelectorList) {
		for _, n := range l.Matches(root).Nodes {
			containers[n] = struct{}{}
		}
	}
	if site != nil {
		mark(site.Content)
		mark(site.Images)
	}
	mark(Generic.Content)

	var out []models.ImageCandidate
	root.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := imageSource(s)
		if src == "" {
			return
		}
		tier := models.TierGeneric
		if insideAny(s.Get(0), containers) {
			tier = models.TierContent
		}
		out = append(out, models.ImageCandidate{
			URL:    src,
			Tier:   tier,
			Width:  postprocess.ParseDimension(s.AttrOr("width", "")),
			Height: postprocess.ParseDimension(s.AttrOr("height", "")),
		})
	})
	return out
}

// ImagesIn returns every <img> under root as a candidate of the given tier.
func ImagesIn(root *goquery.Selection, tier models.ImageTier) []models.ImageCandidate {
	var out []models.ImageCandidate
	root.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src := imageSource(s); src != "" {
			out = append(out, models.ImageCandidate{
				URL:    src,
				Tier:   tier,
				Width:  postprocess.ParseDimension(s.AttrOr("width", "")),
				Height: postprocess.ParseDimension(s.AttrOr("height", "")),
			})
		}
	})
	return out
}

// imageSource prefers a real URL over a data: placeholder left by lazy
// loaders.
func imageSource(s *goquery.Selection) string {
	for _, attr := range lazySrcAttrs {
		v := strings.TrimSpace(s.AttrOr(attr, ""))
		if v != "" && !strings.HasPrefix(strings.ToLower(v), "data:") {
			return v
		}
	}
	return ""
}

func insideAny(n *html.Node, set map[*html.Node]struct{}) bool {
	for ; n != nil; n = n.Parent {
		if _, ok := set[n]; ok {
			return true
		}
	}
	return false
}

// ── JSON-LD ─────────────────────────────────────────────────────────

func harvestJSONLD(h *Harvest, raw string) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return
	}
	walkJSONLD(v, func(obj map[string]any) {
		switch {
		case hasType(obj, "VideoObject"):
			h.Videos = append(h.Videos, videoObjectURLs(obj)...)
		case isArticleObject(obj):
			if d, ok := obj["datePublished"].(string); ok && strings.TrimSpace(d) != "" {
				h.Dates = append(h.Dates, models.DateCandidate{Source: models.SourceMeta, Value: strings.TrimSpace(d)})
			}
			for _, u := range imageURLs(obj["image"]) {
				h.Images = append(h.Images, models.ImageCandidate{URL: u, Tier: models.TierMeta})
			}
			for _, o := range objects(obj["video"]) {
				if _, typed := o["@type"]; !typed {
					h.Videos = append(h.Videos, videoObjectURLs(o)...)
				}
			}
		}
	})
}

func walkJSONLD(v any, fn func(map[string]any)) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			walkJSONLD(e, fn)
		}
	case map[string]any:
		fn(t)
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if k == "image" || k == "logo" || k == "author" || k == "publisher" {
				continue
			}
			walkJSONLD(t[k], fn)
		}
	}
}

func hasType(obj map[string]any, want string) bool {
	for _, t := range types(obj) {
		if t == want {
			return true
		}
	}
	return false
}

func isArticleObject(obj map[string]any) bool {
	for _, t := range types(obj) {
		if strings.Contains(t, "Article") || t == "BlogPosting" || t == "WebPage" {
			return true
		}
	}
	return false
}

func types(obj map[string]any) []string {
	switch t := obj["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func objects(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		var out []map[string]any
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func videoObjectURLs(obj map[string]any) []string {
	var out []string
	for _, k := range []string{"contentUrl", "embedUrl"} {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

// imageURLs accepts the shapes schema.org allows for "image": a URL, an
// ImageObject, or a list of either.
func imageURLs(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case map[string]any:
		if s, ok := t["url"].(string); ok && strings.TrimSpace(s) != "" {
			return []string{strings.TrimSpace(s)}
		}
	case []any:
		var out []string
		for _, e := range t {
			out = append(out, imageURLs(e)...)
		}
		return out
	}
	return nil
}
