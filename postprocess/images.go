package postprocess

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/models"
)

// ImageFilter ranks image candidates by tier and drops icons, logos,
// advertising, tracking pixels and banners.
type ImageFilter struct {
	// MinSide applies to meta and content-container images.
	MinSide int
	// MinSideGeneric applies to the remaining <img> elements.
	MinSideGeneric int
	// MaxAspect drops images whose long side is at least MaxAspect times
	// the short side.
	MaxAspect float64
	// Limit caps the output.
	Limit int
}

// NewImageFilter builds a filter from configuration.
func NewImageFilter(cfg config.ImageConfig) ImageFilter {
	return ImageFilter{
		MinSide:        cfg.MinSide,
		MinSideGeneric: cfg.MinSideGeneric,
		MaxAspect:      cfg.MaxAspect,
		Limit:          models.MaxImages,
	}
}

// DefaultImageFilter uses the stock thresholds.
func DefaultImageFilter() ImageFilter {
	return NewImageFilter(config.ImageConfig{MinSide: 100, MinSideGeneric: 300, MaxAspect: 5})
}

// Rank returns at most Limit normalized URLs, tier by tier, keeping
// document order inside a tier. Duplicates keep their first (best) slot.
func (f ImageFilter) Rank(cands []models.ImageCandidate, base *url.URL) []string {
	ordered := make([]models.ImageCandidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return tierOf(ordered[i]) < tierOf(ordered[j])
	})

	limit := f.Limit
	if limit <= 0 {
		limit = models.MaxImages
	}

	out := []string{}
	seen := make(map[string]struct{})
	for _, c := range ordered {
		if len(out) >= limit {
			break
		}
		u, ok := NormalizeURL(c.URL, base)
		if !ok || f.excluded(u, c) {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Apply re-filters an already ranked list. Every URL is treated as a
// meta-tier image so the order and survivors of a previous Rank are kept.
func (f ImageFilter) Apply(urls []string, base *url.URL) []string {
	cands := make([]models.ImageCandidate, len(urls))
	for i, u := range urls {
		cands[i] = models.ImageCandidate{URL: u, Tier: models.TierMeta}
	}
	return f.Rank(cands, base)
}

func tierOf(c models.ImageCandidate) models.ImageTier {
	if c.Tier < models.TierMeta || c.Tier > models.TierGeneric {
		return models.TierGeneric
	}
	return c.Tier
}

var excludedImageExt = map[string]struct{}{
	".svg": {}, ".svgz": {}, ".gif": {}, ".ico": {},
}

// excludedImageTokens are matched against the lowercased path and query.
var excludedImageTokens = []string{
	"/logo", "logo_", "_logo", "logo.", "-logo",
	"/icon", "icon_", "_icon", "icon.", "favicon",
	"/banner", "banner_", "_banner", "banner.", "-banner",
	"/ad_", "/ads/", "_ad.", "_ad_", "/ad/", "advert",
	"/avatar", "avatar_", "/profile", "profile_",
	"emoji", "/symbol", "/btn_", "sprite",
	"placeholder", "no_image", "noimage", "no-image",
	"blank.", "spacer.", "pixel.", "/pixel",
	"mannerbot", "office_logo", "/thumb",
	"kakao", "facebook", "twitter",

	// Bare substrings: any path containing them is dropped, including
	// "shared" and "default_" forms.
	"share", "sns", "default",
}

// excludedImageNamePrefixes are matched against the file name only.
var excludedImageNamePrefixes = []string{"ic-", "ic_", "bt_", "btn"}

var excludedImageHosts = []string{
	"facebook.com", "twitter.com", "doubleclick.net", "google-analytics.com",
	"kakao.com", "pixel.wp.com",
}

var dimensionRe = regexp.MustCompile(`(?:^|[^0-9a-z])(\d{2,5})[x×](\d{1,5})(?:[^0-9]|$)`)

func (f ImageFilter) excluded(rawURL string, c models.ImageCandidate) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	p := strings.ToLower(u.Path)
	if _, bad := excludedImageExt[path.Ext(p)]; bad {
		return true
	}

	host := strings.ToLower(u.Hostname())
	for _, h := range excludedImageHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}

	haystack := p
	if u.RawQuery != "" {
		haystack += "?" + strings.ToLower(u.RawQuery)
	}
	for _, tok := range excludedImageTokens {
		if strings.Contains(haystack, tok) {
			return true
		}
	}
	name := path.Base(p)
	for _, prefix := range excludedImageNamePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	w, h := c.Width, c.Height
	if w == 0 && h == 0 {
		w, h = inferDimensions(p)
	}
	minSide := f.MinSide
	if tierOf(c) == models.TierGeneric {
		minSide = f.MinSideGeneric
	}
	if (w > 0 && w < minSide) || (h > 0 && h < minSide) {
		return true
	}
	if w > 0 && h > 0 && f.MaxAspect > 0 {
		long, short := float64(w), float64(h)
		if short > long {
			long, short = short, long
		}
		if long/short >= f.MaxAspect {
			return true
		}
	}
	return false
}

// inferDimensions reads a WxH size token such as "600x400" from the
// path. The last token wins since CDNs append the rendition size.
func inferDimensions(p string) (int, int) {
	m := dimensionRe.FindAllStringSubmatch(p, -1)
	if len(m) == 0 {
		return 0, 0
	}
	last := m[len(m)-1]
	w, _ := strconv.Atoi(last[1])
	h, _ := strconv.Atoi(last[2])
	return w, h
}

// NormalizeURL resolves raw against base and returns a canonical
// absolute http(s) URL. Protocol-relative URLs become https.
func NormalizeURL(raw string, base *url.URL) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

// ParseDimension reads a declared width/height attribute such as "640",
// "640px" or "640.5". Percentages and garbage yield 0.
func ParseDimension(v string) int {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if v == "" || strings.HasSuffix(v, "%") {
		return 0
	}
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
