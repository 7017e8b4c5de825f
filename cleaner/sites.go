package cleaner

import (
	"strings"

	"github.com/use-agent/clipper/config"
)

// Site holds the compiled selectors used to pull an article out of one
// publisher's markup.
type Site struct {
	Name    string
	Hosts   []string
	Title   SelectorList
	Content SelectorList
	Date    SelectorList
	Images  SelectorList
	Videos  SelectorList
}

// MatchesHost reports whether host equals one of the site's hosts or is a
// subdomain of one.
func (s *Site) MatchesHost(host string) bool {
	host = normalizeHost(host)
	for _, h := range s.Hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if i := strings.LastIndexByte(h, ':'); i >= 0 && !strings.Contains(h[i:], "]") {
		h = h[:i]
	}
	return strings.TrimPrefix(h, "www.")
}

// Generic is used when no site matches, and after a matched site's own
// selectors come up empty.
var Generic = &Site{
	Name: "generic",
	Title: mustSelectors(
		"h1.article-title", "h1.entry-title", "h1.post-title",
		"h1[itemprop='headline']", "article h1", "main h1", "h1.title",
		".article-header h1", ".post-header h1", "h1",
	),
	Content: mustSelectors(
		"article.content", "div.article-content", "div.entry-content",
		"div.post-content", "div[itemprop='articleBody']", "article",
		"main article", ".article-body", ".story-body", "div.content",
	),
	// time[datetime], meta and data-date attributes have passes of their own.
	Date: mustSelectors(
		"[itemprop='datePublished']", ".date", ".publish-date",
		".article-date", ".post-date", "time:not([datetime])",
	),
}

var builtinSites = []*Site{
	{
		Name:    "naver",
		Hosts:   []string{"n.news.naver.com", "news.naver.com"},
		Title:   mustSelectors("h2#title_area", "h2.media_end_head_headline", ".article_header h3"),
		Content: mustSelectors("article#dic_area", "#articleBodyContents", "#articeBody"),
		Date:    mustSelectors(".media_end_head_info_datestamp_time[data-date-time]", "span.t11"),
	},
	{
		Name:    "daum",
		Hosts:   []string{"v.daum.net"},
		Title:   mustSelectors("h3.tit_view", "h2.tit_newsview"),
		Content: mustSelectors("div.article_view", "#harmonyContainer", "div#mArticle"),
		Date:    mustSelectors("span.num_date", "span.txt_info"),
	},
	{
		Name:    "chosun",
		Hosts:   []string{"chosun.com"},
		Title:   mustSelectors("h1.article-header__headline", "h1.news_title"),
		Content: mustSelectors("section.article-body", "div.article-body__content", "#news_body_area"),
		Date:    mustSelectors(".article-header__date", "span.date"),
	},
	{
		Name:    "joongang",
		Hosts:   []string{"joongang.co.kr"},
		Title:   mustSelectors("h1.headline", "h1#article_title"),
		Content: mustSelectors("div#article_body", "div.article_body"),
		Date:    mustSelectors(".date", ".article_date"),
	},
	{
		Name:    "hani",
		Hosts:   []string{"hani.co.kr"},
		Title:   mustSelectors("h4.title", "h1.article-title"),
		Content: mustSelectors("div.article-text", "div.text"),
		Date:    mustSelectors(".date-time", ".article-date"),
	},
	{
		Name:    "donga",
		Hosts:   []string{"donga.com"},
		Title:   mustSelectors("h1.title", "h2.title"),
		Content: mustSelectors("div.article_txt", "section.news_view"),
		Date:    mustSelectors(".date", ".article_date"),
	},
	{
		Name:    "kbs",
		Hosts:   []string{"news.kbs.co.kr"},
		Title:   mustSelectors("h4.headline-title", "h2.tit-news"),
		Content: mustSelectors("div.detail-body", "#cont_newstext"),
		Date:    mustSelectors(".date", ".input-date"),
		Videos:  mustSelectors("div.player-wrap video", "div.vod-player"),
	},
	{
		Name:    "mbc",
		Hosts:   []string{"imnews.imbc.com"},
		Title:   mustSelectors("h2.art_title", "h1.title"),
		Content: mustSelectors("div.news_txt", "div.article_body"),
		Date:    mustSelectors(".time", ".date"),
		Videos:  mustSelectors(".vod_area video", ".player video"),
	},
	{
		Name:    "sbs",
		Hosts:   []string{"news.sbs.co.kr"},
		Title:   mustSelectors("h1.article_title", "h1.news_title"),
		Content: mustSelectors("div.article_cont_area", "div.text_area"),
		Date:    mustSelectors(".date", ".article_date"),
		Videos:  mustSelectors(".vod_player video", ".video-container"),
	},
	{
		Name:    "jtbc",
		Hosts:   []string{"news.jtbc.co.kr"},
		Title:   mustSelectors("h2.headline_title", "h1.art_title"),
		Content: mustSelectors("div.article_content", "div.artical_body"),
		Date:    mustSelectors(".date_area", ".article_date"),
		Videos:  mustSelectors(".vod_wrap video", ".player_wrap"),
	},
	{
		Name:    "ytn",
		Hosts:   []string{"ytn.co.kr"},
		Title:   mustSelectors("h2.title", "h1.news_title"),
		Content: mustSelectors("div.article", "div.news_content"),
		Date:    mustSelectors(".date", ".news_date"),
		Videos:  mustSelectors(".video_box video", ".player"),
	},
}

// SiteRegistry resolves a host to its site profile. It is read-only after
// construction.
type SiteRegistry struct {
	sites []*Site
}

// NewSiteRegistry compiles the given profiles and places them ahead of the
// built-in sites, so a profile for an existing host overrides it.
func NewSiteRegistry(profiles []config.SiteProfile) (*SiteRegistry, error) {
	r := &SiteRegistry{}
	for _, p := range profiles {
		s, err := compileProfile(p)
		if err != nil {
			return nil, err
		}
		r.sites = append(r.sites, s)
	}
	r.sites = append(r.sites, builtinSites...)
	return r, nil
}

// DefaultSiteRegistry holds only the built-in sites.
func DefaultSiteRegistry() *SiteRegistry {
	return &SiteRegistry{sites: builtinSites}
}

func compileProfile(p config.SiteProfile) (*Site, error) {
	s := &Site{Name: p.Name}
	for _, h := range p.Hosts {
		s.Hosts = append(s.Hosts, normalizeHost(h))
	}
	fields := []struct {
		dst   *SelectorList
		exprs []string
	}{
		{&s.Title, p.Title},
		{&s.Content, p.Content},
		{&s.Date, p.Date},
		{&s.Images, p.Images},
		{&s.Videos, p.Videos},
	}
	for _, f := range fields {
		sl, err := CompileSelectors(f.exprs)
		if err != nil {
			return nil, err
		}
		*f.dst = sl
	}
	return s, nil
}

// Match returns the first site whose hosts cover host, or nil.
func (r *SiteRegistry) Match(host string) *Site {
	if r == nil {
		return nil
	}
	for _, s := range r.sites {
		if s.MatchesHost(host) {
			return s
		}
	}
	return nil
}

// Names lists the registered site names in lookup order.
func (r *SiteRegistry) Names() []string {
	names := make([]string, len(r.sites))
	for i, s := range r.sites {
		names[i] = s.Name
	}
	return names
}
