package postprocess

import (
	"net/url"
	"path"
	"strings"

	"github.com/use-agent/clipper/models"
)

// VideoFilter keeps embeds from known video hosts and direct media files.
type VideoFilter struct {
	Limit int
}

// DefaultVideoFilter caps output at models.MaxVideos.
func DefaultVideoFilter() VideoFilter {
	return VideoFilter{Limit: models.MaxVideos}
}

var trackerHosts = []string{
	"googletagmanager.com", "google-analytics.com", "doubleclick.net",
	"googlesyndication.com", "scorecardresearch.com",
}

var mediaExt = map[string]struct{}{
	".mp4": {}, ".webm": {}, ".ogg": {}, ".ogv": {}, ".m3u8": {}, ".mov": {},
}

// videoHost reports a host together with the path prefixes that mark an
// embeddable video. An empty prefix list accepts any path.
type videoHost struct {
	host     string
	prefixes []string
}

var videoHosts = []videoHost{
	{"youtube.com", []string{"/embed/", "/watch", "/shorts/", "/v/"}},
	{"youtube-nocookie.com", []string{"/embed/"}},
	{"youtu.be", nil},
	{"player.vimeo.com", []string{"/video/"}},
	{"vimeo.com", nil},
	{"dailymotion.com", []string{"/video/", "/embed/"}},
	{"dai.ly", nil},
	{"tv.naver.com", nil},
	{"tv.kakao.com", nil},
	{"play-tv.kakao.com", nil},
}

// Filter drops placeholders, trackers and unrecognised URLs, then dedupes
// keeping input order.
func (f VideoFilter) Filter(cands []string, base *url.URL) []string {
	limit := f.Limit
	if limit <= 0 {
		limit = models.MaxVideos
	}
	out := []string{}
	seen := make(map[string]struct{})
	for _, raw := range cands {
		if len(out) >= limit {
			break
		}
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.EqualFold(trimmed, "about:blank") {
			continue
		}
		u, ok := NormalizeURL(trimmed, base)
		if !ok || !isVideoURL(u) {
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

func isVideoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	lowerPath := strings.ToLower(u.Path)

	if strings.Contains(strings.ToLower(raw), "analytics") {
		return false
	}
	for _, t := range trackerHosts {
		if hostMatches(host, t) {
			return false
		}
	}
	if hostMatches(host, "facebook.com") && strings.HasPrefix(lowerPath, "/tr") {
		return false
	}

	for _, vh := range videoHosts {
		if !hostMatches(host, vh.host) {
			continue
		}
		if len(vh.prefixes) == 0 {
			return lowerPath != "" && lowerPath != "/"
		}
		for _, p := range vh.prefixes {
			if strings.HasPrefix(lowerPath, p) {
				return true
			}
		}
		return false
	}

	_, ok := mediaExt[path.Ext(lowerPath)]
	return ok
}

func hostMatches(host, want string) bool {
	return host == want || strings.HasSuffix(host, "."+want)
}
