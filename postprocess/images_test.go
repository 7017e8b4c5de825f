package postprocess

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/use-agent/clipper/models"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// Scenario D.
func TestRankDropsLogosAndBanners(t *testing.T) {
	base := mustURL(t, "https://news.example.com/article/1")
	cands := []models.ImageCandidate{
		{URL: "/static/logo.svg", Tier: models.TierGeneric},
		{URL: "/img/banner_ad.jpg", Tier: models.TierGeneric, Width: 600, Height: 100},
		{URL: "/img/photo1.jpg", Tier: models.TierContent, Width: 400, Height: 300},
	}
	got := DefaultImageFilter().Rank(cands, base)
	want := []string{"https://news.example.com/img/photo1.jpg"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank mismatch (-want +got):\n%s", diff)
	}
}

func TestRankTierOrder(t *testing.T) {
	base := mustURL(t, "https://news.example.com/a")
	cands := []models.ImageCandidate{
		{URL: "https://cdn.example.com/generic1.jpg", Tier: models.TierGeneric},
		{URL: "https://cdn.example.com/body1.jpg", Tier: models.TierContent},
		{URL: "https://cdn.example.com/og.jpg", Tier: models.TierMeta},
		{URL: "https://cdn.example.com/body2.jpg", Tier: models.TierContent},
		{URL: "https://cdn.example.com/generic2.jpg", Tier: models.TierGeneric},
	}
	got := DefaultImageFilter().Rank(cands, base)
	want := []string{
		"https://cdn.example.com/og.jpg",
		"https://cdn.example.com/body1.jpg",
		"https://cdn.example.com/body2.jpg",
		"https://cdn.example.com/generic1.jpg",
		"https://cdn.example.com/generic2.jpg",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank mismatch (-want +got):\n%s", diff)
	}
}

func TestRankCapAndDedupe(t *testing.T) {
	base := mustURL(t, "https://news.example.com/a")
	var cands []models.ImageCandidate
	for i := 0; i < 12; i++ {
		u := fmt.Sprintf("https://CDN.example.com/p%d.jpg", i%4)
		cands = append(cands, models.ImageCandidate{URL: u, Tier: models.ImageTier(i%3 + 1)})
		cands = append(cands, models.ImageCandidate{URL: u + "#frag", Tier: models.TierGeneric})
	}
	for i := 0; i < 10; i++ {
		cands = append(cands, models.ImageCandidate{URL: fmt.Sprintf("//cdn.example.com/q%d.jpg", i), Tier: models.TierContent})
	}

	got := DefaultImageFilter().Rank(cands, base)
	if len(got) > models.MaxImages {
		t.Fatalf("len = %d, want <= %d", len(got), models.MaxImages)
	}
	seen := map[string]bool{}
	for _, u := range got {
		if seen[u] {
			t.Errorf("duplicate %s in %v", u, got)
		}
		seen[u] = true
	}
}

func TestRankTierOnePrecedesOthersProperty(t *testing.T) {
	base := mustURL(t, "https://news.example.com/a")
	for n := 1; n <= 8; n++ {
		var cands []models.ImageCandidate
		for i := 0; i < n; i++ {
			cands = append(cands,
				models.ImageCandidate{URL: fmt.Sprintf("https://c.example.com/g%d-%d.jpg", n, i), Tier: models.TierGeneric},
				models.ImageCandidate{URL: fmt.Sprintf("https://c.example.com/b%d-%d.jpg", n, i), Tier: models.TierContent},
			)
		}
		meta := fmt.Sprintf("https://c.example.com/og%d.jpg", n)
		cands = append(cands, models.ImageCandidate{URL: meta, Tier: models.TierMeta})

		got := DefaultImageFilter().Rank(cands, base)
		if len(got) == 0 || got[0] != meta {
			t.Errorf("n=%d: first = %v, want %s", n, got, meta)
		}
	}
}

func TestRankExclusions(t *testing.T) {
	base := mustURL(t, "https://news.example.com/a")
	tests := []struct {
		name string
		cand models.ImageCandidate
		keep bool
	}{
		{"plain jpg", models.ImageCandidate{URL: "/img/story.jpg", Tier: models.TierContent}, true},
		{"gif", models.ImageCandidate{URL: "/img/anim.gif", Tier: models.TierContent}, false},
		{"ico", models.ImageCandidate{URL: "/favicon.ico", Tier: models.TierMeta}, false},
		{"icon token", models.ImageCandidate{URL: "/img/icon_share.png", Tier: models.TierContent}, false},
		{"avatar", models.ImageCandidate{URL: "/users/avatar_12.jpg", Tier: models.TierContent}, false},
		{"kakao share", models.ImageCandidate{URL: "/img/kakao_btn.png", Tier: models.TierContent}, false},
		{"placeholder", models.ImageCandidate{URL: "/img/no_image.png", Tier: models.TierContent}, false},
		{"ic- prefix", models.ImageCandidate{URL: "/img/ic-arrow.png", Tier: models.TierContent}, false},
		{"public path is fine", models.ImageCandidate{URL: "/public-images/2024/story.jpg", Tier: models.TierContent}, true},
		{"thumb dir", models.ImageCandidate{URL: "/news/thumb/photo.jpg", Tier: models.TierContent}, false},
		{"thumb name", models.ImageCandidate{URL: "/news/thumb_640x480.jpg", Tier: models.TierContent}, false},
		{"share", models.ImageCandidate{URL: "/common/sharebtn.png", Tier: models.TierContent}, false},
		{"shared path", models.ImageCandidate{URL: "/shared/photos/story.jpg", Tier: models.TierContent}, false},
		{"sns", models.ImageCandidate{URL: "/img/snslink_640x480.jpg", Tier: models.TierContent}, false},
		{"default suffix", models.ImageCandidate{URL: "/img/site_default.jpg", Tier: models.TierContent}, false},
		{"default prefix", models.ImageCandidate{URL: "/img/default_photo.jpg", Tier: models.TierContent}, false},
		{"article photo", models.ImageCandidate{URL: "/news/photo/2024/03/15/main.jpg", Tier: models.TierContent}, true},
		{"tiny declared", models.ImageCandidate{URL: "/img/a.jpg", Tier: models.TierContent, Width: 50, Height: 50}, false},
		{"tiny inferred", models.ImageCandidate{URL: "/img/a_80x60.jpg", Tier: models.TierContent}, false},
		{"generic under 300", models.ImageCandidate{URL: "/img/b.jpg", Tier: models.TierGeneric, Width: 250, Height: 250}, false},
		{"content 250 ok", models.ImageCandidate{URL: "/img/c.jpg", Tier: models.TierContent, Width: 250, Height: 250}, true},
		{"tall banner", models.ImageCandidate{URL: "/img/d.jpg", Tier: models.TierContent, Width: 120, Height: 800}, false},
		{"unknown size kept", models.ImageCandidate{URL: "/img/e.jpg", Tier: models.TierGeneric}, true},
		{"data uri", models.ImageCandidate{URL: "data:image/png;base64,AAAA", Tier: models.TierContent}, false},
		{"facebook host", models.ImageCandidate{URL: "https://www.facebook.com/tr?id=1", Tier: models.TierGeneric}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultImageFilter().Rank([]models.ImageCandidate{tt.cand}, base)
			if kept := len(got) == 1; kept != tt.keep {
				t.Errorf("kept = %v, want %v (got %v)", kept, tt.keep, got)
			}
		})
	}
}

func TestApplyIsStable(t *testing.T) {
	base := mustURL(t, "https://news.example.com/a")
	cands := []models.ImageCandidate{
		{URL: "https://cdn.example.com/og.jpg", Tier: models.TierMeta},
		{URL: "/img/body_640x480.jpg", Tier: models.TierContent},
		{URL: "/img/wide.jpg", Tier: models.TierGeneric, Width: 800, Height: 600},
	}
	f := DefaultImageFilter()
	once := f.Rank(cands, base)
	twice := f.Apply(once, base)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Apply changed a ranked list (-once +twice):\n%s", diff)
	}
}

func TestNormalizeURL(t *testing.T) {
	base := mustURL(t, "https://News.Example.com/section/page.html")
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"img/a.jpg", "https://news.example.com/section/img/a.jpg", true},
		{"/a.jpg#top", "https://news.example.com/a.jpg", true},
		{"//CDN.example.com/a.jpg", "https://cdn.example.com/a.jpg", true},
		{"HTTP://Example.com/A.jpg", "http://example.com/A.jpg", true},
		{"javascript:void(0)", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeURL(tt.in, base)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeURL(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseDimension(t *testing.T) {
	tests := map[string]int{"640": 640, "640px": 640, " 320.5 ": 320, "100%": 0, "auto": 0, "": 0}
	for in, want := range tests {
		if got := ParseDimension(in); got != want {
			t.Errorf("ParseDimension(%q) = %d, want %d", in, got, want)
		}
	}
}
