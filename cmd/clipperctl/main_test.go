package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/extractor"
	"github.com/use-agent/clipper/models"
)

func boolPtr(b bool) *bool { return &b }

func TestForceBrowser(t *testing.T) {
	tests := []struct {
		on, off bool
		want    *bool
	}{
		{false, false, nil},
		{true, false, boolPtr(true)},
		{false, true, boolPtr(false)},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, forceBrowser(tt.on, tt.off)); diff != "" {
			t.Errorf("forceBrowser(%v, %v) (-want +got):\n%s", tt.on, tt.off, diff)
		}
	}
}

func TestWantsBrowser(t *testing.T) {
	enabled := &config.Config{Browser: config.BrowserConfig{Enabled: true}}
	byDefault := &config.Config{
		Browser: config.BrowserConfig{Enabled: true},
		Extract: config.ExtractConfig{BrowserByDefault: true},
	}
	disabled := &config.Config{Extract: config.ExtractConfig{BrowserByDefault: true}}

	tests := []struct {
		name string
		cfg  *config.Config
		opts extractor.Options
		want bool
	}{
		{"default on", byDefault, extractor.Options{}, true},
		{"default off", enabled, extractor.Options{}, false},
		{"forced", enabled, extractor.Options{ForceBrowser: boolPtr(true)}, true},
		{"forbidden", byDefault, extractor.Options{ForceBrowser: boolPtr(false)}, false},
		{"named", enabled, extractor.Options{Strategies: []string{"pattern", "browser"}}, true},
		{"disabled", disabled, extractor.Options{ForceBrowser: boolPtr(true)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wantsBrowser(tt.cfg, tt.opts); got != tt.want {
				t.Errorf("wantsBrowser = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	data := "# portals\nhttps://n.news.naver.com/a\n\n  https://v.daum.net/b  \n# done\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := readURLs(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://n.news.naver.com/a", "https://v.daum.net/b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("readURLs (-want +got):\n%s", diff)
	}
}

func TestMarkDuplicates(t *testing.T) {
	text := "정부가 내년도 예산안을 국회에 제출했다. 총지출은 올해보다 소폭 늘었다."
	art := func(s string) *models.ArticleResult {
		a := models.NewArticleResult("https://a.kr")
		a.Text = s
		return a
	}
	lines := []batchLine{
		{Success: true, Article: art(text)},
		{Success: false},
		{Success: true, Article: art(text)},
	}
	markDuplicates(lines)
	if lines[0].DuplicateOf != nil {
		t.Error("first line marked duplicate")
	}
	if d := lines[2].DuplicateOf; d == nil || *d != 0 {
		t.Errorf("duplicate_of = %v, want 0", d)
	}
}

func TestErrorDetail(t *testing.T) {
	xe := models.NewExtractError(models.ErrCodeExtractionTimeout, "budget exceeded", nil).WithMethods([]string{"goose"})
	if got := errorDetail(xe); got.Code != models.ErrCodeExtractionTimeout || len(got.MethodsTried) != 1 {
		t.Errorf("errorDetail(ExtractError) = %+v", got)
	}
	if got := errorDetail(errors.New("boom")); got.Code != models.ErrCodeInternal {
		t.Errorf("errorDetail(plain) = %+v", got)
	}
}
