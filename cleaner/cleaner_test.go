package cleaner

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/use-agent/clipper/config"
	"github.com/use-agent/clipper/models"
)

const newsFixture = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta property="og:image" content="https://img.example.com/og/main.jpg">
<meta property="article:published_time" content="2024-03-15T10:30:00+09:00">
<meta property="og:video" content="https://www.youtube.com/embed/meta1">
<link rel="canonical" href="https://news.example.com/2024/03/15/story">
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
 {"@type":"NewsArticle","datePublished":"2024-03-15T09:00:00+09:00",
  "image":[{"@type":"ImageObject","url":"https://img.example.com/ld/1.jpg"}],
  "author":{"@type":"Person","image":"https://img.example.com/avatar.jpg"}},
 {"@type":"VideoObject","contentUrl":"https://cdn.example.com/v/clip.mp4"}
]}
</script>
</head>
<body>
<nav><a href="/">Home</a><img src="/static/logo.svg"></nav>
<div class="article-content">
  <h1 class="article-title">시장 금리 인하 기대감</h1>
  <time datetime="2024-03-14">어제</time>
  <span class="media_end_head_info_datestamp_time" data-date-time="2024-03-15 10:30:00">2024.03.15. 오전 10:30</span>
  <p>첫 번째 문단입니다.</p>
  <p>두 번째 문단입니다.</p>
  <img src="data:image/gif;base64,R0lGOD" data-src="/img/photo1.jpg" width="400" height="300">
  <iframe src="https://www.youtube.com/embed/abc"></iframe>
  <p>ⓒ 뉴스 무단 전재 및 재배포 금지</p>
</div>
<aside class="related"><img src="/img/side.jpg"></aside>
<script>var player = {"hlsUrl": "https:\/\/cdn.example.com\/live\/index.m3u8"};</script>
</body>
</html>`

func parse(t *testing.T, h string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(h))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestHarvestDocument(t *testing.T) {
	base, _ := url.Parse("https://news.example.com/2024/03/15/story")
	doc := parse(t, newsFixture)
	site := &Site{Name: "test", Date: mustSelectors(".media_end_head_info_datestamp_time")}

	got := HarvestDocument(doc, base, site)

	wantImages := []models.ImageCandidate{
		{URL: "https://img.example.com/og/main.jpg", Tier: models.TierMeta},
		{URL: "https://img.example.com/ld/1.jpg", Tier: models.TierMeta},
		{URL: "/static/logo.svg", Tier: models.TierGeneric},
		{URL: "/img/photo1.jpg", Tier: models.TierContent, Width: 400, Height: 300},
		{URL: "/img/side.jpg", Tier: models.TierGeneric},
	}
	if diff := cmp.Diff(wantImages, got.Images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}

	wantDates := []models.DateCandidate{
		{Source: models.SourceMeta, Value: "2024-03-15T10:30:00+09:00"},
		{Source: models.SourceMeta, Value: "2024-03-15T09:00:00+09:00"},
		{Source: models.SourceTimeElement, Value: "2024-03-14"},
		{Source: models.SourceSiteAttribute, Value: "2024-03-15 10:30:00"},
		{Source: models.SourceSiteAttribute, Value: "2024-03-15 10:30:00"},
		{Source: models.SourceURL, Value: "https://news.example.com/2024/03/15/story"},
		{Source: models.SourceURL, Value: "https://news.example.com/2024/03/15/story"},
	}
	if diff := cmp.Diff(wantDates, got.Dates); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}

	wantVideos := []string{
		"https://www.youtube.com/embed/meta1",
		"https://cdn.example.com/v/clip.mp4",
		"https://www.youtube.com/embed/abc",
		"https://cdn.example.com/live/index.m3u8",
	}
	if diff := cmp.Diff(wantVideos, got.Videos); diff != "" {
		t.Errorf("videos mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvestGenericDates(t *testing.T) {
	base, _ := url.Parse("https://news.example.org/article/12345")
	doc := parse(t, `<html><head>
<meta itemprop="datePublished" content="2024-03-15T09:30:00+09:00">
</head><body><article>
<h1>제목</h1>
<span itemprop="datePublished">2024.03.15 09:30</span>
<p class="date">2024-03-15</p>
<time>2024년 3월 15일</time>
<time datetime="2024-03-14">어제</time>
<p>본문</p>
</article></body></html>`)

	got := HarvestDocument(doc, base, nil)

	want := []models.DateCandidate{
		{Source: models.SourceMeta, Value: "2024-03-15T09:30:00+09:00"},
		{Source: models.SourceTimeElement, Value: "2024-03-14"},
		{Source: models.SourceSiteAttribute, Value: "2024.03.15 09:30"},
		{Source: models.SourceSiteAttribute, Value: "2024-03-15"},
		{Source: models.SourceSiteAttribute, Value: "2024년 3월 15일"},
		{Source: models.SourceURL, Value: "https://news.example.org/article/12345"},
	}
	if diff := cmp.Diff(want, got.Dates); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}

func TestHarvestGenericDatesSkipSiteNodes(t *testing.T) {
	base, _ := url.Parse("https://news.example.org/a")
	doc := parse(t, `<body><p class="date">2024-03-15</p></body>`)
	site := &Site{Name: "test", Date: mustSelectors("p.date")}

	got := HarvestDocument(doc, base, site)

	want := []models.DateCandidate{
		{Source: models.SourceSiteAttribute, Value: "2024-03-15"},
		{Source: models.SourceURL, Value: "https://news.example.org/a"},
	}
	if diff := cmp.Diff(want, got.Dates); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanText(t *testing.T) {
	in := "  첫 문단  입니다.  \r\n\r\n\r\n\n두 번째\t문단\n▶ 관련 기사 보기\nCopyright © 2024 Example News\n홍길동 기자 hong@example.com\n\n\n끝"
	want := "첫 문단 입니다.\n\n두 번째 문단\n\n끝"
	if got := CleanText(in); got != want {
		t.Errorf("CleanText =\n%q\nwant\n%q", got, want)
	}
}

func TestCleanTextNFC(t *testing.T) {
	if got := CleanText("\u1100\u1161"); got != "\uac00" {
		t.Errorf("CleanText = %q, want %q", got, "\uac00")
	}
}

func TestIsBoilerplateLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"ⓒ 연합뉴스", true},
		{"<저작권자 © 뉴스, 무단전재 및 재배포 금지>", true},
		{"▶ 네이버에서 구독하세요", true},
		{"김철수 기자", true},
		{"reporter@example.co.kr", true},
		{"Copyright 2024. All rights reserved.", true},
		{"정부는 15일 기준금리를 동결했다.", false},
		{"", false},
		{strings.Repeat("저작권법 개정안에 대한 논의가 이어졌다 copyright ", 10), false},
	}
	for _, tt := range tests {
		if got := IsBoilerplateLine(tt.line); got != tt.want {
			t.Errorf("IsBoilerplateLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestBlockText(t *testing.T) {
	doc := parse(t, `<div id="c"><p>one
	two</p><p>three<br>four</p><script>var x=1;</script><ul><li>a</li><li>b</li></ul></div>`)
	got := BlockText(doc.Find("#c"))
	want := "one two\n\nthree\nfour\n\na\n\nb"
	if got != want {
		t.Errorf("BlockText = %q, want %q", got, want)
	}
	if doc.Find("script").Length() != 1 {
		t.Error("BlockText modified the document")
	}
}

func TestSiteRegistryMatch(t *testing.T) {
	profiles := []config.SiteProfile{{
		Name:    "custom-naver",
		Hosts:   []string{"n.news.naver.com"},
		Title:   []string{"h1.custom"},
		Content: []string{"div.custom"},
	}}
	r, err := NewSiteRegistry(profiles)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		host string
		want string
	}{
		{"n.news.naver.com", "custom-naver"},
		{"news.naver.com", "naver"},
		{"www.chosun.com", "chosun"},
		{"biz.chosun.com", "chosun"},
		{"NEWS.KBS.CO.KR:443", "kbs"},
		{"notchosun.com", ""},
		{"example.org", ""},
	}
	for _, tt := range tests {
		got := ""
		if s := r.Match(tt.host); s != nil {
			got = s.Name
		}
		if got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestNewSiteRegistryRejectsBadSelector(t *testing.T) {
	_, err := NewSiteRegistry([]config.SiteProfile{{
		Name: "bad", Hosts: []string{"x.com"}, Title: []string{"h1[[["},
	}})
	if err == nil {
		t.Fatal("expected error for invalid selector")
	}
}

func TestFirstText(t *testing.T) {
	doc := parse(t, `<h1 class="a"> </h1><h2 class="b">  Real
	 title </h2><h1>fallback</h1>`)
	l := mustSelectors("h1.a", "h2.b", "h1")
	if got := l.FirstText(doc.Selection); got != "Real title" {
		t.Errorf("FirstText = %q", got)
	}
}

func TestPruneContent(t *testing.T) {
	para := strings.Repeat("기사 본문 문장이 이어집니다. ", 20)
	doc := parse(t, `<html><body><div id="wrap">
<header class="gnb"><a href="/">홈</a> <a href="/a">정치</a> <a href="/b">경제</a></header>
<div class="story-text"><p>`+para+`</p><p>`+para+`</p></div>
<div class="sidebar"><a href="/x">많이 본 뉴스</a><a href="/y">랭킹</a></div>
</div></body></html>`)

	got := PruneContent(doc)
	if !strings.Contains(got, "기사 본문") {
		t.Fatalf("PruneContent lost the article: %q", got)
	}
	if strings.Contains(got, "많이 본 뉴스") || strings.Contains(got, "정치") {
		t.Errorf("PruneContent kept navigation: %q", got)
	}
}

func TestRemoveNoise(t *testing.T) {
	doc := parse(t, `<body><article><p>text</p><div class="share_box">공유</div></article>
<div class="comment-list">댓글</div><aside>옆</aside></body>`)
	RemoveNoise(doc)
	got := collapseSpaces(doc.Find("body").Text())
	if got != "text" {
		t.Errorf("after RemoveNoise body text = %q, want %q", got, "text")
	}
}
