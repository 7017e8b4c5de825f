package postprocess

import (
	"testing"
	"time"

	"github.com/use-agent/clipper/models"
)

func fixedNormalizer() DateNormalizer {
	return DateNormalizer{
		MinYear: DefaultMinYear,
		Now:     func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestNormalizeFormats(t *testing.T) {
	n := fixedNormalizer()
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024-03-15T10:30:00+09:00", "2024-03-15T10:30:00+09:00"},
		{"2024-03-15T01:30:00Z", "2024-03-15T01:30:00Z"},
		{"2024-03-15T10:30:00.123+0900", "2024-03-15T10:30:00+09:00"},
		{"2024-03-15 10:30:00", "2024-03-15T10:30:00"},
		{"2024-03-15T10:30", "2024-03-15T10:30:00"},
		{"2024/03/15", "2024-03-15"},
		{"20240315", "2024-03-15"},
		{"2024.03.15. 오후 3:04", "2024-03-15T15:04:00"},
		{"2024.03.15. 오전 12:10", "2024-03-15T00:10:00"},
		{"2024년 3월 15일", "2024-03-15"},
		{"입력 2024.3.5 09:30", "2024-03-05T09:30:00"},
		{"Fri, 15 Mar 2024 10:30:00 +0900", "2024-03-15T10:30:00+09:00"},
		{"March 15, 2024", "2024-03-15"},
		{"", ""},
		{"not a date", ""},
		{"2024-02-30", ""},
		{"2024-13-01", ""},
	}
	for _, tt := range tests {
		if got := n.NormalizeOne(tt.in); got != tt.want {
			t.Errorf("NormalizeOne(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := fixedNormalizer()
	for _, in := range []string{
		"2024-03-15",
		"2024-03-15T10:30:00+09:00",
		"2024.03.15. 오후 3:04",
		"Fri, 15 Mar 2024 10:30:00 +0900",
	} {
		once := n.NormalizeOne(in)
		if twice := n.NormalizeOne(once); twice != once {
			t.Errorf("NormalizeOne(NormalizeOne(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestNormalizeSourcePriority(t *testing.T) {
	n := fixedNormalizer()
	cands := []models.DateCandidate{
		{Source: models.SourceURL, Value: "https://news.example.com/2021/01/02/story"},
		{Source: models.SourceSiteAttribute, Value: "2022-02-02 08:00:00"},
		{Source: models.SourceTimeElement, Value: "2023-03-03"},
		{Source: models.SourceMeta, Value: "2024-04-04T09:00:00+09:00"},
	}
	if got := n.Normalize(cands); got != "2024-04-04T09:00:00+09:00" {
		t.Errorf("Normalize = %q, want meta date", got)
	}
}

func TestNormalizeOutOfRangeFallsThrough(t *testing.T) {
	n := fixedNormalizer()
	tests := []struct {
		name  string
		cands []models.DateCandidate
		want  string
	}{
		{
			name: "meta too old",
			cands: []models.DateCandidate{
				{Source: models.SourceMeta, Value: "1989-12-31"},
				{Source: models.SourceTimeElement, Value: "2020-05-05"},
			},
			want: "2020-05-05",
		},
		{
			name: "meta in the future",
			cands: []models.DateCandidate{
				{Source: models.SourceMeta, Value: "2027-01-01"},
				{Source: models.SourceURL, Value: "https://a.com/news/2024-03-15/x"},
			},
			want: "2024-03-15",
		},
		{
			name: "next year is allowed",
			cands: []models.DateCandidate{
				{Source: models.SourceMeta, Value: "2026-01-01"},
			},
			want: "2026-01-01",
		},
		{
			name: "nothing valid",
			cands: []models.DateCandidate{
				{Source: models.SourceMeta, Value: "0001-01-01"},
				{Source: models.SourceTimeElement, Value: "--"},
				{Source: models.SourceURL, Value: "https://a.com/article/1234567"},
			},
			want: "",
		},
		{name: "no candidates", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.cands); got != tt.want {
				t.Errorf("Normalize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeYearBoundsProperty(t *testing.T) {
	n := fixedNormalizer()
	for y := 1900; y <= 2100; y++ {
		in := time.Date(y, 7, 1, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		got := n.Normalize([]models.DateCandidate{{Source: models.SourceMeta, Value: in}})
		valid := y >= 1990 && y <= 2026
		if valid && got != in {
			t.Errorf("year %d: got %q, want %q", y, got, in)
		}
		if !valid && got != "" {
			t.Errorf("year %d: got %q, want absent", y, got)
		}
	}
}

// Scenario C.
func TestNormalizeFromURLPath(t *testing.T) {
	n := fixedNormalizer()
	tests := []struct {
		url  string
		want string
	}{
		{"https://news.example.com/politics/2024-03-15/article", "2024-03-15"},
		{"https://news.example.com/2024/03/15/article", "2024-03-15"},
		{"https://news.example.com/article/20240315000123", "2024-03-15"},
		{"https://news.example.com/article/001/0014567890", ""},
		{"https://news.example.com/0001/20230101/story", "2023-01-01"},
		{"https://news.example.com/story?date=2024-03-15", ""},
	}
	for _, tt := range tests {
		got := n.Normalize([]models.DateCandidate{{Source: models.SourceURL, Value: tt.url}})
		if got != tt.want {
			t.Errorf("Normalize(url %q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := FormatTime(time.Time{}); got != "" {
		t.Errorf("zero time = %q", got)
	}
	if got := FormatTime(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)); got != "2024-03-15" {
		t.Errorf("midnight = %q", got)
	}
	kst := time.FixedZone("KST", 9*3600)
	if got := FormatTime(time.Date(2024, 3, 15, 10, 30, 0, 0, kst)); got != "2024-03-15T10:30:00+09:00" {
		t.Errorf("zoned = %q", got)
	}
}
