package cleaner

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// minReadableLength is the shortest TextContent accepted from readability.
// Anything shorter means it failed to locate the article body.
const minReadableLength = 50

// Readout is the part of a readability article the strategies use.
type Readout struct {
	Title     string
	Text      string
	Image     string
	Published time.Time
}

// Readable runs the Mozilla Readability algorithm over rawHTML. ok is false
// when readability errors or finds too little text; the caller moves on to
// its next source rather than failing.
func Readable(rawHTML string, base *url.URL) (Readout, bool) {
	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		slog.Warn("readability: extraction failed", "url", urlString(base), "error", err)
		return Readout{}, false
	}

	text := CleanText(article.TextContent)
	if article.Content != "" {
		if t := HTMLText(article.Content); t != "" {
			text = t
		}
	}
	if len(strings.TrimSpace(text)) < minReadableLength {
		slog.Debug("readability: extracted content too short",
			"url", urlString(base), "length", len(text),
		)
		return Readout{Title: collapseSpaces(article.Title)}, false
	}

	out := Readout{
		Title: collapseSpaces(article.Title),
		Text:  text,
		Image: strings.TrimSpace(article.Image),
	}
	if article.PublishedTime != nil {
		out.Published = *article.PublishedTime
	}
	return out, true
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
