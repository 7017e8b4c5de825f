package engine

import (
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Page is a fetched or rendered HTML document. It is passed by value to
// every strategy and never mutated after creation.
type Page struct {
	// URL is the URL that was requested.
	URL string
	// FinalURL is the URL after redirects; relative links resolve against it.
	FinalURL string
	// HTML is the document decoded to UTF-8.
	HTML string
	// Encoding is the source character set label, e.g. "utf-8" or "euc-kr".
	Encoding   string
	StatusCode int
	FetchedAt  time.Time
}

// BaseURL returns FinalURL, or URL when no redirect information exists.
func (p Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// Title returns the text of the first <title> element.
func (p Page) Title() string {
	return extractTitle(p.HTML)
}

func extractTitle(htmlStr string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlStr))
	inTitle := false
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}
