package cleaner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// boilerplateTokens mark copyright and redistribution notices. Matched
// case-insensitively anywhere in a line.
var boilerplateTokens = []string{
	"무단 전재", "무단전재", "재배포 금지", "재배포금지",
	"ⓒ", "©", "copyright", "all rights reserved",
}

// Longer lines are body text even when they mention copyright.
const maxBoilerplateRunes = 160

var (
	reporterLineRe = regexp.MustCompile(`^[\p{Hangul}]{2,4}\s?(?:기자|특파원|인턴기자)(?:\s*[\w.+-]+@[\w-]+(?:\.[\w-]+)+)?$`)
	emailLineRe    = regexp.MustCompile(`^[\w.+-]+@[\w-]+(?:\.[\w-]+)+$`)
	spaceRunRe     = regexp.MustCompile(`[ \t\f\v\x{00a0}\x{3000}]+`)
	wsRunRe        = regexp.MustCompile(`[\s\x{00a0}\x{3000}]+`)
)

// IsBoilerplateLine reports whether a single line of article text is a
// copyright notice, a reporter sign-off or a "▶" teaser.
func IsBoilerplateLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "▶") {
		return true
	}
	if utf8.RuneCountInString(line) > maxBoilerplateRunes {
		return false
	}
	lower := strings.ToLower(line)
	for _, tok := range boilerplateTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return reporterLineRe.MatchString(line) || emailLineRe.MatchString(line)
}

// CleanText normalizes extracted article text: NFC, one space between
// words, boilerplate lines dropped, at most one blank line between
// paragraphs.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line == "" {
			if !blank {
				out = append(out, "")
				blank = true
			}
			continue
		}
		if IsBoilerplateLine(line) {
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// CleanTitle collapses whitespace in a headline to single spaces.
func CleanTitle(s string) string { return collapseSpaces(s) }

func collapseSpaces(s string) string {
	return strings.TrimSpace(wsRunRe.ReplaceAllString(norm.NFC.String(s), " "))
}

var skipTextTags = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "iframe": {}, "aside": {},
	"nav": {}, "footer": {}, "form": {}, "button": {}, "select": {},
	"template": {}, "svg": {}, "video": {}, "audio": {},
}

var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "li": {}, "ul": {},
	"ol": {}, "blockquote": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {},
	"h5": {}, "h6": {}, "tr": {}, "table": {}, "figure": {}, "figcaption": {},
	"header": {}, "pre": {}, "dl": {}, "dt": {}, "dd": {},
}

// BlockText renders the visible text of s with paragraph breaks between
// block elements, skipping scripts, navigation and embedded players. The
// document is not modified.
func BlockText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		writeBlockText(&b, n)
	}
	return CleanText(b.String())
}

func writeBlockText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(wsRunRe.ReplaceAllString(n.Data, " "))
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if _, skip := skipTextTags[n.Data]; skip {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}
	_, block := blockTags[n.Data]
	block = block && n.Type == html.ElementNode
	if block {
		b.WriteString("\n\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeBlockText(b, c)
	}
	if block {
		b.WriteString("\n\n")
	}
}

// HTMLText parses an HTML fragment and returns its block text.
func HTMLText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	return BlockText(doc.Selection)
}
