package cleaner

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pruneScoreThreshold is the minimum weighted score a block must reach to
// be kept as article text.
const pruneScoreThreshold = 0.0

// Signal weights for the pruning scorer.
const (
	wTextDensity   = 3.0
	wLinkDensity   = -2.0
	wTagWeight     = 1.5
	wClassIDWeight = 1.0
	wTextLength    = 0.5
)

// A wrapper holding at least this share of its parent's text is descended
// into before scoring.
const wrapperShare = 0.8

var positiveClassIDPatterns = []string{
	"content", "article", "post", "entry", "body", "main", "text",
	"news", "story", "view", "dic_area",
}

var negativeClassIDPatterns = []string{
	"sidebar", "widget", "nav", "menu", "comment", "footer",
	"header", "banner", "popup", "modal", "cookie", "social", "share",
	"related", "recommend", "promo", "rank", "gnb", "lnb",
}

// PruneContent scores the blocks under <body> and returns the block text of
// those that look like article prose. Single wrappers (a lone div holding
// nearly all the text) are unwrapped first. Returns "" when no block
// passes.
func PruneContent(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}

	container := body
	for {
		next := dominantChild(container)
		if next == nil {
			break
		}
		container = next
	}

	var parts []string
	container.Children().Each(func(_ int, el *goquery.Selection) {
		if scoreElement(el) <= pruneScoreThreshold {
			return
		}
		if text := BlockText(el); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 && container != body {
		if text := BlockText(container); text != "" {
			parts = append(parts, text)
		}
	}
	return CleanText(strings.Join(parts, "\n\n"))
}

func dominantChild(s *goquery.Selection) *goquery.Selection {
	total := textLen(s)
	if total == 0 {
		return nil
	}
	var best *goquery.Selection
	s.Children().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if float64(textLen(c)) >= wrapperShare*float64(total) {
			best = c
			return false
		}
		return true
	})
	if best == nil || best.Children().Length() == 0 {
		return nil
	}
	return best
}

func textLen(s *goquery.Selection) int {
	return len(strings.TrimSpace(s.Text()))
}

// scoreElement combines text density, link density, tag and class/id
// signals and a log-scaled text length.
func scoreElement(el *goquery.Selection) float64 {
	fullHTML, err := goquery.OuterHtml(el)
	if err != nil {
		return 0
	}

	text := strings.TrimSpace(el.Text())
	n := len(text)

	textDensity := 0.0
	if len(fullHTML) > 0 {
		textDensity = float64(n) / float64(len(fullHTML))
	}

	linkText := 0
	el.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkText += len(strings.TrimSpace(a.Text()))
	})
	linkDensity := 0.0
	if n > 0 {
		linkDensity = float64(linkText) / float64(n)
	}

	return textDensity*wTextDensity +
		linkDensity*wLinkDensity +
		tagWeight(el)*wTagWeight +
		classIDWeight(el)*wClassIDWeight +
		math.Log10(float64(n)+1)*wTextLength
}

func tagWeight(el *goquery.Selection) float64 {
	switch goquery.NodeName(el) {
	case "article", "main", "section", "p":
		return 5.0
	case "nav", "footer", "aside", "header", "form", "ul":
		return -5.0
	case "script", "style", "noscript":
		return -10.0
	default:
		return 0.0
	}
}

func classIDWeight(el *goquery.Selection) float64 {
	class, _ := el.Attr("class")
	id, _ := el.Attr("id")
	combined := strings.ToLower(class + " " + id)

	score := 0.0
	for _, pat := range positiveClassIDPatterns {
		if strings.Contains(combined, pat) {
			score += 3.0
			break
		}
	}
	for _, pat := range negativeClassIDPatterns {
		if strings.Contains(combined, pat) {
			score -= 3.0
			break
		}
	}
	return score
}
