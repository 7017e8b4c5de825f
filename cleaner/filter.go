package cleaner

import (
	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors match page furniture that sits inside or next to article
// bodies on news sites: comment threads, related-article rails, ad slots,
// share bars and subscription prompts.
var noiseSelectors = mustSelectors(
	"script", "style", "noscript", "template",
	"nav", "footer", "aside", "form",
	"[class*='comment']", "[id*='comment']",
	"[class*='related']", "[class*='recommend']",
	"[class*='share']", "[class*='sns']",
	"[class*='banner']", "[class*='advert']", "[id*='advert']",
	".ad", ".ads", "[id^='ad_']", "[id^='google_ads']",
	"[class*='subscribe']", "[class*='newsletter']",
	"[class*='copyright']", "[class*='reporter_area']", "[class*='byline_area']",
)

const maxNoiseTextBytes = 4000

// RemoveNoise deletes boilerplate elements from the document in place.
// Harvest candidates before calling it: it drops scripts and asides that
// carry JSON-LD and video players.
func RemoveNoise(doc *goquery.Document) {
	noiseSelectors.Matches(doc.Selection).Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "body", "html", "article", "main":
			return
		}
		// A loose class match on a wrapper must not take the article with it.
		if len(s.Text()) > maxNoiseTextBytes && goquery.NodeName(s) != "script" && goquery.NodeName(s) != "style" {
			return
		}
		s.Remove()
	})
}
