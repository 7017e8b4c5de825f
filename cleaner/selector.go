package cleaner

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// SelectorList is an ordered list of compiled CSS selectors. Earlier
// entries win.
type SelectorList []cascadia.Selector

// CompileSelectors compiles every expression, failing on the first invalid
// one.
func CompileSelectors(exprs []string) (SelectorList, error) {
	out := make(SelectorList, 0, len(exprs))
	for _, e := range exprs {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		sel, err := cascadia.Compile(e)
		if err != nil {
			return nil, fmt.Errorf("cleaner: selector %q: %w", e, err)
		}
		out = append(out, sel)
	}
	return out, nil
}

func mustSelectors(exprs ...string) SelectorList {
	out, err := CompileSelectors(exprs)
	if err != nil {
		panic(err)
	}
	return out
}

// Each calls fn for every selector in order with its matches inside root.
// Returning false stops the walk.
func (l SelectorList) Each(root *goquery.Selection, fn func(*goquery.Selection) bool) {
	for _, sel := range l {
		found := root.FindMatcher(sel)
		if found.Length() == 0 {
			continue
		}
		if !fn(found) {
			return
		}
	}
}

// FirstText returns the trimmed text of the first matching element that
// has any.
func (l SelectorList) FirstText(root *goquery.Selection) string {
	var text string
	l.Each(root, func(s *goquery.Selection) bool {
		s.EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text = collapseSpaces(el.Text())
			return text == ""
		})
		return text == ""
	})
	return text
}

// Matches returns the union of all matches, grouped by selector.
func (l SelectorList) Matches(root *goquery.Selection) *goquery.Selection {
	out := root.FilterFunction(func(int, *goquery.Selection) bool { return false })
	for _, sel := range l {
		out = out.AddSelection(root.FindMatcher(sel))
	}
	return out
}
