package extractor

import (
	"slices"

	"github.com/use-agent/clipper/models"
)

// merge fills the empty fields of acc from c and records strategy as a
// contributor when it filled anything. Fields already set are never
// replaced. Images and videos are whole fields: a non-empty list is not
// extended.
func merge(acc *models.ArticleResult, c *models.Candidate, strategy string) bool {
	if c == nil {
		return false
	}
	contributed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			contributed = true
		}
	}
	fill(&acc.Title, c.Title)
	fill(&acc.Text, c.Text)
	fill(&acc.Date, c.Date)

	if len(acc.Images) == 0 && len(c.Images) > 0 {
		acc.Images = append([]string{}, c.Images...)
		contributed = true
	}
	if len(acc.Videos) == 0 && len(c.Videos) > 0 {
		acc.Videos = append([]string{}, c.Videos...)
		contributed = true
	}

	if contributed && !slices.Contains(acc.Method, strategy) {
		acc.Method = append(acc.Method, strategy)
	}
	return contributed
}
