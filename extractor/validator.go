package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/use-agent/clipper/cleaner"
	"github.com/use-agent/clipper/models"
)

// DefaultMinTextChars is the shortest body, in visible characters, that can
// pass the quality gate.
const DefaultMinTextChars = 200

// invalidPhrases mark error pages and section placeholders. A short line
// containing one of them is not article text.
var invalidPhrases = []string{
	"기사 섹션 분류 안내",
	"언론사의 분류를 따르고 있습니다",
	"페이지를 찾을 수 없습니다",
	"접근이 거부되었습니다",
	"삭제된 기사입니다",
	"존재하지 않는 기사",
	"page not found",
	"access denied",
	"section classification",
	"this page isn't available",
	"please enable javascript",
}

// invalidTokens only count when they are the whole line.
var invalidTokens = []string{
	"404", "not found", "403", "forbidden", "error",
}

// maxInvalidLineRunes bounds the line length at which a phrase match
// still marks the line as invalid.
const maxInvalidLineRunes = 120

// Validator is the quality gate applied to every candidate.
type Validator struct {
	MinTextChars int
}

// NewValidator returns a validator with the given minimum body length.
// Non-positive values use DefaultMinTextChars.
func NewValidator(minTextChars int) Validator {
	if minTextChars <= 0 {
		minTextChars = DefaultMinTextChars
	}
	return Validator{MinTextChars: minTextChars}
}

// Validate classifies c. The reason is set for REJECT only.
func (v Validator) Validate(c *models.Candidate) (models.Verdict, string) {
	if c == nil {
		return models.Reject, "no candidate"
	}
	minChars := v.MinTextChars
	if minChars <= 0 {
		minChars = DefaultMinTextChars
	}

	if strings.TrimSpace(c.Title) == "" {
		return models.Reject, "empty title"
	}
	if models.VisibleLen(c.Text) < minChars {
		return models.Reject, "text below minimum length"
	}
	if dominated, matched := v.dominated(c.Text, minChars); dominated {
		if matched {
			return models.Reject, "text dominated by invalid-content pattern"
		}
		return models.Reject, "text is mostly boilerplate"
	}

	if c.Date != "" && len(c.Images) > 0 {
		return models.Accept, ""
	}
	return models.Partial, ""
}

// dominated drops invalid-pattern and boilerplate lines and reports whether
// what is left falls below minChars. matched is true when any invalid-pattern
// line was seen.
func (v Validator) dominated(text string, minChars int) (dominated, matched bool) {
	remaining := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isInvalidLine(line) {
			matched = true
			continue
		}
		if cleaner.IsBoilerplateLine(line) {
			continue
		}
		remaining += models.VisibleLen(line)
	}
	return remaining < minChars, matched
}

func isInvalidLine(line string) bool {
	lower := strings.ToLower(strings.Join(strings.Fields(line), " "))
	lower = strings.Trim(lower, ".!…· ")
	for _, tok := range invalidTokens {
		if lower == tok {
			return true
		}
	}
	if utf8.RuneCountInString(lower) > maxInvalidLineRunes {
		return false
	}
	for _, p := range invalidPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
