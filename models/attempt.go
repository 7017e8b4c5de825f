package models

import (
	"time"
	"unicode"
)

// Verdict is the quality gate's classification of one candidate.
type Verdict int

const (
	Reject Verdict = iota
	Partial
	Accept
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "ACCEPT"
	case Partial:
		return "PARTIAL"
	default:
		return "REJECT"
	}
}

// Attempt records one strategy invocation within a request.
type Attempt struct {
	Strategy  string
	Candidate *Candidate // nil when the strategy failed outright
	Verdict   Verdict
	Reason    string // set when Verdict is Reject
	Elapsed   time.Duration
}

// Info converts the attempt to its API view.
func (a Attempt) Info() AttemptInfo {
	info := AttemptInfo{
		Strategy:  a.Strategy,
		Verdict:   a.Verdict.String(),
		Reason:    a.Reason,
		ElapsedMs: a.Elapsed.Milliseconds(),
	}
	if c := a.Candidate; c != nil {
		info.TextChars = VisibleLen(c.Text)
		info.HasTitle = c.Title != ""
		info.HasDate = c.Date != ""
		info.Images = len(c.Images)
		info.Videos = len(c.Videos)
	}
	return info
}

// VisibleLen counts the runes of s that render as glyphs: whitespace,
// control and format characters (zero-width space, BOM) are skipped.
func VisibleLen(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.In(r, unicode.Cc, unicode.Cf) {
			continue
		}
		n++
	}
	return n
}
