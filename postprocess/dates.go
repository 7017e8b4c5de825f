package postprocess

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/use-agent/clipper/models"
)

// Output layouts of a normalized date.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// DefaultMinYear is the earliest publish year accepted.
const DefaultMinYear = 1990

// DateNormalizer picks the highest-priority valid date among candidates
// and renders it in a fixed lexical form.
type DateNormalizer struct {
	MinYear int
	Now     func() time.Time
}

// NewDateNormalizer returns a normalizer using the wall clock.
func NewDateNormalizer() DateNormalizer {
	return DateNormalizer{MinYear: DefaultMinYear, Now: time.Now}
}

// Normalize returns the first valid candidate by source priority, or ""
// when none parses. Input order is kept within one source.
func (n DateNormalizer) Normalize(cands []models.DateCandidate) string {
	if len(cands) == 0 {
		return ""
	}
	ordered := make([]models.DateCandidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source < ordered[j].Source
	})

	for _, c := range ordered {
		var out string
		if c.Source == models.SourceURL {
			out = n.fromURL(c.Value)
		} else {
			out = n.fromValue(c.Value)
		}
		if out != "" {
			return out
		}
	}
	return ""
}

// NormalizeOne normalizes a single already-extracted date value.
func (n DateNormalizer) NormalizeOne(value string) string {
	return n.fromValue(value)
}

func (n DateNormalizer) fromValue(raw string) string {
	p, ok := parseDate(strings.TrimSpace(raw))
	if !ok || !n.validYear(p.t.Year()) {
		return ""
	}
	return p.format()
}

var urlDateRe = regexp.MustCompile(`^/(\d{4})[-/]?(\d{2})[-/]?(\d{2})`)

// fromURL matches YYYY-MM-DD, YYYY/MM/DD and YYYYMMDD in the URL path.
// Matching restarts at every slash so a leading numeric segment does not
// hide a later date.
func (n DateNormalizer) fromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	for i := strings.IndexByte(p, '/'); i >= 0; {
		if m := urlDateRe.FindStringSubmatch(p[i:]); m != nil {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			if t, ok := calendarDate(y, mo, d); ok && n.validYear(y) {
				return t.Format(DateLayout)
			}
		}
		next := strings.IndexByte(p[i+1:], '/')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return ""
}

func (n DateNormalizer) validYear(y int) bool {
	minYear := n.MinYear
	if minYear == 0 {
		minYear = DefaultMinYear
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return y >= minYear && y <= now().Year()+1
}

// parsed is a date plus what the source string actually carried.
type parsed struct {
	t       time.Time
	hasTime bool
	hasZone bool
}

func (p parsed) format() string {
	switch {
	case !p.hasTime:
		return p.t.Format(DateLayout)
	case p.hasZone:
		return p.t.Format(time.RFC3339)
	default:
		return p.t.Format(DateTimeLayout)
	}
}

type layout struct {
	value   string
	hasTime bool
	hasZone bool
}

var layouts = []layout{
	{time.RFC3339Nano, true, true},
	{"2006-01-02T15:04:05Z0700", true, true},
	{"2006-01-02T15:04:05.000Z0700", true, true},
	{"2006-01-02T15:04Z07:00", true, true},
	{"2006-01-02 15:04:05Z07:00", true, true},
	{"2006-01-02 15:04:05 -0700", true, true},
	{time.RFC1123Z, true, true},
	{time.RFC1123, true, true},
	{time.RFC822Z, true, true},
	{"2006-01-02T15:04:05.999999999", true, false},
	{"2006-01-02T15:04", true, false},
	{"2006-01-02 15:04:05", true, false},
	{"2006-01-02 15:04", true, false},
	{"2006/01/02 15:04:05", true, false},
	{"2006/01/02 15:04", true, false},
	{"20060102150405", true, false},
	{"2006-01-02", false, false},
	{"2006/01/02", false, false},
	{"20060102", false, false},
}

// koreanDateRe covers portal formats such as "2024.03.15. 오후 3:04",
// "2024년 3월 15일 09:30" and "2024.3.15".
var koreanDateRe = regexp.MustCompile(
	`(\d{4})\s*[.\-/년]\s*(\d{1,2})\s*[.\-/월]\s*(\d{1,2})\s*일?\.?` +
		`(?:\s*(오전|오후|AM|PM|am|pm)?\s*(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)

func parseDate(s string) (parsed, bool) {
	if s == "" {
		return parsed{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l.value, s); err == nil {
			return parsed{t: t, hasTime: l.hasTime, hasZone: l.hasZone}, true
		}
	}
	if p, ok := parseKorean(s); ok {
		return p, true
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return parsed{}, false
	}
	return parsed{
		t:       t,
		hasTime: t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0,
		hasZone: hasZoneSuffix(s),
	}, true
}

func parseKorean(s string) (parsed, bool) {
	m := koreanDateRe.FindStringSubmatch(s)
	if m == nil {
		return parsed{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	t, ok := calendarDate(y, mo, d)
	if !ok {
		return parsed{}, false
	}
	if m[5] == "" {
		return parsed{t: t}, true
	}

	h, _ := strconv.Atoi(m[5])
	mi, _ := strconv.Atoi(m[6])
	sec, _ := strconv.Atoi(m[7])
	switch strings.ToUpper(m[4]) {
	case "오후", "PM":
		if h < 12 {
			h += 12
		}
	case "오전", "AM":
		if h == 12 {
			h = 0
		}
	}
	if h > 23 || mi > 59 || sec > 59 {
		return parsed{t: t}, true
	}
	return parsed{t: t.Add(time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute + time.Duration(sec)*time.Second), hasTime: true}, true
}

// calendarDate builds a UTC date and reports whether the fields were
// in range (time.Date silently normalizes Feb 30 to Mar 1).
func calendarDate(y, mo, d int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

var zoneSuffixRe = regexp.MustCompile(`(?:Z|[+-]\d{2}:?\d{2}|\b(?:UTC|GMT|KST|[A-Z]{3,4}))$`)

func hasZoneSuffix(s string) bool {
	return zoneSuffixRe.MatchString(strings.TrimSpace(s))
}

// FormatTime renders a time reported by an extraction engine. Midnight UTC
// values are treated as date-only since engines parse bare dates that way.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Location() == time.UTC {
		return t.Format(DateLayout)
	}
	return t.Format(time.RFC3339)
}
