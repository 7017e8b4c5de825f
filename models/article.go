package models

// Output caps applied to the final article.
const (
	MaxImages = 5
	MaxVideos = 3
)

// ArticleResult is the normalized article record returned to callers.
//
// Title, Text and Date are omitted from JSON when unknown. Images, Videos
// and Method are always encoded as arrays.
type ArticleResult struct {
	URL    string   `json:"url"`
	Title  string   `json:"title,omitempty"`
	Text   string   `json:"text,omitempty"`
	Date   string   `json:"date,omitempty"`
	Images []string `json:"images"`
	Videos []string `json:"videos"`

	// Method lists the strategies that contributed at least one field,
	// in chain order, without duplicates.
	Method []string `json:"method"`
}

// NewArticleResult returns an empty result for url with non-nil slices.
func NewArticleResult(url string) *ArticleResult {
	return &ArticleResult{
		URL:    url,
		Images: []string{},
		Videos: []string{},
		Method: []string{},
	}
}

// HasTitleAndText reports whether the result is at least usable as a
// partial article.
func (a *ArticleResult) HasTitleAndText() bool {
	return a.Title != "" && a.Text != ""
}

// Complete reports whether the chain can stop: title, text and either a
// date or at least one image.
func (a *ArticleResult) Complete() bool {
	return a.HasTitleAndText() && (a.Date != "" || len(a.Images) > 0)
}

// Clone returns a deep copy.
func (a *ArticleResult) Clone() *ArticleResult {
	out := *a
	out.Images = append([]string{}, a.Images...)
	out.Videos = append([]string{}, a.Videos...)
	out.Method = append([]string{}, a.Method...)
	return &out
}

// ImageTier ranks where an image candidate was found on the page.
type ImageTier int

const (
	TierMeta    ImageTier = 1 // og:image, twitter:image, link[rel=image_src]
	TierContent ImageTier = 2 // inside an article body container
	TierGeneric ImageTier = 3 // any other <img>
)

// ImageCandidate is an image URL harvested from a page, before ranking.
type ImageCandidate struct {
	URL  string
	Tier ImageTier

	// Width and Height are declared pixel sizes; zero when unknown.
	Width  int
	Height int
}

// DateSource orders date candidates by trust. Lower values win.
type DateSource int

const (
	SourceMeta DateSource = iota + 1
	SourceTimeElement
	SourceSiteAttribute
	SourceURL
)

func (s DateSource) String() string {
	switch s {
	case SourceMeta:
		return "meta"
	case SourceTimeElement:
		return "time"
	case SourceSiteAttribute:
		return "site"
	case SourceURL:
		return "url"
	default:
		return "unknown"
	}
}

// DateCandidate is a raw date string together with where it came from.
type DateCandidate struct {
	Source DateSource
	Value  string
}

// Candidate is the raw output of one extraction strategy.
//
// Strategies fill Title and Text and the raw candidate lists. Date, Images
// and Videos are filled when the candidate is prepared for validation.
type Candidate struct {
	Title string
	Text  string

	Date   string
	Images []string
	Videos []string

	DateCandidates  []DateCandidate
	ImageCandidates []ImageCandidate
	VideoCandidates []string
}

// Empty reports whether the candidate carries no field at all.
func (c *Candidate) Empty() bool {
	return c.Title == "" && c.Text == "" && c.Date == "" &&
		len(c.Images) == 0 && len(c.Videos) == 0
}
