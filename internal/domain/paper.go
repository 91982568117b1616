package domain

// Placeholders used when a provider omits an optional paper field.
const (
	AbstractNotAvailable = "Abstract not available"
	URLNotAvailable      = "URL not available"
)

// MaxRecentPapers caps Researcher.RecentPapers.
const MaxRecentPapers = 5

// Paper is the provider-agnostic shape returned by every search flow.
type Paper struct {
	Title         string   `json:"title,omitempty"`
	Abstract      string   `json:"abstract"`
	Authors       []string `json:"authors"`
	Year          *int     `json:"year,omitempty"`
	CitationCount *int     `json:"citationCount,omitempty"`
	URL           string   `json:"url"`
	Venue         string   `json:"venue,omitempty"`
}

// Researcher.Affiliations is nil for providers that have no affiliation
// data and is then left out of the JSON.
type Researcher struct {
	Name          string        `json:"name"`
	Affiliations  []string      `json:"affiliations,omitzero"`
	Homepage      string        `json:"homepage,omitempty"`
	PaperCount    int           `json:"paperCount"`
	CitationCount *int          `json:"citationCount,omitempty"`
	RecentPapers  []RecentPaper `json:"recentPapers"`
}

type RecentPaper struct {
	Title string `json:"title"`
	Year  *int   `json:"year,omitempty"`
}
