package models

// TrendWindow is the trending view an observation was scraped from.
type TrendWindow string

const (
	TrendDaily  TrendWindow = "daily"
	TrendWeekly TrendWindow = "weekly"
)

func (w TrendWindow) Valid() bool {
	return w == TrendDaily || w == TrendWeekly
}

// Listing is one raw scraped entry from the trending page.
type Listing struct {
	RepoName    string `json:"repo_name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	URL         string `json:"url"`
	Stars       int    `json:"stars"`
	StarsGrowth int    `json:"stars_growth"`
	Ranking     int    `json:"ranking"`
}

// Verdict is the classifier output for a single listing.
type Verdict struct {
	IsAIRelated bool   `json:"is_ai_related"`
	Reason      string `json:"reason"`
}

// ClassifiedListing pairs a listing with its classification verdict.
type ClassifiedListing struct {
	Listing Listing
	Verdict Verdict
}
