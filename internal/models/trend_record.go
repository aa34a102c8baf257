package models

import (
	"time"
)

// TrendRecord is one (project, date, trend window) sighting. The triple is
// unique: re-running the same job for the same day resolves to the stored row.
type TrendRecord struct {
	ID                string      `json:"id"`
	ProjectID         string      `json:"project_id"`
	Date              time.Time   `json:"date"`
	Stars             int         `json:"stars"`
	StarsGrowth       int         `json:"stars_growth"`
	TrendType         TrendWindow `json:"trend_type"`
	Ranking           int         `json:"ranking"`
	AIRelevanceReason string      `json:"ai_relevance_reason"`
	CreatedAt         time.Time   `json:"created_at"`
}

var ErrInvalidTrendWindow = &ValidationError{Field: "trend_type", Message: "Trend type must be daily or weekly"}

func (r *TrendRecord) Validate() error {
	if !r.TrendType.Valid() {
		return ErrInvalidTrendWindow
	}
	return nil
}

// TrendRow is a project joined with one of its observations, as returned by
// range queries. This is the shape the aggregator works on.
type TrendRow struct {
	RepoName          string `json:"repo_name"`
	Description       string `json:"description"`
	Language          string `json:"language"`
	URL               string `json:"url"`
	Stars             int    `json:"stars"`
	StarsGrowth       int    `json:"stars_growth"`
	Date              string `json:"date"`
	Ranking           int    `json:"ranking"`
	AIRelevanceReason string `json:"ai_relevance_reason"`
}

// DailyCount is the number of observations recorded on one date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
