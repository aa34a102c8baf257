package models

import (
	"time"
)

// WeeklyReport is the persisted audit record of one weekly run. It is never
// read back by the aggregator, which recomputes from trend records.
type WeeklyReport struct {
	ID         string    `json:"id"`
	WeekStart  time.Time `json:"week_start"`
	WeekEnd    time.Time `json:"week_end"`
	Summary    string    `json:"summary"`
	TechTrends string    `json:"tech_trends"`
	CreatedAt  time.Time `json:"created_at"`
}
