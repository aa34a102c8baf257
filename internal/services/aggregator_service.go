package services

import (
	"sort"
	"strings"
	"time"

	"ai-trend-tracker/internal/models"
	"ai-trend-tracker/internal/repositories"
)

// Category is one technology bucket. Every aggregated project lands in exactly
// one bucket; buckets are evaluated in the order listed in categories, first
// match wins.
type Category struct {
	Name     string
	Emoji    string
	Keywords []string
}

var categories = []Category{
	{Name: "LLM/NLP", Emoji: "🤖", Keywords: []string{"llm", "nlp", "language", "gpt", "chatbot", "embedding"}},
	{Name: "Computer Vision", Emoji: "👁", Keywords: []string{"vision", "image", "video", "opencv", "detection"}},
	{Name: "AI Tooling/Framework", Emoji: "🛠", Keywords: []string{"framework", "tool", "library", "platform"}},
	{Name: "Multimodal", Emoji: "🎨", Keywords: []string{"multimodal", "multi-modal", "audio", "speech"}},
	{Name: "Other", Emoji: "📦"},
}

// CategoryCount is the number of projects assigned to one category.
type CategoryCount struct {
	Name  string `json:"name"`
	Emoji string `json:"-"`
	Count int    `json:"count"`
}

// TrendReport is the aggregation result for a date range. Items holds the
// ranked list truncated for display; the summary counters and category counts
// always cover the full deduplicated set.
type TrendReport struct {
	Empty            bool
	StartDate        time.Time
	EndDate          time.Time
	Items            []*models.TrendRow
	TotalProjects    int
	TotalStarsGained int
	CategoryCounts   []CategoryCount
}

type AggregatorService struct {
	trendRepo *repositories.TrendRecordRepository
}

func NewAggregatorService(trendRepo *repositories.TrendRecordRepository) *AggregatorService {
	return &AggregatorService{
		trendRepo: trendRepo,
	}
}

// Aggregate collects the observations in [startDate, endDate], deduplicates
// them per project, ranks the survivors and buckets them into categories.
// A range with no observations yields an Empty report, not an error.
// A limit of zero or below means no items are displayed; the counters are
// still computed from the full set.
func (s *AggregatorService) Aggregate(startDate, endDate time.Time, limit int) (*TrendReport, error) {
	rows, err := s.trendRepo.GetRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	report := &TrendReport{
		StartDate: startDate,
		EndDate:   endDate,
	}

	if len(rows) == 0 {
		report.Empty = true
		return report, nil
	}

	deduped := Deduplicate(rows)

	report.TotalProjects = len(deduped)
	for _, row := range deduped {
		report.TotalStarsGained += row.StarsGrowth
	}
	report.CategoryCounts = Categorize(deduped)

	if limit > 0 {
		if limit > len(deduped) {
			limit = len(deduped)
		}
		report.Items = deduped[:limit]
	}

	return report, nil
}

// Deduplicate collapses repeated observations of the same project into the one
// with the highest absolute star count (ties keep the first encountered), then
// sorts by stars growth descending, absolute stars descending. The sort is
// stable, so equal (growth, stars) pairs keep their traversal order.
func Deduplicate(rows []*models.TrendRow) []*models.TrendRow {
	byName := make(map[string]*models.TrendRow)
	var order []string

	for _, row := range rows {
		existing, seen := byName[row.RepoName]
		if !seen {
			byName[row.RepoName] = row
			order = append(order, row.RepoName)
			continue
		}
		if row.Stars > existing.Stars {
			byName[row.RepoName] = row
		}
	}

	deduped := make([]*models.TrendRow, 0, len(order))
	for _, name := range order {
		deduped = append(deduped, byName[name])
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].StarsGrowth != deduped[j].StarsGrowth {
			return deduped[i].StarsGrowth > deduped[j].StarsGrowth
		}
		return deduped[i].Stars > deduped[j].Stars
	})

	return deduped
}

// Categorize assigns every row to exactly one category and returns the counts
// in category priority order, including zero-count categories. Display layers
// decide whether to omit empty buckets.
func Categorize(rows []*models.TrendRow) []CategoryCount {
	counts := make([]CategoryCount, len(categories))
	for i, c := range categories {
		counts[i] = CategoryCount{Name: c.Name, Emoji: c.Emoji}
	}

	for _, row := range rows {
		text := strings.ToLower(row.AIRelevanceReason + " " + row.Description)
		idx := len(categories) - 1 // Other
		for i, c := range categories {
			if matchesAny(text, c.Keywords) {
				idx = i
				break
			}
		}
		counts[idx].Count++
	}

	return counts
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
