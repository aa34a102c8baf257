package services

import (
	"database/sql"
	"testing"
	"time"

	"ai-trend-tracker/internal/models"
	"ai-trend-tracker/internal/repositories"
	"ai-trend-tracker/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.InitSchema(db))

	t.Cleanup(func() { db.Close() })
	return db
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type seeder struct {
	t           *testing.T
	projectRepo *repositories.ProjectRepository
	trendRepo   *repositories.TrendRecordRepository
}

func newSeeder(t *testing.T, db *sql.DB) *seeder {
	return &seeder{
		t:           t,
		projectRepo: repositories.NewProjectRepository(db),
		trendRepo:   repositories.NewTrendRecordRepository(db),
	}
}

func (s *seeder) observe(name, date, reason string, stars, growth int) {
	projectID, err := s.projectRepo.Upsert(&models.Project{
		RepoName: name, Description: reason, URL: "https://github.com/" + name,
	})
	require.NoError(s.t, err)

	_, err = s.trendRepo.Upsert(&models.TrendRecord{
		ProjectID: projectID, Date: day(date), Stars: stars,
		StarsGrowth: growth, TrendType: models.TrendDaily,
		AIRelevanceReason: reason,
	})
	require.NoError(s.t, err)
}

func TestAggregateEmptyRange(t *testing.T) {
	db := newTestDB(t)
	aggregator := NewAggregatorService(repositories.NewTrendRecordRepository(db))

	report, err := aggregator.Aggregate(day("2026-02-09"), day("2026-02-13"), 10)
	require.NoError(t, err)

	assert.True(t, report.Empty)
	assert.Zero(t, report.TotalProjects)
	assert.Empty(t, report.Items)
}

func TestAggregateDeduplicatesKeepingMaxStars(t *testing.T) {
	db := newTestDB(t)
	seed := newSeeder(t, db)
	seed.observe("ai/ml-lib", "2026-02-09", "deep learning", 100, 50)
	seed.observe("ai/ml-lib", "2026-02-11", "deep learning", 150, 30)

	aggregator := NewAggregatorService(repositories.NewTrendRecordRepository(db))
	report, err := aggregator.Aggregate(day("2026-02-09"), day("2026-02-13"), 10)
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, 150, report.Items[0].Stars)
	assert.Equal(t, 1, report.TotalProjects)
}

func TestDeduplicateEqualStarsKeepsFirstSeen(t *testing.T) {
	rows := []*models.TrendRow{
		{RepoName: "a/b", Stars: 100, StarsGrowth: 10, Date: "2026-02-09"},
		{RepoName: "a/b", Stars: 100, StarsGrowth: 99, Date: "2026-02-10"},
	}

	deduped := Deduplicate(rows)

	require.Len(t, deduped, 1)
	assert.Equal(t, "2026-02-09", deduped[0].Date)
}

func TestDeduplicateRankingTieBreak(t *testing.T) {
	rows := []*models.TrendRow{
		{RepoName: "a/small", Stars: 500, StarsGrowth: 100},
		{RepoName: "b/big", Stars: 2000, StarsGrowth: 100},
		{RepoName: "c/stable-first", Stars: 500, StarsGrowth: 100},
	}

	deduped := Deduplicate(rows)

	require.Len(t, deduped, 3)
	// Equal growth: higher absolute stars first
	assert.Equal(t, "b/big", deduped[0].RepoName)
	// Equal growth and equal stars: traversal order preserved
	assert.Equal(t, "a/small", deduped[1].RepoName)
	assert.Equal(t, "c/stable-first", deduped[2].RepoName)
}

func TestAggregateLimitTruncatesDisplayOnly(t *testing.T) {
	db := newTestDB(t)
	seed := newSeeder(t, db)
	seed.observe("a/one", "2026-02-09", "llm", 100, 300)
	seed.observe("b/two", "2026-02-09", "vision model", 200, 200)
	seed.observe("c/three", "2026-02-09", "agent", 300, 100)

	aggregator := NewAggregatorService(repositories.NewTrendRecordRepository(db))

	report, err := aggregator.Aggregate(day("2026-02-09"), day("2026-02-09"), 2)
	require.NoError(t, err)
	assert.Len(t, report.Items, 2)
	assert.Equal(t, 3, report.TotalProjects)
	assert.Equal(t, 600, report.TotalStarsGained)

	// Zero and negative limits show nothing but still compute the counters
	for _, limit := range []int{0, -1} {
		report, err := aggregator.Aggregate(day("2026-02-09"), day("2026-02-09"), limit)
		require.NoError(t, err)
		assert.False(t, report.Empty)
		assert.Empty(t, report.Items)
		assert.Equal(t, 3, report.TotalProjects)
		assert.Equal(t, 600, report.TotalStarsGained)
	}
}

func TestCategorizeMutualExclusivity(t *testing.T) {
	rows := []*models.TrendRow{
		// Matches both "llm" and "vision": counted once, in the earlier bucket
		{RepoName: "a/multi", AIRelevanceReason: "llm with vision support"},
		{RepoName: "b/cv", Description: "image detection models"},
		{RepoName: "c/tool", Description: "a training framework"},
		{RepoName: "d/audio", Description: "speech synthesis"},
		{RepoName: "e/misc", Description: "quantum computing"},
	}

	counts := Categorize(rows)

	byName := map[string]int{}
	total := 0
	for _, cc := range counts {
		byName[cc.Name] = cc.Count
		total += cc.Count
	}

	assert.Equal(t, len(rows), total, "every row lands in exactly one bucket")
	assert.Equal(t, 1, byName["LLM/NLP"])
	assert.Equal(t, 1, byName["Computer Vision"])
	assert.Equal(t, 1, byName["AI Tooling/Framework"])
	assert.Equal(t, 1, byName["Multimodal"])
	assert.Equal(t, 1, byName["Other"])
}

func TestCategorizePriorityOrder(t *testing.T) {
	counts := Categorize([]*models.TrendRow{
		{Description: "a multimodal framework for vision and llm workloads"},
	})

	assert.Equal(t, "LLM/NLP", counts[0].Name)
	assert.Equal(t, 1, counts[0].Count)
	for _, cc := range counts[1:] {
		assert.Zero(t, cc.Count)
	}
}
