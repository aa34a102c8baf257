package repositories

import (
	"database/sql"
	"testing"
	"time"

	"ai-trend-tracker/internal/models"
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

func TestProjectUpsertIdempotent(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))

	first := &models.Project{
		RepoName:    "ai/ml-lib",
		Description: "deep learning library",
		Language:    "Python",
		URL:         "https://github.com/ai/ml-lib",
		FirstSeen:   day("2026-02-10"),
	}
	id1, err := repo.Upsert(first)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	// Second insert with different metadata must not overwrite the first
	second := &models.Project{
		RepoName:    "ai/ml-lib",
		Description: "changed description",
		Language:    "Rust",
		URL:         "https://github.com/ai/ml-lib",
	}
	id2, err := repo.Upsert(second)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	stored, err := repo.GetByName("ai/ml-lib")
	require.NoError(t, err)
	assert.Equal(t, "deep learning library", stored.Description)
	assert.Equal(t, "Python", stored.Language)
	assert.Equal(t, "2026-02-10", stored.FirstSeen.Format("2006-01-02"))
}

func TestProjectUpsertValidation(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))

	_, err := repo.Upsert(&models.Project{URL: "https://github.com/a/b"})
	assert.ErrorIs(t, err, models.ErrRepoNameRequired)

	_, err = repo.Upsert(&models.Project{RepoName: "a/b"})
	assert.ErrorIs(t, err, models.ErrProjectURLRequired)
}

func TestTrendRecordUpsertIdempotent(t *testing.T) {
	db := newTestDB(t)
	projectRepo := NewProjectRepository(db)
	trendRepo := NewTrendRecordRepository(db)

	projectID, err := projectRepo.Upsert(&models.Project{
		RepoName: "ai/agent", URL: "https://github.com/ai/agent",
	})
	require.NoError(t, err)

	first := &models.TrendRecord{
		ProjectID:   projectID,
		Date:        day("2026-02-10"),
		Stars:       500,
		StarsGrowth: 800,
		TrendType:   models.TrendDaily,
		Ranking:     1,
	}
	id1, err := trendRepo.Upsert(first)
	require.NoError(t, err)

	// Same (project, date, window) with different stars resolves to first row
	second := &models.TrendRecord{
		ProjectID:   projectID,
		Date:        day("2026-02-10"),
		Stars:       999,
		StarsGrowth: 1,
		TrendType:   models.TrendDaily,
		Ranking:     3,
	}
	id2, err := trendRepo.Upsert(second)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	count, err := trendRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rows, err := trendRepo.GetRange(day("2026-02-10"), day("2026-02-10"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 500, rows[0].Stars)

	// Different window kind on the same day is a distinct observation
	third := &models.TrendRecord{
		ProjectID: projectID, Date: day("2026-02-10"), Stars: 510,
		StarsGrowth: 900, TrendType: models.TrendWeekly, Ranking: 2,
	}
	id3, err := trendRepo.Upsert(third)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestTrendRecordInvalidWindow(t *testing.T) {
	trendRepo := NewTrendRecordRepository(newTestDB(t))

	_, err := trendRepo.Upsert(&models.TrendRecord{
		ProjectID: "x", Date: day("2026-02-10"), TrendType: "monthly",
	})
	assert.ErrorIs(t, err, models.ErrInvalidTrendWindow)
}

func TestGetRangeOrderingAndBounds(t *testing.T) {
	db := newTestDB(t)
	projectRepo := NewProjectRepository(db)
	trendRepo := NewTrendRecordRepository(db)

	seed := func(name string, date string, stars, growth int) {
		projectID, err := projectRepo.Upsert(&models.Project{
			RepoName: name, URL: "https://github.com/" + name,
		})
		require.NoError(t, err)
		_, err = trendRepo.Upsert(&models.TrendRecord{
			ProjectID: projectID, Date: day(date), Stars: stars,
			StarsGrowth: growth, TrendType: models.TrendDaily,
		})
		require.NoError(t, err)
	}

	seed("a/low-growth", "2026-02-10", 2000, 10)
	seed("b/high-growth", "2026-02-11", 500, 800)
	seed("c/tied-growth", "2026-02-12", 1000, 800)
	seed("d/outside", "2026-02-20", 9999, 9999)

	rows, err := trendRepo.GetRange(day("2026-02-10"), day("2026-02-12"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Growth first, absolute stars second
	assert.Equal(t, "c/tied-growth", rows[0].RepoName)
	assert.Equal(t, "b/high-growth", rows[1].RepoName)
	assert.Equal(t, "a/low-growth", rows[2].RepoName)

	// Dates come back in plain YYYY-MM-DD form, not as timestamps
	assert.Equal(t, "2026-02-12", rows[0].Date)
	assert.Equal(t, "2026-02-11", rows[1].Date)
	assert.Equal(t, "2026-02-10", rows[2].Date)
}

func TestRecentlyPushedWindow(t *testing.T) {
	repo := NewPushRecordRepository(newTestDB(t))

	require.NoError(t, repo.SaveAll([]string{"a/repo1", "a/repo2"}, day("2026-02-10")))
	require.NoError(t, repo.SaveAll([]string{"a/repo3"}, day("2026-02-01")))

	// Saving the same name for the same date again is a no-op
	require.NoError(t, repo.SaveAll([]string{"a/repo1"}, day("2026-02-10")))

	pushed, err := repo.RecentlyPushed(7, day("2026-02-12"))
	require.NoError(t, err)
	assert.True(t, pushed["a/repo1"])
	assert.True(t, pushed["a/repo2"])
	assert.False(t, pushed["a/repo3"], "outside the 7-day window")

	pushed, err = repo.RecentlyPushed(0, day("2026-02-12"))
	require.NoError(t, err)
	assert.Empty(t, pushed)
}

func TestWeeklyReportCreate(t *testing.T) {
	db := newTestDB(t)
	repo := NewWeeklyReportRepository(db)

	report := &models.WeeklyReport{
		WeekStart:  day("2026-02-09"),
		WeekEnd:    day("2026-02-13"),
		Summary:    "report text",
		TechTrends: "trends text",
	}
	require.NoError(t, repo.Create(report))
	assert.NotEmpty(t, report.ID)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM weekly_reports`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCountsAndRecentActivity(t *testing.T) {
	db := newTestDB(t)
	projectRepo := NewProjectRepository(db)
	trendRepo := NewTrendRecordRepository(db)

	projectID, err := projectRepo.Upsert(&models.Project{
		RepoName: "ai/ml-lib", URL: "https://github.com/ai/ml-lib",
	})
	require.NoError(t, err)

	for _, date := range []string{"2026-02-10", "2026-02-11", "2026-02-12"} {
		_, err := trendRepo.Upsert(&models.TrendRecord{
			ProjectID: projectID, Date: day(date), TrendType: models.TrendDaily,
		})
		require.NoError(t, err)
	}

	projects, err := projectRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, projects)

	records, err := trendRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, records)

	recent, err := trendRepo.RecentActivity(7)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "2026-02-12", recent[0].Date)
	assert.Equal(t, 1, recent[0].Count)
}
