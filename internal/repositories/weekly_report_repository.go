package repositories

import (
	"database/sql"

	"ai-trend-tracker/internal/models"
	"github.com/google/uuid"
)

type WeeklyReportRepository struct {
	db *sql.DB
}

func NewWeeklyReportRepository(db *sql.DB) *WeeklyReportRepository {
	return &WeeklyReportRepository{
		db: db,
	}
}

// Create stores a weekly report audit record
func (r *WeeklyReportRepository) Create(report *models.WeeklyReport) error {
	report.ID = uuid.New().String()

	query := `
		INSERT INTO weekly_reports (id, week_start, week_end, summary, tech_trends)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(query,
		report.ID,
		report.WeekStart.Format(dateLayout),
		report.WeekEnd.Format(dateLayout),
		report.Summary,
		report.TechTrends,
	)

	return err
}
