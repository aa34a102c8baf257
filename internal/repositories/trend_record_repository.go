package repositories

import (
	"database/sql"
	"time"

	"ai-trend-tracker/internal/models"
	"github.com/google/uuid"
)

type TrendRecordRepository struct {
	db *sql.DB
}

func NewTrendRecordRepository(db *sql.DB) *TrendRecordRepository {
	return &TrendRecordRepository{
		db: db,
	}
}

// Upsert inserts a trend record, or returns the existing row's ID when one
// already exists for the same (project, date, trend type) triple. The stored
// row keeps the first insert's values.
func (r *TrendRecordRepository) Upsert(record *models.TrendRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}

	id := uuid.New().String()
	query := `
		INSERT INTO trend_records
		(id, project_id, date, stars, stars_growth, trend_type, ranking, ai_relevance_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		id,
		record.ProjectID,
		record.Date.Format(dateLayout),
		record.Stars,
		record.StarsGrowth,
		string(record.TrendType),
		record.Ranking,
		record.AIRelevanceReason,
	)
	if err == nil {
		record.ID = id
		return id, nil
	}
	if !isUniqueViolation(err) {
		return "", err
	}

	var existingID string
	err = r.db.QueryRow(`
		SELECT id FROM trend_records
		WHERE project_id = $1 AND date = $2 AND trend_type = $3
	`, record.ProjectID, record.Date.Format(dateLayout), string(record.TrendType)).Scan(&existingID)
	if err != nil {
		return "", err
	}
	record.ID = existingID
	return existingID, nil
}

// GetRange retrieves all observations in [startDate, endDate] inclusive,
// joined with their projects, ordered by stars growth then absolute stars.
func (r *TrendRecordRepository) GetRange(startDate, endDate time.Time) ([]*models.TrendRow, error) {
	query := `
		SELECT p.repo_name, p.description, p.language, p.url,
		       tr.stars, tr.stars_growth, tr.date, tr.ranking, tr.ai_relevance_reason
		FROM projects p
		JOIN trend_records tr ON p.id = tr.project_id
		WHERE tr.date >= $1 AND tr.date <= $2
		ORDER BY tr.stars_growth DESC, tr.stars DESC
	`

	rows, err := r.db.Query(query, startDate.Format(dateLayout), endDate.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.TrendRow
	for rows.Next() {
		row := &models.TrendRow{}
		// DATE columns come back as time.Time from the driver
		var date time.Time
		err := rows.Scan(
			&row.RepoName,
			&row.Description,
			&row.Language,
			&row.URL,
			&row.Stars,
			&row.StarsGrowth,
			&date,
			&row.Ranking,
			&row.AIRelevanceReason,
		)
		if err != nil {
			return nil, err
		}
		row.Date = date.Format(dateLayout)
		result = append(result, row)
	}

	return result, rows.Err()
}

// Count returns the total number of trend records
func (r *TrendRecordRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM trend_records`).Scan(&count)
	return count, err
}

// RecentActivity returns per-day record counts for the most recent dates
func (r *TrendRecordRepository) RecentActivity(days int) ([]*models.DailyCount, error) {
	query := `
		SELECT date, COUNT(*) as count
		FROM trend_records
		GROUP BY date
		ORDER BY date DESC
		LIMIT $1
	`

	rows, err := r.db.Query(query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.DailyCount
	for rows.Next() {
		dc := &models.DailyCount{}
		var date time.Time
		if err := rows.Scan(&date, &dc.Count); err != nil {
			return nil, err
		}
		dc.Date = date.Format(dateLayout)
		result = append(result, dc)
	}

	return result, rows.Err()
}
