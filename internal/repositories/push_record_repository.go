package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type PushRecordRepository struct {
	db *sql.DB
}

func NewPushRecordRepository(db *sql.DB) *PushRecordRepository {
	return &PushRecordRepository{
		db: db,
	}
}

// SaveAll records the repo names pushed on the given date. Names already
// recorded for that date are ignored.
func (r *PushRecordRepository) SaveAll(repoNames []string, pushedDate time.Time) error {
	if len(repoNames) == 0 {
		return nil
	}

	query := `
		INSERT OR IGNORE INTO daily_push_records (id, repo_name, pushed_date)
		VALUES ($1, $2, $3)
	`

	for _, name := range repoNames {
		if _, err := r.db.Exec(query, uuid.New().String(), name, pushedDate.Format(dateLayout)); err != nil {
			return err
		}
	}

	return nil
}

// RecentlyPushed returns the set of repo names pushed within the lookback
// window [referenceDate-lookbackDays+1, referenceDate]. A lookback below 1
// yields an empty set.
func (r *PushRecordRepository) RecentlyPushed(lookbackDays int, referenceDate time.Time) (map[string]bool, error) {
	pushed := make(map[string]bool)
	if lookbackDays < 1 {
		return pushed, nil
	}

	windowStart := referenceDate.AddDate(0, 0, -(lookbackDays - 1))
	query := `
		SELECT DISTINCT repo_name
		FROM daily_push_records
		WHERE pushed_date >= $1 AND pushed_date <= $2
	`

	rows, err := r.db.Query(query, windowStart.Format(dateLayout), referenceDate.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pushed[name] = true
	}

	return pushed, rows.Err()
}
