package repositories

import (
	"database/sql"
	"time"

	"ai-trend-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const dateLayout = "2006-01-02"

// isUniqueViolation reports whether err is a SQLite uniqueness constraint
// failure. Upserts treat this as the expected idempotency path, not an error.
func isUniqueViolation(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

// Upsert inserts a project, or returns the existing row's ID if the repo name
// is already known. First write wins: existing rows are never updated.
func (r *ProjectRepository) Upsert(project *models.Project) (string, error) {
	if err := project.Validate(); err != nil {
		return "", err
	}

	firstSeen := project.FirstSeen
	if firstSeen.IsZero() {
		firstSeen = time.Now()
	}

	id := uuid.New().String()
	query := `
		INSERT INTO projects (id, repo_name, description, language, url, first_seen)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query,
		id,
		project.RepoName,
		project.Description,
		project.Language,
		project.URL,
		firstSeen.Format(dateLayout),
	)
	if err == nil {
		project.ID = id
		return id, nil
	}
	if !isUniqueViolation(err) {
		return "", err
	}

	var existingID string
	err = r.db.QueryRow(`SELECT id FROM projects WHERE repo_name = $1`, project.RepoName).Scan(&existingID)
	if err != nil {
		return "", err
	}
	project.ID = existingID
	return existingID, nil
}

// GetByName retrieves a project by repository name
func (r *ProjectRepository) GetByName(repoName string) (*models.Project, error) {
	query := `
		SELECT id, repo_name, description, language, url, first_seen
		FROM projects
		WHERE repo_name = $1
	`

	project := &models.Project{}
	err := r.db.QueryRow(query, repoName).Scan(
		&project.ID,
		&project.RepoName,
		&project.Description,
		&project.Language,
		&project.URL,
		&project.FirstSeen,
	)
	if err != nil {
		return nil, err
	}

	return project, nil
}

// Count returns the total number of projects
func (r *ProjectRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}
