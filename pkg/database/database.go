package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the SQLite database at path, creating the parent directory and
// the file if they don't exist, and returns a ready-to-use handle.
// The caller owns the handle and is responsible for closing it.
func New(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=30000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single-writer batch pipeline, a small pool is plenty
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=30000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return db, nil
}

// InitSchema creates the tables if they don't exist. Safe to call on every startup.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	repo_name TEXT UNIQUE NOT NULL,
	description TEXT,
	language TEXT,
	url TEXT NOT NULL,
	first_seen DATE NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS trend_records (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	date DATE NOT NULL,
	stars INTEGER,
	stars_growth INTEGER,
	trend_type TEXT NOT NULL,
	ranking INTEGER,
	ai_relevance_reason TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id),
	UNIQUE(project_id, date, trend_type)
);

CREATE TABLE IF NOT EXISTS weekly_reports (
	id TEXT PRIMARY KEY,
	week_start DATE NOT NULL,
	week_end DATE NOT NULL,
	summary TEXT,
	tech_trends TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS daily_push_records (
	id TEXT PRIMARY KEY,
	repo_name TEXT NOT NULL,
	pushed_date DATE NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(repo_name, pushed_date)
);

CREATE INDEX IF NOT EXISTS idx_trend_records_date ON trend_records(date);
CREATE INDEX IF NOT EXISTS idx_daily_push_records_date ON daily_push_records(pushed_date);
`
