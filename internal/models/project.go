package models

import (
	"time"
)

// Project is a unique repository identity. Rows are immutable once written:
// re-inserting an existing repo name returns the existing row untouched.
type Project struct {
	ID          string    `json:"id"`
	RepoName    string    `json:"repo_name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	URL         string    `json:"url"`
	FirstSeen   time.Time `json:"first_seen"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Project) Validate() error {
	if p.RepoName == "" {
		return ErrRepoNameRequired
	}
	if p.URL == "" {
		return ErrProjectURLRequired
	}
	return nil
}

// Common errors
var (
	ErrRepoNameRequired   = &ValidationError{Field: "repo_name", Message: "Repository name is required"}
	ErrProjectURLRequired = &ValidationError{Field: "url", Message: "Project URL is required"}
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
