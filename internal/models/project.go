package models

import (
	"fmt"
	"time"
)

// Project is the root container entity. It owns zero or more Features but
// destruction does not cascade to them (see data model Ownership notes).
type Project struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Summary    string    `json:"summary" db:"summary"`
	Status     string    `json:"status" db:"status"` // e.g. "in-development"
	Priority   Priority  `json:"priority" db:"priority"`
	Tags       TagSet    `json:"-" db:"-"`
	TagsRaw    string    `json:"-" db:"tags"` // comma-joined storage form
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`
}

// Validate checks the project's required fields, independent of status
// progression rules (which live in internal/validation).
func (p *Project) Validate() error {
	if err := requireNonBlank("name", p.Name); err != nil {
		return err
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return fmt.Errorf("priority must be one of low, medium, high: got %q", p.Priority)
	}
	return nil
}

// Touch refreshes ModifiedAt, never moving it backward.
func (p *Project) Touch(now time.Time) {
	touch(&p.ModifiedAt, now)
}
