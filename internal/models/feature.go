package models

import (
	"fmt"
	"time"
)

// Feature is a mid-level grouping of Tasks. It may stand alone (ProjectID
// nil) or belong to a Project. RequiresVerification is an advisory flag
// consulted by the validator's completed-status prerequisite (the feature
// must have routed at least one child task through the review role).
type Feature struct {
	ID                   string    `json:"id" db:"id"`
	ProjectID            *string   `json:"project_id,omitempty" db:"project_id"`
	Name                 string    `json:"name" db:"name"`
	Summary              string    `json:"summary" db:"summary"`
	Status               string    `json:"status" db:"status"`
	Priority             Priority  `json:"priority" db:"priority"`
	RequiresVerification bool      `json:"requires_verification" db:"requires_verification"`
	Tags                 TagSet    `json:"-" db:"-"`
	TagsRaw              string    `json:"-" db:"tags"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	ModifiedAt           time.Time `json:"modified_at" db:"modified_at"`
}

// Validate checks the feature's required fields.
func (f *Feature) Validate() error {
	if err := requireNonBlank("name", f.Name); err != nil {
		return err
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return fmt.Errorf("priority must be one of low, medium, high: got %q", f.Priority)
	}
	return nil
}

// Touch refreshes ModifiedAt, never moving it backward.
func (f *Feature) Touch(now time.Time) {
	touch(&f.ModifiedAt, now)
}

// Standalone reports whether the feature has no parent project.
func (f *Feature) Standalone() bool {
	return f.ProjectID == nil
}
