package models

import (
	"fmt"
	"time"
)

// Task is the leaf unit of work. It may belong to a Feature or stand alone
// (FeatureID nil); standalone tasks never participate in feature-level
// cascades or completion-cleanup.
type Task struct {
	ID          string    `json:"id" db:"id"`
	FeatureID   *string   `json:"feature_id,omitempty" db:"feature_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Summary     string    `json:"summary" db:"summary"` // agent-written; 300-500 chars required to reach "completed"
	Status      string    `json:"status" db:"status"`
	Priority    Priority  `json:"priority" db:"priority"`
	Complexity  int       `json:"complexity" db:"complexity"` // 1-10
	Tags        TagSet    `json:"-" db:"-"`
	TagsRaw     string    `json:"-" db:"tags"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ModifiedAt  time.Time `json:"modified_at" db:"modified_at"`
}

// MinSummaryLen and MaxSummaryLen bound the agent-written completion
// summary (spec data model, Task.summary).
const (
	MinSummaryLen = 300
	MaxSummaryLen = 500
)

// Validate checks the task's required fields, independent of status
// progression/prerequisite rules.
func (t *Task) Validate() error {
	if err := requireNonBlank("title", t.Title); err != nil {
		return err
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return fmt.Errorf("priority must be one of low, medium, high: got %q", t.Priority)
	}
	if t.Complexity != 0 && (t.Complexity < 1 || t.Complexity > 10) {
		return fmt.Errorf("complexity must be between 1 and 10: got %d", t.Complexity)
	}
	return nil
}

// Touch refreshes ModifiedAt, never moving it backward.
func (t *Task) Touch(now time.Time) {
	touch(&t.ModifiedAt, now)
}

// Standalone reports whether the task has no parent feature.
func (t *Task) Standalone() bool {
	return t.FeatureID == nil
}

// SummaryLenOK reports whether Summary satisfies the completion length
// prerequisite (boundary behavior: 299 rejects, 300 and 500 accept, 501
// rejects).
func (t *Task) SummaryLenOK() bool {
	n := len(t.Summary)
	return n >= MinSummaryLen && n <= MaxSummaryLen
}
