package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the coarse urgency classification shared by projects, features
// and tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three recognized priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// EntityKind identifies which entity a Section or RoleTransition targets.
type EntityKind string

const (
	KindProject  EntityKind = "PROJECT"
	KindFeature  EntityKind = "FEATURE"
	KindTask     EntityKind = "TASK"
	KindTemplate EntityKind = "TEMPLATE"
)

// Valid reports whether k is a recognized entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindProject, KindFeature, KindTask, KindTemplate:
		return true
	}
	return false
}

// touch refreshes modifiedAt to the given timestamp, enforcing the
// monotonic-modifiedAt invariant (testable property 4) by never moving it
// backward.
func touch(modifiedAt *time.Time, now time.Time) {
	if modifiedAt.IsZero() || now.After(*modifiedAt) {
		*modifiedAt = now
	}
}

func requireNonBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be blank", field)
	}
	return nil
}
