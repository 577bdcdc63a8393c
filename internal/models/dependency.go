package models

import (
	"fmt"
	"time"
)

// DependencyType classifies a directed edge between two tasks.
type DependencyType string

const (
	// DepBlocks: the "from" task blocks the "to" task.
	DepBlocks DependencyType = "BLOCKS"
	// DepIsBlockedBy: the "from" task is blocked by the "to" task. For cycle
	// and blocker-resolution purposes this is equivalent to
	// DepBlocks("to", "from").
	DepIsBlockedBy DependencyType = "IS_BLOCKED_BY"
	// DepRelatesTo is advisory only: excluded from cycle detection and
	// blocker resolution.
	DepRelatesTo DependencyType = "RELATES_TO"
)

// Valid reports whether t is a recognized dependency type.
func (t DependencyType) Valid() bool {
	switch t {
	case DepBlocks, DepIsBlockedBy, DepRelatesTo:
		return true
	}
	return false
}

// Blocking reports whether edges of this type participate in cycle
// detection and blocker resolution.
func (t DependencyType) Blocking() bool {
	return t == DepBlocks || t == DepIsBlockedBy
}

// Dependency is a typed directed edge between two tasks.
type Dependency struct {
	ID         int64          `json:"id" db:"id"`
	FromTaskID string         `json:"from_task_id" db:"from_task_id"`
	ToTaskID   string         `json:"to_task_id" db:"to_task_id"`
	Type       DependencyType `json:"type" db:"type"`
	UnblockAt  *string        `json:"unblock_at,omitempty" db:"unblock_at"` // role name, nullable
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// Validate enforces invariants 2 and 8: from != to, a valid type, and
// unblock_at either unset or a non-empty role name never set on
// RELATES_TO.
func (d *Dependency) Validate() error {
	if d.FromTaskID == "" || d.ToTaskID == "" {
		return fmt.Errorf("from_task_id and to_task_id are required")
	}
	if d.FromTaskID == d.ToTaskID {
		return fmt.Errorf("a task cannot depend on itself")
	}
	if !d.Type.Valid() {
		return fmt.Errorf("invalid dependency type: %q", d.Type)
	}
	if d.UnblockAt != nil {
		if *d.UnblockAt == "" {
			return fmt.Errorf("unblock_at must not be blank when set")
		}
		if d.Type == DepRelatesTo {
			return fmt.Errorf("unblock_at must not be set on RELATES_TO edges")
		}
	}
	return nil
}

// BlockerAndBlocked returns the (blocker, blocked) task id pair implied by
// this edge, normalizing IS_BLOCKED_BY(A,B) to the same shape as
// BLOCKS(B,A).
func (d *Dependency) BlockerAndBlocked() (blocker, blocked string) {
	switch d.Type {
	case DepIsBlockedBy:
		return d.ToTaskID, d.FromTaskID
	default: // DepBlocks
		return d.FromTaskID, d.ToTaskID
	}
}
