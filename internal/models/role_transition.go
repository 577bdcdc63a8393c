package models

import "time"

// RoleTransition is an append-only audit record of a role change (written
// iff fromRole != toRole, never mutated or deleted except via entity
// deletion cascade).
type RoleTransition struct {
	ID             int64      `json:"id" db:"id"`
	EntityID       string     `json:"entity_id" db:"entity_id"`
	EntityType     EntityKind `json:"entity_type" db:"entity_type"`
	FromRole       string     `json:"from_role" db:"from_role"`
	ToRole         string     `json:"to_role" db:"to_role"`
	FromStatus     string     `json:"from_status" db:"from_status"`
	ToStatus       string     `json:"to_status" db:"to_status"`
	TransitionedAt time.Time  `json:"transitioned_at" db:"transitioned_at"`
	Trigger        *string    `json:"trigger,omitempty" db:"trigger"`
	Summary        *string    `json:"summary,omitempty" db:"summary"`
}
