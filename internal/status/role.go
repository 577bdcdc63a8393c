// Package status implements the fixed five-role model: every status label
// known to the engine resolves, via configuration, to one of
// queue/work/review/blocked/terminal, and progression comparisons are
// expressed over that coarser role rather than the raw status string.
package status

import "github.com/taskorchestrator/engine/internal/config"

// Role is one of the five fixed roles. Unlike status labels, which are
// config-defined per kind, the role identity and ordering are fixed by the
// engine itself.
type Role string

const (
	RoleQueue    Role = config.RoleQueue
	RoleWork     Role = config.RoleWork
	RoleReview   Role = config.RoleReview
	RoleBlocked  Role = config.RoleBlocked
	RoleTerminal Role = config.RoleTerminal
)

// order gives the non-blocked roles their progression index. blocked is
// lateral and has no place in this ordering (IsAtOrBeyond special-cases it).
var order = map[Role]int{
	RoleQueue:    0,
	RoleWork:     1,
	RoleReview:   2,
	RoleTerminal: 3,
}

// IsAtOrBeyond compares two roles:
//   - threshold == blocked: true iff current == blocked.
//   - current == blocked, threshold != blocked: always false.
//   - otherwise: compare by the fixed integer order.
func IsAtOrBeyond(current, threshold Role) bool {
	if threshold == RoleBlocked {
		return current == RoleBlocked
	}
	if current == RoleBlocked {
		return false
	}
	return order[current] >= order[threshold]
}

// Resolver maps status labels to roles for one entity kind, built from the
// status_roles section of a StatusProgression. Every label in
// allowed_statuses is guaranteed present by config.validate() before a
// Resolver is ever constructed by the progression/validation layers.
type Resolver struct {
	byStatus map[string]Role
}

// NewResolver builds a Resolver from a status->role mapping (internal
// status labels, already in their config form).
func NewResolver(statusRoles map[string]string) *Resolver {
	r := &Resolver{byStatus: make(map[string]Role, len(statusRoles))}
	for status, role := range statusRoles {
		r.byStatus[status] = Role(role)
	}
	return r
}

// RoleOf returns the role for status and whether it was found.
func (r *Resolver) RoleOf(statusLabel string) (Role, bool) {
	role, ok := r.byStatus[statusLabel]
	return role, ok
}
