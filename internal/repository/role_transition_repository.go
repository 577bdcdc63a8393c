package repository

import (
	"context"
	"fmt"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/models"
)

// RoleTransitionRepository records and queries the append-only role
// transition audit log.
type RoleTransitionRepository struct {
	db *DB
}

// NewRoleTransitionRepository creates a new RoleTransitionRepository.
func NewRoleTransitionRepository(db *DB) *RoleTransitionRepository {
	return &RoleTransitionRepository{db: db}
}

const roleTransitionColumns = `id, entity_id, entity_type, from_role, to_role, from_status, to_status, transitioned_at, trigger, summary`

func scanRoleTransition(row interface{ Scan(...interface{}) error }) (*models.RoleTransition, error) {
	rt := &models.RoleTransition{}
	err := row.Scan(&rt.ID, &rt.EntityID, &rt.EntityType, &rt.FromRole, &rt.ToRole,
		&rt.FromStatus, &rt.ToStatus, &rt.TransitionedAt, &rt.Trigger, &rt.Summary)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// Record appends a role transition. It is written iff fromRole != toRole;
// callers are expected to have already checked that invariant, but Record
// does not re-check it - the audit log records what the caller committed.
func (r *RoleTransitionRepository) Record(ctx context.Context, rt *models.RoleTransition) error {
	result, err := r.db.Exec(ctx, `
		INSERT INTO role_transitions (entity_id, entity_type, from_role, to_role, from_status, to_status, transitioned_at, trigger, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rt.EntityID, rt.EntityType, rt.FromRole, rt.ToRole, rt.FromStatus, rt.ToStatus, rt.TransitionedAt, rt.Trigger, rt.Summary)
	if err != nil {
		return apperr.Database(fmt.Errorf("record role transition: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperr.Database(err)
	}
	rt.ID = id
	return nil
}

// FindByEntity returns the transition history for entityID, most recent
// first.
func (r *RoleTransitionRepository) FindByEntity(ctx context.Context, entityID string) ([]*models.RoleTransition, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleTransitionColumns+` FROM role_transitions WHERE entity_id = ? ORDER BY transitioned_at DESC`, entityID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("find role transitions: %w", err))
	}
	defer rows.Close()

	var out []*models.RoleTransition
	for rows.Next() {
		rt, err := scanRoleTransition(rows)
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("scan role transition: %w", err))
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}
