package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/models"
)

// DependencyRepository handles CRUD and query operations for dependency
// edges between tasks.
type DependencyRepository struct {
	db *DB
}

// NewDependencyRepository creates a new DependencyRepository.
func NewDependencyRepository(db *DB) *DependencyRepository {
	return &DependencyRepository{db: db}
}

const dependencyColumns = `id, from_task_id, to_task_id, type, unblock_at, created_at`

func scanDependency(row interface{ Scan(...interface{}) error }) (*models.Dependency, error) {
	d := &models.Dependency{}
	if err := row.Scan(&d.ID, &d.FromTaskID, &d.ToTaskID, &d.Type, &d.UnblockAt, &d.CreatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a new dependency edge.
func (r *DependencyRepository) Create(ctx context.Context, d *models.Dependency) error {
	if err := d.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	result, err := r.db.Exec(ctx, `
		INSERT INTO dependencies (from_task_id, to_task_id, type, unblock_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, d.FromTaskID, d.ToTaskID, d.Type, d.UnblockAt, d.CreatedAt)
	if err != nil {
		return apperr.Database(fmt.Errorf("create dependency: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperr.Database(err)
	}
	d.ID = id
	return nil
}

// GetByID retrieves a dependency edge by id.
func (r *DependencyRepository) GetByID(ctx context.Context, id int64) (*models.Dependency, error) {
	row := r.db.QueryRow(ctx, `SELECT `+dependencyColumns+` FROM dependencies WHERE id = ?`, id)
	d, err := scanDependency(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("dependency", fmt.Sprint(id))
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get dependency: %w", err))
	}
	return d, nil
}

// FindByTask returns every edge touching taskID, either as the from or to
// endpoint.
func (r *DependencyRepository) FindByTask(ctx context.Context, taskID string) ([]*models.Dependency, error) {
	rows, err := r.db.Query(ctx, `SELECT `+dependencyColumns+` FROM dependencies WHERE from_task_id = ? OR to_task_id = ?`, taskID, taskID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("find dependencies: %w", err))
	}
	defer rows.Close()
	return scanDependencyRows(rows)
}

// FindAllBlocking returns every BLOCKS/IS_BLOCKED_BY edge in the graph,
// as stored (callers normalize with BlockerAndBlocked), for cycle
// detection (spec §4.4). RELATES_TO edges are excluded - they never
// participate in blocking or cycle checks.
func (r *DependencyRepository) FindAllBlocking(ctx context.Context) ([]*models.Dependency, error) {
	rows, err := r.db.Query(ctx, `SELECT `+dependencyColumns+` FROM dependencies WHERE type IN ('BLOCKS', 'IS_BLOCKED_BY')`)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("find blocking dependencies: %w", err))
	}
	defer rows.Close()
	return scanDependencyRows(rows)
}

// BlockersOf returns the tasks that block taskID - i.e. the set of
// blocker ids from every blocking edge whose blocked endpoint is taskID.
func (r *DependencyRepository) BlockersOf(ctx context.Context, taskID string) ([]*models.Dependency, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+dependencyColumns+` FROM dependencies
		WHERE type IN ('BLOCKS', 'IS_BLOCKED_BY')
		  AND ((type = 'BLOCKS' AND to_task_id = ?) OR (type = 'IS_BLOCKED_BY' AND from_task_id = ?))
	`, taskID, taskID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("find blockers: %w", err))
	}
	defer rows.Close()
	return scanDependencyRows(rows)
}

func scanDependencyRows(rows rowsScanner) ([]*models.Dependency, error) {
	var out []*models.Dependency
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("scan dependency: %w", err))
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// rowsScanner is the minimal surface scanDependencyRows needs from a
// db.Rows result set.
type rowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// Delete removes a dependency edge.
func (r *DependencyRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return apperr.Database(fmt.Errorf("delete dependency: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("dependency", fmt.Sprint(id))
	}
	return nil
}

// DeleteByTask removes every edge touching taskID, as part of
// completion-cleanup's cascading delete (ON DELETE CASCADE also covers
// this at the schema level; this method supports callers operating
// without relying on cascade, e.g. dry-run cleanup previews).
func (r *DependencyRepository) DeleteByTask(ctx context.Context, taskID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM dependencies WHERE from_task_id = ? OR to_task_id = ?`, taskID, taskID)
	if err != nil {
		return apperr.Database(fmt.Errorf("delete dependencies by task: %w", err))
	}
	return nil
}
