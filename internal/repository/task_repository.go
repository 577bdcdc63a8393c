package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/models"
)

// TaskRepository handles CRUD and query operations for tasks.
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, feature_id, title, description, summary, status, priority, complexity, tags, created_at, modified_at`

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(&t.ID, &t.FeatureID, &t.Title, &t.Description, &t.Summary, &t.Status,
		&t.Priority, &t.Complexity, &t.TagsRaw, &t.CreatedAt, &t.ModifiedAt)
	if err != nil {
		return nil, err
	}
	t.Tags = models.NewTagSet(splitTags(t.TagsRaw))
	return t, nil
}

// Create inserts a new task, assigning a fresh id when one is not already
// set.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Complexity == 0 {
		t.Complexity = 1
	}
	t.TagsRaw = strings.Join(t.Tags.Slice(), ",")

	query := `
		INSERT INTO tasks (id, feature_id, title, description, summary, status, priority, complexity, tags, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.FeatureID, t.Title, t.Description, t.Summary, t.Status, t.Priority, t.Complexity, t.TagsRaw, t.CreatedAt, t.ModifiedAt,
	)
	if err != nil {
		return apperr.Database(fmt.Errorf("create task: %w", err))
	}
	return nil
}

// GetByID retrieves a task by id.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("task", id)
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get task: %w", err))
	}
	return t, nil
}

// TaskFilter narrows List results; zero-value fields are ignored.
type TaskFilter struct {
	FeatureID *string
	Status    string
	Priority  string
	Tags      []string
}

// List returns tasks matching filter, newest first.
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var clauses []string
	var args []interface{}
	if filter.FeatureID != nil {
		clauses = append(clauses, "feature_id = ?")
		args = append(args, *filter.FeatureID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, filter.Priority)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("list tasks: %w", err))
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("scan task: %w", err))
		}
		if len(filter.Tags) > 0 && !t.Tags.Intersects(filter.Tags) {
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// FindByParent returns every task belonging to featureID.
func (r *TaskRepository) FindByParent(ctx context.Context, featureID string) ([]*models.Task, error) {
	return r.List(ctx, TaskFilter{FeatureID: &featureID})
}

// Update persists all mutable task fields and refreshes modified_at.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	if err := t.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	t.TagsRaw = strings.Join(t.Tags.Slice(), ",")

	query := `
		UPDATE tasks
		SET title = ?, description = ?, summary = ?, status = ?, priority = ?, complexity = ?, tags = ?, modified_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(ctx, query,
		t.Title, t.Description, t.Summary, t.Status, t.Priority, t.Complexity, t.TagsRaw, t.ModifiedAt, t.ID,
	)
	if err != nil {
		return apperr.Database(fmt.Errorf("update task: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("task", t.ID)
	}
	return nil
}

// Delete removes a task and, via ON DELETE CASCADE, any dependency edges
// that reference it.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return apperr.Database(fmt.Errorf("delete task: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("task", id)
	}
	return nil
}

// ListAllTags returns every tag across all tasks, features and projects with
// how many entities carry it, folded and sorted, for the list_tags
// operation. Every row is scanned (not SELECT DISTINCT) so the count
// reflects actual occurrences rather than distinct tag combinations.
func (r *TaskRepository) ListAllTags(ctx context.Context) (models.TagSet, error) {
	ts := models.NewTagSet(nil)
	for _, table := range []string{"tasks", "features", "projects"} {
		rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT tags FROM %s WHERE tags != ''`, table)) //nolint:gosec // table is one of a fixed internal list, never user input
		if err != nil {
			return ts, apperr.Database(fmt.Errorf("list tags from %s: %w", table, err))
		}
		for rows.Next() {
			var raw string
			if err := rows.Scan(&raw); err != nil {
				rows.Close()
				return ts, apperr.Database(err)
			}
			for _, t := range splitTags(raw) {
				ts.Add(t)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return ts, apperr.Database(err)
		}
	}
	return ts, nil
}
