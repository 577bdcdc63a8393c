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

// FeatureRepository handles CRUD and query operations for features.
type FeatureRepository struct {
	db *DB
}

// NewFeatureRepository creates a new FeatureRepository.
func NewFeatureRepository(db *DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

const featureColumns = `id, project_id, name, summary, status, priority, requires_verification, tags, created_at, modified_at`

func scanFeature(row interface{ Scan(...interface{}) error }) (*models.Feature, error) {
	f := &models.Feature{}
	err := row.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Summary, &f.Status, &f.Priority,
		&f.RequiresVerification, &f.TagsRaw, &f.CreatedAt, &f.ModifiedAt)
	if err != nil {
		return nil, err
	}
	f.Tags = models.NewTagSet(splitTags(f.TagsRaw))
	return f, nil
}

// Create inserts a new feature, assigning a fresh id when one is not
// already set.
func (r *FeatureRepository) Create(ctx context.Context, f *models.Feature) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if err := f.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	if f.Priority == "" {
		f.Priority = models.PriorityMedium
	}
	f.TagsRaw = strings.Join(f.Tags.Slice(), ",")

	query := `
		INSERT INTO features (id, project_id, name, summary, status, priority, requires_verification, tags, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(ctx, query,
		f.ID, f.ProjectID, f.Name, f.Summary, f.Status, f.Priority, f.RequiresVerification, f.TagsRaw, f.CreatedAt, f.ModifiedAt,
	)
	if err != nil {
		return apperr.Database(fmt.Errorf("create feature: %w", err))
	}
	return nil
}

// GetByID retrieves a feature by id.
func (r *FeatureRepository) GetByID(ctx context.Context, id string) (*models.Feature, error) {
	row := r.db.QueryRow(ctx, `SELECT `+featureColumns+` FROM features WHERE id = ?`, id)
	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("feature", id)
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get feature: %w", err))
	}
	return f, nil
}

// FeatureFilter narrows List results; zero-value fields are ignored.
type FeatureFilter struct {
	ProjectID *string
	Status    string
	Tags      []string
}

// List returns features matching filter, newest first.
func (r *FeatureRepository) List(ctx context.Context, filter FeatureFilter) ([]*models.Feature, error) {
	query := `SELECT ` + featureColumns + ` FROM features`
	var clauses []string
	var args []interface{}
	if filter.ProjectID != nil {
		clauses = append(clauses, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("list features: %w", err))
	}
	defer rows.Close()

	var out []*models.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("scan feature: %w", err))
		}
		if len(filter.Tags) > 0 && !f.Tags.Intersects(filter.Tags) {
			continue
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FindByParent returns every feature belonging to projectID.
func (r *FeatureRepository) FindByParent(ctx context.Context, projectID string) ([]*models.Feature, error) {
	return r.List(ctx, FeatureFilter{ProjectID: &projectID})
}

// Update persists name, summary, status, priority, requires_verification
// and tags for an existing feature and refreshes modified_at.
func (r *FeatureRepository) Update(ctx context.Context, f *models.Feature) error {
	if err := f.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	f.TagsRaw = strings.Join(f.Tags.Slice(), ",")

	query := `
		UPDATE features
		SET name = ?, summary = ?, status = ?, priority = ?, requires_verification = ?, tags = ?, modified_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(ctx, query,
		f.Name, f.Summary, f.Status, f.Priority, f.RequiresVerification, f.TagsRaw, f.ModifiedAt, f.ID,
	)
	if err != nil {
		return apperr.Database(fmt.Errorf("update feature: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("feature", f.ID)
	}
	return nil
}

// Delete removes a feature. It does not cascade to tasks (ownership
// without cascading destruction, per the data model); cascading deletion
// is the completion-cleanup hook's responsibility, not this method's.
func (r *FeatureRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM features WHERE id = ?`, id)
	if err != nil {
		return apperr.Database(fmt.Errorf("delete feature: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("feature", id)
	}
	return nil
}

// CountChildTasksByStatus returns, per raw status, the number of direct
// child tasks of featureID. Used by cascade detection (all children
// terminal) and by role-breakdown reporting.
func (r *FeatureRepository) CountChildTasksByStatus(ctx context.Context, featureID string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM tasks WHERE feature_id = ? GROUP BY status`, featureID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("count child tasks: %w", err))
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperr.Database(err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// HasReviewedChild reports whether any child task of featureID has a
// recorded role_transition into the review role - the prerequisite
// consulted when RequiresVerification is set.
func (r *FeatureRepository) HasReviewedChild(ctx context.Context, featureID string, reviewRole string) (bool, error) {
	row := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_transitions rt
			JOIN tasks t ON t.id = rt.entity_id
			WHERE t.feature_id = ? AND rt.entity_type = 'TASK' AND rt.to_role = ?
		)
	`, featureID, reviewRole)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, apperr.Database(fmt.Errorf("check reviewed child: %w", err))
	}
	return exists, nil
}
