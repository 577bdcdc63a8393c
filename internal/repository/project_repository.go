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

// ProjectRepository handles CRUD and query operations for projects.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project, assigning a fresh id when one is not
// already set.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := p.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	p.TagsRaw = strings.Join(p.Tags.Slice(), ",")

	query := `
		INSERT INTO projects (id, name, summary, status, priority, tags, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Summary, p.Status, p.Priority, p.TagsRaw, p.CreatedAt, p.ModifiedAt,
	)
	if err != nil {
		return apperr.Database(fmt.Errorf("create project: %w", err))
	}
	return nil
}

func scanProject(row interface{ Scan(...interface{}) error }) (*models.Project, error) {
	p := &models.Project{}
	err := row.Scan(&p.ID, &p.Name, &p.Summary, &p.Status, &p.Priority, &p.TagsRaw, &p.CreatedAt, &p.ModifiedAt)
	if err != nil {
		return nil, err
	}
	p.Tags = models.NewTagSet(splitTags(p.TagsRaw))
	return p, nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

const projectColumns = `id, name, summary, status, priority, tags, created_at, modified_at`

// GetByID retrieves a project by id.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("project", id)
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get project: %w", err))
	}
	return p, nil
}

// ProjectFilter narrows List results; zero-value fields are ignored.
type ProjectFilter struct {
	Status string
	Tags   []string
}

// List returns projects matching filter, newest first.
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var clauses []string
	var args []interface{}
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
		return nil, apperr.Database(fmt.Errorf("list projects: %w", err))
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("scan project: %w", err))
		}
		if len(filter.Tags) > 0 && !p.Tags.Intersects(filter.Tags) {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update persists name, summary, status, priority and tags for an existing
// project and refreshes modified_at.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	if err := p.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	p.TagsRaw = strings.Join(p.Tags.Slice(), ",")

	query := `
		UPDATE projects
		SET name = ?, summary = ?, status = ?, priority = ?, tags = ?, modified_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(ctx, query, p.Name, p.Summary, p.Status, p.Priority, p.TagsRaw, p.ModifiedAt, p.ID)
	if err != nil {
		return apperr.Database(fmt.Errorf("update project: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("project", p.ID)
	}
	return nil
}

// Delete removes a project. It does not cascade to features (ownership
// without cascading destruction, per the data model).
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return apperr.Database(fmt.Errorf("delete project: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("project", id)
	}
	return nil
}

// CountChildFeaturesByStatus returns, per raw status, the number of direct
// child features of projectID. Callers resolve role membership via
// status.Resolver; this just groups by raw status.
func (r *ProjectRepository) CountChildFeaturesByStatus(ctx context.Context, projectID string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM features WHERE project_id = ? GROUP BY status`, projectID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("count child features: %w", err))
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
