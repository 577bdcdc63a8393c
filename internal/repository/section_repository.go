package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/models"
)

// SectionRepository handles CRUD and query operations for sections.
type SectionRepository struct {
	db *DB
}

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(db *DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `id, entity_type, entity_id, title, usage_description, content, ordinal, tags, version, created_at, modified_at`

func scanSection(row interface{ Scan(...interface{}) error }) (*models.Section, error) {
	s := &models.Section{}
	err := row.Scan(&s.ID, &s.EntityType, &s.EntityID, &s.Title, &s.UsageDescription, &s.Content,
		&s.Ordinal, &s.TagsRaw, &s.Version, &s.CreatedAt, &s.ModifiedAt)
	if err != nil {
		return nil, err
	}
	s.Tags = models.NewTagSet(splitTags(s.TagsRaw))
	return s, nil
}

// Create inserts a single section at version 1.
func (r *SectionRepository) Create(ctx context.Context, s *models.Section) error {
	if err := s.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	s.TagsRaw = strings.Join(s.Tags.Slice(), ",")
	s.Version = 1

	query := `
		INSERT INTO sections (entity_type, entity_id, title, usage_description, content, ordinal, tags, version, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(ctx, query,
		s.EntityType, s.EntityID, s.Title, s.UsageDescription, s.Content, s.Ordinal, s.TagsRaw, s.Version, s.CreatedAt, s.ModifiedAt,
	)
	if err != nil {
		return apperr.Database(fmt.Errorf("create section: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return apperr.Database(err)
	}
	s.ID = id
	return nil
}

// BulkCreate inserts every section in sections inside a single transaction,
// so a batch of seeded content (e.g. template application) either lands
// entirely or not at all.
func (r *SectionRepository) BulkCreate(ctx context.Context, sections []*models.Section) error {
	if len(sections) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.Database(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return apperr.Validation(err.Error())
		}
		s.TagsRaw = strings.Join(s.Tags.Slice(), ",")
		s.Version = 1

		result, err := tx.Exec(ctx, `
			INSERT INTO sections (entity_type, entity_id, title, usage_description, content, ordinal, tags, version, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.EntityType, s.EntityID, s.Title, s.UsageDescription, s.Content, s.Ordinal, s.TagsRaw, s.Version, s.CreatedAt, s.ModifiedAt)
		if err != nil {
			return apperr.Database(fmt.Errorf("bulk create section: %w", err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return apperr.Database(err)
		}
		s.ID = id
	}
	if err := tx.Commit(); err != nil {
		return apperr.Database(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// GetByID retrieves a section by id.
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id)
	s, err := scanSection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("section", fmt.Sprint(id))
	}
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("get section: %w", err))
	}
	return s, nil
}

// FindByParent returns every section attached to entityType/entityID,
// ordered by ordinal.
func (r *SectionRepository) FindByParent(ctx context.Context, entityType models.EntityKind, entityID string) ([]*models.Section, error) {
	rows, err := r.db.Query(ctx, `SELECT `+sectionColumns+` FROM sections WHERE entity_type = ? AND entity_id = ? ORDER BY ordinal ASC`,
		entityType, entityID)
	if err != nil {
		return nil, apperr.Database(fmt.Errorf("find sections: %w", err))
	}
	defer rows.Close()

	var out []*models.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, apperr.Database(fmt.Errorf("scan section: %w", err))
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindByTagsAnyOf returns sections attached to entityType/entityID whose
// tags intersect any of tags - used to resolve "role:<name>" content for
// the active entity when applying a template.
func (r *SectionRepository) FindByTagsAnyOf(ctx context.Context, entityType models.EntityKind, entityID string, tags []string) ([]*models.Section, error) {
	all, err := r.FindByParent(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	var out []*models.Section
	for _, s := range all {
		if s.Tags.Intersects(tags) {
			out = append(out, s)
		}
	}
	return out, nil
}

// BulkUpdateText updates title/usage_description/content/tags for a batch
// of sections, enforcing optimistic concurrency: each section's current
// version in the database must match s.Version, otherwise the whole batch
// is rejected and rolled back (no partial application). On success every
// updated section's Version is incremented in place.
func (r *SectionRepository) BulkUpdateText(ctx context.Context, sections []*models.Section) error {
	if len(sections) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperr.Database(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return apperr.Validation(err.Error())
		}
		s.TagsRaw = strings.Join(s.Tags.Slice(), ",")

		result, err := tx.Exec(ctx, `
			UPDATE sections
			SET title = ?, usage_description = ?, content = ?, tags = ?, version = version + 1, modified_at = ?
			WHERE id = ? AND version = ?
		`, s.Title, s.UsageDescription, s.Content, s.TagsRaw, s.ModifiedAt, s.ID, s.Version)
		if err != nil {
			return apperr.Database(fmt.Errorf("bulk update section %d: %w", s.ID, err))
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return apperr.Database(err)
		}
		if rows == 0 {
			return apperr.Conflict(fmt.Sprintf("section %d was modified since version %d was read", s.ID, s.Version))
		}
		s.Version++
	}
	if err := tx.Commit(); err != nil {
		return apperr.Database(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Delete removes a section.
func (r *SectionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return apperr.Database(fmt.Errorf("delete section: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound("section", fmt.Sprint(id))
	}
	return nil
}

// DeleteByParent removes every section attached to entityType/entityID,
// as part of completion-cleanup's cascading delete.
func (r *SectionRepository) DeleteByParent(ctx context.Context, entityType models.EntityKind, entityID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sections WHERE entity_type = ? AND entity_id = ?`, entityType, entityID)
	if err != nil {
		return apperr.Database(fmt.Errorf("delete sections by parent: %w", err))
	}
	return nil
}
