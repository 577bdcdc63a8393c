package models

import (
	"fmt"
	"time"
)

// Section is an ordered documentation fragment attached to any entity
// (including content-template entities, out of engine scope beyond storage
// shape). Version increments on every write, enabling optimistic
// concurrency for bulkUpdateText.
type Section struct {
	ID               int64     `json:"id" db:"id"`
	EntityType       EntityKind `json:"entity_type" db:"entity_type"`
	EntityID         string    `json:"entity_id" db:"entity_id"`
	Title            string    `json:"title" db:"title"`
	UsageDescription string    `json:"usage_description" db:"usage_description"`
	Content          string    `json:"content" db:"content"`
	Ordinal          int       `json:"ordinal" db:"ordinal"`
	Tags             TagSet    `json:"-" db:"-"`
	TagsRaw          string    `json:"-" db:"tags"`
	Version          int64     `json:"version" db:"version"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	ModifiedAt       time.Time `json:"modified_at" db:"modified_at"`
}

// Validate checks the section's required fields.
func (s *Section) Validate() error {
	if !s.EntityType.Valid() {
		return fmt.Errorf("invalid entity_type: %q", s.EntityType)
	}
	if err := requireNonBlank("entity_id", s.EntityID); err != nil {
		return err
	}
	if err := requireNonBlank("title", s.Title); err != nil {
		return err
	}
	if s.Ordinal < 0 {
		return fmt.Errorf("ordinal must be non-negative: got %d", s.Ordinal)
	}
	return nil
}

// RoleTag returns the "role:<name>" tag on the section, if present, and
// whether one was found. Role-tags let content templates target a
// workflow role (e.g. "role:work").
func (s *Section) RoleTag() (string, bool) {
	for _, t := range s.Tags.Slice() {
		const prefix = "role:"
		if len(t) > len(prefix) && t[:len(prefix)] == prefix {
			return t[len(prefix):], true
		}
	}
	return "", false
}
