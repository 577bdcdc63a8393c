package dispatch

import (
	"context"
	"time"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/models"
)

// ManageSections implements manage_sections: add/update/delete/bulkCreate/
// bulkUpdateText.
func (e *Engine) ManageSections(ctx context.Context, args Args) (interface{}, error) {
	operation, err := requireEnum(args, "operation", "add", "update", "delete", "bulkCreate", "bulkUpdateText")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "add":
		return e.addSection(ctx, args)
	case "bulkCreate":
		return e.bulkCreateSections(ctx, args)
	case "update", "bulkUpdateText":
		return e.bulkUpdateSectionText(ctx, args)
	case "delete":
		return e.deleteSection(ctx, args)
	}
	return nil, apperr.Validation("unreachable operation")
}

func parseSectionFields(fields Args) *models.Section {
	now := time.Now()
	s := &models.Section{
		EntityType:       models.EntityKind(optString(fields, "entity_type")),
		EntityID:         optString(fields, "entity_id"),
		Title:            optString(fields, "title"),
		UsageDescription: optString(fields, "usage_description"),
		Content:          optString(fields, "content"),
		Ordinal:          optInt(fields, "ordinal", 0),
		Tags:             models.NewTagSet(optStringSlice(fields, "tags")),
		CreatedAt:        now,
		ModifiedAt:       now,
	}
	return s
}

func (e *Engine) addSection(ctx context.Context, args Args) (interface{}, error) {
	s := parseSectionFields(args)
	if err := e.Sections.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (e *Engine) bulkCreateSections(ctx context.Context, args Args) (interface{}, error) {
	raw, ok := args["sections"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, apperr.Validation("\"sections\" must be a non-empty array")
	}
	sections := make([]*models.Section, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, apperr.Validation("each entry in \"sections\" must be an object")
		}
		sections = append(sections, parseSectionFields(Args(fields)))
	}
	if err := e.Sections.BulkCreate(ctx, sections); err != nil {
		return nil, err
	}
	return map[string]interface{}{"sections": sections}, nil
}

func (e *Engine) bulkUpdateSectionText(ctx context.Context, args Args) (interface{}, error) {
	raw, ok := args["sections"].([]interface{})
	if !ok {
		if single, err := e.singleSectionUpdate(args); err == nil {
			raw = []interface{}{single}
		} else {
			return nil, apperr.Validation("\"sections\" must be a non-empty array")
		}
	}
	if len(raw) == 0 {
		return nil, apperr.Validation("\"sections\" must be a non-empty array")
	}

	sections := make([]*models.Section, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, apperr.Validation("each entry in \"sections\" must be an object")
		}
		s := parseSectionFields(Args(fields))
		id, err := requireInt64(Args(fields), "id")
		if err != nil {
			return nil, err
		}
		s.ID = id
		s.Version = int64(optInt(Args(fields), "version", 0))
		s.ModifiedAt = time.Now()
		sections = append(sections, s)
	}
	if err := e.Sections.BulkUpdateText(ctx, sections); err != nil {
		return nil, err
	}
	return map[string]interface{}{"sections": sections}, nil
}

// singleSectionUpdate lets update accept either {"sections": [...]} or a
// single flattened section object carrying its own "id".
func (e *Engine) singleSectionUpdate(args Args) (map[string]interface{}, error) {
	if _, ok := args["id"]; !ok {
		return nil, apperr.Validation("no section id")
	}
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out, nil
}

func requireInt64(args Args, key string) (int64, error) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	}
	return 0, apperr.Validation(key + " must be an integer id")
}

func (e *Engine) deleteSection(ctx context.Context, args Args) (interface{}, error) {
	id, err := requireInt64(args, "id")
	if err != nil {
		return nil, err
	}
	if err := e.Sections.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": id, "deleted": true}, nil
}
