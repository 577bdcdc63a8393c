package dispatch

import (
	"context"
	"time"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/models"
)

func entityKindOf(kind config.Kind) models.EntityKind {
	switch kind {
	case config.KindProject:
		return models.KindProject
	case config.KindFeature:
		return models.KindFeature
	case config.KindTask:
		return models.KindTask
	}
	return ""
}

// QueryTemplates implements query_templates: the names of every available
// content-template bundle. Templates are external content the
// engine never generates; this just lists what the filesystem holds.
func (e *Engine) QueryTemplates(ctx context.Context, args Args) (interface{}, error) {
	names, err := e.Templates.List()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"templates": names}, nil
}

// ApplyTemplate implements apply_template: load a named template bundle
// and stamp its sections onto a target container in ordinal order (spec
// §6).
func (e *Engine) ApplyTemplate(ctx context.Context, args Args) (interface{}, error) {
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	kind, err := requireKind(args)
	if err != nil {
		return nil, err
	}
	id, err := requireUUID(args, "id")
	if err != nil {
		return nil, err
	}

	entityKind := entityKindOf(kind)
	if entityKind == "" {
		return nil, apperr.Validation("unreachable kind")
	}

	bundle, err := e.Templates.Load(name)
	if err != nil {
		return nil, apperr.NotFound("template", name)
	}

	now := time.Now()
	sections := make([]*models.Section, 0, len(bundle))
	for i, sec := range bundle {
		sections = append(sections, &models.Section{
			EntityType: entityKind,
			EntityID:   id,
			Title:      sec.Title,
			Content:    sec.Content,
			Ordinal:    i,
			Tags:       models.NewTagSet(nil),
			CreatedAt:  now,
			ModifiedAt: now,
		})
	}

	if err := e.Sections.BulkCreate(ctx, sections); err != nil {
		return nil, err
	}
	return map[string]interface{}{"sections": sections}, nil
}
