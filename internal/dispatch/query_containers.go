package dispatch

import (
	"context"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/repository"
)

// QueryContainer implements query_container: get/overview/search/export
// for project|feature|task. overview is the token-efficient
// shape - minimal fields plus taskCounts.byStatus - meant for agents that
// don't need section content on every read.
func (e *Engine) QueryContainer(ctx context.Context, args Args) (interface{}, error) {
	kind, err := requireKind(args)
	if err != nil {
		return nil, err
	}
	operation, err := requireEnum(args, "operation", "get", "overview", "search", "export")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "get":
		id, err := requireUUID(args, "id")
		if err != nil {
			return nil, err
		}
		return e.getContainer(ctx, kind, id, true)
	case "export":
		id, err := requireUUID(args, "id")
		if err != nil {
			return nil, err
		}
		return e.getContainer(ctx, kind, id, true)
	case "overview":
		if id, ok := args["id"].(string); ok && id != "" {
			return e.overviewOne(ctx, kind, id)
		}
		return e.searchContainers(ctx, kind, args)
	case "search":
		return e.searchContainers(ctx, kind, args)
	}
	return nil, apperr.Validation("unreachable operation")
}

type containerEnvelope struct {
	Container interface{}       `json:"container"`
	Sections  []*models.Section `json:"sections,omitempty"`
}

func (e *Engine) getContainer(ctx context.Context, kind config.Kind, id string, withSections bool) (interface{}, error) {
	var container interface{}
	var entityKind models.EntityKind
	switch kind {
	case config.KindProject:
		p, err := e.Projects.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		container, entityKind = p, models.KindProject
	case config.KindFeature:
		f, err := e.Features.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		container, entityKind = f, models.KindFeature
	case config.KindTask:
		t, err := e.Tasks.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		container, entityKind = t, models.KindTask
	}

	env := containerEnvelope{Container: container}
	if withSections {
		sections, err := e.Sections.FindByParent(ctx, entityKind, id)
		if err != nil {
			return nil, err
		}
		env.Sections = sections
	}
	return env, nil
}

type overviewResult struct {
	Container interface{}    `json:"container"`
	TaskCounts map[string]int `json:"task_counts,omitempty"`
}

func (e *Engine) overviewOne(ctx context.Context, kind config.Kind, id string) (interface{}, error) {
	switch kind {
	case config.KindProject:
		p, err := e.Projects.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		counts, err := e.Projects.CountChildFeaturesByStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		return overviewResult{Container: p, TaskCounts: counts}, nil
	case config.KindFeature:
		f, err := e.Features.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		counts, err := e.Features.CountChildTasksByStatus(ctx, id)
		if err != nil {
			return nil, err
		}
		return overviewResult{Container: f, TaskCounts: counts}, nil
	case config.KindTask:
		t, err := e.Tasks.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return overviewResult{Container: t}, nil
	}
	return nil, apperr.Validation("unreachable kind")
}

// searchContainers lists containers of kind matching the filter arguments
// (status, tags, parent id).
func (e *Engine) searchContainers(ctx context.Context, kind config.Kind, args Args) (interface{}, error) {
	status := optString(args, "status")
	tags := optStringSlice(args, "tags")

	switch kind {
	case config.KindProject:
		list, err := e.Projects.List(ctx, repository.ProjectFilter{Status: status, Tags: tags})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"projects": list}, nil
	case config.KindFeature:
		filter := repository.FeatureFilter{Status: status, Tags: tags}
		if id, ok := args["project_id"].(string); ok && id != "" {
			filter.ProjectID = &id
		}
		list, err := e.Features.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"features": list}, nil
	case config.KindTask:
		filter := repository.TaskFilter{Status: status, Tags: tags, Priority: optString(args, "priority")}
		if id, ok := args["feature_id"].(string); ok && id != "" {
			filter.FeatureID = &id
		}
		list, err := e.Tasks.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"tasks": list}, nil
	}
	return nil, apperr.Validation("unreachable kind")
}
