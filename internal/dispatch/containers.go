package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/models"
)

// ManageContainer implements manage_container: create/update/delete for
// project|feature|task, operating on a batch of containers in one call
// Status changes via update are accepted but never trigger
// cascade detection - request_transition is the only path that does.
func (e *Engine) ManageContainer(ctx context.Context, args Args) (interface{}, error) {
	kind, err := requireKind(args)
	if err != nil {
		return nil, err
	}
	operation, err := requireEnum(args, "operation", "create", "update", "delete")
	if err != nil {
		return nil, err
	}

	raw, ok := args["containers"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, apperr.Validation("\"containers\" must be a non-empty array")
	}

	results := make([]interface{}, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, apperr.Validation("each entry in \"containers\" must be an object")
		}
		var result interface{}
		var err error
		switch operation {
		case "create":
			result, err = e.createContainer(ctx, kind, Args(fields))
		case "update":
			result, err = e.updateContainer(ctx, kind, Args(fields))
		case "delete":
			result, err = e.deleteContainer(ctx, kind, Args(fields))
		}
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return map[string]interface{}{"containers": results}, nil
}

func (e *Engine) createContainer(ctx context.Context, kind config.Kind, fields Args) (interface{}, error) {
	now := time.Now()
	switch kind {
	case config.KindProject:
		p := &models.Project{
			Name:       optString(fields, "name"),
			Summary:    optString(fields, "summary"),
			Status:     firstStatus(e.progressionFor(kind)),
			Priority:   models.Priority(optString(fields, "priority")),
			Tags:       models.NewTagSet(optStringSlice(fields, "tags")),
			CreatedAt:  now,
			ModifiedAt: now,
		}
		if err := e.Projects.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	case config.KindFeature:
		f := &models.Feature{
			Name:                 optString(fields, "name"),
			Summary:              optString(fields, "summary"),
			Status:               firstStatus(e.progressionFor(kind)),
			Priority:             models.Priority(optString(fields, "priority")),
			RequiresVerification: optBool(fields, "requires_verification"),
			Tags:                 models.NewTagSet(optStringSlice(fields, "tags")),
			CreatedAt:            now,
			ModifiedAt:           now,
		}
		if id, ok := fields["project_id"].(string); ok && id != "" {
			f.ProjectID = &id
		}
		if err := e.Features.Create(ctx, f); err != nil {
			return nil, err
		}
		return f, nil
	case config.KindTask:
		t := &models.Task{
			Title:       optString(fields, "title"),
			Description: optString(fields, "description"),
			Status:      firstStatus(e.progressionFor(kind)),
			Priority:    models.Priority(optString(fields, "priority")),
			Complexity:  optInt(fields, "complexity", 0),
			Tags:        models.NewTagSet(optStringSlice(fields, "tags")),
			CreatedAt:   now,
			ModifiedAt:  now,
		}
		if id, ok := fields["feature_id"].(string); ok && id != "" {
			t.FeatureID = &id
		}
		if err := e.Tasks.Create(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unreachable kind %q", kind)
}

func firstStatus(sp config.StatusProgression) string {
	if len(sp.DefaultFlow) == 0 {
		return ""
	}
	return sp.DefaultFlow[0]
}

func (e *Engine) updateContainer(ctx context.Context, kind config.Kind, fields Args) (interface{}, error) {
	id, err := requireUUID(fields, "id")
	if err != nil {
		return nil, err
	}
	now := time.Now()

	switch kind {
	case config.KindProject:
		p, err := e.Projects.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		applyIfSet(fields, "name", &p.Name)
		applyIfSet(fields, "summary", &p.Summary)
		applyIfSet(fields, "status", &p.Status)
		if v, ok := fields["priority"].(string); ok {
			p.Priority = models.Priority(v)
		}
		if tags := optStringSlice(fields, "tags"); tags != nil {
			p.Tags = models.NewTagSet(tags)
		}
		p.Touch(now)
		if err := e.Projects.Update(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	case config.KindFeature:
		f, err := e.Features.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		applyIfSet(fields, "name", &f.Name)
		applyIfSet(fields, "summary", &f.Summary)
		applyIfSet(fields, "status", &f.Status)
		if v, ok := fields["priority"].(string); ok {
			f.Priority = models.Priority(v)
		}
		if v, ok := fields["requires_verification"]; ok {
			f.RequiresVerification, _ = v.(bool)
		}
		if tags := optStringSlice(fields, "tags"); tags != nil {
			f.Tags = models.NewTagSet(tags)
		}
		f.Touch(now)
		if err := e.Features.Update(ctx, f); err != nil {
			return nil, err
		}
		return f, nil
	case config.KindTask:
		t, err := e.Tasks.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		applyIfSet(fields, "title", &t.Title)
		applyIfSet(fields, "description", &t.Description)
		applyIfSet(fields, "summary", &t.Summary)
		applyIfSet(fields, "status", &t.Status)
		if v, ok := fields["priority"].(string); ok {
			t.Priority = models.Priority(v)
		}
		if v, ok := fields["complexity"]; ok {
			t.Complexity = optInt(Args{"complexity": v}, "complexity", t.Complexity)
		}
		if tags := optStringSlice(fields, "tags"); tags != nil {
			t.Tags = models.NewTagSet(tags)
		}
		t.Touch(now)
		if err := e.Tasks.Update(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unreachable kind %q", kind)
}

func applyIfSet(fields Args, key string, dst *string) {
	if v, ok := fields[key].(string); ok {
		*dst = v
	}
}

func (e *Engine) deleteContainer(ctx context.Context, kind config.Kind, fields Args) (interface{}, error) {
	id, err := requireUUID(fields, "id")
	if err != nil {
		return nil, err
	}
	switch kind {
	case config.KindProject:
		if err := e.Projects.Delete(ctx, id); err != nil {
			return nil, err
		}
	case config.KindFeature:
		if err := e.Features.Delete(ctx, id); err != nil {
			return nil, err
		}
	case config.KindTask:
		if err := e.Tasks.Delete(ctx, id); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{"id": id, "deleted": true}, nil
}
