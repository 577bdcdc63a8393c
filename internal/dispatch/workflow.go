package dispatch

import (
	"context"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/progression"
	"github.com/taskorchestrator/engine/internal/status"
	"github.com/taskorchestrator/engine/internal/transition"
)

// entityState is the minimal shape GetNextStatus needs regardless of kind:
// its current status, tag set, and a prerequisite check closure already
// bound to the right id and kind.
type entityState struct {
	status string
	tags   []string
	check  progression.PrerequisiteCheck
}

func (e *Engine) loadEntityState(ctx context.Context, kind config.Kind, id string) (entityState, error) {
	switch kind {
	case config.KindProject:
		p, err := e.Projects.GetByID(ctx, id)
		if err != nil {
			return entityState{}, err
		}
		return entityState{
			status: p.Status,
			tags:   p.Tags.Slice(),
			check: func(ctx context.Context, nextStatus string, nextRole status.Role) (bool, []string, error) {
				if nextStatus != "completed" {
					return true, nil, nil
				}
				return e.Checker.ProjectCompleted(ctx, id, e.FeatureRoles)
			},
		}, nil
	case config.KindFeature:
		f, err := e.Features.GetByID(ctx, id)
		if err != nil {
			return entityState{}, err
		}
		return entityState{
			status: f.Status,
			tags:   f.Tags.Slice(),
			check: func(ctx context.Context, nextStatus string, nextRole status.Role) (bool, []string, error) {
				if nextRole == status.RoleWork {
					return e.Checker.FeatureWork(ctx, id)
				}
				if nextRole == status.RoleReview {
					return e.Checker.FeatureReview(ctx, id)
				}
				if nextStatus == "completed" {
					return e.Checker.FeatureCompleted(ctx, f)
				}
				return true, nil, nil
			},
		}, nil
	case config.KindTask:
		t, err := e.Tasks.GetByID(ctx, id)
		if err != nil {
			return entityState{}, err
		}
		return entityState{
			status: t.Status,
			tags:   t.Tags.Slice(),
			check: func(ctx context.Context, nextStatus string, nextRole status.Role) (bool, []string, error) {
				if nextRole == status.RoleWork {
					return e.Checker.TaskWork(ctx, id)
				}
				if nextStatus == "completed" {
					ok, reasons := e.Checker.TaskCompleted(t)
					return ok, reasons, nil
				}
				return true, nil, nil
			},
		}, nil
	}
	return entityState{}, apperr.Validation("unreachable kind")
}

// GetNextStatus implements get_next_status: the recommended next status for
// a container, honoring active-flow tag resolution and the same
// prerequisite checks request_transition enforces.
func (e *Engine) GetNextStatus(ctx context.Context, args Args) (interface{}, error) {
	kind, err := requireKind(args)
	if err != nil {
		return nil, err
	}
	id, err := requireUUID(args, "id")
	if err != nil {
		return nil, err
	}

	state, err := e.loadEntityState(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	sp := e.progressionFor(kind)
	result, err := progression.NextStatus(ctx, sp, e.rolesFor(kind), state.status, state.tags, state.check)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transitionResult is one entry of a batch request_transition response: the
// executor's Response on success, or Error describing why that entry failed.
// A failed entry never aborts the entries around it.
type transitionResult struct {
	transition.Response
	Error *errorPayload `json:"error,omitempty"`
}

// RequestTransition implements request_transition: a single request or a
// batch of them. Batch entries are processed in input order, each
// independently - one entry's failure is captured in its own result and
// does not stop the rest of the batch from running.
func (e *Engine) RequestTransition(ctx context.Context, args Args) (interface{}, error) {
	if raw, ok := args["transitions"].([]interface{}); ok {
		results := make([]transitionResult, 0, len(raw))
		for _, item := range raw {
			fields, ok := item.(map[string]interface{})
			if !ok {
				results = append(results, transitionResult{
					Error: &errorPayload{Code: string(apperr.CodeValidation), Details: "each entry in \"transitions\" must be an object"},
				})
				continue
			}
			resp, err := e.requestOneTransition(ctx, Args(fields))
			if err != nil {
				results = append(results, transitionResult{
					Error: &errorPayload{Code: string(apperr.CodeOf(err)), Details: err.Error()},
				})
				continue
			}
			results = append(results, transitionResult{Response: resp})
		}
		return map[string]interface{}{"transitions": results}, nil
	}
	return e.requestOneTransition(ctx, args)
}

func (e *Engine) requestOneTransition(ctx context.Context, args Args) (transition.Response, error) {
	kind, err := requireKind(args)
	if err != nil {
		return transition.Response{}, err
	}
	id, err := requireUUID(args, "id")
	if err != nil {
		return transition.Response{}, err
	}
	trigger, err := requireString(args, "trigger")
	if err != nil {
		return transition.Response{}, err
	}

	req := transition.Request{Kind: kind, EntityID: id, Trigger: trigger}
	if summary := optString(args, "summary"); summary != "" {
		req.Summary = &summary
	}
	return e.Transitions.Execute(ctx, req)
}

// QueryRoleTransitions implements query_role_transitions: the audit log
// for one entity, newest first.
func (e *Engine) QueryRoleTransitions(ctx context.Context, args Args) (interface{}, error) {
	id, err := requireUUID(args, "id")
	if err != nil {
		return nil, err
	}
	history, err := e.RoleLog.FindByEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit := optInt(args, "limit", 0); limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	return map[string]interface{}{"transitions": history}, nil
}
