// Package transition implements request_transition: the single
// entry point that moves a project, feature or task from one status to
// another. It validates the move (internal/validation), commits it
// atomically alongside its role-transition record, detects and optionally
// applies cascades (internal/cascade), and runs completion cleanup
// (internal/cleanup) when a feature lands on a terminal status.
package transition

import (
	"context"
	"fmt"
	"time"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/cascade"
	"github.com/taskorchestrator/engine/internal/cleanup"
	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/prereq"
	"github.com/taskorchestrator/engine/internal/progression"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/status"
	"github.com/taskorchestrator/engine/internal/validation"
)

// Request is one request_transition call.
type Request struct {
	Kind     config.Kind
	EntityID string
	Trigger  string
	Summary  *string
}

// AppliedCascade records the outcome of applying one cascade.Event via a
// recursive call into Execute. Applied is false when auto_cascade is
// disabled, the depth cap was reached, or the recursive call itself
// failed; FailureReason explains which.
type AppliedCascade struct {
	cascade.Event
	Applied        bool
	FailureReason  string                  `json:"failure_reason,omitempty"`
	ChildCascades  []AppliedCascade        `json:"child_cascades,omitempty"`
	Cleanup        *cleanup.Result         `json:"cleanup,omitempty"`
	UnblockedTasks []cascade.UnblockedTask `json:"unblocked_tasks,omitempty"`
}

// Response is the envelope returned by Execute.
type Response struct {
	Kind         config.Kind
	EntityID     string
	EntityName   string

	PreviousStatus string
	NewStatus      string
	PreviousRole   status.Role
	NewRole        status.Role

	ActiveFlow   string
	FlowSequence []string
	FlowPosition int

	Valid          bool
	Reason         string
	FixSuggestions []string

	CascadeEvents   []cascade.Event
	AppliedCascades []AppliedCascade
	Cleanup         *cleanup.Result
	UnblockedTasks  []cascade.UnblockedTask
}

// Executor wires the repositories, resolvers and supporting packages
// request_transition needs.
type Executor struct {
	DB *repository.DB

	Projects *repository.ProjectRepository
	Features *repository.FeatureRepository
	Tasks    *repository.TaskRepository

	ProjectRoles *status.Resolver
	FeatureRoles *status.Resolver
	TaskRoles    *status.Resolver

	Checker *prereq.Checker
	Cascade *cascade.Detector
	Cleanup *cleanup.Hook

	Config func() *config.Config
	Now    func() time.Time
}

// Execute runs request_transition for a single entity.
func (e *Executor) Execute(ctx context.Context, req Request) (Response, error) {
	return e.execute(ctx, req, 0)
}

func (e *Executor) execute(ctx context.Context, req Request, depth int) (Response, error) {
	cfg := e.Config()
	sp := cfg.Progression(req.Kind)
	roles := e.rolesFor(req.Kind)

	ent, err := e.load(ctx, req.Kind, req.EntityID)
	if err != nil {
		return Response{}, err
	}

	activeFlow, sequence := progression.ActiveFlow(sp, ent.tags)
	targetStatus, err := resolveTarget(req.Trigger, ent.status, sequence)
	if err != nil {
		return Response{}, apperr.Validation(err.Error())
	}

	valCtx := validation.Context{
		Kind:          req.Kind,
		CurrentStatus: ent.status,
		NewStatus:     targetStatus,
		Tags:          ent.tags,
		Roles:         roles,
		Checker:       e.Checker,
		Task:          ent.task,
		Feature:       ent.feature,
		FeatureRoles:  e.FeatureRoles,
	}
	if req.Kind == config.KindProject {
		valCtx.ProjectID = req.EntityID
	}

	result, err := validation.ValidateTransition(ctx, sp, cfg.StatusValidation, valCtx)
	if err != nil {
		return Response{}, err
	}

	previousRole, _ := roles.RoleOf(ent.status)

	if !result.Valid {
		return Response{
			Kind: req.Kind, EntityID: req.EntityID, EntityName: ent.name,
			PreviousStatus: ent.status, NewStatus: ent.status,
			PreviousRole: previousRole, NewRole: previousRole,
			ActiveFlow: activeFlow, FlowSequence: sequence,
			FlowPosition: progression.Position(sequence, ent.status),
			Valid:        false,
			Reason:       result.Reason, FixSuggestions: result.FixSuggestions,
		}, nil
	}

	newRole, _ := roles.RoleOf(targetStatus)
	now := e.now()
	if err := e.commitStatusChange(ctx, req.Kind, req.EntityID, ent.status, targetStatus, previousRole, newRole, req.Trigger, req.Summary, now); err != nil {
		return Response{}, err
	}

	resp := Response{
		Kind: req.Kind, EntityID: req.EntityID, EntityName: ent.name,
		PreviousStatus: ent.status, NewStatus: targetStatus,
		PreviousRole: previousRole, NewRole: newRole,
		ActiveFlow: activeFlow, FlowSequence: sequence,
		FlowPosition: progression.Position(sequence, targetStatus),
		Valid:        true,
	}

	resp.CascadeEvents = e.detectCascades(ctx, req.Kind, req.EntityID, newRole)
	if req.Kind == config.KindTask && newRole == status.RoleTerminal {
		if unblocked, err := e.Cascade.DownstreamUnblocked(ctx, req.EntityID); err == nil {
			resp.UnblockedTasks = unblocked
		}
	}

	if cfg.AutoCascade.Enabled && depth < cfg.EffectiveMaxCascadeDepth() {
		resp.AppliedCascades = e.applyCascades(ctx, resp.CascadeEvents, depth+1)
	} else {
		for _, event := range resp.CascadeEvents {
			reason := "auto_cascade is disabled"
			if cfg.AutoCascade.Enabled {
				reason = "cascade depth cap reached"
			}
			resp.AppliedCascades = append(resp.AppliedCascades, AppliedCascade{Event: event, Applied: false, FailureReason: reason})
		}
	}

	if req.Kind == config.KindFeature && newRole == status.RoleTerminal {
		cleanupResult, err := e.Cleanup.Run(ctx, cfg.CompletionCleanup, req.EntityID)
		if err == nil {
			resp.Cleanup = &cleanupResult
		}
	}

	return resp, nil
}

func (e *Executor) applyCascades(ctx context.Context, events []cascade.Event, depth int) []AppliedCascade {
	var out []AppliedCascade
	for _, event := range events {
		summary := autoCascadeSummary
		child, err := e.execute(ctx, Request{
			Kind: event.TargetType, EntityID: event.TargetID,
			Trigger: TriggerComplete, Summary: &summary,
		}, depth)
		if err != nil {
			out = append(out, AppliedCascade{Event: event, Applied: false, FailureReason: err.Error()})
			continue
		}
		if !child.Valid {
			out = append(out, AppliedCascade{Event: event, Applied: false, FailureReason: child.Reason})
			continue
		}
		out = append(out, AppliedCascade{
			Event: event, Applied: true,
			ChildCascades:  child.AppliedCascades,
			Cleanup:        child.Cleanup,
			UnblockedTasks: child.UnblockedTasks,
		})
	}
	return out
}

func (e *Executor) detectCascades(ctx context.Context, kind config.Kind, id string, newRole status.Role) []cascade.Event {
	events, err := e.Cascade.ParentAdvancement(ctx, kind, id, newRole)
	if err != nil {
		return nil
	}
	return events
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Executor) rolesFor(kind config.Kind) *status.Resolver {
	switch kind {
	case config.KindTask:
		return e.TaskRoles
	case config.KindFeature:
		return e.FeatureRoles
	case config.KindProject:
		return e.ProjectRoles
	}
	return nil
}

// entity is the kind-agnostic view Execute needs of whichever row it
// loaded, carrying the kind-specific pointer validation.Context wants for
// prerequisite checks.
type entity struct {
	status string
	tags   []string
	name   string

	task    *models.Task
	feature *models.Feature
}

func (e *Executor) load(ctx context.Context, kind config.Kind, id string) (entity, error) {
	switch kind {
	case config.KindTask:
		t, err := e.Tasks.GetByID(ctx, id)
		if err != nil {
			return entity{}, err
		}
		return entity{status: t.Status, tags: t.Tags.Slice(), name: t.Title, task: t}, nil
	case config.KindFeature:
		f, err := e.Features.GetByID(ctx, id)
		if err != nil {
			return entity{}, err
		}
		return entity{status: f.Status, tags: f.Tags.Slice(), name: f.Name, feature: f}, nil
	case config.KindProject:
		p, err := e.Projects.GetByID(ctx, id)
		if err != nil {
			return entity{}, err
		}
		return entity{status: p.Status, tags: p.Tags.Slice(), name: p.Name}, nil
	default:
		return entity{}, fmt.Errorf("unrecognized entity kind %q", kind)
	}
}

func tableFor(kind config.Kind) string {
	switch kind {
	case config.KindTask:
		return "tasks"
	case config.KindFeature:
		return "features"
	case config.KindProject:
		return "projects"
	default:
		return ""
	}
}

func entityKindFor(kind config.Kind) models.EntityKind {
	switch kind {
	case config.KindTask:
		return models.KindTask
	case config.KindFeature:
		return models.KindFeature
	case config.KindProject:
		return models.KindProject
	default:
		return ""
	}
}

// commitStatusChange performs the status update in a single transaction: the
// status/modified_at update, and - iff the resolved role changed - the
// append-only role_transitions record.
func (e *Executor) commitStatusChange(ctx context.Context, kind config.Kind, id, previousStatus, newStatus string, previousRole, newRole status.Role, trigger string, summary *string, now time.Time) error {
	table := tableFor(kind)
	tx, err := e.DB.Begin(ctx)
	if err != nil {
		return apperr.Database(fmt.Errorf("begin transition: %w", err))
	}
	defer tx.Rollback()

	result, err := tx.Exec(ctx, `UPDATE `+table+` SET status = ?, modified_at = ? WHERE id = ?`, newStatus, now, id) //nolint:gosec // table is one of a fixed internal list, never user input
	if err != nil {
		return apperr.Database(fmt.Errorf("update %s status: %w", table, err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if rows == 0 {
		return apperr.NotFound(string(kind), id)
	}

	if previousRole != newRole {
		var triggerPtr *string
		if trigger != "" {
			triggerPtr = &trigger
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO role_transitions (entity_id, entity_type, from_role, to_role, from_status, to_status, transitioned_at, trigger, summary)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, entityKindFor(kind), string(previousRole), string(newRole), previousStatus, newStatus, now, triggerPtr, summary)
		if err != nil {
			return apperr.Database(fmt.Errorf("record role transition: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Database(fmt.Errorf("commit transition: %w", err))
	}
	return nil
}
