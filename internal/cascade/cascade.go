// Package cascade implements the cascade detector: parent auto-advancement
// when every child reaches a terminal role, and downstream-unblocking
// detection along outgoing blocking edges. It is built against the
// repository's child-count analytics methods.
package cascade

import (
	"context"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/graph"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/status"
)

// Event describes one parent that should auto-advance because every
// direct child has reached a terminal role.
type Event struct {
	TargetType     config.Kind
	TargetID       string
	TargetName     string
	PreviousStatus string
	NewStatus      string
	Reason         string
}

// UnblockedTask names a task whose blocking dependencies are now all
// satisfied.
type UnblockedTask struct {
	TaskID string
	Title  string
}

// Detector computes cascade events and newly-unblocked tasks. It never
// mutates state; internal/transition applies what it reports.
type Detector struct {
	Projects     *repository.ProjectRepository
	Features     *repository.FeatureRepository
	Tasks        *repository.TaskRepository
	Dependencies *repository.DependencyRepository
	Graph        *graph.Engine
	FeatureRoles *status.Resolver
	ProjectRoles *status.Resolver
	TaskRoles    *status.Resolver
}

// NewDetector wires the repositories and role resolvers cascade detection
// needs.
func NewDetector(
	projects *repository.ProjectRepository,
	features *repository.FeatureRepository,
	tasks *repository.TaskRepository,
	deps *repository.DependencyRepository,
	g *graph.Engine,
	featureRoles, projectRoles, taskRoles *status.Resolver,
) *Detector {
	return &Detector{
		Projects: projects, Features: features, Tasks: tasks, Dependencies: deps, Graph: g,
		FeatureRoles: featureRoles, ProjectRoles: projectRoles, TaskRoles: taskRoles,
	}
}

// ParentAdvancement computes the closest-parent-first chain of auto-
// advancement events triggered by a task or feature that just reached
// role terminal, hard-capped at config.HardCascadeDepthCap regardless of
// configuration.
//
// entityKind/entityID identify the entity that just transitioned;
// newRole is its new role. Nothing is returned unless newRole is
// terminal.
func (d *Detector) ParentAdvancement(ctx context.Context, entityKind config.Kind, entityID string, newRole status.Role) ([]Event, error) {
	if newRole != status.RoleTerminal {
		return nil, nil
	}

	switch entityKind {
	case config.KindTask:
		task, err := d.Tasks.GetByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		if task.Standalone() {
			return nil, nil
		}
		return d.advanceFeature(ctx, *task.FeatureID, 1)
	case config.KindFeature:
		feature, err := d.Features.GetByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		if feature.Standalone() {
			return nil, nil
		}
		return d.advanceProject(ctx, *feature.ProjectID, 1, nil)
	}
	return nil, nil
}

func (d *Detector) advanceFeature(ctx context.Context, featureID string, depth int) ([]Event, error) {
	if depth > config.HardCascadeDepthCap {
		return nil, nil
	}
	feature, err := d.Features.GetByID(ctx, featureID)
	if err != nil {
		// Fail-closed: a missing parent emits no cascade.
		return nil, nil
	}
	allTerminal, err := d.allChildrenTerminal(ctx, d.Tasks, featureID, d.TaskRoles, func(ctx context.Context, id string) (map[string]int, error) {
		return d.Features.CountChildTasksByStatus(ctx, id)
	})
	if err != nil || !allTerminal {
		return nil, nil
	}

	currentRole, _ := d.FeatureRoles.RoleOf(feature.Status)
	if currentRole == status.RoleTerminal {
		return nil, nil
	}

	completedStatus := completedStatusFor(config.KindFeature)
	event := Event{
		TargetType:     config.KindFeature,
		TargetID:       feature.ID,
		TargetName:     feature.Name,
		PreviousStatus: feature.Status,
		NewStatus:      completedStatus,
		Reason:         "all children terminal",
	}

	rest := []Event{event}
	if feature.Standalone() {
		return rest, nil
	}
	parentEvents, err := d.advanceProject(ctx, *feature.ProjectID, depth+1, &event)
	if err != nil {
		return rest, nil
	}
	return append(rest, parentEvents...), nil
}

// advanceProject checks projectID's child features. advanced, when not nil,
// is the event of a child feature earlier in the same chain: that feature is
// still stored at its previous status, so it is counted at its new one.
func (d *Detector) advanceProject(ctx context.Context, projectID string, depth int, advanced *Event) ([]Event, error) {
	if depth > config.HardCascadeDepthCap {
		return nil, nil
	}
	project, err := d.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil
	}
	counts, err := d.Projects.CountChildFeaturesByStatus(ctx, projectID)
	if err != nil || len(counts) == 0 {
		return nil, nil
	}
	if advanced != nil && counts[advanced.PreviousStatus] > 0 {
		counts[advanced.PreviousStatus]--
		counts[advanced.NewStatus]++
	}
	if !allCountsTerminal(counts, d.FeatureRoles) {
		return nil, nil
	}

	currentRole, _ := d.ProjectRoles.RoleOf(project.Status)
	if currentRole == status.RoleTerminal {
		return nil, nil
	}

	event := Event{
		TargetType:     config.KindProject,
		TargetID:       project.ID,
		TargetName:     project.Name,
		PreviousStatus: project.Status,
		NewStatus:      completedStatusFor(config.KindProject),
		Reason:         "all children terminal",
	}
	return []Event{event}, nil
}

// allChildrenTerminal checks the feature's direct child tasks.
func (d *Detector) allChildrenTerminal(ctx context.Context, tasks *repository.TaskRepository, featureID string, taskRoles *status.Resolver, countFn func(context.Context, string) (map[string]int, error)) (bool, error) {
	counts, err := countFn(ctx, featureID)
	if err != nil {
		// Fail-closed: no rows / error means no cascade.
		return false, err
	}
	if len(counts) == 0 {
		return false, nil
	}
	return allCountsTerminal(counts, taskRoles), nil
}

func allCountsTerminal(counts map[string]int, roles *status.Resolver) bool {
	for statusLabel, count := range counts {
		if count == 0 {
			continue
		}
		role, ok := roles.RoleOf(statusLabel)
		if !ok || role != status.RoleTerminal {
			return false
		}
	}
	return true
}

func completedStatusFor(_ config.Kind) string {
	return "completed"
}

// DownstreamUnblocked inspects every outgoing blocking edge from taskID
// (the task that just transitioned, now the blocker) and reports which
// blocked tasks have become newly eligible, i.e. every one of their
// incoming blocking edges is now satisfied. RELATES_TO edges are never
// considered.
func (d *Detector) DownstreamUnblocked(ctx context.Context, taskID string) ([]UnblockedTask, error) {
	edges, err := d.Dependencies.FindByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []UnblockedTask
	for _, edge := range edges {
		if !edge.Type.Blocking() {
			continue
		}
		blocker, blocked := edge.BlockerAndBlocked()
		if blocker != taskID || seen[blocked] {
			continue
		}
		seen[blocked] = true

		eligible, _, err := d.Graph.IsEligible(ctx, blocked, d.blockerRole)
		if err != nil {
			// Fail-closed: missing/erroring blocker data is treated as
			// still blocking.
			continue
		}
		if !eligible {
			continue
		}
		blockedTask, err := d.Tasks.GetByID(ctx, blocked)
		if err != nil {
			continue
		}
		out = append(out, UnblockedTask{TaskID: blockedTask.ID, Title: blockedTask.Title})
	}
	return out, nil
}

func (d *Detector) blockerRole(ctx context.Context, taskID string) (status.Role, error) {
	t, err := d.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	role, ok := d.TaskRoles.RoleOf(t.Status)
	if !ok {
		return status.RoleQueue, nil // fail-closed: unknown role never satisfies a threshold
	}
	return role, nil
}
