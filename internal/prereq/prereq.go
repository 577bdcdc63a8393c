// Package prereq implements the repository-backed prerequisite checks
// It is kept separate from internal/validation
// and internal/progression so both can depend on it without creating an
// import cycle between them.
package prereq

import (
	"context"
	"fmt"

	"github.com/taskorchestrator/engine/internal/graph"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/status"
)

// Checker evaluates the prerequisite checks that gate a status
// transition's target role.
type Checker struct {
	Tasks     *repository.TaskRepository
	Features  *repository.FeatureRepository
	Graph     *graph.Engine
	TaskRoles *status.Resolver
}

// NewChecker wraps the repositories and graph engine a Checker needs.
func NewChecker(tasks *repository.TaskRepository, features *repository.FeatureRepository, g *graph.Engine, taskRoles *status.Resolver) *Checker {
	return &Checker{Tasks: tasks, Features: features, Graph: g, TaskRoles: taskRoles}
}

func (c *Checker) blockerRole(ctx context.Context, taskID string) (status.Role, error) {
	t, err := c.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	role, ok := c.TaskRoles.RoleOf(t.Status)
	if !ok {
		return "", fmt.Errorf("no role configured for task status %q", t.Status)
	}
	return role, nil
}

// TaskWork checks the "Task -> any status in role work" prerequisite:
// every incoming blocking edge's blocker must satisfy its effective
// unblock_at threshold.
func (c *Checker) TaskWork(ctx context.Context, taskID string) (ok bool, reasons []string, err error) {
	eligible, outstanding, err := c.Graph.IsEligible(ctx, taskID, c.blockerRole)
	if err != nil {
		return false, nil, err
	}
	if eligible {
		return true, nil, nil
	}
	for _, b := range outstanding {
		reasons = append(reasons, fmt.Sprintf("blocked by task %s (requires role %s)", b.BlockerID, effectiveThreshold(b)))
	}
	return false, reasons, nil
}

func effectiveThreshold(b graph.Blocker) string {
	if b.Edge.UnblockAt != nil {
		return *b.Edge.UnblockAt
	}
	return string(status.RoleTerminal)
}

// TaskCompleted checks the "Task -> completed" prerequisite: summary must
// be 300-500 characters.
func (c *Checker) TaskCompleted(t *models.Task) (ok bool, reasons []string) {
	if !t.SummaryLenOK() {
		return false, []string{fmt.Sprintf("Populate summary to %d-%d chars via update", models.MinSummaryLen, models.MaxSummaryLen)}
	}
	return true, nil
}

// FeatureWork checks the "Feature -> any status in role work" prerequisite:
// the feature must have at least one child task.
func (c *Checker) FeatureWork(ctx context.Context, featureID string) (ok bool, reasons []string, err error) {
	tasks, err := c.Tasks.FindByParent(ctx, featureID)
	if err != nil {
		return false, nil, err
	}
	if len(tasks) == 0 {
		return false, []string{"feature must have at least one child task"}, nil
	}
	return true, nil, nil
}

// FeatureReview checks the "Feature -> any status in role review"
// prerequisite: every child task must be in role terminal.
func (c *Checker) FeatureReview(ctx context.Context, featureID string) (ok bool, reasons []string, err error) {
	tasks, err := c.Tasks.FindByParent(ctx, featureID)
	if err != nil {
		return false, nil, err
	}
	for _, t := range tasks {
		role, known := c.TaskRoles.RoleOf(t.Status)
		if !known || role != status.RoleTerminal {
			reasons = append(reasons, fmt.Sprintf("task %s has not reached terminal role (status %s)", t.ID, t.Status))
		}
	}
	return len(reasons) == 0, reasons, nil
}

// FeatureCompleted checks the "Feature -> completed" prerequisite: every
// child task must be terminal, and if RequiresVerification is set, at
// least one child task must have passed through role review.
func (c *Checker) FeatureCompleted(ctx context.Context, f *models.Feature) (ok bool, reasons []string, err error) {
	ok, reasons, err = c.FeatureReview(ctx, f.ID)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, reasons, nil
	}
	if f.RequiresVerification {
		reviewed, err := c.Features.HasReviewedChild(ctx, f.ID, string(status.RoleReview))
		if err != nil {
			return false, nil, err
		}
		if !reviewed {
			return false, []string{"requires_verification is set; at least one child task must have passed through role review"}, nil
		}
	}
	return true, nil, nil
}

// ProjectCompleted checks the "Project -> completed" prerequisite: every
// child feature must be in role terminal.
func (c *Checker) ProjectCompleted(ctx context.Context, projectID string, featureRoles *status.Resolver) (ok bool, reasons []string, err error) {
	features, err := c.Features.FindByParent(ctx, projectID)
	if err != nil {
		return false, nil, err
	}
	for _, f := range features {
		role, known := featureRoles.RoleOf(f.Status)
		if !known || role != status.RoleTerminal {
			reasons = append(reasons, fmt.Sprintf("feature %s has not reached terminal role (status %s)", f.ID, f.Status))
		}
	}
	return len(reasons) == 0, reasons, nil
}
