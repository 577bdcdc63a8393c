// Package validation implements the status validator: a fail-fast,
// six-step check run before any status is committed. Each step is
// config-driven rather than dispatched through per-kind code paths.
package validation

import (
	"context"
	"fmt"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/prereq"
	"github.com/taskorchestrator/engine/internal/progression"
	"github.com/taskorchestrator/engine/internal/status"
)

// Context carries everything ValidateTransition needs for one call. The
// repository-backed fields (Checker, Task, Feature, ProjectID,
// FeatureRoles) are optional: a nil Checker skips step 6 entirely, since
// prerequisite checking only runs when validate_prerequisites is enabled
// and a repository context is supplied.
type Context struct {
	Kind          config.Kind
	CurrentStatus string
	NewStatus     string
	Tags          []string
	Roles         *status.Resolver

	Checker      *prereq.Checker
	Task         *models.Task
	Feature      *models.Feature
	ProjectID    string
	FeatureRoles *status.Resolver
}

// ValidateTransition runs the six ordered, fail-fast checks
// against sp (the entity kind's status progression) and sv (the global
// validation toggles).
func ValidateTransition(ctx context.Context, sp config.StatusProgression, sv config.StatusValidation, c Context) (Result, error) {
	// Step 1: known status.
	if !contains(sp.AllowedStatuses, c.NewStatus) {
		return Invalid(fmt.Sprintf("invalid status: %q is not one of %v", c.NewStatus, sp.AllowedStatuses)), nil
	}

	// Step 2: terminal lock.
	if contains(sp.TerminalStatuses, c.CurrentStatus) && c.NewStatus != c.CurrentStatus {
		return Invalid("cannot transition from terminal status"), nil
	}

	_, sequence := progression.ActiveFlow(sp, c.Tags)
	curPos := progression.Position(sequence, c.CurrentStatus)
	newPos := progression.Position(sequence, c.NewStatus)

	isSequentialSuccessor := curPos != -1 && newPos == curPos+1
	// Step 5: emergency rule - legal from any non-terminal status iff
	// allow_emergency is true (terminal already rejected in step 2).
	isEmergency := sv.AllowEmergency && contains(sp.EmergencyTransitions, c.NewStatus)
	// Step 4: backward rule - legal iff allow_backward is true.
	isBackward := sv.AllowBackward && curPos != -1 && newPos != -1 && newPos < curPos

	// Step 3: flow membership / sequential rule. Only constrains movement
	// when enforce_sequential is on; otherwise any status that survived
	// steps 1-2 is accepted here.
	if sv.EnforceSequential && !isSequentialSuccessor && !isEmergency && !isBackward {
		next, hasNext := progression.Successor(sequence, c.CurrentStatus)
		if hasNext {
			return Invalid(fmt.Sprintf("Cannot skip statuses. Must transition through: %s", next),
				fmt.Sprintf("Transition to %q first", next)), nil
		}
		return Invalid(fmt.Sprintf("%q has no successor in the active flow", c.CurrentStatus)), nil
	}

	// Step 6: prerequisites.
	if sv.ValidatePrerequisites && c.Checker != nil {
		return c.checkPrerequisites(ctx)
	}

	return Ok(), nil
}

func (c Context) checkPrerequisites(ctx context.Context) (Result, error) {
	newRole, _ := c.Roles.RoleOf(c.NewStatus)

	switch c.Kind {
	case config.KindTask:
		if newRole == status.RoleWork {
			ok, reasons, err := c.Checker.TaskWork(ctx, c.Task.ID)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Invalid("task has unsatisfied blocking dependencies", reasons...), nil
			}
		}
		if c.NewStatus == "completed" {
			ok, reasons := c.Checker.TaskCompleted(c.Task)
			if !ok {
				return Invalid("task summary does not satisfy the completion prerequisite", reasons...), nil
			}
		}
	case config.KindFeature:
		if newRole == status.RoleWork {
			ok, reasons, err := c.Checker.FeatureWork(ctx, c.Feature.ID)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Invalid("feature does not satisfy the work prerequisite", reasons...), nil
			}
		}
		if newRole == status.RoleReview {
			ok, reasons, err := c.Checker.FeatureReview(ctx, c.Feature.ID)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Invalid("feature has child tasks outside role terminal", reasons...), nil
			}
		}
		if c.NewStatus == "completed" {
			ok, reasons, err := c.Checker.FeatureCompleted(ctx, c.Feature)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Invalid("feature does not satisfy the completion prerequisite", reasons...), nil
			}
		}
	case config.KindProject:
		if c.NewStatus == "completed" {
			ok, reasons, err := c.Checker.ProjectCompleted(ctx, c.ProjectID, c.FeatureRoles)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Invalid("project has child features outside role terminal", reasons...), nil
			}
		}
	}
	return Ok(), nil
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
