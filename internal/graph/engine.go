package graph

import (
	"context"
	"fmt"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/models"
	"github.com/taskorchestrator/engine/internal/repository"
	"github.com/taskorchestrator/engine/internal/status"
)

// Engine is the dependency graph engine: it validates new edges against
// the full set of blocking edges currently stored, and resolves which
// blockers still gate a task's readiness.
type Engine struct {
	deps *repository.DependencyRepository
}

// NewEngine wraps a DependencyRepository.
func NewEngine(deps *repository.DependencyRepository) *Engine {
	return &Engine{deps: deps}
}

// buildDetector loads every BLOCKS/IS_BLOCKED_BY edge and normalizes each
// to a (blocker, blocked) pair in the in-memory graph, so "blocked depends
// on blocker" becomes the DFS edge blocked -> blocker. RELATES_TO edges
// never participate in cycle detection or blocker resolution.
func (e *Engine) buildDetector(ctx context.Context) (*detector, error) {
	all, err := e.deps.FindAllBlocking(ctx)
	if err != nil {
		return nil, err
	}
	d := newDetector()
	for _, edge := range all {
		blocker, blocked := edge.BlockerAndBlocked()
		d.addEdge(blocked, blocker)
	}
	return d, nil
}

// CreateEdge validates and persists a new dependency edge. It rejects
// self-loops (models.Dependency.Validate already does this), and for
// blocking edge types, rejects anything that would close a cycle in the
// graph of blocking edges that exist today.
func (e *Engine) CreateEdge(ctx context.Context, d *models.Dependency) error {
	if err := d.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}
	if d.Type.Blocking() {
		det, err := e.buildDetector(ctx)
		if err != nil {
			return err
		}
		blocker, blocked := d.BlockerAndBlocked()
		if wouldCycle, path := det.wouldCycle(blocked, blocker); wouldCycle {
			return apperr.Conflict(cycleError(path).Error())
		}
	}
	return e.deps.Create(ctx, d)
}

// Blocker pairs a blocking dependency edge with whether it is currently
// satisfied (the blocker task has reached or passed the edge's
// unblock_at role threshold).
type Blocker struct {
	Edge      *models.Dependency
	BlockerID string
	Satisfied bool
}

// BlockersOf returns every blocking edge gating taskID, each annotated
// with whether the blocker has satisfied its unblock_at threshold.
// blockerRole resolves a blocker task's current status to its role. Edges
// that left unblock_at unset use role terminal as their threshold, i.e.
// the blocker must fully complete.
func (e *Engine) BlockersOf(ctx context.Context, taskID string, blockerRole func(ctx context.Context, blockerTaskID string) (status.Role, error)) ([]Blocker, error) {
	edges, err := e.deps.BlockersOf(ctx, taskID)
	if err != nil {
		return nil, err
	}

	out := make([]Blocker, 0, len(edges))
	for _, edge := range edges {
		blocker, _ := edge.BlockerAndBlocked()
		role, err := blockerRole(ctx, blocker)
		if err != nil {
			return nil, fmt.Errorf("resolve blocker role for %s: %w", blocker, err)
		}
		threshold := status.RoleTerminal
		if edge.UnblockAt != nil {
			threshold = status.Role(*edge.UnblockAt)
		}
		out = append(out, Blocker{
			Edge:      edge,
			BlockerID: blocker,
			Satisfied: status.IsAtOrBeyond(role, threshold),
		})
	}
	return out, nil
}

// IsEligible reports whether taskID has no outstanding (unsatisfied)
// blockers.
func (e *Engine) IsEligible(ctx context.Context, taskID string, blockerRole func(ctx context.Context, blockerTaskID string) (status.Role, error)) (bool, []Blocker, error) {
	blockers, err := e.BlockersOf(ctx, taskID, blockerRole)
	if err != nil {
		return false, nil, err
	}
	var outstanding []Blocker
	for _, b := range blockers {
		if !b.Satisfied {
			outstanding = append(outstanding, b)
		}
	}
	return len(outstanding) == 0, outstanding, nil
}
