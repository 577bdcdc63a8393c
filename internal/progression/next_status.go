package progression

import (
	"context"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/status"
)

// Shape names the tagged union variant of a Result.
type Shape string

const (
	ShapeReady    Shape = "ready"
	ShapeBlocked  Shape = "blocked"
	ShapeTerminal Shape = "terminal"
)

// Result is the tagged union returned by NextStatus. Only the fields
// relevant to Shape are meaningful; the others are zero.
type Result struct {
	Shape             Shape
	CurrentStatus     string
	RecommendedStatus string
	ActiveFlow        string
	FlowSequence      []string
	CurrentPosition   int
	MatchedTags       []string
	CurrentRole       status.Role
	NextRole          status.Role
	Reason            string
	Blockers          []string
}

// PrerequisiteCheck evaluates whether moving into nextStatus (whose role is
// nextRole) is currently satisfied for the entity NextStatus was called
// for. It is supplied by the caller, who already knows the entity kind
// and id; NextStatus itself stays entity-agnostic. A nil check skips
// prerequisite evaluation entirely (no containerId case).
type PrerequisiteCheck func(ctx context.Context, nextStatus string, nextRole status.Role) (ok bool, reasons []string, err error)

// NextStatus resolves the active flow from tags and computes the
// recommended next status.
func NextStatus(ctx context.Context, sp config.StatusProgression, roles *status.Resolver, currentStatus string, tags []string, check PrerequisiteCheck) (Result, error) {
	flowName, sequence := ActiveFlow(sp, tags)
	pos := Position(sequence, currentStatus)
	currentRole, _ := roles.RoleOf(currentStatus)

	if IsTerminalStatus(sp, currentStatus) {
		return Result{
			Shape:           ShapeTerminal,
			CurrentStatus:   currentStatus,
			ActiveFlow:      flowName,
			FlowSequence:    sequence,
			CurrentPosition: pos,
			CurrentRole:     currentRole,
			Reason:          "current status is terminal",
		}, nil
	}

	next, hasNext := Successor(sequence, currentStatus)
	if !hasNext {
		return Result{
			Shape:           ShapeTerminal,
			CurrentStatus:   currentStatus,
			ActiveFlow:      flowName,
			FlowSequence:    sequence,
			CurrentPosition: pos,
			CurrentRole:     currentRole,
			Reason:          "no successor in active flow",
		}, nil
	}

	nextRole, _ := roles.RoleOf(next)
	base := Result{
		CurrentStatus:     currentStatus,
		RecommendedStatus: next,
		ActiveFlow:        flowName,
		FlowSequence:      sequence,
		CurrentPosition:   pos,
		MatchedTags:       matchedTags(sp, tags),
		CurrentRole:       currentRole,
		NextRole:          nextRole,
	}

	if check == nil {
		base.Shape = ShapeReady
		base.Reason = "sequential successor exists"
		return base, nil
	}

	ok, reasons, err := check(ctx, next, nextRole)
	if err != nil {
		return Result{}, err
	}
	if ok {
		base.Shape = ShapeReady
		base.Reason = "sequential successor exists and prerequisites satisfied"
		return base, nil
	}
	base.Shape = ShapeBlocked
	base.Blockers = reasons
	base.Reason = "sequential successor exists but prerequisites are not satisfied"
	return base, nil
}

func matchedTags(sp config.StatusProgression, tags []string) []string {
	var matched []string
	for _, tag := range tags {
		for _, entry := range sp.TagFlowMapping {
			if entry.Tag == tag {
				if _, ok := sp.Flows[entry.Flow]; ok {
					matched = append(matched, tag)
				}
			}
		}
	}
	return matched
}
