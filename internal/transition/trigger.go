package transition

import (
	"fmt"

	"github.com/taskorchestrator/engine/internal/progression"
)

// Named triggers accepted by request_transition.
const (
	TriggerStart    = "start"
	TriggerComplete = "complete"
	TriggerCancel   = "cancel"
	TriggerBlock    = "block"
	TriggerHold     = "hold"
)

// autoCascadeSummary is stamped on every RoleTransition written by a
// recursive, config-driven cascade apply (step 6), so the audit log can
// tell an agent-initiated transition apart from one the engine made on
// its own.
const autoCascadeSummary = "auto-cascade"

// resolveTarget maps a trigger to a target status, given the entity's
// current status and active flow sequence. start follows the sequential
// successor; the other four triggers name a literal, flow-independent
// status. The validator admits that status as the sequential successor,
// or from any non-terminal status when it is an emergency transition and
// status_validation.allow_emergency is set.
func resolveTarget(trigger, currentStatus string, sequence []string) (string, error) {
	switch trigger {
	case TriggerStart:
		next, ok := progression.Successor(sequence, currentStatus)
		if !ok {
			return "", fmt.Errorf("%q has no successor in the active flow", currentStatus)
		}
		return next, nil
	case TriggerComplete:
		return "completed", nil
	case TriggerCancel:
		return "cancelled", nil
	case TriggerBlock:
		return "blocked", nil
	case TriggerHold:
		return "on-hold", nil
	default:
		return "", fmt.Errorf("unrecognized trigger %q", trigger)
	}
}
