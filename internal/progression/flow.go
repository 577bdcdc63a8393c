// Package progression resolves each entity's active flow from its tags
// and computes the next recommended status along that flow.
// It never mutates; the transition executor (internal/transition) is the
// only package that acts on its output.
package progression

import "github.com/taskorchestrator/engine/internal/config"

// ActiveFlow resolves the ordered status sequence that governs an entity,
// given its tag set (in insertion order) and the entity kind's
// StatusProgression. The first tag (in the entity's own insertion order,
// not map order) that matches a tag_flow_mapping entry wins; a tag that
// names an unknown flow is skipped rather than treated as a match. With no
// match, default_flow applies.
func ActiveFlow(sp config.StatusProgression, tags []string) (flowName string, sequence []string) {
	for _, tag := range tags {
		for _, entry := range sp.TagFlowMapping {
			if entry.Tag == tag {
				if seq, ok := sp.Flows[entry.Flow]; ok {
					return entry.Flow, seq
				}
			}
		}
	}
	return "default", sp.DefaultFlow
}

// Position returns the index of status within sequence, or -1 if absent.
func Position(sequence []string, status string) int {
	for i, s := range sequence {
		if s == status {
			return i
		}
	}
	return -1
}

// Successor returns the status immediately following current in sequence,
// and whether one exists (false at the end of the sequence or if current
// is not a member).
func Successor(sequence []string, current string) (string, bool) {
	i := Position(sequence, current)
	if i == -1 || i+1 >= len(sequence) {
		return "", false
	}
	return sequence[i+1], true
}

// IsTerminalStatus reports whether status is one of sp's terminal
// statuses.
func IsTerminalStatus(sp config.StatusProgression, status string) bool {
	for _, s := range sp.TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}
