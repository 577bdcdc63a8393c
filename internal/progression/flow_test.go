package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskorchestrator/engine/internal/config"
)

func testProgression() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:  []string{"backlog", "in-progress", "completed", "cancelled", "deployed"},
		DefaultFlow:      []string{"backlog", "in-progress", "completed"},
		TerminalStatuses: []string{"completed", "cancelled"},
		Flows: map[string][]string{
			"deploy": {"backlog", "in-progress", "deployed"},
		},
		TagFlowMapping: []config.TagFlowEntry{
			{Tag: "ops", Flow: "deploy"},
		},
	}
}

func TestActiveFlow_DefaultWhenNoTagMatches(t *testing.T) {
	name, seq := ActiveFlow(testProgression(), []string{"bug"})
	assert.Equal(t, "default", name)
	assert.Equal(t, []string{"backlog", "in-progress", "completed"}, seq)
}

func TestActiveFlow_FirstMatchingTagWins(t *testing.T) {
	name, seq := ActiveFlow(testProgression(), []string{"bug", "ops"})
	assert.Equal(t, "deploy", name)
	assert.Equal(t, []string{"backlog", "in-progress", "deployed"}, seq)
}

func TestSuccessor_EndOfSequence(t *testing.T) {
	_, ok := Successor([]string{"a", "b"}, "b")
	assert.False(t, ok)
}

func TestSuccessor_MidSequence(t *testing.T) {
	next, ok := Successor([]string{"a", "b", "c"}, "a")
	assert.True(t, ok)
	assert.Equal(t, "b", next)
}
