package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/models"
)

func TestGetNextTask_SkipsBlockedAndPrefersHigherPriority(t *testing.T) {
	d := newTestDispatcher(t)
	low := createTestTask(t, d, map[string]interface{}{"title": "low", "priority": "low"})
	high := createTestTask(t, d, map[string]interface{}{"title": "high", "priority": "high"})
	blocker := createTestTask(t, d, map[string]interface{}{"title": "blocker"})

	_, err := call(t, d, "manage_dependencies", Args{
		"operation": "create", "from_task_id": blocker.ID, "to_task_id": high.ID, "type": "BLOCKS",
	})
	require.NoError(t, err)

	result, err := call(t, d, "get_next_task", Args{})
	require.NoError(t, err)
	next := result.(map[string]interface{})["task"].(*models.Task)
	require.Equal(t, blocker.ID, next.ID, "the blocked high-priority task must not be recommended; the unblocked blocker (default medium priority) outranks low")
	require.NotEqual(t, low.ID, next.ID)
}

func TestGetNextTask_NoneWhenAllBlockedOrTerminal(t *testing.T) {
	d := newTestDispatcher(t)

	result, err := call(t, d, "get_next_task", Args{})
	require.NoError(t, err)
	out := result.(map[string]interface{})
	require.Nil(t, out["task"])
}

func TestListTags_AggregatesAcrossEntities(t *testing.T) {
	d := newTestDispatcher(t)
	createTestTask(t, d, map[string]interface{}{"title": "t", "tags": []interface{}{"bug", "urgent"}})
	createTestFeature(t, d, map[string]interface{}{"name": "f", "tags": []interface{}{"urgent"}})

	result, err := call(t, d, "list_tags", Args{})
	require.NoError(t, err)
	tags := result.(map[string]interface{})["tags"].([]models.TagCount)
	require.ElementsMatch(t, []models.TagCount{
		{Tag: "bug", Count: 1},
		{Tag: "urgent", Count: 2},
	}, tags)
}
