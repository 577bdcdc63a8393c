package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/models"
)

func TestManageDependencies_CreateSingleEdge(t *testing.T) {
	d := newTestDispatcher(t)
	a := createTestTask(t, d, map[string]interface{}{"title": "a"})
	b := createTestTask(t, d, map[string]interface{}{"title": "b"})

	result, err := call(t, d, "manage_dependencies", Args{
		"operation": "create", "from_task_id": a.ID, "to_task_id": b.ID, "type": "BLOCKS",
	})
	require.NoError(t, err)
	edge := result.(*models.Dependency)
	require.Equal(t, a.ID, edge.FromTaskID)
	require.Equal(t, b.ID, edge.ToTaskID)
}

func TestManageDependencies_LinearPattern(t *testing.T) {
	d := newTestDispatcher(t)
	a := createTestTask(t, d, map[string]interface{}{"title": "a"})
	b := createTestTask(t, d, map[string]interface{}{"title": "b"})
	c := createTestTask(t, d, map[string]interface{}{"title": "c"})

	result, err := call(t, d, "manage_dependencies", Args{
		"operation": "create", "pattern": "linear",
		"task_ids": []interface{}{a.ID, b.ID, c.ID},
	})
	require.NoError(t, err)
	deps := result.(map[string]interface{})["dependencies"].([]*models.Dependency)
	require.Len(t, deps, 2)
	require.Equal(t, a.ID, deps[0].FromTaskID)
	require.Equal(t, b.ID, deps[0].ToTaskID)
	require.Equal(t, b.ID, deps[1].FromTaskID)
	require.Equal(t, c.ID, deps[1].ToTaskID)
}

func TestManageDependencies_FanOutAndFanIn(t *testing.T) {
	d := newTestDispatcher(t)
	hub := createTestTask(t, d, map[string]interface{}{"title": "hub"})
	x := createTestTask(t, d, map[string]interface{}{"title": "x"})
	y := createTestTask(t, d, map[string]interface{}{"title": "y"})

	result, err := call(t, d, "manage_dependencies", Args{
		"operation": "create", "pattern": "fan-out",
		"task_ids": []interface{}{hub.ID, x.ID, y.ID},
	})
	require.NoError(t, err)
	deps := result.(map[string]interface{})["dependencies"].([]*models.Dependency)
	require.Len(t, deps, 2)
	for _, dep := range deps {
		require.Equal(t, hub.ID, dep.FromTaskID)
	}
}

func TestManageDependencies_RejectsCycle(t *testing.T) {
	d := newTestDispatcher(t)
	a := createTestTask(t, d, map[string]interface{}{"title": "a"})
	b := createTestTask(t, d, map[string]interface{}{"title": "b"})

	_, err := call(t, d, "manage_dependencies", Args{
		"operation": "create", "from_task_id": a.ID, "to_task_id": b.ID, "type": "BLOCKS",
	})
	require.NoError(t, err)

	_, err = call(t, d, "manage_dependencies", Args{
		"operation": "create", "from_task_id": b.ID, "to_task_id": a.ID, "type": "BLOCKS",
	})
	require.Error(t, err)
}

func TestQueryDependencies_IncomingAndOutgoing(t *testing.T) {
	d := newTestDispatcher(t)
	a := createTestTask(t, d, map[string]interface{}{"title": "a"})
	b := createTestTask(t, d, map[string]interface{}{"title": "b"})

	_, err := call(t, d, "manage_dependencies", Args{
		"operation": "create", "from_task_id": a.ID, "to_task_id": b.ID, "type": "BLOCKS",
	})
	require.NoError(t, err)

	result, err := call(t, d, "query_dependencies", Args{"task_id": b.ID})
	require.NoError(t, err)
	edges := result.(map[string]interface{})["dependencies"].([]relatedEdge)
	require.Len(t, edges, 1)
	require.Equal(t, "incoming", edges[0].Direction)
}

func TestGetBlockedTasks_ExcludesUnblockedTasks(t *testing.T) {
	d := newTestDispatcher(t)
	blocker := createTestTask(t, d, map[string]interface{}{"title": "blocker"})
	blocked := createTestTask(t, d, map[string]interface{}{"title": "blocked"})
	createTestTask(t, d, map[string]interface{}{"title": "free"})

	_, err := call(t, d, "manage_dependencies", Args{
		"operation": "create", "from_task_id": blocker.ID, "to_task_id": blocked.ID, "type": "BLOCKS",
	})
	require.NoError(t, err)

	result, err := call(t, d, "get_blocked_tasks", Args{})
	require.NoError(t, err)
	out := result.(map[string]interface{})["blocked_tasks"].([]blockedTask)
	require.Len(t, out, 1)
	require.Equal(t, blocked.ID, out[0].Task.ID)
}
