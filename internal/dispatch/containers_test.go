package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/models"
)

func createTestTask(t *testing.T, d *Dispatcher, fields map[string]interface{}) *models.Task {
	t.Helper()
	result, err := call(t, d, "manage_container", Args{
		"kind": "tasks", "operation": "create",
		"containers": []interface{}{fields},
	})
	require.NoError(t, err)
	containers := result.(map[string]interface{})["containers"].([]interface{})
	require.Len(t, containers, 1)
	return containers[0].(*models.Task)
}

func createTestFeature(t *testing.T, d *Dispatcher, fields map[string]interface{}) *models.Feature {
	t.Helper()
	result, err := call(t, d, "manage_container", Args{
		"kind": "features", "operation": "create",
		"containers": []interface{}{fields},
	})
	require.NoError(t, err)
	containers := result.(map[string]interface{})["containers"].([]interface{})
	require.Len(t, containers, 1)
	return containers[0].(*models.Feature)
}

func TestManageContainer_CreateTask(t *testing.T) {
	d := newTestDispatcher(t)

	task := createTestTask(t, d, map[string]interface{}{"title": "write docs", "priority": "high"})
	require.Equal(t, "write docs", task.Title)
	require.Equal(t, "backlog", task.Status)
}

func TestManageContainer_UpdateAppliesOnlyProvidedFields(t *testing.T) {
	d := newTestDispatcher(t)

	task := createTestTask(t, d, map[string]interface{}{"title": "original", "description": "keep me"})

	result, err := call(t, d, "manage_container", Args{
		"kind": "tasks", "operation": "update",
		"containers": []interface{}{
			map[string]interface{}{"id": task.ID, "title": "renamed"},
		},
	})
	require.NoError(t, err)
	updated := result.(map[string]interface{})["containers"].([]interface{})[0].(*models.Task)

	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, "keep me", updated.Description)
}

func TestManageContainer_RejectsEmptyContainers(t *testing.T) {
	d := newTestDispatcher(t)

	_, err := call(t, d, "manage_container", Args{
		"kind": "tasks", "operation": "create", "containers": []interface{}{},
	})
	require.Error(t, err)
}

func TestManageContainer_Delete(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "throwaway"})

	_, err := call(t, d, "manage_container", Args{
		"kind": "tasks", "operation": "delete",
		"containers": []interface{}{map[string]interface{}{"id": task.ID}},
	})
	require.NoError(t, err)

	_, err = call(t, d, "query_container", Args{"kind": "tasks", "operation": "get", "id": task.ID})
	require.Error(t, err)
}

func TestQueryContainer_GetIncludesSections(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t1"})

	_, err := call(t, d, "manage_sections", Args{
		"operation":   "add",
		"entity_type": "TASK", "entity_id": task.ID,
		"title": "notes", "content": "hello",
	})
	require.NoError(t, err)

	got, err := call(t, d, "query_container", Args{"kind": "tasks", "operation": "get", "id": task.ID})
	require.NoError(t, err)
	env := got.(containerEnvelope)
	require.Len(t, env.Sections, 1)
	require.Equal(t, "notes", env.Sections[0].Title)
}

func TestQueryContainer_Overview(t *testing.T) {
	d := newTestDispatcher(t)
	feature := createTestFeature(t, d, map[string]interface{}{"name": "f1"})

	got, err := call(t, d, "query_container", Args{"kind": "features", "operation": "overview", "id": feature.ID})
	require.NoError(t, err)
	ov := got.(overviewResult)
	require.NotNil(t, ov.TaskCounts)
}

func TestQueryContainer_SearchFiltersByStatus(t *testing.T) {
	d := newTestDispatcher(t)
	createTestTask(t, d, map[string]interface{}{"title": "a"})
	createTestTask(t, d, map[string]interface{}{"title": "b"})

	got, err := call(t, d, "query_container", Args{"kind": "tasks", "operation": "search", "status": "backlog"})
	require.NoError(t, err)
	tasks := got.(map[string]interface{})["tasks"].([]*models.Task)
	require.Len(t, tasks, 2)
}
