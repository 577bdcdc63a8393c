package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/models"
)

func TestManageSections_AddAndBulkUpdateText(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t"})

	added, err := call(t, d, "manage_sections", Args{
		"operation":   "add",
		"entity_type": "TASK", "entity_id": task.ID,
		"title": "plan", "content": "v1",
	})
	require.NoError(t, err)
	section := added.(*models.Section)
	require.Equal(t, int64(1), section.Version)

	updated, err := call(t, d, "manage_sections", Args{
		"operation": "update",
		"sections": []interface{}{
			map[string]interface{}{
				"id": float64(section.ID), "version": float64(section.Version),
				"entity_type": "TASK", "entity_id": task.ID,
				"title": "plan", "content": "v2",
			},
		},
	})
	require.NoError(t, err)
	sections := updated.(map[string]interface{})["sections"].([]*models.Section)
	require.Equal(t, "v2", sections[0].Content)
}

func TestManageSections_BulkCreate(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t"})

	result, err := call(t, d, "manage_sections", Args{
		"operation": "bulkCreate",
		"sections": []interface{}{
			map[string]interface{}{"entity_type": "TASK", "entity_id": task.ID, "title": "a", "content": "x"},
			map[string]interface{}{"entity_type": "TASK", "entity_id": task.ID, "title": "b", "content": "y"},
		},
	})
	require.NoError(t, err)
	sections := result.(map[string]interface{})["sections"].([]*models.Section)
	require.Len(t, sections, 2)
}

func TestManageSections_Delete(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t"})

	added, err := call(t, d, "manage_sections", Args{
		"operation": "add", "entity_type": "TASK", "entity_id": task.ID,
		"title": "plan", "content": "v1",
	})
	require.NoError(t, err)
	section := added.(*models.Section)

	_, err = call(t, d, "manage_sections", Args{
		"operation": "delete", "id": float64(section.ID),
	})
	require.NoError(t, err)

	got, err := call(t, d, "query_container", Args{"kind": "tasks", "operation": "get", "id": task.ID})
	require.NoError(t, err)
	require.Empty(t, got.(containerEnvelope).Sections)
}

func TestManageSections_RejectsEmptyBulkCreate(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := call(t, d, "manage_sections", Args{"operation": "bulkCreate", "sections": []interface{}{}})
	require.Error(t, err)
}
