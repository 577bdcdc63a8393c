package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/apperr"
	"github.com/taskorchestrator/engine/internal/progression"
	"github.com/taskorchestrator/engine/internal/transition"
)

func TestGetNextStatus_ReadyWhenPrerequisitesSatisfied(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t"})

	result, err := call(t, d, "get_next_status", Args{"kind": "tasks", "id": task.ID})
	require.NoError(t, err)
	res := result.(progression.Result)
	require.Equal(t, progression.ShapeReady, res.Shape)
	require.Equal(t, "in-progress", res.RecommendedStatus)
}

func TestGetNextStatus_BlockedOnCompletionPrerequisite(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t"})

	_, err := call(t, d, "request_transition", Args{
		"kind": "tasks", "id": task.ID, "trigger": "start",
	})
	require.NoError(t, err)

	result, err := call(t, d, "get_next_status", Args{"kind": "tasks", "id": task.ID})
	require.NoError(t, err)
	res := result.(progression.Result)
	require.Equal(t, progression.ShapeBlocked, res.Shape)
	require.NotEmpty(t, res.Blockers)
}

func TestRequestTransition_Single(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t"})

	result, err := call(t, d, "request_transition", Args{
		"kind": "tasks", "id": task.ID, "trigger": "start",
	})
	require.NoError(t, err)
	resp := result.(transition.Response)
	require.True(t, resp.Valid)
	require.Equal(t, "in-progress", resp.NewStatus)
}

func TestRequestTransition_Batch(t *testing.T) {
	d := newTestDispatcher(t)
	a := createTestTask(t, d, map[string]interface{}{"title": "a"})
	b := createTestTask(t, d, map[string]interface{}{"title": "b"})

	result, err := call(t, d, "request_transition", Args{
		"transitions": []interface{}{
			map[string]interface{}{"kind": "tasks", "id": a.ID, "trigger": "start"},
			map[string]interface{}{"kind": "tasks", "id": b.ID, "trigger": "start"},
		},
	})
	require.NoError(t, err)
	results := result.(map[string]interface{})["transitions"].([]transitionResult)
	require.Len(t, results, 2)
	require.Nil(t, results[0].Error)
	require.True(t, results[0].Valid)
	require.Nil(t, results[1].Error)
	require.True(t, results[1].Valid)
}

func TestRequestTransition_BatchIsolatesFailures(t *testing.T) {
	d := newTestDispatcher(t)
	a := createTestTask(t, d, map[string]interface{}{"title": "a"})
	b := createTestTask(t, d, map[string]interface{}{"title": "b"})

	result, err := call(t, d, "request_transition", Args{
		"transitions": []interface{}{
			map[string]interface{}{"kind": "tasks", "id": a.ID, "trigger": "no-such-trigger"},
			map[string]interface{}{"kind": "tasks", "id": b.ID, "trigger": "start"},
			"not an object",
		},
	})
	require.NoError(t, err)
	results := result.(map[string]interface{})["transitions"].([]transitionResult)
	require.Len(t, results, 3)

	require.NotNil(t, results[0].Error)
	require.False(t, results[0].Valid)

	require.Nil(t, results[1].Error)
	require.True(t, results[1].Valid, "entry 2 must still be processed despite entry 1's failure")

	require.NotNil(t, results[2].Error)
	require.Equal(t, string(apperr.CodeValidation), results[2].Error.Code)
}

func TestQueryRoleTransitions_RecordsHistory(t *testing.T) {
	d := newTestDispatcher(t)
	task := createTestTask(t, d, map[string]interface{}{"title": "t"})

	_, err := call(t, d, "request_transition", Args{"kind": "tasks", "id": task.ID, "trigger": "start"})
	require.NoError(t, err)

	result, err := call(t, d, "query_role_transitions", Args{"id": task.ID})
	require.NoError(t, err)
	history := result.(map[string]interface{})["transitions"]
	require.NotNil(t, history)
}
