package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/config"
	"github.com/taskorchestrator/engine/internal/status"
)

func testSP() config.StatusProgression {
	return config.StatusProgression{
		AllowedStatuses:      []string{"backlog", "in-progress", "completed", "cancelled"},
		DefaultFlow:          []string{"backlog", "in-progress", "completed"},
		TerminalStatuses:     []string{"completed", "cancelled"},
		EmergencyTransitions: []string{"cancelled"},
	}
}

func testResolver() *status.Resolver {
	return status.NewResolver(map[string]string{
		"backlog":     config.RoleQueue,
		"in-progress": config.RoleWork,
		"completed":   config.RoleTerminal,
		"cancelled":   config.RoleTerminal,
	})
}

func TestValidateTransition_UnknownStatusRejected(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: true}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "backlog", NewStatus: "nope", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateTransition_TerminalLock(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: true}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "completed", NewStatus: "in-progress", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "terminal")
}

func TestValidateTransition_SkipRejectedWhenSequential(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: true}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "backlog", NewStatus: "completed", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason, "Must transition through")
}

func TestValidateTransition_SequentialSuccessorAllowed(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: true}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "backlog", NewStatus: "in-progress", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateTransition_EmergencyAllowedWhenEnabled(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: true, AllowEmergency: true}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "backlog", NewStatus: "cancelled", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateTransition_EmergencyRejectedWhenDisabled(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: true, AllowEmergency: false}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "backlog", NewStatus: "cancelled", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateTransition_BackwardAllowedWhenEnabled(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: true, AllowBackward: true}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "in-progress", NewStatus: "backlog", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateTransition_NoRestrictionsWhenSequentialDisabled(t *testing.T) {
	sv := config.StatusValidation{EnforceSequential: false}
	result, err := ValidateTransition(context.Background(), testSP(), sv, Context{
		Kind: config.KindTask, CurrentStatus: "backlog", NewStatus: "completed", Roles: testResolver(),
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
