package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
	assert.Equal(t, 3, cfg.EffectiveMaxCascadeDepth())
}

func TestDefault_DeployedNotInDefaultFlow(t *testing.T) {
	// "deployed" is a legal task status but only reachable via a tagged
	// flow, never the default one.
	cfg := Default()
	tasks := cfg.Progression(KindTask)
	assert.Contains(t, tasks.AllowedStatuses, "deployed")
	assert.NotContains(t, tasks.DefaultFlow, "deployed")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	ResetCache()
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().StatusValidation, cfg.StatusValidation)
}

func TestLoad_OverridesMergeOverDefaults(t *testing.T) {
	ResetCache()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".taskorchestrator"), 0o755))
	override := `
status_validation:
  allow_backward: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".taskorchestrator", "config.yaml"), []byte(override), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.StatusValidation.AllowBackward)
	// Unrelated sections still come from the embedded default.
	assert.True(t, cfg.AutoCascade.Enabled)
	assert.NotEmpty(t, cfg.Progression(KindTask).AllowedStatuses)
}

func TestLoad_WalksUpFromSubdirectory(t *testing.T) {
	ResetCache()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".taskorchestrator"), 0o755))
	override := "status_validation:\n  allow_backward: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".taskorchestrator", "config.yaml"), []byte(override), 0o644))

	sub := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	cfg, err := Load(sub)
	require.NoError(t, err)
	assert.True(t, cfg.StatusValidation.AllowBackward)
}

func TestValidate_RejectsUnknownRole(t *testing.T) {
	cfg := Default()
	tasks := cfg.Progression(KindTask)
	tasks.StatusRoles["pending"] = "not-a-role"
	cfg.StatusProgression[KindTask] = tasks
	assert.Error(t, cfg.validate())
}

func TestValidate_RejectsDefaultFlowStatusNotAllowed(t *testing.T) {
	cfg := Default()
	tasks := cfg.Progression(KindTask)
	tasks.DefaultFlow = append(tasks.DefaultFlow, "not-allowed")
	cfg.StatusProgression[KindTask] = tasks
	assert.Error(t, cfg.validate())
}
