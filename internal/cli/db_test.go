package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskorchestrator/engine/internal/config"
)

func writeConfigYAML(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, ".taskorchestrator")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
}

func TestLoadConfig_ResolvesRelativeSqliteDSNAgainstProjectRoot(t *testing.T) {
	config.ResetCache()
	root := t.TempDir()
	writeConfigYAML(t, root, "database:\n  driver: sqlite\n  dsn: data/tasks.db\n")
	withWorkingDir(t, root)

	cfg, discovered, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, resolveSymlinks(t, root), resolveSymlinks(t, discovered))
	require.Equal(t, filepath.Join(root, "data", "tasks.db"), cfg.Database.DSN)
}

func TestLoadConfig_LeavesTursoDSNUntouched(t *testing.T) {
	config.ResetCache()
	root := t.TempDir()
	writeConfigYAML(t, root, "database:\n  driver: turso\n  dsn: libsql://example.turso.io\n")
	withWorkingDir(t, root)

	cfg, _, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "libsql://example.turso.io", cfg.Database.DSN)
}

func TestLoadConfig_LeavesAbsoluteDSNUntouched(t *testing.T) {
	config.ResetCache()
	root := t.TempDir()
	abs := filepath.Join(root, "elsewhere", "tasks.db")
	writeConfigYAML(t, root, "database:\n  driver: sqlite\n  dsn: "+abs+"\n")
	withWorkingDir(t, root)

	cfg, _, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, abs, cfg.Database.DSN)
}
