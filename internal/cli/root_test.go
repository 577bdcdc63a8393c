package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// withWorkingDir chdirs into dir for the duration of the test, restoring
// the previous working directory on cleanup.
func withWorkingDir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestFindProjectRoot_FindsTaskorchestratorMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".taskorchestrator"), 0o755))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	withWorkingDir(t, nested)

	found, err := FindProjectRoot()
	require.NoError(t, err)
	require.Equal(t, resolveSymlinks(t, root), resolveSymlinks(t, found))
}

func TestFindProjectRoot_FallsBackToGitMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	withWorkingDir(t, root)

	found, err := FindProjectRoot()
	require.NoError(t, err)
	require.Equal(t, resolveSymlinks(t, root), resolveSymlinks(t, found))
}

func TestFindProjectRoot_FallsBackToWorkingDirWithoutAnyMarker(t *testing.T) {
	root := t.TempDir()
	withWorkingDir(t, root)

	found, err := FindProjectRoot()
	require.NoError(t, err)
	require.Equal(t, resolveSymlinks(t, root), resolveSymlinks(t, found))
}

func resolveSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}
