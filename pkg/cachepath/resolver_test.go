package cachepath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/glorpus-work/s3cache/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspace(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, fsutil.EnsureFileDir(full))
		require.NoError(t, os.WriteFile(full, []byte(f), fsutil.FileModeDefault))
	}
	return root
}

func TestResolve(t *testing.T) {
	root := setupWorkspace(t,
		"node_modules/a/index.js",
		"node_modules/b/index.js",
		"packages/x/dist/out.js",
		"packages/y/dist/out.js",
		"packages/y/src/main.ts",
		"go.sum",
	)

	tests := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{
			name:     "literal directory",
			patterns: []string{"node_modules"},
			expected: []string{"node_modules"},
		},
		{
			name:     "order follows patterns",
			patterns: []string{"packages/*/dist", "node_modules"},
			expected: []string{"packages/x/dist", "packages/y/dist", "node_modules"},
		},
		{
			name:     "double star",
			patterns: []string{"packages/**/*.js"},
			expected: []string{"packages/x/dist/out.js", "packages/y/dist/out.js"},
		},
		{
			name:     "duplicates dropped",
			patterns: []string{"go.sum", "*.sum", "go.sum"},
			expected: []string{"go.sum"},
		},
		{
			name:     "exclusion",
			patterns: []string{"packages/*/dist", "!packages/x/**"},
			expected: []string{"packages/y/dist"},
		},
		{
			name:     "blank lines and comments ignored",
			patterns: []string{"", "  ", "# comment", "go.sum"},
			expected: []string{"go.sum"},
		},
		{
			name:     "missing pattern is skipped when another matches",
			patterns: []string{"does-not-exist", "go.sum"},
			expected: []string{"go.sum"},
		},
	}

	r, err := NewResolver(root)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolve_NoMatches(t *testing.T) {
	r, err := NewResolver(setupWorkspace(t, "a.txt"))
	require.NoError(t, err)

	_, err = r.Resolve([]string{"missing/**"})
	assert.ErrorIs(t, err, errors.ErrNoPathsResolved)

	_, err = r.Resolve(nil)
	assert.ErrorIs(t, err, errors.ErrNoPathsResolved)

	_, err = r.Resolve([]string{"a.txt", "!a.txt"})
	assert.ErrorIs(t, err, errors.ErrNoPathsResolved)
}

func TestResolve_InvalidPattern(t *testing.T) {
	r, err := NewResolver(setupWorkspace(t, "a.txt"))
	require.NoError(t, err)

	_, err = r.Resolve([]string{"a[.txt"})
	assert.ErrorIs(t, err, errors.ErrInvalidPattern)
}

func TestResolve_OutsideWorkspaceStaysAbsolute(t *testing.T) {
	root := setupWorkspace(t, "a.txt")
	outside := setupWorkspace(t, "tool/cache.bin")

	r, err := NewResolver(root)
	require.NoError(t, err)

	got, err := r.Resolve([]string{filepath.Join(outside, "tool")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(outside, "tool")}, got)
}

func TestResolve_Deterministic(t *testing.T) {
	root := setupWorkspace(t, "c/1", "a/1", "b/1")
	r, err := NewResolver(root)
	require.NoError(t, err)

	first, err := r.Resolve([]string{"*"})
	require.NoError(t, err)
	second, err := r.Resolve([]string{"*"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, first)
	assert.Equal(t, first, second)
}

func TestNewResolver_DefaultsToWorkingDir(t *testing.T) {
	r, err := NewResolver("")
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, r.Workspace())
}
