package preconditions

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileAndDirectoryGates(t *testing.T) {
	dir := t.TempDir()
	file := fixture(t, "content")
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name  string
		gate  string
		param any
		want  bool
	}{
		{name: "file exists on file", gate: "file_exists", param: file, want: true},
		{name: "file exists on directory", gate: "file_exists", param: dir, want: false},
		{name: "file exists on missing", gate: "file_exists", param: missing, want: false},
		{name: "file exists on bad param", gate: "file_exists", param: 42, want: false},
		{name: "file not exists on missing", gate: "file_not_exists", param: missing, want: true},
		{name: "file not exists on file", gate: "file_not_exists", param: file, want: false},
		{name: "directory exists on directory", gate: "dir_exists", param: dir, want: true},
		{name: "directory exists on file", gate: "dir_exists", param: file, want: false},
		{name: "directory not exists on missing", gate: "dir_not_exists", param: missing, want: true},
		{name: "directory not exists on directory", gate: "dir_not_exists", param: dir, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gates := map[string]func() bool{
				"file_exists":     func() bool { return IsFileExists().Evaluate(tt.param) },
				"file_not_exists": func() bool { return IsFileNotExists().Evaluate(tt.param) },
				"dir_exists":      func() bool { return IsDirectoryExists().Evaluate(tt.param) },
				"dir_not_exists":  func() bool { return IsDirectoryNotExists().Evaluate(tt.param) },
			}
			assert.Equal(t, tt.want, gates[tt.gate]())
		})
	}
}

func TestIsLineExists(t *testing.T) {
	file := fixture(t, "alpha\nbeta\ngamma\n")

	gate, err := IsLineExists("^beta$")
	require.NoError(t, err)
	assert.True(t, gate.Evaluate(file))

	gate, err = IsLineExists("^delta$")
	require.NoError(t, err)
	assert.False(t, gate.Evaluate(file))

	// Unreadable candidates evaluate false instead of failing.
	assert.False(t, gate.Evaluate(filepath.Join(t.TempDir(), "missing")))

	_, err = IsLineExists("(")
	require.Error(t, err)
}

func TestIsLineNotExists(t *testing.T) {
	file := fixture(t, "alpha\nbeta\n")

	gate, err := IsLineNotExists("^delta$")
	require.NoError(t, err)
	assert.True(t, gate.Evaluate(file))

	gate, err = IsLineNotExists("^beta$")
	require.NoError(t, err)
	assert.False(t, gate.Evaluate(file))

	gate, err = IsLineNotExists("anything")
	require.NoError(t, err)
	assert.False(t, gate.Evaluate(filepath.Join(t.TempDir(), "missing")))
}

func TestHasMode(t *testing.T) {
	file := fixture(t, "#!/bin/sh\n")
	require.NoError(t, os.Chmod(file, 0o750))

	assert.True(t, HasMode(0o750).Evaluate(file))
	assert.True(t, HasMode(0o100).Evaluate(file))
	assert.False(t, HasMode(0o001).Evaluate(file))
	assert.False(t, HasMode(0o750).Evaluate("/nonexistent"))

	assert.True(t, HasNoMode(0o007).Evaluate(file))
	assert.False(t, HasNoMode(0o100).Evaluate(file))
	assert.False(t, HasNoMode(0o007).Evaluate("/nonexistent"))
}

func TestIsOwnedBy(t *testing.T) {
	current, err := user.Current()
	require.NoError(t, err)
	file := fixture(t, "content")

	assert.True(t, IsOwnedBy(current.Username).Evaluate(file))
	assert.False(t, IsNotOwnedBy(current.Username).Evaluate(file))

	// Unknown users and unreadable paths are non-matches, not errors.
	assert.False(t, IsOwnedBy("no-such-user-xyz").Evaluate(file))
	assert.False(t, IsNotOwnedBy("no-such-user-xyz").Evaluate(file))
	assert.False(t, IsOwnedBy(current.Username).Evaluate("/nonexistent"))
	assert.False(t, IsOwnedBy("").Evaluate(file))
}
