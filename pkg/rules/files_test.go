package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

func TestFileExists(t *testing.T) {
	t.Run("creates missing file with parent directories", func(t *testing.T) {
		ex := newExecution()
		target := filepath.Join(t.TempDir(), "nested", "dir", "file.txt")

		rule, err := FileExists("ensure file", target)
		require.NoError(t, err)

		out, err := rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.Equal(t, target, out)
		assert.FileExists(t, target)
		assert.True(t, rule.MadeChanges())
		assert.Equal(t, []engine.Change{{Path: target}}, ex.Changes().Entries())
	})

	t.Run("existing file is left untouched", func(t *testing.T) {
		ex := newExecution()
		target := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, target, "content")

		rule, err := FileExists("ensure file", target)
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.False(t, rule.MadeChanges())
		assert.Equal(t, "content", readFile(t, target))
	})
}

func TestFilesExist(t *testing.T) {
	ex := newExecution()
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.txt")
	missing := filepath.Join(dir, "missing.txt")
	writeFile(t, existing, "keep")

	rule, err := FilesExist("ensure files", []string{existing, missing})
	require.NoError(t, err)

	out, err := rule.Execute(ex, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{existing, missing}, out)
	assert.FileExists(t, missing)
	assert.Equal(t, "keep", readFile(t, existing))
	assert.Equal(t, []engine.Change{{Path: missing}}, ex.Changes().Entries())
}

func TestFileNotExists(t *testing.T) {
	t.Run("removes existing file", func(t *testing.T) {
		ex := newExecution()
		target := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, target, "gone")

		rule, err := FileNotExists("remove file", target)
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.NoFileExists(t, target)
		assert.True(t, rule.MadeChanges())
		assert.Equal(t, []engine.Change{{Path: target, Removed: true}}, ex.Changes().Entries())
	})

	t.Run("absent file is already satisfied", func(t *testing.T) {
		ex := newExecution()
		target := filepath.Join(t.TempDir(), "file.txt")

		rule, err := FileNotExists("remove file", target)
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.False(t, rule.MadeChanges())
		assert.True(t, ex.Changes().Empty())
	})
}

func TestFilesNotExist(t *testing.T) {
	ex := newExecution()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")
	writeFile(t, first, "a")
	writeFile(t, second, "b")

	rule, err := FilesNotExist("remove files", []string{first, second})
	require.NoError(t, err)

	_, err = rule.Execute(ex, nil)
	require.NoError(t, err)
	assert.NoFileExists(t, first)
	assert.NoFileExists(t, second)
	assert.Len(t, ex.Changes().Entries(), 2)
}

func TestFileEmptied(t *testing.T) {
	t.Run("truncates non-empty file", func(t *testing.T) {
		ex := newExecution()
		target := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, target, "content to drop")

		rule, err := FileEmptied("empty file", target)
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Zero(t, info.Size())
		assert.True(t, rule.MadeChanges())
	})

	t.Run("empty file is already satisfied", func(t *testing.T) {
		ex := newExecution()
		target := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, target, "")

		rule, err := FileEmptied("empty file", target)
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.False(t, rule.MadeChanges())
	})

	t.Run("creates missing file", func(t *testing.T) {
		ex := newExecution()
		target := filepath.Join(t.TempDir(), "nested", "file.txt")

		rule, err := FileEmptied("empty file", target)
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.FileExists(t, target)
		assert.True(t, rule.MadeChanges())
	})
}
