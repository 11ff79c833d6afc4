package preconditions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpression(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("key: value\n"), 0o644))

	tests := []struct {
		name       string
		expression string
		param      any
		want       bool
	}{
		{name: "exists", expression: "exists", param: file, want: true},
		{name: "missing path", expression: "exists", param: filepath.Join(dir, "missing"), want: false},
		{name: "negated existence", expression: "!exists", param: filepath.Join(dir, "missing"), want: true},
		{name: "directory check", expression: "exists && isDir", param: dir, want: true},
		{name: "file is not a directory", expression: "isDir", param: file, want: false},
		{name: "size comparison", expression: "exists && size > 0 && size < 4096", param: file, want: true},
		{name: "path matching", expression: `path.endsWith(".yaml")`, param: file, want: true},
		{name: "missing path has negative size", expression: "size == -1", param: filepath.Join(dir, "missing"), want: true},
		{name: "non-path candidate", expression: "true", param: 42, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, err := Expression(tt.name, tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gate.Evaluate(tt.param))
		})
	}
}

func TestExpressionCompileErrors(t *testing.T) {
	_, err := Expression("bad syntax", "exists &&")
	require.Error(t, err)

	_, err = Expression("unknown variable", "nonexistent_var == 1")
	require.Error(t, err)
}

func TestExpressionNonBooleanResult(t *testing.T) {
	gate, err := Expression("non-boolean", "size")
	require.NoError(t, err)
	assert.False(t, gate.Evaluate("/tmp"))
}
