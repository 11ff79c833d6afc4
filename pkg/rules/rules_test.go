package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

func newExecution() *engine.Execution {
	return engine.NewExecution(zap.NewNop(), false, false, nil)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPathOf(t *testing.T) {
	tests := []struct {
		name    string
		param   any
		want    string
		wantErr bool
	}{
		{name: "string", param: "/tmp/a", want: "/tmp/a"},
		{name: "empty string", param: "", wantErr: true},
		{name: "non-path", param: 42, wantErr: true},
		{name: "nil", param: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pathOf(tt.param)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPathsOf(t *testing.T) {
	paths, err := pathsOf([]string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, paths)

	_, err = pathsOf("not-a-list")
	require.Error(t, err)
}
