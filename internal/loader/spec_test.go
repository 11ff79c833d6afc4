package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

func TestParseBuildsLaws(t *testing.T) {
	dir := t.TempDir()
	definition := `
laws:
  - name: project layout
    description: Baseline file layout.
    rules:
      - kind: file_exists
        name: changelog exists
        path: ` + filepath.Join(dir, "CHANGELOG.md") + `
        pipe:
          kind: mode_changed
          name: changelog mode
          with:
            mode: "0644"
      - kind: directory_exists
        name: docs directory
        path: ` + filepath.Join(dir, "docs") + `
  - name: cleanup
    rules:
      - kind: file_not_exists
        name: drop legacy file
        path: ` + filepath.Join(dir, "legacy.cfg") + `
`

	laws, err := Parse([]byte(definition))
	require.NoError(t, err)
	require.Len(t, laws, 2)

	assert.Equal(t, "project layout", laws[0].Name())
	assert.Equal(t, "Baseline file layout.", laws[0].Description())
	require.Len(t, laws[0].Rules(), 2)
	// The pipe rule shows up in execution order, not as a top-level rule.
	assert.Len(t, laws[0].ExecutionOrder(), 3)

	ex := engine.NewExecution(zap.NewNop(), false, false, nil)
	outcome := laws[0].Execute(ex)
	assert.True(t, outcome.Changed)
	assert.Empty(t, outcome.FailedRules)
	assert.FileExists(t, filepath.Join(dir, "CHANGELOG.md"))
	assert.DirExists(t, filepath.Join(dir, "docs"))
}

func TestParsePreconditionsBindPaths(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "enable.flag")
	target := filepath.Join(dir, "generated.txt")

	definition := `
laws:
  - name: gated law
    preconditions:
      - kind: is_file_exists
        path: ` + marker + `
    rules:
      - kind: file_exists
        name: generated file
        path: ` + target + `
`

	laws, err := Parse([]byte(definition))
	require.NoError(t, err)

	// Marker absent: the law skips entirely.
	ex := engine.NewExecution(zap.NewNop(), false, false, nil)
	outcome := laws[0].Execute(ex)
	assert.True(t, outcome.Skipped)
	assert.NoFileExists(t, target)

	// Marker present: the law runs.
	require.NoError(t, os.WriteFile(marker, nil, 0o644))
	outcome = laws[0].Execute(ex)
	assert.False(t, outcome.Skipped)
	assert.FileExists(t, target)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		definition string
		wantErr    string
	}{
		{
			name:       "invalid yaml",
			definition: "laws: [",
			wantErr:    "parse pillar definition",
		},
		{
			name:       "no laws",
			definition: "laws: []",
			wantErr:    "declares no laws",
		},
		{
			name: "unknown rule kind",
			definition: `
laws:
  - name: broken
    rules:
      - kind: does_not_exist
        name: nope
        path: /tmp/x
`,
			wantErr: "unknown rule kind",
		},
		{
			name: "unknown precondition kind",
			definition: `
laws:
  - name: broken
    preconditions:
      - kind: does_not_exist
    rules:
      - kind: file_exists
        name: f
        path: /tmp/x
`,
			wantErr: "unknown precondition kind",
		},
		{
			name: "invalid rule options",
			definition: `
laws:
  - name: broken
    rules:
      - kind: line_exists
        name: bad regexp
        path: /tmp/x
        with:
          text: hello
          criteria: "("
          target: x
`,
			wantErr: "invalid regexp",
		},
		{
			name: "missing rule name",
			definition: `
laws:
  - name: broken
    rules:
      - kind: file_exists
        path: /tmp/x
`,
			wantErr: "name must not be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.definition))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pillar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
laws:
  - name: minimal
    rules:
      - kind: file_exists
        name: touch file
        path: `+filepath.Join(dir, "touched.txt")+`
`), 0o644))

	laws, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, laws, 1)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestRegisteredKinds(t *testing.T) {
	kinds := RuleKinds()
	assert.Contains(t, kinds, "file_exists")
	assert.Contains(t, kinds, "yaml_key_exists")
	assert.Contains(t, kinds, "ini_option_renamed")
	assert.Contains(t, kinds, "template_rendered")

	gates := PreconditionKinds()
	assert.Contains(t, gates, "is_file_exists")
	assert.Contains(t, gates, "expression")
	assert.Contains(t, gates, "has_mode")
}
