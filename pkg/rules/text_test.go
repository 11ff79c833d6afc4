package rules

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

func intptr(v int) *int { return &v }

func TestLineExists(t *testing.T) {
	tests := []struct {
		name    string
		content string
		params  LineExistsParams
		want    string
		changed bool
		wantErr bool
	}{
		{
			name:    "appends to empty file",
			content: "",
			params:  LineExistsParams{Text: "first", Criteria: "^first$", Target: "anything"},
			want:    "first\n",
			changed: true,
		},
		{
			name:    "criteria match leaves file untouched",
			content: "alpha\nbeta\n",
			params:  LineExistsParams{Text: "beta", Criteria: "^beta$", Target: "^alpha$"},
			want:    "alpha\nbeta\n",
		},
		{
			name:    "inserts after target by default",
			content: "alpha\ngamma\n",
			params:  LineExistsParams{Text: "beta", Criteria: "^beta$", Target: "^alpha$"},
			want:    "alpha\nbeta\ngamma\n",
			changed: true,
		},
		{
			name:    "position zero inserts before target",
			content: "beta\ngamma\n",
			params:  LineExistsParams{Text: "alpha", Criteria: "^alpha$", Target: "^beta$", Position: intptr(0)},
			want:    "alpha\nbeta\ngamma\n",
			changed: true,
		},
		{
			name:    "anchors on last matching target",
			content: "item\nitem\nend\n",
			params:  LineExistsParams{Text: "new", Criteria: "^new$", Target: "^item$"},
			want:    "item\nitem\nnew\nend\n",
			changed: true,
		},
		{
			name:    "copies target indentation",
			content: "root:\n  child: 1\n",
			params:  LineExistsParams{Text: "other: 2", Criteria: "other:", Target: "child:"},
			want:    "root:\n  child: 1\n  other: 2\n",
			changed: true,
		},
		{
			name:    "ignores indentation on request",
			content: "root:\n  child: 1\n",
			params:  LineExistsParams{Text: "flat", Criteria: "^flat$", Target: "child:", IgnoreIndentation: true},
			want:    "root:\n  child: 1\nflat\n",
			changed: true,
		},
		{
			name:    "missing target fails",
			content: "alpha\n",
			params:  LineExistsParams{Text: "beta", Criteria: "^beta$", Target: "^nope$"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newExecution()
			file := filepath.Join(t.TempDir(), "file.txt")
			writeFile(t, file, tt.content)

			rule, err := LineExists("line exists", file, tt.params)
			require.NoError(t, err)

			_, err = rule.Execute(ex, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, engine.StatusFailed, rule.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, readFile(t, file))
			assert.Equal(t, tt.changed, rule.MadeChanges())
		})
	}
}

func TestLineExistsValidation(t *testing.T) {
	var cfgErr *engine.ConfigurationError

	_, err := LineExists("bad", "/tmp/f", LineExistsParams{Criteria: "x", Target: "y"})
	require.ErrorAs(t, err, &cfgErr)

	_, err = LineExists("bad", "/tmp/f", LineExistsParams{Text: "x", Criteria: "(", Target: "y"})
	require.ErrorAs(t, err, &cfgErr)

	_, err = LineExists("bad", "/tmp/f", LineExistsParams{Text: "x", Criteria: "y", Target: "("})
	require.ErrorAs(t, err, &cfgErr)
}

func TestLineNotExists(t *testing.T) {
	t.Run("removes all matching lines", func(t *testing.T) {
		ex := newExecution()
		file := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, file, "keep\ndrop me\nkeep too\ndrop me\n")

		rule, err := LineNotExists("line not exists", file, "^drop")
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.Equal(t, "keep\nkeep too\n", readFile(t, file))
		assert.True(t, rule.MadeChanges())
	})

	t.Run("no match leaves file untouched", func(t *testing.T) {
		ex := newExecution()
		file := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, file, "keep\n")

		rule, err := LineNotExists("line not exists", file, "^drop")
		require.NoError(t, err)

		_, err = rule.Execute(ex, nil)
		require.NoError(t, err)
		assert.False(t, rule.MadeChanges())
	})
}

func TestLineReplaced(t *testing.T) {
	tests := []struct {
		name    string
		content string
		params  LineReplacedParams
		want    string
		changed bool
		wantErr bool
	}{
		{
			name:    "replaces all matches keeping indentation",
			content: "  old: 1\nother\n  old: 2\n",
			params:  LineReplacedParams{Text: "new: 0", Target: "old:"},
			want:    "  new: 0\nother\n  new: 0\n",
			changed: true,
		},
		{
			name:    "text already present is satisfied",
			content: "new: 0\nother\n",
			params:  LineReplacedParams{Text: "new: 0", Target: "old:"},
			want:    "new: 0\nother\n",
		},
		{
			name:    "both target and text present is ambiguous",
			content: "old: 1\nnew: 0\n",
			params:  LineReplacedParams{Text: "new: 0", Target: "old:"},
			wantErr: true,
		},
		{
			name:    "neither present fails",
			content: "other\n",
			params:  LineReplacedParams{Text: "new: 0", Target: "old:"},
			wantErr: true,
		},
		{
			name:    "ignores indentation on request",
			content: "  old: 1\n",
			params:  LineReplacedParams{Text: "new: 0", Target: "old:", IgnoreIndentation: true},
			want:    "new: 0\n",
			changed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newExecution()
			file := filepath.Join(t.TempDir(), "file.txt")
			writeFile(t, file, tt.content)

			rule, err := LineReplaced("line replaced", file, tt.params)
			require.NoError(t, err)

			_, err = rule.Execute(ex, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, readFile(t, file))
			assert.Equal(t, tt.changed, rule.MadeChanges())
		})
	}
}
