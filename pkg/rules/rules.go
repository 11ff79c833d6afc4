package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// pathOf coerces a rule parameter to a filesystem path. Rules pass paths
// along their pipe and children chains as plain strings.
func pathOf(param any) (string, error) {
	switch v := param.(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("empty path")
		}
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected a path, got %T", param)
	}
}

// pathsOf coerces a rule parameter to a list of filesystem paths.
func pathsOf(param any) ([]string, error) {
	paths, ok := param.([]string)
	if !ok {
		return nil, fmt.Errorf("expected a list of paths, got %T", param)
	}
	return paths, nil
}

// ensureParentDir is the shared pre-task hook for rules that create
// files: it makes sure the parent directory exists before the task runs.
func ensureParentDir(ex *engine.Execution, param any) error {
	path, err := pathOf(param)
	if err != nil {
		return err
	}
	parent := filepath.Dir(path)
	if parent == "." || parent == string(filepath.Separator) {
		return nil
	}
	return os.MkdirAll(parent, 0o755)
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
