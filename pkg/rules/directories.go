package rules

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// DirectoryExists ensures that a directory exists, creating it (and any
// missing parents) when absent.
func DirectoryExists(name, path string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		if dirExists(target) {
			return target, nil
		}
		ex.Log().Debug("creating directory", zap.String("path", target))
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, err
		}
		ex.Changes().Add(target)
		return target, nil
	}, opts...)
}

// DirectoryNotExists ensures that a directory is absent, removing it and
// its content when present.
func DirectoryNotExists(name, path string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		if !dirExists(target) {
			return target, nil
		}
		ex.Log().Debug("removing directory", zap.String("path", target))
		if err := os.RemoveAll(target); err != nil {
			return nil, err
		}
		ex.Changes().Remove(target)
		return target, nil
	}, opts...)
}

// DirectoryEmptied ensures that a directory exists and has no entries.
// Emptying keeps the directory itself, so permissions and ownership
// survive.
func DirectoryEmptied(name, path string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(target)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			child := filepath.Join(target, entry.Name())
			ex.Log().Debug("removing entry", zap.String("path", child))
			if err := os.RemoveAll(child); err != nil {
				return nil, err
			}
			ex.Changes().Remove(child)
		}
		return target, nil
	}, opts...)
}
