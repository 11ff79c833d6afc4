package rules

import (
	"os"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// FileExists ensures that a file exists, creating an empty file when
// missing. The parent directory is created by the pre-task hook.
func FileExists(name, path string, opts ...engine.RuleOption) (*engine.Rule, error) {
	opts = append(opts, engine.WithPreTaskHook(ensureParentDir))
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		if fileExists(target) {
			return target, nil
		}
		ex.Log().Debug("creating file", zap.String("path", target))
		if err := os.WriteFile(target, nil, 0o644); err != nil {
			return nil, err
		}
		ex.Changes().Add(target)
		return target, nil
	}, opts...)
}

// FilesExist ensures that every listed file exists.
func FilesExist(name string, paths []string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return engine.NewRule(name, paths, func(ex *engine.Execution, param any) (any, error) {
		targets, err := pathsOf(param)
		if err != nil {
			return nil, err
		}
		for _, target := range targets {
			if fileExists(target) {
				continue
			}
			ex.Log().Debug("creating file", zap.String("path", target))
			if err := os.WriteFile(target, nil, 0o644); err != nil {
				return nil, err
			}
			ex.Changes().Add(target)
		}
		return targets, nil
	}, opts...)
}

// FileNotExists ensures that a file is absent, removing it when present.
func FileNotExists(name, path string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		if !fileExists(target) {
			return target, nil
		}
		ex.Log().Debug("removing file", zap.String("path", target))
		if err := os.Remove(target); err != nil {
			return nil, err
		}
		ex.Changes().Remove(target)
		return target, nil
	}, opts...)
}

// FilesNotExist ensures that every listed file is absent.
func FilesNotExist(name string, paths []string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return engine.NewRule(name, paths, func(ex *engine.Execution, param any) (any, error) {
		targets, err := pathsOf(param)
		if err != nil {
			return nil, err
		}
		for _, target := range targets {
			if !fileExists(target) {
				continue
			}
			ex.Log().Debug("removing file", zap.String("path", target))
			if err := os.Remove(target); err != nil {
				return nil, err
			}
			ex.Changes().Remove(target)
		}
		return targets, nil
	}, opts...)
}

// FileEmptied ensures that a file exists and has no content. Emptying
// keeps the file itself, so permissions and ownership survive.
func FileEmptied(name, path string, opts ...engine.RuleOption) (*engine.Rule, error) {
	opts = append(opts, engine.WithPreTaskHook(ensureParentDir))
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		target, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(target)
		if err == nil && info.Size() == 0 {
			return target, nil
		}
		ex.Log().Debug("emptying file", zap.String("path", target))
		if err := os.WriteFile(target, nil, 0o644); err != nil {
			return nil, err
		}
		ex.Changes().Add(target)
		return target, nil
	}, opts...)
}
