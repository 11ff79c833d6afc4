package rules

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// Moved ensures that the file or directory at the rule's input path lives
// at destination. A source that is already gone while the destination
// exists counts as satisfied.
func Moved(name, path, destination string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if destination == "" {
		return nil, &engine.ConfigurationError{Reason: "Moved requires a destination"}
	}
	opts = append(opts, engine.WithPreTaskHook(func(ex *engine.Execution, param any) error {
		return os.MkdirAll(filepath.Dir(destination), 0o755)
	}))

	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		source, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(source); os.IsNotExist(err) {
			if _, err := os.Stat(destination); err == nil {
				return destination, nil
			}
			return nil, fmt.Errorf("neither %q nor %q exists", source, destination)
		}
		ex.Log().Debug("moving",
			zap.String("from", source),
			zap.String("to", destination),
		)
		if err := os.Rename(source, destination); err != nil {
			return nil, err
		}
		ex.Changes().Remove(source)
		ex.Changes().Add(destination)
		return destination, nil
	}, opts...)
}

// Renamed is a shortcut for Moved: the destination is the source's
// directory joined with the new name.
func Renamed(name, path, newName string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if newName == "" {
		return nil, &engine.ConfigurationError{Reason: "Renamed requires a new name"}
	}
	return Moved(name, path, filepath.Join(filepath.Dir(path), newName), opts...)
}

// Copied ensures that the file or directory at the rule's input path is
// copied to destination. An existing destination counts as satisfied.
func Copied(name, path, destination string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if destination == "" {
		return nil, &engine.ConfigurationError{Reason: "Copied requires a destination"}
	}
	opts = append(opts, engine.WithPreTaskHook(func(ex *engine.Execution, param any) error {
		return os.MkdirAll(filepath.Dir(destination), 0o755)
	}))

	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		source, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(destination); err == nil {
			return destination, nil
		}
		ex.Log().Debug("copying",
			zap.String("from", source),
			zap.String("to", destination),
		)
		if err := copyPath(source, destination); err != nil {
			return nil, err
		}
		ex.Changes().Add(destination)
		return destination, nil
	}, opts...)
}

func copyPath(source, destination string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return copyTree(source, destination)
	}
	return copyFile(source, destination, info.Mode())
}

func copyFile(source, destination string, mode os.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(source, destination string) error {
	return filepath.WalkDir(source, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destination, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}
