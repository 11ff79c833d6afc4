package rules

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// codec reads and writes one structured document format as a generic
// string-keyed map. The YAML, JSON and TOML rules share the document
// rules below and differ only in their codec.
type codec interface {
	Extension() string
	Unmarshal(data []byte) (map[string]any, error)
	Marshal(doc map[string]any) ([]byte, error)
}

// document is one parsed structured file plus its dotted-key selector
// helpers. Keys address nested maps: "tool.poetry.name" selects
// doc["tool"]["poetry"]["name"].
type document struct {
	root map[string]any
}

func loadDocument(c codec, path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := c.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if root == nil {
		root = make(map[string]any)
	}
	return &document{root: root}, nil
}

func (d *document) save(c codec, path string) error {
	data, err := c.Marshal(d.root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// lookup resolves the parent map of the dotted key. When create is set,
// missing intermediate maps are created on the way down.
func (d *document) lookup(key string, create bool) (map[string]any, string, error) {
	parts := strings.Split(key, ".")
	parent := d.root
	for _, part := range parts[:len(parts)-1] {
		next, ok := parent[part]
		if !ok {
			if !create {
				return nil, "", nil
			}
			child := make(map[string]any)
			parent[part] = child
			parent = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("key %q: %q is not a mapping", key, part)
		}
		parent = child
	}
	return parent, parts[len(parts)-1], nil
}

func (d *document) get(key string) (any, bool, error) {
	parent, leaf, err := d.lookup(key, false)
	if err != nil || parent == nil {
		return nil, false, err
	}
	val, ok := parent[leaf]
	return val, ok, nil
}

func validateKey(rule, key string) error {
	if key == "" {
		return &engine.ConfigurationError{Reason: rule + " requires a key"}
	}
	return nil
}

// keyExists ensures the dotted key is present, creating it with the
// given value (which may be nil) when missing. An existing key is left
// untouched regardless of its value.
func keyExists(c codec, name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	if err := validateKey("KeyExists", key); err != nil {
		return nil, err
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		doc, err := loadDocument(c, file)
		if err != nil {
			return nil, err
		}
		if _, ok, err := doc.get(key); err != nil {
			return nil, err
		} else if ok {
			return file, nil
		}
		parent, leaf, err := doc.lookup(key, true)
		if err != nil {
			return nil, err
		}
		ex.Log().Debug("adding key", zap.String("path", file), zap.String("key", key))
		parent[leaf] = value
		if err := doc.save(c, file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// keyNotExists ensures the dotted key is absent.
func keyNotExists(c codec, name, path, key string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if err := validateKey("KeyNotExists", key); err != nil {
		return nil, err
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		doc, err := loadDocument(c, file)
		if err != nil {
			return nil, err
		}
		parent, leaf, err := doc.lookup(key, false)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return file, nil
		}
		if _, ok := parent[leaf]; !ok {
			return file, nil
		}
		ex.Log().Debug("removing key", zap.String("path", file), zap.String("key", key))
		delete(parent, leaf)
		if err := doc.save(c, file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// keyRenamed ensures the dotted key carries the new leaf name, keeping
// its value. A key that is already renamed counts as satisfied; a key
// that exists under neither name is an error.
func keyRenamed(c codec, name, path, key, newName string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if err := validateKey("KeyRenamed", key); err != nil {
		return nil, err
	}
	if newName == "" {
		return nil, &engine.ConfigurationError{Reason: "KeyRenamed requires a new name"}
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		doc, err := loadDocument(c, file)
		if err != nil {
			return nil, err
		}
		parent, leaf, err := doc.lookup(key, false)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("key %q not found", key)
		}
		value, hasOld := parent[leaf]
		_, hasNew := parent[newName]
		switch {
		case hasNew && !hasOld:
			return file, nil
		case !hasOld:
			return nil, fmt.Errorf("neither %q nor %q exists", key, newName)
		}
		ex.Log().Debug("renaming key",
			zap.String("path", file),
			zap.String("key", key),
			zap.String("new_name", newName),
		)
		delete(parent, leaf)
		parent[newName] = value
		if err := doc.save(c, file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// valueExists ensures the dotted key holds the given value. Scalar and
// mapping values are replaced when different; list values are treated as
// sets and missing items are appended.
func valueExists(c codec, name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	if err := validateKey("ValueExists", key); err != nil {
		return nil, err
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		doc, err := loadDocument(c, file)
		if err != nil {
			return nil, err
		}
		parent, leaf, err := doc.lookup(key, true)
		if err != nil {
			return nil, err
		}

		current, ok := parent[leaf]
		next, changed := mergeValue(current, value, ok)
		if !changed {
			return file, nil
		}

		ex.Log().Debug("setting value", zap.String("path", file), zap.String("key", key))
		parent[leaf] = next
		if err := doc.save(c, file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

func mergeValue(current, desired any, exists bool) (any, bool) {
	if !exists {
		return desired, true
	}
	currentList, currentIsList := current.([]any)
	desiredList, desiredIsList := desired.([]any)
	if currentIsList && desiredIsList {
		merged := currentList
		changed := false
		for _, item := range desiredList {
			if !containsValue(merged, item) {
				merged = append(merged, item)
				changed = true
			}
		}
		return merged, changed
	}
	if reflect.DeepEqual(current, desired) {
		return current, false
	}
	return desired, true
}

func containsValue(list []any, item any) bool {
	for _, existing := range list {
		if reflect.DeepEqual(existing, item) {
			return true
		}
	}
	return false
}
