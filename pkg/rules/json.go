package rules

import (
	"encoding/json"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

type jsonCodec struct{}

func (jsonCodec) Extension() string { return "json" }

func (jsonCodec) Unmarshal(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (jsonCodec) Marshal(doc map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// JSONKeyExists ensures a dotted key exists in a JSON document, creating
// it with the given value when missing.
func JSONKeyExists(name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyExists(jsonCodec{}, name, path, key, value, opts...)
}

// JSONKeyNotExists ensures a dotted key is absent from a JSON document.
func JSONKeyNotExists(name, path, key string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyNotExists(jsonCodec{}, name, path, key, opts...)
}

// JSONKeyRenamed ensures a dotted key carries a new leaf name in a JSON
// document, keeping its value.
func JSONKeyRenamed(name, path, key, newName string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyRenamed(jsonCodec{}, name, path, key, newName, opts...)
}

// JSONValueExists ensures a dotted key holds the given value in a JSON
// document. List values are merged, scalars replaced.
func JSONValueExists(name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	return valueExists(jsonCodec{}, name, path, key, value, opts...)
}
