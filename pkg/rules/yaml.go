package rules

import (
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

type yamlCodec struct{}

func (yamlCodec) Extension() string { return "yaml" }

func (yamlCodec) Unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (yamlCodec) Marshal(doc map[string]any) ([]byte, error) {
	return yaml.Marshal(doc)
}

// YAMLKeyExists ensures a dotted key exists in a YAML document, creating
// it with the given value when missing.
func YAMLKeyExists(name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyExists(yamlCodec{}, name, path, key, value, opts...)
}

// YAMLKeyNotExists ensures a dotted key is absent from a YAML document.
func YAMLKeyNotExists(name, path, key string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyNotExists(yamlCodec{}, name, path, key, opts...)
}

// YAMLKeyRenamed ensures a dotted key carries a new leaf name in a YAML
// document, keeping its value.
func YAMLKeyRenamed(name, path, key, newName string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyRenamed(yamlCodec{}, name, path, key, newName, opts...)
}

// YAMLValueExists ensures a dotted key holds the given value in a YAML
// document. List values are merged, scalars replaced.
func YAMLValueExists(name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	return valueExists(yamlCodec{}, name, path, key, value, opts...)
}
