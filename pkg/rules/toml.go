package rules

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

type tomlCodec struct{}

func (tomlCodec) Extension() string { return "toml" }

func (tomlCodec) Unmarshal(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (tomlCodec) Marshal(doc map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TOMLKeyExists ensures a dotted key exists in a TOML document, creating
// it with the given value when missing. TOML has no null, so a nil value
// becomes an empty string.
func TOMLKeyExists(name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	if value == nil {
		value = ""
	}
	return keyExists(tomlCodec{}, name, path, key, value, opts...)
}

// TOMLKeyNotExists ensures a dotted key is absent from a TOML document.
func TOMLKeyNotExists(name, path, key string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyNotExists(tomlCodec{}, name, path, key, opts...)
}

// TOMLKeyRenamed ensures a dotted key carries a new leaf name in a TOML
// document, keeping its value.
func TOMLKeyRenamed(name, path, key, newName string, opts ...engine.RuleOption) (*engine.Rule, error) {
	return keyRenamed(tomlCodec{}, name, path, key, newName, opts...)
}

// TOMLValueExists ensures a dotted key holds the given value in a TOML
// document. List values are merged, scalars replaced.
func TOMLValueExists(name, path, key string, value any, opts ...engine.RuleOption) (*engine.Rule, error) {
	return valueExists(tomlCodec{}, name, path, key, value, opts...)
}
