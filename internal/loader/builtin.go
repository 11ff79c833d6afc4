package loader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
	"github.com/fyrsmithlabs/lawgiver/pkg/preconditions"
	"github.com/fyrsmithlabs/lawgiver/pkg/rules"
)

func init() {
	RegisterRule("file_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.FileExists(spec.Name, spec.Path, opts...)
	})
	RegisterRule("files_exist", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		paths, err := stringsOpt(spec.With, "paths")
		if err != nil {
			return nil, err
		}
		return rules.FilesExist(spec.Name, paths, opts...)
	})
	RegisterRule("file_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.FileNotExists(spec.Name, spec.Path, opts...)
	})
	RegisterRule("files_not_exist", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		paths, err := stringsOpt(spec.With, "paths")
		if err != nil {
			return nil, err
		}
		return rules.FilesNotExist(spec.Name, paths, opts...)
	})
	RegisterRule("file_emptied", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.FileEmptied(spec.Name, spec.Path, opts...)
	})

	RegisterRule("directory_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.DirectoryExists(spec.Name, spec.Path, opts...)
	})
	RegisterRule("directory_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.DirectoryNotExists(spec.Name, spec.Path, opts...)
	})
	RegisterRule("directory_emptied", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.DirectoryEmptied(spec.Name, spec.Path, opts...)
	})

	RegisterRule("line_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		params := rules.LineExistsParams{
			Text:              stringOpt(spec.With, "text"),
			Criteria:          stringOpt(spec.With, "criteria"),
			Target:            stringOpt(spec.With, "target"),
			IgnoreIndentation: boolOpt(spec.With, "ignore_indentation"),
		}
		if position, ok, err := intOpt(spec.With, "position"); err != nil {
			return nil, err
		} else if ok {
			params.Position = &position
		}
		return rules.LineExists(spec.Name, spec.Path, params, opts...)
	})
	RegisterRule("line_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.LineNotExists(spec.Name, spec.Path, stringOpt(spec.With, "pattern"), opts...)
	})
	RegisterRule("line_replaced", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		params := rules.LineReplacedParams{
			Text:              stringOpt(spec.With, "text"),
			Target:            stringOpt(spec.With, "target"),
			IgnoreIndentation: boolOpt(spec.With, "ignore_indentation"),
		}
		return rules.LineReplaced(spec.Name, spec.Path, params, opts...)
	})

	RegisterRule("moved", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.Moved(spec.Name, spec.Path, stringOpt(spec.With, "destination"), opts...)
	})
	RegisterRule("renamed", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.Renamed(spec.Name, spec.Path, stringOpt(spec.With, "new_name"), opts...)
	})
	RegisterRule("copied", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.Copied(spec.Name, spec.Path, stringOpt(spec.With, "destination"), opts...)
	})

	RegisterRule("mode_changed", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		mode, err := modeOpt(spec.With, "mode")
		if err != nil {
			return nil, err
		}
		return rules.ModeChanged(spec.Name, spec.Path, mode, opts...)
	})
	RegisterRule("owner_changed", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.OwnerChanged(spec.Name, spec.Path, stringOpt(spec.With, "owner"), opts...)
	})

	RegisterRule("template_rendered", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		context, _ := spec.With["context"].(map[string]any)
		return rules.TemplateRendered(spec.Name, spec.Path, stringOpt(spec.With, "destination"), context, opts...)
	})

	RegisterRule("yaml_key_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.YAMLKeyExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), spec.With["value"], opts...)
	})
	RegisterRule("yaml_key_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.YAMLKeyNotExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), opts...)
	})
	RegisterRule("yaml_key_renamed", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.YAMLKeyRenamed(spec.Name, spec.Path, stringOpt(spec.With, "key"), stringOpt(spec.With, "new_name"), opts...)
	})
	RegisterRule("yaml_value_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.YAMLValueExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), spec.With["value"], opts...)
	})

	RegisterRule("json_key_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.JSONKeyExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), spec.With["value"], opts...)
	})
	RegisterRule("json_key_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.JSONKeyNotExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), opts...)
	})
	RegisterRule("json_key_renamed", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.JSONKeyRenamed(spec.Name, spec.Path, stringOpt(spec.With, "key"), stringOpt(spec.With, "new_name"), opts...)
	})
	RegisterRule("json_value_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.JSONValueExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), spec.With["value"], opts...)
	})

	RegisterRule("toml_key_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.TOMLKeyExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), spec.With["value"], opts...)
	})
	RegisterRule("toml_key_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.TOMLKeyNotExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), opts...)
	})
	RegisterRule("toml_key_renamed", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.TOMLKeyRenamed(spec.Name, spec.Path, stringOpt(spec.With, "key"), stringOpt(spec.With, "new_name"), opts...)
	})
	RegisterRule("toml_value_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.TOMLValueExists(spec.Name, spec.Path, stringOpt(spec.With, "key"), spec.With["value"], opts...)
	})

	RegisterRule("ini_section_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.SectionExists(spec.Name, spec.Path, stringOpt(spec.With, "section"), opts...)
	})
	RegisterRule("ini_section_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.SectionNotExists(spec.Name, spec.Path, stringOpt(spec.With, "section"), opts...)
	})
	RegisterRule("ini_option_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.OptionExists(spec.Name, spec.Path,
			stringOpt(spec.With, "section"),
			stringOpt(spec.With, "option"),
			stringOpt(spec.With, "value"),
			opts...)
	})
	RegisterRule("ini_option_not_exists", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.OptionNotExists(spec.Name, spec.Path,
			stringOpt(spec.With, "section"),
			stringOpt(spec.With, "option"),
			opts...)
	})
	RegisterRule("ini_option_renamed", func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error) {
		return rules.OptionRenamed(spec.Name, spec.Path,
			stringOpt(spec.With, "section"),
			stringOpt(spec.With, "option"),
			stringOpt(spec.With, "new_name"),
			opts...)
	})

	RegisterPrecondition("is_file_exists", func(PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsFileExists(), nil
	})
	RegisterPrecondition("is_file_not_exists", func(PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsFileNotExists(), nil
	})
	RegisterPrecondition("is_directory_exists", func(PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsDirectoryExists(), nil
	})
	RegisterPrecondition("is_directory_not_exists", func(PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsDirectoryNotExists(), nil
	})
	RegisterPrecondition("is_line_exists", func(spec PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsLineExists(stringOpt(spec.With, "pattern"))
	})
	RegisterPrecondition("is_line_not_exists", func(spec PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsLineNotExists(stringOpt(spec.With, "pattern"))
	})
	RegisterPrecondition("has_mode", func(spec PreconditionSpec) (engine.Precondition, error) {
		mode, err := modeOpt(spec.With, "mode")
		if err != nil {
			return nil, err
		}
		return preconditions.HasMode(mode), nil
	})
	RegisterPrecondition("has_no_mode", func(spec PreconditionSpec) (engine.Precondition, error) {
		mode, err := modeOpt(spec.With, "mode")
		if err != nil {
			return nil, err
		}
		return preconditions.HasNoMode(mode), nil
	})
	RegisterPrecondition("is_owned_by", func(spec PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsOwnedBy(stringOpt(spec.With, "owner")), nil
	})
	RegisterPrecondition("is_not_owned_by", func(spec PreconditionSpec) (engine.Precondition, error) {
		return preconditions.IsNotOwnedBy(stringOpt(spec.With, "owner")), nil
	})
	RegisterPrecondition("expression", func(spec PreconditionSpec) (engine.Precondition, error) {
		return preconditions.Expression("expression", stringOpt(spec.With, "expr"))
	})
}

func stringOpt(with map[string]any, key string) string {
	value, _ := with[key].(string)
	return value
}

func boolOpt(with map[string]any, key string) bool {
	value, _ := with[key].(bool)
	return value
}

func intOpt(with map[string]any, key string) (int, bool, error) {
	raw, ok := with[key]
	if !ok {
		return 0, false, nil
	}
	value, ok := raw.(int)
	if !ok {
		return 0, false, fmt.Errorf("option %q: expected an integer, got %T", key, raw)
	}
	return value, true, nil
}

func stringsOpt(with map[string]any, key string) ([]string, error) {
	raw, ok := with[key]
	if !ok {
		return nil, fmt.Errorf("option %q is required", key)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("option %q: expected a list, got %T", key, raw)
	}
	paths := make([]string, 0, len(list))
	for _, item := range list {
		path, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("option %q: expected strings, got %T", key, item)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// modeOpt accepts octal strings ("0644") and YAML integers.
func modeOpt(with map[string]any, key string) (os.FileMode, error) {
	switch raw := with[key].(type) {
	case string:
		parsed, err := strconv.ParseUint(raw, 8, 32)
		if err != nil {
			return 0, fmt.Errorf("option %q: invalid mode %q", key, raw)
		}
		return os.FileMode(parsed), nil
	case int:
		return os.FileMode(raw), nil
	default:
		return 0, fmt.Errorf("option %q: expected a mode, got %T", key, raw)
	}
}
