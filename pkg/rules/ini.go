package rules

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// SectionExists ensures that an INI file contains the given section.
func SectionExists(name, path, section string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if section == "" {
		return nil, &engine.ConfigurationError{Reason: "SectionExists requires a section"}
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, cfg, err := loadINI(param)
		if err != nil {
			return nil, err
		}
		if sectionPresent(cfg, section) {
			return file, nil
		}
		ex.Log().Debug("adding section", zap.String("path", file), zap.String("section", section))
		if _, err := cfg.NewSection(section); err != nil {
			return nil, err
		}
		if err := cfg.SaveTo(file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// SectionNotExists ensures that an INI file does not contain the given
// section.
func SectionNotExists(name, path, section string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if section == "" {
		return nil, &engine.ConfigurationError{Reason: "SectionNotExists requires a section"}
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, cfg, err := loadINI(param)
		if err != nil {
			return nil, err
		}
		if !sectionPresent(cfg, section) {
			return file, nil
		}
		ex.Log().Debug("removing section", zap.String("path", file), zap.String("section", section))
		cfg.DeleteSection(section)
		if err := cfg.SaveTo(file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// OptionExists ensures that the section contains the option, creating it
// with the given value when missing. An existing option keeps its
// current value.
func OptionExists(name, path, section, option, value string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if section == "" || option == "" {
		return nil, &engine.ConfigurationError{Reason: "OptionExists requires a section and an option"}
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, cfg, err := loadINI(param)
		if err != nil {
			return nil, err
		}
		if sectionPresent(cfg, section) && cfg.Section(section).HasKey(option) {
			return file, nil
		}
		ex.Log().Debug("adding option",
			zap.String("path", file),
			zap.String("section", section),
			zap.String("option", option),
		)
		if _, err := cfg.Section(section).NewKey(option, value); err != nil {
			return nil, err
		}
		if err := cfg.SaveTo(file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// OptionNotExists ensures that the section does not contain the option.
func OptionNotExists(name, path, section, option string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if section == "" || option == "" {
		return nil, &engine.ConfigurationError{Reason: "OptionNotExists requires a section and an option"}
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, cfg, err := loadINI(param)
		if err != nil {
			return nil, err
		}
		if !sectionPresent(cfg, section) || !cfg.Section(section).HasKey(option) {
			return file, nil
		}
		ex.Log().Debug("removing option",
			zap.String("path", file),
			zap.String("section", section),
			zap.String("option", option),
		)
		cfg.Section(section).DeleteKey(option)
		if err := cfg.SaveTo(file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// OptionRenamed ensures that the option carries the new name, keeping
// its value. An option that is already renamed counts as satisfied; an
// option present under neither name is an error.
func OptionRenamed(name, path, section, option, newName string, opts ...engine.RuleOption) (*engine.Rule, error) {
	if section == "" || option == "" || newName == "" {
		return nil, &engine.ConfigurationError{Reason: "OptionRenamed requires a section, an option and a new name"}
	}
	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, cfg, err := loadINI(param)
		if err != nil {
			return nil, err
		}
		sec := cfg.Section(section)
		hasOld := sectionPresent(cfg, section) && sec.HasKey(option)
		hasNew := sectionPresent(cfg, section) && sec.HasKey(newName)
		switch {
		case hasNew && !hasOld:
			return file, nil
		case !hasOld:
			return nil, fmt.Errorf("option %q not found in section %q", option, section)
		}
		ex.Log().Debug("renaming option",
			zap.String("path", file),
			zap.String("section", section),
			zap.String("option", option),
			zap.String("new_name", newName),
		)
		value := sec.Key(option).Value()
		sec.DeleteKey(option)
		if _, err := sec.NewKey(newName, value); err != nil {
			return nil, err
		}
		if err := cfg.SaveTo(file); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

func loadINI(param any) (string, *ini.File, error) {
	path, err := pathOf(param)
	if err != nil {
		return "", nil, err
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

func sectionPresent(cfg *ini.File, section string) bool {
	for _, name := range cfg.SectionStrings() {
		if name == section {
			return true
		}
	}
	return false
}
