// Package rules contains the built-in rule constructors: file, directory
// and text manipulations plus structured-format edits for YAML, JSON,
// TOML and INI files.
//
// Every constructor returns a *engine.Rule whose task converges the
// target to the desired state: re-applying an already satisfied rule
// detects the satisfied state and records no change. Tasks record the
// paths they actually mutated into the execution's change set, which the
// git collaborator later stages.
package rules
