package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// Definition is the top-level pillar definition document.
type Definition struct {
	Laws []LawSpec `yaml:"laws"`
}

// LawSpec declares one law.
type LawSpec struct {
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description"`
	Preconditions []PreconditionSpec `yaml:"preconditions"`
	Rules         []RuleSpec         `yaml:"rules"`
}

// RuleSpec declares one rule, optionally with a pipe chain and
// children.
type RuleSpec struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	// Path is the rule's input parameter. Pipe and children rules may
	// omit it; they receive the parent's output.
	Path string `yaml:"path"`
	// With carries kind-specific options.
	With          map[string]any     `yaml:"with"`
	Preconditions []PreconditionSpec `yaml:"preconditions"`
	Pipe          *RuleSpec          `yaml:"pipe"`
	Children      []RuleSpec         `yaml:"children"`
}

// PreconditionSpec declares one precondition. When Path is set the
// gate evaluates that path instead of the candidate value, which is
// how law-level preconditions are bound.
type PreconditionSpec struct {
	Kind string         `yaml:"kind"`
	Path string         `yaml:"path"`
	With map[string]any `yaml:"with"`
}

// Load reads a pillar definition file and materializes its laws.
func Load(path string) ([]*engine.Law, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pillar definition: %w", err)
	}
	return Parse(data)
}

// Parse materializes the laws of a YAML pillar definition.
func Parse(data []byte) ([]*engine.Law, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse pillar definition: %w", err)
	}
	if len(def.Laws) == 0 {
		return nil, &engine.ConfigurationError{Reason: "pillar definition declares no laws"}
	}

	laws := make([]*engine.Law, 0, len(def.Laws))
	for _, spec := range def.Laws {
		law, err := buildLaw(spec)
		if err != nil {
			return nil, fmt.Errorf("law %q: %w", spec.Name, err)
		}
		laws = append(laws, law)
	}
	return laws, nil
}

func buildLaw(spec LawSpec) (*engine.Law, error) {
	var opts []engine.LawOption
	if len(spec.Preconditions) > 0 {
		gates, err := buildPreconditions(spec.Preconditions)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithLawPreconditions(gates...))
	}

	rules := make([]*engine.Rule, 0, len(spec.Rules))
	for _, ruleSpec := range spec.Rules {
		rule, err := buildRule(ruleSpec)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", ruleSpec.Name, err)
		}
		rules = append(rules, rule)
	}
	return engine.NewLaw(spec.Name, spec.Description, rules, opts...)
}

func buildRule(spec RuleSpec) (*engine.Rule, error) {
	var opts []engine.RuleOption

	if len(spec.Preconditions) > 0 {
		gates, err := buildPreconditions(spec.Preconditions)
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithPreconditions(gates...))
	}
	if spec.Pipe != nil {
		pipe, err := buildRule(*spec.Pipe)
		if err != nil {
			return nil, fmt.Errorf("pipe %q: %w", spec.Pipe.Name, err)
		}
		opts = append(opts, engine.WithPipe(pipe))
	}
	if len(spec.Children) > 0 {
		children := make([]*engine.Rule, 0, len(spec.Children))
		for _, childSpec := range spec.Children {
			child, err := buildRule(childSpec)
			if err != nil {
				return nil, fmt.Errorf("child %q: %w", childSpec.Name, err)
			}
			children = append(children, child)
		}
		opts = append(opts, engine.WithChildren(children...))
	}

	factory, err := ruleFactory(spec.Kind)
	if err != nil {
		return nil, err
	}
	return factory(spec, opts...)
}

func buildPreconditions(specs []PreconditionSpec) ([]engine.Precondition, error) {
	gates := make([]engine.Precondition, 0, len(specs))
	for _, spec := range specs {
		factory, err := preconditionFactory(spec.Kind)
		if err != nil {
			return nil, err
		}
		gate, err := factory(spec)
		if err != nil {
			return nil, fmt.Errorf("precondition %q: %w", spec.Kind, err)
		}
		if spec.Path != "" {
			gate = bindPath(gate, spec.Path)
		}
		gates = append(gates, gate)
	}
	return gates, nil
}

// bindPath fixes the candidate value a gate evaluates, regardless of
// the value the rule or law hands it.
func bindPath(gate engine.Precondition, path string) engine.Precondition {
	return engine.NewPrecondition(gate.Name(), func(any) bool {
		return gate.Evaluate(path)
	})
}
