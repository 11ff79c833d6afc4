package loader

import (
	"sort"
	"sync"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// RuleFactory materializes one rule kind from its spec.
type RuleFactory func(spec RuleSpec, opts ...engine.RuleOption) (*engine.Rule, error)

// PreconditionFactory materializes one precondition kind from its spec.
type PreconditionFactory func(spec PreconditionSpec) (engine.Precondition, error)

var (
	registryMu            sync.RWMutex
	ruleFactories         = make(map[string]RuleFactory)
	preconditionFactories = make(map[string]PreconditionFactory)
)

// RegisterRule makes a rule kind available to pillar definitions.
// Registering a duplicate kind panics; kinds are wired once at startup.
func RegisterRule(kind string, factory RuleFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := ruleFactories[kind]; ok {
		panic("loader: rule kind " + kind + " registered twice")
	}
	ruleFactories[kind] = factory
}

// RegisterPrecondition makes a precondition kind available to pillar
// definitions.
func RegisterPrecondition(kind string, factory PreconditionFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := preconditionFactories[kind]; ok {
		panic("loader: precondition kind " + kind + " registered twice")
	}
	preconditionFactories[kind] = factory
}

func ruleFactory(kind string) (RuleFactory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := ruleFactories[kind]
	if !ok {
		return nil, &engine.ConfigurationError{Reason: "unknown rule kind " + kind}
	}
	return factory, nil
}

func preconditionFactory(kind string) (PreconditionFactory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := preconditionFactories[kind]
	if !ok {
		return nil, &engine.ConfigurationError{Reason: "unknown precondition kind " + kind}
	}
	return factory, nil
}

// RuleKinds returns the registered rule kinds, sorted.
func RuleKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(ruleFactories))
	for kind := range ruleFactories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// PreconditionKinds returns the registered precondition kinds, sorted.
func PreconditionKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(preconditionFactories))
	for kind := range preconditionFactories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
