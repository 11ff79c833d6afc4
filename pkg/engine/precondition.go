package engine

import "go.uber.org/zap"

// Precondition is a pure boolean gate deciding whether a rule or law
// executes. Evaluate must not mutate the candidate value or any external
// state, and must be total: it returns false for anything it cannot
// inspect instead of failing.
//
// A rule or law holds a list of preconditions and proceeds only when all
// of them evaluate true. A false precondition is a skip, never an error.
type Precondition interface {
	Name() string
	Evaluate(param any) bool
}

type preconditionFunc struct {
	name string
	fn   func(param any) bool
}

func (p preconditionFunc) Name() string { return p.name }

func (p preconditionFunc) Evaluate(param any) bool { return p.fn(param) }

// NewPrecondition adapts a plain predicate function into a Precondition.
func NewPrecondition(name string, fn func(param any) bool) Precondition {
	return preconditionFunc{name: name, fn: fn}
}

// evaluateAll reports whether every precondition holds for param.
// Evaluation stops at the first false result.
func evaluateAll(log *zap.Logger, preconditions []Precondition, param any) bool {
	for _, p := range preconditions {
		if !p.Evaluate(param) {
			log.Debug("precondition not met", zap.String("precondition", p.Name()))
			return false
		}
	}
	return true
}
