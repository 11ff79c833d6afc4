package engine

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// RuleResult is the reported state of one rule (including nested pipe and
// children rules) after a law executed.
type RuleResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Changed bool   `json:"changed,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LawOutcome summarizes one law execution for reporting and for the
// commit/pull-request collaborators.
type LawOutcome struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Skipped      bool         `json:"skipped,omitempty"`
	Changed      bool         `json:"changed,omitempty"`
	Rules        []RuleResult `json:"rules"`
	FailedRules  []string     `json:"failed_rules,omitempty"`
	ChangedPaths []Change     `json:"changed_paths,omitempty"`
	// Error carries a law hook failure. It is distinct from a skip: a
	// law with an Error did not run cleanly.
	Error string `json:"error,omitempty"`
}

// LawHook runs before or after a law's rules. The post hook is the place
// to finalize a law's changes, for example committing them.
type LawHook func(ex *Execution, law *Law) error

// Law is an ordered, preconditioned group of rules representing one
// enforceable policy.
type Law struct {
	name          string
	description   string
	rules         []*Rule
	preconditions []Precondition
	preHook       LawHook
	postHook      LawHook

	failedRules []*Rule
}

// LawOption configures a Law at construction time.
type LawOption func(*Law)

// WithLawPreconditions gates the whole law: if any predicate evaluates
// false every rule in the law is skipped.
func WithLawPreconditions(preconditions ...Precondition) LawOption {
	return func(l *Law) { l.preconditions = append(l.preconditions, preconditions...) }
}

// WithPreLawHook runs fn before the law's rules.
func WithPreLawHook(fn LawHook) LawOption {
	return func(l *Law) { l.preHook = fn }
}

// WithPostLawHook runs fn after the law's rules, regardless of rule
// failures. The hook is not invoked when the law was skipped.
func WithPostLawHook(fn LawHook) LawOption {
	return func(l *Law) { l.postHook = fn }
}

// NewLaw creates a law from ordered rules. Laws with no rules are
// allowed; they simply report no changes.
func NewLaw(name, description string, rules []*Rule, opts ...LawOption) (*Law, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ConfigurationError{Reason: "law name must not be empty"}
	}

	l := &Law{
		name:        name,
		description: strings.TrimSpace(description),
		rules:       rules,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// MustLaw is NewLaw that panics on configuration errors.
func MustLaw(name, description string, rules []*Rule, opts ...LawOption) *Law {
	l, err := NewLaw(name, description, rules, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the law name.
func (l *Law) Name() string { return l.name }

// Description returns the law description.
func (l *Law) Description() string { return l.description }

// Rules returns the registered top-level rules in declaration order.
func (l *Law) Rules() []*Rule { return l.rules }

// FailedRules returns the top-level rules whose chain failed during the
// most recent execution pass.
func (l *Law) FailedRules() []*Rule { return l.failedRules }

// ExecutionOrder returns every rule of the law, including nested pipe and
// children rules, in the order they would execute.
func (l *Law) ExecutionOrder() []*Rule {
	var order []*Rule
	for _, rule := range l.rules {
		order = append(order, rule.Chain()...)
	}
	return order
}

// Execute runs the law's rules in order per the rule execution protocol.
// Task failures are caught per top-level rule and recorded; they abort
// the remaining rules only when the execution's abort policy is set.
func (l *Law) Execute(ex *Execution) LawOutcome {
	started := time.Now()
	l.failedRules = nil
	for _, rule := range l.rules {
		rule.reset()
	}

	log := ex.log.With(zap.String("law", l.name))
	outcome := LawOutcome{Name: l.name, Description: l.description}

	if !ex.dryRun && !evaluateAll(log, l.preconditions, nil) {
		log.Info("skipping law, preconditions not met")
		outcome.Skipped = true
		outcome.Rules = l.collectResults()
		ex.stats.LawFinished(l.name, StatusSkipped, time.Since(started))
		return outcome
	}

	if l.preHook != nil {
		if err := l.preHook(ex, l); err != nil {
			log.Error("pre-law hook failed", zap.Error(err))
			outcome.Error = err.Error()
			outcome.Rules = l.collectResults()
			ex.stats.LawFinished(l.name, StatusFailed, time.Since(started))
			return outcome
		}
	}

	mark := ex.changes.Len()
	log.Info("executing law", zap.Int("rules", len(l.rules)))

	for _, rule := range l.rules {
		if _, err := rule.Execute(ex, nil); err != nil {
			l.failedRules = append(l.failedRules, rule)
			if ex.abort {
				log.Warn("aborting law after rule failure", zap.String("rule", rule.Name()))
				break
			}
		}
	}

	if l.postHook != nil {
		if err := l.postHook(ex, l); err != nil {
			log.Error("post-law hook failed", zap.Error(err))
			outcome.Error = err.Error()
		}
	}

	outcome.Rules = l.collectResults()
	outcome.ChangedPaths = ex.changes.Since(mark)
	outcome.Changed = len(outcome.ChangedPaths) > 0
	for _, rule := range l.failedRules {
		outcome.FailedRules = append(outcome.FailedRules, rule.Name())
	}

	status := StatusPassed
	if len(l.failedRules) > 0 || outcome.Error != "" {
		status = StatusFailed
	}
	ex.stats.LawFinished(l.name, status, time.Since(started))
	return outcome
}

// collectResults walks every rule chain and reports the per-rule state.
// Rules that never ran because an earlier chain member failed are
// reported as skipped.
func (l *Law) collectResults() []RuleResult {
	var results []RuleResult
	for _, rule := range l.ExecutionOrder() {
		res := RuleResult{
			Name:    rule.Name(),
			Status:  rule.Status(),
			Changed: rule.MadeChanges(),
		}
		if res.Status == StatusPending {
			res.Status = StatusSkipped
		}
		if err := rule.Err(); err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}
