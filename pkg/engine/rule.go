package engine

import (
	"strings"

	"go.uber.org/zap"
)

// Status is the lifecycle state of a rule after an execution pass.
type Status string

const (
	// StatusPending marks a rule that has not run in the current pass,
	// either because enforcement has not started or because an earlier
	// failure aborted its chain.
	StatusPending Status = "pending"
	// StatusSkipped marks a rule whose preconditions evaluated false or
	// which was suppressed by dry-run mode. A skip is not a failure.
	StatusSkipped Status = "skipped"
	// StatusPassed marks a rule whose task completed.
	StatusPassed Status = "passed"
	// StatusFailed marks a rule whose task or hooks returned an error.
	StatusFailed Status = "failed"
)

// Task is the core mutation of a rule: it receives the current value
// (often a filesystem path), converges the target to the desired state
// and returns the output value handed to pipe and children rules.
//
// Tasks must be idempotent: re-applying an already satisfied task must
// detect the satisfied state and return without recording a change.
// Tasks record the paths they actually mutate into ex.Changes().
type Task func(ex *Execution, param any) (any, error)

// Hook is a side-effecting setup or finalize step around a task, such as
// ensuring a parent directory exists. Hook failures propagate exactly
// like task failures.
type Hook func(ex *Execution, param any) error

// Rule is the atomic unit of change. It owns its pipe rule and children
// rules exclusively, forming a tree that is executed depth first.
type Rule struct {
	name          string
	param         any
	task          Task
	preconditions []Precondition
	pipe          *Rule
	children      []*Rule
	preTaskHook   Hook
	postTaskHook  Hook

	status      Status
	madeChanges bool
	err         error
}

// RuleOption configures a Rule at construction time.
type RuleOption func(*Rule)

// WithPreconditions gates the rule on the given predicates. All of them
// must evaluate true for the rule to run.
func WithPreconditions(preconditions ...Precondition) RuleOption {
	return func(r *Rule) { r.preconditions = append(r.preconditions, preconditions...) }
}

// WithPipe chains next after the rule: next receives this rule's output
// as its input and its result becomes the rule's final result.
func WithPipe(next *Rule) RuleOption {
	return func(r *Rule) { r.pipe = next }
}

// WithChildren fans out to the given rules: each child receives this
// rule's output, in declaration order, and each child's own chain fully
// resolves before the next sibling starts.
func WithChildren(children ...*Rule) RuleOption {
	return func(r *Rule) { r.children = append(r.children, children...) }
}

// WithPreTaskHook runs fn before the task.
func WithPreTaskHook(fn Hook) RuleOption {
	return func(r *Rule) { r.preTaskHook = fn }
}

// WithPostTaskHook runs fn after the task succeeded.
func WithPostTaskHook(fn Hook) RuleOption {
	return func(r *Rule) { r.postTaskHook = fn }
}

// NewRule creates a rule with the given name, input parameter and task.
// Pipe and children may both be set: the pipe chain runs first, then the
// children fan out from the task output.
func NewRule(name string, param any, task Task, opts ...RuleOption) (*Rule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ConfigurationError{Reason: "rule name must not be empty"}
	}
	if task == nil {
		return nil, &ConfigurationError{Reason: "rule " + name + " has no task"}
	}

	r := &Rule{
		name:   name,
		param:  param,
		task:   task,
		status: StatusPending,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MustRule is NewRule that panics on configuration errors. Intended for
// declaring rule trees in code where the wiring is static.
func MustRule(name string, param any, task Task, opts ...RuleOption) *Rule {
	r, err := NewRule(name, param, task, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the human-readable rule name.
func (r *Rule) Name() string { return r.name }

// Status returns the rule's state after the most recent execution pass.
func (r *Rule) Status() Status { return r.status }

// MadeChanges reports whether the most recent pass recorded any change
// for this rule.
func (r *Rule) MadeChanges() bool { return r.madeChanges }

// Err returns the task error from the most recent pass, if any.
func (r *Rule) Err() error { return r.err }

// Chain returns the rule followed by its full pipe and children chains in
// execution order.
func (r *Rule) Chain() []*Rule {
	rules := []*Rule{r}
	if r.pipe != nil {
		rules = append(rules, r.pipe.Chain()...)
	}
	for _, child := range r.children {
		rules = append(rules, child.Chain()...)
	}
	return rules
}

// reset clears the execution state of the rule and everything chained
// under it, so a law re-run starts from a clean slate.
func (r *Rule) reset() {
	r.status = StatusPending
	r.madeChanges = false
	r.err = nil
	if r.pipe != nil {
		r.pipe.reset()
	}
	for _, child := range r.children {
		child.reset()
	}
}

// Execute runs the rule against param. A nil param means the rule's
// configured input parameter is used; pipe and children rules are always
// called with the parent's output.
//
// When any precondition evaluates false the rule transitions to
// StatusSkipped and the input value is returned unchanged. Skips are
// logged informationally, never as errors.
func (r *Rule) Execute(ex *Execution, param any) (any, error) {
	if param != nil {
		r.param = param
	}
	input := r.param
	log := ex.log.With(zap.String("rule", r.name))

	if ex.dryRun {
		r.status = StatusSkipped
		ex.stats.RuleFinished(StatusSkipped)
		log.Info("skipping rule in dry-run mode")
		return input, nil
	}
	if !evaluateAll(log, r.preconditions, input) {
		r.status = StatusSkipped
		ex.stats.RuleFinished(StatusSkipped)
		log.Info("skipping rule, preconditions not met")
		return input, nil
	}

	before := ex.changes.Len()

	if r.preTaskHook != nil {
		if err := r.preTaskHook(ex, input); err != nil {
			return input, r.fail(ex, log, err)
		}
	}

	log.Debug("running task")
	output, err := r.task(ex, input)
	if err != nil {
		return input, r.fail(ex, log, err)
	}

	if r.postTaskHook != nil {
		if err := r.postTaskHook(ex, output); err != nil {
			return input, r.fail(ex, log, err)
		}
	}

	r.status = StatusPassed
	r.madeChanges = ex.changes.Len() > before
	ex.stats.RuleFinished(StatusPassed)
	log.Debug("rule finished", zap.Bool("changed", r.madeChanges))

	result := output
	if r.pipe != nil {
		piped, err := r.pipe.Execute(ex, output)
		if err != nil {
			return input, err
		}
		result = piped
	}
	for _, child := range r.children {
		if _, err := child.Execute(ex, output); err != nil {
			return input, err
		}
	}
	return result, nil
}

func (r *Rule) fail(ex *Execution, log *zap.Logger, err error) error {
	r.status = StatusFailed
	r.err = err
	ex.stats.RuleFinished(StatusFailed)
	log.Error("rule failed", zap.Error(err))
	return &TaskError{Rule: r.name, Err: err}
}
