package engine

import (
	"errors"
	"fmt"
)

// ErrPreconditionNotMet is a control-flow signal, not a failure. It is
// handled inside the engine by transitioning the rule or law to
// StatusSkipped and is never surfaced to callers or logged as an error.
var ErrPreconditionNotMet = errors.New("precondition not met")

// ConfigurationError reports malformed rule or law wiring detected at
// registration time, before any execution. It is fatal and never recovered.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// TaskError reports that a rule's task or one of its hooks could not
// complete. It is recorded in the owning law's failed rules and does not
// abort sibling rule execution unless the abort policy requests it.
type TaskError struct {
	Rule string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// CollaboratorError reports a failure in an external collaborator (git,
// report generation, notifications). It surfaces to the caller of Enforce
// only after all laws have run, preserving the work already done in the
// working directory.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
