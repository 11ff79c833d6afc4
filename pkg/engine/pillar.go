package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Result is the aggregate state of one Enforce call, handed to the
// reporter and returned to the caller.
type Result struct {
	Outcomes    []LawOutcome    `json:"laws"`
	Started     time.Time       `json:"started"`
	Finished    time.Time       `json:"finished"`
	Changed     bool            `json:"changed"`
	PullRequest *PullRequestRef `json:"pull_request,omitempty"`
}

// FailedRules returns the names of every failed rule across all laws.
func (r *Result) FailedRules() []string {
	var failed []string
	for _, outcome := range r.Outcomes {
		failed = append(failed, outcome.FailedRules...)
	}
	return failed
}

// Failed reports whether any law recorded a failed rule or a hook error.
func (r *Result) Failed() bool {
	for _, outcome := range r.Outcomes {
		if len(outcome.FailedRules) > 0 || outcome.Error != "" {
			return true
		}
	}
	return false
}

// Pillar is the top-level registry of laws. Laws execute strictly in
// registration order, one at a time; a law's complete failure never stops
// subsequent laws.
type Pillar struct {
	log       *zap.Logger
	laws      []*Law
	names     map[string]struct{}
	publisher ChangePublisher
	reporter  Reporter
	stats     Stats

	dryRun             bool
	abortOnRuleFailure bool
}

// PillarOption configures a Pillar.
type PillarOption func(*Pillar)

// WithLogger sets the logger used for the whole enforcement pass.
func WithLogger(log *zap.Logger) PillarOption {
	return func(p *Pillar) { p.log = log }
}

// WithPublisher sets the git collaborator that commits and publishes
// changes. Without a publisher, changes stay in the working directory.
func WithPublisher(publisher ChangePublisher) PillarOption {
	return func(p *Pillar) { p.publisher = publisher }
}

// WithReporter sets the reporter receiving the final result.
func WithReporter(reporter Reporter) PillarOption {
	return func(p *Pillar) { p.reporter = reporter }
}

// WithStats sets the execution counters sink.
func WithStats(stats Stats) PillarOption {
	return func(p *Pillar) { p.stats = stats }
}

// WithDryRun suppresses every mutation: all rules report skipped and the
// publisher is never consulted.
func WithDryRun(dryRun bool) PillarOption {
	return func(p *Pillar) { p.dryRun = dryRun }
}

// WithAbortOnRuleFailure makes a failing rule abort the remaining rules
// of its law. The policy is resolved once per Enforce call and applies to
// every law; the default is to continue.
func WithAbortOnRuleFailure(abort bool) PillarOption {
	return func(p *Pillar) { p.abortOnRuleFailure = abort }
}

// NewPillar creates an empty pillar.
func NewPillar(opts ...PillarOption) *Pillar {
	p := &Pillar{
		log:   zap.NewNop(),
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register appends law to the ordered list. Registration order is
// execution order. Duplicate law names are a configuration error.
func (p *Pillar) Register(law *Law) error {
	if _, ok := p.names[law.Name()]; ok {
		return &ConfigurationError{Reason: "duplicate law name " + law.Name()}
	}
	p.names[law.Name()] = struct{}{}
	p.laws = append(p.laws, law)
	return nil
}

// Laws returns the registered laws in registration order.
func (p *Pillar) Laws() []*Law { return p.laws }

// Law returns the registered law with the given name, or nil.
func (p *Pillar) Law(name string) *Law {
	for _, law := range p.laws {
		if law.Name() == name {
			return law
		}
	}
	return nil
}

// Enforce executes every registered law in order, publishes the changes
// through the git collaborator and hands the aggregate to the reporter.
//
// Collaborator failures surface only after all laws have run; the result
// is returned alongside the error so the work already reflected in the
// working directory is never lost to the caller.
func (p *Pillar) Enforce(ctx context.Context) (*Result, error) {
	ex := NewExecution(p.log, p.dryRun, p.abortOnRuleFailure, p.stats)
	result := &Result{Started: time.Now()}

	p.log.Info("enforcing laws",
		zap.Int("laws", len(p.laws)),
		zap.Bool("dry_run", p.dryRun),
	)

	for _, law := range p.laws {
		result.Outcomes = append(result.Outcomes, law.Execute(ex))
	}
	result.Changed = !ex.changes.Empty()

	var collabErr error
	if result.Changed && !p.dryRun && p.publisher != nil {
		collabErr = p.publish(ctx, ex, result)
	}

	result.Finished = time.Now()

	if p.reporter != nil {
		if err := p.reporter.Report(result); err != nil && collabErr == nil {
			collabErr = &CollaboratorError{Op: "report", Err: err}
		}
	}

	return result, collabErr
}

func (p *Pillar) publish(ctx context.Context, ex *Execution, result *Result) error {
	pending, err := p.publisher.HasPendingChanges()
	if err != nil {
		return &CollaboratorError{Op: "check pending changes", Err: err}
	}
	if !pending {
		p.log.Info("no pending changes in working tree, skipping publish")
		return nil
	}

	summary := ChangeSummary{Changes: ex.changes.Entries()}
	for _, outcome := range result.Outcomes {
		if outcome.Changed || len(outcome.FailedRules) > 0 {
			summary.Outcomes = append(summary.Outcomes, outcome)
		}
	}

	ref, err := p.publisher.CommitAndPush(ctx, summary)
	if err != nil {
		return &CollaboratorError{Op: "commit and push", Err: err}
	}
	if ref.URL != "" {
		result.PullRequest = &ref
		p.log.Info("pull request ready", zap.String("url", ref.URL))
	}
	return nil
}
