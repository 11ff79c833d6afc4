package engine

import "context"

// PullRequestRef identifies the pull request opened (or found already
// open) for an enforcement pass.
type PullRequestRef struct {
	URL    string `json:"url"`
	Number int    `json:"number,omitempty"`
}

// ChangeSummary hands the git collaborator everything it needs to build
// a commit and a pull request: the outcomes of the laws that changed
// something or failed, and the exact set of paths to stage.
type ChangeSummary struct {
	Outcomes []LawOutcome
	Changes  []Change
}

// ChangePublisher commits and publishes the working-tree changes of an
// enforcement pass. It is consumed at most once per Pillar run, after all
// rule execution completed, and only when at least one law reported a
// change.
type ChangePublisher interface {
	HasPendingChanges() (bool, error)
	CommitAndPush(ctx context.Context, summary ChangeSummary) (PullRequestRef, error)
}

// Reporter consumes the pillar's final state to produce a report
// artifact. It is called exactly once at the end of Enforce.
type Reporter interface {
	Report(result *Result) error
}

// Notifier announces a published change, for example to a chat channel.
// Notification failures are logged by the caller and never abort the run.
type Notifier interface {
	Notify(ctx context.Context, message, changesLink string) error
}
