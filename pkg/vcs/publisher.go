package vcs

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// gitWorkspace is the slice of Workspace the publisher needs.
type gitWorkspace interface {
	HasPendingChanges() (bool, error)
	Stage(changes []engine.Change) error
	Commit(message string) (string, error)
	Push(ctx context.Context) error
}

// PullRequestOpener finds or opens the pull request for an enforcement
// branch. PullRequestService implements it against GitHub.
type PullRequestOpener interface {
	EnsurePullRequest(ctx context.Context, head, base, title, body string) (engine.PullRequestRef, error)
}

// Publisher implements engine.ChangePublisher: it stages the recorded
// changes, commits them, pushes the enforcement branch and ensures a
// pull request exists. A nil opener publishes the branch without a pull
// request.
type Publisher struct {
	workspace gitWorkspace
	opener    PullRequestOpener
	log       *zap.Logger

	branch string
	base   string
	title  string
}

// NewPublisher wires a workspace and an optional pull request opener.
// branch is the enforcement branch being pushed, base the branch pull
// requests target.
func NewPublisher(workspace gitWorkspace, opener PullRequestOpener, branch, base string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		workspace: workspace,
		opener:    opener,
		log:       log,
		branch:    branch,
		base:      base,
		title:     fmt.Sprintf("Enforce repository laws (%s)", branch),
	}
}

// HasPendingChanges reports whether the working tree holds anything to
// publish.
func (p *Publisher) HasPendingChanges() (bool, error) {
	return p.workspace.HasPendingChanges()
}

// CommitAndPush stages exactly the recorded changes, commits them with
// a message summarizing the executed laws, pushes the branch and
// returns the pull request reference when an opener is configured.
func (p *Publisher) CommitAndPush(ctx context.Context, summary engine.ChangeSummary) (engine.PullRequestRef, error) {
	if err := p.workspace.Stage(summary.Changes); err != nil {
		return engine.PullRequestRef{}, err
	}

	hash, err := p.workspace.Commit(commitMessage(summary))
	if err != nil {
		return engine.PullRequestRef{}, err
	}
	p.log.Info("changes committed",
		zap.String("hash", hash),
		zap.Int("paths", len(summary.Changes)),
	)

	if err := p.workspace.Push(ctx); err != nil {
		return engine.PullRequestRef{}, err
	}

	if p.opener == nil {
		return engine.PullRequestRef{}, nil
	}
	return p.opener.EnsurePullRequest(ctx, p.branch, p.base, p.title, pullRequestBody(summary))
}

// commitMessage builds a one-line subject plus a body listing the laws
// that changed something.
func commitMessage(summary engine.ChangeSummary) string {
	var names []string
	for _, outcome := range summary.Outcomes {
		if outcome.Changed {
			names = append(names, outcome.Name)
		}
	}
	subject := "chore: enforce repository laws"
	if len(names) > 0 {
		subject = "chore: enforce " + strings.Join(names, ", ")
	}

	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\n")
	for _, outcome := range summary.Outcomes {
		fmt.Fprintf(&b, "* %s: %d path(s) changed\n", outcome.Name, len(outcome.ChangedPaths))
	}
	return strings.TrimRight(b.String(), "\n")
}

// pullRequestBody renders the per-law results as the pull request
// description.
func pullRequestBody(summary engine.ChangeSummary) string {
	var b strings.Builder
	b.WriteString("## Enforcement results\n")

	for _, outcome := range summary.Outcomes {
		fmt.Fprintf(&b, "\n### %s\n", outcome.Name)
		if outcome.Description != "" {
			b.WriteString(outcome.Description)
			b.WriteString("\n")
		}

		var passed, failed []string
		for _, rule := range outcome.Rules {
			switch rule.Status {
			case engine.StatusPassed:
				passed = append(passed, rule.Name)
			case engine.StatusFailed:
				failed = append(failed, rule.Name)
			}
		}
		if len(passed) > 0 {
			b.WriteString("\nPassed rules:\n")
			for _, name := range passed {
				fmt.Fprintf(&b, "- %s\n", name)
			}
		}
		if len(failed) > 0 {
			b.WriteString("\nFailed rules:\n")
			for _, name := range failed {
				fmt.Fprintf(&b, "- %s\n", name)
			}
		}
	}
	return b.String()
}
