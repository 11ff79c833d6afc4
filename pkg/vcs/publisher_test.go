package vcs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

type fakeWorkspace struct {
	pending   bool
	staged    []engine.Change
	committed string
	pushed    bool

	stageErr  error
	commitErr error
	pushErr   error
}

func (f *fakeWorkspace) HasPendingChanges() (bool, error) { return f.pending, nil }

func (f *fakeWorkspace) Stage(changes []engine.Change) error {
	f.staged = changes
	return f.stageErr
}

func (f *fakeWorkspace) Commit(message string) (string, error) {
	f.committed = message
	return "abc123", f.commitErr
}

func (f *fakeWorkspace) Push(ctx context.Context) error {
	f.pushed = true
	return f.pushErr
}

type fakeOpener struct {
	head, base  string
	title, body string
	ref         engine.PullRequestRef
	err         error
}

func (f *fakeOpener) EnsurePullRequest(ctx context.Context, head, base, title, body string) (engine.PullRequestRef, error) {
	f.head, f.base, f.title, f.body = head, base, title, body
	return f.ref, f.err
}

func exampleSummary() engine.ChangeSummary {
	return engine.ChangeSummary{
		Outcomes: []engine.LawOutcome{
			{
				Name:         "python base",
				Description:  "Baseline for Python projects.",
				Changed:      true,
				ChangedPaths: []engine.Change{{Path: "pyproject.toml"}},
				Rules: []engine.RuleResult{
					{Name: "pyproject exists", Status: engine.StatusPassed, Changed: true},
					{Name: "lint config", Status: engine.StatusFailed, Error: "boom"},
				},
				FailedRules: []string{"lint config"},
			},
		},
		Changes: []engine.Change{{Path: "pyproject.toml"}},
	}
}

func TestPublisherCommitAndPush(t *testing.T) {
	ws := &fakeWorkspace{}
	opener := &fakeOpener{ref: engine.PullRequestRef{URL: "https://example.com/pull/1", Number: 1}}
	pub := NewPublisher(ws, opener, "enforcement", "main", nil)

	summary := exampleSummary()
	ref, err := pub.CommitAndPush(context.Background(), summary)
	require.NoError(t, err)

	assert.Equal(t, summary.Changes, ws.staged)
	assert.True(t, ws.pushed)
	assert.Equal(t, 1, ref.Number)

	assert.Contains(t, ws.committed, "chore: enforce python base")
	assert.Contains(t, ws.committed, "1 path(s) changed")

	assert.Equal(t, "enforcement", opener.head)
	assert.Equal(t, "main", opener.base)
	assert.Contains(t, opener.body, "### python base")
	assert.Contains(t, opener.body, "Passed rules:")
	assert.Contains(t, opener.body, "- pyproject exists")
	assert.Contains(t, opener.body, "Failed rules:")
	assert.Contains(t, opener.body, "- lint config")
}

func TestPublisherWithoutOpener(t *testing.T) {
	ws := &fakeWorkspace{}
	pub := NewPublisher(ws, nil, "enforcement", "main", nil)

	ref, err := pub.CommitAndPush(context.Background(), exampleSummary())
	require.NoError(t, err)
	assert.Empty(t, ref.URL)
	assert.True(t, ws.pushed)
}

func TestPublisherPropagatesFailures(t *testing.T) {
	tests := []struct {
		name string
		ws   *fakeWorkspace
	}{
		{name: "stage failure", ws: &fakeWorkspace{stageErr: errors.New("stage failed")}},
		{name: "commit failure", ws: &fakeWorkspace{commitErr: errors.New("commit failed")}},
		{name: "push failure", ws: &fakeWorkspace{pushErr: errors.New("push failed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := NewPublisher(tt.ws, &fakeOpener{}, "enforcement", "main", nil)
			_, err := pub.CommitAndPush(context.Background(), exampleSummary())
			require.Error(t, err)
		})
	}
}

func TestPublisherHasPendingChanges(t *testing.T) {
	pub := NewPublisher(&fakeWorkspace{pending: true}, nil, "enforcement", "main", nil)
	pending, err := pub.HasPendingChanges()
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestCommitMessageWithoutChangedLaws(t *testing.T) {
	msg := commitMessage(engine.ChangeSummary{
		Outcomes: []engine.LawOutcome{{Name: "quiet law"}},
	})
	assert.Contains(t, msg, "chore: enforce repository laws")
	assert.Contains(t, msg, "quiet law: 0 path(s) changed")
}
