package engine

import (
	"time"

	"go.uber.org/zap"
)

// Change records a single working-tree modification made by a rule: a
// path that was created or edited, or a path that was removed.
type Change struct {
	Path    string `json:"path"`
	Removed bool   `json:"removed,omitempty"`
}

// ChangeSet collects the working-tree changes recorded during one
// enforcement pass. Every record is kept, repeats included, so a rule
// that touches a path an earlier rule or law already changed still
// counts as having made a change; Entries deduplicates for staging.
type ChangeSet struct {
	records []Change
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{}
}

// Add records that path was created or modified.
func (c *ChangeSet) Add(path string) {
	c.records = append(c.records, Change{Path: path})
}

// Remove records that path was deleted from the working tree.
func (c *ChangeSet) Remove(path string) {
	c.records = append(c.records, Change{Path: path, Removed: true})
}

// Entries returns the distinct recorded changes in first-record order.
// The git collaborator stages each path once no matter how many rules
// touched it.
func (c *ChangeSet) Entries() []Change {
	return dedupe(c.records)
}

// Since returns the distinct changes recorded after mark. Laws report
// their own touches with it, independent of earlier laws.
func (c *ChangeSet) Since(mark int) []Change {
	return dedupe(c.records[mark:])
}

func dedupe(records []Change) []Change {
	seen := make(map[Change]struct{}, len(records))
	out := make([]Change, 0, len(records))
	for _, ch := range records {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}

// Len returns the number of recorded changes, repeats included.
func (c *ChangeSet) Len() int { return len(c.records) }

// Empty reports whether no change was recorded.
func (c *ChangeSet) Empty() bool { return len(c.records) == 0 }

// Stats receives execution counters. The telemetry package provides a
// Prometheus-backed implementation; tests use the no-op default.
type Stats interface {
	RuleFinished(status Status)
	LawFinished(name string, status Status, elapsed time.Duration)
}

type noopStats struct{}

func (noopStats) RuleFinished(Status)                      {}
func (noopStats) LawFinished(string, Status, time.Duration) {}

// Execution carries the per-enforcement state shared by every rule in the
// tree: the logger, the resolved policies and the collected change set.
// One Execution is created per Pillar.Enforce call.
type Execution struct {
	log     *zap.Logger
	dryRun  bool
	abort   bool
	changes *ChangeSet
	stats   Stats
}

// NewExecution creates an execution context. A nil logger defaults to a
// no-op logger and a nil stats sink to a no-op recorder.
func NewExecution(log *zap.Logger, dryRun, abortOnRuleFailure bool, stats Stats) *Execution {
	if log == nil {
		log = zap.NewNop()
	}
	if stats == nil {
		stats = noopStats{}
	}
	return &Execution{
		log:     log,
		dryRun:  dryRun,
		abort:   abortOnRuleFailure,
		changes: NewChangeSet(),
		stats:   stats,
	}
}

// Log returns the execution logger.
func (e *Execution) Log() *zap.Logger { return e.log }

// DryRun reports whether mutations are suppressed for this pass.
func (e *Execution) DryRun() bool { return e.dryRun }

// Changes returns the change set rules record into.
func (e *Execution) Changes() *ChangeSet { return e.changes }
