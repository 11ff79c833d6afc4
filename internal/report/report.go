// Package report renders the final enforcement result as a JSON
// artifact, grouping rules by their final status per law.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// Document is the serialized report layout.
type Document struct {
	Started     time.Time              `json:"started"`
	Finished    time.Time              `json:"finished"`
	Changed     bool                   `json:"changed"`
	PullRequest *engine.PullRequestRef `json:"pull_request,omitempty"`
	Laws        []LawReport            `json:"laws"`
}

// LawReport groups one law's rules by final status.
type LawReport struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Skipped      bool            `json:"skipped,omitempty"`
	Changed      bool            `json:"changed,omitempty"`
	Passed       []string        `json:"passed,omitempty"`
	Failed       []FailedRule    `json:"failed,omitempty"`
	SkippedRules []string        `json:"skipped_rules,omitempty"`
	ChangedPaths []engine.Change `json:"changed_paths,omitempty"`
	// Error carries a law hook failure.
	Error string `json:"error,omitempty"`
}

// FailedRule carries the rule name and its error text.
type FailedRule struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// JSONReporter implements engine.Reporter by writing the document to a
// file. "-" writes to stdout.
type JSONReporter struct {
	path string
	log  *zap.Logger
}

// NewJSONReporter creates a reporter writing to path.
func NewJSONReporter(path string, log *zap.Logger) (*JSONReporter, error) {
	if path == "" {
		return nil, fmt.Errorf("report path must not be empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &JSONReporter{path: path, log: log}, nil
}

// Report implements engine.Reporter.
func (r *JSONReporter) Report(result *engine.Result) error {
	data, err := json.MarshalIndent(Build(result), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if r.path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	r.log.Info("report written", zap.String("path", r.path))
	return nil
}

// Build converts an enforcement result into the report layout.
func Build(result *engine.Result) Document {
	doc := Document{
		Started:     result.Started,
		Finished:    result.Finished,
		Changed:     result.Changed,
		PullRequest: result.PullRequest,
	}
	for _, outcome := range result.Outcomes {
		law := LawReport{
			Name:         outcome.Name,
			Description:  outcome.Description,
			Skipped:      outcome.Skipped,
			Changed:      outcome.Changed,
			ChangedPaths: outcome.ChangedPaths,
			Error:        outcome.Error,
		}
		for _, rule := range outcome.Rules {
			switch rule.Status {
			case engine.StatusPassed:
				law.Passed = append(law.Passed, rule.Name)
			case engine.StatusFailed:
				law.Failed = append(law.Failed, FailedRule{Name: rule.Name, Error: rule.Error})
			default:
				law.SkippedRules = append(law.SkippedRules, rule.Name)
			}
		}
		doc.Laws = append(doc.Laws, law)
	}
	return doc
}
