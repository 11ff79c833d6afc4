package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

var indentation = regexp.MustCompile(`^\s+`)

// LineExistsParams configures a LineExists rule.
type LineExistsParams struct {
	// Text is the exact line that must be present.
	Text string
	// Criteria matches lines that already satisfy the rule. When any
	// line matches, the file is left untouched.
	Criteria string
	// Target matches the unique anchor line Text is inserted next to.
	Target string
	// Position is the offset from the target line; 0 means before it,
	// 1 (the default) means directly after it.
	Position *int
	// IgnoreIndentation disables copying the target line's indentation
	// onto the inserted text.
	IgnoreIndentation bool
}

// LineExists ensures that the file contains the required line, inserting
// it next to the target line and respecting the target's indentation.
func LineExists(name, path string, params LineExistsParams, opts ...engine.RuleOption) (*engine.Rule, error) {
	if params.Text == "" {
		return nil, &engine.ConfigurationError{Reason: "LineExists requires text"}
	}
	criteria, err := regexp.Compile(params.Criteria)
	if err != nil || params.Criteria == "" {
		return nil, &engine.ConfigurationError{Reason: fmt.Sprintf("LineExists criteria %q: invalid regexp", params.Criteria)}
	}
	target, err := regexp.Compile(params.Target)
	if err != nil || params.Target == "" {
		return nil, &engine.ConfigurationError{Reason: fmt.Sprintf("LineExists target %q: invalid regexp", params.Target)}
	}
	position := 1
	if params.Position != nil {
		position = *params.Position
	}

	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		lines, err := readLines(file)
		if err != nil {
			return nil, err
		}

		if len(lines) == 0 {
			ex.Log().Debug("appending line to empty file", zap.String("path", file))
			if err := writeLines(file, []string{params.Text}); err != nil {
				return nil, err
			}
			ex.Changes().Add(file)
			return file, nil
		}

		if matchAny(criteria, lines) {
			return file, nil
		}

		// Anchor on the last matching target line, like the insertion
		// point a human would pick when the anchor repeats.
		targetIndex := -1
		for i, line := range lines {
			if target.MatchString(line) {
				targetIndex = i
			}
		}
		if targetIndex < 0 {
			return nil, fmt.Errorf("no matching line for target %q", params.Target)
		}

		text := params.Text
		if !params.IgnoreIndentation {
			if indent := indentation.FindString(lines[targetIndex]); indent != "" {
				text = indent + text
			}
		}

		insert := targetIndex + position
		if insert < 0 {
			insert = 0
		}
		if insert > len(lines) {
			insert = len(lines)
		}
		ex.Log().Debug("inserting line",
			zap.String("path", file),
			zap.Int("position", insert),
		)

		lines = append(lines[:insert], append([]string{text}, lines[insert:]...)...)
		if err := writeLines(file, lines); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// LineNotExists ensures that no line of the file matches pattern.
func LineNotExists(name, path, pattern string, opts ...engine.RuleOption) (*engine.Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil || pattern == "" {
		return nil, &engine.ConfigurationError{Reason: fmt.Sprintf("LineNotExists pattern %q: invalid regexp", pattern)}
	}

	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		lines, err := readLines(file)
		if err != nil {
			return nil, err
		}

		kept := lines[:0:0]
		for _, line := range lines {
			if !re.MatchString(line) {
				kept = append(kept, line)
			}
		}
		if len(kept) == len(lines) {
			return file, nil
		}

		ex.Log().Debug("removing matching lines",
			zap.String("path", file),
			zap.Int("removed", len(lines)-len(kept)),
		)
		if err := writeLines(file, kept); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

// LineReplacedParams configures a LineReplaced rule.
type LineReplacedParams struct {
	// Text is the replacement line.
	Text string
	// Target matches the lines to replace.
	Target string
	// IgnoreIndentation disables copying the replaced line's
	// indentation onto the replacement text.
	IgnoreIndentation bool
}

// LineReplaced ensures that every line matching the target is replaced
// with the given text. When the text is already present the file is left
// untouched; when both the target and the text are present the state is
// ambiguous and the rule fails.
func LineReplaced(name, path string, params LineReplacedParams, opts ...engine.RuleOption) (*engine.Rule, error) {
	if params.Text == "" {
		return nil, &engine.ConfigurationError{Reason: "LineReplaced requires text"}
	}
	target, err := regexp.Compile(params.Target)
	if err != nil || params.Target == "" {
		return nil, &engine.ConfigurationError{Reason: fmt.Sprintf("LineReplaced target %q: invalid regexp", params.Target)}
	}

	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		file, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		lines, err := readLines(file)
		if err != nil {
			return nil, err
		}

		hasTarget := matchAny(target, lines)
		hasText := false
		for _, line := range lines {
			if strings.TrimSpace(line) == params.Text {
				hasText = true
				break
			}
		}

		if hasTarget && hasText {
			return nil, fmt.Errorf("both target %q and replacement text already present", params.Target)
		}
		if hasText {
			return file, nil
		}
		if !hasTarget {
			return nil, fmt.Errorf("no matching line for target %q", params.Target)
		}

		for i, line := range lines {
			if !target.MatchString(line) {
				continue
			}
			text := params.Text
			if !params.IgnoreIndentation {
				if indent := indentation.FindString(line); indent != "" {
					text = indent + text
				}
			}
			lines[i] = text
		}

		ex.Log().Debug("replacing lines", zap.String("path", file))
		if err := writeLines(file, lines); err != nil {
			return nil, err
		}
		ex.Changes().Add(file)
		return file, nil
	}, opts...)
}

func readLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, nil
	}
	return strings.Split(strings.TrimRight(string(content), "\n"), "\n"), nil
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func matchAny(re *regexp.Regexp, lines []string) bool {
	for _, line := range lines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
