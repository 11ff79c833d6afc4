package rules

import (
	"bytes"
	"os"
	"text/template"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// TemplateRendered ensures that destination holds the rendering of the
// template file at the rule's input path with the given context. The
// destination is only rewritten when the rendered content differs.
func TemplateRendered(name, path, destination string, context map[string]any, opts ...engine.RuleOption) (*engine.Rule, error) {
	if destination == "" {
		return nil, &engine.ConfigurationError{Reason: "TemplateRendered requires a destination"}
	}
	opts = append(opts, engine.WithPreTaskHook(func(ex *engine.Execution, param any) error {
		return ensureParentDir(ex, destination)
	}))

	return engine.NewRule(name, path, func(ex *engine.Execution, param any) (any, error) {
		source, err := pathOf(param)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(source)
		if err != nil {
			return nil, err
		}
		tmpl, err := template.New(name).Parse(string(raw))
		if err != nil {
			return nil, err
		}

		var rendered bytes.Buffer
		if err := tmpl.Execute(&rendered, context); err != nil {
			return nil, err
		}

		if current, err := os.ReadFile(destination); err == nil && bytes.Equal(current, rendered.Bytes()) {
			return destination, nil
		}

		ex.Log().Debug("rendering template",
			zap.String("template", source),
			zap.String("destination", destination),
		)
		if err := os.WriteFile(destination, rendered.Bytes(), 0o644); err != nil {
			return nil, err
		}
		ex.Changes().Add(destination)
		return destination, nil
	}, opts...)
}
