package preconditions

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// Protect CEL environment creation and compilation from concurrent
// access.
var celMutex sync.Mutex

// celEnv is the shared environment for expression preconditions. The
// candidate path is exposed to the expression together with a few
// cheap stat facts.
var celEnv = sync.OnceValues(func() (*cel.Env, error) {
	celMutex.Lock()
	defer celMutex.Unlock()
	return cel.NewEnv(
		cel.Variable("path", cel.StringType),
		cel.Variable("exists", cel.BoolType),
		cel.Variable("isDir", cel.BoolType),
		cel.Variable("size", cel.IntType),
	)
})

// Expression gates on a CEL expression evaluated against the candidate
// path. The expression sees the variables path (string), exists (bool),
// isDir (bool) and size (int, -1 when the path does not exist), and
// must yield a boolean.
//
//	Expression("small config", `exists && !isDir && size < 4096`)
func Expression(name, expression string) (engine.Precondition, error) {
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("create expression environment: %w", err)
	}

	celMutex.Lock()
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		celMutex.Unlock()
		return nil, &engine.ConfigurationError{
			Reason: fmt.Sprintf("expression %q: %v", expression, issues.Err()),
		}
	}
	program, err := env.Program(ast)
	celMutex.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create expression program: %w", err)
	}

	return engine.NewPrecondition(name, func(param any) bool {
		path, ok := pathOf(param)
		if !ok {
			return false
		}

		vars := map[string]any{
			"path":   path,
			"exists": false,
			"isDir":  false,
			"size":   int64(-1),
		}
		if info, err := os.Stat(path); err == nil {
			vars["exists"] = true
			vars["isDir"] = info.IsDir()
			vars["size"] = info.Size()
		}

		result, _, err := program.Eval(vars)
		if err != nil {
			return false
		}
		value, ok := result.Value().(bool)
		return ok && value
	}), nil
}
