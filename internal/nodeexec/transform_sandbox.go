package nodeexec

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// customSandbox is the "safe, side-effect-free evaluator" spec §4.2.3
// mandates for transform_type=custom ("an implementation that does not
// provide a sandbox must reject this type at validation"). It compiles
// expressions against expr-lang with the environment restricted to the
// single `input` value — arithmetic, container indexing, and
// expr-lang's pure built-in functions (upper/lower/trim/...), never a
// caller-injected Go function.
//
// Grounded on the teacher's own expr-lang use in
// internal/application/executor/conditions.go and graph.go.
type customSandbox struct{}

func newCustomSandbox() *customSandbox { return &customSandbox{} }

// sandboxEnv is the only environment a custom expression ever sees.
type sandboxEnv struct {
	Input any `expr:"input"`
}

func (s *customSandbox) validate(expression string) error {
	_, err := expr.Compile(expression, expr.Env(sandboxEnv{}))
	if err != nil {
		return fmt.Errorf("invalid expression: %w", err)
	}
	return nil
}

func (s *customSandbox) eval(expression string, input any) (any, error) {
	program, err := expr.Compile(expression, expr.Env(sandboxEnv{}))
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}
	out, err := expr.Run(program, sandboxEnv{Input: input})
	if err != nil {
		return nil, fmt.Errorf("expression evaluation failed: %w", err)
	}
	return out, nil
}
