package routing

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	conditionEnv     *cel.Env
	conditionEnvErr  error
	conditionEnvOnce sync.Once
)

// getConditionEnv returns the shared CEL environment. Conditions see a
// single variable, request, with the keys method, path, format, headers
// (lower-cased names) and query.
func getConditionEnv() (*cel.Env, error) {
	conditionEnvOnce.Do(func() {
		conditionEnv, conditionEnvErr = cel.NewEnv(
			cel.Variable("request", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return conditionEnv, conditionEnvErr
}

// Condition is a compiled CEL route condition.
type Condition struct {
	expr    string
	program cel.Program
}

// CompileCondition compiles a CEL expression that must evaluate to a bool.
func CompileCondition(expr string) (*Condition, error) {
	env, err := getConditionEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile condition %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("condition %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for condition %q: %w", expr, err)
	}

	return &Condition{expr: expr, program: program}, nil
}

// String returns the source expression.
func (c *Condition) String() string {
	return c.expr
}

// Evaluate evaluates the condition against a request.
func (c *Condition) Evaluate(req *MatchRequest) (bool, error) {
	out, _, err := c.program.Eval(map[string]any{"request": req.conditionInput()})
	if err != nil {
		return false, err
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("condition %q returned %T, want bool", c.expr, out.Value())
	}
	return result, nil
}

func (r *MatchRequest) conditionInput() map[string]any {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}

	query := make(map[string]string, len(r.Query))
	for name, values := range r.Query {
		if len(values) > 0 {
			query[name] = values[0]
		}
	}

	return map[string]any{
		"method":  r.Method,
		"path":    r.Path,
		"format":  r.Format,
		"headers": headers,
		"query":   query,
	}
}
