package reports

import (
	"github.com/google/cel-go/cel"

	"stitchstock/internal/core/apperror"
)

// rowFilter is a compiled CEL expression evaluated against report rows.
// Row fields are exposed as top-level variables, so callers write
// expressions like `wastage > 5.0 && unit == "meter"`.
type rowFilter struct {
	prg cel.Program
}

// compileFilter compiles expr against the given variable declarations.
// An empty expression yields a nil filter (match everything).
func compileFilter(expr string, vars ...cel.EnvOption) (*rowFilter, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(vars...)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, apperror.NewValidation("invalid filter expression").
			WithDetail("filter", expr).
			WithDetail("error", iss.Err().Error())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperror.NewValidation("filter expression must evaluate to a boolean").
			WithDetail("filter", expr).
			WithDetail("type", ast.OutputType().String())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, apperror.NewValidation("invalid filter expression").
			WithDetail("filter", expr).
			WithDetail("error", err.Error())
	}

	return &rowFilter{prg: prg}, nil
}

// matches evaluates the filter against one row. A nil filter matches.
func (f *rowFilter) matches(row map[string]any) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(row)
	if err != nil {
		return false, apperror.NewValidation("filter evaluation failed").
			WithDetail("error", err.Error())
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, nil
	}
	return b, nil
}
