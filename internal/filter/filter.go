// Package filter evaluates the optional parameter selection expression from
// the credentials file against discovered parameters.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/core"
)

// Env is the expression environment. The expression sees one parameter at a
// time, e.g. `Parameter.BundleID == 1000` or
// `Parameter.Unit == "temperature" && !Parameter.ReadOnly`.
type Env struct {
	Parameter core.Parameter
}

type Filter struct {
	source  string
	program *vm.Program
}

// Compile builds a filter from the configured expression. An empty
// expression yields a nil filter, which matches everything.
func Compile(expression string) (*Filter, error) {
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling filter expression: %w", err)
	}
	return &Filter{source: expression, program: program}, nil
}

// Match reports whether the parameter passes the filter. Evaluation errors
// count as no-match with a warning.
func (f *Filter) Match(p core.Parameter) bool {
	if f == nil {
		return true
	}
	out, err := expr.Run(f.program, Env{Parameter: p})
	if err != nil {
		log.Warn().
			Str("filter", f.source).
			Str("parameter", p.Name).
			Err(err).
			Msg("filter evaluation failed, excluding parameter")
		return false
	}
	matched, ok := out.(bool)
	return ok && matched
}

// Apply returns the parameters that pass the filter.
func (f *Filter) Apply(params []core.Parameter) []core.Parameter {
	if f == nil {
		return params
	}
	kept := make([]core.Parameter, 0, len(params))
	for _, p := range params {
		if f.Match(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
