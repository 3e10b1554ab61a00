package attributes

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mrzor/v8log/internal/codemap"
)

// Filter selects code records with a boolean expression.
// The zero Filter, and a nil *Filter, match every record.
type Filter struct {
	program *vm.Program
	rawExpr string
}

// NewFilter compiles exprStr. An empty string matches everything.
func NewFilter(exprStr string) (*Filter, error) {
	if exprStr == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(exprStr, expr.Env(typeCheckEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}

	return &Filter{
		program: program,
		rawExpr: exprStr,
	}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.rawExpr
}

// Match reports whether rec satisfies the filter.
func (f *Filter) Match(rec *codemap.CodeRecord) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	output, err := expr.Run(f.program, recordEnv(rec))
	if err != nil {
		return false, fmt.Errorf("evaluating filter %q: %w", f.rawExpr, err)
	}

	matched, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.rawExpr, output)
	}
	return matched, nil
}

// Select returns the records that match, in order.
func (f *Filter) Select(records []*codemap.CodeRecord) ([]*codemap.CodeRecord, error) {
	if f == nil || f.program == nil {
		return records, nil
	}

	out := make([]*codemap.CodeRecord, 0, len(records))
	for _, rec := range records {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
