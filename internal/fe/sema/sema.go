package sema

import (
	"github.com/dekarrin/gizzard/internal/fe/ast"
)

// Result is what the analyzer hands back: whether analysis succeeded, the
// populated context, and every accumulated fault. Callers must not advance
// to code generation unless OK is true.
type Result struct {
	OK      bool
	Context *Context
	Errors  []error
}

// Analyze runs the three passes over prog in order. Each pass is skipped if
// the prior pass produced any error; errors accumulate in a single explicit
// list shared by all passes.
func Analyze(prog ast.Program) Result {
	var errs []error
	ctx := NewContext()

	collect(ctx, prog, &errs)
	if len(errs) == 0 {
		build(ctx, prog, &errs)
	}
	if len(errs) == 0 {
		check(ctx, prog, NewScope(), &errs)
	}

	return Result{OK: len(errs) == 0, Context: ctx, Errors: errs}
}
