package funccall

import (
	"context"

	"github.com/nikandfor/rssopt/ir"
	"tlog.app/go/tlog"
)

// Options configures a whole-program OptimizeFuncCalls run.
type Options struct {
	// OnCallRewritten is called once per rewritten call site; defaults
	// to a no-op. Grounded on the original's hook_func_call.
	OnCallRewritten func(call *ir.Node)
}

// Result summarizes one OptimizeFuncCalls run for logging and tests.
type Result struct {
	Classified int
	Rewritten  int
}

// OptimizeFuncCalls runs the full pipeline over every entity in the
// closed world: pass A (nothrow/malloc), pass B (const/pure), then a
// call-site rewrite over every graph. Grounded on funccall.c's
// optimize_funccalls.
func OptimizeFuncCalls(ctx context.Context, entities []*ir.Entity, opts Options) Result {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "funccall: optimize")
	defer tr.Finish()

	solver := NewSolver(entities)
	solver.OnCallRewritten = opts.OnCallRewritten

	classified := solver.Run(ctx)

	rw := &Rewriter{OnCallRewritten: opts.OnCallRewritten}

	rewritten := 0

	for _, e := range entities {
		if e.Graph == nil {
			continue
		}

		rewritten += rw.RewriteGraph(ctx, e.Graph)
	}

	tr.Printw("funccall optimize done", "procedures", len(entities), "classified", classified, "rewritten", rewritten)

	return Result{Classified: classified, Rewritten: rewritten}
}
