package funccall

import (
	"context"

	"github.com/nikandfor/rssopt/ir"
	"tlog.app/go/tlog"
)

// Rewriter specializes call sites whose callee set was classified by a
// Solver, detaching const/pure calls from the memory chain and nothrow
// calls from the exception chain. Grounded on funccall.c's two list-
// collect-then-fix passes (collect_const_and_pure_calls /
// fix_const_call_lists, collect_nothrow_calls / fix_nothrow_call_list).
type Rewriter struct {
	OnCallRewritten func(call *ir.Node)
}

// RewriteGraph rewrites every call site in g whose callee(s) are
// classified const/pure and/or nothrow, and reports how many were
// changed.
func (rw *Rewriter) RewriteGraph(ctx context.Context, g *ir.Graph) (rewritten int) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "funccall: rewrite graph")
	defer tr.Finish()

	idx := g.BuildUserIndex()

	var constPure, nothrow []*ir.Node

	g.Walk(func(n *ir.Node) {
		if n.Op != ir.OpCall {
			return
		}

		callees, unknown := calleesOf(n)
		if unknown || len(callees) == 0 {
			return
		}

		cp := true
		nt := true

		for _, c := range callees {
			if !(c.Properties.IsConst() || c.Properties.IsPure()) {
				cp = false
			}

			if !c.Properties.IsNoThrow() {
				nt = false
			}
		}

		if cp {
			constPure = append(constPure, n)
		}

		if nt {
			nothrow = append(nothrow, n)
		}
	})

	for _, call := range constPure {
		rw.fixConstCall(g, call, idx)
		rewritten++
	}

	for _, call := range nothrow {
		if rw.fixNothrowCall(g, call, idx) {
			rewritten++
		}
	}

	if tr.If("rewrite") {
		tr.Printw("funccall rewrote call sites", "const_pure", len(constPure), "nothrow", len(nothrow))
	}

	return rewritten
}

// fixConstCall detaches call from the memory chain and from its control
// exits entirely: the memory Proj splices to call's real memory
// predecessor (skipped if that would be a self-edge, per
// funccall.c:220-222's proj != mem guard), the exception Proj becomes a
// mode_X Bad, and the regular-exit Proj becomes a Jmp rooted in call's own
// block, matching funccall.c:207-244 (pn_Call_X_except -> new_r_Bad,
// pn_Call_X_regular -> new_r_Jmp). The call's own memory input becomes the
// shared NoMem sentinel, freeing it to float. Grounded on
// fix_const_call_lists.
func (rw *Rewriter) fixConstCall(g *ir.Graph, call *ir.Node, idx *ir.UserIndex) {
	projs := idx.Projs(call)

	realMem := call.Mem()

	if memProj, ok := projs[ir.CallProjM]; ok && memProj != realMem {
		ir.Exchange(memProj, realMem)
	}

	if rw.removeExceptProj(g, projs) {
		g.ClearIRGState()
	}

	if regProj, ok := projs[ir.CallProjXRegular]; ok {
		ir.Exchange(regProj, g.NewJmp(call.Block))
	}

	ir.SetCallMem(call, g.NoMem())
	ir.SetPinned(call, ir.PinnedNo)

	if rw.OnCallRewritten != nil {
		rw.OnCallRewritten(call)
	}
}

// fixNothrowCall removes call's exception-edge projection (the Proj that
// would carry control to a handler on throw), splicing any user of that
// edge to Bad, since a nothrow callee is statically known never to take
// it. The memory chain and regular control flow are left exactly as they
// were, unlike fixConstCall. Reports whether an exception edge was
// removed; a call with none left (for example one fixConstCall already
// rewrote) is not touched and does not fire OnCallRewritten. Grounded on
// fix_nothrow_call_list.
func (rw *Rewriter) fixNothrowCall(g *ir.Graph, call *ir.Node, idx *ir.UserIndex) bool {
	projs := idx.Projs(call)

	if !rw.removeExceptProj(g, projs) {
		return false
	}

	g.ClearIRGState()

	if rw.OnCallRewritten != nil {
		rw.OnCallRewritten(call)
	}

	return true
}

// removeExceptProj replaces call's exception-control projection, if any
// Proj still stands for it, with a mode_X Bad, reporting whether an edge
// was actually removed so the caller can invalidate dominance and
// loop-info consistency, matching the original's
// clear_irg_state(irg, {dominance, loop-info}) after removing an exception
// edge.
func (rw *Rewriter) removeExceptProj(g *ir.Graph, projs map[int]*ir.Node) bool {
	excProj, ok := projs[ir.CallProjXExcept]
	if !ok {
		return false
	}

	ir.Exchange(excProj, g.BadWithMode(ir.ModeX))

	return true
}
