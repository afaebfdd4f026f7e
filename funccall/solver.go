// Package funccall implements the whole-program procedure property
// solver and the call-site rewriter that specializes calls to procedures
// the solver classified as const, pure, nothrow or malloc.
//
// Grounded on libFirm's ir/opt/funccall.c (optimize_funccalls and its
// helpers): a two-pass fixed-point analysis over the call graph, followed
// by a rewrite of every call site reached.
package funccall

import (
	"context"

	"github.com/nikandfor/rssopt/bitset"
	"github.com/nikandfor/rssopt/ir"
	"github.com/nikandfor/rssopt/prop"
	"tlog.app/go/tlog"
)

// Solver runs the two-pass whole-program analysis across a fixed set of
// procedures, indexed 0..n-1 by Entity.Index.
type Solver struct {
	entities []*ir.Entity

	ready bitset.Bits[int]
	busy  bitset.Bits[int]

	// OnCallRewritten is carried alongside the solver for callers that
	// configure both halves together; the Solver itself never calls it.
	// The hook that fires per rewritten call site is Rewriter's own
	// OnCallRewritten. Grounded on the original's hook_func_call.
	OnCallRewritten func(call *ir.Node)
}

func NewSolver(entities []*ir.Entity) *Solver {
	for i, e := range entities {
		e.Index = i
	}

	return &Solver{
		entities: entities,
		ready:    bitset.MakeBits[int](0),
		busy:     bitset.MakeBits[int](0),
	}
}

func (s *Solver) isReady(e *ir.Entity) bool { return s.ready.IsSet(e.Index) }
func (s *Solver) isBusy(e *ir.Entity) bool  { return s.busy.IsSet(e.Index) }

func (s *Solver) setBusy(e *ir.Entity)   { s.busy.Set(e.Index) }
func (s *Solver) clearBusy(e *ir.Entity) { s.busy.Clear(e.Index) }
func (s *Solver) setReady(e *ir.Entity)  { s.ready.Set(e.Index) }

// Run performs both passes over every entity in order and returns the
// number of entities whose properties changed from the lattice's
// pessimistic floor, for logging.
func (s *Solver) Run(ctx context.Context) (classified int) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "funccall: solve")
	defer tr.Finish()

	s.ready = bitset.MakeBits[int](0)
	s.busy = bitset.MakeBits[int](0)

	for _, e := range s.entities {
		s.checkNothrowOrMalloc(e)
	}

	if tr.If("pass_a") {
		tr.Printw("pass A done", "ready", s.ready, "busy", s.busy)
	}

	s.ready = bitset.MakeBits[int](0)
	s.busy = bitset.MakeBits[int](0)

	for _, e := range s.entities {
		s.checkConstOrPure(e)
	}

	if tr.If("pass_b") {
		tr.Printw("pass B done", "ready", s.ready, "busy", s.busy)
	}

	for _, e := range s.entities {
		e.Properties = e.Properties.Commit()

		if e.Properties != prop.None {
			classified++
		}
	}

	if tr.If("solve") {
		tr.Printw("funccall classified", "entities", len(s.entities), "classified", classified)
	}

	return classified
}

// checkNothrowOrMalloc is pass A: walks a procedure's Return node back
// through its memory/exception edges and its call sites, deciding
// whether every path out either can't throw, or the only value returned
// is a pointer the procedure itself fresh-allocated and never aliased
// anywhere. Grounded on check_nothrow_or_malloc.
func (s *Solver) checkNothrowOrMalloc(e *ir.Entity) prop.Properties {
	if s.isReady(e) {
		return e.Properties & (prop.NoThrow | prop.Malloc | prop.Tentative)
	}

	if s.isBusy(e) {
		// Self-recursive edge: optimistically contributes nothing to
		// disprove, but taints the result as tentative until the
		// outer call returns.
		return prop.NoThrow | prop.Malloc | prop.Tentative
	}

	s.setBusy(e)
	defer s.clearBusy(e)

	acc := prop.NoThrow | prop.Malloc

	g := e.Graph
	if g == nil || g.End == nil {
		s.setReady(e)
		e.Properties = prop.Update(e.Properties, acc)
		return acc
	}

	idx := g.BuildUserIndex()

	sawReturn := false
	mallocOK := true

	g.Walk(func(n *ir.Node) {
		switch n.Op {
		case ir.OpCall:
			acc = prop.Update(acc, s.callSiteNothrowMalloc(e, n))
		case ir.OpReturn:
			sawReturn = true
			if !s.isMallocReturn(e, n, idx) {
				mallocOK = false
			}
		}
	})

	if !sawReturn || !mallocOK {
		acc &^= prop.Malloc
	}

	s.setReady(e)
	e.Properties |= acc

	return acc
}

func (s *Solver) callSiteNothrowMalloc(caller *ir.Entity, call *ir.Node) prop.Properties {
	callees, unknown := calleesOf(call)
	if unknown {
		return prop.None
	}

	acc := prop.NoThrow | prop.Malloc

	for _, callee := range callees {
		if callee == caller {
			continue
		}

		acc = prop.Update(acc, s.checkNothrowOrMalloc(callee))
	}

	// A call site is never itself a malloc result unless the entire
	// procedure is a direct passthrough of one call's result; that is
	// checked separately by isMallocReturn, so here only nothrow
	// propagates from a plain call.
	acc &^= prop.Malloc

	return acc
}

// isMallocReturn reports whether ret's returned value is exactly the
// result of a single malloc-classified call (possibly this procedure's
// own fresh Alloc) and that result is never stored anywhere else,
// grounded on is_malloc_call_result + is_stored/check_stored_result.
func (s *Solver) isMallocReturn(e *ir.Entity, ret *ir.Node, idx *ir.UserIndex) bool {
	in := ret.In()
	if len(in) < 2 {
		return false
	}

	val := in[1]

	switch val.Op {
	case ir.OpAlloc:
		return !isStored(val, val, idx, map[ir.NodeID]bool{})
	case ir.OpProj:
		callIn := val.In()
		if len(callIn) == 0 || callIn[0].Op != ir.OpCall {
			return false
		}

		call := callIn[0]

		callees, unknown := calleesOf(call)
		if unknown {
			return false
		}

		for _, callee := range callees {
			if callee != e && !s.checkNothrowOrMalloc(callee).IsMalloc() {
				return false
			}
		}

		return !isStored(val, val, idx, map[ir.NodeID]bool{})
	default:
		return false
	}
}

// checkConstOrPure is pass B: walks a procedure's memory operations
// backward from every Return/End reachable memory Proj, classifying it
// const if it touches no memory at all and pure if its only memory
// operations are Loads; any Store or Alloc rules out both.
// Grounded on check_const_or_pure_function / follow_mem.
func (s *Solver) checkConstOrPure(e *ir.Entity) prop.Properties {
	if s.isReady(e) {
		return e.Properties & (prop.Const | prop.Pure | prop.HasLoop | prop.Tentative)
	}

	if s.isBusy(e) {
		return prop.Const | prop.Pure | prop.Tentative
	}

	s.setBusy(e)
	defer s.clearBusy(e)

	acc := prop.Const | prop.Pure

	g := e.Graph
	if g == nil {
		s.setReady(e)
		e.Properties = prop.Update(e.Properties, acc)
		return acc
	}

	if hasCompoundParam(e) {
		acc = prop.None
	} else {
		g.Walk(func(n *ir.Node) {
			switch n.Op {
			case ir.OpLoad:
				acc &^= prop.Const
			case ir.OpStore, ir.OpAlloc:
				acc = prop.None
			case ir.OpCall:
				acc = prop.Update(acc, s.callSiteConstPure(e, n))
			}
		})
	}

	if acc.IsConst() && checkForPossibleEndlessLoops(e) {
		acc |= prop.HasLoop
	}

	s.setReady(e)
	e.Properties |= acc

	return acc
}

func (s *Solver) callSiteConstPure(caller *ir.Entity, call *ir.Node) prop.Properties {
	callees, unknown := calleesOf(call)
	if unknown {
		return prop.None
	}

	acc := prop.Const | prop.Pure
	orHasLoop := prop.None

	for _, callee := range callees {
		if callee == caller {
			continue
		}

		cp := s.checkConstOrPure(callee)
		acc = prop.Update(acc, cp)
		orHasLoop |= cp & prop.HasLoop
	}

	return acc | orHasLoop
}

func checkForPossibleEndlessLoops(e *ir.Entity) bool {
	if e.Graph == nil {
		return false
	}

	return e.Graph.RootLoop.HasOuterLoop()
}

// hasCompoundParam reports whether e takes or returns a compound
// (struct/array) value by value, the §4.2 precondition that disqualifies a
// procedure from const/pure regardless of what its body does. A nil Type
// means the caller never declared a signature shape, so it is treated as
// having none.
func hasCompoundParam(e *ir.Entity) bool {
	return e.Type != nil && (e.Type.HasCompoundParm || e.Type.HasCompoundRes)
}

// calleesOf returns the statically known callee set for a call node:
// either the single direct Callee, or the closed-world candidate set
// recorded on a Sel node feeding it. unknown is true when neither is
// available, matching the original's unknown_entity bailout.
func calleesOf(call *ir.Node) (callees []*ir.Entity, unknown bool) {
	if call.Callee != nil {
		return []*ir.Entity{call.Callee}, false
	}

	for _, x := range call.In() {
		if x.Op == ir.OpSel {
			if len(x.SelCallees) == 0 {
				return nil, true
			}

			for _, c := range x.SelCallees {
				if c.Unknown {
					return nil, true
				}
			}

			return x.SelCallees, false
		}
	}

	return nil, true
}

// isStored is the recursive alias check: does val ever end up somewhere
// other than "returned and discarded"? Grounded on funccall.c's
// is_stored: Return/Load/Cmp are safe uses, Store-as-value and unknown
// calls alias it, Sel/Cast/Confirm recurse transparently.
func isStored(root, n *ir.Node, idx *ir.UserIndex, seen map[ir.NodeID]bool) bool {
	if seen[n.ID] {
		return false
	}

	seen[n.ID] = true

	for _, u := range idx.Of(n) {
		switch u.Op {
		case ir.OpReturn, ir.OpCmp:
			continue
		case ir.OpLoad:
			continue
		case ir.OpStore:
			in := u.In()
			if len(in) >= 3 && in[2] == n {
				return true // stored as the value, not just addressed through
			}
		case ir.OpSel, ir.OpCast, ir.OpConfirm:
			if isStored(root, u, idx, seen) {
				return true
			}
		case ir.OpCall:
			callees, unknown := calleesOf(u)
			if unknown {
				return true
			}

			for i, a := range u.In() {
				if a != n {
					continue
				}

				for _, callee := range callees {
					if callee.ParamAccessOf(i-1)&ir.PtrAccessStore != 0 {
						return true
					}
				}
			}
		default:
			return true
		}
	}

	return false
}
