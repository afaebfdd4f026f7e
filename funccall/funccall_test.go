package funccall

import (
	"context"
	"testing"

	"github.com/nikandfor/rssopt/ir"
	"github.com/nikandfor/rssopt/prop"
)

func buildLeaf() *ir.Entity {
	g, b := ir.NewBuilder("leaf")
	g.NewReturn(b, g.Start)

	return g.Entity
}

func buildCaller(leaf *ir.Entity) *ir.Entity {
	g, b := ir.NewBuilder("caller")

	call, memProj, _ := g.NewCall(b, g.Start, leaf)
	g.NewReturn(b, memProj)

	_ = call

	return g.Entity
}

func TestSolverClassifiesLeafConstPureNothrow(t *testing.T) {
	leaf := buildLeaf()
	caller := buildCaller(leaf)

	s := NewSolver([]*ir.Entity{leaf, caller})
	s.Run(context.Background())

	if !leaf.Properties.IsConst() {
		t.Errorf("leaf should be const, got %v", leaf.Properties)
	}

	if !leaf.Properties.IsPure() {
		t.Errorf("leaf should be pure, got %v", leaf.Properties)
	}

	if !leaf.Properties.IsNoThrow() {
		t.Errorf("leaf should be nothrow, got %v", leaf.Properties)
	}
}

func TestSolverPropagatesConstThroughCaller(t *testing.T) {
	leaf := buildLeaf()
	caller := buildCaller(leaf)

	s := NewSolver([]*ir.Entity{leaf, caller})
	s.Run(context.Background())

	if !caller.Properties.IsConst() {
		t.Errorf("caller should inherit const from its only call, got %v", caller.Properties)
	}
}

func TestSolverStoreDisqualifiesConstAndPure(t *testing.T) {
	g, b := ir.NewBuilder("writer")

	ptr := g.NewNode(ir.OpSymConst, ir.ModeData, b)
	val := g.NewNode(ir.OpSymConst, ir.ModeData, b)
	mem := g.NewStore(b, g.Start, ptr, val)
	g.NewReturn(b, mem)

	s := NewSolver([]*ir.Entity{g.Entity})
	s.Run(context.Background())

	if g.Entity.Properties.IsConst() || g.Entity.Properties.IsPure() {
		t.Errorf("a procedure that stores to memory must not be const or pure, got %v", g.Entity.Properties)
	}
}

func TestCompoundParamDisqualifiesConstAndPure(t *testing.T) {
	g, b := ir.NewBuilder("identity")
	g.NewReturn(b, g.Start)
	g.Entity.Type = &ir.Type{NumParams: 1, HasCompoundParm: true}

	s := NewSolver([]*ir.Entity{g.Entity})
	s.Run(context.Background())

	if g.Entity.Properties.IsConst() || g.Entity.Properties.IsPure() {
		t.Errorf("a procedure taking a compound parameter must not be const or pure, got %v", g.Entity.Properties)
	}
}

func TestRewriterDetachesConstCallFromMemoryChain(t *testing.T) {
	leaf := buildLeaf()

	gCaller, b := ir.NewBuilder("caller")
	call, memProj, _ := gCaller.NewCall(b, gCaller.Start, leaf)
	ret := gCaller.NewReturn(b, memProj)

	s := NewSolver([]*ir.Entity{leaf, gCaller.Entity})
	s.Run(context.Background())

	rewrittenCalls := 0

	rw := &Rewriter{OnCallRewritten: func(c *ir.Node) { rewrittenCalls++ }}
	rw.RewriteGraph(context.Background(), gCaller)

	if ret.Mem() == memProj {
		t.Errorf("return should no longer read the call's memory projection directly")
	}

	if call.Mem() == gCaller.Start {
		t.Errorf("call's memory input should have been redirected to NoMem, not left on Start")
	}

	if rewrittenCalls == 0 {
		t.Errorf("expected OnCallRewritten to fire at least once")
	}
}

func TestRewriteInvalidatesDominanceOnExceptionRemoval(t *testing.T) {
	gLeaf, bLeaf := ir.NewBuilder("writer")
	ptr := gLeaf.NewNode(ir.OpSymConst, ir.ModeData, bLeaf)
	val := gLeaf.NewNode(ir.OpSymConst, ir.ModeData, bLeaf)
	mem := gLeaf.NewStore(bLeaf, gLeaf.Start, ptr, val)
	gLeaf.NewReturn(bLeaf, mem)
	leaf := gLeaf.Entity

	gCaller, b := ir.NewBuilder("caller")
	_, memProj, _ := gCaller.NewCall(b, gCaller.Start, leaf)
	gCaller.NewReturn(b, memProj)

	s := NewSolver([]*ir.Entity{leaf, gCaller.Entity})
	s.Run(context.Background())

	if !leaf.Properties.IsNoThrow() {
		t.Fatalf("a procedure that only stores to memory should still be nothrow, got %v", leaf.Properties)
	}

	if leaf.Properties.IsConst() || leaf.Properties.IsPure() {
		t.Fatalf("a procedure that stores to memory must not be const or pure, got %v", leaf.Properties)
	}

	if !gCaller.DominanceValid() || !gCaller.LoopInfoValid() {
		t.Fatalf("a freshly built graph should start with valid dominance/loop-info")
	}

	rw := &Rewriter{}
	rw.RewriteGraph(context.Background(), gCaller)

	if gCaller.DominanceValid() || gCaller.LoopInfoValid() {
		t.Errorf("removing the call's exception edge should invalidate dominance and loop-info consistency")
	}
}

func TestOptimizeFuncCallsEndToEnd(t *testing.T) {
	leaf := buildLeaf()
	caller := buildCaller(leaf)

	res := OptimizeFuncCalls(context.Background(), []*ir.Entity{leaf, caller}, Options{})

	if res.Classified == 0 {
		t.Errorf("expected at least one procedure to be classified")
	}

	if leaf.Properties.Commit()&prop.Const == 0 {
		t.Errorf("leaf should remain const after the full pipeline")
	}
}
