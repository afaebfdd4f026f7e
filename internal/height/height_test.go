package height

import (
	"testing"

	"github.com/nikandfor/rssopt/ir"
)

func TestHeightGrowsAlongChain(t *testing.T) {
	g, b := ir.NewBuilder("f")

	x := g.NewNode(ir.OpSymConst, ir.ModeData, b)
	y := g.NewNode(ir.OpOther, ir.ModeData, b, x)
	z := g.NewNode(ir.OpOther, ir.ModeData, b, y)

	o := New()

	if o.Height(z) != 0 {
		t.Errorf("leaf (no consumers) should have height 0, got %d", o.Height(z))
	}

	if o.Height(y) != 1 {
		t.Errorf("y feeds z only, expected height 1, got %d", o.Height(y))
	}

	if o.Height(x) != 2 {
		t.Errorf("x feeds y feeds z, expected height 2, got %d", o.Height(x))
	}
}

func TestReachableFollowsOperandsBackward(t *testing.T) {
	g, b := ir.NewBuilder("f")

	x := g.NewNode(ir.OpSymConst, ir.ModeData, b)
	y := g.NewNode(ir.OpOther, ir.ModeData, b, x)

	o := New()

	if !o.Reachable(x, y) {
		t.Errorf("y depends on x, expected Reachable(x, y) = true")
	}

	if o.Reachable(y, x) {
		t.Errorf("x does not depend on y, expected Reachable(y, x) = false")
	}
}

func TestRecomputeBlockPicksUpNewDeps(t *testing.T) {
	g, b := ir.NewBuilder("f")

	x := g.NewNode(ir.OpSymConst, ir.ModeData, b)
	y := g.NewNode(ir.OpSymConst, ir.ModeData, b)

	o := New()

	if o.Reachable(x, y) {
		t.Errorf("x and y are independent before any dependency edge")
	}

	ir.AddDep(y, x)
	o.RecomputeBlock(b)

	if !o.Reachable(x, y) {
		t.Errorf("after AddDep(y, x), y should be reachable from x")
	}
}
