package sched

import (
	"context"
	"testing"

	"github.com/nikandfor/rssopt/ir"
)

const gpClass RegClass = "gp"

type fakeArch struct {
	numRegs int
}

func (a *fakeArch) Classes() []RegClass             { return []RegClass{gpClass} }
func (a *fakeArch) ClassOf(n *ir.Node) RegClass     { return gpClass }
func (a *fakeArch) NumRegisters(cls RegClass) int   { return a.numRegs }

type fakeABI struct{}

func (fakeABI) NumIgnoreRegisters(cls RegClass) int { return 0 }

// fakeHeight computes height/reachability directly from the IR operand
// graph, good enough for small hand-built test graphs: reachable(a, b)
// is true when b transitively depends on a through its operands.
type fakeHeight struct{}

func (fakeHeight) Height(n *ir.Node) int { return len(n.In()) }

func (fakeHeight) Reachable(a, b *ir.Node) bool {
	seen := map[*ir.Node]bool{}

	var walk func(n *ir.Node) bool
	walk = func(n *ir.Node) bool {
		if n == a {
			return true
		}

		if seen[n] {
			return false
		}

		seen[n] = true

		for _, x := range n.In() {
			if walk(x) {
				return true
			}
		}

		for _, x := range n.Deps {
			if walk(x) {
				return true
			}
		}

		return false
	}

	return walk(b)
}

func (fakeHeight) RecomputeBlock(b *ir.Block) {}

func buildDiamondBlock() (*ir.Graph, *ir.Block, *ir.Node, *ir.Node, *ir.Node) {
	g, start := ir.NewBuilder("f")

	x := g.NewNode(ir.OpSymConst, ir.ModeData, start)
	y := g.NewNode(ir.OpSymConst, ir.ModeData, start)
	z := g.NewNode(ir.OpOther, ir.ModeData, start, x, y)

	return g, start, x, y, z
}

func TestCollectNodeInfoMarksLiveOut(t *testing.T) {
	g, b, x, y, z := buildDiamondBlock()

	idx := g.BuildUserIndex()
	p := newPass(Options{Arch: &fakeArch{numRegs: 2}, ABI: fakeABI{}, Height: fakeHeight{}}, b, gpClass, idx)
	p.collectNodeInfo()

	zi := p.infoOf(z)
	if !zi.liveOut {
		t.Errorf("z has no in-block consumer and should be liveOut")
	}

	xi, yi := p.infoOf(x), p.infoOf(y)
	if len(xi.consumers) != 1 || xi.consumers[0] != zi {
		t.Errorf("x should be consumed only by z")
	}

	if len(yi.consumers) != 1 || yi.consumers[0] != zi {
		t.Errorf("y should be consumed only by z")
	}
}

func TestPKillSetFindsSharedKillerCandidates(t *testing.T) {
	g, b, x, y, z := buildDiamondBlock()

	idx := g.BuildUserIndex()
	p := newPass(Options{Arch: &fakeArch{numRegs: 2}, ABI: fakeABI{}, Height: fakeHeight{}}, b, gpClass, idx)
	p.collectNodeInfo()

	edges := p.computePKillSet()

	if len(edges) != 2 {
		t.Fatalf("expected 2 kill edges (z->x, z->y), got %d", len(edges))
	}

	xi, yi, zi := p.infoOf(x), p.infoOf(y), p.infoOf(z)

	found := map[*nodeInfo]bool{}
	for _, e := range edges {
		if e.killer != zi {
			t.Errorf("expected every kill edge's killer to be z, got %v", e.killer.irn)
		}

		found[e.value] = true
	}

	if !found[xi] || !found[yi] {
		t.Errorf("expected both x and y to be candidate values z can kill")
	}
}

func TestKillingFunctionAssignsZAsKiller(t *testing.T) {
	g, b, x, y, z := buildDiamondBlock()

	idx := g.BuildUserIndex()
	p := newPass(Options{Arch: &fakeArch{numRegs: 2}, ABI: fakeABI{}, Height: fakeHeight{}}, b, gpClass, idx)
	p.collectNodeInfo()

	edges := p.computePKillSet()
	p.computeBipartiteDecomposition(edges)
	p.computeKillingFunction()

	zi := p.infoOf(z)
	xi, yi := p.infoOf(x), p.infoOf(y)

	if xi.killer != zi && yi.killer != zi {
		t.Errorf("expected z to become the killer of x or y, got x.killer=%v y.killer=%v", xi.killer, yi.killer)
	}
}

func TestMaximalAntichainMatchesChainCount(t *testing.T) {
	g, b, _, _, _ := buildDiamondBlock()

	idx := g.BuildUserIndex()
	p := newPass(Options{Arch: &fakeArch{numRegs: 2}, ABI: fakeABI{}, Height: fakeHeight{}}, b, gpClass, idx)
	p.collectNodeInfo()

	edges := p.computePKillSet()
	p.computeBipartiteDecomposition(edges)
	p.computeKillingFunction()
	p.computeDVG()
	p.buildDVGPKillerList()

	antichain := p.computeMaximalAntichain()

	if len(antichain) != len(p.dvg.chains) {
		t.Errorf("antichain size should equal chain count under the chain-only DVG, got %d antichain vs %d chains", len(antichain), len(p.dvg.chains))
	}
}

func TestSchedulePreparationRunsEndToEnd(t *testing.T) {
	g, _, _, _, _ := buildDiamondBlock()

	opts := Options{Arch: &fakeArch{numRegs: 2}, ABI: fakeABI{}, Height: fakeHeight{}}

	results := SchedulePreparation(context.Background(), g, opts)

	if len(results) != len(g.Blocks) {
		t.Errorf("expected one result per block, got %d results for %d blocks", len(results), len(g.Blocks))
	}
}
