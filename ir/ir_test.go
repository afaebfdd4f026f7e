package ir

import "testing"

func TestBuilderWiresCall(t *testing.T) {
	g, b := NewBuilder("f")

	callee := &Entity{Name: "g"}
	mem := g.Start

	call, memProj, resProj := g.NewCall(b, mem, callee)

	if call.Callee != callee {
		t.Errorf("expected callee to be recorded on the call node")
	}

	if memProj.Op != OpProj || memProj.Proj != 0 {
		t.Errorf("expected memory projection at index 0")
	}

	if resProj.Op != OpProj || resProj.Proj != 1 {
		t.Errorf("expected result projection at index 1")
	}

	if call.Mem() != mem {
		t.Errorf("expected call's memory input to be mem")
	}
}

func TestExchangeRewritesUsers(t *testing.T) {
	g, b := NewBuilder("f")

	callee := &Entity{Name: "g"}
	call, memProj, _ := g.NewCall(b, g.Start, callee)

	noMem := g.NoMem()

	Exchange(call.Mem(), noMem)

	if call.Mem() != noMem {
		t.Errorf("expected call's memory input to be rewired to NoMem")
	}

	_ = memProj
}

func TestUserIndexFindsProjs(t *testing.T) {
	g, b := NewBuilder("f")

	callee := &Entity{Name: "g"}
	call, memProj, resProj := g.NewCall(b, g.Start, callee)

	idx := g.BuildUserIndex()
	projs := idx.Projs(call)

	if projs[0] != memProj {
		t.Errorf("expected proj 0 to be the memory projection")
	}

	if projs[1] != resProj {
		t.Errorf("expected proj 1 to be the result projection")
	}
}

func TestNewCallCarriesControlProjections(t *testing.T) {
	g, b := NewBuilder("f")

	callee := &Entity{Name: "g"}
	call, _, _ := g.NewCall(b, g.Start, callee)

	idx := g.BuildUserIndex()
	projs := idx.Projs(call)

	exc, ok := projs[CallProjXExcept]
	if !ok || exc.Mode != ModeX {
		t.Errorf("expected a mode_X exception projection at index %d", CallProjXExcept)
	}

	reg, ok := projs[CallProjXRegular]
	if !ok || reg.Mode != ModeX {
		t.Errorf("expected a mode_X regular projection at index %d", CallProjXRegular)
	}
}

func TestClearIRGStateInvalidatesBothFlags(t *testing.T) {
	g, _ := NewBuilder("f")

	if !g.DominanceValid() || !g.LoopInfoValid() {
		t.Fatalf("a freshly built graph should start consistent")
	}

	g.ClearIRGState()

	if g.DominanceValid() || g.LoopInfoValid() {
		t.Errorf("ClearIRGState should invalidate both dominance and loop-info")
	}
}

func TestLinkTokenRejectsDoubleAcquire(t *testing.T) {
	g, _ := NewBuilder("f")

	tok := g.AcquireLink("pass-a")
	defer tok.Release()

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected a panic acquiring the link field twice")
		}
	}()

	g.AcquireLink("pass-b")
}

func TestVisitedTokenGenerationsAreIndependent(t *testing.T) {
	g, b := NewBuilder("f")
	n := g.NewNode(OpLoad, ModeT, b, g.Start)

	tok1 := g.AcquireVisited()
	tok1.Mark(n)

	if !tok1.Seen(n) {
		t.Errorf("expected n to be seen in tok1's generation")
	}

	tok2 := g.AcquireVisited()

	if tok2.Seen(n) {
		t.Errorf("a fresh generation should not see marks from the previous one")
	}
}
