package ir

// NoMem returns the graph's shared "no memory dependency" sentinel,
// creating it on first use. Const/pure calls are detached from the real
// memory chain by pointing their memory input at this node instead,
// matching the original's get_irg_no_mem().
func (g *Graph) NoMem() *Node {
	for _, n := range g.nodes {
		if n.Op == OpNoMem {
			return n
		}
	}

	return g.NewNode(OpNoMem, ModeM, nil)
}

// Bad returns the graph's shared Bad sentinel, creating it on first use.
func (g *Graph) Bad() *Node {
	return g.BadWithMode(ModeANY)
}

// BadWithMode returns the graph's shared Bad sentinel for mode, creating it
// on first use. The call-site rewriter needs a mode_X Bad to replace a
// removed exception control edge, matching the original's
// new_r_Bad(irg, mode).
func (g *Graph) BadWithMode(mode Mode) *Node {
	for _, n := range g.nodes {
		if n.Op == OpBad && n.Mode == mode {
			return n
		}
	}

	return g.NewNode(OpBad, mode, nil)
}

// NewBuilder starts a fresh graph with a Start block/node and an End node,
// a convenience used by tests and the demo command to assemble small
// procedures without hand-wiring every sentinel.
func NewBuilder(name string) (*Graph, *Block) {
	e := &Entity{Name: name}
	g := NewGraph(e)

	start := g.NewBlock()
	g.Start = g.NewNode(OpStart, ModeT, start)

	end := g.NewBlock(start)
	g.End = g.NewNode(OpEnd, ModeANY, end)

	return g, start
}

// Call projection numbers, matching the ones fixConstCall/fixNothrowCall
// look up through UserIndex.Projs. Grounded on libFirm's pn_Call_* enum,
// renumbered around this module's existing ModeData result slot rather
// than libFirm's own ordering.
const (
	CallProjM        = 0 // memory
	CallProjResult   = 1 // ModeData result
	CallProjXExcept  = 2 // control, taken when the callee raised
	CallProjXRegular = 3 // control, taken when the callee returned normally
)

// newCallProjs attaches the four projections every Call carries: memory,
// result, exception control and regular control. The exception/regular
// projections are discovered later through UserIndex.Projs rather than
// returned directly, since most callers never need to name them until the
// funccall rewriter goes looking.
func (g *Graph) newCallProjs(b *Block, call *Node) (memProj, resProj *Node) {
	memProj = g.NewNode(OpProj, ModeM, b, call)
	memProj.Proj = CallProjM

	resProj = g.NewNode(OpProj, ModeData, b, call)
	resProj.Proj = CallProjResult

	exceptProj := g.NewNode(OpProj, ModeX, b, call)
	exceptProj.Proj = CallProjXExcept

	regularProj := g.NewNode(OpProj, ModeX, b, call)
	regularProj.Proj = CallProjXRegular

	return memProj, resProj
}

// NewJmp appends an unconditional jump rooted in block b, with no control
// predecessor recorded (matching the original's new_r_Jmp(block), which
// takes only the target block). Used by the call-site rewriter to replace
// a Call's regular-exit projection once it has been detached from the
// graph's real control flow.
func (g *Graph) NewJmp(b *Block) *Node {
	return g.NewNode(OpJmp, ModeX, b)
}

// NewCall appends a Call node in block b targeting callee, consuming mem
// and args, and returns it together with its memory and result
// projections (result mode is ModeData; callers that need a tuple of
// results can add further Proj nodes for additional slots). The call also
// carries exception and regular control projections, reachable through
// UserIndex.Projs, which the funccall rewriter rewrites once a call is
// classified nothrow.
func (g *Graph) NewCall(b *Block, mem *Node, callee *Entity, args ...*Node) (call, memProj, resProj *Node) {
	in := append([]*Node{mem}, args...)

	call = g.NewNode(OpCall, ModeT, b, in...)
	call.Callee = callee

	memProj, resProj = g.newCallProjs(b, call)

	return call, memProj, resProj
}

// NewSelCall is like NewCall but for an indirect call reached through a
// Sel node, recording the closed-world candidate callee set.
func (g *Graph) NewSelCall(b *Block, mem *Node, candidates []*Entity, args ...*Node) (sel, call, memProj, resProj *Node) {
	sel = g.NewNode(OpSel, ModeData, b)
	sel.SelCallees = candidates

	in := append([]*Node{mem, sel}, args...)

	call = g.NewNode(OpCall, ModeT, b, in...)

	memProj, resProj = g.newCallProjs(b, call)

	return sel, call, memProj, resProj
}

func (g *Graph) NewLoad(b *Block, mem, ptr *Node) (load, memProj, resProj *Node) {
	load = g.NewNode(OpLoad, ModeT, b, mem, ptr)

	memProj = g.NewNode(OpProj, ModeM, b, load)
	resProj = g.NewNode(OpProj, ModeData, b, load)
	resProj.Proj = 1

	return load, memProj, resProj
}

func (g *Graph) NewStore(b *Block, mem, ptr, val *Node) *Node {
	return g.NewNode(OpStore, ModeM, b, mem, ptr, val)
}

// NewReturn appends a Return node and, if the graph's End node already
// exists, records it as one of End's operands so that Walk (which
// traverses backward from End) actually reaches it and everything it
// depends on.
func (g *Graph) NewReturn(b *Block, mem *Node, results ...*Node) *Node {
	in := append([]*Node{mem}, results...)

	ret := g.NewNode(OpReturn, ModeX, b, in...)

	if g.End != nil {
		g.End.AddIn(ret)
	}

	return ret
}
