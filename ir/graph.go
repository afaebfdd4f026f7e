package ir

import "tlog.app/go/loc"

// Graph is one procedure's IR: its nodes, blocks, and the distinguished
// Start/End nodes.
type Graph struct {
	Entity *Entity

	Start *Node
	End   *Node

	Blocks []*Block

	// RootLoop is set by the external loop analyzer (out of scope for
	// this module); check_for_possible_endless_loops only ever asks
	// whether the root loop has a nested loop inside it.
	RootLoop *Loop

	nodes  []*Node
	nextID NodeID

	generation uint64

	linkHeld bool
	linkBy   string
	linkAt   loc.PC

	domValid      bool
	loopInfoValid bool
}

func NewGraph(e *Entity) *Graph {
	g := &Graph{Entity: e, domValid: true, loopInfoValid: true}

	if e != nil {
		e.Graph = g
	}

	return g
}

// ClearIRGState invalidates the graph's cached dominance and loop-info
// consistency flags, grounded on the original's
// clear_irg_state(irg, {dominance, loop-info}), called by the call-site
// rewriter whenever it removes an exception control edge.
func (g *Graph) ClearIRGState() {
	g.domValid = false
	g.loopInfoValid = false
}

// DominanceValid and LoopInfoValid report the current consistency flags,
// exposed for tests asserting that a rewrite invalidated them.
func (g *Graph) DominanceValid() bool { return g.domValid }
func (g *Graph) LoopInfoValid() bool  { return g.loopInfoValid }

// NewNode allocates a node owned by g. Block may be nil for Start/End/Bad.
func (g *Graph) NewNode(op Opcode, mode Mode, block *Block, in ...*Node) *Node {
	n := &Node{
		ID:    g.nextID,
		Op:    op,
		Mode:  mode,
		Graph: g,
		in:    append([]*Node(nil), in...),
	}

	g.nextID++
	g.nodes = append(g.nodes, n)

	if block != nil {
		block.AddNode(n)
	}

	return n
}

func (g *Graph) NewBlock(preds ...*Block) *Block {
	b := &Block{
		ID:    len(g.Blocks),
		Graph: g,
		Preds: append([]*Block(nil), preds...),
	}

	g.Blocks = append(g.Blocks, b)

	return b
}

// Nodes returns every live node allocated in the graph, in creation order.
// Nodes exchanged away (Op == OpBad as a result of Exchange) are still
// present but carry no meaningful operands.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Walk visits every node reachable backward from End via operand edges,
// each node exactly once, grounded on the original's irg_walk-over-mem-
// and-data-edges traversal used throughout funccall.c and beschedrss.c.
func (g *Graph) Walk(f func(*Node)) {
	tok := g.AcquireVisited()
	defer tok.Release()

	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || tok.Seen(n) {
			return
		}

		tok.Mark(n)

		for _, x := range n.in {
			walk(x)
		}

		f(n)
	}

	walk(g.End)
}
