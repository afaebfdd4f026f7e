package ir

// NodeID is a small dense index into a Graph's node table, used as the key
// for per-node bitsets and visited stamps.
type NodeID int

// Node is one sea-of-nodes IR node. Concrete per-opcode payloads that this
// module's analyses need (call target, projection number, ...) live
// directly on the struct rather than behind a type switch, since the set
// of opcodes this module cares about is small and fixed.
type Node struct {
	ID    NodeID
	Op    Opcode
	Mode  Mode
	Block *Block
	Graph *Graph

	in []*Node

	Pin PinState

	// Proj holds the projection number for OpProj nodes (which memory,
	// exception, or result slot of a tuple this node picks out).
	Proj int

	// Callee holds the statically known callee for a direct OpCall, or
	// nil when the call target is only known through a Sel (indirect
	// call through an entry in a method table).
	Callee *Entity

	// SelCallees holds the closed-world candidate set for an indirect
	// call reached through OpSel; empty means "unknown, be
	// conservative".
	SelCallees []*Entity

	// Deps holds artificial scheduling-order edges inserted by the
	// register-saturation serialization heuristic (add_irn_dep in the
	// original): edges with no data or control meaning, only "schedule
	// no earlier than".
	Deps []*Node

	// scratch link field, see link.go. Exactly one pass may hold a
	// reservation on it at a time.
	link *Node

	visited uint64
}

// In returns the node's operand list. Index 0 is conventionally the memory
// or control predecessor where the opcode has one.
func (n *Node) In() []*Node { return n.in }

func (n *Node) SetIn(i int, x *Node) { n.in[i] = x }

func (n *Node) AddIn(x *Node) { n.in = append(n.in, x) }

// Mem returns the node's memory predecessor, for opcodes that have one
// (Load, Store, Call, Proj-of-M, Phi-of-M, Sync). Panics if called on a
// node with no memory input, matching the original's unchecked
// get_memop_mem.
func (n *Node) Mem() *Node {
	if len(n.in) == 0 {
		panic("ir: Mem on node with no operands")
	}

	return n.in[0]
}

func (n *Node) SetMem(m *Node) {
	if len(n.in) == 0 {
		n.in = []*Node{m}
		return
	}

	n.in[0] = m
}

// IsMemOp reports whether n either produces a memory value (Mode M) or
// consumes one as its first operand.
func (n *Node) IsMemOp() bool {
	if n.Mode == ModeM {
		return true
	}

	switch n.Op {
	case OpLoad, OpStore, OpCall, OpSync:
		return true
	default:
		return false
	}
}

// Exchange replaces every use of old with repl throughout the graph and
// marks old dead. Grounded on the original's exchange(): callers never
// need to patch up users by hand.
func Exchange(old, repl *Node) {
	if old == repl {
		return
	}

	g := old.Graph
	for _, n := range g.nodes {
		for i, x := range n.in {
			if x == old {
				n.in[i] = repl
			}
		}
	}

	old.Op = OpBad
}
