package ir

// UserIndex is a snapshot of reverse (use) edges for a graph: for every
// node, the list of nodes that have it as an operand. The sea-of-nodes
// representation only stores forward (operand) edges directly, so any
// pass that needs to walk a node's users first builds one of these,
// exactly the way the original's irg_walk-based collection passes rebuild
// their user lists at the start of each pass.
type UserIndex struct {
	users map[NodeID][]*Node
}

// BuildUserIndex scans every node once and inverts its operand edges.
func (g *Graph) BuildUserIndex() *UserIndex {
	idx := &UserIndex{users: make(map[NodeID][]*Node, len(g.nodes))}

	for _, n := range g.nodes {
		for _, x := range n.in {
			if x == nil {
				continue
			}

			idx.users[x.ID] = append(idx.users[x.ID], n)
		}
	}

	return idx
}

func (idx *UserIndex) Of(n *Node) []*Node {
	return idx.users[n.ID]
}

// Projs returns n's users that are Proj nodes, keyed by projection number.
// Used by the call-site rewriter to find a Call's memory/exception/result
// projections, and by the scheduler's mode_T unwrapping.
func (idx *UserIndex) Projs(n *Node) map[int]*Node {
	r := map[int]*Node{}

	for _, u := range idx.users[n.ID] {
		if u.Op != OpProj {
			continue
		}

		r[u.Proj] = u
	}

	return r
}
