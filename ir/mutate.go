package ir

// SetCallMem rewires a Call node's memory input, used by the call-site
// rewriter to detach a const/pure call from the memory chain (setting it
// to the graph's shared NoMem sentinel) or to splice it back in.
func SetCallMem(call, mem *Node) {
	if call.Op != OpCall {
		panic("ir: SetCallMem on non-Call node")
	}

	call.SetMem(mem)
}

// SetPinned changes a node's pin state, used when a const/pure call is
// freed from its block to float, matching set_irn_pinned in the original.
func SetPinned(n *Node, p PinState) {
	n.Pin = p
}

// AddDep appends an artificial scheduling-order edge from n to dep: n must
// not be scheduled before dep, with no other data or control meaning.
// Grounded on the original's add_irn_dep.
func AddDep(n, dep *Node) {
	for _, d := range n.Deps {
		if d == dep {
			return
		}
	}

	n.Deps = append(n.Deps, dep)
}
