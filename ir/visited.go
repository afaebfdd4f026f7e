package ir

// VisitedToken is a scoped "visited" generation: instead of resetting an
// O(n) visited bit across every node between passes, each node stamps
// itself with the generation counter it was last visited at, and a new
// token simply bumps the counter. Grounded on the original's generalized
// use of visited-flag fields bumped per walk rather than cleared per walk.
type VisitedToken struct {
	g   *Graph
	gen uint64
}

// AcquireVisited starts a fresh visited generation for g.
func (g *Graph) AcquireVisited() VisitedToken {
	g.generation++

	return VisitedToken{g: g, gen: g.generation}
}

// Seen reports whether n was already marked in this token's generation.
func (t VisitedToken) Seen(n *Node) bool {
	return n.visited == t.gen
}

// Mark stamps n as visited in this token's generation.
func (t VisitedToken) Mark(n *Node) {
	n.visited = t.gen
}

// Release is a no-op; it exists so callers can `defer tok.Release()` for
// symmetry with LinkToken, and so a future implementation that needs to
// reclaim generation space has a place to do it.
func (t VisitedToken) Release() {}
