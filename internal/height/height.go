// Package height provides a concrete implementation of the sched
// package's HeightOracle collaborator: per-block longest-path-to-a-leaf
// heights and ancestor/descendant reachability, computed directly over
// the ir package's operand and artificial-dependency edges.
//
// Grounded on beschedrss.c's use of an externally supplied heights_t;
// this module has no ecosystem library for it (see DESIGN.md), so it is
// implemented directly against this module's own ir package.
package height

import "github.com/nikandfor/rssopt/ir"

// Oracle is a memoizing height/reachability service. A single Oracle can
// be reused across every block and register-class pass of a graph; it
// invalidates and recomputes one block at a time.
type Oracle struct {
	heights map[*ir.Node]int
	fresh   map[*ir.Block]bool
}

func New() *Oracle {
	return &Oracle{
		heights: map[*ir.Node]int{},
		fresh:   map[*ir.Block]bool{},
	}
}

// Height returns the length of n's longest path, counted in edges, to a
// leaf of its block (a node with no in-block consumer, height 0).
// Recomputes the owning block on first use.
func (o *Oracle) Height(n *ir.Node) int {
	if n.Block == nil {
		return 0
	}

	if !o.fresh[n.Block] {
		o.RecomputeBlock(n.Block)
	}

	return o.heights[n]
}

// RecomputeBlock rebuilds height information for every node of b,
// following both real operand-consumer edges and artificial
// serialization dependencies (add_irn_dep) inserted by the register
// saturation heuristic, so a freshly added edge is reflected the next
// time Height is queried.
func (o *Oracle) RecomputeBlock(b *ir.Block) {
	if b.Graph == nil {
		return
	}

	idx := b.Graph.BuildUserIndex()

	memoizing := map[*ir.Node]bool{}

	var height func(n *ir.Node) int
	height = func(n *ir.Node) int {
		if h, ok := o.heights[n]; ok && o.fresh[b] {
			return h
		}

		if memoizing[n] {
			return 0 // cycle guard; sea-of-nodes blocks should be acyclic
		}

		memoizing[n] = true

		max := 0

		for _, u := range idx.Of(n) {
			if u.Block != b {
				continue
			}

			if h := height(u); h+1 > max {
				max = h + 1
			}
		}

		for _, m := range b.Nodes {
			for _, d := range m.Deps {
				if d == n {
					if h := height(m); h+1 > max {
						max = h + 1
					}
				}
			}
		}

		o.heights[n] = max
		memoizing[n] = false

		return max
	}

	o.fresh[b] = false

	b.MaxHeight = 0

	for _, n := range b.Nodes {
		if h := height(n); h > b.MaxHeight {
			b.MaxHeight = h
		}
	}

	o.fresh[b] = true
}

// Reachable reports whether b transitively depends on a, following
// operand edges and artificial dependency edges backward from b.
func (o *Oracle) Reachable(a, b *ir.Node) bool {
	if a == b {
		return false
	}

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
			if x != nil && walk(x) {
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
