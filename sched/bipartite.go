package sched

import (
	"sort"

	"nikand.dev/go/heap"
)

// cbc is one connected bipartite component of the PKG: a set of
// candidate killer nodes (parents) on one side and a set of killable
// values (children) on the other, connected by kill edges. Grounded on
// beschedrss.c's cbc_t.
type cbc struct {
	parents  map[*nodeInfo]bool
	children map[*nodeInfo]bool
	edges    []killEdge

	queue *heap.Heap[rankedChild]
}

type unionFind struct {
	parent map[*nodeInfo]*nodeInfo
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[*nodeInfo]*nodeInfo{}}
}

func (u *unionFind) find(x *nodeInfo) *nodeInfo {
	p, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}

	if p == x {
		return x
	}

	root := u.find(p)
	u.parent[x] = root

	return root
}

func (u *unionFind) union(a, b *nodeInfo) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// computeBipartiteDecomposition groups the PKG's kill edges into
// connected bipartite components, then enforces bipartiteness: a node
// that ended up on both sides (it kills something and is itself killed,
// within the same component) is dropped from the parent side, since a
// value only ever needs one role per component to seed the matching
// problem. Grounded on compute_bipartite_decomposition.
func (p *pass) computeBipartiteDecomposition(edges []killEdge) []*cbc {
	uf := newUnionFind()

	for _, e := range edges {
		uf.union(e.killer, e.value)
	}

	groups := map[*nodeInfo]*cbc{}

	for _, e := range edges {
		root := uf.find(e.killer)

		g, ok := groups[root]
		if !ok {
			g = &cbc{parents: map[*nodeInfo]bool{}, children: map[*nodeInfo]bool{}}
			groups[root] = g
		}

		g.parents[e.killer] = true
		g.children[e.value] = true
		g.edges = append(g.edges, e)
	}

	var out []*cbc

	for _, g := range groups {
		for n := range g.parents {
			if g.children[n] {
				delete(g.parents, n)
			}
		}

		filtered := g.edges[:0]
		for _, e := range g.edges {
			if g.parents[e.killer] {
				filtered = append(filtered, e)
			}
		}
		g.edges = filtered

		out = append(out, g)
	}

	p.cbcs = out

	return out
}

// childCost is v's Greedy-K priority: (number of parents that could
// kill it) / (its descendant count + 1). Static over a component's
// lifetime since it does not depend on which killers are still
// unassigned, only on the PKG's fixed edge set.
func childCost(g *cbc, v *nodeInfo) float64 {
	candidates := 0

	for u := range g.parents {
		for _, pk := range u.pkillers {
			if pk == v {
				candidates++
				break
			}
		}
	}

	return float64(candidates) / float64(len(v.descendants)+1)
}

// rankedChild is one entry of the priority queue selectChildMaxCost
// backs onto for components large enough to make a linear rescan per
// pick wasteful.
type rankedChild struct {
	v    *nodeInfo
	cost float64
}

func rankedChildLess(d []rankedChild, i, j int) bool { return d[i].cost > d[j].cost }

// smallComponentThreshold is the child count below which a plain linear
// scan beats the bookkeeping of a heap, mirroring back6.go's jobs heap
// being reached for only once its queue can hold more than a handful of
// pending entries at once.
const smallComponentThreshold = 8

// selectChildMaxCost picks the uncovered value in g with the highest
// Greedy-K cost, the priority used to decide which value to try to
// assign a killer to next. Components with few children fall back to a
// direct scan; larger ones are served from a max-heap over childCost
// seeded once per component and lazily skipped past entries that have
// since been covered. Grounded on select_child_max_cost.
func selectChildMaxCost(g *cbc, uncovered map[*nodeInfo]bool) (*nodeInfo, float64) {
	if len(g.children) <= smallComponentThreshold {
		var best *nodeInfo
		bestCost := -1.0

		for v := range g.children {
			if !uncovered[v] {
				continue
			}

			if cost := childCost(g, v); cost > bestCost {
				bestCost = cost
				best = v
			}
		}

		return best, bestCost
	}

	if g.queue == nil {
		h := &heap.Heap[rankedChild]{Less: rankedChildLess}

		for v := range g.children {
			h.Push(rankedChild{v: v, cost: childCost(g, v)})
		}

		g.queue = h
	}

	for g.queue.Len() != 0 {
		top := g.queue.Data[0]

		if !uncovered[top.v] {
			g.queue.Pop()
			continue
		}

		g.queue.Pop()

		return top.v, top.cost
	}

	return nil, -1
}

// computeKillingFunction runs the Saturating-K-Set heuristic (Greedy-K)
// over every connected bipartite component: repeatedly pick the costliest
// still-uncovered value and hand it to its still-unassigned candidate
// killer with the lowest index; each killer is assigned to at most one
// value, and a value whose candidates are all taken keeps the sink.
// Grounded on compute_killing_function.
func (p *pass) computeKillingFunction() {
	for _, g := range p.cbcs {
		uncovered := map[*nodeInfo]bool{}
		for v := range g.children {
			uncovered[v] = true
		}

		assignedKiller := map[*nodeInfo]bool{}

		for len(uncovered) > 0 {
			v, cost := selectChildMaxCost(g, uncovered)
			if v == nil || cost < 0 {
				break
			}

			killer := pickUnassignedKiller(g, v, assignedKiller)
			if killer != nil {
				v.killer = killer
				assignedKiller[killer] = true
			}

			delete(uncovered, v)
		}
	}
}

func pickUnassignedKiller(g *cbc, v *nodeInfo, assigned map[*nodeInfo]bool) *nodeInfo {
	var candidates []*nodeInfo

	for u := range g.parents {
		for _, pk := range u.pkillers {
			if pk == v {
				candidates = append(candidates, u)
				break
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].idx < candidates[j].idx })

	for _, u := range candidates {
		if !assigned[u] {
			return u
		}
	}

	return nil
}
