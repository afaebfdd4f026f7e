package sched

import (
	"sort"

	"tlog.app/go/tlog/tlwire"
)

// chainT is one maximal chain of the Disjoint Value DAG: a sequence of
// values v0, killer(v0), killer(killer(v0)), ... terminated at the sink.
// Grounded on beschedrss.c's chain_t.
type chainT struct {
	elements []*nodeInfo
}

func (c *chainT) TlogAppend(b []byte) []byte {
	var enc tlwire.LowEncoder

	b = enc.AppendTag(b, tlwire.Array, -1)

	for _, v := range c.elements {
		b = enc.AppendInt(b, v.idx)
	}

	b = enc.AppendBreak(b)

	return b
}

// dvgT is the Disjoint Value DAG built from the killing function: an edge
// v -> killer(v) for every non-sink v with an assigned killer. Grounded
// on compute_dvg's ACTIVE branch (the commented-out #if 0 block builds a
// denser DVG connecting every descendant of every killer instead; this
// module keeps the active chain-only construction per this project's
// resolved open question, see DESIGN.md).
type dvgT struct {
	chains []*chainT
}

// matchChainLinks confirms the killing function's chain links through the
// external bipartite matcher: every non-sink node with a real (non-sink)
// killer contributes a unit-weight edge from its own index to its
// killer's index, and the maximum-cardinality matching recovers exactly
// those links (each node has at most one outgoing candidate, its own
// killer, so the matching can only ever reproduce or drop it, never
// reroute it — this is the module's use of the Hungarian matcher named by
// compute_maximal_antichain's construction of a bipartite problem from
// DVG edges).
func (p *pass) matchChainLinks() map[int]int {
	if p.opts.NewMatcher == nil {
		link := map[int]int{}

		for _, v := range p.nodes {
			if v.isSink() || v.killer == nil || v.killer.isSink() {
				continue
			}

			link[v.idx] = v.killer.idx
		}

		return link
	}

	m := p.opts.NewMatcher()
	byIdx := map[int]*nodeInfo{}

	for _, v := range p.nodes {
		byIdx[v.idx] = v

		if v.isSink() || v.killer == nil || v.killer.isSink() {
			continue
		}

		m.AddEdge(v.idx, v.killer.idx, 1)
	}

	return m.Solve(true)
}

// computeDVG uses the matched chain links to build the chain partition,
// then computes each node's DVG-descendant set (everything later in its
// own chain) for the potential-killer predicate re-applied within the
// DVG by buildDVGPKillerList.
func (p *pass) computeDVG() *dvgT {
	link := p.matchChainLinks()

	byIdx := map[int]*nodeInfo{}
	for _, v := range p.nodes {
		byIdx[v.idx] = v
	}

	predCount := map[*nodeInfo]int{}

	for _, j := range link {
		if target, ok := byIdx[j]; ok {
			predCount[target]++
		}
	}

	var heads []*nodeInfo

	for _, v := range p.nodes {
		if v.isSink() {
			continue
		}

		if predCount[v] == 0 {
			heads = append(heads, v)
		}
	}

	sort.Slice(heads, func(i, j int) bool { return heads[i].idx < heads[j].idx })

	dvg := &dvgT{}

	for _, h := range heads {
		c := &chainT{}

		visited := map[*nodeInfo]bool{}

		cur := h
		for cur != nil && !cur.isSink() && !visited[cur] {
			visited[cur] = true
			cur.chain = c
			c.elements = append(c.elements, cur)

			nextIdx, ok := link[cur.idx]
			if !ok {
				break
			}

			next, ok := byIdx[nextIdx]
			if !ok || next.isSink() {
				break
			}

			cur = next
		}

		dvg.chains = append(dvg.chains, c)
	}

	for _, c := range dvg.chains {
		for i, v := range c.elements {
			v.dvgDesc = append([]*nodeInfo(nil), c.elements[i+1:]...)
			sort.Slice(v.dvgDesc, func(a, b int) bool { return v.dvgDesc[a].idx < v.dvgDesc[b].idx })
		}
	}

	p.dvg = dvg

	return dvg
}

// buildDVGPKillerList re-applies the potential-killer predicate within
// the DVG's own descendant sets, restricted to nodes already in the same
// chain (the only ones that can be DVG-descendants under the chain-only
// construction). Grounded on build_dvg_pkiller_list.
func (p *pass) buildDVGPKillerList() {
	for _, c := range p.dvg.chains {
		for _, u := range c.elements {
			for _, v := range u.dvgDesc {
				if isPotentialKillerDVG(u, v) {
					u.dvgPkiller = append(u.dvgPkiller, v)
				}
			}
		}
	}
}

func isPotentialKillerDVG(u, v *nodeInfo) bool {
	if u == v {
		return false
	}

	i := sort.Search(len(u.dvgDesc), func(i int) bool { return u.dvgDesc[i].idx >= v.idx })

	return i < len(u.dvgDesc) && u.dvgDesc[i] == v
}

// computeMaximalAntichain returns one representative per chain (its
// current head), the maximal antichain of the DVG poset. Under the
// chain-only DVG construction every node's descendant set lies entirely
// within its own chain, so no element can dominate one from a different
// chain: the refinement loop the all-descendants variant would need
// never has anything to do, and the antichain's cardinality is exactly
// the number of chains, matching Dilworth's theorem against the minimum
// chain partition computed above. Grounded on compute_maximal_antichain.
func (p *pass) computeMaximalAntichain() []*nodeInfo {
	if p.dvg == nil {
		p.computeDVG()
	}

	antichain := make([]*nodeInfo, 0, len(p.dvg.chains))

	for _, c := range p.dvg.chains {
		if len(c.elements) == 0 {
			continue
		}

		antichain = append(antichain, c.elements[0])
	}

	return antichain
}
