package sched

import "tlog.app/go/tlog/tlwire"

// killEdge records that killer could serve as the last consumer of value,
// freeing value's register once killer is scheduled. This is the
// Potential-Killing Graph (PKG) edge of beschedrss.c's compute_pkill_set.
type killEdge struct {
	killer *nodeInfo
	value  *nodeInfo
}

func (e killEdge) TlogAppend(b []byte) []byte {
	var enc tlwire.Encoder

	b = enc.AppendMap(b, 2)
	b = enc.AppendKeyInt(b, "killer", e.killer.idx)
	b = enc.AppendKeyInt(b, "value", e.value.idx)

	return b
}

// isPotentialKiller reports whether v potentially kills u: descendants(v)
// ∩ consumers(u) ⊆ {v}, equivalently every consumer of u is a descendant
// of v (v itself allowed). Grounded on beschedrss.c's is_potential_killer,
// which walks the shorter of descendants(v) and consumers(u) and binary-
// searches the sorted array of the other, bailing on the first mismatch.
func isPotentialKiller(v, u *nodeInfo) bool {
	if v == u || u.isSink() {
		return false
	}

	for _, w := range u.consumers {
		if w == v {
			continue
		}

		if !hasDescendant(v, w) {
			return false
		}
	}

	return true
}

// computePKillSet fills every node's pkillers list (the values it could
// kill) and initializes killer to the sink, meaning "not yet assigned a
// real killer". Candidate killers are u's direct consumers, per
// compute_pkill_set's own outer/inner loop nesting (foreach u, foreach v
// in u->consumer_list) — chains spanning more than one hop are built up
// later by the bipartite decomposition (§4.6), not by treating every
// transitive descendant as a direct candidate here.
func (p *pass) computePKillSet() []killEdge {
	var edges []killEdge

	for _, u := range p.nodes {
		if u.isSink() {
			continue
		}

		u.killer = p.sink

		for _, v := range u.consumers {
			if v.isSink() {
				continue
			}

			if isPotentialKiller(v, u) {
				v.pkillers = append(v.pkillers, u)
				edges = append(edges, killEdge{killer: v, value: u})
			}
		}
	}

	return edges
}
