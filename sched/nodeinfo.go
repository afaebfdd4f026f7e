package sched

import (
	"sort"

	"github.com/nikandfor/rssopt/bitset"
	"github.com/nikandfor/rssopt/ir"
)

// nodeInfo is the per-node bookkeeping record the whole pipeline threads
// through, grounded on beschedrss.c's rss_irn_t. irn is nil exactly once
// per pass: the synthetic sink that stands in for every block-external
// (live-out) consumer, so every node that is actually live out of the
// block still has somewhere to point at.
type nodeInfo struct {
	irn *ir.Node
	idx int

	consumers   []*nodeInfo
	descendants []*nodeInfo // sorted by idx, used for binary search
	pkillers    []*nodeInfo

	killer *nodeInfo

	dvgDesc    []*nodeInfo // sorted by idx
	dvgPkiller []*nodeInfo

	chain *chainT

	liveOut bool
}

func (n *nodeInfo) isSink() bool { return n.irn == nil }

// pass holds the state of one register-class pass over one block.
type pass struct {
	opts  Options
	block *ir.Block
	cls   RegClass
	idx   *ir.UserIndex

	nodes []*nodeInfo // includes sink, at index len-1 by convention
	sink  *nodeInfo

	byNode map[*ir.Node]*nodeInfo

	cbcs []*cbc
	dvg  *dvgT
}

func newPass(opts Options, b *ir.Block, cls RegClass, idx *ir.UserIndex) *pass {
	p := &pass{
		opts:   opts,
		block:  b,
		cls:    cls,
		idx:    idx,
		byNode: map[*ir.Node]*nodeInfo{},
	}

	p.sink = &nodeInfo{idx: -1}

	return p
}

func (p *pass) infoOf(n *ir.Node) *nodeInfo {
	if n == nil {
		return p.sink
	}

	return p.byNode[n]
}

// collectNodeInfo builds one nodeInfo per node of the pass's register
// class in the block, wires direct consumer edges (substituting the sink
// for any user outside the block), and computes each node's descendant
// set as the transitive closure of its consumers. Grounded on
// collect_node_info / collect_consumer / collect_descendants.
func (p *pass) collectNodeInfo() {
	var inClass []*ir.Node

	for _, n := range p.block.Nodes {
		if n.Mode != ir.ModeData {
			continue
		}

		if p.opts.Arch.ClassOf(n) != p.cls {
			continue
		}

		inClass = append(inClass, n)
	}

	for i, n := range inClass {
		info := &nodeInfo{irn: n, idx: i}
		p.byNode[n] = info
		p.nodes = append(p.nodes, info)
	}

	p.nodes = append(p.nodes, p.sink)
	p.sink.idx = len(p.nodes) - 1

	for _, info := range p.nodes {
		if info.isSink() {
			continue
		}

		p.collectConsumers(info)
	}

	for _, info := range p.nodes {
		p.collectDescendants(info, bitset.NewBitmap(len(p.nodes)))
	}
}

// collectConsumers fills info.consumers: every direct user of info.irn,
// with users outside the block (or mode_T tuple unwrapping through Proj)
// resolved down to the substituted node, and live-out uses pointed at the
// sink.
func (p *pass) collectConsumers(info *nodeInfo) {
	seen := map[*nodeInfo]bool{}

	for _, u := range p.idx.Of(info.irn) {
		if u.Mode == ir.ModeT {
			// mode_T unwrap: any of its Projs count as a direct
			// consumer, so fan out rather than picking one.
			for _, pr := range p.idx.Projs(u) {
				p.addConsumerEdge(info, pr, seen)
			}

			continue
		}

		p.addConsumerEdge(info, u, seen)
	}

	// Artificial serialization edges (add_irn_dep) order scheduling
	// without being data or control edges: a node that must come after
	// info is, for PKG/height purposes, one of info's consumers too.
	for _, m := range p.nodes {
		if m.isSink() {
			continue
		}

		for _, d := range m.irn.Deps {
			if d == info.irn {
				p.addConsumerEdge(info, m.irn, seen)
				break
			}
		}
	}

	if len(info.consumers) == 0 || usedOutsideBlock(info.irn, p.idx, p.block) {
		info.liveOut = true

		if !seen[p.sink] {
			info.consumers = append(info.consumers, p.sink)
			seen[p.sink] = true
		}
	}
}

func (p *pass) addConsumerEdge(info *nodeInfo, user *ir.Node, seen map[*nodeInfo]bool) {
	var target *nodeInfo

	if user.Block != p.block {
		target = p.sink
	} else if ui, ok := p.byNode[user]; ok {
		target = ui
	} else {
		// consumer is in-block but not of this register class
		// (e.g. a Store consuming a value node): still keeps info
		// live within the block, not a scheduling edge we track.
		return
	}

	if seen[target] {
		return
	}

	seen[target] = true
	info.consumers = append(info.consumers, target)
}

func usedOutsideBlock(n *ir.Node, idx *ir.UserIndex, b *ir.Block) bool {
	for _, u := range idx.Of(n) {
		if u.Block != b {
			return true
		}
	}

	return false
}

// collectDescendants computes info's full descendant set (every node
// reachable by following consumer edges, sink included when reachable) as
// a sorted-by-idx slice for later binary search. Both the recursion guard
// and the per-call dedup set are backed by bitset.Bitmap rather than a
// map[*nodeInfo]bool: node indices are dense and bounded by len(p.nodes),
// exactly the shape the bitmap package is for, and this descendant set is
// the §4.8 per-block admissibility set every later "no existing path"
// check (hasDescendant, isPotentialKiller, computeBestAdmissibleSerialization)
// is built on.
func (p *pass) collectDescendants(info *nodeInfo, visiting *bitset.Bitmap) []*nodeInfo {
	if info.descendants != nil || info.isSink() {
		return info.descendants
	}

	if visiting.IsSet(info.idx) {
		return nil // defensive: sea-of-nodes within a block should be acyclic
	}

	visiting.Set(info.idx)

	mark := bitset.MakeBitmap(len(p.nodes))

	var out []*nodeInfo

	add := func(d *nodeInfo) {
		if mark.IsSet(d.idx) {
			return
		}

		mark.Set(d.idx)
		out = append(out, d)
	}

	for _, c := range info.consumers {
		add(c)

		for _, d := range p.collectDescendants(c, visiting) {
			add(d)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].idx < out[j].idx })

	info.descendants = out
	visiting.Clear(info.idx)

	return out
}

// hasDescendant reports whether d is in n's descendant set, via binary
// search over the sorted slice, grounded on BSEARCH_IRN_ARR.
func hasDescendant(n, d *nodeInfo) bool {
	list := n.descendants

	i := sort.Search(len(list), func(i int) bool { return list[i].idx >= d.idx })

	return i < len(list) && list[i] == d
}
