package sched

import (
	"github.com/nikandfor/rssopt/bitset"
	"github.com/nikandfor/rssopt/ir"
)

// serializationEdge is one candidate "v must come no earlier than vv"
// dependency the heuristic can insert to shrink the maximal antichain.
type serializationEdge struct {
	v, vv          *nodeInfo
	omega1, omega2 int
}

// computeBestAdmissibleSerialization scans every ordered pair drawn from
// the current maximal antichain for the highest-benefit, lowest-cost
// serialization edge: omega1 estimates how many other antichain members
// stop being concurrently live once v is forced after vv, omega2 the
// resulting increase to the block's critical path. Only edges with a
// strictly positive omega1 are admissible; ties on omega1 are broken by
// the smaller omega2. Grounded on compute_best_admissible_serialization.
func (p *pass) computeBestAdmissibleSerialization(antichain []*nodeInfo, maxHeight int) *serializationEdge {
	var best *serializationEdge

	for _, v := range antichain {
		for _, vv := range antichain {
			if v == vv {
				continue
			}

			if p.opts.Height.Reachable(v.irn, vv.irn) || p.opts.Height.Reachable(vv.irn, v.irn) {
				continue // already ordered, not an admissible new edge
			}

			mu1 := 0
			for _, w := range antichain {
				if w == v || w == vv {
					continue
				}

				if hasDescendant(vv, w) {
					mu1++
				}
			}

			mu2 := 0
			if isPotentialKiller(vv, v) {
				mu2 = 1
			}

			omega1 := mu1 - mu2
			if omega1 <= 0 {
				continue
			}

			vHeight := p.opts.Height.Height(v.irn)
			vvHeight := p.opts.Height.Height(vv.irn)

			criticalPathCost := vHeight + (maxHeight - vvHeight) + 1

			omega2 := criticalPathCost - maxHeight
			if omega2 < 0 {
				omega2 = 0
			}

			cand := &serializationEdge{v: v, vv: vv, omega1: omega1, omega2: omega2}

			if best == nil || cand.omega1 > best.omega1 || (cand.omega1 == best.omega1 && cand.omega2 < best.omega2) {
				best = cand
			}
		}
	}

	return best
}

// performValueSerializationHeuristic is the main loop: while the block's
// register-class saturation exceeds the number of registers actually
// available, insert the best admissible serialization edge and recompute
// the PKG/DVG from scratch, until saturation fits or no admissible edge
// remains. Grounded on perform_value_serialization_heuristic.
func (p *pass) performValueSerializationHeuristic() (inserted int) {
	available := p.opts.Arch.NumRegisters(p.cls) - p.opts.ABI.NumIgnoreRegisters(p.cls)
	if available < 1 {
		available = 1
	}

	p.opts.Height.RecomputeBlock(p.block)

	// The heuristic is not guaranteed to terminate against an adversarial
	// height/reachability oracle; bound the iteration count at one edge
	// per node pair so a broken collaborator can't hang the compiler.
	maxIter := len(p.nodes) * len(p.nodes)

	for iter := 0; iter < maxIter; iter++ {
		antichain := p.computeMaximalAntichain()
		if len(antichain) <= available {
			break
		}

		maxHeight := p.blockMaxHeight()

		edge := p.computeBestAdmissibleSerialization(antichain, maxHeight)
		if edge == nil {
			break
		}

		ir.AddDep(edge.v.irn, edge.vv.irn)
		inserted++

		p.recomputePipeline()
	}

	return inserted
}

func (p *pass) blockMaxHeight() int {
	max := 0

	for _, n := range p.nodes {
		if n.isSink() {
			continue
		}

		if h := p.opts.Height.Height(n.irn); h > max {
			max = h
		}
	}

	return max
}

// recomputePipeline reruns the PKG/bipartite/killing-function/DVG stages
// from scratch after a new dependency edge has changed reachability
// within the block.
func (p *pass) recomputePipeline() {
	p.opts.Height.RecomputeBlock(p.block)

	for _, n := range p.nodes {
		n.consumers = nil
		n.descendants = nil
		n.pkillers = nil
		n.killer = nil
		n.dvgDesc = nil
		n.dvgPkiller = nil
		n.chain = nil
		n.liveOut = false
	}

	for _, info := range p.nodes {
		if !info.isSink() {
			p.collectConsumers(info)
		}
	}

	for _, info := range p.nodes {
		p.collectDescendants(info, bitset.NewBitmap(len(p.nodes)))
	}

	edges := p.computePKillSet()
	p.computeBipartiteDecomposition(edges)
	p.computeKillingFunction()
	p.computeDVG()
	p.buildDVGPKillerList()
}
