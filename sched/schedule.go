package sched

import (
	"context"

	"github.com/nikandfor/rssopt/ir"
	"tlog.app/go/tlog"
)

// Result summarizes one block's preparation pass, per register class, for
// logging and tests.
type Result struct {
	Block         *ir.Block
	Class         RegClass
	EdgesInserted int
}

// processBlock runs the full pipeline for one block and one register
// class: collect node info, build the PKG, decompose it into connected
// bipartite components, run Greedy-K, build the DVG, then run the
// serialization heuristic until saturation fits or no admissible edge is
// left. Grounded on beschedrss.c's process_block.
func processBlock(ctx context.Context, opts Options, b *ir.Block, cls RegClass, idx *ir.UserIndex) Result {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "sched: process block")
	defer tr.Finish()

	p := newPass(opts, b, cls, idx)

	p.collectNodeInfo()

	if tr.If("nodeinfo") {
		tr.Printw("collected node info", "block", b.ID, "class", cls, "nodes", len(p.nodes)-1)
	}

	edges := p.computePKillSet()
	p.computeBipartiteDecomposition(edges)

	if tr.If("pkg") {
		tr.Printw("pkg edges", "edges", edges)
	}

	if tr.If("bipartite") {
		tr.Printw("bipartite decomposition", "components", len(p.cbcs))
	}

	p.computeKillingFunction()
	p.computeDVG()
	p.buildDVGPKillerList()

	if tr.If("dvg") {
		tr.Printw("dvg built", "chains", len(p.dvg.chains))

		for i, c := range p.dvg.chains {
			tr.Printw("dvg chain", "i", i, "chain", c)
		}
	}

	inserted := p.performValueSerializationHeuristic()

	if tr.If("ser") {
		tr.Printw("serialization heuristic done", "edges_inserted", inserted)
	}

	return Result{Block: b, Class: cls, EdgesInserted: inserted}
}

// SchedulePreparation runs processBlock for every block of g and every
// register class the architecture exposes. Grounded on
// rss_schedule_preparation.
func SchedulePreparation(ctx context.Context, g *ir.Graph, opts Options) []Result {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "sched: schedule preparation")
	defer tr.Finish()

	idx := g.BuildUserIndex()

	var results []Result

	for _, b := range g.Blocks {
		for _, cls := range opts.Arch.Classes() {
			results = append(results, processBlock(ctx, opts, b, cls, idx))
		}
	}

	total := 0
	for _, r := range results {
		total += r.EdgesInserted
	}

	tr.Printw("schedule preparation done", "blocks", len(g.Blocks), "edges_inserted", total)

	return results
}
