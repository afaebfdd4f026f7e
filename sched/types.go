// Package sched prepares a block for register-pressure-aware scheduling
// using Touati's register saturation method: it does not itself produce a
// final instruction order, only the minimal set of extra "must come after"
// dependency edges needed to keep live-value pressure within the target's
// register budget, exactly as the original's rss_schedule_preparation does
// for the instruction scheduler that runs after it.
//
// Grounded on libFirm's ir/be/beschedrss.c.
package sched

import "github.com/nikandfor/rssopt/ir"

// RegClass names a register class (general purpose, floating point, ...).
// The scheduler runs its whole pipeline once per block per class, since
// pressure in one class says nothing about pressure in another.
type RegClass string

// Arch is the external architecture descriptor collaborator: how many
// register classes exist, which class a node's result lives in, and how
// many physical registers of that class exist in total.
type Arch interface {
	Classes() []RegClass
	ClassOf(n *ir.Node) RegClass
	NumRegisters(cls RegClass) int
}

// ABI is the external ABI descriptor collaborator: how many registers of
// a class are reserved by the calling convention (stack pointer, frame
// pointer, ...) and therefore unavailable to the value scheduler.
type ABI interface {
	NumIgnoreRegisters(cls RegClass) int
}

// HeightOracle is the external height-and-reachability service: the
// longest path in nodes from n to any leaf of its block, and whether a is
// reachable from b along data/control edges within the block. Grounded on
// beschedrss.c's use of height.h's heights_t.
type HeightOracle interface {
	Height(n *ir.Node) int
	Reachable(a, b *ir.Node) bool
	RecomputeBlock(b *ir.Block)
}

// Matcher is the external bipartite-matcher service: a maximum-cardinality
// (or maximum-weight, when Maximize is requested) bipartite matching
// solver, grounded on beschedrss.c's use of hungarian.h.
type Matcher interface {
	AddEdge(i, j int, weight int)
	Solve(maximize bool) (assignment map[int]int)
}

// Options bundles the external collaborators and tuning knobs
// SchedulePreparation needs per invocation.
type Options struct {
	Arch   Arch
	ABI    ABI
	Height HeightOracle

	// NewMatcher constructs a fresh Matcher for one antichain
	// computation; it is called once per serialization-heuristic
	// iteration; a fresh instance is requested each time because the
	// Hungarian method's internal state does not support incremental
	// reset.
	NewMatcher func() Matcher
}
