package sched

import (
	"fmt"
	"strings"
)

// DumpPKGDOT renders the Potential-Killing Graph built by
// computePKillSet as Graphviz DOT, a straight substitute for the
// original's debug_vcg_dump_pkg (VCG viewers are no longer practically
// available; DOT is the idiomatic Go-ecosystem equivalent).
func (p *pass) DumpPKGDOT() string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph pkg_block%d_%s {\n", p.block.ID, p.cls)

	for _, u := range p.nodes {
		if u.isSink() {
			continue
		}

		for _, v := range u.pkillers {
			fmt.Fprintf(&b, "  n%d -> n%d;\n", u.idx, v.idx)
		}
	}

	b.WriteString("}\n")

	return b.String()
}

// DumpDVGDOT renders the chain partition computed by computeDVG.
func (p *pass) DumpDVGDOT() string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph dvg_block%d_%s {\n", p.block.ID, p.cls)

	if p.dvg != nil {
		for ci, c := range p.dvg.chains {
			for i := 0; i+1 < len(c.elements); i++ {
				fmt.Fprintf(&b, "  n%d -> n%d [label=\"chain%d\"];\n", c.elements[i].idx, c.elements[i+1].idx, ci)
			}
		}
	}

	b.WriteString("}\n")

	return b.String()
}
