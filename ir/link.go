package ir

import (
	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

// LinkToken is a scoped reservation on every node's scratch "link" field.
// The original C IR reuses a single void* "link" pointer per node as
// scratch storage for whichever single pass currently owns it (the
// call-site collection lists in funccall.c, the consumer/descendant/
// pkiller lists in beschedrss.c); at most one pass may hold it at a time.
// AcquireLink enforces that with an assertion instead of silent
// corruption.
type LinkToken struct {
	g *Graph
}

// AcquireLink reserves the link field for the calling pass. owner is a
// short human-readable tag (a function name) used in the panic message
// if a second pass tries to acquire the field while the first still holds
// it.
func (g *Graph) AcquireLink(owner string) LinkToken {
	if g.linkHeld {
		panic(errors.New("ir: link field already held by %q (acquired at %v), cannot acquire for %q", g.linkBy, g.linkAt, owner))
	}

	g.linkHeld = true
	g.linkBy = owner
	g.linkAt = loc.Caller(1)

	for _, n := range g.nodes {
		n.link = nil
	}

	return LinkToken{g: g}
}

// Release gives up the reservation. Safe to call via defer even if some
// other code already released it through a different path, matching how
// the original passes always run link field usage to completion before
// returning.
func (t LinkToken) Release() {
	if t.g == nil {
		return
	}

	t.g.linkHeld = false
	t.g.linkBy = ""
}

func (LinkToken) Get(n *Node) *Node { return n.link }

func (LinkToken) Set(n *Node, v *Node) { n.link = v }
