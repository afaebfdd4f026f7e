// Package prop implements the procedure property lattice used by the
// function-call optimizer: const, pure, nothrow, malloc and has_loop bits,
// plus a tentative marker for properties established optimistically while
// a recursive solve is still in flight.
//
// Grounded on libFirm's funccall.c: mtp_property_const, mtp_property_pure,
// mtp_property_nothrow, mtp_property_malloc, mtp_property_has_loop and the
// mtp_temporary bit it reuses as a "don't trust this yet" marker.
package prop

// Properties is a small bitset lattice. Const and Pure are independent
// storage bits even though const implies pure semantically — callers that
// only care about purity must check both.
type Properties uint32

const (
	Const Properties = 1 << iota
	Pure
	NoThrow
	Malloc
	HasLoop

	// Tentative marks a result established while the owning procedure
	// was still "busy" in the solver's fixed-point walk: it may be
	// downgraded once the recursion it depends on resolves, so
	// dependents must not cache it permanently.
	Tentative
)

// Bottom is the lattice's optimistic starting point: no obligations yet
// disproved.
const Bottom Properties = Const | Pure | NoThrow | Malloc

// None is the lattice's pessimistic floor.
const None Properties = 0

// IsConst reports the const bit.
func (p Properties) IsConst() bool { return p&Const != 0 }

// IsPure reports the pure bit (const implies this should also be set by
// any caller maintaining the invariant, but the bit is independent
// storage, so check both explicitly where it matters).
func (p Properties) IsPure() bool { return p&Pure != 0 }

func (p Properties) IsNoThrow() bool { return p&NoThrow != 0 }

func (p Properties) IsMalloc() bool { return p&Malloc != 0 }

func (p Properties) HasALoop() bool { return p&HasLoop != 0 }

// IsTentative reports whether this result was computed while the owner
// was busy and has not yet been committed.
func (p Properties) IsTentative() bool { return p&Tentative != 0 }

// Commit clears the tentative marker, freezing the other bits as final.
func (p Properties) Commit() Properties { return p &^ Tentative }

// Max combines two property sets by keeping, for each independent
// obligation, only what both sides can support — the monotone meet used
// when folding a callee's properties into a caller's running result.
// Grounded on funccall.c's max_property: the const/pure/nothrow/malloc
// bits only ever travel downward through a fixed-point iteration.
func Max(a, b Properties) Properties {
	r := a & b & (Const | Pure | NoThrow | Malloc)

	// has_loop is additive, not a meet: if either side has a loop the
	// combination does too.
	r |= (a | b) & HasLoop

	r |= (a | b) & Tentative

	return r
}

// Update folds an additional fact into an accumulator the same way the
// solver's running "prop" variable is folded across a procedure's call
// sites: the const/pure/nothrow/malloc bits can only be cleared, never
// (re)set, once the accumulator has started life at Bottom, while
// has_loop and tentative only ever accumulate.
func Update(acc, fact Properties) Properties {
	return Max(acc, fact)
}
