package ir

import "github.com/nikandfor/rssopt/prop"

// Entity is a procedure: its graph, its declared parameter access pattern
// (used by the "is it stored anywhere" alias check), and the property
// lattice result the solver has computed for it so far.
type Entity struct {
	Name  string
	Index int // dense index, used as the key for ready/busy procedure bitsets

	Graph *Graph

	// Type describes the procedure's signature shape as far as the
	// property solver needs it. Nil means unknown, treated as no
	// compound parameters (the common case for this module's tests and
	// demo command, which build entities with no declared Type).
	Type *Type

	// ParamAccess[i] records how parameter i's pointer is used by the
	// body, mirroring get_method_param_access. Empty means unknown
	// (conservative: treat as PtrAccessAll).
	ParamAccess []PtrAccess

	Properties prop.Properties

	// Unknown marks an entity reached only through an unresolved Sel
	// (no static callee set known), forcing conservative treatment
	// wherever it appears as a callee.
	Unknown bool
}

func (e *Entity) ParamAccessOf(i int) PtrAccess {
	if i < 0 || i >= len(e.ParamAccess) {
		return PtrAccessAll
	}

	return e.ParamAccess[i]
}

// Type describes a procedure's signature shape as far as the property
// solver needs it: whether any parameter or the return value is passed by
// value as a compound (struct/array), which disqualifies const/pure per
// the original's compound-parameter rule.
type Type struct {
	NumParams       int
	HasCompoundParm bool
	HasCompoundRes  bool
}
