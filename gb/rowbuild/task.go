// Package rowbuild implements the row builder (spec §4.4 C5): turning a row
// task into entries in a worker's thread-local preblock.Block, resolving
// each term's column through the column map, and feeding back new tasks
// when column creation discovers a reducer.
package rowbuild

import "github.com/f4core/f4matrix/ring"

// Task is one unit of row-building work (spec §3 "Row Task"). Exactly one
// of Pair being non-nil or DesiredLead being set/absent distinguishes a
// Single task (possibly with a multiplier) from an S-pair task.
type Task struct {
	// Poly is always set.
	Poly ring.Poly

	// Pair is set for an S-pair task; its multiplier is derived from
	// Poly.LeadMonomial()/Pair.LeadMonomial() colons, not from
	// DesiredLead.
	Pair ring.Poly

	// DesiredLead is set for a Single task whose multiplier is not the
	// identity: the multiplier is DesiredLead / Poly.LeadMonomial(). Unset
	// (nil) for a Single task means multiplier = identity. Unused when
	// Pair is set. Ownership of this monomial (spec §5 "resource policy")
	// is tracked by whoever allocated it, not by the task itself:
	// MatrixBuilder.AddPolyMultiple frees it via its own ownedDesiredLeads
	// list; a reducer task fed back by column creation only borrows the
	// column's monomial and must never free it.
	DesiredLead ring.Mono

	// isReducer marks a task fed back by column creation: its row is the
	// designated reducer for the left column whose discovery spawned it,
	// and belongs in the matrix's top (reducer) half rather than its
	// bottom (reducee) half. Tasks submitted by a caller through AddPoly,
	// AddPolyMultiple, or AddSPair are never reducer tasks.
	isReducer bool
}

// NewSingleTask returns a Single task with an identity multiplier.
func NewSingleTask(p ring.Poly) Task {
	return Task{Poly: p}
}

// NewSingleTaskWithDesiredLead returns a Single task whose multiplier is
// desiredLead / p.LeadMonomial(). The caller retains ownership of
// desiredLead.
func NewSingleTaskWithDesiredLead(p ring.Poly, desiredLead ring.Mono) Task {
	return Task{Poly: p, DesiredLead: desiredLead}
}

// newReducerTask returns the Single task column creation feeds back for a
// newly discovered left column: its desired lead is that column's own
// (borrowed) monomial, and it is flagged as a reducer row.
func newReducerTask(p ring.Poly, columnMono ring.Mono) Task {
	return Task{Poly: p, DesiredLead: columnMono, isReducer: true}
}

// IsReducer reports whether this task's row is the designated reducer for
// a left column, and so belongs in the matrix's top half.
func (t Task) IsReducer() bool { return t.isReducer }

// NewPairTask returns an S-pair task for a, b.
func NewPairTask(a, b ring.Poly) Task {
	return Task{Poly: a, Pair: b}
}
