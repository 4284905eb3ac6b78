// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package optionalfield implements the at-most-one-child field algebra
// (spec §4.C): compose, invert, rebase, and delta derivation for a field
// whose content is either empty or one node.
package optionalfield

import (
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// Target is either the literal "self" (the field slot itself) or a CAI
// identifying a detached tree.
type Target struct {
	Self bool
	CAI  tagging.CAI
}

// SelfTarget returns the distinguished "self" target.
func SelfTarget() Target { return Target{Self: true} }

// AtCAI returns a target naming a detached tree.
func AtCAI(c tagging.CAI) Target { return Target{CAI: c} }

func (t Target) Equal(o Target) bool {
	if t.Self != o.Self {
		return false
	}
	if t.Self {
		return true
	}
	return t.CAI == o.CAI
}

// MoveKind distinguishes whether a move follows the node or the cell when
// rebased over a concurrent edit.
type MoveKind int

const (
	// NodeTargeting: when rebased, follow whichever destination the
	// node actually ends up at.
	NodeTargeting MoveKind = iota
	// CellTargeting: when rebased, stay with the original cell even if
	// it becomes empty.
	CellTargeting
)

// Move is one entry of the field's move list.
type Move struct {
	Src, Dst Target
	Kind     MoveKind
}

// ChildChange nests a NodeChangeset under whichever cell (self or a
// detached CAI) it targets.
type ChildChange struct {
	Target Target
	Change *nodechange.NodeChangeset
}

// Changeset is the optional-field per-field changeset (spec §3).
type Changeset struct {
	ReservedDetachID *tagging.CAI
	Moves            []Move
	ChildChanges     []ChildChange
}

// Empty returns a changeset with no effect.
func Empty() *Changeset { return &Changeset{} }

// IsNoop reports whether cs has no observable effect.
func (cs *Changeset) IsNoop() bool {
	return cs == nil || (cs.ReservedDetachID == nil && len(cs.Moves) == 0 && len(cs.ChildChanges) == 0)
}

func (cs *Changeset) clone() *Changeset {
	if cs == nil {
		return &Changeset{}
	}
	out := &Changeset{Moves: append([]Move(nil), cs.Moves...)}
	if cs.ReservedDetachID != nil {
		id := *cs.ReservedDetachID
		out.ReservedDetachID = &id
	}
	for _, cc := range cs.ChildChanges {
		out.ChildChanges = append(out.ChildChanges, ChildChange{Target: cc.Target, Change: cc.Change})
	}
	return out
}

func findChild(ccs []ChildChange, t Target) (*nodechange.NodeChangeset, int) {
	for i, cc := range ccs {
		if cc.Target.Equal(t) {
			return cc.Change, i
		}
	}
	return nil, -1
}

// clearsField reports whether cs detaches whatever currently occupies the
// field (a move whose Src is "self").
func (cs *Changeset) clearsField() bool {
	for _, m := range cs.Moves {
		if m.Src.Self {
			return true
		}
	}
	return false
}

// Compose merges a followed by b into a single changeset equivalent to
// applying a then b. Moves chaining through the same location are folded
// into one; child changes targeting the same cell are recursively
// composed via dispatch.
func Compose(a, b *Changeset, xf *crossfield.Manager, dispatch nodechange.Dispatch) (*Changeset, error) {
	a, b = a.clone(), b.clone()
	out := &Changeset{}

	consumedB := make([]bool, len(b.Moves))
	for _, ma := range a.Moves {
		chained := false
		for j, mb := range b.Moves {
			if consumedB[j] {
				continue
			}
			if ma.Dst.Equal(mb.Src) {
				consumedB[j] = true
				chained = true
				if !ma.Src.Equal(mb.Dst) {
					// A round trip back to where it started (e.g. fill
					// then immediate un-fill) cancels to nothing; any
					// other chain survives as one move spanning both.
					out.Moves = append(out.Moves, Move{Src: ma.Src, Dst: mb.Dst, Kind: mb.Kind})
				}
				break
			}
		}
		if !chained {
			out.Moves = append(out.Moves, ma)
		}
	}
	for j, mb := range b.Moves {
		if !consumedB[j] {
			out.Moves = append(out.Moves, mb)
		}
	}

	if a.clearsField() {
		out.ReservedDetachID = a.ReservedDetachID
	} else {
		out.ReservedDetachID = b.ReservedDetachID
	}

	seen := make(map[Target]bool)
	for _, cca := range a.ChildChanges {
		if ccb, idx := findChild(b.ChildChanges, cca.Target); idx >= 0 {
			merged, err := dispatch.Compose(cca.Change, ccb, xf)
			if err != nil {
				return nil, err
			}
			out.ChildChanges = append(out.ChildChanges, ChildChange{Target: cca.Target, Change: merged})
		} else {
			out.ChildChanges = append(out.ChildChanges, cca)
		}
		seen[cca.Target] = true
	}
	for _, ccb := range b.ChildChanges {
		if !seen[ccb.Target] {
			out.ChildChanges = append(out.ChildChanges, ccb)
		}
	}
	return out, nil
}

func invertTarget(t Target) Target { return t } // CAIs name arena slots, not directions; only move direction flips.

// Invert reverses every move's direction and swaps NodeTargeting with
// CellTargeting (an inverse of "follow the node" is "stay with the cell
// the node vacated", and vice versa); nested child changes invert
// pointwise.
func Invert(a *Changeset, xf *crossfield.Manager, dispatch nodechange.Dispatch) (*Changeset, error) {
	a = a.clone()
	out := &Changeset{}
	for _, m := range a.Moves {
		kind := m.Kind
		if kind == NodeTargeting {
			kind = CellTargeting
		} else {
			kind = NodeTargeting
		}
		out.Moves = append(out.Moves, Move{Src: invertTarget(m.Dst), Dst: invertTarget(m.Src), Kind: kind})
	}
	if a.ReservedDetachID != nil {
		// The forward change detached the prior occupant under
		// ReservedDetachID; inverting re-attaches it there, so the
		// inverse no longer needs to reserve a fresh id for that slot.
		out.ReservedDetachID = nil
	}
	for _, cc := range a.ChildChanges {
		inv, err := dispatch.Invert(cc.Change, xf)
		if err != nil {
			return nil, err
		}
		out.ChildChanges = append(out.ChildChanges, ChildChange{Target: cc.Target, Change: inv})
	}
	return out, nil
}

// Rebase moves a's moves and child changes over b's, per spec §4.C: a
// move whose Src matches one of b's moves follows b's Dst if it is
// NodeTargeting, or stays put if CellTargeting. Child changes targeting a
// cell b detached have their target cell rewritten to the new detached
// id.
func Rebase(a, b *Changeset, xf *crossfield.Manager, dispatch nodechange.Dispatch) (*Changeset, error) {
	a, b = a.clone(), b.clone()
	out := &Changeset{ReservedDetachID: a.ReservedDetachID}

	rewrite := make(map[Target]Target)
	for _, mb := range b.Moves {
		rewrite[mb.Src] = mb.Dst
	}

	for _, ma := range a.Moves {
		newSrc, newDst := ma.Src, ma.Dst
		if dst, ok := rewrite[ma.Src]; ok && ma.Kind == NodeTargeting {
			newSrc = dst
		}
		if dst, ok := rewrite[ma.Dst]; ok && ma.Kind == NodeTargeting {
			newDst = dst
		}
		out.Moves = append(out.Moves, Move{Src: newSrc, Dst: newDst, Kind: ma.Kind})
	}

	for _, cc := range a.ChildChanges {
		target := cc.Target
		if dst, ok := rewrite[target]; ok {
			target = dst
		}
		change := cc.Change
		if existing, idx := findChild(out.ChildChangesView(), target); idx >= 0 {
			merged, err := dispatch.Rebase(change, existing, xf)
			if err != nil {
				return nil, err
			}
			change = merged
		}
		out.ChildChanges = append(out.ChildChanges, ChildChange{Target: target, Change: change})
	}
	return out, nil
}

// ChildChangesView exposes the child-change list for rebase's internal
// bookkeeping; exported because Rebase is also called with out still
// being built up incrementally in tests that construct partial results.
func (cs *Changeset) ChildChangesView() []ChildChange {
	if cs == nil {
		return nil
	}
	return cs.ChildChanges
}
