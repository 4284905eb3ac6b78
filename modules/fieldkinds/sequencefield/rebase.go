// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sequencefield

import (
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// Comparator reports whether revision a is ordered before revision b;
// used to break ties between concurrent inserts landing at the same
// position (spec §4.D). Callers wire in the identifier-compression
// collaborator's normalized ordering; tagging.Less is the fallback for
// contexts with no such collaborator (unit tests, the reference
// in-process demo server).
type Comparator func(a, b tagging.RevisionTag) bool

// Rebase advances two cursors over a (the changeset being rebased) and b
// (the concurrent changeset it's rebased over), both walked by the
// INPUT-context width they share, and emits a' — a's effect re-expressed
// against the context b produces (spec §4.D).
func Rebase(a, b MarkList, cmp Comparator, xf *crossfield.Manager, dispatch nodechange.Dispatch) (MarkList, error) {
	if cmp == nil {
		cmp = tagging.Less
	}
	ca := newCursor(a, inputWidth)
	cb := newCursor(b, inputWidth)
	var out MarkList

	for !ca.done() || !cb.done() {
		ma, aZero, aOK := ca.peek()
		mb, bZero, bOK := cb.peek()

		switch {
		case aOK && aZero && bOK && bZero:
			if cmp(ma.Revision, mb.Revision) {
				// a sorts first: its insert is unaffected, and needs no
				// gap for b's concurrent insert at the same position.
				out = append(out, ma)
			} else {
				// b sorts first: a's insert must land after the run b
				// is about to materialize here.
				out = append(out, Mark{Kind: Skip, Count: outputWidth(mb)})
				out = append(out, ma)
			}
			ca.takeWhole()
			cb.takeWhole()

		case aOK && aZero:
			if ma.Kind == Insert && bOK && !bZero && (mb.Kind == Remove || mb.Kind == MoveOut) {
				// The cell this insert would land next to is mid-way
				// through a concurrent remove/move-out; it has nothing
				// live to attach beside, so it's muted and filed under
				// b's detached id instead of landing as a live insert.
				m := ma
				m.Muted = true
				if mb.Kind == Remove {
					m.DetachedID = mb.DetachID
				} else {
					m.DetachedID = mb.DestID
				}
				out = append(out, m)
			} else {
				out = append(out, ma)
			}
			ca.takeWhole()

		case bOK && bZero:
			// b's insert/move-in/revive doesn't touch a base cell a has
			// an opinion about; a needs no adjustment for it.
			cb.takeWhole()

		case aOK && bOK:
			n := min(ca.remainingWidth(), cb.remainingWidth())
			reduced, err := reduceRebase(trim(ma, n), trim(mb, n), xf, dispatch)
			if err != nil {
				return nil, err
			}
			out = append(out, reduced...)
			ca.takePartial(n)
			cb.takePartial(n)

		case aOK:
			out = append(out, trim(ma, ca.remainingWidth()))
			ca.takePartial(ca.remainingWidth())

		case bOK:
			cb.takePartial(cb.remainingWidth())

		default:
			return normalize(out), nil
		}
	}
	return normalize(out), nil
}

// reduceRebase re-expresses a's intent over one cell-aligned span in
// light of b's concurrent effect on the same span (spec §4.D edge cases).
func reduceRebase(a, b Mark, xf *crossfield.Manager, dispatch nodechange.Dispatch) ([]Mark, error) {
	switch {
	case a.Kind == Skip:
		return []Mark{{Kind: Skip, Count: a.Count}}, nil
	case b.Kind == Skip:
		return []Mark{a}, nil

	case a.Kind == Remove && b.Kind == Remove:
		return nil, nil // already gone; a's removal is redundant

	case a.Kind == Remove && b.Kind == Revive:
		return []Mark{a}, nil // content is live again; a's removal proceeds as authored

	case a.Kind == Revive && b.Kind == Remove:
		return []Mark{a}, nil // the cell a targets was already empty; b's removal of it is vacuous

	case a.Kind == Revive && b.Kind == Revive:
		if a.DetachedID == b.DetachedID && !tagging.Less(a.Revision, b.Revision) {
			return nil, nil // lost the race to revive the same slot
		}
		return []Mark{a}, nil

	case a.Kind == MoveOut && b.Kind == Remove:
		m := a
		m.Muted = true // source cell already detached by b; the move now has nothing live to carry
		return []Mark{m}, nil

	case a.Kind == Modify && b.Kind == Remove:
		m := a
		m.Muted = true
		m.DetachedID = b.DetachID // the modify now addresses the cell at its new, detached location
		return []Mark{m}, nil

	case a.Kind == Modify && b.Kind == Modify:
		merged, err := dispatch.Rebase(a.Child, b.Child, xf)
		if err != nil {
			return nil, err
		}
		m := a
		m.Child = merged
		return []Mark{m}, nil

	default:
		return []Mark{a}, nil // b's effect here doesn't change what a wants to do
	}
}
