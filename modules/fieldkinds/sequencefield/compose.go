// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sequencefield

import (
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/nodechange"
)

// Compose merges a (applied first) with b (applied second) into a single
// mark list equivalent to applying a then b (spec §4.D). a's marks are
// walked by the cell-width they leave in the OUTPUT context; b's are
// walked by the cell-width they consume from the INPUT context — those
// two contexts are the same cell sequence, which is what makes composing
// them meaningful.
func Compose(a, b MarkList, xf *crossfield.Manager, dispatch nodechange.Dispatch) (MarkList, error) {
	ca := newCursor(a, outputWidth)
	cb := newCursor(b, inputWidth)
	var out MarkList

	for !ca.done() || !cb.done() {
		ma, aZero, aOK := ca.peek()
		mb, bZero, bOK := cb.peek()

		switch {
		case aOK && aZero && bOK && bZero:
			// Both a's detach-side mark (Remove/MoveOut, zero under
			// outputWidth) and b's attach-side mark (Insert/MoveIn/
			// Revive, zero under inputWidth) sit at this same position;
			// they may be the two halves of a single no-op (content
			// detached then the exact same content immediately
			// reattached), so route them through the same reduction
			// table as aligned, non-zero-width pairs.
			reduced, err := reduceCompose(ma, mb, xf, dispatch)
			if err != nil {
				return nil, err
			}
			out = append(out, reduced...)
			ca.takeWhole()
			cb.takeWhole()
		case aOK && aZero:
			out = append(out, ma)
			ca.takeWhole()
		case bOK && bZero:
			out = append(out, mb)
			cb.takeWhole()
		case aOK && bOK:
			n := min(ca.remainingWidth(), cb.remainingWidth())
			reduced, err := reduceCompose(trim(ma, n), trim(mb, n), xf, dispatch)
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
			out = append(out, trim(mb, cb.remainingWidth()))
			cb.takePartial(cb.remainingWidth())
		default:
			return normalize(out), nil
		}
	}
	return normalize(out), nil
}

func trim(m Mark, n int) Mark {
	m.Count = n
	return m
}

func composeChild(a, b *nodechange.NodeChangeset, xf *crossfield.Manager, dispatch nodechange.Dispatch) (*nodechange.NodeChangeset, error) {
	if a.IsEmpty() {
		return b, nil
	}
	if b.IsEmpty() {
		return a, nil
	}
	return dispatch.Compose(a, b, xf)
}

// reduceCompose reduces one cell-aligned pair (a, b), both already
// trimmed to the same Count, to zero, one, or two output marks.
func reduceCompose(a, b Mark, xf *crossfield.Manager, dispatch nodechange.Dispatch) ([]Mark, error) {
	switch {
	case a.Kind == Skip && b.Kind == Skip:
		return []Mark{{Kind: Skip, Count: a.Count}}, nil
	case a.Kind == Skip:
		return []Mark{b}, nil
	case b.Kind == Skip:
		return []Mark{a}, nil

	case a.Kind == Insert && b.Kind == Remove:
		return nil, nil // born and destroyed within this pair: vanishes entirely

	case a.Kind == Insert && b.Kind == Modify:
		merged, err := composeChild(a.Child, b.Child, xf, dispatch)
		if err != nil {
			return nil, err
		}
		m := a
		m.Child = merged
		return []Mark{m}, nil

	case a.Kind == Modify && b.Kind == Modify:
		merged, err := composeChild(a.Child, b.Child, xf, dispatch)
		if err != nil {
			return nil, err
		}
		m := a
		m.Child = merged
		return []Mark{m}, nil

	case a.Kind == Modify && b.Kind == Remove:
		return []Mark{b}, nil // the modify never makes it to a durable state

	case a.Kind == Remove && b.Kind == Revive:
		if a.DetachID == b.DetachedID && a.Count == b.Count {
			return nil, nil // revived exactly what was just removed: no-op
		}
		return []Mark{a, b}, nil

	case a.Kind == MoveOut && b.Kind == MoveIn:
		if a.DestID == b.SrcID && a.Count == b.Count {
			return nil, nil // moved out and straight back in: no-op
		}
		return []Mark{a, b}, nil

	default:
		// No specific cancellation/merge rule: both effects survive in
		// sequence at this span.
		var out []Mark
		if a.Kind != Skip {
			out = append(out, a)
		}
		if b.Kind != Skip {
			out = append(out, b)
		}
		return out, nil
	}
}
