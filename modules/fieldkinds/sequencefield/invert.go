// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sequencefield

import (
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// Invert builds the mark list that undoes a (spec §4.D), using each
// mark's own revision/detach identity so the result is self-describing:
//
//   - Insert  -> Remove, filed under the insert's own identity and still
//     carrying Content — a second invert recovers the exact original
//     Insert rather than falling back to a Revive, since the content
//     never left this changeset's hands.
//   - Remove  -> Insert (when Content survived an earlier invert) or
//     Revive addressed at the same detach id otherwise — a genuine
//     removal's content lives only in the detached-field index, not
//     inline, so undoing it means reviving that arena slot.
//   - Revive  -> Remove, filed back under the same detached id, so a
//     revive-then-undo round trip reuses one CAI rather than minting a
//     fresh one each time (spec §9 Open Question: CAI stability across
//     revive/re-remove cycles).
//   - MoveOut <-> MoveIn, swapping which side of the move it names.
//   - Modify  -> Modify, with the nested change inverted via dispatch.
//   - Skip    -> Skip.
func Invert(a MarkList, xf *crossfield.Manager, dispatch nodechange.Dispatch) (MarkList, error) {
	out := make(MarkList, 0, len(a))
	for _, m := range a {
		inv, err := invertMark(m, xf, dispatch)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return normalize(out), nil
}

func invertMark(m Mark, xf *crossfield.Manager, dispatch nodechange.Dispatch) (Mark, error) {
	switch m.Kind {
	case Skip:
		return m, nil

	case Insert:
		return Mark{
			Kind:     Remove,
			Count:    m.Count,
			DetachID: tagging.CAI{Revision: m.Revision, Local: m.LocalID},
			Revision: m.Revision,
			LocalID:  m.LocalID,
			Content:  m.Content,
		}, nil

	case Remove:
		if m.Content != nil {
			return Mark{Kind: Insert, Count: m.Count, Content: m.Content, Revision: m.Revision, LocalID: m.LocalID}, nil
		}
		return Mark{Kind: Revive, Count: m.Count, DetachedID: m.DetachID, Revision: m.Revision}, nil

	case Revive:
		return Mark{Kind: Remove, Count: m.Count, DetachID: m.DetachedID, Revision: m.Revision}, nil

	case MoveOut:
		return Mark{Kind: MoveIn, Count: m.Count, SrcID: m.DestID, Revision: m.Revision}, nil

	case MoveIn:
		return Mark{Kind: MoveOut, Count: m.Count, DestID: m.SrcID, Revision: m.Revision}, nil

	case Modify:
		inv, err := dispatch.Invert(m.Child, xf)
		if err != nil {
			return Mark{}, err
		}
		out := m
		out.Child = inv
		return out, nil

	default:
		return m, nil
	}
}
