// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package optionalfield

import (
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

func rewriteTarget(t Target, old, new tagging.RevisionTag) Target {
	if t.Self || t.CAI.Revision != old {
		return t
	}
	return AtCAI(tagging.CAI{Revision: new, Local: t.CAI.Local})
}

// RewriteRevision replaces every CAI tagged old with the same CAI tagged
// new, throughout a changeset's moves, reserved detach id, and nested
// child changes (spec §4.A).
func RewriteRevision(a *Changeset, old, new tagging.RevisionTag, dispatch nodechange.Dispatch) *Changeset {
	if a.IsNoop() && a.ReservedDetachID == nil {
		return a
	}
	out := a.clone()
	for i, m := range out.Moves {
		out.Moves[i] = Move{Src: rewriteTarget(m.Src, old, new), Dst: rewriteTarget(m.Dst, old, new), Kind: m.Kind}
	}
	if out.ReservedDetachID != nil && out.ReservedDetachID.Revision == old {
		id := tagging.CAI{Revision: new, Local: out.ReservedDetachID.Local}
		out.ReservedDetachID = &id
	}
	for i, cc := range out.ChildChanges {
		target := rewriteTarget(cc.Target, old, new)
		change := cc.Change
		if dispatch.RewriteRevision != nil {
			change = dispatch.RewriteRevision(change, old, new)
		}
		out.ChildChanges[i] = ChildChange{Target: target, Change: change}
	}
	return out
}
