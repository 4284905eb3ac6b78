// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sequencefield

import (
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

func rewriteCAI(c tagging.CAI, old, new tagging.RevisionTag) tagging.CAI {
	if c.Revision != old {
		return c
	}
	return tagging.CAI{Revision: new, Local: c.Local}
}

// RewriteRevision replaces every CAI and mark Revision tagged old with
// new, throughout a mark list and any nested child changes (spec §4.A).
func RewriteRevision(ml MarkList, old, new tagging.RevisionTag, dispatch nodechange.Dispatch) MarkList {
	out := ml.clone()
	for i, m := range out {
		if m.Revision == old {
			out[i].Revision = new
		}
		out[i].DetachID = rewriteCAI(m.DetachID, old, new)
		out[i].DestID = rewriteCAI(m.DestID, old, new)
		out[i].SrcID = rewriteCAI(m.SrcID, old, new)
		out[i].DetachedID = rewriteCAI(m.DetachedID, old, new)
		if m.Child != nil && dispatch.RewriteRevision != nil {
			out[i].Child = dispatch.RewriteRevision(m.Child, old, new)
		}
	}
	return out
}
