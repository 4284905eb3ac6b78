// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schemapolicy

import (
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// RewriteRevision replaces cs's own Revision, if it's old, with new (spec
// §4.A) — a schema changeset carries no CAIs, so this is the whole of the
// rewrite.
func RewriteRevision(cs *Changeset, old, new tagging.RevisionTag, dispatch nodechange.Dispatch) *Changeset {
	if cs.IsNoop() || cs.Revision != old {
		return cs
	}
	out := cs.clone()
	out.Revision = new
	return out
}
