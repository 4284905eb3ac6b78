// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schemapolicy

import "github.com/antgroup/hugetree/modules/tagging"

// Changeset is the schema field's per-field changeset: a replacement of
// Old by New, authored under Revision. Revision is carried on the
// changeset itself (mirroring sequencefield's per-mark Revision) rather
// than read off the enclosing node changeset, since Rebase's tie-break
// needs it directly.
type Changeset struct {
	Revision tagging.RevisionTag
	Old, New *Policy
}

// Empty returns a changeset with no effect.
func Empty() *Changeset { return &Changeset{} }

// IsNoop reports whether cs changes the policy at all.
func (cs *Changeset) IsNoop() bool {
	return cs == nil || cs.New == nil
}

func (cs *Changeset) clone() *Changeset {
	if cs == nil {
		return Empty()
	}
	out := *cs
	return &out
}
