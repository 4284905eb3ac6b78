// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schemapolicy

import (
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/treedata"
)

// IntoDelta converts a schema changeset into its delta representation: a
// single value-replacement mark, since a schema change has no tree
// structure to attach or detach. A forest consuming the delta ignores a
// FieldKindSchema mark's occupancy (there is none); it exists so the
// change rides through the same Compose/Invert/Rebase/IntoDelta
// recursion every other field kind does, for constraint evaluation and
// local-commit squashing.
func IntoDelta(cs *Changeset) (delta.FieldDelta, error) {
	fd := delta.FieldDelta{Kind: treedata.FieldKindSchema}
	if cs.IsNoop() {
		return fd, nil
	}
	fd.Marks = []delta.Mark{{
		Kind:        delta.MarkModify,
		Count:       1,
		ValueChange: &nodechange.ValueChange{Old: treedata.Value(cs.Old), New: treedata.Value(cs.New)},
	}}
	return fd, nil
}
