// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package optionalfield

import (
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/treedata"
)

// DeriveChild converts a nested NodeChangeset into a delta.Root; supplied
// by the modular changeset package so this field kind never needs to
// import it.
type DeriveChild func(*nodechange.NodeChangeset) (*delta.Root, error)

// IntoDelta converts an optional-field changeset into its delta marks
// (spec §4.H): at most one Detach (the old occupant leaving), one Attach
// (the new occupant arriving), or a single Modify mark when the occupant
// is unchanged but its contents were.
func IntoDelta(cs *Changeset, alloc *delta.IDAllocator, deriveChild DeriveChild) (delta.FieldDelta, error) {
	fd := delta.FieldDelta{Kind: treedata.FieldKindOptional}
	if cs == nil {
		return fd, nil
	}

	var detachMark, attachMark *delta.Mark
	for _, m := range cs.Moves {
		switch {
		case m.Src.Self && !m.Dst.Self:
			mk := delta.Mark{Kind: delta.MarkDetach, Count: 1, DestID: alloc.Allocate(m.Dst.CAI)}
			detachMark = &mk
		case !m.Src.Self && m.Dst.Self:
			mk := delta.Mark{Kind: delta.MarkAttach, Count: 1, BuildID: alloc.Allocate(m.Src.CAI)}
			attachMark = &mk
		case !m.Src.Self && !m.Dst.Self:
			fd.Marks = append(fd.Marks, delta.Mark{
				Kind: delta.MarkRename, Count: 1,
				FromID: alloc.Allocate(m.Src.CAI), ToID: alloc.Allocate(m.Dst.CAI),
			})
		}
	}

	for _, cc := range cs.ChildChanges {
		if !cc.Target.Self {
			continue // nested changes on a detached subtree travel with builds/refreshers, not this field's marks
		}
		root, err := deriveChild(cc.Change)
		if err != nil {
			return fd, err
		}
		if root.IsEmpty() {
			continue
		}
		switch {
		case attachMark != nil:
			attachMark.Modify = root
		case detachMark != nil:
			detachMark.Modify = root
		default:
			fd.Marks = append(fd.Marks, delta.Mark{Kind: delta.MarkModify, Count: 1, Modify: root})
		}
	}

	if detachMark != nil {
		fd.Marks = append(fd.Marks, *detachMark)
	}
	if attachMark != nil {
		fd.Marks = append(fd.Marks, *attachMark)
	}
	return fd, nil
}
