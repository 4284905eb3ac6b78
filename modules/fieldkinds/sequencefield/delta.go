// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sequencefield

import (
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// DeriveChild converts a nested NodeChangeset into a delta.Root; supplied
// by the modular changeset package so this field kind never needs to
// import it.
type DeriveChild func(*nodechange.NodeChangeset) (*delta.Root, error)

// IntoDelta converts a mark list into its forest-mutation marks (spec
// §4.H): Insert/Revive/MoveIn become Attach, Remove/MoveOut become
// Detach, Modify stays Modify, and untouched Skip runs become Retain so a
// consumer can track absolute field position.
func IntoDelta(ml MarkList, alloc *delta.IDAllocator, deriveChild DeriveChild) (delta.FieldDelta, error) {
	fd := delta.FieldDelta{Kind: treedata.FieldKindSequence}
	for _, m := range ml {
		dm, err := markToDelta(m, alloc, deriveChild)
		if err != nil {
			return fd, err
		}
		if dm != nil {
			fd.Marks = append(fd.Marks, *dm)
		}
	}
	return fd, nil
}

func markToDelta(m Mark, alloc *delta.IDAllocator, deriveChild DeriveChild) (*delta.Mark, error) {
	switch m.Kind {
	case Skip:
		return &delta.Mark{Kind: delta.MarkRetain, Count: m.Count}, nil

	case Insert:
		if m.Muted {
			// Landed in a range a concurrent edit detached; nothing live
			// to attach here. The content is still carried on the mark
			// (for a later revive to pick up), just not materialized now.
			return nil, nil
		}
		id := alloc.Allocate(tagging.CAI{Revision: m.Revision, Local: m.LocalID})
		dm := &delta.Mark{Kind: delta.MarkAttach, Count: m.Count, BuildID: id}
		if err := attachModify(dm, m.Child, deriveChild); err != nil {
			return nil, err
		}
		return dm, nil

	case Remove:
		dm := &delta.Mark{Kind: delta.MarkDetach, Count: m.Count, DestID: alloc.Allocate(m.DetachID)}
		return dm, nil

	case MoveOut:
		if m.Muted {
			// Addresses a cell a concurrent remove already detached; the
			// move becomes a no-op whose source is that detached cell,
			// not a second live detach of the same content.
			return nil, nil
		}
		return &delta.Mark{Kind: delta.MarkDetach, Count: m.Count, DestID: alloc.Allocate(m.DestID)}, nil

	case MoveIn:
		return &delta.Mark{Kind: delta.MarkAttach, Count: m.Count, BuildID: alloc.Allocate(m.SrcID)}, nil

	case Revive:
		dm := &delta.Mark{Kind: delta.MarkAttach, Count: m.Count, BuildID: alloc.Allocate(m.DetachedID)}
		if err := attachModify(dm, m.Child, deriveChild); err != nil {
			return nil, err
		}
		return dm, nil

	case Modify:
		if m.Muted {
			// Addresses a detached cell, not a live one; it travels with
			// the detached-field index entry rather than this field's
			// live-position marks.
			return nil, nil
		}
		root, err := deriveChild(m.Child)
		if err != nil {
			return nil, err
		}
		if root.IsEmpty() {
			return &delta.Mark{Kind: delta.MarkRetain, Count: m.Count}, nil
		}
		return &delta.Mark{Kind: delta.MarkModify, Count: m.Count, Modify: root}, nil

	default:
		return &delta.Mark{Kind: delta.MarkRetain, Count: m.Count}, nil
	}
}

func attachModify(dm *delta.Mark, child *nodechange.NodeChangeset, deriveChild DeriveChild) error {
	if child.IsEmpty() {
		return nil
	}
	root, err := deriveChild(child)
	if err != nil {
		return err
	}
	if !root.IsEmpty() {
		dm.Modify = root
	}
	return nil
}
