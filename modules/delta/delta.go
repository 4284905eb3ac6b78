// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package delta defines the forest-mutation shape (spec §4.H) that a
// committed modular changeset is converted into, plus the id-range
// allocator every field-kind's intoDelta call shares so a CAI referenced
// twice within one delta gets one forest-local id.
package delta

import (
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// ForestID is a forest-local handle allocated for a CAI the delta
// references; the forest collaborator uses it to locate a detached
// subtree without needing to know the CAI scheme.
type ForestID uint64

// MarkKind enumerates the four delta leaf kinds spec §4.H names.
type MarkKind int

const (
	MarkAttach MarkKind = iota
	MarkDetach
	MarkRename
	MarkModify
	// MarkRetain covers a run of cells a sequence field's delta passes
	// over untouched — needed so a consumer walking FieldDelta.Marks can
	// compute absolute positions; optional fields never emit it since
	// they have no "between cells" to retain.
	MarkRetain
)

// Mark is one delta leaf. Count is the number of adjacent cells it
// covers (1 for optional fields, which have at most one cell).
type Mark struct {
	Kind  MarkKind
	Count int

	BuildID ForestID // MarkAttach: id of the detached content to attach
	DestID  ForestID // MarkDetach: id to file the removed subtree under
	FromID  ForestID // MarkRename: id the cell is currently attached under
	ToID    ForestID // MarkRename: id to rename it to

	// Modify carries nested field deltas for the node occupying this
	// cell, without changing its occupancy.
	Modify      *Root
	ValueChange *nodechange.ValueChange
}

// FieldDelta is the ordered (for sequence fields) or singleton (for
// optional fields) list of marks covering one field.
type FieldDelta struct {
	Kind  treedata.FieldKindID
	Marks []Mark
}

// Root is a field-keyed delta tree: the forest-mutation representation of
// one node's changes, recursively nested under MarkModify for unchanged
// occupancy but modified descendants.
type Root struct {
	Fields      map[treedata.FieldKey]FieldDelta
	ValueChange *nodechange.ValueChange
}

// IsEmpty reports whether this delta node would not mutate the forest at
// all — used to collapse pointless Modify marks.
func (r *Root) IsEmpty() bool {
	if r == nil {
		return true
	}
	if r.ValueChange != nil {
		return false
	}
	for _, fd := range r.Fields {
		if len(fd.Marks) > 0 {
			return false
		}
	}
	return true
}

// IDAllocator memoizes CAI -> ForestID within the scope of a single delta
// derivation so the same CAI, referenced from two different field
// algebras (e.g. a move's source and destination), resolves to the same
// forest-local id.
type IDAllocator struct {
	next ForestID
	memo map[tagging.CAI]ForestID
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1, memo: make(map[tagging.CAI]ForestID)}
}

// Allocate returns the forest id for cai, minting one on first use.
func (a *IDAllocator) Allocate(cai tagging.CAI) ForestID {
	if id, ok := a.memo[cai]; ok {
		return id
	}
	id := a.next
	a.next++
	a.memo[cai] = id
	return id
}

// Lookup returns the forest id previously allocated for cai, if any,
// without minting a new one.
func (a *IDAllocator) Lookup(cai tagging.CAI) (ForestID, bool) {
	id, ok := a.memo[cai]
	return id, ok
}

// Reverse returns the forest id -> CAI mapping accumulated by this
// allocator, for a forest collaborator that needs to resolve a delta's
// ForestID references back to the CAIs (and, via the changeset's builds/
// refreshers, the actual content) they name.
func (a *IDAllocator) Reverse() map[ForestID]tagging.CAI {
	out := make(map[ForestID]tagging.CAI, len(a.memo))
	for cai, id := range a.memo {
		out[id] = cai
	}
	return out
}

// Derivation bundles a delta tree with the allocator that produced it, so
// a consumer can resolve its ForestID references back to CAIs.
type Derivation struct {
	Root  *Root
	Alloc *IDAllocator
}
