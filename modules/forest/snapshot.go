// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/treedata"
)

// Snapshot is the persistable form of a Forest: the live tree root plus
// the detached-subtree arena, keyed by the stable ids the detached-field
// index hands out (spec §6's "forest" summary root key).
type Snapshot struct {
	Root     *treedata.Node
	Detached map[detachedindex.RootID]*treedata.Node
}

// Snapshot captures f's current tree and arena, deep-copied so the
// caller (typically a codec encoding a summary) can't observe later
// mutations to the live forest.
func (f *Forest) Snapshot() Snapshot {
	out := Snapshot{
		Root:     f.container.Clone(),
		Detached: make(map[detachedindex.RootID]*treedata.Node, len(f.detached)),
	}
	for id, n := range f.detached {
		out.Detached[id] = n.Clone()
	}
	return out
}

// Restore rebuilds a forest from a previously captured snapshot and the
// detached-field index it was captured alongside (the two summary root
// keys are written and read together; index's RootIDs are what
// snap.Detached is keyed by).
func Restore(index *detachedindex.Index, snap Snapshot) *Forest {
	f := New(index)
	if snap.Root != nil {
		f.container = snap.Root.Clone()
	}
	for id, n := range snap.Detached {
		f.detached[id] = n.Clone()
	}
	return f
}
