// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package detachedindex

import "github.com/antgroup/hugetree/modules/tagging"

// SnapshotEntry is one CAI -> RootID arena slot, persisted verbatim so
// Restore resumes dedupe and Evict bookkeeping exactly as this index had
// it (spec §6's detachedFieldIndex summary root key).
type SnapshotEntry struct {
	CAI      tagging.CAI
	ID       RootID
	Hash     [32]byte
	LastSeen uint64
}

// Snapshot is the persistable form of the whole index.
type Snapshot struct {
	Entries []SnapshotEntry
	Next    RootID
}

// Snapshot captures idx's current table.
func (idx *Index) Snapshot() Snapshot {
	out := Snapshot{Entries: make([]SnapshotEntry, 0, len(idx.byCAI)), Next: idx.next}
	for cai, e := range idx.byCAI {
		out.Entries = append(out.Entries, SnapshotEntry{CAI: cai, ID: e.id, Hash: e.hash, LastSeen: e.lastSeen})
	}
	return out
}

// Restore rebuilds an index from a previously captured snapshot, e.g.
// loaded from a summary's detachedFieldIndex blob. CAIs that dedupe to
// the same content hash share one *entry, matching a live index's
// invariant that Evict's byHash cleanup relies on.
func Restore(snap Snapshot) *Index {
	idx := New()
	idx.next = snap.Next
	for _, se := range snap.Entries {
		e, ok := idx.byHash[se.Hash]
		if !ok {
			e = &entry{id: se.ID, hash: se.Hash, lastSeen: se.LastSeen}
			idx.byHash[se.Hash] = e
		} else if se.LastSeen > e.lastSeen {
			e.lastSeen = se.LastSeen
		}
		idx.byCAI[se.CAI] = e
	}
	return idx
}
