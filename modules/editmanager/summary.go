// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package editmanager

// Snapshot is the edit-manager's persistable state: the last sequence
// number this session has caught up to, the still-unacknowledged local
// branch, and the trunk history (spec §6's editManager summary blob
// carries all three; the forest itself is a separate root key). The
// codec package encodes this for on-disk summaries. Restoring from the
// trunk a summary carries is for inspection/replay (cmd/hugetreectl) —
// resuming live collaboration only needs the forest already reflecting
// the trunk's effect plus Local/LastSeq/LastSeen, which is why Load
// accepts an empty Trunk without complaint.
type Snapshot struct {
	LastSeq  uint64
	LastSeen bool
	Local    []Commit
	Trunk    []Commit
}

// Summarize captures the edit-manager's resumable state.
func (em *EditManager) Summarize() Snapshot {
	return Snapshot{
		LastSeq:  em.lastSeq,
		LastSeen: em.lastSeen,
		Local:    em.LocalBranch(),
		Trunk:    em.Trunk(),
	}
}

// Load restores a previously captured snapshot. The caller is
// responsible for having already brought the forest to the state the
// snapshot was taken from (typically by loading the same summary's
// forest payload); Load only restores the edit-manager's own
// bookkeeping, not the forest.
func (em *EditManager) Load(snap Snapshot) {
	em.lastSeq = snap.LastSeq
	em.lastSeen = snap.LastSeen
	em.local = append([]Commit(nil), snap.Local...)
	em.trunk = append([]Commit(nil), snap.Trunk...)
	em.txDepth, em.txBase = 0, 0
}

// nextExpectedSeq reports the lowest seq AddSequencedChange will accept.
func (em *EditManager) nextExpectedSeq() (uint64, bool) {
	if !em.lastSeen {
		return 0, false
	}
	return em.lastSeq + 1, true
}
