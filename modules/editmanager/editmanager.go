// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package editmanager implements the edit-manager (spec §4.F, §5): the
// trunk of sequenced commits, the local branch of unsequenced commits
// still awaiting acknowledgment, and the sandwich-rebase algorithm run on
// every inbound sequenced commit.
package editmanager

import (
	"github.com/antgroup/hugetree/modules/changeerrors"
	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/tracelog"
	"github.com/antgroup/hugetree/modules/treedata"
)

// Commit is one entry on the trunk or local branch.
type Commit struct {
	Revision  tagging.RevisionTag
	Changeset *changeset.ModularChangeset
}

// Forest is the subset of the forest collaborator (spec §6) the
// edit-manager needs: applying a derived delta (content resolves a
// ForestID reference the delta makes to the CAI and new content a build
// or refresher introduces it under, for ids the forest hasn't seen
// before), and answering whether a CAI still names a live node (for
// constraint evaluation).
type Forest interface {
	Apply(d *delta.Derivation, content map[tagging.CAI]*treedata.Node) error
	Exists(cai tagging.CAI) bool
}

// EditManager owns one branch's view of history: the trunk (every commit
// the sequencer has acknowledged, in order) and the local branch (this
// session's own commits still waiting for acknowledgment).
type EditManager struct {
	engine *changeset.Engine
	minter *tagging.Minter
	forest Forest
	index  *detachedindex.Index

	trunk []Commit
	local []Commit

	lastSeq  uint64
	lastSeen bool

	txDepth int
	txBase  int
}

// New returns an edit-manager for one collaborative session, with f as
// the forest it keeps optimistically up to date.
func New(engine *changeset.Engine, minter *tagging.Minter, f Forest, index *detachedindex.Index) *EditManager {
	return &EditManager{engine: engine, minter: minter, forest: f, index: index}
}

// AddLocalChange appends a new locally authored commit to the local
// branch, applying its delta to the forest immediately (optimistic local
// apply, spec §5).
func (em *EditManager) AddLocalChange(cs *changeset.ModularChangeset) error {
	if err := em.applyConstraintsAndDelta(cs); err != nil {
		return err
	}
	em.local = append(em.local, Commit{Revision: cs.Revision, Changeset: cs})
	return nil
}

func (em *EditManager) applyConstraintsAndDelta(cs *changeset.ModularChangeset) error {
	if err := em.engine.EvaluateConstraints(cs.Root, em.forest.Exists); err != nil {
		if changeerrors.IsConstraintViolation(err) {
			tracelog.Warnf("editmanager: %v, reducing commit to no-op", err)
			return nil
		}
		return err
	}
	d, err := em.engine.IntoDelta(cs)
	if err != nil {
		return err
	}
	return em.forest.Apply(d, buildContent(cs))
}

// buildContent unions a changeset's builds and refreshers, the two maps
// that can supply content for a CAI a delta's Attach/Rename marks
// reference — refreshers win on overlap since they're a snapshot of
// content that already existed, not newly introduced content.
func buildContent(cs *changeset.ModularChangeset) map[tagging.CAI]*treedata.Node {
	if len(cs.Builds) == 0 && len(cs.Refreshers) == 0 {
		return nil
	}
	out := make(map[tagging.CAI]*treedata.Node, len(cs.Builds)+len(cs.Refreshers))
	for k, v := range cs.Builds {
		out[k] = v
	}
	for k, v := range cs.Refreshers {
		out[k] = v
	}
	return out
}

// AddSequencedChange runs the sandwich-rebase algorithm for one inbound
// sequenced commit (spec §4.F, §5):
//
//  1. If it's the acknowledgment of our own local commit's head, it's
//     simply promoted to the trunk under its now-assigned revision — no
//     rebase needed, since nothing changed underneath it.
//  2. Otherwise it's a peer's commit: every local commit is first undone
//     from the forest, the peer commit is applied, each local commit is
//     rebased forward over it (advancing the rebase target the same way
//     for the next local commit), and the rebased local branch is
//     reapplied — the "sandwich" the algorithm is named for.
func (em *EditManager) AddSequencedChange(originRevision tagging.RevisionTag, seq uint64, cs *changeset.ModularChangeset) error {
	if expected, ok := em.nextExpectedSeq(); ok && seq < expected {
		return changeerrors.ErrUnexpectedSeqNum
	}
	sequencedTag := tagging.Sequence(originRevision, seq)

	if len(em.local) > 0 && em.local[0].Revision == originRevision {
		sequenced := em.engine.ChangeRevision(cs, sequencedTag)
		em.trunk = append(em.trunk, Commit{Revision: sequencedTag, Changeset: sequenced})
		em.local = em.local[1:]
		em.lastSeq, em.lastSeen = seq, true
		return nil
	}

	for i := len(em.local) - 1; i >= 0; i-- {
		inv, err := em.engine.Invert(em.local[i].Changeset, em.minter.NewRollbackOf(em.local[i].Revision))
		if err != nil {
			return err
		}
		if err := em.applyDeltaOnly(inv); err != nil {
			return err
		}
	}

	sequenced := em.engine.ChangeRevision(cs, sequencedTag)
	if err := em.applyConstraintsAndDelta(sequenced); err != nil {
		return err
	}
	em.trunk = append(em.trunk, Commit{Revision: sequencedTag, Changeset: sequenced})

	baseline := sequenced
	rebasedLocal := make([]Commit, 0, len(em.local))
	for _, lc := range em.local {
		rebasedChange, err := em.engine.Rebase(lc.Changeset, baseline)
		if err != nil {
			return err
		}
		advancedBaseline, err := em.engine.Rebase(baseline, lc.Changeset)
		if err != nil {
			return err
		}
		rebasedLocal = append(rebasedLocal, Commit{Revision: lc.Revision, Changeset: rebasedChange})
		baseline = advancedBaseline
	}
	for _, rc := range rebasedLocal {
		if err := em.applyConstraintsAndDelta(rc.Changeset); err != nil {
			return err
		}
	}
	em.local = rebasedLocal
	em.lastSeq, em.lastSeen = seq, true
	return nil
}

func (em *EditManager) applyDeltaOnly(cs *changeset.ModularChangeset) error {
	d, err := em.engine.IntoDelta(cs)
	if err != nil {
		return err
	}
	return em.forest.Apply(d, buildContent(cs))
}

// Trunk returns the sequenced commit history, oldest first.
func (em *EditManager) Trunk() []Commit { return append([]Commit(nil), em.trunk...) }

// LocalBranch returns the still-unacknowledged local commits, oldest first.
func (em *EditManager) LocalBranch() []Commit { return append([]Commit(nil), em.local...) }

// MinTrunkSeq returns the trunk's earliest sequence number, or false when
// the trunk is empty. AdvanceRetention does not consult it; it evicts by
// the minSeq its caller passes.
func (em *EditManager) MinTrunkSeq() (uint64, bool) {
	if len(em.trunk) == 0 {
		return 0, false
	}
	return em.trunk[0].Revision.Seq, true
}

// AdvanceRetention evicts detached-field index entries no longer
// reachable from any branch still in scope, given minSeq as the lowest
// sequence number any connected peer might still rebase against (spec
// §4.F, §4.I).
func (em *EditManager) AdvanceRetention(minSeq uint64) int {
	return em.index.Evict(minSeq)
}
