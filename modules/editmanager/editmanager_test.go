// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package editmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/fieldkinds/optionalfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// stubForest counts Apply calls and answers Exists from a fixed set, good
// enough to exercise the sandwich-rebase's apply/undo/reapply sequencing
// without needing the real forest collaborator.
type stubForest struct {
	applies int
	live    map[tagging.CAI]bool
}

func newStubForest() *stubForest { return &stubForest{live: make(map[tagging.CAI]bool)} }

func (f *stubForest) Apply(*delta.Derivation, map[tagging.CAI]*treedata.Node) error {
	f.applies++
	return nil
}

func (f *stubForest) Exists(cai tagging.CAI) bool { return f.live[cai] }

func fillChange(rev tagging.RevisionTag, local uint64, field treedata.FieldKey) *changeset.ModularChangeset {
	fill := tagging.CAI{Revision: rev, Local: local}
	nc := nodechange.NewNodeChangeset()
	nc.Fields[field] = nodechange.FieldChange{
		Kind:   treedata.FieldKindOptional,
		Change: &optionalfield.Changeset{Moves: []optionalfield.Move{{Src: optionalfield.AtCAI(fill), Dst: optionalfield.SelfTarget(), Kind: optionalfield.NodeTargeting}}},
	}
	return &changeset.ModularChangeset{Revision: rev, Root: nc}
}

func newTestManager(forest Forest) (*EditManager, *tagging.Minter) {
	engine := changeset.NewEngine(changeset.NewDefaultRegistry(), nil)
	minter := tagging.NewMinter("alice")
	return New(engine, minter, forest, nil), minter
}

func TestAddLocalChangeAppliesAndTracksBranch(t *testing.T) {
	forest := newStubForest()
	em, minter := newTestManager(forest)

	rev := minter.NewAnonymous()
	cs := fillChange(rev, 1, "content")
	require.NoError(t, em.AddLocalChange(cs))

	assert.Equal(t, 1, forest.applies)
	assert.Len(t, em.LocalBranch(), 1)
}

func TestAddSequencedChangePromotesOwnCommitWithoutRebase(t *testing.T) {
	forest := newStubForest()
	em, minter := newTestManager(forest)

	rev := minter.NewAnonymous()
	cs := fillChange(rev, 1, "content")
	require.NoError(t, em.AddLocalChange(cs))

	require.NoError(t, em.AddSequencedChange(rev, 1, cs))

	assert.Empty(t, em.LocalBranch())
	require.Len(t, em.Trunk(), 1)
	assert.Equal(t, uint64(1), em.Trunk()[0].Revision.Seq)
	// Promoting our own commit applies nothing further: the forest
	// already reflects it from the original local apply.
	assert.Equal(t, 1, forest.applies)
}

func TestAddSequencedChangeRebasesLocalBranchOverPeerCommit(t *testing.T) {
	forest := newStubForest()
	em, minter := newTestManager(forest)

	localRev := minter.NewAnonymous()
	localCS := fillChange(localRev, 1, "title")
	require.NoError(t, em.AddLocalChange(localCS))
	require.Equal(t, 1, forest.applies)

	peerMinter := tagging.NewMinter("bob")
	peerRev := peerMinter.NewAnonymous()
	peerCS := fillChange(peerRev, 1, "content")

	require.NoError(t, em.AddSequencedChange(peerRev, 1, peerCS))

	require.Len(t, em.Trunk(), 1)
	assert.Equal(t, uint64(1), em.Trunk()[0].Revision.Seq)
	require.Len(t, em.LocalBranch(), 1)
	assert.Equal(t, localRev, em.LocalBranch()[0].Revision)

	// undo local, apply peer, reapply rebased local: three applies on
	// top of the original local apply.
	assert.Equal(t, 4, forest.applies)
}

func TestAddSequencedChangeRejectsOutOfOrderSeq(t *testing.T) {
	forest := newStubForest()
	em, minter := newTestManager(forest)

	rev := minter.NewAnonymous()
	cs := fillChange(rev, 1, "content")
	require.NoError(t, em.AddSequencedChange(rev, 5, cs))

	peerRev := tagging.NewMinter("bob").NewAnonymous()
	err := em.AddSequencedChange(peerRev, 5, fillChange(peerRev, 1, "content"))
	assert.Error(t, err)
}

func TestTransactionSquashesLocalCommitsIntoOne(t *testing.T) {
	forest := newStubForest()
	em, minter := newTestManager(forest)

	em.Start()
	require.NoError(t, em.AddLocalChange(fillChange(minter.NewAnonymous(), 1, "title")))
	require.NoError(t, em.AddLocalChange(fillChange(minter.NewAnonymous(), 1, "content")))
	require.NoError(t, em.CommitTx())

	assert.Len(t, em.LocalBranch(), 1, "two commits inside one transaction should squash to one")
}

func TestTransactionAbortUndoesLocalCommits(t *testing.T) {
	forest := newStubForest()
	em, minter := newTestManager(forest)

	em.Start()
	require.NoError(t, em.AddLocalChange(fillChange(minter.NewAnonymous(), 1, "title")))
	applied := forest.applies
	require.NoError(t, em.AbortTx())

	assert.Empty(t, em.LocalBranch())
	assert.Equal(t, applied+1, forest.applies, "abort undoes by applying one inverse delta")
}

func TestSummarizeAndLoadRoundTripsBookkeeping(t *testing.T) {
	forest := newStubForest()
	em, minter := newTestManager(forest)

	rev := minter.NewAnonymous()
	require.NoError(t, em.AddLocalChange(fillChange(rev, 1, "content")))
	snap := em.Summarize()

	restored, _ := newTestManager(forest)
	restored.Load(snap)

	assert.Equal(t, em.LocalBranch(), restored.LocalBranch())
	assert.Equal(t, em.lastSeq, restored.lastSeq)
	assert.Equal(t, em.lastSeen, restored.lastSeen)
}
