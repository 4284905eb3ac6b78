// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sequencefield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

func noopDispatch() nodechange.Dispatch {
	return nodechange.Dispatch{
		Compose: func(a, b *nodechange.NodeChangeset, xf *crossfield.Manager) (*nodechange.NodeChangeset, error) {
			if a.IsEmpty() {
				return b, nil
			}
			return a, nil
		},
		Invert: func(a *nodechange.NodeChangeset, xf *crossfield.Manager) (*nodechange.NodeChangeset, error) {
			return a, nil
		},
		Rebase: func(a, b *nodechange.NodeChangeset, xf *crossfield.Manager) (*nodechange.NodeChangeset, error) {
			return a, nil
		},
	}
}

func rev(session string, local uint64) tagging.RevisionTag {
	return tagging.RevisionTag{Anonymous: true, Key: tagging.RevisionKey{Session: session, Local: local}}
}

func cai(session string, local, localID uint64) tagging.CAI {
	return tagging.CAI{Revision: rev(session, local), Local: localID}
}

func node(t treedata.TypeID) *treedata.Node { return &treedata.Node{Type: t} }

func TestComposeIdentity(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()
	change := MarkList{{Kind: Insert, Count: 2, Content: []*treedata.Node{node("a"), node("b")}, Revision: rev("alice", 1), LocalID: 1}}

	right, err := Compose(change, Empty(), xf, dispatch)
	require.NoError(t, err)
	assert.Equal(t, MarkList(change), right)

	left, err := Compose(Empty(), change, xf, dispatch)
	require.NoError(t, err)
	assert.Equal(t, MarkList(change), left)
}

func TestInsertInvertInvertIsIdentity(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()
	content := []*treedata.Node{node("a")}
	change := MarkList{{Kind: Insert, Count: 1, Content: content, Revision: rev("alice", 1), LocalID: 7}}

	once, err := Invert(change, xf, dispatch)
	require.NoError(t, err)
	require.Len(t, once, 1)
	assert.Equal(t, Remove, once[0].Kind)
	assert.Equal(t, cai("alice", 1, 7), once[0].DetachID)

	twice, err := Invert(once, xf, dispatch)
	require.NoError(t, err)
	assert.Equal(t, MarkList(change), twice, "inverting an insert-derived remove should recover the exact original insert")
}

func TestReviveInvertInvertIsIdentity(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()
	detachedID := cai("bob", 3, 2)
	change := MarkList{{Kind: Revive, Count: 1, DetachedID: detachedID, Revision: rev("alice", 5)}}

	once, err := Invert(change, xf, dispatch)
	require.NoError(t, err)
	require.Len(t, once, 1)
	assert.Equal(t, Remove, once[0].Kind)
	assert.Equal(t, detachedID, once[0].DetachID)
	assert.Nil(t, once[0].Content, "a genuine remove of already-detached content carries no inline content")

	twice, err := Invert(once, xf, dispatch)
	require.NoError(t, err)
	require.Len(t, twice, 1)
	assert.Equal(t, Revive, twice[0].Kind)
	assert.Equal(t, detachedID, twice[0].DetachedID, "revive/remove round trips should keep reusing the same detached id")
}

// compose(change, invert(change)) must be a no-op for every mark kind the
// undo/redo invariant (spec §3, §7) applies to.
func TestComposeWithInvertIsNoop(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()

	insertChange := MarkList{{Kind: Insert, Count: 1, Content: []*treedata.Node{node("a")}, Revision: rev("alice", 1), LocalID: 1}}
	invInsert, err := Invert(insertChange, xf, dispatch)
	require.NoError(t, err)
	composed, err := Compose(insertChange, invInsert, xf, dispatch)
	require.NoError(t, err)
	assert.Empty(t, composed, "insert then immediate remove should cancel to nothing")

	moveChange := MarkList{{Kind: MoveOut, Count: 1, DestID: cai("alice", 2, 0), Revision: rev("alice", 2)}}
	invMove, err := Invert(moveChange, xf, dispatch)
	require.NoError(t, err)
	composedMove, err := Compose(moveChange, invMove, xf, dispatch)
	require.NoError(t, err)
	assert.Empty(t, composedMove, "move out then straight back in should cancel to nothing")
}

func TestRebaseOverNoopIsIdentity(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()
	change := MarkList{{Kind: Skip, Count: 1}, {Kind: Remove, Count: 1, DetachID: cai("alice", 1, 0), Revision: rev("alice", 1)}}

	rebased, err := Rebase(change, Empty(), nil, xf, dispatch)
	require.NoError(t, err)
	assert.Equal(t, normalize(change), rebased)
}

// Scenario 6 (spec §8): two replicas each insert a node at the same
// position; the tie-break rule must give both replicas the same final
// order regardless of which insert they authored.
func TestScenario6ConcurrentInsertTieBreak(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()

	aliceInsert := MarkList{{Kind: Insert, Count: 1, Content: []*treedata.Node{node("alice-node")}, Revision: rev("alice", 1), LocalID: 1}}
	bobInsert := MarkList{{Kind: Insert, Count: 1, Content: []*treedata.Node{node("bob-node")}, Revision: rev("bob", 1), LocalID: 1}}

	// On alice's replica: apply her own insert, then rebase bob's insert
	// over hers and apply it after.
	bobRebased, err := Rebase(bobInsert, aliceInsert, tagging.Less, xf, dispatch)
	require.NoError(t, err)

	// On bob's replica: apply his own insert, then rebase alice's insert
	// over his and apply it after.
	aliceRebased, err := Rebase(aliceInsert, bobInsert, tagging.Less, xf, dispatch)
	require.NoError(t, err)

	// tagging.Less orders "alice" before "bob" lexicographically, so
	// alice's insert must end up first on both replicas: on alice's
	// replica that means bob's rebased insert gains a leading gap, and
	// on bob's replica alice's rebased insert does not.
	require.Len(t, bobRebased, 2)
	assert.Equal(t, Skip, bobRebased[0].Kind)
	assert.Equal(t, Insert, bobRebased[1].Kind)

	require.Len(t, aliceRebased, 1)
	assert.Equal(t, Insert, aliceRebased[0].Kind)
}

func TestRebaseMoveOutOverRemoveBecomesMuted(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()
	a := MarkList{{Kind: MoveOut, Count: 1, DestID: cai("alice", 2, 0), Revision: rev("alice", 2)}}
	b := MarkList{{Kind: Remove, Count: 1, DetachID: cai("bob", 9, 0), Revision: rev("bob", 9)}}

	rebased, err := Rebase(a, b, tagging.Less, xf, dispatch)
	require.NoError(t, err)
	require.Len(t, rebased, 1)
	assert.Equal(t, MoveOut, rebased[0].Kind)
	assert.True(t, rebased[0].Muted)
}

// An insert landing mid-way through a concurrent wider remove must be
// muted rather than pass through as a live insert into wiped-out
// content (spec §4.D edge case).
func TestRebaseInsertIntoMidRemoveIsMuted(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()
	a := MarkList{
		{Kind: Skip, Count: 2},
		{Kind: Insert, Count: 1, Content: []*treedata.Node{node("a")}, Revision: rev("alice", 1), LocalID: 1},
	}
	detachID := cai("bob", 9, 0)
	b := MarkList{{Kind: Remove, Count: 5, DetachID: detachID, Revision: rev("bob", 9)}}

	rebased, err := Rebase(a, b, tagging.Less, xf, dispatch)
	require.NoError(t, err)
	require.Len(t, rebased, 2)
	assert.Equal(t, Skip, rebased[0].Kind)
	assert.Equal(t, Insert, rebased[1].Kind)
	assert.True(t, rebased[1].Muted)
	assert.Equal(t, detachID, rebased[1].DetachedID)
}

// A muted mark addresses a detached cell, not a live one, so it must
// not surface as a live forest mutation (spec §4.D/§4.H).
func TestMutedMarksProduceNoLiveDelta(t *testing.T) {
	alloc := delta.NewIDAllocator()
	deriveChild := func(*nodechange.NodeChangeset) (*delta.Root, error) { return &delta.Root{}, nil }

	mutedInsert := MarkList{{Kind: Skip, Count: 2}, {Kind: Insert, Count: 1, Muted: true, DetachedID: cai("bob", 9, 0), Revision: rev("alice", 1), LocalID: 1}}
	fd, err := IntoDelta(mutedInsert, alloc, deriveChild)
	require.NoError(t, err)
	require.Len(t, fd.Marks, 1, "the muted insert should not emit a live attach mark")
	assert.Equal(t, delta.MarkRetain, fd.Marks[0].Kind)

	mutedMoveOut := MarkList{{Kind: MoveOut, Count: 1, Muted: true, DestID: cai("alice", 2, 0), Revision: rev("alice", 2)}}
	fd2, err := IntoDelta(mutedMoveOut, alloc, deriveChild)
	require.NoError(t, err)
	assert.Empty(t, fd2.Marks, "a muted move-out must not emit a live detach mark")
}

func TestRebaseModifyOverRemoveAddressesDetachedCell(t *testing.T) {
	xf := crossfield.New()
	dispatch := noopDispatch()
	child := nodechange.NewNodeChangeset()
	child.ValueChange = &nodechange.ValueChange{New: treedata.Value("x")}
	a := MarkList{{Kind: Modify, Count: 1, Child: child}}
	detachID := cai("bob", 9, 0)
	b := MarkList{{Kind: Remove, Count: 1, DetachID: detachID, Revision: rev("bob", 9)}}

	rebased, err := Rebase(a, b, tagging.Less, xf, dispatch)
	require.NoError(t, err)
	require.Len(t, rebased, 1)
	assert.Equal(t, Modify, rebased[0].Kind)
	assert.True(t, rebased[0].Muted)
	assert.Equal(t, detachID, rebased[0].DetachedID)
}
