// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package detachedindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/treedata"
)

func TestSnapshotRestoreRoundTripsLookups(t *testing.T) {
	idx := New()
	aliceCAI := cai("alice", 1)
	bobCAI := cai("bob", 1)
	idA := idx.Allocate(aliceCAI, &treedata.Node{Type: "leaf", Value: "x"}, 10)
	idB := idx.Allocate(bobCAI, &treedata.Node{Type: "leaf", Value: "x"}, 11)
	require.Equal(t, idA, idB, "identical content should dedupe before the snapshot is even taken")

	diffCAI := cai("alice", 2)
	idx.Allocate(diffCAI, &treedata.Node{Type: "leaf", Value: "y"}, 12)

	snap := idx.Snapshot()
	restored := Restore(snap)

	gotA, ok := restored.Lookup(aliceCAI)
	require.True(t, ok)
	gotB, ok := restored.Lookup(bobCAI)
	require.True(t, ok)
	assert.Equal(t, gotA, gotB, "restored index must preserve the shared arena slot for deduped content")

	gotDiff, ok := restored.Lookup(diffCAI)
	require.True(t, ok)
	assert.NotEqual(t, gotA, gotDiff)
}

func TestSnapshotRestorePreservesEvictionBookkeeping(t *testing.T) {
	idx := New()
	aliceCAI := cai("alice", 1)
	bobCAI := cai("bob", 1)
	idx.Allocate(aliceCAI, &treedata.Node{Type: "leaf", Value: "x"}, 10)
	idx.Allocate(bobCAI, &treedata.Node{Type: "leaf", Value: "x"}, 11)

	snap := idx.Snapshot()
	restored := Restore(snap)

	// The shared entry's lastSeen is the max across the CAIs that dedupe
	// to it, so Evict on the restored index behaves exactly as it would
	// have on the live one.
	dropped := restored.Evict(5)
	assert.Equal(t, 0, dropped)
	_, ok := restored.Lookup(aliceCAI)
	assert.True(t, ok)
}

func TestSnapshotNextPreventsIDReuse(t *testing.T) {
	idx := New()
	idx.Allocate(cai("alice", 1), &treedata.Node{Type: "leaf", Value: "x"}, 1)
	before := idx.Snapshot()

	restored := Restore(before)
	freshID := restored.Allocate(cai("carol", 1), &treedata.Node{Type: "leaf", Value: "z"}, 2)

	for _, se := range before.Entries {
		assert.NotEqual(t, se.ID, freshID)
	}
}
