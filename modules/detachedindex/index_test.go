// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package detachedindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

func cai(session string, local uint64) tagging.CAI {
	return tagging.CAI{Revision: tagging.RevisionTag{Anonymous: true, Key: tagging.RevisionKey{Session: session, Local: 1}}, Local: local}
}

func TestAllocateDedupesIdenticalContentAcrossCAIs(t *testing.T) {
	idx := New()
	contentA := &treedata.Node{Type: "leaf", Value: "x"}
	contentB := &treedata.Node{Type: "leaf", Value: "x"}

	idA := idx.Allocate(cai("alice", 1), contentA, 10)
	idB := idx.Allocate(cai("bob", 1), contentB, 11)
	assert.Equal(t, idA, idB, "identical content introduced by two replicas should collapse to one arena slot")

	idDifferent := idx.Allocate(cai("alice", 2), &treedata.Node{Type: "leaf", Value: "y"}, 12)
	assert.NotEqual(t, idA, idDifferent)
}

func TestAllocateIsStableForTheSameCAI(t *testing.T) {
	idx := New()
	c := cai("alice", 1)
	content := &treedata.Node{Type: "leaf", Value: "x"}
	first := idx.Allocate(c, content, 1)
	second := idx.Allocate(c, content, 2)
	assert.Equal(t, first, second)
}

func TestEvictDropsEntriesOutsideRetentionWindow(t *testing.T) {
	idx := New()
	oldCAI := cai("alice", 1)
	idx.Allocate(oldCAI, &treedata.Node{Type: "leaf", Value: "old"}, 5)
	newCAI := cai("alice", 2)
	idx.Allocate(newCAI, &treedata.Node{Type: "leaf", Value: "new"}, 50)

	dropped := idx.Evict(10)
	assert.Equal(t, 1, dropped)

	_, ok := idx.Lookup(oldCAI)
	assert.False(t, ok)
	_, ok = idx.Lookup(newCAI)
	require.True(t, ok)
}
