// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package idcompress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/tagging"
)

func TestNormalizeIsStableAndRecognizeRoundTrips(t *testing.T) {
	c := New(4)
	key := tagging.RevisionKey{Session: "alice", Local: 1}

	id1 := c.Normalize(key)
	id2 := c.Normalize(key)
	assert.Equal(t, id1, id2)

	got, ok := c.Recognize(id1)
	require.True(t, ok)
	assert.Equal(t, key, got)
}

func TestNormalizeSurvivesGrowth(t *testing.T) {
	c := New(2)
	ids := make(map[tagging.RevisionKey]uint64)
	for i := 0; i < 200; i++ {
		key := tagging.RevisionKey{Session: "alice", Local: uint64(i)}
		ids[key] = c.Normalize(key)
	}
	for key, id := range ids {
		assert.Equal(t, id, c.Normalize(key))
		got, ok := c.Recognize(id)
		require.True(t, ok)
		assert.Equal(t, key, got)
	}
}

func TestLessOrdersSequencedBeforeAnonymous(t *testing.T) {
	c := New(4)
	seq := tagging.RevisionTag{Anonymous: false, Seq: 1, Key: tagging.RevisionKey{Session: "alice", Local: 1}}
	anon := tagging.RevisionTag{Anonymous: true, Key: tagging.RevisionKey{Session: "bob", Local: 1}}
	assert.True(t, c.Less(seq, anon))
	assert.False(t, c.Less(anon, seq))
}

func TestLessIsConsistentForAnonymousPair(t *testing.T) {
	c := New(4)
	a := tagging.RevisionTag{Anonymous: true, Key: tagging.RevisionKey{Session: "alice", Local: 1}}
	b := tagging.RevisionTag{Anonymous: true, Key: tagging.RevisionKey{Session: "bob", Local: 1}}
	assert.NotEqual(t, c.Less(a, b), c.Less(b, a))
}
