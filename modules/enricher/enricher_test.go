// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package enricher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

type fixedForest map[tagging.CAI]*treedata.Node

func (f fixedForest) DetachedContent(cai tagging.CAI) (*treedata.Node, bool) {
	n, ok := f[cai]
	return n, ok
}

func rev(session string) tagging.RevisionTag {
	return tagging.RevisionTag{Anonymous: false, Key: tagging.RevisionKey{Session: session, Local: 1}, Seq: 1}
}

func TestEnrichAttachesExistingDetachedContent(t *testing.T) {
	existing := tagging.CAI{Revision: rev("bob"), Local: 5}
	forest := fixedForest{existing: &treedata.Node{Type: "leaf", Value: "x"}}

	e, err := New(forest, nil, 1e4, 1<<20)
	require.NoError(t, err)
	e.cache.Wait()

	cs := &changeset.ModularChangeset{Revision: rev("alice"), Root: nodechange.NewNodeChangeset()}
	e.Enrich(cs, []tagging.CAI{existing})

	require.Contains(t, cs.Refreshers, existing)
	assert.Equal(t, "x", cs.Refreshers[existing].Value)
}

func TestEnrichSkipsAnonymousAndMissingCAIs(t *testing.T) {
	forest := fixedForest{}
	e, err := New(forest, nil, 1e4, 1<<20)
	require.NoError(t, err)

	anon := tagging.CAI{Revision: tagging.RevisionTag{Anonymous: true, Key: tagging.RevisionKey{Session: "alice", Local: 1}}, Local: 1}
	missing := tagging.CAI{Revision: rev("bob"), Local: 9}

	cs := &changeset.ModularChangeset{Revision: rev("alice"), Root: nodechange.NewNodeChangeset()}
	e.Enrich(cs, []tagging.CAI{anon, missing})

	assert.Empty(t, cs.Refreshers)
}

func TestEnrichSkipsCAIsAlreadyPresent(t *testing.T) {
	existing := tagging.CAI{Revision: rev("bob"), Local: 5}
	forest := fixedForest{existing: &treedata.Node{Type: "leaf", Value: "fresh"}}
	e, err := New(forest, nil, 1e4, 1<<20)
	require.NoError(t, err)

	cs := &changeset.ModularChangeset{
		Revision:   rev("alice"),
		Root:       nodechange.NewNodeChangeset(),
		Refreshers: map[tagging.CAI]*treedata.Node{existing: {Type: "leaf", Value: "stale-but-already-decided"}},
	}
	e.Enrich(cs, []tagging.CAI{existing})

	assert.Equal(t, "stale-but-already-decided", cs.Refreshers[existing].Value)
}
