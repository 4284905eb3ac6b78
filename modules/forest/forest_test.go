// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/fieldkinds/optionalfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

func rev(session string, local uint64) tagging.RevisionTag {
	return tagging.RevisionTag{Anonymous: false, Key: tagging.RevisionKey{Session: session, Local: local}, Seq: local}
}

func fillRoot(t *testing.T, f *Forest, engine *changeset.Engine, author tagging.RevisionTag, localID uint64, leaf *treedata.Node) tagging.CAI {
	t.Helper()
	fillCAI := tagging.CAI{Revision: author, Local: localID}
	nc := nodechange.NewNodeChangeset()
	nc.Fields[treedata.RootFieldKey] = nodechange.FieldChange{
		Kind: treedata.FieldKindOptional,
		Change: &optionalfield.Changeset{
			Moves: []optionalfield.Move{{Src: optionalfield.AtCAI(fillCAI), Dst: optionalfield.SelfTarget(), Kind: optionalfield.NodeTargeting}},
		},
	}
	cs := &changeset.ModularChangeset{
		Revision: author,
		Root:     nc,
		Builds:   map[tagging.CAI]*treedata.Node{fillCAI: WrapRun([]*treedata.Node{leaf})},
	}
	d, err := engine.IntoDelta(cs)
	require.NoError(t, err)
	require.NoError(t, f.Apply(d, cs.Builds))
	return fillCAI
}

func TestApplyFillsRootFromBuild(t *testing.T) {
	engine := changeset.NewEngine(changeset.NewDefaultRegistry(), nil)
	f := New(detachedindex.New())
	author := rev("alice", 1)

	fillRoot(t, f, engine, author, 1, &treedata.Node{Type: "doc", Value: "hello"})

	require.NotNil(t, f.Root())
	assert.Equal(t, treedata.Value("hello"), f.Root().Value)
}

func TestApplyDetachThenReviveRestoresSameContent(t *testing.T) {
	engine := changeset.NewEngine(changeset.NewDefaultRegistry(), nil)
	idx := detachedindex.New()
	f := New(idx)
	author := rev("alice", 1)

	fillCAI := fillRoot(t, f, engine, author, 1, &treedata.Node{Type: "doc", Value: "hello"})

	clearCAI := tagging.CAI{Revision: author, Local: 2}
	nc := nodechange.NewNodeChangeset()
	nc.Fields[treedata.RootFieldKey] = nodechange.FieldChange{
		Kind: treedata.FieldKindOptional,
		Change: &optionalfield.Changeset{
			Moves: []optionalfield.Move{{Src: optionalfield.SelfTarget(), Dst: optionalfield.AtCAI(clearCAI), Kind: optionalfield.NodeTargeting}},
		},
	}
	clearCS := &changeset.ModularChangeset{Revision: rev("alice", 2), Root: nc}
	d, err := engine.IntoDelta(clearCS)
	require.NoError(t, err)
	require.NoError(t, f.Apply(d, nil))

	assert.Nil(t, f.Root())
	assert.True(t, f.Exists(clearCAI))

	content, ok := f.DetachedContent(clearCAI)
	require.True(t, ok)
	assert.Equal(t, treedata.Value("hello"), content.Value)

	reviveNC := nodechange.NewNodeChangeset()
	reviveNC.Fields[treedata.RootFieldKey] = nodechange.FieldChange{
		Kind: treedata.FieldKindOptional,
		Change: &optionalfield.Changeset{
			Moves: []optionalfield.Move{{Src: optionalfield.AtCAI(clearCAI), Dst: optionalfield.SelfTarget(), Kind: optionalfield.NodeTargeting}},
		},
	}
	reviveCS := &changeset.ModularChangeset{Revision: rev("alice", 3), Root: reviveNC}
	d2, err := engine.IntoDelta(reviveCS)
	require.NoError(t, err)
	require.NoError(t, f.Apply(d2, nil))

	require.NotNil(t, f.Root())
	assert.Equal(t, treedata.Value("hello"), f.Root().Value)
	assert.False(t, f.Exists(clearCAI))
	_ = fillCAI
}
