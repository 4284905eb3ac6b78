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

func TestSnapshotRestoreRoundTripsLiveRoot(t *testing.T) {
	engine := changeset.NewEngine(changeset.NewDefaultRegistry(), nil)
	idx := detachedindex.New()
	f := New(idx)
	author := rev("alice", 1)
	fillRoot(t, f, engine, author, 1, &treedata.Node{Type: "doc", Value: "hello"})

	snap := f.Snapshot()
	restored := Restore(idx, snap)

	require.NotNil(t, restored.Root())
	assert.Equal(t, treedata.Value("hello"), restored.Root().Value)

	// Snapshot is a deep copy: mutating the live forest afterward must not
	// reach through to the captured snapshot's root.
	f.container.Fields[treedata.RootFieldKey] = treedata.Field{Kind: treedata.FieldKindOptional}
	require.NotNil(t, restored.Root())
	assert.Equal(t, treedata.Value("hello"), restored.Root().Value)
}

func TestSnapshotRestoreRoundTripsDetachedArena(t *testing.T) {
	engine := changeset.NewEngine(changeset.NewDefaultRegistry(), nil)
	idx := detachedindex.New()
	f := New(idx)
	author := rev("alice", 1)

	fillRoot(t, f, engine, author, 1, &treedata.Node{Type: "doc", Value: "hello"})

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

	require.True(t, f.Exists(clearCAI))

	snap := f.Snapshot()
	restored := Restore(idx, snap)

	require.True(t, restored.Exists(clearCAI))
	content, ok := restored.DetachedContent(clearCAI)
	require.True(t, ok)
	assert.Equal(t, treedata.Value("hello"), content.Value)
}
