// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package changeset

import (
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// ModularChangeset is the full unit of change carried on a branch (spec
// §3): the tree root's node changeset, the new subtrees (Builds) its
// inserts introduce, and the detached-subtree snapshots (Refreshers) it
// needs to stay self-contained for a peer that has evicted them. A
// Every entry is stored as a run (modules/forest's wrapping convention):
// a node of type "<run>" whose only field holds the cells in order, one
// cell for an optional-field fill, Count cells for a sequence-field
// insert spanning more than one cell.
type ModularChangeset struct {
	Revision   tagging.RevisionTag
	Root       *nodechange.NodeChangeset
	Builds     map[tagging.CAI]*treedata.Node
	Refreshers map[tagging.CAI]*treedata.Node
}

// NewModularChangeset returns an empty changeset authored under revision.
func NewModularChangeset(revision tagging.RevisionTag) *ModularChangeset {
	return &ModularChangeset{Revision: revision, Root: nodechange.NewNodeChangeset()}
}

func (cs *ModularChangeset) clone() *ModularChangeset {
	out := &ModularChangeset{Revision: cs.Revision, Root: cs.Root}
	if len(cs.Builds) > 0 {
		out.Builds = make(map[tagging.CAI]*treedata.Node, len(cs.Builds))
		for k, v := range cs.Builds {
			out.Builds[k] = v
		}
	}
	if len(cs.Refreshers) > 0 {
		out.Refreshers = make(map[tagging.CAI]*treedata.Node, len(cs.Refreshers))
		for k, v := range cs.Refreshers {
			out.Refreshers[k] = v
		}
	}
	return out
}

// Compose merges a (applied first) with b (applied second). The result's
// Revision is b's — composition is used to squash a run of local commits
// into one, and the squashed commit is identified with the last one in
// the run.
func (e *Engine) Compose(a, b *ModularChangeset) (*ModularChangeset, error) {
	root, err := e.ComposeNode(a.Root, b.Root, crossfield.New())
	if err != nil {
		return nil, err
	}
	out := &ModularChangeset{Revision: b.Revision, Root: root}
	out.Builds = mergeBuilds(a.Builds, b.Builds)
	out.Refreshers = mergeRefreshers(a.Refreshers, b.Refreshers)
	return out, nil
}

// Invert returns the changeset that undoes cs, tagged with rollback.
func (e *Engine) Invert(cs *ModularChangeset, rollback tagging.RevisionTag) (*ModularChangeset, error) {
	root, err := e.InvertNode(cs.Root, crossfield.New())
	if err != nil {
		return nil, err
	}
	// An inverse re-attaches whatever this changeset detached and
	// re-detaches whatever it attached; it needs the detached content
	// cs itself introduced (Builds) as its own refreshers, and needs no
	// builds of its own since it creates nothing new.
	out := &ModularChangeset{Revision: rollback, Root: root, Refreshers: mergeRefreshers(cs.Refreshers, cs.Builds)}
	return out, nil
}

// Rebase re-expresses a's effect over b's, both authored against the same
// parent state (spec §4.E sandwich rebase calls this per inbound
// sequenced commit).
func (e *Engine) Rebase(a, b *ModularChangeset) (*ModularChangeset, error) {
	root, err := e.RebaseNode(a.Root, b.Root, crossfield.New())
	if err != nil {
		return nil, err
	}
	out := &ModularChangeset{Revision: a.Revision, Root: root, Builds: a.Builds, Refreshers: a.Refreshers}
	return out, nil
}

// ChangeRevision returns a clone of cs with every CAI tagged with cs's
// current revision rewritten to newRevision (spec §4.A). It's idempotent:
// calling it again with the same newRevision is a no-op, since after the
// first call no CAI is tagged with the old revision anymore. The
// edit-manager calls this exactly once per locally authored commit, right
// after the sequencer assigns it a sequence number.
func (e *Engine) ChangeRevision(cs *ModularChangeset, newRevision tagging.RevisionTag) *ModularChangeset {
	old := cs.Revision
	if old == newRevision {
		return cs
	}
	out := cs.clone()
	out.Revision = newRevision
	out.Root = e.RewriteRevisionNode(cs.Root, old, newRevision)
	out.Builds = rewriteKeys(cs.Builds, old, newRevision)
	out.Refreshers = rewriteKeys(cs.Refreshers, old, newRevision)
	return out
}

func rewriteKeys(m map[tagging.CAI]*treedata.Node, old, new tagging.RevisionTag) map[tagging.CAI]*treedata.Node {
	if len(m) == 0 {
		return m
	}
	out := make(map[tagging.CAI]*treedata.Node, len(m))
	for k, v := range m {
		if k.Revision == old {
			k = tagging.CAI{Revision: new, Local: k.Local}
		}
		out[k] = v
	}
	return out
}

func mergeBuilds(a, b map[tagging.CAI]*treedata.Node) map[tagging.CAI]*treedata.Node {
	return mergeRefreshers(a, b)
}

// IntoDelta derives the forest-mutation delta for cs's root (spec §4.H),
// recursing through the registry's field algebras and this engine's own
// recursion for nested node changesets. The returned Derivation carries
// the id allocator alongside the delta tree, so a forest collaborator can
// resolve a ForestID reference back to the CAI (and, via cs.Builds/
// cs.Refreshers, the content) it names.
func (e *Engine) IntoDelta(cs *ModularChangeset) (*delta.Derivation, error) {
	alloc := delta.NewIDAllocator()
	root, err := e.deriveRoot(cs.Root, alloc)
	if err != nil {
		return nil, err
	}
	return &delta.Derivation{Root: root, Alloc: alloc}, nil
}

func (e *Engine) deriveRoot(nc *nodechange.NodeChangeset, alloc *delta.IDAllocator) (*delta.Root, error) {
	if nc.IsEmpty() {
		return &delta.Root{}, nil
	}
	out := &delta.Root{Fields: make(map[treedata.FieldKey]delta.FieldDelta, len(nc.Fields)), ValueChange: nc.ValueChange}
	deriveChild := func(child *nodechange.NodeChangeset) (*delta.Root, error) {
		return e.deriveRoot(child, alloc)
	}
	for key, fc := range nc.Fields {
		algebra := e.Registry.lookup(fc.Kind)
		fd, err := algebra.IntoDelta(fc.Change, alloc, deriveChild)
		if err != nil {
			return nil, err
		}
		out.Fields[key] = fd
	}
	return out, nil
}
