// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package forest implements the reference forest collaborator (spec §6):
// an in-memory tree that the edit-manager applies derived deltas to, and
// a detached-subtree arena keyed by the detached-field index's stable
// ids. It is the simplest thing satisfying the required operations, not
// a production storage engine — durable backends implement the same
// Apply/Exists/DetachedContent surface.
package forest

import (
	"github.com/antgroup/hugetree/modules/changeerrors"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// RunFieldKey and RunType wrap a multi-cell payload (an inserted run, a
// removed sequence-field span) as a single *treedata.Node so the
// detached-field index and the content maps a changeset carries (keyed
// CAI -> one node, spec §3) never need a second, list-shaped payload
// type. A single-cell payload (an optional field's occupant) is just a
// run of length 1. Exported so a modular-changeset builder constructs
// Builds/Refreshers entries in the shape this package expects.
const (
	RunFieldKey treedata.FieldKey = "<run>"
	RunType     treedata.TypeID   = "<run>"
)

// WrapRun packages nodes as the run node modules/changeset's
// ModularChangeset.Builds/Refreshers convention expects.
func WrapRun(nodes []*treedata.Node) *treedata.Node {
	return &treedata.Node{Type: RunType, Fields: map[treedata.FieldKey]treedata.Field{
		RunFieldKey: {Kind: treedata.FieldKindSequence, Sequence: nodes},
	}}
}

func unwrapRun(n *treedata.Node) []*treedata.Node {
	if n == nil {
		return nil
	}
	return n.Fields[RunFieldKey].Sequence
}

// Forest is the in-memory reference implementation of spec §6's forest
// collaborator.
type Forest struct {
	index    *detachedindex.Index
	detached map[detachedindex.RootID]*treedata.Node
	// container's RootFieldKey field holds the live root as an optional
	// field, mirroring how every other object node is shaped (spec §3:
	// "distinguished root field key anchors the tree root").
	container *treedata.Node
	gen       uint64
}

// New returns an empty forest backed by index for detached-subtree
// bookkeeping.
func New(index *detachedindex.Index) *Forest {
	return &Forest{
		index:    index,
		detached: make(map[detachedindex.RootID]*treedata.Node),
		container: &treedata.Node{Fields: map[treedata.FieldKey]treedata.Field{
			treedata.RootFieldKey: {Kind: treedata.FieldKindOptional},
		}},
	}
}

// Root returns the current tree root, or nil if the forest is empty.
func (f *Forest) Root() *treedata.Node {
	return f.container.Fields[treedata.RootFieldKey].Optional
}

// Exists reports whether cai still names a detached subtree live in the
// arena (spec §6's constraint-evaluation need).
func (f *Forest) Exists(cai tagging.CAI) bool {
	id, ok := f.index.Lookup(cai)
	if !ok {
		return false
	}
	_, ok = f.detached[id]
	return ok
}

// DetachedContent returns the current occupant of cai's detached slot,
// unwrapped to a plain node — the shape modules/enricher.ForestView
// expects.
func (f *Forest) DetachedContent(cai tagging.CAI) (*treedata.Node, bool) {
	id, ok := f.index.Lookup(cai)
	if !ok {
		return nil, false
	}
	run, ok := f.detached[id]
	if !ok {
		return nil, false
	}
	cells := unwrapRun(run)
	if len(cells) == 0 {
		return nil, false
	}
	return cells[0], true
}

// Apply mutates the forest in place according to d, resolving each
// ForestID the delta references back to a CAI via d.Alloc, and sourcing
// new content for an id the arena hasn't seen before from content (the
// changeset's builds/refreshers).
func (f *Forest) Apply(d *delta.Derivation, content map[tagging.CAI]*treedata.Node) error {
	f.gen++
	rev := d.Alloc.Reverse()
	return f.applyNode(f.container, d.Root, rev, content)
}

func (f *Forest) applyNode(node *treedata.Node, root *delta.Root, rev map[delta.ForestID]tagging.CAI, content map[tagging.CAI]*treedata.Node) error {
	if root == nil {
		return nil
	}
	if root.ValueChange != nil {
		node.Value = root.ValueChange.New
	}
	for key, fd := range root.Fields {
		field := node.Fields[key]
		field.Kind = fd.Kind
		switch fd.Kind {
		case treedata.FieldKindOptional:
			if err := f.applyOptionalMarks(&field, fd.Marks, rev, content); err != nil {
				return err
			}
		case treedata.FieldKindSequence:
			if err := f.applySequenceMarks(&field, fd.Marks, rev, content); err != nil {
				return err
			}
		// FieldKindSchema carries a policy replacement, not forest
		// occupancy (modules/schemapolicy) — nothing for the forest to
		// mutate beyond recording the field's kind.
		case treedata.FieldKindSchema:
		}
		if node.Fields == nil {
			node.Fields = make(map[treedata.FieldKey]treedata.Field)
		}
		node.Fields[key] = field
	}
	return nil
}

func (f *Forest) applyOptionalMarks(field *treedata.Field, marks []delta.Mark, rev map[delta.ForestID]tagging.CAI, content map[tagging.CAI]*treedata.Node) error {
	for _, m := range marks {
		switch m.Kind {
		case delta.MarkDetach:
			if err := f.applyModifyToNode(field.Optional, m.Modify, rev, content); err != nil {
				return err
			}
			cai, ok := rev[m.DestID]
			if !ok {
				return changeerrors.NewErrInvalidChangeset("detach mark references unknown forest id")
			}
			f.store(cai, WrapRun([]*treedata.Node{field.Optional}))
			field.Optional = nil
		case delta.MarkAttach:
			cai, ok := rev[m.BuildID]
			if !ok {
				return changeerrors.NewErrInvalidChangeset("attach mark references unknown forest id")
			}
			n, err := f.resolveSingle(cai, content)
			if err != nil {
				return err
			}
			if err := f.applyModifyToNode(n, m.Modify, rev, content); err != nil {
				return err
			}
			field.Optional = n
		case delta.MarkModify:
			if err := f.applyModifyToNode(field.Optional, m.Modify, rev, content); err != nil {
				return err
			}
		case delta.MarkRename:
			if err := f.renameDetached(m.FromID, m.ToID, rev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Forest) applySequenceMarks(field *treedata.Field, marks []delta.Mark, rev map[delta.ForestID]tagging.CAI, content map[tagging.CAI]*treedata.Node) error {
	var out []*treedata.Node
	cursor := 0
	for _, m := range marks {
		switch m.Kind {
		case delta.MarkRetain:
			out = append(out, field.Sequence[cursor:cursor+m.Count]...)
			cursor += m.Count
		case delta.MarkDetach:
			run := append([]*treedata.Node(nil), field.Sequence[cursor:cursor+m.Count]...)
			cursor += m.Count
			if err := f.applyModifyToRun(run, m.Modify, rev, content); err != nil {
				return err
			}
			cai, ok := rev[m.DestID]
			if !ok {
				return changeerrors.NewErrInvalidChangeset("detach mark references unknown forest id")
			}
			f.store(cai, WrapRun(run))
		case delta.MarkAttach:
			cai, ok := rev[m.BuildID]
			if !ok {
				return changeerrors.NewErrInvalidChangeset("attach mark references unknown forest id")
			}
			run, err := f.resolveRun(cai, content)
			if err != nil {
				return err
			}
			if err := f.applyModifyToRun(run, m.Modify, rev, content); err != nil {
				return err
			}
			out = append(out, run...)
		case delta.MarkModify:
			run := append([]*treedata.Node(nil), field.Sequence[cursor:cursor+m.Count]...)
			cursor += m.Count
			if err := f.applyModifyToRun(run, m.Modify, rev, content); err != nil {
				return err
			}
			out = append(out, run...)
		case delta.MarkRename:
			if err := f.renameDetached(m.FromID, m.ToID, rev); err != nil {
				return err
			}
		}
	}
	field.Sequence = out
	return nil
}

// resolveSingle finds the node content names: a freshly supplied build/
// refresher wins, falling back to whatever the arena already holds
// (e.g. a revive of something this same Apply call just detached
// elsewhere, or an earlier commit's detach still live in the arena).
func (f *Forest) resolveSingle(cai tagging.CAI, content map[tagging.CAI]*treedata.Node) (*treedata.Node, error) {
	run, err := f.resolveRunPayload(cai, content)
	if err != nil {
		return nil, err
	}
	cells := unwrapRun(run)
	if len(cells) == 0 {
		return nil, nil
	}
	return cells[0].Clone(), nil
}

func (f *Forest) resolveRun(cai tagging.CAI, content map[tagging.CAI]*treedata.Node) ([]*treedata.Node, error) {
	run, err := f.resolveRunPayload(cai, content)
	if err != nil {
		return nil, err
	}
	cells := unwrapRun(run)
	out := make([]*treedata.Node, len(cells))
	for i, c := range cells {
		out[i] = c.Clone()
	}
	return out, nil
}

func (f *Forest) resolveRunPayload(cai tagging.CAI, content map[tagging.CAI]*treedata.Node) (*treedata.Node, error) {
	if n, ok := content[cai]; ok {
		f.index.Allocate(cai, n, f.gen)
		return n, nil
	}
	if id, ok := f.index.Lookup(cai); ok {
		if run, ok := f.detached[id]; ok {
			delete(f.detached, id)
			return run, nil
		}
	}
	return nil, changeerrors.NewErrMissingRefresher(cai)
}

func (f *Forest) store(cai tagging.CAI, run *treedata.Node) {
	id := f.index.Allocate(cai, run, f.gen)
	f.detached[id] = run
}

func (f *Forest) renameDetached(fromID, toID delta.ForestID, rev map[delta.ForestID]tagging.CAI) error {
	fromCAI, ok := rev[fromID]
	if !ok {
		return changeerrors.NewErrInvalidChangeset("rename mark references unknown source forest id")
	}
	toCAI, ok := rev[toID]
	if !ok {
		return changeerrors.NewErrInvalidChangeset("rename mark references unknown destination forest id")
	}
	fromRootID, ok := f.index.Lookup(fromCAI)
	if !ok {
		return changeerrors.NewErrMissingRefresher(fromCAI)
	}
	run, ok := f.detached[fromRootID]
	if !ok {
		return changeerrors.NewErrMissingRefresher(fromCAI)
	}
	delete(f.detached, fromRootID)
	f.store(toCAI, run)
	return nil
}

func (f *Forest) applyModifyToNode(n *treedata.Node, modify *delta.Root, rev map[delta.ForestID]tagging.CAI, content map[tagging.CAI]*treedata.Node) error {
	if modify == nil || n == nil {
		return nil
	}
	return f.applyNode(n, modify, rev, content)
}

func (f *Forest) applyModifyToRun(run []*treedata.Node, modify *delta.Root, rev map[delta.ForestID]tagging.CAI, content map[tagging.CAI]*treedata.Node) error {
	if modify == nil || len(run) == 0 {
		return nil
	}
	// The nested delta is applied to the first node of the run only.
	// sequencefield.markToDelta passes a mark's Count through unchanged,
	// so for a multi-cell run the remaining cells are left unmodified.
	return f.applyNode(run[0], modify, rev, content)
}
