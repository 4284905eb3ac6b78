// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package changeset

import (
	"github.com/antgroup/hugetree/modules/changeerrors"
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// Engine binds a Registry to a concrete rebase comparator (normally the
// identifier-compression collaborator's normalized ordering) and exposes
// NodeChangeset compose/invert/rebase plus a nodechange.Dispatch value
// that wires those methods back into the field-kind packages — breaking
// the import cycle described in modules/nodechange's doc comment.
type Engine struct {
	Registry   Registry
	Comparator RebaseComparator
}

// NewEngine returns an Engine over reg using cmp for sequence-field
// rebase tie-breaks; cmp may be nil, in which case sequencefield falls
// back to tagging.Less.
func NewEngine(reg Registry, cmp RebaseComparator) *Engine {
	return &Engine{Registry: reg, Comparator: cmp}
}

// Dispatch returns the callback struct field-kind algebras recurse
// through to reach ComposeNode/InvertNode/RebaseNode without this
// package's import of them creating a cycle.
func (e *Engine) Dispatch() nodechange.Dispatch {
	return nodechange.Dispatch{
		Compose:         e.ComposeNode,
		Invert:          e.InvertNode,
		Rebase:          e.RebaseNode,
		RewriteRevision: e.RewriteRevisionNode,
	}
}

// RewriteRevisionNode replaces every CAI tagged old with new throughout a
// node changeset's fields (spec §4.A).
func (e *Engine) RewriteRevisionNode(a *nodechange.NodeChangeset, old, new tagging.RevisionTag) *nodechange.NodeChangeset {
	if a.IsEmpty() {
		return a
	}
	out := nodechange.NewNodeChangeset()
	dispatch := e.Dispatch()
	for key, fc := range a.Fields {
		algebra := e.Registry.lookup(fc.Kind)
		rewritten := fc.Change
		if algebra.RewriteRevision != nil {
			rewritten = algebra.RewriteRevision(fc.Change, old, new, dispatch)
		}
		out.Fields[key] = nodechange.FieldChange{Kind: fc.Kind, Change: rewritten}
	}
	out.ValueChange = a.ValueChange
	out.Refreshers = rewriteRefreshers(a.Refreshers, old, new)
	out.Constraints = rewriteConstraints(a.Constraints, old, new)
	return out
}

func rewriteRefreshers(refreshers map[tagging.CAI]*treedata.Node, old, new tagging.RevisionTag) map[tagging.CAI]*treedata.Node {
	if len(refreshers) == 0 {
		return refreshers
	}
	out := make(map[tagging.CAI]*treedata.Node, len(refreshers))
	for k, v := range refreshers {
		if k.Revision == old {
			k = tagging.CAI{Revision: new, Local: k.Local}
		}
		out[k] = v
	}
	return out
}

func rewriteConstraints(cs []nodechange.Constraint, old, new tagging.RevisionTag) []nodechange.Constraint {
	if len(cs) == 0 {
		return cs
	}
	out := make([]nodechange.Constraint, len(cs))
	for i, c := range cs {
		if c.HasNodeMustExist && c.NodeMustExist.Revision == old {
			c.NodeMustExist = tagging.CAI{Revision: new, Local: c.NodeMustExist.Local}
		}
		out[i] = c
	}
	return out
}

func cloneFieldChange(fc nodechange.FieldChange, reg Registry) nodechange.FieldChange {
	return fc // field-kind Change values are treated as immutable once built; cloning happens inside each algebra's own clone step.
}

// ComposeNode merges node changesets a then b field by field, recursing
// into each field's registered algebra and into nested node changesets
// via dispatch (spec §4.E).
func (e *Engine) ComposeNode(a, b *nodechange.NodeChangeset, xf *crossfield.Manager) (*nodechange.NodeChangeset, error) {
	if a.IsEmpty() {
		return b, nil
	}
	if b.IsEmpty() {
		return a, nil
	}
	out := nodechange.NewNodeChangeset()
	dispatch := e.Dispatch()

	for key, fcA := range a.Fields {
		algebra := e.Registry.lookup(fcA.Kind)
		if fcB, ok := b.Fields[key]; ok {
			merged, err := algebra.Compose(fcA.Change, fcB.Change, xf, dispatch)
			if err != nil {
				return nil, err
			}
			out.Fields[key] = nodechange.FieldChange{Kind: fcA.Kind, Change: merged}
		} else {
			out.Fields[key] = cloneFieldChange(fcA, e.Registry)
		}
	}
	for key, fcB := range b.Fields {
		if _, ok := a.Fields[key]; !ok {
			out.Fields[key] = cloneFieldChange(fcB, e.Registry)
		}
	}

	if b.ValueChange != nil {
		out.ValueChange = b.ValueChange
	} else {
		out.ValueChange = a.ValueChange
	}

	out.Refreshers = mergeRefreshers(a.Refreshers, b.Refreshers)
	out.Constraints = append(append([]nodechange.Constraint(nil), a.Constraints...), b.Constraints...)
	return out, nil
}

// InvertNode inverts every field and reverses the value change, dropping
// constraints (an inverse has nothing to guard: it exists purely to
// undo, spec §7).
func (e *Engine) InvertNode(a *nodechange.NodeChangeset, xf *crossfield.Manager) (*nodechange.NodeChangeset, error) {
	if a.IsEmpty() {
		return a, nil
	}
	out := nodechange.NewNodeChangeset()
	dispatch := e.Dispatch()
	for key, fc := range a.Fields {
		algebra := e.Registry.lookup(fc.Kind)
		inv, err := algebra.Invert(fc.Change, xf, dispatch)
		if err != nil {
			return nil, err
		}
		out.Fields[key] = nodechange.FieldChange{Kind: fc.Kind, Change: inv}
	}
	if a.ValueChange != nil {
		out.ValueChange = &nodechange.ValueChange{Old: a.ValueChange.New, New: a.ValueChange.Old}
	}
	out.Refreshers = a.Refreshers
	return out, nil
}

// RebaseNode rebases a over b field by field, recursing through this
// engine's comparator for any sequence field involved. A constraint whose
// NodeMustExist CAI was detached by b reduces a to a no-op for the
// constrained subtree (spec §3, §7) — callers evaluate constraints
// against a forest snapshot via EvaluateConstraints before relying on
// this collapsing automatically; RebaseNode itself only carries the
// constraint list forward unevaluated.
func (e *Engine) RebaseNode(a, b *nodechange.NodeChangeset, xf *crossfield.Manager) (*nodechange.NodeChangeset, error) {
	if a.IsEmpty() {
		return a, nil
	}
	if b.IsEmpty() {
		return a, nil
	}
	out := nodechange.NewNodeChangeset()
	dispatch := e.Dispatch()

	for key, fcA := range a.Fields {
		algebra := e.Registry.lookup(fcA.Kind)
		if fcB, ok := b.Fields[key]; ok {
			rebased, err := algebra.Rebase(fcA.Change, fcB.Change, e.Comparator, xf, dispatch)
			if err != nil {
				return nil, err
			}
			out.Fields[key] = nodechange.FieldChange{Kind: fcA.Kind, Change: rebased}
		} else {
			out.Fields[key] = fcA
		}
	}
	out.ValueChange = a.ValueChange
	out.Refreshers = a.Refreshers
	out.Constraints = a.Constraints
	return out, nil
}

// mergeRefreshers unions two refresher maps; b wins on key collision
// since it's the more recent snapshot of that detached subtree.
func mergeRefreshers(a, b map[tagging.CAI]*treedata.Node) map[tagging.CAI]*treedata.Node {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[tagging.CAI]*treedata.Node, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// EvaluateConstraints checks every constraint in nc against exists (a
// predicate over the current forest, typically forest.Exists) and
// returns a changeset-level violation error if any NodeMustExist
// constraint names a CAI no longer present (spec §3, §7). The
// edit-manager calls this when sequencing a commit so a constraint
// violation becomes a no-op rollback rather than corrupting the forest.
func (e *Engine) EvaluateConstraints(nc *nodechange.NodeChangeset, exists func(tagging.CAI) bool) error {
	for _, c := range nc.Constraints {
		if c.HasNodeMustExist && !exists(c.NodeMustExist) {
			return changeerrors.NewConstraintViolation("node %s no longer exists", c.NodeMustExist)
		}
	}
	return nil
}
