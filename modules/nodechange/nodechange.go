// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package nodechange defines the node changeset shape (spec §3) that every
// field-kind algebra nests its children in and that the modular changeset
// (modules/changeset) aggregates for the tree root. It sits below the
// field-kind packages so optionalfield and sequencefield can each hold a
// map of FieldKey -> FieldChange without importing one another or the
// modular changeset package that aggregates them.
package nodechange

import (
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// Dispatch lets a field-kind algebra recurse into the generic node
// changeset compose/invert/rebase without importing the modular changeset
// package that implements it (which itself imports the field-kind
// packages) — the modular changeset package supplies its own methods as
// this struct's callbacks, breaking the cycle.
type Dispatch struct {
	Compose func(a, b *NodeChangeset, xf *crossfield.Manager) (*NodeChangeset, error)
	Invert  func(a *NodeChangeset, xf *crossfield.Manager) (*NodeChangeset, error)
	Rebase  func(a, b *NodeChangeset, xf *crossfield.Manager) (*NodeChangeset, error)

	// RewriteRevision walks a node changeset replacing every CAI tagged
	// with old by the same CAI tagged with new (spec §4.A: an anonymous
	// changeset getting its revision assigned once the sequencer
	// commits it). Optional: nil in contexts that never sequence a
	// changeset, e.g. pure field-kind unit tests.
	RewriteRevision func(a *NodeChangeset, old, new tagging.RevisionTag) *NodeChangeset
}

// FieldChange pairs a field's kind with its opaque per-kind changeset
// value. The registry (modules/changeset) type-asserts Change back to the
// concrete type its own Compose/Invert/Rebase/IntoDelta expect.
type FieldChange struct {
	Kind   treedata.FieldKindID
	Change any
}

// ValueChange records a leaf value replacement.
type ValueChange struct {
	Old, New treedata.Value
}

// Constraint is an optional precondition that causes the change carrying
// it to reduce to a no-op if violated after rebasing (spec §3, §7).
type Constraint struct {
	// NodeMustExist, when non-zero, requires the node detached/attached
	// under this CAI to still exist in the context the change is
	// applied against.
	NodeMustExist tagging.CAI
	HasNodeMustExist bool
}

// NodeChangeset is a mapping from field key to (kind, field-changeset),
// plus an optional value replacement and refresher snapshots this node's
// own changes might need.
type NodeChangeset struct {
	Fields      map[treedata.FieldKey]FieldChange
	ValueChange *ValueChange
	Refreshers  map[tagging.CAI]*treedata.Node
	Constraints []Constraint
}

// NewNodeChangeset returns an empty, non-nil node changeset ready for
// fields to be added to it.
func NewNodeChangeset() *NodeChangeset {
	return &NodeChangeset{Fields: make(map[treedata.FieldKey]FieldChange)}
}

// IsEmpty reports whether this node changeset carries no changes at all —
// used by field algebras to collapse a no-op child change to "absent"
// rather than storing an empty placeholder.
func (nc *NodeChangeset) IsEmpty() bool {
	if nc == nil {
		return true
	}
	return len(nc.Fields) == 0 && nc.ValueChange == nil && len(nc.Constraints) == 0
}

// Clone deep-copies a node changeset; field-kind Change values are cloned
// via cloneField, which the caller supplies because the concrete type is
// opaque to this package.
func (nc *NodeChangeset) Clone(cloneField func(FieldChange) FieldChange) *NodeChangeset {
	if nc == nil {
		return nil
	}
	out := &NodeChangeset{}
	if nc.Fields != nil {
		out.Fields = make(map[treedata.FieldKey]FieldChange, len(nc.Fields))
		for k, fc := range nc.Fields {
			out.Fields[k] = cloneField(fc)
		}
	}
	if nc.ValueChange != nil {
		vc := *nc.ValueChange
		out.ValueChange = &vc
	}
	if nc.Refreshers != nil {
		out.Refreshers = make(map[tagging.CAI]*treedata.Node, len(nc.Refreshers))
		for k, v := range nc.Refreshers {
			out.Refreshers[k] = v.Clone()
		}
	}
	if nc.Constraints != nil {
		out.Constraints = append([]Constraint(nil), nc.Constraints...)
	}
	return out
}
