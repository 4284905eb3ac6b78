// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package changeset implements the modular changeset (spec §4.E): the
// node changeset recursion that aggregates per-field algebras over a
// node, the field-kind registry that dispatches into them, and the top-
// level changeset carried between revisions (builds, refreshers,
// constraints).
package changeset

import (
	"fmt"

	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/fieldkinds/optionalfield"
	"github.com/antgroup/hugetree/modules/fieldkinds/sequencefield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/schemapolicy"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// DeriveChildFunc converts a nested node changeset into its delta
// representation; it's how a field-kind algebra's IntoDelta recurses
// into a Modify mark's child without importing this package.
type DeriveChildFunc func(*nodechange.NodeChangeset) (*delta.Root, error)

// FieldAlgebra is the registry entry for one field kind: the four
// operations a field-kind package exposes through its `any`-typed
// adapter surface (e.g. optionalfield.ComposeAny).
type FieldAlgebra struct {
	Compose   func(a, b any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error)
	Invert    func(a any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error)
	Rebase    func(a, b any, cmp RebaseComparator, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error)
	IntoDelta func(a any, alloc *delta.IDAllocator, deriveChild DeriveChildFunc) (delta.FieldDelta, error)

	RewriteRevision func(a any, old, new tagging.RevisionTag, dispatch nodechange.Dispatch) any
}

// RebaseComparator is threaded down to sequencefield.Rebase for its
// concurrent-insert tie-break; optional-field rebase ignores it.
type RebaseComparator func(a, b tagging.RevisionTag) bool

// Registry maps a field's kind id to the algebra that interprets it.
// NewDefaultRegistry wires the three field kinds this repository ships
// (optional and sequence, spec §4.C, §4.D, plus the schema field); a host
// embedding this engine with its own field kinds would add entries here
// too.
type Registry map[treedata.FieldKindID]FieldAlgebra

// NewDefaultRegistry returns the registry covering optional, sequence,
// and schema fields.
func NewDefaultRegistry() Registry {
	return Registry{
		treedata.FieldKindOptional: {
			Compose: optionalfield.ComposeAny,
			Invert:  optionalfield.InvertAny,
			Rebase: func(a, b any, _ RebaseComparator, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
				return optionalfield.RebaseAny(a, b, xf, dispatch)
			},
			IntoDelta: func(a any, alloc *delta.IDAllocator, deriveChild DeriveChildFunc) (delta.FieldDelta, error) {
				return optionalfield.IntoDeltaAny(a, alloc, optionalfield.DeriveChild(deriveChild))
			},
			RewriteRevision: optionalfield.RewriteRevisionAny,
		},
		treedata.FieldKindSequence: {
			Compose: sequencefield.ComposeAny,
			Invert:  sequencefield.InvertAny,
			Rebase: func(a, b any, cmp RebaseComparator, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
				return sequencefield.Rebase(asMarkListOrNil(a), asMarkListOrNil(b), sequencefield.Comparator(cmp), xf, dispatch)
			},
			IntoDelta: func(a any, alloc *delta.IDAllocator, deriveChild DeriveChildFunc) (delta.FieldDelta, error) {
				return sequencefield.IntoDeltaAny(a, alloc, sequencefield.DeriveChild(deriveChild))
			},
			RewriteRevision: sequencefield.RewriteRevisionAny,
		},
		treedata.FieldKindSchema: {
			Compose: schemapolicy.ComposeAny,
			Invert:  schemapolicy.InvertAny,
			Rebase: func(a, b any, cmp RebaseComparator, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
				return schemapolicy.Rebase(schemapolicy.AsChangeset(a), schemapolicy.AsChangeset(b), schemapolicy.Comparator(cmp), xf, dispatch)
			},
			IntoDelta: func(a any, alloc *delta.IDAllocator, deriveChild DeriveChildFunc) (delta.FieldDelta, error) {
				return schemapolicy.IntoDelta(schemapolicy.AsChangeset(a))
			},
			RewriteRevision: schemapolicy.RewriteRevisionAny,
		},
	}
}

func asMarkListOrNil(v any) sequencefield.MarkList {
	if v == nil {
		return nil
	}
	ml, ok := v.(sequencefield.MarkList)
	if !ok {
		panic(fmt.Sprintf("changeset: expected sequencefield.MarkList, got %T", v))
	}
	return ml
}

func (r Registry) lookup(kind treedata.FieldKindID) FieldAlgebra {
	fa, ok := r[kind]
	if !ok {
		panic(fmt.Sprintf("changeset: no field algebra registered for kind %q", kind))
	}
	return fa
}
