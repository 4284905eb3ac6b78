// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package schemapolicy implements the schema-as-sequenced-op collaborator
// (spec §6): a field algebra, registered alongside optionalfield and
// sequencefield, whose changeset carries a (before, after) policy pair
// instead of a tree edit. Its rebase is last-writer-wins, gated by a
// compatibility check: a change that would lose outright still lands,
// rebased onto the winner's result, as long as the loser's policy can
// still read everything the winner's policy admits.
package schemapolicy

import "github.com/antgroup/hugetree/modules/treedata"

// TypeSchema is the set of fields one node type is allowed to carry and
// the field kind each must use.
type TypeSchema struct {
	Fields map[treedata.FieldKey]treedata.FieldKindID
}

// Policy is the full schema: every type a repo's nodes may use. The zero
// value is the empty policy (no types recognized).
type Policy struct {
	Version uint64
	Types   map[treedata.TypeID]TypeSchema
}

func (p *Policy) clone() *Policy {
	if p == nil {
		return nil
	}
	out := &Policy{Version: p.Version, Types: make(map[treedata.TypeID]TypeSchema, len(p.Types))}
	for t, sch := range p.Types {
		fields := make(map[treedata.FieldKey]treedata.FieldKindID, len(sch.Fields))
		for k, v := range sch.Fields {
			fields[k] = v
		}
		out.Types[t] = TypeSchema{Fields: fields}
	}
	return out
}

// AllowsRepoSuperset reports whether a reader running readerPolicy can
// consume every node a writer running dataPolicy is allowed to produce:
// every type dataPolicy defines must also exist in readerPolicy, with the
// same field kind for every field dataPolicy declares. readerPolicy may
// additionally know about types or fields dataPolicy doesn't — that's the
// "superset" a reader is allowed to have.
func AllowsRepoSuperset(dataPolicy, readerPolicy *Policy) bool {
	if dataPolicy == nil {
		return true
	}
	if readerPolicy == nil {
		return len(dataPolicy.Types) == 0
	}
	for typeID, want := range dataPolicy.Types {
		have, ok := readerPolicy.Types[typeID]
		if !ok {
			return false
		}
		for field, kind := range want.Fields {
			if have.Fields[field] != kind {
				return false
			}
		}
	}
	return true
}
