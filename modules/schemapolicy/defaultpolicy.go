// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schemapolicy

import "github.com/antgroup/hugetree/modules/treedata"

// DefaultPolicy returns the schema every reference forest starts from: a
// single "doc" type whose root may hold a sequence-field body of child
// "doc" nodes, each optionally carrying a "title" field. It exists so the
// demo CLI and the wireserver's bootstrap summary have a starting policy
// to compare schema changes against, not as a fixed domain requirement.
func DefaultPolicy() *Policy {
	return &Policy{
		Version: 1,
		Types: map[treedata.TypeID]TypeSchema{
			"doc": {Fields: map[treedata.FieldKey]treedata.FieldKindID{
				"title":    treedata.FieldKindOptional,
				"children": treedata.FieldKindSequence,
			}},
		},
	}
}
