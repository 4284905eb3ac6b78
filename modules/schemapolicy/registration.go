// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schemapolicy

import (
	"fmt"

	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// AsChangeset type-asserts the opaque FieldChange payload back to
// *Changeset; exported so the registry (which supplies Rebase's
// comparator itself, rather than through an any-typed adapter) can use
// it directly, the way modules/changeset.asMarkListOrNil does for
// sequencefield.
func AsChangeset(v any) *Changeset {
	cs, ok := v.(*Changeset)
	if !ok {
		panic(fmt.Sprintf("schemapolicy: expected *Changeset, got %T", v))
	}
	if cs == nil {
		return Empty()
	}
	return cs
}

// ComposeAny, InvertAny, and RewriteRevisionAny adapt this package's
// typed algebra to the `any`-typed signatures the field-kind registry
// (modules/changeset) dispatches through. Rebase and IntoDelta have no
// such adapter: Rebase needs a Comparator the registry supplies per call,
// and IntoDelta's deriveChild parameter is a registry-private named type
// this package can't reference, so the registry wires both in directly
// (see AsChangeset).
func ComposeAny(a, b any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Compose(AsChangeset(a), AsChangeset(b), xf, dispatch)
}

func InvertAny(a any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Invert(AsChangeset(a), xf, dispatch)
}

func RewriteRevisionAny(a any, old, new tagging.RevisionTag, dispatch nodechange.Dispatch) any {
	return RewriteRevision(AsChangeset(a), old, new, dispatch)
}
