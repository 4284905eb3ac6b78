// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package optionalfield

import (
	"fmt"

	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// asChangeset type-asserts the opaque FieldChange payload back to
// *Changeset, panicking with a clear message on a registry mismatch
// rather than a cryptic nil-pointer dereference two calls deep — this can
// only happen if a caller hands the wrong FieldKindID's Change to this
// package, which is a programming error, not a runtime condition.
func asChangeset(v any) *Changeset {
	cs, ok := v.(*Changeset)
	if !ok {
		panic(fmt.Sprintf("optionalfield: expected *Changeset, got %T", v))
	}
	if cs == nil {
		return Empty()
	}
	return cs
}

// ComposeAny, InvertAny, RebaseAny, and IntoDeltaAny adapt this package's
// typed algebra to the `any`-typed signatures the field-kind registry
// (modules/changeset) dispatches through.
func ComposeAny(a, b any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Compose(asChangeset(a), asChangeset(b), xf, dispatch)
}

func InvertAny(a any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Invert(asChangeset(a), xf, dispatch)
}

func RebaseAny(a, b any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Rebase(asChangeset(a), asChangeset(b), xf, dispatch)
}

func IntoDeltaAny(a any, alloc *delta.IDAllocator, deriveChild DeriveChild) (delta.FieldDelta, error) {
	return IntoDelta(asChangeset(a), alloc, deriveChild)
}

func RewriteRevisionAny(a any, old, new tagging.RevisionTag, dispatch nodechange.Dispatch) any {
	return RewriteRevision(asChangeset(a), old, new, dispatch)
}
