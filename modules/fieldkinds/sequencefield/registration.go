// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package sequencefield

import (
	"fmt"

	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/delta"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// asMarkList type-asserts the opaque FieldChange payload back to
// MarkList, panicking on a registry mismatch — only possible if a caller
// hands the wrong FieldKindID's Change to this package.
func asMarkList(v any) MarkList {
	if v == nil {
		return nil
	}
	ml, ok := v.(MarkList)
	if !ok {
		panic(fmt.Sprintf("sequencefield: expected MarkList, got %T", v))
	}
	return ml
}

// ComposeAny, InvertAny, RebaseAny, and IntoDeltaAny adapt this package's
// typed algebra to the `any`-typed signatures the field-kind registry
// (modules/changeset) dispatches through. RebaseAny defaults the tie-
// break comparator to tagging.Less; the registry that wires the
// identifier-compression collaborator in should call Rebase directly with
// its normalized comparator instead.
func ComposeAny(a, b any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Compose(asMarkList(a), asMarkList(b), xf, dispatch)
}

func InvertAny(a any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Invert(asMarkList(a), xf, dispatch)
}

func RebaseAny(a, b any, xf *crossfield.Manager, dispatch nodechange.Dispatch) (any, error) {
	return Rebase(asMarkList(a), asMarkList(b), tagging.Less, xf, dispatch)
}

func IntoDeltaAny(a any, alloc *delta.IDAllocator, deriveChild DeriveChild) (delta.FieldDelta, error) {
	return IntoDelta(asMarkList(a), alloc, deriveChild)
}

func RewriteRevisionAny(a any, old, new tagging.RevisionTag, dispatch nodechange.Dispatch) any {
	return RewriteRevision(asMarkList(a), old, new, dispatch)
}
