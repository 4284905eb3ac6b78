// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package schemapolicy

import (
	"github.com/antgroup/hugetree/modules/crossfield"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
)

// Comparator reports whether revision a is ordered before revision b; see
// sequencefield.Comparator's doc comment, which this mirrors.
type Comparator func(a, b tagging.RevisionTag) bool

// Compose merges a (applied first) with b (applied second): the combined
// effect replaces a's Old with b's New, identified with b's revision —
// matching ModularChangeset.Compose, which squashes a run of commits under
// the last one's identity.
func Compose(a, b *Changeset, xf *crossfield.Manager, dispatch nodechange.Dispatch) (*Changeset, error) {
	if a.IsNoop() {
		return b, nil
	}
	if b.IsNoop() {
		return a, nil
	}
	return &Changeset{Revision: b.Revision, Old: a.Old, New: b.New}, nil
}

// Invert returns the changeset that undoes a, preserving a's own
// authoring revision (the per-mark identity the rollback's own top-level
// revision doesn't replace — see sequencefield.Invert).
func Invert(a *Changeset, xf *crossfield.Manager, dispatch nodechange.Dispatch) (*Changeset, error) {
	if a.IsNoop() {
		return Empty(), nil
	}
	return &Changeset{Revision: a.Revision, Old: a.New, New: a.Old}, nil
}

// Rebase re-expresses a's effect over b's, both authored against the same
// parent policy. The later writer (by cmp) always lands. The earlier
// writer lands too, rebased onto the later one's result, as long as its
// intended policy is still a compatible evolution of what the later
// writer already established (AllowsRepoSuperset); otherwise it reduces
// to a no-op, deferring to a fresh schema change against the new
// baseline.
func Rebase(a, b *Changeset, cmp Comparator, xf *crossfield.Manager, dispatch nodechange.Dispatch) (*Changeset, error) {
	if a.IsNoop() || b.IsNoop() {
		return a, nil
	}
	if cmp == nil {
		cmp = tagging.Less
	}
	if cmp(a.Revision, b.Revision) && !AllowsRepoSuperset(b.New, a.New) {
		return Empty(), nil
	}
	return &Changeset{Revision: a.Revision, Old: b.New, New: a.New}, nil
}
