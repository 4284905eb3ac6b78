// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sequencefield implements the ordered-sequence field algebra
// (spec §4.D): compose, invert, rebase, and delta derivation over mark
// lists describing insert/remove/move/revive/modify runs of adjacent
// cells.
package sequencefield

import (
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// MarkKind enumerates the mark shapes spec §3 lists.
type MarkKind int

const (
	Skip MarkKind = iota
	Insert
	Remove
	MoveOut
	MoveIn
	Revive
	Modify
)

// Mark is one run of Count adjacent cells. Which fields are meaningful
// depends on Kind; see the per-kind comments below.
type Mark struct {
	Kind  MarkKind
	Count int

	// Insert: the content being inserted.
	Content []*treedata.Node

	// Remove: the id this run is filed under in the detached-field
	// index, so a later Revive can address it. When this Remove mark
	// was produced by inverting an Insert, Content is also populated —
	// that lets a second invert reconstruct the exact original Insert
	// rather than falling back to a Revive (see invert.go).
	DetachID tagging.CAI

	// MoveOut: the id this run is filed under while it's in flight to
	// its destination field.
	DestID tagging.CAI

	// MoveIn: the id the incoming run was filed under at its source.
	SrcID tagging.CAI

	// Revive: the id of the previously detached run being restored.
	DetachedID tagging.CAI

	// Revision is the authoring revision of this mark; it is the tie-
	// break key for concurrent inserts at the same position (spec
	// §4.D) and, paired with LocalID, the identity used when an Insert
	// mark is inverted into a Remove.
	Revision tagging.RevisionTag

	// LocalID discriminates marks minted by the same revision (a
	// changeset can touch a field with more than one Insert run). Only
	// meaningful for Insert marks; it becomes the local half of the CAI
	// their inverse Remove files them under.
	LocalID uint64

	// Modify (and Insert, after composing with a later Modify) carries
	// nested changes to the cell's content without changing occupancy.
	Child *nodechange.NodeChangeset

	// Muted marks a run that targets a detached cell rather than a
	// live one — an insert/move-in rebased into a range a concurrent
	// edit removed, or a move/modify rebased over a concurrent remove
	// of the same cells (spec §4.D edge cases). Muted marks are
	// preserved, not discarded, so a later revive can bring them back.
	Muted bool
}

// inputWidth is how many cells of the INPUT context a mark consumes.
func inputWidth(m Mark) int {
	switch m.Kind {
	case Insert, MoveIn, Revive:
		return 0
	default:
		return m.Count
	}
}

// outputWidth is how many cells of the OUTPUT context a mark produces.
func outputWidth(m Mark) int {
	switch m.Kind {
	case Remove, MoveOut:
		return 0
	default:
		return m.Count
	}
}

// MarkList is an ordered mark-list changeset for one sequence field.
type MarkList []Mark

// Empty returns a mark list with no effect.
func Empty() MarkList { return nil }

// InputLength sums inputWidth across the list — the cell count of the
// field in the context the changeset was built against.
func (ml MarkList) InputLength() int {
	n := 0
	for _, m := range ml {
		n += inputWidth(m)
	}
	return n
}

// OutputLength sums outputWidth across the list — the cell count of the
// field after the changeset is applied.
func (ml MarkList) OutputLength() int {
	n := 0
	for _, m := range ml {
		n += outputWidth(m)
	}
	return n
}

func cloneMark(m Mark) Mark {
	out := m
	if m.Content != nil {
		out.Content = append([]*treedata.Node(nil), m.Content...)
	}
	return out
}

func (ml MarkList) clone() MarkList {
	out := make(MarkList, len(ml))
	for i, m := range ml {
		out[i] = cloneMark(m)
	}
	return out
}

// normalize drops zero-count and no-op Skip marks and merges adjacent
// Skip runs, keeping mark lists canonical for equality comparisons in
// tests and for compactness on the wire.
func normalize(ml MarkList) MarkList {
	var out MarkList
	for _, m := range ml {
		if m.Count == 0 {
			continue
		}
		if m.Kind == Skip && len(out) > 0 && out[len(out)-1].Kind == Skip {
			out[len(out)-1].Count += m.Count
			continue
		}
		out = append(out, m)
	}
	return out
}
