// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package rangemap implements the interval map over integer keys (spec
// §4.B); no other package in this repository imports it. It is backed by
// a red-black tree keyed by interval start, the same ordered-structure
// pattern modules/zeta/object uses (gods' binaryheap) for its commit
// traversal — here a redblacktree gives the ordered Floor/Ceiling walk
// that splitting overlapping intervals needs.
package rangemap

import (
	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"github.com/antgroup/hugetree/modules/changeerrors"
)

// Entry describes one interval returned by GetFirst: the prefix of the
// queried range, starting at the query's own start, over which the value
// is uniform.
type Entry struct {
	Start  int64
	Length int64
	Value  any
	// HasValue is false when the prefix is a gap (no write ever covered
	// it, or it was cleared by Delete) — the "possibly undefined" case.
	HasValue bool
}

type interval struct {
	start, length int64
	value         any
}

func (iv interval) end() int64 { return iv.start + iv.length }

// Map is an ordered map over disjoint, non-overlapping integer intervals.
type Map struct {
	tree *rbt.Tree
}

// New returns an empty interval map.
func New() *Map {
	return &Map{tree: rbt.NewWith(utils.Int64Comparator)}
}

func validate(length int64) error {
	if length <= 0 {
		return changeerrors.NewErrInvalidRange(0, length)
	}
	return nil
}

// clip removes every interval's overlap with [start, end), splitting any
// interval that only partially overlaps and re-inserting its surviving
// remainder(s). It never touches non-overlapping intervals.
func (m *Map) clip(start, end int64) {
	// Find the interval that might start before `start` but still
	// overlap it.
	if node, ok := m.tree.Floor(start); ok {
		iv := node.Value.(interval)
		if iv.end() > start {
			m.tree.Remove(iv.start)
			if iv.start < start {
				m.tree.Put(iv.start, interval{start: iv.start, length: start - iv.start, value: iv.value})
			}
			if iv.end() > end {
				m.tree.Put(end, interval{start: end, length: iv.end() - end, value: iv.value})
			}
		}
	}
	// Walk every interval whose start lies in [start, end) and clip it
	// to end at `end` (or remove it entirely).
	for {
		node, ok := m.tree.Ceiling(start)
		if !ok {
			break
		}
		iv := node.Value.(interval)
		if iv.start >= end {
			break
		}
		m.tree.Remove(iv.start)
		if iv.end() > end {
			m.tree.Put(end, interval{start: end, length: iv.end() - end, value: iv.value})
		}
	}
}

// Set overwrites [start, start+length) with value. Any prior entry
// overlapping the range is replaced on the overlap; the non-overlapping
// portion of a prior entry survives, split in two if the write lands in
// its middle.
func (m *Map) Set(start, length int64, value any) error {
	if err := validate(length); err != nil {
		return err
	}
	end := start + length
	m.clip(start, end)
	m.tree.Put(start, interval{start: start, length: length, value: value})
	return nil
}

// Delete clears [start, start+length), splitting at boundaries. Unlike
// Set it leaves a gap rather than installing a replacement value.
func (m *Map) Delete(start, length int64) error {
	if err := validate(length); err != nil {
		return err
	}
	m.clip(start, start+length)
	return nil
}

// GetFirst returns the longest prefix of [start, start+length) whose
// value is uniform — either the portion of a single stored interval that
// falls inside the query, or (when start isn't covered by any interval) a
// gap running up to the next interval's start or the query's end,
// whichever comes first.
func (m *Map) GetFirst(start, length int64) (Entry, error) {
	if err := validate(length); err != nil {
		return Entry{}, err
	}
	queryEnd := start + length

	if node, ok := m.tree.Floor(start); ok {
		iv := node.Value.(interval)
		if iv.start <= start && iv.end() > start {
			prefixEnd := min64(iv.end(), queryEnd)
			return Entry{Start: start, Length: prefixEnd - start, Value: iv.value, HasValue: true}, nil
		}
	}
	// start is in a gap; the gap runs until the next interval's start or
	// the end of the query.
	gapEnd := queryEnd
	if node, ok := m.tree.Ceiling(start); ok {
		iv := node.Value.(interval)
		if iv.start < gapEnd {
			gapEnd = iv.start
		}
	}
	return Entry{Start: start, Length: gapEnd - start, HasValue: false}, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
