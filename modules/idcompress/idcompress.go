// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package idcompress implements the identifier-compression collaborator
// (spec §6): a session-scoped revision-tag -> stable 64-bit id table, and
// a rebase comparator built on it for sequence-field insert tie-breaks
// that need a deterministic order independent of raw session-id string
// comparison (see modules/tagging.Compare's doc comment).
package idcompress

import (
	"github.com/cespare/xxhash/v2"

	"github.com/antgroup/hugetree/modules/tagging"
)

type slot struct {
	key    tagging.RevisionKey
	id     uint64
	filled bool
}

// Compressor is an open-addressing table from RevisionKey to a locally
// assigned, monotonically increasing stable id, hashed with xxhash to
// pick the initial probe bucket. It belongs to exactly one edit-manager
// (or sequencer) instance; the scheduling model is single-threaded
// cooperative (spec §5), so it carries no lock.
type Compressor struct {
	buckets []slot
	mask    uint64
	count   int
	byID    []tagging.RevisionKey
}

// New returns an empty compressor with an initial table sized for
// roughly initialCapacity entries before its first grow.
func New(initialCapacity int) *Compressor {
	size := nextPow2(initialCapacity)
	if size < 8 {
		size = 8
	}
	return &Compressor{buckets: make([]slot, size), mask: uint64(size - 1)}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func bucketHash(k tagging.RevisionKey) uint64 {
	return xxhash.Sum64String(k.String())
}

// Normalize returns key's stable id, assigning the next free one on
// first use. The id is stable for the lifetime of this compressor (and
// across a summary round-trip, if the codec persists the table) but is
// only locally meaningful: two compressors that have never exchanged
// tables may assign different ids to the same key.
func (c *Compressor) Normalize(key tagging.RevisionKey) uint64 {
	if id, ok := c.lookup(key); ok {
		return id
	}
	if c.count*2 >= len(c.buckets) {
		c.grow()
	}
	id := uint64(len(c.byID))
	c.insert(key, id)
	c.byID = append(c.byID, key)
	return id
}

// Recognize returns the key previously normalized to stable, if any.
func (c *Compressor) Recognize(stable uint64) (tagging.RevisionKey, bool) {
	if stable >= uint64(len(c.byID)) {
		return tagging.RevisionKey{}, false
	}
	return c.byID[stable], true
}

func (c *Compressor) lookup(key tagging.RevisionKey) (uint64, bool) {
	i := bucketHash(key) & c.mask
	for {
		s := c.buckets[i]
		if !s.filled {
			return 0, false
		}
		if s.key == key {
			return s.id, true
		}
		i = (i + 1) & c.mask
	}
}

func (c *Compressor) insert(key tagging.RevisionKey, id uint64) {
	i := bucketHash(key) & c.mask
	for c.buckets[i].filled {
		i = (i + 1) & c.mask
	}
	c.buckets[i] = slot{key: key, id: id, filled: true}
	c.count++
}

func (c *Compressor) grow() {
	old := c.buckets
	c.buckets = make([]slot, len(old)*2)
	c.mask = uint64(len(c.buckets) - 1)
	c.count = 0
	for _, s := range old {
		if s.filled {
			c.insert(s.key, s.id)
		}
	}
}

// Less is a modules/changeset.RebaseComparator: it breaks ties between
// two revision tags by their normalized stable ids once both have been
// seen by this compressor (normalizing either for the first time here,
// which is why Less is not safe to call concurrently with itself — see
// the single-threaded assumption above). Sequenced tags still sort by
// Seq first, matching tagging.Compare; this only changes the order among
// anonymous tags (two sequenced tags go straight to tagging.Less).
func (c *Compressor) Less(a, b tagging.RevisionTag) bool {
	if a.Anonymous != b.Anonymous {
		return tagging.Less(a, b)
	}
	if !a.Anonymous {
		return tagging.Less(a, b)
	}
	if a.Key == b.Key {
		return false
	}
	return c.Normalize(a.Key) < c.Normalize(b.Key)
}
