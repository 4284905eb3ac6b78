// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detachedindex implements the detached-field index (spec §4.I):
// the CAI -> forest-root-id arena that outlives any single delta
// derivation, persists across summaries, and dedupes identical detached
// subtrees introduced by two replicas via content hashing.
package detachedindex

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

// RootID is a stable, arena-local handle for a detached subtree — stable
// across summaries, unlike delta.ForestID which is scoped to one delta.
type RootID uint64

// entry is one arena slot: the content hash (for dedupe) and the
// sequence number of the commit that most recently referenced it, used
// by Evict to find slots outside the collaboration window.
type entry struct {
	id       RootID
	hash     [32]byte
	lastSeen uint64
}

// Index is the CAI -> RootID arena. Two CAIs whose detached content
// hashes equal collapse to the same RootID, so a subtree built on two
// replicas (anonymous CAI on each, later sequenced to different session
// keys) is recognized as identical and stored once.
type Index struct {
	byCAI  map[tagging.CAI]*entry
	byHash map[[32]byte]*entry
	next   RootID
}

func New() *Index {
	return &Index{byCAI: make(map[tagging.CAI]*entry), byHash: make(map[[32]byte]*entry)}
}

// Allocate returns the RootID for cai's content, minting (or reusing, via
// content-hash dedupe) one on first use, and records seq as the last
// sequence number that referenced it.
func (idx *Index) Allocate(cai tagging.CAI, content *treedata.Node, seq uint64) RootID {
	if e, ok := idx.byCAI[cai]; ok {
		e.lastSeen = seq
		return e.id
	}
	h := hashNode(content)
	if e, ok := idx.byHash[h]; ok {
		e.lastSeen = seq
		idx.byCAI[cai] = e
		return e.id
	}
	idx.next++
	e := &entry{id: idx.next, hash: h, lastSeen: seq}
	idx.byCAI[cai] = e
	idx.byHash[h] = e
	return e.id
}

// Lookup returns the RootID already allocated for cai, if any.
func (idx *Index) Lookup(cai tagging.CAI) (RootID, bool) {
	e, ok := idx.byCAI[cai]
	if !ok {
		return 0, false
	}
	return e.id, true
}

// Evict drops every CAI entry last referenced strictly before minSeq — the
// edit-manager calls this after advancing the trunk's minimum sequence
// number across all peer branches (spec §4.F retention rule), since no
// commit still on any branch can reference a detach from before that
// point.
func (idx *Index) Evict(minSeq uint64) int {
	dropped := 0
	for cai, e := range idx.byCAI {
		if e.lastSeen < minSeq {
			delete(idx.byCAI, cai)
			dropped++
		}
	}
	for h, e := range idx.byHash {
		if _, live := idx.byCAI[caiForEntry(idx, e)]; !live {
			delete(idx.byHash, h)
		}
	}
	return dropped
}

// caiForEntry is an O(n) fallback used only by Evict's byHash cleanup
// pass; the arena is not expected to hold enough distinct subtrees for
// this to matter relative to the O(1) byCAI deletes above.
func caiForEntry(idx *Index, target *entry) tagging.CAI {
	for cai, e := range idx.byCAI {
		if e == target {
			return cai
		}
	}
	return tagging.CAI{}
}

// hashNode content-hashes a subtree deterministically: field keys are
// sorted so map iteration order never affects the digest.
func hashNode(n *treedata.Node) [32]byte {
	h := blake3.New()
	writeNode(h, n)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeNode(h *blake3.Hasher, n *treedata.Node) {
	if n == nil {
		h.Write([]byte{0})
		return
	}
	h.Write([]byte{1})
	h.Write([]byte(n.Type))
	writeValue(h, n.Value)

	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(keys)))
	h.Write(lenBuf[:])
	for _, k := range keys {
		h.Write([]byte(k))
		f := n.Fields[treedata.FieldKey(k)]
		switch f.Kind {
		case treedata.FieldKindOptional:
			h.Write([]byte{byte(f.Kind[0])})
			writeNode(h, f.Optional)
		case treedata.FieldKindSequence:
			h.Write([]byte{byte(f.Kind[0])})
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(f.Sequence)))
			h.Write(lenBuf[:])
			for _, child := range f.Sequence {
				writeNode(h, child)
			}
		}
	}
}

func writeValue(h *blake3.Hasher, v treedata.Value) {
	switch val := v.(type) {
	case nil:
		h.Write([]byte{0})
	case bool:
		if val {
			h.Write([]byte{1, 1})
		} else {
			h.Write([]byte{1, 0})
		}
	case float64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(val))
		h.Write(append([]byte{2}, buf[:]...))
	case string:
		h.Write(append([]byte{3}, []byte(val)...))
	default:
		h.Write([]byte{4})
	}
}
