// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package enricher implements the change enricher (spec §4.G): before a
// locally authored commit leaves this replica, every CAI it references
// that names an existing detached subtree gets a copy of that subtree
// folded into the commit's refreshers map, so a peer that has since
// evicted the subtree can still apply the commit.
package enricher

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/tracelog"
	"github.com/antgroup/hugetree/modules/treedata"
)

// ForestView is the read-only slice of the forest the enricher needs: the
// content currently filed under a detached-field CAI, if any.
type ForestView interface {
	DetachedContent(cai tagging.CAI) (*treedata.Node, bool)
}

// Enricher holds a read-only view of the forest plus the detached-field
// index, and a bounded cache of recently-fetched subtree snapshots so
// repeated enrichment of the same CAI (e.g. across several commits in one
// transaction) doesn't re-walk the forest every time.
type Enricher struct {
	forest ForestView
	index  *detachedindex.Index
	cache  *ristretto.Cache[tagging.CAI, *treedata.Node]
}

// New returns an enricher over forest and index. numCounters/maxCost size
// the underlying ristretto cache (in bytes, loosely — one entry is
// charged a cost of 1 unless the caller has reason to weigh subtrees by
// size).
func New(forest ForestView, index *detachedindex.Index, numCounters, maxCost int64) (*Enricher, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[tagging.CAI, *treedata.Node]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Enricher{forest: forest, index: index, cache: cache}, nil
}

// Enrich walks every CAI cs references (via the CAIs the caller supplies
// — typically the revive/rebase targets a changeset's field algebras
// surface) and, for each that names an existing detached subtree,
// attaches its current content to cs.Refreshers. CAIs the forest no
// longer has content for are left out: the commit still compresses fine
// if the receiving peer already has them, and a genuine miss surfaces
// later as MissingRefresher when that peer actually needs it.
func (e *Enricher) Enrich(cs *changeset.ModularChangeset, referenced []tagging.CAI) {
	for _, cai := range referenced {
		if cai.IsAnonymous() {
			// Names a location inside this same uncommitted changeset,
			// not a pre-existing detached subtree; builds already cover it.
			continue
		}
		if cs.Refreshers != nil {
			if _, ok := cs.Refreshers[cai]; ok {
				continue
			}
		}
		content, ok := e.lookup(cai)
		if !ok {
			continue
		}
		if cs.Refreshers == nil {
			cs.Refreshers = make(map[tagging.CAI]*treedata.Node)
		}
		cs.Refreshers[cai] = content
	}
}

func (e *Enricher) lookup(cai tagging.CAI) (*treedata.Node, bool) {
	if content, ok := e.cache.Get(cai); ok {
		return content, true
	}
	content, ok := e.forest.DetachedContent(cai)
	if !ok {
		return nil, false
	}
	e.cache.Set(cai, content, 1)
	return content, true
}

// Forget evicts cai from the refresher cache, e.g. once the edit-manager
// tells the detached-field index the CAI is out of the retention window
// (spec §4.I) and its cached snapshot would otherwise outlive the index
// entry it mirrors.
func (e *Enricher) Forget(cai tagging.CAI) {
	e.cache.Del(cai)
}

// Fork returns a mutable enricher sharing this one's forest view and
// index but with an independent cache, for a speculative transaction
// that may enrich against tip changes not yet visible to the rest of the
// session (spec §4.G's "mutable enricher").
func (e *Enricher) Fork() (*Enricher, error) {
	fork, err := New(e.forest, e.index, 1<<14, 1<<20)
	if err != nil {
		tracelog.Errorf("enricher: fork failed, falling back to shared cache: %v", err)
		return e, nil
	}
	return fork, nil
}
