// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/editmanager"
	"github.com/antgroup/hugetree/modules/forest"
	"github.com/antgroup/hugetree/modules/schemapolicy"
	"github.com/antgroup/hugetree/modules/tagging"
)

// Summary is the in-memory form of a loaded or about-to-be-saved summary
// tree: the four root keys spec §6 names, each owned by the collaborator
// that interprets it.
type Summary struct {
	EditManager        editmanager.Snapshot
	Forest             forest.Snapshot
	Schema             *schemapolicy.Policy
	DetachedFieldIndex detachedindex.Snapshot
}

// BuildSummary captures the current state of a running session's
// collaborators into a Summary ready for Encode.
func BuildSummary(em *editmanager.EditManager, f *forest.Forest, idx *detachedindex.Index, policy *schemapolicy.Policy) *Summary {
	return &Summary{
		EditManager:        em.Summarize(),
		Forest:             f.Snapshot(),
		Schema:             policy,
		DetachedFieldIndex: idx.Snapshot(),
	}
}

// Restore rebuilds the four collaborators a Summary describes. engine and
// minter are supplied by the caller, not persisted: they're construction-
// time configuration (the field-kind registry, this session's authoring
// identity), not state a summary checkpoints.
func (s *Summary) Restore(engine *changeset.Engine, minter *tagging.Minter) (*editmanager.EditManager, *forest.Forest, *detachedindex.Index, *schemapolicy.Policy) {
	idx := detachedindex.Restore(s.DetachedFieldIndex)
	f := forest.Restore(idx, s.Forest)
	em := editmanager.New(engine, minter, f, idx)
	em.Load(s.EditManager)
	return em, f, idx, s.Schema
}
