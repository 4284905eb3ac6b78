// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package tagging

// Minter mints anonymous revisions monotonically within one session and
// answers hasRollback queries for the edit-manager (spec §3, §4.A). A
// Minter instance belongs to exactly one edit-manager; the scheduling
// model is single-threaded cooperative (spec §5), so it carries no lock.
type Minter struct {
	session   string
	localSeq  uint64
	caiSeq    map[RevisionKey]uint64
	rollbacks map[RevisionKey]RevisionTag
}

func NewMinter(session string) *Minter {
	return &Minter{
		session:   session,
		caiSeq:    make(map[RevisionKey]uint64),
		rollbacks: make(map[RevisionKey]RevisionTag),
	}
}

// NewAnonymous mints a fresh anonymous revision tag, monotone within this
// session.
func (m *Minter) NewAnonymous() RevisionTag {
	m.localSeq++
	return RevisionTag{Anonymous: true, Key: RevisionKey{Session: m.session, Local: m.localSeq}}
}

// NewLocalID mints the next local CAI under the given (still-anonymous or
// sequenced) revision.
func (m *Minter) NewLocalID(revision RevisionTag) CAI {
	n := m.caiSeq[revision.Key] + 1
	m.caiSeq[revision.Key] = n
	return CAI{Revision: revision, Local: n}
}

// Sequence rewrites an anonymous revision to a sequenced one, preserving
// its Key so provenance (and any rollback registered against it) survives
// the rewrite.
func Sequence(tag RevisionTag, seq uint64) RevisionTag {
	return RevisionTag{Anonymous: false, Key: tag.Key, Seq: seq}
}

// NewRollbackOf mints a rollback tag pointing at target and registers it
// so HasRollback(target) subsequently reports true.
func (m *Minter) NewRollbackOf(target RevisionTag) RevisionTag {
	tag := RevisionTag{Rollback: true, RollbackOf: target.Key}
	m.rollbacks[target.Key] = tag
	return tag
}

// HasRollback answers whether a rollback has been minted for revision.
func (m *Minter) HasRollback(revision RevisionTag) bool {
	_, ok := m.rollbacks[revision.Key]
	return ok
}

// RollbackFor returns the rollback tag minted for revision, if any.
func (m *Minter) RollbackFor(revision RevisionTag) (RevisionTag, bool) {
	tag, ok := m.rollbacks[revision.Key]
	return tag, ok
}
