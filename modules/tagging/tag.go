// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tagging mints change-atom ids and revision tags (spec §4.A).
//
// A revision tag is opaque and totally ordered after sequencing; it has two
// disjoint flavors, anonymous (pre-commit) and sequenced (post-commit,
// carrying a sequence number). A rollback revision is a distinct tag
// pointing at the revision it inverts.
package tagging

import "fmt"

// RevisionKey identifies which (session, local-counter) pair minted a
// revision tag, independent of whether that tag has since been sequenced.
// It never changes across the anonymous -> sequenced rewrite: Sequence
// keeps the Key so provenance survives re-tagging.
type RevisionKey struct {
	Session string
	Local   uint64
}

func (k RevisionKey) String() string {
	return fmt.Sprintf("%s/%d", k.Session, k.Local)
}

// RevisionTag is an opaque, comparable token. Two tags with the same field
// values denote the same revision; it is safe to use as a map key.
type RevisionTag struct {
	// Anonymous is true for a revision still being authored locally; it
	// has not yet been assigned a sequence number by the sequencer.
	Anonymous bool
	Key       RevisionKey

	// Seq is the total-order sequence number assigned by the sequencer.
	// Only meaningful when Anonymous is false.
	Seq uint64

	// Rollback marks this tag as the inverse of RollbackOf, minted when
	// an edit-manager needs to represent an implicit undo (e.g. local
	// commits undone for a sandwich rebase). RollbackOf is a
	// flat key rather than a nested RevisionTag so the type stays
	// directly comparable.
	Rollback   bool
	RollbackOf RevisionKey
}

// Zero is the absent revision: a changeset still being authored, before
// any CAI inside it has been minted with a session-scoped local id.
var Zero = RevisionTag{}

// IsZero reports whether t is the absent/unset revision.
func (t RevisionTag) IsZero() bool { return t == Zero }

func (t RevisionTag) String() string {
	switch {
	case t.IsZero():
		return "<unset>"
	case t.Rollback:
		return fmt.Sprintf("rollback(%s)", t.RollbackOf)
	case t.Anonymous:
		return fmt.Sprintf("anon(%s)", t.Key)
	default:
		return fmt.Sprintf("seq(%d)/%s", t.Seq, t.Key)
	}
}

// CAI is a change atom id: (revision, localId). It uniquely identifies a
// node-detach, an attach slot, or a move source/destination across the
// whole distributed history. When Revision is anonymous the id names a
// location inside a changeset still being authored.
type CAI struct {
	Revision RevisionTag
	Local    uint64
}

func (c CAI) String() string {
	return fmt.Sprintf("%s#%d", c.Revision, c.Local)
}

// IsAnonymous reports whether this CAI was minted by a changeset that has
// not yet been committed/tagged.
func (c CAI) IsAnonymous() bool { return c.Revision.Anonymous }

// Compare gives a deterministic total order between two revision tags.
// Sequenced tags order by Seq (the authoritative trunk order). Anonymous
// tags order after all sequenced tags (they haven't reached the trunk
// yet) and, among themselves, by (Session, Local) — see DESIGN.md for why
// cross-session determinism for *concurrent inserts* must not use this
// function directly but the identifier-compression-normalized comparator
// in modules/idcompress instead.
func Compare(a, b RevisionTag) int {
	if a == b {
		return 0
	}
	aSeqed, bSeqed := !a.Anonymous, !b.Anonymous
	if aSeqed != bSeqed {
		if aSeqed {
			return -1
		}
		return 1
	}
	if aSeqed {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	}
	if a.Key.Session != b.Key.Session {
		if a.Key.Session < b.Key.Session {
			return -1
		}
		return 1
	}
	switch {
	case a.Key.Local < b.Key.Local:
		return -1
	case a.Key.Local > b.Key.Local:
		return 1
	default:
		return 0
	}
}

// Less reports whether a sorts before b under Compare.
func Less(a, b RevisionTag) bool { return Compare(a, b) < 0 }
