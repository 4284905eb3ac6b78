// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package editmanager

import "github.com/antgroup/hugetree/modules/changeerrors"

// Start opens a transaction: every AddLocalChange between Start and
// Commit/Abort is squashed into a single local commit, so a caller can
// build up a multi-step edit and decide at the end whether to keep it
// (spec §5's transaction stack).
func (em *EditManager) Start() {
	em.txDepth++
	if em.txDepth == 1 {
		em.txBase = len(em.local)
	}
}

// InTransaction reports whether a transaction is currently open.
func (em *EditManager) InTransaction() bool { return em.txDepth > 0 }

// CommitTx closes the innermost transaction, composing every local
// commit added since the matching Start into one. Nested Start calls
// only close on their own matching CommitTx/AbortTx; the squash happens
// once the outermost transaction closes.
func (em *EditManager) CommitTx() error {
	if em.txDepth == 0 {
		return changeerrors.ErrNoActiveTransaction
	}
	em.txDepth--
	if em.txDepth > 0 {
		return nil
	}
	added := em.local[em.txBase:]
	if len(added) <= 1 {
		em.txBase = 0
		return nil
	}
	squashed := added[0].Changeset
	for _, c := range added[1:] {
		merged, err := em.engine.Compose(squashed, c.Changeset)
		if err != nil {
			return err
		}
		squashed = merged
	}
	em.local = append(em.local[:em.txBase], Commit{Revision: squashed.Revision, Changeset: squashed})
	em.txBase = 0
	return nil
}

// AbortTx closes the innermost transaction, undoing every local commit
// added since the matching Start (applying their inverses to the forest
// in reverse order) and dropping them from the local branch.
func (em *EditManager) AbortTx() error {
	if em.txDepth == 0 {
		return changeerrors.ErrNoActiveTransaction
	}
	em.txDepth--
	if em.txDepth > 0 {
		return nil
	}
	added := em.local[em.txBase:]
	for i := len(added) - 1; i >= 0; i-- {
		inv, err := em.engine.Invert(added[i].Changeset, em.minter.NewRollbackOf(added[i].Revision))
		if err != nil {
			return err
		}
		if err := em.applyDeltaOnly(inv); err != nil {
			return err
		}
	}
	em.local = em.local[:em.txBase]
	em.txBase = 0
	return nil
}
