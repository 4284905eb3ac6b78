// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package wireserver

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antgroup/hugetree/modules/changeerrors"
	"github.com/antgroup/hugetree/modules/changeset"
	_ "github.com/antgroup/hugetree/modules/codec" // registers the field-kind changeset types gob needs to carry a ModularChangeset over the wire
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/tracelog"
)

const wireMIME = "application/vnd.hugetree.gob"

// AppendRequest submits a changeset a client authored under
// OriginRevision (anonymous or already sequenced elsewhere — this
// server always (re)sequences it) for the sequencer to order.
type AppendRequest struct {
	OriginRevision tagging.RevisionTag
	Changeset      *changeset.ModularChangeset
}

// AppendResponse reports the sequence number and fully sequenced
// revision tag the server assigned.
type AppendResponse struct {
	Seq      uint64
	Revision tagging.RevisionTag
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request, claims *SessionClaims) {
	var req AppendRequest
	if err := gob.NewDecoder(r.Body).Decode(&req); err != nil {
		renderFailureFormat(w, http.StatusBadRequest, "decode append request: %v", err)
		return
	}
	if req.Changeset == nil {
		renderFailure(w, http.StatusBadRequest, "missing changeset")
		return
	}
	if req.OriginRevision.Key.Session != claims.SessionID {
		renderFailureFormat(w, http.StatusForbidden, "bearer session %q does not match changeset author %q", claims.SessionID, req.OriginRevision.Key.Session)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.nextSeq + 1
	if err := s.em.AddSequencedChange(req.OriginRevision, seq, req.Changeset); err != nil {
		renderEngineError(w, err)
		return
	}
	s.nextSeq = seq

	resp := AppendResponse{Seq: seq, Revision: tagging.Sequence(req.OriginRevision, seq)}
	w.Header().Set("Content-Type", wireMIME)
	w.WriteHeader(http.StatusOK)
	if err := gob.NewEncoder(w).Encode(&resp); err != nil {
		tracelog.Warnf("wireserver: encode append response: %v", err)
	}
}

// SummaryView is /summary's JSON-friendly introspection shape: the
// revision tags on the trunk and local branch, not their full
// changesets (clients that need the changesets themselves use
// modules/codec against a persisted summary).
type SummaryView struct {
	LastSeq  uint64
	LastSeen bool
	Trunk    []tagging.RevisionTag
	Local    []tagging.RevisionTag
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, _ *SessionClaims) {
	s.mu.Lock()
	snap := s.em.Summarize()
	s.mu.Unlock()

	view := SummaryView{LastSeq: snap.LastSeq, LastSeen: snap.LastSeen}
	for _, c := range snap.Trunk {
		view.Trunk = append(view.Trunk, c.Revision)
	}
	for _, c := range snap.Local {
		view.Local = append(view.Local, c.Revision)
	}

	w.Header().Set("Content-Type", jsonMIME)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(&view); err != nil {
		tracelog.Warnf("wireserver: encode summary response: %v", err)
	}
}

// renderEngineError maps an edit-manager error to an HTTP status the way
// pkg/serve/httpserver.renderErrorRaw switches on domain error kinds.
// ConstraintViolation never reaches here: the edit-manager already
// reduces it to a logged no-op (modules/editmanager.applyConstraintsAndDelta).
func renderEngineError(w http.ResponseWriter, err error) {
	switch {
	case changeerrors.IsErrOutOfSchema(err):
		renderFailureFormat(w, http.StatusUnprocessableEntity, "%v", err)
	case changeerrors.IsErrMissingRefresher(err):
		renderFailureFormat(w, http.StatusConflict, "%v", err)
	case changeerrors.IsErrInvalidChangeset(err):
		renderFailureFormat(w, http.StatusBadRequest, "%v", err)
	case errors.Is(err, changeerrors.ErrUnexpectedSeqNum):
		renderFailureFormat(w, http.StatusConflict, "%v", err)
	default:
		renderFailureFormat(w, http.StatusInternalServerError, "%v", err)
	}
}
