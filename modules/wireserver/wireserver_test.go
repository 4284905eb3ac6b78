// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package wireserver

import (
	"bytes"
	"encoding/gob"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/fieldkinds/optionalfield"
	"github.com/antgroup/hugetree/modules/forest"
	"github.com/antgroup/hugetree/modules/nodechange"
	"github.com/antgroup/hugetree/modules/tagging"
	"github.com/antgroup/hugetree/modules/treedata"
)

func newTestServer(t *testing.T) (*Server, *tagging.Minter) {
	t.Helper()
	s := NewServer(Config{
		Registry:   changeset.NewDefaultRegistry(),
		Comparator: tagging.Less,
		Secret:     []byte("test-secret"),
	})
	return s, tagging.NewMinter("alice")
}

func fillRootRequest(minter *tagging.Minter) *AppendRequest {
	rev := minter.NewAnonymous()
	fillCAI := tagging.CAI{Revision: rev, Local: 1}
	nc := nodechange.NewNodeChangeset()
	nc.Fields[treedata.RootFieldKey] = nodechange.FieldChange{
		Kind: treedata.FieldKindOptional,
		Change: &optionalfield.Changeset{
			Moves: []optionalfield.Move{{Src: optionalfield.AtCAI(fillCAI), Dst: optionalfield.SelfTarget(), Kind: optionalfield.NodeTargeting}},
		},
	}
	cs := &changeset.ModularChangeset{
		Revision: rev,
		Root:     nc,
		Builds:   map[tagging.CAI]*treedata.Node{fillCAI: forest.WrapRun([]*treedata.Node{{Type: "doc", Value: "hello"}})},
	}
	return &AppendRequest{OriginRevision: rev, Changeset: cs}
}

func postAppend(t *testing.T, s *Server, token string, req *AppendRequest) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(req))

	httpReq := httptest.NewRequest(http.MethodPost, "/append", &buf)
	if token != "" {
		httpReq.Header.Set("Authorization", bearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httpReq)
	return rec
}

func TestAppendRejectsMissingToken(t *testing.T) {
	s, minter := newTestServer(t)
	rec := postAppend(t, s, "", fillRootRequest(minter))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppendRejectsSessionMismatch(t *testing.T) {
	s, minter := newTestServer(t)
	token, err := s.IssueToken("bob", time.Minute)
	require.NoError(t, err)

	rec := postAppend(t, s, token, fillRootRequest(minter))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAppendThenSummaryRoundTrips(t *testing.T) {
	s, minter := newTestServer(t)
	token, err := s.IssueToken("alice", time.Minute)
	require.NoError(t, err)

	rec := postAppend(t, s, token, fillRootRequest(minter))
	require.Equal(t, http.StatusOK, rec.Code)

	var appendResp AppendResponse
	require.NoError(t, gob.NewDecoder(rec.Body).Decode(&appendResp))
	assert.Equal(t, uint64(1), appendResp.Seq)
	assert.Equal(t, uint64(1), appendResp.Revision.Seq)

	httpReq := httptest.NewRequest(http.MethodGet, "/summary", nil)
	httpReq.Header.Set("Authorization", bearerPrefix+token)
	sumRec := httptest.NewRecorder()
	s.ServeHTTP(sumRec, httpReq)
	require.Equal(t, http.StatusOK, sumRec.Code)
	assert.Contains(t, sumRec.Body.String(), `"LastSeq":1`)
	assert.Contains(t, sumRec.Body.String(), `"LastSeen":true`)
}
