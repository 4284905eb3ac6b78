// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package wireserver implements a reference in-process sequencer (spec
// §6's "transport/runtime that orders ops"): an HTTP surface, grounded
// in pkg/serve/httpserver's router/auth/response shape, that assigns
// sequence numbers to submitted changesets and runs them through one
// shared edit-manager so /summary can show every client the same
// trunk. It exists for demos and integration tests, not as a production
// collaboration backend — a real deployment would shard this across
// many documents and persist the summary via modules/codec between
// restarts.
package wireserver

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/antgroup/hugetree/modules/changeset"
	"github.com/antgroup/hugetree/modules/detachedindex"
	"github.com/antgroup/hugetree/modules/editmanager"
	"github.com/antgroup/hugetree/modules/forest"
	"github.com/antgroup/hugetree/modules/schemapolicy"
)

// ErrorCode is the JSON error envelope every failed request renders,
// matching pkg/serve/httpserver/response.go's protocol.ErrorCode.
type ErrorCode struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *ErrorCode) Error() string { return e.Message }

// Server is the sequencer: one edit-manager instance shared across every
// session that connects, serialized by mu since the engine and its
// collaborators carry no lock of their own (spec §5's single-threaded
// cooperative scheduling model — the server is this engine's one thread).
type Server struct {
	secret []byte

	mu      sync.Mutex
	em      *editmanager.EditManager
	forest  *forest.Forest
	index   *detachedindex.Index
	policy  *schemapolicy.Policy
	nextSeq uint64

	r *mux.Router
}

// Config bundles what NewServer needs beyond the field-kind registry: the
// comparator the engine rebases with (typically an idcompress.Compressor's
// Less) and the HMAC secret bearer tokens are signed/verified with.
type Config struct {
	Registry   changeset.Registry
	Comparator changeset.RebaseComparator
	Policy     *schemapolicy.Policy
	Secret     []byte
}

// NewServer returns a sequencer with an empty forest and trunk.
func NewServer(cfg Config) *Server {
	engine := changeset.NewEngine(cfg.Registry, cfg.Comparator)
	index := detachedindex.New()
	f := forest.New(index)
	em := editmanager.New(engine, nil, f, index)

	s := &Server{
		secret: cfg.Secret,
		em:     em,
		forest: f,
		index:  index,
		policy: cfg.Policy,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/append", s.authenticated(s.handleAppend)).Methods("POST")
	r.HandleFunc("/summary", s.authenticated(s.handleSummary)).Methods("GET")
	s.r = r
}

// ServeHTTP makes Server an http.Handler directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.r.ServeHTTP(w, req)
}
