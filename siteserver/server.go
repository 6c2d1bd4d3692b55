// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package siteserver is the HTTP service a site daemon exposes: the
// fetch/select/project/join/union/rename verbs, cleanup, and the 2PC
// participant endpoints (spec.md §4.6), on the default port 12117.
package siteserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ddbms-chat/ddbsql/auth"
	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/rpc"
	"github.com/ddbms-chat/ddbsql/siteengine"
	"github.com/ddbms-chat/ddbsql/txn"
)

// DefaultPort is the well-known inter-site HTTP port (spec.md §6).
const DefaultPort = 12117

// Server wires a Store, a 2PC Participant, and the shared-secret Auth into
// gorilla/mux routes.
type Server struct {
	store       *siteengine.Store
	client      *rpc.Client
	catalog     *catalog.Catalog
	participant *txn.Participant
	auth        auth.Auth
	auditMethod auth.AuditMethod
	log         *logrus.Entry

	mu             sync.Mutex
	runningReaders int
}

// New builds a Server. client and cat are used to pull remote dumps for the
// fetch verb; authn is typically an auth.Audit wrapping an auth.SharedSecret.
// auditMethod, if non-nil, additionally receives one Request call per
// completed /exec or /2pc call (typically the same AuditLog authn's Audit
// wraps); it may be nil when auditing is disabled.
func New(store *siteengine.Store, client *rpc.Client, cat *catalog.Catalog, participant *txn.Participant, authn auth.Auth, auditMethod auth.AuditMethod, log *logrus.Entry) *Server {
	return &Server{store: store, client: client, catalog: cat, participant: participant, auth: authOrNone(authn), auditMethod: auditMethod, log: log}
}

// auditRequest logs a completed /exec or /2pc call, if auditing is enabled.
func (s *Server) auditRequest(r *http.Request, verb string, start time.Time, err error) {
	if s.auditMethod == nil {
		return
	}
	s.auditMethod.Request(r, verb, time.Since(start), err)
}

func authOrNone(a auth.Auth) auth.Auth {
	if a == nil {
		return &auth.None{}
	}
	return a
}

// Router builds the complete gorilla/mux router, with access logging via
// gorilla/handlers and a shared-secret auth middleware on every route but
// /ping and /metrics.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)
	r.Handle("/metrics", metricsHandler())

	authed := r.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/exec/{verb}", s.handleExec).Methods(http.MethodPost)
	authed.HandleFunc("/fetch/{relation}", s.handleFetch).Methods(http.MethodGet)
	authed.HandleFunc("/cleanup/{qid}", s.handleCleanup).Methods(http.MethodPost)
	authed.HandleFunc("/2pc/prepare", s.handlePrepare).Methods(http.MethodPost)
	authed.HandleFunc("/2pc/global-commit", s.handleGlobalCommit).Methods(http.MethodPost)
	authed.HandleFunc("/2pc/global-abort", s.handleGlobalAbort).Methods(http.MethodPost)

	return handlers.CombinedLoggingHandler(logWriter{s.log}, requestMetrics(r))
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}
