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

package siteserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ddbms-chat/ddbsql/rpc"
	"github.com/ddbms-chat/ddbsql/siteengine"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func internalError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// handleExec dispatches POST /exec/<verb>.
func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	s.beginRead()
	defer s.endRead()

	start := time.Now()
	verb := mux.Vars(r)["verb"]
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, err)
		return
	}

	var err error
	switch verb {
	case "fetch":
		err = s.execFetch(r, body)
	case "select":
		err = s.execSelect(body)
	case "project":
		err = s.execProject(body)
	case "join":
		err = s.execJoin(body)
	case "union":
		err = s.execUnion(body)
	case "rename":
		err = s.execRename(body)
	default:
		http.Error(w, "unknown verb "+verb, http.StatusBadRequest)
		return
	}
	s.auditRequest(r, "exec/"+verb, start, err)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func decodeField(body map[string]json.RawMessage, key string, out interface{}) error {
	raw, ok := body[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (s *Server) execSelect(body map[string]json.RawMessage) error {
	var relation, target string
	var wire rpc.ConditionWire
	if err := decodeField(body, "relation_name", &relation); err != nil {
		return err
	}
	if err := decodeField(body, "target", &target); err != nil {
		return err
	}
	if err := decodeField(body, "select_condition", &wire); err != nil {
		return err
	}
	cond, err := rpc.DecodeCondition(wire)
	if err != nil {
		return err
	}
	return s.store.Select(relation, cond, target)
}

func (s *Server) execProject(body map[string]json.RawMessage) error {
	var relation, target string
	var columns, groupBy []string
	var havingWire rpc.ConditionWire

	if err := decodeField(body, "relation_name", &relation); err != nil {
		return err
	}
	if err := decodeField(body, "target", &target); err != nil {
		return err
	}
	if err := decodeField(body, "project_columns", &columns); err != nil {
		return err
	}
	if err := decodeField(body, "group_by", &groupBy); err != nil {
		return err
	}
	if err := decodeField(body, "having", &havingWire); err != nil {
		return err
	}
	having, err := rpc.DecodeCondition(havingWire)
	if err != nil {
		return err
	}
	return s.store.Project(relation, columns, groupBy, having, target)
}

func (s *Server) execJoin(body map[string]json.RawMessage) error {
	var r1, r2, target string
	var wire rpc.ConditionWire
	if err := decodeField(body, "relation1_name", &r1); err != nil {
		return err
	}
	if err := decodeField(body, "relation2_name", &r2); err != nil {
		return err
	}
	if err := decodeField(body, "target", &target); err != nil {
		return err
	}
	if err := decodeField(body, "join_condition", &wire); err != nil {
		return err
	}
	cond, err := rpc.DecodeCondition(wire)
	if err != nil {
		return err
	}
	return s.store.Join(r1, r2, cond, target)
}

func (s *Server) execUnion(body map[string]json.RawMessage) error {
	var r1, r2, target string
	if err := decodeField(body, "relation1_name", &r1); err != nil {
		return err
	}
	if err := decodeField(body, "relation2_name", &r2); err != nil {
		return err
	}
	if err := decodeField(body, "target", &target); err != nil {
		return err
	}
	return s.store.Union(r1, r2, target)
}

func (s *Server) execRename(body map[string]json.RawMessage) error {
	var oldName, newName string
	if err := decodeField(body, "old_name", &oldName); err != nil {
		return err
	}
	if err := decodeField(body, "new_name", &newName); err != nil {
		return err
	}
	return s.store.Rename(oldName, newName)
}

// execFetch pulls relation_name's dump from site_id and materializes it
// locally as target_relation_name, rewriting the source identifier.
func (s *Server) execFetch(r *http.Request, body map[string]json.RawMessage) error {
	var relation, target string
	var siteID int
	if err := decodeField(body, "relation_name", &relation); err != nil {
		return err
	}
	if err := decodeField(body, "site_id", &siteID); err != nil {
		return err
	}
	if err := decodeField(body, "target_relation_name", &target); err != nil {
		return err
	}

	site, ok := s.catalog.SiteByID(siteID)
	if !ok {
		return fmt.Errorf("siteserver: unknown site id %d", siteID)
	}
	dump, err := s.client.Fetch(r.Context(), site, relation)
	if err != nil {
		return err
	}
	s.store.Load(dump, target)
	return nil
}

// handleFetch serves GET /fetch/<relation>: the DDL+DML dump other sites
// pull via the fetch verb.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	relation := mux.Vars(r)["relation"]
	t, err := s.store.Get(relation)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	dump := siteengine.Dump(t)
	writeJSON(w, dump)
}

// handleCleanup serves POST /cleanup/<qid>.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	qid := mux.Vars(r)["qid"]
	s.store.DropPrefix(qid)
	writeJSON(w, map[string]bool{"success": true})
}

// handlePrepare serves POST /2pc/prepare: {tx_id, table, sql} -> vote.
func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req rpc.PrepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}

	if s.readInFlight() {
		s.auditRequest(r, "2pc/prepare", start, nil)
		writeJSON(w, rpc.PrepareResponse{VoteCommit: false, Reason: "read query in flight at this site"})
		return
	}

	voteCommit, reason := s.participant.Prepare(req.TxID, req.Table, req.SQL)
	var err error
	if !voteCommit {
		err = fmt.Errorf("siteserver: prepare vote abort: %s", reason)
	}
	s.auditRequest(r, "2pc/prepare", start, err)
	writeJSON(w, rpc.PrepareResponse{VoteCommit: voteCommit, Reason: reason})
}

// handleGlobalCommit serves POST /2pc/global-commit: {tx_id}.
func (s *Server) handleGlobalCommit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		TxID string `json:"tx_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	err := s.participant.GlobalCommit(req.TxID)
	s.auditRequest(r, "2pc/global-commit", start, err)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

// handleGlobalAbort serves POST /2pc/global-abort: {tx_id}.
func (s *Server) handleGlobalAbort(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req struct {
		TxID string `json:"tx_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	err := s.participant.GlobalAbort(req.TxID)
	s.auditRequest(r, "2pc/global-abort", start, err)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}
