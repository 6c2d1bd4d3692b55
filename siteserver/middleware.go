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
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ddbms-chat/ddbsql/auth"
)

// authMiddleware enforces the shared-secret check on every wrapped route;
// exec/fetch/cleanup require ReadPerm, 2PC endpoints require WritePerm.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		perm := auth.ReadPerm
		if len(r.URL.Path) >= 4 && r.URL.Path[:4] == "/2pc" {
			perm = auth.WritePerm
		}
		if err := s.auth.Allowed(r, perm); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// beginRead marks a read query as in-flight at this site, so that a
// concurrent prepare observes it and votes abort (spec.md §4.6/§5).
func (s *Server) beginRead() {
	s.mu.Lock()
	s.runningReaders++
	s.mu.Unlock()
}

func (s *Server) endRead() {
	s.mu.Lock()
	s.runningReaders--
	s.mu.Unlock()
}

func (s *Server) readInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningReaders > 0
}

// logWriter adapts a logrus.Entry to the io.Writer gorilla/handlers'
// access-log middleware writes formatted request lines to.
type logWriter struct {
	log *logrus.Entry
}

func (w logWriter) Write(p []byte) (int, error) {
	if w.log == nil {
		return len(p), nil
	}
	w.log.WithField("component", "access_log").Info(string(p))
	return len(p), nil
}
