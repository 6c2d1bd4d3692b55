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

// Package siteengine is the site daemon's local relational store: the
// fragment data a site physically holds, plus the fetch/union/join/select/
// project/rename operations the daemon exposes over rpc (spec.md §4.6). It
// models exactly that algebra rather than embedding a general SQL engine,
// since every operation the daemon ever receives is one of those six verbs.
package siteengine

import (
	"strings"
	"sync"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrNoSuchRelation is returned when an operation names a relation this
// site doesn't hold.
var ErrNoSuchRelation = errors.NewKind("no such relation %q")

// Table is one materialized relation: either a seeded fragment or an
// intermediate created by a verb.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]interface{}
}

// Store is the set of tables a site daemon holds, guarded by a mutex since
// the HTTP handlers run concurrently.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{tables: map[string]*Table{}}
}

// Seed installs a fragment's fixture data under its physical name (spec.md
// leaves the catalog/data layer out of scope; this is how a deployment's
// fixture data gets loaded at daemon start).
func (s *Store) Seed(name string, columns []string, rows [][]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = &Table{Name: name, Columns: columns, Rows: rows}
}

// Get returns a copy-free reference to a table; callers must not mutate
// Rows/Columns in place.
func (s *Store) Get(name string) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, ErrNoSuchRelation.New(name)
	}
	return t, nil
}

// put installs target under a freshly computed table (internal use by the
// verb implementations in ops.go).
func (s *Store) put(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Name] = t
}

// Drop removes one table; absent is not an error (cleanup is best-effort
// and idempotent).
func (s *Store) Drop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, name)
}

// DropPrefix removes every table whose name begins with prefix: the
// /cleanup/<qid> handler's implementation.
func (s *Store) DropPrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.tables {
		if strings.HasPrefix(name, prefix) {
			delete(s.tables, name)
		}
	}
}
