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

// Package repl drives one statement at a time through the full pipeline:
// resolve, plan, optimize, linearize and execute a SELECT; drive an UPDATE
// through two-phase commit (spec.md §4.1-§4.7).
package repl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/executor"
	"github.com/ddbms-chat/ddbsql/optimizer"
	"github.com/ddbms-chat/ddbsql/plan"
	"github.com/ddbms-chat/ddbsql/planner"
	"github.com/ddbms-chat/ddbsql/rpc"
	"github.com/ddbms-chat/ddbsql/txn"
)

// Session holds everything one client needs to drive statements against
// the cluster: the catalog, the rpc client, the originating site, and a
// lazily-opened 2PC coordinator for UPDATEs.
type Session struct {
	Catalog *catalog.Catalog
	Client  *rpc.Client
	Origin  catalog.Site
	Log     *logrus.Entry

	cache       *planner.Cache
	coordinator *txn.Coordinator
	coordLog    string
}

// NewSession builds a Session. coordLog is the path the 2PC coordinator's
// durable event log is opened at, on first UPDATE.
func NewSession(cat *catalog.Catalog, client *rpc.Client, origin catalog.Site, log *logrus.Entry, coordLog string) *Session {
	return &Session{Catalog: cat, Client: client, Origin: origin, Log: log, cache: planner.NewCache(), coordLog: coordLog}
}

// Close releases the coordinator's durable log, if one was opened.
func (s *Session) Close() error {
	if s.coordinator != nil {
		return s.coordinator.Close()
	}
	return nil
}

// Run dispatches sql to the SELECT pipeline or the 2PC coordinator based on
// its leading keyword, and writes a human-readable result to w.
func (s *Session) Run(ctx context.Context, sql string, w io.Writer) error {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil
	}

	if strings.HasPrefix(strings.ToUpper(sql), "UPDATE") {
		return s.runUpdate(ctx, sql, w)
	}
	return s.runSelect(ctx, sql, w)
}

func (s *Session) runSelect(ctx context.Context, sql string, w io.Writer) error {
	key, keyErr := planner.Key(sql)

	var query *ddbsql.SelectQuery
	var tree *plan.QueryTree
	var hit bool
	if keyErr == nil {
		query, tree, hit = s.cache.Get(key)
	}

	if !hit {
		var err error
		query, err = ddbsql.Resolve(sql, s.Catalog)
		if err != nil {
			return fmt.Errorf("resolve: %w", err)
		}

		tree, err = plan.Build(query)
		if err != nil {
			return fmt.Errorf("plan: %w", err)
		}

		if err := optimizer.Optimize(tree, s.Catalog); err != nil {
			return fmt.Errorf("optimize: %w", err)
		}

		if keyErr == nil {
			s.cache.Put(key, query, tree)
		}
	}

	qid := planner.NewQID(s.Origin.ID)
	ops, final, err := planner.Linearize(tree, query, qid)
	if err != nil {
		return fmt.Errorf("linearize: %w", err)
	}

	out, err := executor.Execute(ctx, s.Catalog, s.Client, s.Log, s.Origin, qid, ops, final, query.Limit)
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	printRows(w, out.Columns, out.Rows)
	return nil
}

func (s *Session) runUpdate(ctx context.Context, sql string, w io.Writer) error {
	if s.coordinator == nil {
		c, err := txn.NewCoordinator(s.Catalog, s.Client, s.coordLog, s.Log)
		if err != nil {
			return fmt.Errorf("opening coordinator log: %w", err)
		}
		s.coordinator = c
	}

	outcome, err := s.coordinator.Run(ctx, sql)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	fmt.Fprintln(w, outcome)
	return nil
}

// printRows renders columns/rows as a space-aligned table.
func printRows(w io.Writer, columns []string, rows [][]any) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	fmt.Fprintf(tw, "(%d row(s))\n", len(rows))
	tw.Flush()
}
