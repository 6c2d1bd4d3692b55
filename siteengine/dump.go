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

package siteengine

import (
	"fmt"
	"strings"

	"github.com/ddbms-chat/ddbsql/rpc"
)

// Dump produces the DDL+DML dump of t under its own local name; the
// fetching site rewrites the name on load (spec.md §4.6's fetch verb).
func Dump(t *Table) rpc.RelationDump {
	var stmts []string
	stmts = append(stmts, createStatement(t.Name, t.Columns))
	for _, row := range t.Rows {
		stmts = append(stmts, insertStatement(t.Name, t.Columns, row))
	}
	return rpc.RelationDump{
		SourceName: t.Name,
		Statements: stmts,
		Rows:       toAnyRows(t.Rows),
		Columns:    append([]string(nil), t.Columns...),
	}
}

// Load materializes a dump into the store under target by replaying its
// rows directly, since this store has no separate DDL interpreter. The
// dump's statements are rewritten to name target but are not stored.
func (s *Store) Load(dump *rpc.RelationDump, target string) {
	rewritten := make([]string, len(dump.Statements))
	for i, stmt := range dump.Statements {
		rewritten[i] = strings.ReplaceAll(stmt, dump.SourceName, target)
	}

	s.put(&Table{
		Name:    target,
		Columns: append([]string(nil), dump.Columns...),
		Rows:    fromAnyRows(dump.Rows),
	})
}

func createStatement(name string, columns []string) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(columns, ", "))
}

func insertStatement(name string, columns []string, values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(columns, ", "), strings.Join(parts, ", "))
}

func toAnyRows(rows [][]interface{}) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

func fromAnyRows(rows [][]any) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = append([]interface{}(nil), r...)
	}
	return out
}
