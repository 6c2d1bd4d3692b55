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

package txn

import (
	"fmt"
	"strings"

	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/siteengine"
)

// assignment is one "col = value" pair from an UPDATE's SET clause.
type assignment struct {
	column string
	value  string
}

// applyUpdate runs a prepared UPDATE's SET/WHERE against the named table in
// store, mutating matching rows in place. sql is the already-rewritten
// statement (its table identifier is table).
func applyUpdate(store *siteengine.Store, table, sql string) error {
	assignments, cond, err := parseUpdate(sql, table)
	if err != nil {
		return err
	}

	t, err := store.Get(table)
	if err != nil {
		return err
	}

	colIdx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		colIdx[c] = i
	}
	for _, a := range assignments {
		if _, ok := colIdx[a.column]; !ok {
			return fmt.Errorf("txn: unknown column %q in SET clause", a.column)
		}
	}

	for _, row := range t.Rows {
		r := make(map[string]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			r[c] = row[i]
		}
		ok, err := siteengine.EvalCondition(cond, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, a := range assignments {
			row[colIdx[a.column]] = parseLiteral(a.value)
		}
	}
	return nil
}

// parseUpdate splits "UPDATE <table> SET a=1, b='x' [WHERE ...]" into its
// assignments and WHERE condition (the restricted grammar's UPDATE form).
func parseUpdate(sql, table string) ([]assignment, ddbsql.ConditionNode, error) {
	upper := strings.ToUpper(sql)
	setIdx := strings.Index(upper, "SET")
	if setIdx < 0 {
		return nil, nil, fmt.Errorf("txn: UPDATE missing SET clause")
	}
	rest := sql[setIdx+3:]

	whereIdx := strings.Index(strings.ToUpper(rest), "WHERE")
	setClause := rest
	var whereClause string
	if whereIdx >= 0 {
		setClause = rest[:whereIdx]
		whereClause = rest[whereIdx+5:]
	}

	assignments, err := parseAssignments(setClause)
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(whereClause) == "" {
		return assignments, nil, nil
	}
	cond, err := parseSimpleWhere(whereClause)
	return assignments, cond, err
}

func parseAssignments(clause string) ([]assignment, error) {
	var out []assignment
	for _, part := range splitTopLevel(clause, ',') {
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return nil, fmt.Errorf("txn: malformed assignment %q", part)
		}
		out = append(out, assignment{
			column: strings.TrimSpace(strings.Trim(part[:eq], "` ")),
			value:  strings.TrimSpace(part[eq+1:]),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("txn: empty SET clause")
	}
	return out, nil
}

// parseSimpleWhere parses an AND-only chain of "col op value" comparisons,
// the only predicate shape the restricted grammar's UPDATE allows.
func parseSimpleWhere(clause string) (ddbsql.ConditionNode, error) {
	var conds []ddbsql.ConditionNode
	for _, part := range splitTopLevelWord(clause, "AND") {
		c, err := parseComparison(part)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return ddbsql.ConditionAnd{Conditions: conds}, nil
}

var comparisonOps = []string{"!=", "<=", ">=", "=", "<", ">"}

func parseComparison(part string) (ddbsql.Condition, error) {
	part = strings.TrimSpace(part)
	for _, op := range comparisonOps {
		if idx := strings.Index(part, op); idx >= 0 {
			return ddbsql.Condition{
				LHS: strings.TrimSpace(strings.Trim(part[:idx], "`")),
				Op:  op,
				RHS: strings.TrimSpace(part[idx+len(op):]),
			}, nil
		}
	}
	return ddbsql.Condition{}, fmt.Errorf("txn: malformed predicate %q", part)
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	inStr := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inStr = !inStr
		case '(':
			if !inStr {
				depth++
			}
		case ')':
			if !inStr {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 && !inStr {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func splitTopLevelWord(s, word string) []string {
	upper := strings.ToUpper(s)
	var out []string
	for {
		idx := strings.Index(upper, word)
		if idx < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:idx])
		s = s[idx+len(word):]
		upper = upper[idx+len(word):]
	}
	return out
}

func parseLiteral(v string) interface{} {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}
