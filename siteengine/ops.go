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

	"github.com/spf13/cast"

	"github.com/ddbms-chat/ddbsql/ddbsql"
)

// Select filters relation's rows by cond, materializing the result as target.
func (s *Store) Select(relation string, cond ddbsql.ConditionNode, target string) error {
	t, err := s.Get(relation)
	if err != nil {
		return err
	}

	var kept [][]interface{}
	for _, values := range t.Rows {
		ok, err := EvalCondition(cond, toRow(t.Columns, values))
		if err != nil {
			return err
		}
		if ok {
			kept = append(kept, values)
		}
	}

	s.put(&Table{Name: target, Columns: append([]string(nil), t.Columns...), Rows: kept})
	return nil
}

// Project keeps only columns from relation, materializing the result as
// target. If groupBy is non-empty, rows are grouped and the projected
// non-group-by columns are aggregated with the columns' literal "f(col)"
// form (spec.md §4.5's single project op carrying group_by/having).
func (s *Store) Project(relation string, columns []string, groupBy []string, having ddbsql.ConditionNode, target string) error {
	t, err := s.Get(relation)
	if err != nil {
		return err
	}

	if len(groupBy) == 0 {
		idx, err := columnIndexes(t.Columns, columns)
		if err != nil {
			return err
		}
		var rows [][]interface{}
		for _, values := range t.Rows {
			rows = append(rows, pick(values, idx))
		}
		s.put(&Table{Name: target, Columns: plainNames(columns), Rows: rows})
		return nil
	}

	return s.projectGrouped(t, columns, groupBy, having, target)
}

// Join performs an inner join of relation1 and relation2 on cond (bare
// column names on both sides, post-localization), resolving ambiguous
// (shared) column names by qualifying relation1's side with "r1." — both in
// the output columns and, critically, in the row evaluated against cond:
// cond's LHS is always resolved against relation1 and its RHS against
// relation2, so a condition like "id = id" (the optimizer's vertical-
// fragment join key, unqualified on both sides) compares relation1.id to
// relation2.id instead of silently comparing one merged-map entry to
// itself.
func (s *Store) Join(relation1, relation2 string, cond ddbsql.ConditionNode, target string) error {
	a, err := s.Get(relation1)
	if err != nil {
		return err
	}
	b, err := s.Get(relation2)
	if err != nil {
		return err
	}

	clash := clashingColumns(a.Columns, b.Columns)
	outCols := qualifyOverlap(a.Columns, b.Columns)
	joinCond := qualifyJoinCondition(cond, clash)

	var rows [][]interface{}
	for _, av := range a.Rows {
		rowA := qualifiedRow(a.Columns, av, clash)
		for _, bv := range b.Rows {
			merged := make(row, len(a.Columns)+len(b.Columns))
			for k, v := range rowA {
				merged[k] = v
			}
			for i, c := range b.Columns {
				merged[c] = bv[i]
			}
			ok, err := EvalCondition(joinCond, merged)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			rows = append(rows, append(append([]interface{}{}, av...), bv...))
		}
	}

	s.put(&Table{Name: target, Columns: outCols, Rows: rows})
	return nil
}

// Union appends relation2's rows to relation1's, deduplicating (SQL UNION,
// not UNION ALL, per spec.md's "SELECT * FROM r1 UNION SELECT * FROM r2").
func (s *Store) Union(relation1, relation2, target string) error {
	a, err := s.Get(relation1)
	if err != nil {
		return err
	}
	b, err := s.Get(relation2)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	var rows [][]interface{}
	add := func(values []interface{}) {
		key := fmt.Sprint(values)
		if !seen[key] {
			seen[key] = true
			rows = append(rows, values)
		}
	}
	for _, v := range a.Rows {
		add(v)
	}
	for _, v := range b.Rows {
		add(v)
	}

	s.put(&Table{Name: target, Columns: append([]string(nil), a.Columns...), Rows: rows})
	return nil
}

// Rename materializes relation's rows under target, used by the rename verb
// and by 2PC's shadow-table seeding and commit — always a deep copy, since
// a shadow table is mutated in place by an UPDATE.
func (s *Store) Rename(relation, target string) error {
	t, err := s.Get(relation)
	if err != nil {
		return err
	}
	s.put(&Table{Name: target, Columns: append([]string(nil), t.Columns...), Rows: CopyRows(t.Rows)})
	return nil
}

// CopyRows deep-copies a row set so the result can be mutated without
// aliasing the source table's backing arrays.
func CopyRows(rows [][]interface{}) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = append([]interface{}(nil), r...)
	}
	return out
}

func columnIndexes(have []string, want []string) ([]int, error) {
	pos := make(map[string]int, len(have))
	for i, c := range have {
		pos[c] = i
	}
	idx := make([]int, len(want))
	for i, w := range want {
		name := plainName(w)
		p, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("siteengine: no such column %q", w)
		}
		idx[i] = p
	}
	return idx, nil
}

func pick(values []interface{}, idx []int) []interface{} {
	out := make([]interface{}, len(idx))
	for i, p := range idx {
		out[i] = values[p]
	}
	return out
}

// plainName strips a "table." qualifier or an aggregate "f(...)" wrapper
// down to the bare column name stored locally.
func plainName(ref string) string {
	if open := indexByte(ref, '('); open >= 0 && len(ref) > 0 && ref[len(ref)-1] == ')' {
		ref = ref[open+1 : len(ref)-1]
	}
	if dot := lastIndexByte(ref, '.'); dot >= 0 {
		ref = ref[dot+1:]
	}
	return ref
}

func plainNames(refs []string) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = plainName(r)
	}
	return out
}

func qualifyOverlap(a, b []string) []string {
	clash := clashingColumns(a, b)
	out := make([]string, 0, len(a)+len(b))
	for _, c := range a {
		if clash[c] {
			out = append(out, "r1."+c)
		} else {
			out = append(out, c)
		}
	}
	out = append(out, b...)
	return out
}

// clashingColumns returns the set of column names present in both a and b.
func clashingColumns(a, b []string) map[string]bool {
	bSet := make(map[string]bool, len(b))
	for _, c := range b {
		bSet[c] = true
	}
	clash := map[string]bool{}
	for _, c := range a {
		if bSet[c] {
			clash[c] = true
		}
	}
	return clash
}

// joinLHSKey is the merged-row key an ambiguous column of relation1 is
// stored under for condition evaluation. It deliberately has no '.' in it
// (unlike qualifyOverlap's "r1."-prefixed output-column names): resolveOperand
// strips everything up to the last '.' in an operand before looking it up,
// so a dotted internal key would be stripped right back down to the bare,
// ambiguous name it's meant to disambiguate.
func joinLHSKey(col string) string { return "r1_" + col }

// qualifiedRow builds relation1's side of a joined row for condition
// evaluation: columns also present in relation2 are stored under
// joinLHSKey, everything else keeps its bare name.
func qualifiedRow(columns []string, values []interface{}, clash map[string]bool) row {
	r := make(row, len(columns))
	for i, c := range columns {
		if i >= len(values) {
			continue
		}
		if clash[c] {
			r[joinLHSKey(c)] = values[i]
		} else {
			r[c] = values[i]
		}
	}
	return r
}

// qualifyJoinCondition rewrites cond so that an ambiguous (shared) bare
// column name on its LHS resolves to relation1's qualified key, the same
// way qualifyOverlap resolves output-column ambiguity — leaving RHS (and
// any already-qualified or literal operand) untouched, so it continues to
// resolve against relation2's bare key.
func qualifyJoinCondition(cond ddbsql.ConditionNode, clash map[string]bool) ddbsql.ConditionNode {
	switch c := cond.(type) {
	case nil:
		return nil
	case ddbsql.Condition:
		return ddbsql.Condition{LHS: qualifyJoinOperand(c.LHS, clash), Op: c.Op, RHS: c.RHS}
	case ddbsql.ConditionAnd:
		return ddbsql.ConditionAnd{Conditions: qualifyJoinConditions(c.Conditions, clash)}
	case ddbsql.ConditionOr:
		return ddbsql.ConditionOr{Conditions: qualifyJoinConditions(c.Conditions, clash)}
	default:
		return cond
	}
}

func qualifyJoinConditions(conds []ddbsql.ConditionNode, clash map[string]bool) []ddbsql.ConditionNode {
	out := make([]ddbsql.ConditionNode, len(conds))
	for i, c := range conds {
		out[i] = qualifyJoinCondition(c, clash)
	}
	return out
}

// qualifyJoinOperand rewrites operand to joinLHSKey(col) when it bare-names
// a column shared with relation2, leaving literals and unambiguous operands
// alone — so LHS always binds to relation1's side of an ambiguous column
// and RHS (left unrewritten) keeps resolving against relation2's bare key.
func qualifyJoinOperand(operand string, clash map[string]bool) string {
	if isLiteralOperand(operand) {
		return operand
	}
	col := plainName(operand)
	if clash[col] {
		return joinLHSKey(col)
	}
	return operand
}

func isLiteralOperand(operand string) bool {
	if len(operand) >= 2 && operand[0] == '\'' && operand[len(operand)-1] == '\'' {
		return true
	}
	_, err := cast.ToFloat64E(operand)
	return err == nil && looksNumeric(operand)
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}
