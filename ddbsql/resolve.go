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

package ddbsql

import (
	"fmt"
	"strings"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/internal/similartext"
)

// scope carries the FROM-clause alias map and catalog needed to resolve
// bare or alias-qualified column references to "table.column" form.
type scope struct {
	cat     *catalog.Catalog
	tables  []rawTableRef // alias -> logical table name, in FROM order
	byAlias map[string]string
}

func newScope(cat *catalog.Catalog, tables []rawTableRef) (*scope, error) {
	byAlias := make(map[string]string, len(tables))
	for _, t := range tables {
		if _, err := cat.TableByName(t.Name); err != nil {
			return nil, ErrResolve.New(suggestTable(cat, t.Name))
		}
		byAlias[t.Alias] = t.Name
	}
	return &scope{cat: cat, tables: tables, byAlias: byAlias}, nil
}

func suggestTable(cat *catalog.Catalog, name string) string {
	msg := fmt.Sprintf("unknown table %q", name)
	if hint := similartext.Find(cat.TableNames(), name); hint != "" {
		msg += hint
	}
	return msg
}

// tableNames returns the logical table names in FROM order (aliases resolved).
func (s *scope) tableNames() []string {
	names := make([]string, 0, len(s.tables))
	for _, t := range s.tables {
		names = append(names, t.Name)
	}
	return names
}

// resolveOperand resolves a possibly-aliased, possibly-bare reference
// ("alias.col" or "col", optionally inside an aggregate "f(...)") to
// canonical "table.column" form. A bare name is resolved by searching every
// FROM table for a matching column; it is an error if none or more than one
// table has it.
func (s *scope) resolveOperand(ref string) (string, error) {
	if strings.HasPrefix(ref, "'") || isNumericLiteral(ref) {
		return ref, nil
	}

	if open := strings.IndexByte(ref, '('); open >= 0 && strings.HasSuffix(ref, ")") {
		inner, err := s.resolveOperand(ref[open+1 : len(ref)-1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", ref[:open], inner), nil
	}

	if dot := strings.IndexByte(ref, '.'); dot >= 0 {
		aliasOrTable, col := ref[:dot], ref[dot+1:]
		table, ok := s.byAlias[aliasOrTable]
		if !ok {
			return "", ErrResolve.New(fmt.Sprintf("unknown table or alias %q", aliasOrTable))
		}
		if err := s.checkColumnExists(table, col); err != nil {
			return "", err
		}
		return table + "." + col, nil
	}

	return s.resolveBareColumn(ref)
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

func (s *scope) checkColumnExists(table, col string) error {
	t, err := s.cat.TableByName(table)
	if err != nil {
		return ErrResolve.New(err.Error())
	}
	for _, c := range s.cat.ColumnsOf(t.ID) {
		if c.Name == col {
			return nil
		}
	}
	msg := fmt.Sprintf("unknown column %q on table %q", col, table)
	if hint := similartext.Find(s.cat.ColumnNamesOf(t.ID), col); hint != "" {
		msg += hint
	}
	return ErrResolve.New(msg)
}

func (s *scope) resolveBareColumn(col string) (string, error) {
	var owners []string
	for _, tableName := range s.tableNames() {
		t, err := s.cat.TableByName(tableName)
		if err != nil {
			continue
		}
		for _, c := range s.cat.ColumnsOf(t.ID) {
			if c.Name == col {
				owners = append(owners, tableName)
				break
			}
		}
	}

	switch len(owners) {
	case 0:
		var all []string
		for _, tableName := range s.tableNames() {
			t, _ := s.cat.TableByName(tableName)
			all = append(all, s.cat.ColumnNamesOf(t.ID)...)
		}
		msg := fmt.Sprintf("unknown column %q", col)
		if hint := similartext.Find(all, col); hint != "" {
			msg += hint
		}
		return "", ErrResolve.New(msg)
	case 1:
		return owners[0] + "." + col, nil
	default:
		return "", ErrResolve.New(fmt.Sprintf("column %q is ambiguous between tables %s", col, strings.Join(owners, ", ")))
	}
}

// resolveColumnRef resolves a SELECT-list entry, including the "f(col)"
// aggregate-of-single-column shape, and the bare "*" wildcard (expanded to
// every column of every FROM table, in FROM then catalog order).
func (s *scope) resolveColumnRef(ref string) ([]string, error) {
	if ref == "*" {
		var all []string
		for _, tableName := range s.tableNames() {
			t, err := s.cat.TableByName(tableName)
			if err != nil {
				return nil, err
			}
			for _, c := range s.cat.ColumnsOf(t.ID) {
				all = append(all, tableName+"."+c.Name)
			}
		}
		return all, nil
	}

	if open := strings.IndexByte(ref, '('); open >= 0 && strings.HasSuffix(ref, ")") {
		fn := ref[:open]
		inner := ref[open+1 : len(ref)-1]
		resolved, err := s.resolveOperand(inner)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%s(%s)", fn, resolved)}, nil
	}

	resolved, err := s.resolveOperand(ref)
	if err != nil {
		return nil, err
	}
	return []string{resolved}, nil
}

// resolveCondition resolves every operand of a condition tree against scope.
func (s *scope) resolveCondition(node ConditionNode) (ConditionNode, error) {
	switch n := node.(type) {
	case Condition:
		lhs, err := s.resolveOperand(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := s.resolveOperand(n.RHS)
		if err != nil {
			return nil, err
		}
		return Condition{LHS: lhs, Op: n.Op, RHS: rhs}, nil
	case ConditionAnd:
		children, err := s.resolveChildren(n.Conditions)
		if err != nil {
			return nil, err
		}
		return ConditionAnd{Conditions: children}, nil
	case ConditionOr:
		children, err := s.resolveChildren(n.Conditions)
		if err != nil {
			return nil, err
		}
		return ConditionOr{Conditions: children}, nil
	default:
		return nil, ErrResolve.New("unrecognized condition node")
	}
}

func (s *scope) resolveChildren(nodes []ConditionNode) ([]ConditionNode, error) {
	out := make([]ConditionNode, len(nodes))
	for i, n := range nodes {
		r, err := s.resolveCondition(n)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Resolve parses a restricted SELECT statement and resolves every column
// reference against cat, expanding "*" and flattening any JOIN...ON clause
// into the WHERE tree (spec.md §4.1).
func Resolve(sql string, cat *catalog.Catalog) (*SelectQuery, error) {
	raw, err := ParseSelect(sql)
	if err != nil {
		return nil, err
	}

	sc, err := newScope(cat, raw.Tables)
	if err != nil {
		return nil, err
	}

	var columns []string
	for _, ref := range raw.Columns {
		resolved, err := sc.resolveColumnRef(ref)
		if err != nil {
			return nil, err
		}
		columns = append(columns, resolved...)
	}

	q := &SelectQuery{
		Columns: columns,
		Tables:  sc.tableNames(),
		Limit:   raw.Limit,
	}

	if raw.Where != nil {
		resolved, err := sc.resolveCondition(raw.Where)
		if err != nil {
			return nil, err
		}
		q.Where = wrapAsConditionAnd(Normalize(resolved))
	}

	if raw.Having != nil {
		resolved, err := sc.resolveCondition(raw.Having)
		if err != nil {
			return nil, err
		}
		q.Having = wrapAsConditionAnd(Normalize(resolved))
	}

	for _, g := range raw.GroupBy {
		resolved, err := sc.resolveOperand(g)
		if err != nil {
			return nil, err
		}
		q.GroupBy = append(q.GroupBy, resolved)
	}

	return q, nil
}

// wrapAsConditionAnd ensures the top-level WHERE/HAVING is always a
// ConditionAnd, even when it logically holds a single bare Condition or a
// single ConditionOr (spec.md §4.2: "top-level returned as ConditionAnd
// wrapper").
func wrapAsConditionAnd(node ConditionNode) *ConditionAnd {
	if and, ok := node.(ConditionAnd); ok {
		return &and
	}
	return &ConditionAnd{Conditions: []ConditionNode{node}}
}
