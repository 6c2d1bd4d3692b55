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
	"sort"
	"strings"
)

// Condition is a leaf comparison "lhs op rhs", both sides already resolved
// to "table.column" form (or, for an aggregate, the literal string
// "f(table.col)"), or a literal on the rhs.
type Condition struct {
	LHS string
	Op  string
	RHS string
}

func (c Condition) String() string {
	return fmt.Sprintf("(%s %s %s)", c.LHS, c.Op, c.RHS)
}

// ConditionNode is the closed sum type {Condition, ConditionAnd, ConditionOr}.
// Dispatch is by type switch, not inheritance (Design Notes §9).
type ConditionNode interface {
	conditionNode()
	String() string
}

func (Condition) conditionNode() {}

// ConditionAnd is an n-ary, normalized conjunction.
type ConditionAnd struct {
	Conditions []ConditionNode
}

func (ConditionAnd) conditionNode() {}

func (c ConditionAnd) String() string {
	parts := make([]string, len(c.Conditions))
	for i, child := range c.Conditions {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, " && ") + ")"
}

// ConditionOr is an n-ary, normalized disjunction.
type ConditionOr struct {
	Conditions []ConditionNode
}

func (ConditionOr) conditionNode() {}

func (c ConditionOr) String() string {
	parts := make([]string, len(c.Conditions))
	for i, child := range c.Conditions {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, " || ") + ")"
}

// Normalize collapses same-kind nesting: And(And(a,b),c) -> And(a,b,c), and
// likewise for Or. This is Testable Property #2 in spec.md §8: one pass is
// a fixed point, no ConditionAnd/ConditionOr directly contains a node of
// its own kind afterward.
func Normalize(node ConditionNode) ConditionNode {
	switch n := node.(type) {
	case Condition:
		return n
	case ConditionAnd:
		return ConditionAnd{Conditions: flatten[ConditionAnd](n.Conditions)}
	case ConditionOr:
		return ConditionOr{Conditions: flatten[ConditionOr](n.Conditions)}
	default:
		return node
	}
}

// flatten normalizes every child, then splices in any child of type K in
// place of itself.
func flatten[K ConditionAnd | ConditionOr](children []ConditionNode) []ConditionNode {
	var out []ConditionNode
	for _, child := range children {
		normalized := Normalize(child)
		if same, ok := normalized.(K); ok {
			out = append(out, sameConditions(same)...)
			continue
		}
		out = append(out, normalized)
	}
	return out
}

func sameConditions[K ConditionAnd | ConditionOr](k K) []ConditionNode {
	switch v := any(k).(type) {
	case ConditionAnd:
		return v.Conditions
	case ConditionOr:
		return v.Conditions
	}
	return nil
}

// SelectQuery is the resolved, internal form of a restricted SELECT.
type SelectQuery struct {
	Columns  []string // "table.column", or "f(table.column)" for aggregates
	Tables   []string
	Where    *ConditionAnd // top-level WHERE is always wrapped, even for a single condition
	GroupBy  []string
	Having   *ConditionAnd
	Limit    *int
}

// UpdateStatement is the unrewritten shape handed to the 2PC coordinator
// (spec.md §4.1: UPDATE is processed only by 2PC, never rewritten into a
// query tree).
type UpdateStatement struct {
	Table string
	SQL   string // the full, original UPDATE statement text
}

// TopLevelConditions returns the direct children of the top-level
// ConditionAnd, or a single-element slice if Where is a bare Condition
// (the wrapper always exists, but with exactly one child in that case).
func (q *SelectQuery) TopLevelConditions() []ConditionNode {
	if q.Where == nil {
		return nil
	}
	return q.Where.Conditions
}

// RelationsOf returns the sorted, de-duplicated set of "table" names
// referenced by a condition's resolved "table.column" operands.
func RelationsOf(node ConditionNode, tables []string) []string {
	set := map[string]bool{}
	collectRelations(node, tables, set)

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func collectRelations(node ConditionNode, tables []string, set map[string]bool) {
	switch n := node.(type) {
	case Condition:
		for _, t := range tables {
			if strings.HasPrefix(n.LHS, t+".") {
				set[t] = true
			}
			if strings.HasPrefix(n.RHS, t+".") {
				set[t] = true
			}
		}
	case ConditionAnd:
		for _, c := range n.Conditions {
			collectRelations(c, tables, set)
		}
	case ConditionOr:
		for _, c := range n.Conditions {
			collectRelations(c, tables, set)
		}
	}
}
