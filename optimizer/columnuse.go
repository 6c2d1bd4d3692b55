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

// Package optimizer localizes a logical query tree built by the plan
// package against the catalog's fragmentation, pushing projections down to
// each fragment and cleaning up dead Join branches afterward (spec.md §4.3).
package optimizer

import (
	"strings"

	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/plan"
)

// columnUse collects, per logical table, the set of its own columns
// referenced by any Selection, Join, or Projection in the tree: the
// "walk upward from the leaf" analysis of spec.md §4.3, computed in a
// single downward pass instead since every reference is globally visible.
func columnUse(root *plan.Node) map[string]map[string]bool {
	use := map[string]map[string]bool{}
	add := func(ref string) {
		table, col, ok := splitTableColumn(ref)
		if !ok {
			return
		}
		if use[table] == nil {
			use[table] = map[string]bool{}
		}
		use[table][col] = true
	}

	plan.Walk(root, func(n *plan.Node) {
		switch n.Kind {
		case plan.SelectionKind, plan.JoinKind:
			if n.Condition != nil {
				addConditionColumns(n.Condition, add)
			}
		case plan.ProjectionKind:
			for _, c := range n.Columns {
				add(c)
			}
		}
	})

	return use
}

// splitTableColumn extracts "table", "col" from "table.col" or
// "f(table.col)"; literals (quoted strings, numbers) and bare names report ok=false.
func splitTableColumn(ref string) (table, col string, ok bool) {
	if open := strings.IndexByte(ref, '('); open >= 0 && strings.HasSuffix(ref, ")") {
		ref = ref[open+1 : len(ref)-1]
	}
	if strings.HasPrefix(ref, "'") || (ref != "" && (ref[0] == '-' || (ref[0] >= '0' && ref[0] <= '9'))) {
		return "", "", false
	}
	dot := strings.IndexByte(ref, '.')
	if dot < 0 {
		return "", "", false
	}
	return ref[:dot], ref[dot+1:], true
}

func addConditionColumns(node ddbsql.ConditionNode, add func(string)) {
	switch n := node.(type) {
	case ddbsql.Condition:
		add(n.LHS)
		add(n.RHS)
	case ddbsql.ConditionAnd:
		for _, c := range n.Conditions {
			addConditionColumns(c, add)
		}
	case ddbsql.ConditionOr:
		for _, c := range n.Conditions {
			addConditionColumns(c, add)
		}
	}
}
