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

package plan

import (
	"sort"

	"github.com/ddbms-chat/ddbsql/ddbsql"
)

// QueryTree is the output of Build: the DAG's root plus a lookup of every
// FROM table's original leaf Relation node (spec.md §4.2).
type QueryTree struct {
	Root      *Node
	Relations map[string]*Node
	ids       *idGen
}

// NextNodeID hands out the next stable identity for a node created outside
// Build (the optimizer package localizes leaves in place using the same
// counter, so ids stay unique across both phases of a single query).
func (t *QueryTree) NextNodeID() int { return t.ids.new() }

// Build implements spec.md §4.2's algorithm: one leaf Relation per FROM
// table, conditions applied lowest-arity-first as Selections or Joins, and
// a final Projection over the requested columns.
func Build(query *ddbsql.SelectQuery) (*QueryTree, error) {
	g := &idGen{}
	relations := make(map[string]*Node, len(query.Tables))
	for _, table := range query.Tables {
		relations[table] = newRelation(g, table)
	}

	conditions := query.TopLevelConditions()

	type ranked struct {
		cond ddbsql.ConditionNode
		refs []string
	}
	ranked1 := make([]ranked, len(conditions))
	for i, c := range conditions {
		ranked1[i] = ranked{cond: c, refs: ddbsql.RelationsOf(c, query.Tables)}
	}
	sort.SliceStable(ranked1, func(i, j int) bool {
		return len(ranked1[i].refs) < len(ranked1[j].refs)
	})

	for _, r := range ranked1 {
		if err := applyCondition(g, relations, r.cond, r.refs); err != nil {
			return nil, err
		}
	}

	root, err := singleRoot(relations)
	if err != nil {
		return nil, err
	}

	root = wrapProjection(g, query.Columns, root)

	return &QueryTree{Root: root, Relations: relations, ids: g}, nil
}

func applyCondition(g *idGen, relations map[string]*Node, cond ddbsql.ConditionNode, refs []string) error {
	for _, r := range refs {
		if _, ok := relations[r]; !ok {
			return ErrNoSuchRelation.New(r)
		}
	}

	if len(refs) == 1 {
		leaf := relations[refs[0]]
		wrapSelection(g, cond, head(leaf))
		return nil
	}

	heads := distinctHeads(relations, refs)

	if isBareEquality(cond) && len(heads) == 2 {
		newJoin(g, cond, heads[0], heads[1])
		return nil
	}
	if len(heads) == 1 {
		wrapSelection(g, cond, heads[0])
		return nil
	}

	joined := newJoin(g, nil, heads...)
	wrapSelection(g, cond, joined)
	return nil
}

// distinctHeads returns the de-duplicated, stably-ordered set of current
// heads for the relations named in refs.
func distinctHeads(relations map[string]*Node, refs []string) []*Node {
	seen := map[*Node]bool{}
	var heads []*Node
	for _, r := range refs {
		h := head(relations[r])
		if !seen[h] {
			seen[h] = true
			heads = append(heads, h)
		}
	}
	return heads
}

// isBareEquality reports whether cond is a single leaf Condition (not a
// combinator) using the equality operator.
func isBareEquality(cond ddbsql.ConditionNode) bool {
	c, ok := cond.(ddbsql.Condition)
	return ok && c.Op == "="
}

// singleRoot asserts every relation's head converges on one node, and
// returns it.
func singleRoot(relations map[string]*Node) (*Node, error) {
	seen := map[*Node]bool{}
	var names []string
	for name, leaf := range relations {
		seen[head(leaf)] = true
		names = append(names, name)
	}
	if len(seen) != 1 {
		return nil, ErrDisconnected.New(names)
	}
	for root := range seen {
		return root, nil
	}
	panic("unreachable")
}
