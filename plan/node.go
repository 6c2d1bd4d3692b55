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

// Package plan builds the logical algebra DAG {Relation, Selection,
// Projection, Join, Union} out of a resolved ddbsql.SelectQuery
// (spec.md §4.2), and is later mutated in place by the optimizer package
// during localization.
package plan

import (
	"fmt"

	"github.com/ddbms-chat/ddbsql/ddbsql"
)

// Kind tags which variant a Node is. Dispatch throughout this package and
// the optimizer/planner packages is by switching on Kind rather than by
// Go-interface polymorphism, since every variant shares the same
// parent/children structural fields.
type Kind int

const (
	RelationKind Kind = iota
	SelectionKind
	ProjectionKind
	JoinKind
	UnionKind
)

func (k Kind) String() string {
	switch k {
	case RelationKind:
		return "Relation"
	case SelectionKind:
		return "Selection"
	case ProjectionKind:
		return "Projection"
	case JoinKind:
		return "Join"
	case UnionKind:
		return "Union"
	default:
		return "Unknown"
	}
}

// Node is one vertex of the query-tree DAG. Every Node carries an ID
// assigned at creation time, giving it stable identity independent of its
// field values: two Selection nodes built from identical conditions remain
// distinct nodes (spec.md's Query tree entity definition).
type Node struct {
	ID   int
	Kind Kind

	// Relation fields.
	RelationName string
	IsLocalized  bool
	Site         int

	// Selection field; also used as the Join condition when non-nil
	// (nil Join.Condition means a Cartesian product).
	Condition ddbsql.ConditionNode

	// Projection field.
	Columns []string

	Parent   *Node
	Children []*Node
}

func (n *Node) String() string {
	switch n.Kind {
	case RelationKind:
		return fmt.Sprintf("Relation(%s)", n.RelationName)
	case SelectionKind:
		return fmt.Sprintf("Selection(%s)", n.Condition)
	case ProjectionKind:
		return fmt.Sprintf("Projection(%v)", n.Columns)
	case JoinKind:
		if n.Condition == nil {
			return "Join(x)"
		}
		return fmt.Sprintf("Join(%s)", n.Condition)
	case UnionKind:
		return "Union"
	default:
		return "?"
	}
}

// idGen hands out stable, strictly increasing node identities within one
// QueryTree build (never across trees: Date.now()/rand are off-limits, and
// a per-tree counter is exactly as unique as this package needs).
type idGen struct{ next int }

func (g *idGen) new() int {
	g.next++
	return g.next
}

func (g *idGen) newNode(kind Kind) *Node {
	return &Node{ID: g.new(), Kind: kind}
}

// head follows n's parent chain to the node with no parent: the current
// "top" of whatever has been built on top of a given leaf so far.
func head(n *Node) *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// setParent records the structural edge parent -> child in both directions.
func setParent(parent, child *Node) {
	parent.Children = append(parent.Children, child)
	child.Parent = parent
}

// newRelation creates a detached leaf Relation node, not yet localized.
func newRelation(g *idGen, name string) *Node {
	n := g.newNode(RelationKind)
	n.RelationName = name
	return n
}

// wrapSelection creates a new Selection(cond) node as child's new parent,
// replacing child as the current head.
func wrapSelection(g *idGen, cond ddbsql.ConditionNode, child *Node) *Node {
	n := g.newNode(SelectionKind)
	n.Condition = cond
	setParent(n, child)
	return n
}

// wrapProjection creates a new Projection(columns) node as child's new parent.
func wrapProjection(g *idGen, columns []string, child *Node) *Node {
	n := g.newNode(ProjectionKind)
	n.Columns = columns
	setParent(n, child)
	return n
}

// newJoin creates a Join node (cond may be nil for a Cartesian product)
// over two or more children, left-deep if more than two are supplied.
func newJoin(g *idGen, cond ddbsql.ConditionNode, children ...*Node) *Node {
	if len(children) < 2 {
		panic("plan: Join requires at least two children")
	}
	acc := children[0]
	for i := 1; i < len(children); i++ {
		n := g.newNode(JoinKind)
		if i == len(children)-1 {
			n.Condition = cond
		}
		setParent(n, acc)
		setParent(n, children[i])
		acc = n
	}
	return acc
}

// newJoinUniform creates a left-deep Join tree over two or more children,
// applying the same condition (e.g. a primary-key equality) at every level
// rather than only the topmost one.
func newJoinUniform(g *idGen, cond ddbsql.ConditionNode, children ...*Node) *Node {
	if len(children) < 2 {
		panic("plan: Join requires at least two children")
	}
	acc := children[0]
	for i := 1; i < len(children); i++ {
		n := g.newNode(JoinKind)
		n.Condition = cond
		setParent(n, acc)
		setParent(n, children[i])
		acc = n
	}
	return acc
}

// newUnion creates a left-deep Union tree over two or more children.
func newUnion(g *idGen, children ...*Node) *Node {
	if len(children) < 2 {
		panic("plan: Union requires at least two children")
	}
	acc := children[0]
	for i := 1; i < len(children); i++ {
		n := g.newNode(UnionKind)
		setParent(n, acc)
		setParent(n, children[i])
		acc = n
	}
	return acc
}
