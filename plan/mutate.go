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

import "github.com/ddbms-chat/ddbsql/ddbsql"

// The optimizer package rewrites a QueryTree built by Build in place:
// localizing logical relation leaves into fragment subtrees, pushing
// projections down, and collapsing dead Join branches. These
// exported constructors and structural edits let it do so without
// reaching into Node's fields by hand everywhere.

// NewLocalizedRelation creates a detached leaf Relation at site, already
// marked localized (the optimizer's replacement for a logical relation leaf).
func (t *QueryTree) NewLocalizedRelation(name string, site int) *Node {
	n := newRelation(t.ids, name)
	n.IsLocalized = true
	n.Site = site
	return n
}

// NewSelection wraps child with a new Selection(cond) node.
func (t *QueryTree) NewSelection(cond ddbsql.ConditionNode, child *Node) *Node {
	return wrapSelection(t.ids, cond, child)
}

// NewProjection wraps child with a new Projection(columns) node.
func (t *QueryTree) NewProjection(columns []string, child *Node) *Node {
	return wrapProjection(t.ids, columns, child)
}

// NewJoin builds a left-deep Join tree over children (cond on the final,
// top-most Join only — nil for a Cartesian product).
func (t *QueryTree) NewJoin(cond ddbsql.ConditionNode, children ...*Node) *Node {
	return newJoin(t.ids, cond, children...)
}

// NewUniformJoin builds a left-deep Join tree over children, applying cond
// at every level (used to localize a vertical fragment's Join-on-primary-key
// chain, where each level joins on the same key).
func (t *QueryTree) NewUniformJoin(cond ddbsql.ConditionNode, children ...*Node) *Node {
	return newJoinUniform(t.ids, cond, children...)
}

// WrapWithProjection inserts a new Projection(columns) node directly above
// leaf, preserving leaf's existing parent edge (projection push-down:
// spec.md §4.3 inserts a Projection between a localized fragment leaf and
// whatever Join/Union it already participates in).
func (t *QueryTree) WrapWithProjection(leaf *Node, columns []string) *Node {
	proj := t.ids.newNode(ProjectionKind)
	proj.Columns = columns

	parent := leaf.Parent
	if parent == nil {
		t.Root = proj
	} else {
		for i, c := range parent.Children {
			if c == leaf {
				parent.Children[i] = proj
				break
			}
		}
		proj.Parent = parent
	}
	proj.Children = []*Node{leaf}
	leaf.Parent = proj
	return proj
}

// NewUnion builds a left-deep Union tree over children.
func (t *QueryTree) NewUnion(children ...*Node) *Node {
	return newUnion(t.ids, children...)
}

// Replace swaps old for replacement in old's parent's child list (or, if
// old was the tree root, updates t.Root). replacement's Parent is set to
// old's former parent; old is left detached.
func (t *QueryTree) Replace(old, replacement *Node) {
	parent := old.Parent
	if parent == nil {
		replacement.Parent = nil
		t.Root = replacement
		return
	}
	for i, c := range parent.Children {
		if c == old {
			parent.Children[i] = replacement
			break
		}
	}
	replacement.Parent = parent
	old.Parent = nil
}

// RemoveChild detaches child from parent's child list and clears child's
// parent edge.
func RemoveChild(parent, child *Node) {
	out := parent.Children[:0]
	for _, c := range parent.Children {
		if c != child {
			out = append(out, c)
		}
	}
	parent.Children = out
	child.Parent = nil
}

// PromoteOnlyChild collapses a Join/Union node with exactly one remaining
// child: the child takes the node's place in the tree.
func (t *QueryTree) PromoteOnlyChild(n *Node) {
	if len(n.Children) != 1 {
		panic("plan: PromoteOnlyChild requires exactly one child")
	}
	t.Replace(n, n.Children[0])
}

// Walk visits every node reachable from root, post-order (children before
// parent), exactly once per node even if it is reachable via more than one
// path.
func Walk(root *Node, visit func(*Node)) {
	seen := map[*Node]bool{}
	var walk func(*Node)
	walk = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, c := range n.Children {
			walk(c)
		}
		visit(n)
	}
	walk(root)
}

// Leaves returns every Relation-kind node reachable from root.
func Leaves(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) {
		if n.Kind == RelationKind {
			out = append(out, n)
		}
	})
	return out
}
