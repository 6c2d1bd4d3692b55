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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
)

func TestBuildSingleTableSelection(t *testing.T) {
	cat := catalog.Default()
	q, err := ddbsql.Resolve("SELECT id, username FROM user WHERE status = 'online'", cat)
	require.NoError(t, err)

	tree, err := Build(q)
	require.NoError(t, err)

	require.Equal(t, ProjectionKind, tree.Root.Kind)
	require.Equal(t, SelectionKind, tree.Root.Children[0].Kind)
	require.Equal(t, RelationKind, tree.Root.Children[0].Children[0].Kind)
}

func TestBuildEquiJoin(t *testing.T) {
	cat := catalog.Default()
	q, err := ddbsql.Resolve("SELECT u.id, m.content FROM user u INNER JOIN message m ON u.id = m.author", cat)
	require.NoError(t, err)

	tree, err := Build(q)
	require.NoError(t, err)

	require.Equal(t, ProjectionKind, tree.Root.Kind)
	join := tree.Root.Children[0]
	require.Equal(t, JoinKind, join.Kind)
	require.Len(t, join.Children, 2)
}

func TestBuildDistinctNodeIdentity(t *testing.T) {
	cat := catalog.Default()
	q, err := ddbsql.Resolve("SELECT id FROM user WHERE status = 'a' OR status = 'a'", cat)
	require.NoError(t, err)

	tree, err := Build(q)
	require.NoError(t, err)

	// "status = 'a' OR status = 'a'" collapses to a single top-level
	// child (the ConditionOr itself), so this asserts node identity is
	// per-construction rather than per-value elsewhere: every node in
	// the built tree must have a distinct ID.
	seen := map[int]bool{}
	var walk func(n *Node)
	walk = func(n *Node) {
		require.False(t, seen[n.ID], "duplicate node id %d", n.ID)
		seen[n.ID] = true
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree.Root)
}

func TestBuildDisconnectedRelationsError(t *testing.T) {
	cat := catalog.Default()
	q := &ddbsql.SelectQuery{
		Columns: []string{"user.id", "group.id"},
		Tables:  []string{"user", "group"},
	}
	_ = cat
	_, err := Build(q)
	require.Error(t, err)
}
