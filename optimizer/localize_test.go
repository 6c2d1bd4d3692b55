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

package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/plan"
)

func buildAndOptimize(t *testing.T, sql string) (*plan.QueryTree, *catalog.Catalog) {
	t.Helper()
	cat := catalog.Default()
	q, err := ddbsql.Resolve(sql, cat)
	require.NoError(t, err)
	tree, err := plan.Build(q)
	require.NoError(t, err)
	require.NoError(t, Optimize(tree, cat))
	return tree, cat
}

func TestLocalizeUnfragmentedTable(t *testing.T) {
	tree, _ := buildAndOptimize(t, "SELECT group_member.group FROM group_member")
	leaves := plan.Leaves(tree.Root)
	require.Len(t, leaves, 1)
	require.Equal(t, "group_member_1", leaves[0].RelationName)
	require.True(t, leaves[0].IsLocalized)
}

func TestLocalizeVerticalPrunesUnusedFragments(t *testing.T) {
	// Only touches "username" (user_1) and "id" (the primary key, in every
	// fragment): user_2 and user_3 contribute nothing beyond the pk and
	// must be pruned, leaving a single Relation leaf rather than a Join.
	tree, _ := buildAndOptimize(t, "SELECT id, username FROM user")
	leaves := plan.Leaves(tree.Root)
	require.Len(t, leaves, 1)
	require.Equal(t, "user_1", leaves[0].RelationName)
}

func TestLocalizeVerticalJoinsWhenMultipleFragmentsNeeded(t *testing.T) {
	tree, _ := buildAndOptimize(t, "SELECT username, phone FROM user")
	leaves := plan.Leaves(tree.Root)
	require.Len(t, leaves, 2)

	names := map[string]bool{}
	for _, l := range leaves {
		names[l.RelationName] = true
	}
	require.True(t, names["user_1"])
	require.True(t, names["user_3"])
}

func TestLocalizeHorizontalUnionsAllFragments(t *testing.T) {
	tree, _ := buildAndOptimize(t, "SELECT id, name FROM `group`")
	leaves := plan.Leaves(tree.Root)
	require.Len(t, leaves, 4)
}

func TestProjectionPushdownKeepsOnlyUsedColumns(t *testing.T) {
	tree, _ := buildAndOptimize(t, "SELECT username FROM user")
	leaf := plan.Leaves(tree.Root)[0]
	proj, ok := leaf.Parent, true
	require.True(t, ok)
	require.Equal(t, plan.ProjectionKind, proj.Kind)
	require.ElementsMatch(t, []string{"id", "username"}, proj.Columns)
}

func TestNoJoinNodeHasFewerThanTwoChildren(t *testing.T) {
	tree, _ := buildAndOptimize(t, "SELECT username, phone FROM user")
	plan.Walk(tree.Root, func(n *plan.Node) {
		if n.Kind == plan.JoinKind {
			require.GreaterOrEqual(t, len(n.Children), 2)
		}
	})
}
