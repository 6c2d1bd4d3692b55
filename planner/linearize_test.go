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

package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/optimizer"
	"github.com/ddbms-chat/ddbsql/plan"
)

func TestLinearizeSingleFragmentQuery(t *testing.T) {
	cat := catalog.Default()
	q, err := ddbsql.Resolve("SELECT group_member.group FROM group_member", cat)
	require.NoError(t, err)
	tree, err := plan.Build(q)
	require.NoError(t, err)
	require.NoError(t, optimizer.Optimize(tree, cat))

	ops, final, err := Linearize(tree, q, "qtest")
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	require.True(t, strings.HasPrefix(final.Name, "qtest_"))

	for _, op := range ops {
		require.True(t, strings.HasPrefix(op.OutputName, "qtest_"))
	}
}

func TestLinearizeCrossSiteJoinEmitsFetch(t *testing.T) {
	cat := catalog.Default()
	// user_1 lives at site-a, message_3 at site-c: joining them across
	// sites must emit a fetch before the join.
	q, err := ddbsql.Resolve(
		"SELECT u.username, m.content FROM user u INNER JOIN message m ON u.id = m.author WHERE m.group = 3",
		cat)
	require.NoError(t, err)
	tree, err := plan.Build(q)
	require.NoError(t, err)
	require.NoError(t, optimizer.Optimize(tree, cat))

	ops, _, err := Linearize(tree, q, "qx")
	require.NoError(t, err)

	var sawFetch bool
	for _, op := range ops {
		if op.Verb == "fetch" {
			sawFetch = true
		}
	}
	require.True(t, sawFetch)
}

func TestQIDIsUniquePerCall(t *testing.T) {
	a := NewQID(1)
	b := NewQID(1)
	require.NotEqual(t, a, b)
}
