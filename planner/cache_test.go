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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/optimizer"
	"github.com/ddbms-chat/ddbsql/plan"
)

func TestCacheMissThenHit(t *testing.T) {
	c := NewCache()
	key, err := Key("SELECT group_member.group FROM group_member")
	require.NoError(t, err)

	_, _, ok := c.Get(key)
	require.False(t, ok)

	cat := catalog.Default()
	q, err := ddbsql.Resolve("SELECT group_member.group FROM group_member", cat)
	require.NoError(t, err)
	tree, err := plan.Build(q)
	require.NoError(t, err)
	require.NoError(t, optimizer.Optimize(tree, cat))

	c.Put(key, q, tree)

	cachedQuery, cachedTree, ok := c.Get(key)
	require.True(t, ok)
	require.Same(t, q, cachedQuery)
	require.Same(t, tree, cachedTree)
}

func TestCacheKeyDiffersOnWhitespace(t *testing.T) {
	a, err := Key("SELECT group_member.group FROM group_member")
	require.NoError(t, err)
	b, err := Key("SELECT  group_member.group  FROM  group_member")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "Key hashes the literal text, so whitespace differences miss the cache")
}

func TestCacheKeySameTextSameKey(t *testing.T) {
	a, err := Key("SELECT group_member.group FROM group_member")
	require.NoError(t, err)
	b, err := Key("SELECT group_member.group FROM group_member")
	require.NoError(t, err)
	require.Equal(t, a, b)
}
