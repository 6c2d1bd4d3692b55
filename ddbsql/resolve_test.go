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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/catalog"
)

func TestResolveBareColumnSingleTable(t *testing.T) {
	cat := catalog.Default()
	q, err := Resolve("SELECT id, username FROM user WHERE status = 'online'", cat)
	require.NoError(t, err)
	require.Equal(t, []string{"user.id", "user.username"}, q.Columns)

	cond, ok := q.Where.Conditions[0].(Condition)
	require.True(t, ok)
	require.Equal(t, "user.status", cond.LHS)
	require.Equal(t, "'online'", cond.RHS)
}

func TestResolveStarExpansion(t *testing.T) {
	cat := catalog.Default()
	q, err := Resolve("SELECT * FROM group_member", cat)
	require.NoError(t, err)
	require.Equal(t, []string{"group_member.group", "group_member.user"}, q.Columns)
}

func TestResolveAliasedJoin(t *testing.T) {
	cat := catalog.Default()
	q, err := Resolve("SELECT u.id, m.content FROM user u INNER JOIN message m ON u.id = m.author", cat)
	require.NoError(t, err)
	require.Equal(t, []string{"user.id", "message.content"}, q.Columns)

	and := q.Where
	require.Len(t, and.Conditions, 1)
	cond, ok := and.Conditions[0].(Condition)
	require.True(t, ok)
	require.Equal(t, "user.id", cond.LHS)
	require.Equal(t, "message.author", cond.RHS)
}

func TestResolveUnknownColumnSuggestsSimilar(t *testing.T) {
	cat := catalog.Default()
	_, err := Resolve("SELECT usernam FROM user", cat)
	require.Error(t, err)
	require.Contains(t, err.Error(), "maybe you mean")
}

func TestResolveAmbiguousBareColumn(t *testing.T) {
	cat := catalog.Default()
	_, err := Resolve("SELECT id FROM user, `group`", cat)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ambiguous")
}

func TestResolveUnknownTable(t *testing.T) {
	cat := catalog.Default()
	_, err := Resolve("SELECT id FROM usr", cat)
	require.Error(t, err)
}
