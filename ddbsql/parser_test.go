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
)

func TestParseSelectStar(t *testing.T) {
	q, err := ParseSelect("SELECT * FROM user")
	require.NoError(t, err)
	require.Equal(t, []string{"*"}, q.Columns)
	require.Equal(t, "user", q.Tables[0].Name)
	require.Equal(t, "user", q.Tables[0].Alias)
}

func TestParseSelectWithAliasAndWhere(t *testing.T) {
	q, err := ParseSelect("SELECT u.id, u.name FROM user AS u WHERE u.id = 1 AND u.name = 'bob'")
	require.NoError(t, err)
	require.Equal(t, []string{"u.id", "u.name"}, q.Columns)
	require.Equal(t, "u", q.Tables[0].Alias)

	and, ok := q.Where.(ConditionAnd)
	require.True(t, ok)
	require.Len(t, and.Conditions, 2)
}

func TestParseJoinOnFlattenedIntoWhere(t *testing.T) {
	q, err := ParseSelect("SELECT u.id FROM user u INNER JOIN group_member gm ON u.id = gm.user WHERE gm.group_id = 1")
	require.NoError(t, err)
	require.Len(t, q.Tables, 2)

	and, ok := q.Where.(ConditionAnd)
	require.True(t, ok)
	require.Len(t, and.Conditions, 2)
}

func TestParseGroupByHavingLimit(t *testing.T) {
	q, err := ParseSelect("SELECT g.id, avg(g.size) FROM `group` g GROUP BY g.id HAVING avg(g.size) > 3 LIMIT 10")
	require.NoError(t, err)
	require.Equal(t, []string{"g.id", "avg(g.size)"}, q.Columns)
	require.Equal(t, []string{"g.id"}, q.GroupBy)
	require.NotNil(t, q.Having)
	require.NotNil(t, q.Limit)
	require.Equal(t, 10, *q.Limit)
}

func TestParseLimitRejectsNonInteger(t *testing.T) {
	_, err := ParseSelect("SELECT * FROM user LIMIT 'x'")
	require.Error(t, err)
}

func TestParseTrailingGarbage(t *testing.T) {
	_, err := ParseSelect("SELECT * FROM user foo bar")
	require.Error(t, err)
}

func TestParseUpdateUnrewritten(t *testing.T) {
	stmt, err := ParseUpdate("UPDATE user SET name = 'bob' WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, "user", stmt.Table)
	require.Equal(t, "UPDATE user SET name = 'bob' WHERE id = 1", stmt.SQL)
}
