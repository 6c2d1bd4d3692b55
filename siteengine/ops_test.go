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

package siteengine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/ddbsql"
)

func seeded() *Store {
	s := NewStore()
	s.Seed("user_2", []string{"id", "name", "status"}, [][]interface{}{
		{"1", "ann", "active"},
		{"2", "bo", "inactive"},
		{"3", "cy", "active"},
	})
	s.Seed("group_1", []string{"id", "owner_id"}, [][]interface{}{
		{"10", "1"},
		{"11", "2"},
	})
	return s
}

func TestSelectFiltersRows(t *testing.T) {
	s := seeded()
	cond := ddbsql.Condition{LHS: "status", Op: "=", RHS: "'active'"}
	require.NoError(t, s.Select("user_2", cond, "q1_1-user_2"))

	out, err := s.Get("q1_1-user_2")
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
}

func TestProjectKeepsOnlyRequestedColumns(t *testing.T) {
	s := seeded()
	require.NoError(t, s.Project("user_2", []string{"name"}, nil, nil, "q1_2-user_2"))

	out, err := s.Get("q1_2-user_2")
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, out.Columns)
	require.Len(t, out.Rows, 3)
	require.Equal(t, "ann", out.Rows[0][0])
}

func TestJoinMatchesOnCondition(t *testing.T) {
	s := seeded()
	cond := ddbsql.Condition{LHS: "id", Op: "=", RHS: "owner_id"}
	require.NoError(t, s.Join("user_2", "group_1", cond, "q1_3-user_2-group_1"))

	out, err := s.Get("q1_3-user_2-group_1")
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
}

func TestJoinQualifiesOverlappingColumns(t *testing.T) {
	s := NewStore()
	s.Seed("a", []string{"id", "x"}, [][]interface{}{{"1", "foo"}})
	s.Seed("b", []string{"id", "y"}, [][]interface{}{{"1", "bar"}})

	cond := ddbsql.Condition{LHS: "id", Op: "=", RHS: "id"}
	require.NoError(t, s.Join("a", "b", cond, "joined"))

	out, err := s.Get("joined")
	require.NoError(t, err)
	require.Equal(t, []string{"r1.id", "x", "id", "y"}, out.Columns)
}

func TestJoinOnSharedColumnNameExcludesNonMatchingRows(t *testing.T) {
	s := NewStore()
	s.Seed("p", []string{"id", "val"}, [][]interface{}{
		{"1", "p1"},
		{"2", "p2"},
		{"3", "p3"},
	})
	s.Seed("q", []string{"id", "val2"}, [][]interface{}{
		{"2", "q2"},
		{"3", "q3"},
		{"4", "q4"},
	})

	cond := ddbsql.Condition{LHS: "id", Op: "=", RHS: "id"}
	require.NoError(t, s.Join("p", "q", cond, "pq"))

	out, err := s.Get("pq")
	require.NoError(t, err)
	require.Equal(t, []string{"r1.id", "val", "id", "val2"}, out.Columns)
	require.Len(t, out.Rows, 2)

	matched := map[string]bool{}
	for _, row := range out.Rows {
		matched[row[0].(string)+"/"+row[2].(string)] = true
		require.Equal(t, row[0], row[2], "joined rows must have equal ids, not an unconstrained product")
	}
	require.True(t, matched["2/2"])
	require.True(t, matched["3/3"])
}

func TestUnionDeduplicatesRows(t *testing.T) {
	s := NewStore()
	s.Seed("g1", []string{"id"}, [][]interface{}{{"1"}, {"2"}})
	s.Seed("g2", []string{"id"}, [][]interface{}{{"2"}, {"3"}})

	require.NoError(t, s.Union("g1", "g2", "u"))

	out, err := s.Get("u")
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)
}

func TestRenameCopiesUnderNewName(t *testing.T) {
	s := seeded()
	require.NoError(t, s.Rename("user_2", "q1-result"))

	out, err := s.Get("q1-result")
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)
}

func TestProjectGroupedAggregates(t *testing.T) {
	s := seeded()
	require.NoError(t, s.Project("user_2", []string{"status", "COUNT(id)"}, []string{"status"}, nil, "g"))

	out, err := s.Get("g")
	require.NoError(t, err)
	require.Equal(t, []string{"status", "COUNT(id)"}, out.Columns)
	require.Len(t, out.Rows, 2)

	totals := map[string]interface{}{}
	for _, row := range out.Rows {
		totals[row[0].(string)] = row[1]
	}
	require.Equal(t, 2, totals["active"])
	require.Equal(t, 1, totals["inactive"])
}

func TestProjectGroupedWithHavingFiltersGroups(t *testing.T) {
	s := seeded()
	having := ddbsql.Condition{LHS: "COUNT(id)", Op: ">", RHS: "1"}
	require.NoError(t, s.Project("user_2", []string{"status", "COUNT(id)"}, []string{"status"}, having, "g"))

	out, err := s.Get("g")
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	require.Equal(t, "active", out.Rows[0][0])
}

func TestGetUnknownRelationErrors(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	require.True(t, ErrNoSuchRelation.Is(err))
}
