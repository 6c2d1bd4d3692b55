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

package txn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/siteengine"
)

func TestApplyUpdateMutatesMatchingRows(t *testing.T) {
	s := siteengine.NewStore()
	s.Seed("user_2", []string{"id", "name", "status"}, [][]interface{}{
		{"1", "ann", "active"},
		{"2", "bo", "inactive"},
	})

	err := applyUpdate(s, "user_2", "UPDATE user_2 SET status = 'retired' WHERE id = 1")
	require.NoError(t, err)

	out, err := s.Get("user_2")
	require.NoError(t, err)
	require.Equal(t, "retired", out.Rows[0][2])
	require.Equal(t, "inactive", out.Rows[1][2])
}

func TestApplyUpdateUnknownColumnErrors(t *testing.T) {
	s := siteengine.NewStore()
	s.Seed("user_2", []string{"id", "status"}, [][]interface{}{{"1", "active"}})

	err := applyUpdate(s, "user_2", "UPDATE user_2 SET nope = 'x' WHERE id = 1")
	require.Error(t, err)
}

func TestParseUpdateAndClauses(t *testing.T) {
	assignments, cond, err := parseUpdate("UPDATE t SET a = 1, b = 'x' WHERE a = 1 AND b = '2'", "t")
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, "a", assignments[0].column)
	require.Equal(t, "1", assignments[0].value)
	require.NotNil(t, cond)
}
