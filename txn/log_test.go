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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventLogAppendsInOrder(t *testing.T) {
	l, err := OpenCoordinatorLog(filepath.Join(t.TempDir(), "coord.db"))
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Append("tx1", "begin_commit"))
	require.NoError(t, l.Append("tx1", "vote-commit"))
	require.NoError(t, l.Append("tx1", "commit"))
	require.NoError(t, l.Append("tx1", "end_of_transaction"))
	require.NoError(t, l.Append("tx2", "begin_commit"))

	events, err := l.Events("tx1")
	require.NoError(t, err)
	require.Equal(t, []string{
		"tx1: begin_commit",
		"tx1: vote-commit",
		"tx1: commit",
		"tx1: end_of_transaction",
	}, events)
}

func TestRewriteTableIdentifierSwapsOnlyTableName(t *testing.T) {
	got := rewriteTableIdentifier("UPDATE user SET status = 'x' WHERE id = 1", "user", "user_2")
	require.Equal(t, "UPDATE user_2 SET status = 'x' WHERE id = 1", got)
}

func TestNewTxIDIsUnique(t *testing.T) {
	a := NewTxID()
	b := NewTxID()
	require.NotEqual(t, a, b)
	require.Len(t, a, 16)
}
