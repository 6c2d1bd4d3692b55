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

	"github.com/ddbms-chat/ddbsql/siteengine"
)

func newTestParticipant(t *testing.T) (*Participant, *siteengine.Store) {
	t.Helper()
	store := siteengine.NewStore()
	store.Seed("user_2", []string{"id", "status"}, [][]interface{}{
		{"1", "active"},
		{"2", "active"},
	})
	p, err := NewParticipant(store, filepath.Join(t.TempDir(), "participant.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, store
}

func TestPrepareVotesCommitAndStagesShadow(t *testing.T) {
	p, store := newTestParticipant(t)

	ok, reason := p.Prepare("tx1", "user_2", "UPDATE user_2 SET status = 'retired' WHERE id = 1")
	require.True(t, ok, reason)

	orig, err := store.Get("user_2")
	require.NoError(t, err)
	require.Equal(t, "active", orig.Rows[0][1], "original table must be untouched before commit")

	shadow, err := store.Get("tx1_user_2")
	require.NoError(t, err)
	require.Equal(t, "retired", shadow.Rows[0][1])
}

func TestPrepareRejectsConcurrentTransaction(t *testing.T) {
	p, _ := newTestParticipant(t)

	ok, _ := p.Prepare("tx1", "user_2", "UPDATE user_2 SET status = 'retired' WHERE id = 1")
	require.True(t, ok)

	ok2, reason := p.Prepare("tx2", "user_2", "UPDATE user_2 SET status = 'closed' WHERE id = 2")
	require.False(t, ok2)
	require.NotEmpty(t, reason)
}

func TestGlobalCommitReplacesOriginal(t *testing.T) {
	p, store := newTestParticipant(t)

	ok, _ := p.Prepare("tx1", "user_2", "UPDATE user_2 SET status = 'retired' WHERE id = 1")
	require.True(t, ok)
	require.NoError(t, p.GlobalCommit("tx1"))

	out, err := store.Get("user_2")
	require.NoError(t, err)
	require.Equal(t, "retired", out.Rows[0][1])

	_, err = store.Get("tx1_user_2")
	require.Error(t, err, "shadow table must be gone after commit")
}

func TestGlobalAbortDiscardsShadowAndKeepsOriginal(t *testing.T) {
	p, store := newTestParticipant(t)

	ok, _ := p.Prepare("tx1", "user_2", "UPDATE user_2 SET status = 'retired' WHERE id = 1")
	require.True(t, ok)
	require.NoError(t, p.GlobalAbort("tx1"))

	out, err := store.Get("user_2")
	require.NoError(t, err)
	require.Equal(t, "active", out.Rows[0][1])

	_, err = store.Get("tx1_user_2")
	require.Error(t, err)

	ok2, _ := p.Prepare("tx2", "user_2", "UPDATE user_2 SET status = 'closed' WHERE id = 2")
	require.True(t, ok2, "pending slot must be freed after abort")
}
