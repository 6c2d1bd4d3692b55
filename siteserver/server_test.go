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

package siteserver

import (
	"context"
	"net"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ddbms-chat/ddbsql/auth"
	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/rpc"
	"github.com/ddbms-chat/ddbsql/siteengine"
	"github.com/ddbms-chat/ddbsql/txn"
)

func siteFromTestServer(t *testing.T, id int, name string, srv *httptest.Server) catalog.Site {
	t.Helper()
	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return catalog.Site{ID: id, Name: name, IP: host, Port: p}
}

func newTestServer(t *testing.T, cat *catalog.Catalog, client *rpc.Client) (*httptest.Server, *siteengine.Store, *Server) {
	t.Helper()
	store := siteengine.NewStore()
	participant, err := txn.NewParticipant(store, t.TempDir()+"/participant.db")
	require.NoError(t, err)
	t.Cleanup(func() { participant.Close() })

	s := New(store, client, cat, participant, &auth.None{}, nil, logrus.NewEntry(logrus.New()))
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return srv, store, s
}

func TestPingReturnsPong(t *testing.T) {
	client := rpc.NewClient("", nil)
	srv, _, _ := newTestServer(t, catalog.New(nil, nil, nil, nil, nil), client)

	site := siteFromTestServer(t, 1, "site1", srv)
	require.NoError(t, client.Ping(context.Background(), site))
}

func TestExecSelectAndFetchRoundTrip(t *testing.T) {
	client := rpc.NewClient("", nil)
	srv, store, _ := newTestServer(t, catalog.New(nil, nil, nil, nil, nil), client)
	site := siteFromTestServer(t, 1, "site1", srv)

	store.Seed("user_2", []string{"id", "status"}, [][]interface{}{
		{"1", "active"},
		{"2", "inactive"},
	})

	err := client.Exec(context.Background(), site, "select", map[string]interface{}{
		"relation_name":    "user_2",
		"target":           "q1-result",
		"select_condition": rpc.EncodeCondition(ddbsql.Condition{LHS: "status", Op: "=", RHS: "'active'"}),
	})
	require.NoError(t, err)

	dump, err := client.Fetch(context.Background(), site, "q1-result")
	require.NoError(t, err)
	require.Len(t, dump.Rows, 1)
}

func TestCleanupDropsQidPrefixedTables(t *testing.T) {
	client := rpc.NewClient("", nil)
	srv, store, _ := newTestServer(t, catalog.New(nil, nil, nil, nil, nil), client)
	site := siteFromTestServer(t, 1, "site1", srv)

	store.Seed("q1_1-user_2", []string{"id"}, [][]interface{}{{"1"}})
	store.Seed("other", []string{"id"}, [][]interface{}{{"1"}})

	require.NoError(t, client.Cleanup(context.Background(), site, "q1"))

	_, err := store.Get("q1_1-user_2")
	require.Error(t, err)
	_, err = store.Get("other")
	require.NoError(t, err)
}

func TestFetchVerbPullsFromRemoteSite(t *testing.T) {
	client := rpc.NewClient("", nil)

	remoteSrv, remoteStore, _ := newTestServer(t, catalog.New(nil, nil, nil, nil, nil), client)
	remoteSite := siteFromTestServer(t, 2, "site2", remoteSrv)
	remoteStore.Seed("group_1", []string{"id", "owner_id"}, [][]interface{}{{"10", "1"}})

	cat := catalog.New([]catalog.Site{remoteSite}, nil, nil, nil, nil)
	localSrv, localStore, _ := newTestServer(t, cat, client)
	localSite := siteFromTestServer(t, 1, "site1", localSrv)

	err := client.Exec(context.Background(), localSite, "fetch", map[string]interface{}{
		"relation_name":        "group_1",
		"site_id":              remoteSite.ID,
		"target_relation_name": "q1_1-group_1",
	})
	require.NoError(t, err)

	out, err := localStore.Get("q1_1-group_1")
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
}

func TestPrepareRejectsWhileReadInFlight(t *testing.T) {
	client := rpc.NewClient("", nil)
	srv, store, s := newTestServer(t, catalog.New(nil, nil, nil, nil, nil), client)
	site := siteFromTestServer(t, 1, "site1", srv)
	store.Seed("user_2", []string{"id", "status"}, [][]interface{}{{"1", "active"}})

	s.beginRead()
	defer s.endRead()

	resp, err := client.Prepare(context.Background(), site, rpc.PrepareRequest{
		TxID: "tx1", Table: "user_2", SQL: "UPDATE user_2 SET status = 'x' WHERE id = 1",
	})
	require.NoError(t, err)
	require.False(t, resp.VoteCommit)
}

func TestPrepareCommitRoundTrip(t *testing.T) {
	client := rpc.NewClient("", nil)
	srv, store, _ := newTestServer(t, catalog.New(nil, nil, nil, nil, nil), client)
	site := siteFromTestServer(t, 1, "site1", srv)
	store.Seed("user_2", []string{"id", "status"}, [][]interface{}{{"1", "active"}})

	resp, err := client.Prepare(context.Background(), site, rpc.PrepareRequest{
		TxID: "tx1", Table: "user_2", SQL: "UPDATE user_2 SET status = 'retired' WHERE id = 1",
	})
	require.NoError(t, err)
	require.True(t, resp.VoteCommit)

	require.NoError(t, client.GlobalCommit(context.Background(), site, "tx1"))

	out, err := store.Get("user_2")
	require.NoError(t, err)
	require.Equal(t, "retired", out.Rows[0][1])
}

