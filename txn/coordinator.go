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

// Package txn drives two-phase commit for UPDATE statements across a
// table's fragment-holding sites (spec.md §4.7), and answers prepare/
// global-commit/global-abort at the participant side the site daemon
// exposes.
package txn

import (
	"context"
	"fmt"
	"strings"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/rpc"
)

// Outcome is the terminal state of a driven transaction.
type Outcome int

const (
	Committed Outcome = iota
	Aborted
)

func (o Outcome) String() string {
	if o == Committed {
		return "commit"
	}
	return "abort"
}

// Coordinator drives 2PC for UPDATE statements, one transaction at a time
// per call (spec.md §5: "a query or transaction is driven sequentially").
type Coordinator struct {
	cat    *catalog.Catalog
	client *rpc.Client
	log    *CoordinatorLog
	logger *logrus.Entry
}

// NewCoordinator builds a Coordinator logging to logPath.
func NewCoordinator(cat *catalog.Catalog, client *rpc.Client, logPath string, logger *logrus.Entry) (*Coordinator, error) {
	l, err := OpenCoordinatorLog(logPath)
	if err != nil {
		return nil, err
	}
	return &Coordinator{cat: cat, client: client, log: l, logger: logger}, nil
}

// Close releases the coordinator's durable log.
func (c *Coordinator) Close() error {
	return c.log.Close()
}

// NewTxID mints a fresh transaction identifier.
func NewTxID() string {
	return strings.ReplaceAll(uuid.NewV4().String(), "-", "")[:16]
}

// Run executes one UPDATE across every fragment-holding site of its table:
// prepare everywhere, then globally commit if every participant voted
// commit, else globally abort everywhere.
func (c *Coordinator) Run(ctx context.Context, sql string) (Outcome, error) {
	stmt, err := ddbsql.ParseUpdate(sql)
	if err != nil {
		return Aborted, err
	}

	table, err := c.cat.TableByName(stmt.Table)
	if err != nil {
		return Aborted, err
	}
	fragments := c.cat.FragmentsOf(table.ID)
	if len(fragments) == 0 {
		return Aborted, fmt.Errorf("txn: table %q has no fragments", stmt.Table)
	}

	txID := NewTxID()
	c.log.Append(txID, "begin_commit")

	type participant struct {
		site     catalog.Site
		fragment string
		fragSQL  string
	}
	var participants []participant
	for _, f := range fragments {
		site, err := c.cat.SiteOfFragment(f.ID)
		if err != nil {
			return Aborted, err
		}
		participants = append(participants, participant{site: site, fragment: f.Name, fragSQL: rewriteTableIdentifier(stmt.SQL, stmt.Table, f.Name)})
	}

	allCommit := true
	for _, p := range participants {
		resp, err := c.client.Prepare(ctx, p.site, rpc.PrepareRequest{TxID: txID, Table: p.fragment, SQL: p.fragSQL})
		voteCommit := err == nil && resp != nil && resp.VoteCommit
		c.log.Append(txID, voteLogEvent(voteCommit))
		if !voteCommit {
			allCommit = false
		}
	}

	if !allCommit {
		for _, p := range participants {
			if err := c.client.GlobalAbort(ctx, p.site, txID); err != nil && c.logger != nil {
				c.logger.WithFields(logrus.Fields{"tx_id": txID, "site": p.site.Name, "err": err}).Warn("global-abort failed")
			}
		}
		c.log.Append(txID, "abort")
		c.log.Append(txID, "end_of_transaction")
		return Aborted, nil
	}

	failed := false
	for _, p := range participants {
		if err := c.client.GlobalCommit(ctx, p.site, txID); err != nil {
			failed = true
			if c.logger != nil {
				c.logger.WithFields(logrus.Fields{"tx_id": txID, "site": p.site.Name, "err": err}).Error("global-commit failed")
			}
		}
	}
	if failed {
		c.log.Append(txID, "failed")
		c.log.Append(txID, "end_of_transaction")
		return Aborted, fmt.Errorf("txn: global-commit failed for tx %s", txID)
	}

	c.log.Append(txID, "commit")
	c.log.Append(txID, "end_of_transaction")
	return Committed, nil
}

func voteLogEvent(voteCommit bool) string {
	if voteCommit {
		return "vote-commit"
	}
	return "vote-abort"
}

// rewriteTableIdentifier swaps the first occurrence of table (as a whole
// word right after UPDATE) with fragment in sql.
func rewriteTableIdentifier(sql, table, fragment string) string {
	fields := strings.Fields(sql)
	for i, f := range fields {
		if strings.Trim(f, "`") == table {
			fields[i] = fragment
			break
		}
	}
	return strings.Join(fields, " ")
}
