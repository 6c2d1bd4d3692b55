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
	"fmt"
	"sync"

	"github.com/ddbms-chat/ddbsql/siteengine"
)

// Participant is the site daemon's 2PC half: it stages a shadow table,
// votes, and later commits or discards it. Its mutex guards the pending
// set: while a prepare is outstanding, a new prepare votes abort. The
// in-flight read check is made by the site server before Prepare is called.
type Participant struct {
	store *siteengine.Store
	log   *ParticipantLog

	mu      sync.Mutex
	pending map[string]string // txid -> table
}

// NewParticipant builds a Participant backed by store, logging to logPath.
func NewParticipant(store *siteengine.Store, logPath string) (*Participant, error) {
	l, err := OpenParticipantLog(logPath)
	if err != nil {
		return nil, err
	}
	return &Participant{store: store, log: l, pending: map[string]string{}}, nil
}

// Close releases the participant's durable log.
func (p *Participant) Close() error {
	return p.log.Close()
}

// Prepare stages txID's write in a shadow table and votes. Any concurrent
// prepare (this site already has one outstanding) votes abort without
// touching the store.
func (p *Participant) Prepare(txID, table, sql string) (voteCommit bool, reason string) {
	p.mu.Lock()
	if len(p.pending) > 0 {
		p.mu.Unlock()
		p.log.Append(txID, "vote-abort")
		return false, "another transaction is prepared at this site"
	}
	p.pending[txID] = table
	p.mu.Unlock()

	shadow := fmt.Sprintf("%s_%s", txID, table)
	if err := p.store.Rename(table, shadow); err != nil {
		p.clearPending(txID)
		p.log.Append(txID, "vote-abort")
		return false, err.Error()
	}

	if err := applyUpdate(p.store, shadow, sql); err != nil {
		p.store.Drop(shadow)
		p.clearPending(txID)
		p.log.Append(txID, "vote-abort")
		return false, err.Error()
	}

	p.log.Append(txID, "vote-commit")
	return true, ""
}

// GlobalCommit drops the original table and renames the shadow into its
// place, finishing txID. The table name comes from the Prepare call that
// staged txID, since global-commit's wire body carries only the txid.
func (p *Participant) GlobalCommit(txID string) error {
	table, ok := p.tableFor(txID)
	if !ok {
		return fmt.Errorf("txn: no prepared transaction %q at this site", txID)
	}
	shadow := fmt.Sprintf("%s_%s", txID, table)
	if err := p.store.Rename(shadow, table); err != nil {
		p.clearPending(txID)
		p.log.Append(txID, "commit-failed")
		return err
	}
	p.store.Drop(shadow)
	p.clearPending(txID)
	p.log.Append(txID, "commit")
	return nil
}

// GlobalAbort discards txID's shadow table.
func (p *Participant) GlobalAbort(txID string) error {
	table, ok := p.tableFor(txID)
	if !ok {
		return fmt.Errorf("txn: no prepared transaction %q at this site", txID)
	}
	shadow := fmt.Sprintf("%s_%s", txID, table)
	p.store.Drop(shadow)
	p.clearPending(txID)
	p.log.Append(txID, "abort")
	return nil
}

func (p *Participant) tableFor(txID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	table, ok := p.pending[txID]
	return table, ok
}

func (p *Participant) clearPending(txID string) {
	p.mu.Lock()
	delete(p.pending, txID)
	p.mu.Unlock()
}
