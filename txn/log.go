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
	"time"

	"github.com/boltdb/bolt"
)

var logBucket = []byte("txn_log")

// eventLog is a durable append-only log of 2PC events keyed by txid,
// entries of the form "<txid>: <event>" (spec.md §4.7). Both the
// coordinator and each participant keep their own (distinct files).
type eventLog struct {
	db *bolt.DB
}

// CoordinatorLog is the coordinator's durable begin/vote/commit/abort log.
type CoordinatorLog = eventLog

// ParticipantLog is a participant's durable vote/outcome log.
type ParticipantLog = eventLog

func openEventLog(path string) (*eventLog, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(logBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &eventLog{db: db}, nil
}

// OpenCoordinatorLog opens (creating if absent) a boltdb-backed log at path.
func OpenCoordinatorLog(path string) (*CoordinatorLog, error) { return openEventLog(path) }

// OpenParticipantLog opens (creating if absent) a boltdb-backed log at path.
func OpenParticipantLog(path string) (*ParticipantLog, error) { return openEventLog(path) }

// Append records one event for txID. The coordinator and participant
// ignore its error, so a failed append never fails the transaction it
// describes: the log is an audit trail, not a commit barrier.
func (l *eventLog) Append(txID, event string) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(logBucket)
		key := []byte(fmt.Sprintf("%s/%020d", txID, time.Now().UnixNano()))
		return b.Put(key, []byte(fmt.Sprintf("%s: %s", txID, event)))
	})
}

// Close releases the underlying database file.
func (l *eventLog) Close() error {
	return l.db.Close()
}

// Events returns every logged event for txID, in append order, for recovery
// or auditing.
func (l *eventLog) Events(txID string) ([]string, error) {
	var events []string
	prefix := []byte(txID + "/")
	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(logBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			events = append(events, string(v))
		}
		return nil
	})
	return events, err
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
