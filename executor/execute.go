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

// Package executor dispatches a planner-produced operation list to site
// daemons over rpc, fetches the final result back to the originator, and
// always cleans up every touched site (spec.md §4.5).
package executor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/planner"
	"github.com/ddbms-chat/ddbsql/rpc"
)

// Outcome is a completed query's final rows, ready to hand back to the caller.
type Outcome struct {
	Columns []string
	Rows    [][]any
}

// Execute runs ops in order against their assigned sites, retrieves final's
// relation to origin as "<qid>-result", and issues /cleanup/<qid> to every
// site touched — on both success and failure.
func Execute(ctx context.Context, cat *catalog.Catalog, client *rpc.Client, log *logrus.Entry,
	origin catalog.Site, qid string, ops []planner.Operation, final planner.Result, limit *int) (*Outcome, error) {

	touched := map[int]bool{}

	runErr := func() error {
		for _, op := range ops {
			site, ok := cat.SiteByID(op.SiteID)
			if !ok {
				return fmt.Errorf("executor: unknown site id %d", op.SiteID)
			}
			touched[op.SiteID] = true

			if log != nil {
				log.WithFields(logrus.Fields{"qid": qid, "site": site.Name, "verb": op.Verb, "target": op.OutputName}).Debug("executing op")
			}
			if err := client.Exec(ctx, site, op.Verb, op.Args); err != nil {
				return fmt.Errorf("executor: op %s at %s: %w", op.Verb, site.Name, err)
			}
		}
		return nil
	}()

	if runErr != nil {
		cleanup(ctx, cat, client, log, qid, touched)
		return nil, runErr
	}

	resultName := qid + "-result"
	touched[origin.ID] = true
	if err := client.Exec(ctx, origin, "fetch", map[string]interface{}{
		"relation_name":        final.Name,
		"site_id":              final.SiteID,
		"target_relation_name": resultName,
	}); err != nil {
		cleanup(ctx, cat, client, log, qid, touched)
		return nil, fmt.Errorf("executor: final fetch to origin: %w", err)
	}

	dump, err := client.Fetch(ctx, origin, resultName)
	if err != nil {
		cleanup(ctx, cat, client, log, qid, touched)
		return nil, fmt.Errorf("executor: reading final result: %w", err)
	}

	rows := dump.Rows
	if limit != nil && len(rows) > *limit {
		rows = rows[:*limit]
	}

	cleanup(ctx, cat, client, log, qid, touched)
	return &Outcome{Columns: dump.Columns, Rows: rows}, nil
}

// cleanup is best-effort: every touched site gets a /cleanup/<qid>, and a
// failure on one site never stops the others from being cleaned.
func cleanup(ctx context.Context, cat *catalog.Catalog, client *rpc.Client, log *logrus.Entry, qid string, touched map[int]bool) {
	for siteID := range touched {
		site, ok := cat.SiteByID(siteID)
		if !ok {
			continue
		}
		if err := client.Cleanup(ctx, site, qid); err != nil && log != nil {
			log.WithFields(logrus.Fields{"qid": qid, "site": site.Name, "err": err}).Warn("cleanup failed")
		}
	}
}
