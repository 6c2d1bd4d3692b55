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

// Command ddbsite runs one site daemon: it loads the catalog, seeds its
// local fragments, and serves the exec/fetch/cleanup/2pc routes on the IP
// and port the catalog lists for this site.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ddbms-chat/ddbsql/auth"
	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/rpc"
	"github.com/ddbms-chat/ddbsql/siteengine"
	"github.com/ddbms-chat/ddbsql/siteserver"
	"github.com/ddbms-chat/ddbsql/txn"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML runtime config (site_id, secret, catalog_path, log_level, log_dir)")
	siteID := flag.Int("site", 0, "catalog site id this daemon serves (overrides config's site_id)")
	catalogPath := flag.String("catalog", "", "path to a TOML catalog override (overrides config's catalog_path)")
	secret := flag.String("secret", "", "shared secret required from non-loopback callers (overrides config's secret)")
	logPath := flag.String("log-dir", "", "directory for the 2pc participant's durable event log (overrides config's log_dir)")
	logLevel := flag.String("log-level", "", "logrus level: debug, info, warn, error (overrides config's log_level)")
	flag.Parse()

	cfg, err := catalog.LoadRuntimeConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ddbsite:", err)
		os.Exit(1)
	}
	if *siteID != 0 {
		cfg.SiteID = *siteID
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}
	if *secret != "" {
		cfg.Secret = *secret
	}
	if *logPath != "" {
		cfg.LogDir = *logPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "."
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ddbsite:", err)
		os.Exit(1)
	}
	log.SetLevel(level)
	entry := logrus.NewEntry(log)

	if cfg.SiteID == 0 {
		entry.Fatal("ddbsite: site id is required (-site or config's site_id)")
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadTOML(cfg.CatalogPath)
		if err != nil {
			entry.WithError(err).Fatal("ddbsite: loading catalog")
		}
	}

	site, ok := cat.SiteByID(cfg.SiteID)
	if !ok {
		entry.Fatalf("ddbsite: site id %d not found in catalog", cfg.SiteID)
	}

	store := siteengine.NewStore()
	seedFragments(store, cat, site.ID, entry)

	participant, err := txn.NewParticipant(store, fmt.Sprintf("%s/site-%d-txn.db", cfg.LogDir, site.ID))
	if err != nil {
		entry.WithError(err).Fatal("ddbsite: opening participant log")
	}
	defer participant.Close()

	client := rpc.NewClient(cfg.Secret, entry)

	var authn auth.Auth
	var auditMethod auth.AuditMethod
	if cfg.Secret != "" {
		auditMethod = auth.NewAuditLog(log)
		authn = auth.NewAudit(auth.NewSharedSecret(cfg.Secret), auditMethod)
	}

	srv := siteserver.New(store, client, cat, participant, authn, auditMethod, entry)

	addr := fmt.Sprintf("%s:%d", site.IP, site.Port)
	entry.WithFields(logrus.Fields{"site": site.Name, "addr": addr}).Info("ddbsite listening")
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		entry.WithError(err).Fatal("ddbsite: server exited")
	}
}

// seedFragments installs every fragment this site is allocated, empty, as
// a starting point: a deployment's own bootstrap step loads real rows
// through the exec verbs or a future bulk-load endpoint (spec.md §1
// non-goal: no catalog DSL or migration tool, bulk loading is out of
// scope).
func seedFragments(store *siteengine.Store, cat *catalog.Catalog, siteID int, log *logrus.Entry) {
	for _, alloc := range cat.Allocations.Items {
		if alloc.Site != siteID {
			continue
		}
		f, ok := cat.Fragments.One(func(f catalog.Fragment) bool { return f.ID == alloc.Fragment })
		if !ok {
			continue
		}
		table, ok := cat.Tables.One(func(t catalog.Table) bool { return t.ID == f.Table })
		if !ok {
			continue
		}
		columns := catalog.VerticalFragmentColumns(f)
		if len(columns) == 0 {
			columns = cat.ColumnNamesOf(table.ID)
		} else {
			if pk, ok := cat.PrimaryKeyOf(table.ID); ok {
				columns = append([]string{pk}, columns...)
			}
		}
		store.Seed(f.Name, columns, nil)
		log.WithFields(logrus.Fields{"fragment": f.Name, "columns": columns}).Debug("seeded empty fragment")
	}
}
