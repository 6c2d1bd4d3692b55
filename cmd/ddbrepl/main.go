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

// Command ddbrepl is the interactive client: it reads one statement at a
// time, drives SELECTs through the resolve/plan/optimize/linearize/execute
// pipeline or UPDATEs through two-phase commit, and prints results as a
// table (spec.md §6).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/repl"
	"github.com/ddbms-chat/ddbsql/rpc"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML runtime config (site_id, secret, catalog_path, log_level, log_dir)")
	originID := flag.Int("site", 0, "catalog site id this client originates queries from (overrides config's site_id)")
	catalogPath := flag.String("catalog", "", "path to a TOML catalog override (overrides config's catalog_path)")
	secret := flag.String("secret", "", "shared secret sent to every site daemon (overrides config's secret)")
	logDir := flag.String("log-dir", "", "directory for the 2pc coordinator's durable event log (overrides config's log_dir)")
	logLevel := flag.String("log-level", "", "logrus level: debug, info, warn, error (overrides config's log_level)")
	flag.Parse()

	cfg, err := catalog.LoadRuntimeConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ddbrepl:", err)
		os.Exit(1)
	}
	if *originID != 0 {
		cfg.SiteID = *originID
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}
	if *secret != "" {
		cfg.Secret = *secret
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
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
		fmt.Fprintln(os.Stderr, "ddbrepl:", err)
		os.Exit(1)
	}
	log.SetLevel(level)
	entry := logrus.NewEntry(log)

	if cfg.SiteID == 0 {
		entry.Fatal("ddbrepl: site id is required (-site or config's site_id)")
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadTOML(cfg.CatalogPath)
		if err != nil {
			entry.WithError(err).Fatal("ddbrepl: loading catalog")
		}
	}

	origin, ok := cat.SiteByID(cfg.SiteID)
	if !ok {
		entry.Fatalf("ddbrepl: site id %d not found in catalog", cfg.SiteID)
	}

	client := rpc.NewClient(cfg.Secret, entry)
	session := repl.NewSession(cat, client, origin, entry, cfg.LogDir+"/repl-coordinator.db")
	defer session.Close()

	fmt.Printf("ddbrepl connected as %s. Statements end with ';'; Ctrl-D to quit.\n", origin.Name)
	runLoop(session, os.Stdin, os.Stdout)
}

// runLoop reads statements terminated by ';' from in, one at a time, and
// hands each to session.Run.
func runLoop(session *repl.Session, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder

	prompt := func() { fmt.Fprint(out, "ddbsql> ") }
	prompt()
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')

		if !strings.Contains(line, ";") {
			continue
		}

		stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(buf.String()), ";"))
		buf.Reset()
		if stmt == "" {
			prompt()
			continue
		}

		if err := session.Run(context.Background(), stmt, out); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		prompt()
	}
}
