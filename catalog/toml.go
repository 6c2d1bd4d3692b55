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

package catalog

import (
	"github.com/BurntSushi/toml"
)

// tomlDoc mirrors the five catalog collections for file-based overrides of
// Default(). The catalog is still hand-authored (spec.md §1 non-goal: no
// catalog DSL or migration tool); this only lets a deployment point at its
// own fixture instead of recompiling.
type tomlDoc struct {
	Site        []Site       `toml:"site"`
	Table       []tomlTable  `toml:"table"`
	Column      []tomlColumn `toml:"column"`
	Fragment    []tomlFragment `toml:"fragment"`
	Allocation  []Allocation `toml:"allocation"`
}

type tomlTable struct {
	ID           int    `toml:"id"`
	Name         string `toml:"name"`
	FragmentType string `toml:"fragment_type"`
}

type tomlColumn struct {
	ID      int    `toml:"id"`
	Name    string `toml:"name"`
	Table   int    `toml:"table"`
	Type    string `toml:"type"`
	PK      bool   `toml:"pk"`
	NotNull bool   `toml:"notnull"`
	Unique  bool   `toml:"unique"`
}

type tomlFragment struct {
	ID     int    `toml:"id"`
	Name   string `toml:"name"`
	Type   string `toml:"type"`
	Logic  string `toml:"logic"`
	Parent int    `toml:"parent"`
	Table  int    `toml:"table"`
}

// LoadTOML reads a catalog override file. Missing fields fall back to the
// zero value; callers typically start from Default() and only ship a TOML
// file where they need to diverge from it.
func LoadTOML(path string) (*Catalog, error) {
	var doc tomlDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, err
	}

	tables := make([]Table, len(doc.Table))
	for i, t := range doc.Table {
		tables[i] = Table{ID: t.ID, Name: t.Name, FragmentType: FragmentType(t.FragmentType)}
	}

	columns := make([]Column, len(doc.Column))
	for i, c := range doc.Column {
		columns[i] = Column{ID: c.ID, Name: c.Name, Table: c.Table, Type: c.Type, PK: c.PK, NotNull: c.NotNull, Unique: c.Unique}
	}

	fragments := make([]Fragment, len(doc.Fragment))
	for i, f := range doc.Fragment {
		fragments[i] = Fragment{ID: f.ID, Name: f.Name, Type: FragmentType(f.Type), Logic: f.Logic, Parent: f.Parent, Table: f.Table}
	}

	return New(doc.Site, tables, columns, fragments, doc.Allocation), nil
}
