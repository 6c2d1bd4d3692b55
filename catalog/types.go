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

// Package catalog holds the distributed system catalog: sites, logical
// tables, columns, fragments and their allocation to sites. It is treated
// as read-only once loaded (Invariant 1-4 in spec.md §3).
package catalog

// FragmentType names how a table is fragmented.
type FragmentType string

const (
	// Unfragmented means the table lives whole at one site.
	Unfragmented FragmentType = "-"
	// Horizontal fragments rows by predicate.
	Horizontal FragmentType = "H"
	// Vertical fragments columns, each fragment keeping the primary key.
	Vertical FragmentType = "V"
	// DerivedHorizontal inherits its row partition from a parent fragment
	// via a foreign key.
	DerivedHorizontal FragmentType = "DH"
)

// Site is a reachable storage node running its own local SQL engine.
type Site struct {
	ID       int
	Name     string
	IP       string
	Port     int
	User     string
	Password string
}

// Table is a logical relation and how it is fragmented.
type Table struct {
	ID           int
	Name         string
	FragmentType FragmentType
}

// Column is logical schema for a Table. Type is either a primitive
// ("int", "str", "datetime") or another table's name (foreign key).
type Column struct {
	ID       int
	Name     string
	Table    int // Table.ID
	Type     string
	PK       bool
	NotNull  bool
	Unique   bool
}

// Fragment is one physical piece of a logical Table, allocated to exactly
// one Site. Logic is interpreted according to Table.FragmentType: an
// arithmetic predicate for H, "<fk_col>|><parent_fragment_name>" for DH, a
// comma-separated column list for V, empty for "-".
type Fragment struct {
	ID     int
	Name   string
	Type   FragmentType
	Logic  string
	Parent int // self for H/-, owning parent fragment id for DH
	Table  int // Table.ID
}

// Allocation assigns a Fragment to exactly one Site.
type Allocation struct {
	Fragment int // Fragment.ID
	Site     int // Site.ID
}
