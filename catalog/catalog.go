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
	"regexp"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrUnknownTable is returned when a table name has no catalog entry.
	ErrUnknownTable = errors.NewKind("unknown table %q")
	// ErrUnknownFragment is returned when a fragment name has no catalog entry.
	ErrUnknownFragment = errors.NewKind("unknown fragment %q")
	// ErrNoAllocation is returned when a fragment has no site assigned.
	ErrNoAllocation = errors.NewKind("fragment %q has no allocation")
)

// fragmentSuffix recovers a table name from a fragment name: stripping the
// trailing "_<n>" from "T_<n>" must recover "T" (Invariant 4).
var fragmentSuffix = regexp.MustCompile(`_\d+$`)

// Catalog is the full, immutable-at-runtime system catalog.
type Catalog struct {
	Sites       Collection[Site]
	Tables      Collection[Table]
	Columns     Collection[Column]
	Fragments   Collection[Fragment]
	Allocations Collection[Allocation]
}

// New builds a Catalog from its five collections.
func New(sites []Site, tables []Table, columns []Column, fragments []Fragment, allocations []Allocation) *Catalog {
	return &Catalog{
		Sites:       NewCollection(sites),
		Tables:      NewCollection(tables),
		Columns:     NewCollection(columns),
		Fragments:   NewCollection(fragments),
		Allocations: NewCollection(allocations),
	}
}

// TableByName looks up a logical table by name.
func (c *Catalog) TableByName(name string) (Table, error) {
	t, ok := c.Tables.One(func(t Table) bool { return t.Name == name })
	if !ok {
		return Table{}, ErrUnknownTable.New(name)
	}
	return t, nil
}

// TableNames returns every logical table name, for "did you mean" hints.
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.Tables.Items))
	for _, t := range c.Tables.Items {
		names = append(names, t.Name)
	}
	return names
}

// ColumnsOf returns the logical columns of a table, in catalog order.
func (c *Catalog) ColumnsOf(tableID int) []Column {
	return c.Columns.Where(func(col Column) bool { return col.Table == tableID })
}

// ColumnNamesOf returns just the names, for "did you mean" hints.
func (c *Catalog) ColumnNamesOf(tableID int) []string {
	cols := c.ColumnsOf(tableID)
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	return names
}

// PrimaryKeyOf returns the primary key column name of a table.
func (c *Catalog) PrimaryKeyOf(tableID int) (string, bool) {
	col, ok := c.Columns.One(func(col Column) bool { return col.Table == tableID && col.PK })
	return col.Name, ok
}

// FragmentsOf returns every fragment of a table, in catalog order.
func (c *Catalog) FragmentsOf(tableID int) []Fragment {
	return c.Fragments.Where(func(f Fragment) bool { return f.Table == tableID })
}

// FragmentByName looks up a fragment by its physical name.
func (c *Catalog) FragmentByName(name string) (Fragment, error) {
	f, ok := c.Fragments.One(func(f Fragment) bool { return f.Name == name })
	if !ok {
		return Fragment{}, ErrUnknownFragment.New(name)
	}
	return f, nil
}

// ParentTableName recovers the logical table name of a fragment name by
// stripping the trailing "_<n>" (Invariant 4).
func ParentTableName(fragmentName string) string {
	return fragmentSuffix.ReplaceAllString(fragmentName, "")
}

// SiteOfFragment returns the Site a fragment is allocated to.
func (c *Catalog) SiteOfFragment(fragmentID int) (Site, error) {
	alloc, ok := c.Allocations.One(func(a Allocation) bool { return a.Fragment == fragmentID })
	if !ok {
		return Site{}, ErrNoAllocation.New(fragmentID)
	}
	site, ok := c.Sites.One(func(s Site) bool { return s.ID == alloc.Site })
	if !ok {
		return Site{}, ErrNoAllocation.New(fragmentID)
	}
	return site, nil
}

// SiteByID looks up a Site by id.
func (c *Catalog) SiteByID(id int) (Site, bool) {
	return c.Sites.One(func(s Site) bool { return s.ID == id })
}

// VerticalFragmentColumns splits a V fragment's comma-separated Logic into
// column names.
func VerticalFragmentColumns(f Fragment) []string {
	if f.Logic == "" {
		return nil
	}
	parts := strings.Split(f.Logic, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// DerivedHorizontalSpec splits a DH fragment's Logic ("<fk_col>|><parent_fragment_name>")
// into the foreign-key column and the parent fragment name it is derived from.
func DerivedHorizontalSpec(f Fragment) (fkColumn, parentFragment string, ok bool) {
	parts := strings.SplitN(f.Logic, "|>", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
