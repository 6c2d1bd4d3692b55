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
	"fmt"
	"regexp"
	"strconv"

	"github.com/spf13/cast"
)

// horizontalPredicate matches the restricted "id%N==R" arithmetic
// predicates the catalog's H fragments use as Logic (see Default).
var horizontalPredicate = regexp.MustCompile(`^(\w+)%(\d+)==(\d+)$`)

// EvalHorizontalPredicate evaluates a Fragment's H "id%N==R" Logic against
// a sample row, given as column name -> raw value. Used only by invariant
// checks and property tests (Testable Properties #2 in spec.md §8); the
// runtime query path never evaluates fragment predicates, since rows are
// already physically partitioned by the out-of-scope DDL bootstrap.
func EvalHorizontalPredicate(logic string, row map[string]string) (bool, error) {
	m := horizontalPredicate.FindStringSubmatch(logic)
	if m == nil {
		return false, fmt.Errorf("unsupported horizontal predicate %q", logic)
	}

	col, modStr, remStr := m[1], m[2], m[3]
	raw, ok := row[col]
	if !ok {
		return false, fmt.Errorf("row missing column %q", col)
	}

	value, err := cast.ToIntE(raw)
	if err != nil {
		return false, fmt.Errorf("column %q is not numeric: %w", col, err)
	}

	mod, _ := strconv.Atoi(modStr)
	rem, _ := strconv.Atoi(remStr)

	return value%mod == rem, nil
}

// CheckHorizontalCoverage verifies Invariant 2: for a horizontally
// fragmented table, every sample row matches exactly one fragment's
// predicate (covering and disjoint).
func (c *Catalog) CheckHorizontalCoverage(tableID int, samples []map[string]string) error {
	fragments := c.FragmentsOf(tableID)

	for _, row := range samples {
		matches := 0
		for _, f := range fragments {
			if f.Type != Horizontal {
				continue
			}
			ok, err := EvalHorizontalPredicate(f.Logic, row)
			if err != nil {
				return err
			}
			if ok {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf("row %v matched %d horizontal fragments, want exactly 1", row, matches)
		}
	}

	return nil
}

// CheckVerticalCoverage verifies Invariant 3: vertical fragments of a
// table all carry the primary key, and their column sets union to the
// table's full column set.
func (c *Catalog) CheckVerticalCoverage(tableID int) error {
	pk, ok := c.PrimaryKeyOf(tableID)
	if !ok {
		return fmt.Errorf("table %d has no primary key", tableID)
	}

	fragments := c.FragmentsOf(tableID)
	covered := map[string]bool{pk: true}

	for _, f := range fragments {
		if f.Type != Vertical {
			continue
		}
		cols := VerticalFragmentColumns(f)
		has := false
		for _, col := range cols {
			if col == pk {
				has = true
			}
			covered[col] = true
		}
		if !has {
			return fmt.Errorf("vertical fragment %q does not carry primary key %q", f.Name, pk)
		}
	}

	for _, col := range c.ColumnNamesOf(tableID) {
		if !covered[col] {
			return fmt.Errorf("column %q of table %d is not covered by any vertical fragment", col, tableID)
		}
	}

	return nil
}

// CheckFragmentNaming verifies Invariant 4: a fragment's name matches
// "<table>_<n>" and stripping the suffix recovers the table's name.
func (c *Catalog) CheckFragmentNaming() error {
	for _, f := range c.Fragments.Items {
		table, ok := c.Tables.One(func(t Table) bool { return t.ID == f.Table })
		if !ok {
			return fmt.Errorf("fragment %q references unknown table id %d", f.Name, f.Table)
		}
		if table.FragmentType == Unfragmented {
			continue
		}
		if got := ParentTableName(f.Name); got != table.Name {
			return fmt.Errorf("fragment %q does not recover table name %q (got %q)", f.Name, table.Name, got)
		}
	}
	return nil
}
