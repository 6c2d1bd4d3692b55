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

package optimizer

import (
	"sort"

	"github.com/ddbms-chat/ddbsql/catalog"
	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/plan"
)

// Optimize runs spec.md §4.3's full pipeline over tree in place: column-use
// analysis, localization, projection push-down, and dead-branch cleanup.
func Optimize(tree *plan.QueryTree, cat *catalog.Catalog) error {
	used := columnUse(tree.Root)

	for tableName, leaf := range tree.Relations {
		table, err := cat.TableByName(tableName)
		if err != nil {
			return err
		}
		subtree, err := localizeTable(tree, cat, table, used[tableName])
		if err != nil {
			return err
		}
		tree.Replace(leaf, subtree)
	}

	if err := pushDownProjections(tree, cat, used); err != nil {
		return err
	}

	deadBranchCleanup(tree)
	return nil
}

// localizeTable builds the fragment subtree for one logical table
// according to its fragmentation kind.
func localizeTable(tree *plan.QueryTree, cat *catalog.Catalog, table catalog.Table, usedCols map[string]bool) (*plan.Node, error) {
	frags := cat.FragmentsOf(table.ID)

	switch table.FragmentType {
	case catalog.Unfragmented:
		f := frags[0]
		site, err := cat.SiteOfFragment(f.ID)
		if err != nil {
			return nil, err
		}
		return tree.NewLocalizedRelation(f.Name, site.ID), nil

	case catalog.Vertical:
		pk, _ := cat.PrimaryKeyOf(table.ID)
		var kept []*plan.Node
		for _, f := range frags {
			if !verticalFragmentContributes(f, pk, usedCols) {
				continue
			}
			site, err := cat.SiteOfFragment(f.ID)
			if err != nil {
				return nil, err
			}
			kept = append(kept, tree.NewLocalizedRelation(f.Name, site.ID))
		}
		if len(kept) == 0 {
			// Always keep at least one fragment, to carry the primary key.
			f := frags[0]
			site, err := cat.SiteOfFragment(f.ID)
			if err != nil {
				return nil, err
			}
			kept = append(kept, tree.NewLocalizedRelation(f.Name, site.ID))
		}
		if len(kept) == 1 {
			return kept[0], nil
		}
		cond := ddbsql.Condition{LHS: pk, Op: "=", RHS: pk}
		return tree.NewUniformJoin(cond, kept...), nil

	case catalog.Horizontal, catalog.DerivedHorizontal:
		var legs []*plan.Node
		for _, f := range frags {
			site, err := cat.SiteOfFragment(f.ID)
			if err != nil {
				return nil, err
			}
			legs = append(legs, tree.NewLocalizedRelation(f.Name, site.ID))
		}
		if len(legs) == 1 {
			return legs[0], nil
		}
		return tree.NewUnion(legs...), nil

	default:
		f := frags[0]
		site, err := cat.SiteOfFragment(f.ID)
		if err != nil {
			return nil, err
		}
		return tree.NewLocalizedRelation(f.Name, site.ID), nil
	}
}

// verticalFragmentContributes reports whether a vertical fragment carries
// any query-used column beyond the primary key (spec.md §4.3's pruning rule).
func verticalFragmentContributes(f catalog.Fragment, pk string, usedCols map[string]bool) bool {
	for _, col := range catalog.VerticalFragmentColumns(f) {
		if usedCols[col] {
			return true
		}
	}
	return false
}

// pushDownProjections wraps every localized fragment leaf with a
// Projection over (query-used columns ∩ fragment columns) ∪ {primary key}.
func pushDownProjections(tree *plan.QueryTree, cat *catalog.Catalog, used map[string]map[string]bool) error {
	for _, leaf := range plan.Leaves(tree.Root) {
		frag, err := cat.FragmentByName(leaf.RelationName)
		if err != nil {
			return err
		}
		tableName := catalog.ParentTableName(leaf.RelationName)
		table, err := cat.TableByName(tableName)
		if err != nil {
			return err
		}
		pk, _ := cat.PrimaryKeyOf(table.ID)

		fragCols := fragmentColumns(cat, table, frag)
		usedForTable := used[tableName]

		var cols []string
		for _, c := range fragCols {
			if c == pk || usedForTable[c] {
				cols = append(cols, c)
			}
		}
		sort.Strings(cols)

		tree.WrapWithProjection(leaf, cols)
	}
	return nil
}

// fragmentColumns returns the physical columns a fragment carries: the
// pk-plus-Logic subset for a vertical fragment, or the table's full column
// list for every other kind (row-fragmentation carries every column).
func fragmentColumns(cat *catalog.Catalog, table catalog.Table, f catalog.Fragment) []string {
	if table.FragmentType == catalog.Vertical {
		pk, _ := cat.PrimaryKeyOf(table.ID)
		return append(catalog.VerticalFragmentColumns(f), pk)
	}
	return cat.ColumnNamesOf(table.ID)
}

// deadBranchCleanup iteratively promotes any Join node left with exactly
// one child until no more remain (spec.md §4.3).
func deadBranchCleanup(tree *plan.QueryTree) {
	for {
		var dead []*plan.Node
		plan.Walk(tree.Root, func(n *plan.Node) {
			if n.Kind == plan.JoinKind && len(n.Children) == 1 {
				dead = append(dead, n)
			}
		})
		if len(dead) == 0 {
			return
		}
		for _, n := range dead {
			tree.PromoteOnlyChild(n)
		}
	}
}
