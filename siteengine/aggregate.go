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

package siteengine

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/ddbms-chat/ddbsql/ddbsql"
)

// projectGrouped implements the grouped form of the project verb: rows are
// bucketed by groupBy, each select column is either a bare group-by column
// or an aggregate "f(col)" form, and having filters the resulting groups.
func (s *Store) projectGrouped(t *Table, columns []string, groupBy []string, having ddbsql.ConditionNode, target string) error {
	gIdx, err := columnIndexes(t.Columns, groupBy)
	if err != nil {
		return err
	}

	type bucket struct {
		key  []interface{}
		rows [][]interface{}
	}
	order := make([]string, 0)
	buckets := map[string]*bucket{}
	for _, values := range t.Rows {
		key := pick(values, gIdx)
		k := fmt.Sprint(key)
		b, ok := buckets[k]
		if !ok {
			b = &bucket{key: key}
			buckets[k] = b
			order = append(order, k)
		}
		b.rows = append(b.rows, values)
	}

	outCols := make([]string, len(columns))
	for i, col := range columns {
		if fn, arg, isAgg := splitAggregate(col); isAgg {
			outCols[i] = fn + "(" + plainName(arg) + ")"
		} else {
			outCols[i] = plainName(col)
		}
	}
	var outRows [][]interface{}
	for _, k := range order {
		b := buckets[k]
		groupRow := toRow(plainNames(groupBy), b.key)
		out := make([]interface{}, len(columns))
		for i, col := range columns {
			fn, arg, isAgg := splitAggregate(col)
			if !isAgg {
				if v, ok := groupRow[plainName(col)]; ok {
					out[i] = v
				}
				continue
			}
			out[i] = applyAggregate(fn, arg, t.Columns, b.rows)
		}

		if having != nil {
			aggRow := toRow(outCols, out)
			for k, v := range groupRow {
				if _, exists := aggRow[k]; !exists {
					aggRow[k] = v
				}
			}
			ok, err := EvalCondition(having, aggRow)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}

		outRows = append(outRows, out)
	}

	s.put(&Table{Name: target, Columns: outCols, Rows: outRows})
	return nil
}

// splitAggregate recognizes the "FN(col)" form an aggregate select column
// takes; a bare column name (no trailing parens) is not an aggregate.
func splitAggregate(col string) (fn string, arg string, isAgg bool) {
	open := strings.IndexByte(col, '(')
	if open < 0 || col[len(col)-1] != ')' {
		return "", "", false
	}
	return strings.ToUpper(col[:open]), col[open+1 : len(col)-1], true
}

func applyAggregate(fn, arg string, columns []string, rows [][]interface{}) interface{} {
	switch fn {
	case "COUNT":
		return len(rows)
	case "SUM":
		var sum float64
		for _, r := range rows {
			sum += cast.ToFloat64(columnValue(columns, r, arg))
		}
		return sum
	case "AVG":
		if len(rows) == 0 {
			return 0.0
		}
		var sum float64
		for _, r := range rows {
			sum += cast.ToFloat64(columnValue(columns, r, arg))
		}
		return sum / float64(len(rows))
	case "MIN":
		var min float64
		for i, r := range rows {
			v := cast.ToFloat64(columnValue(columns, r, arg))
			if i == 0 || v < min {
				min = v
			}
		}
		return min
	case "MAX":
		var max float64
		for i, r := range rows {
			v := cast.ToFloat64(columnValue(columns, r, arg))
			if i == 0 || v > max {
				max = v
			}
		}
		return max
	default:
		return nil
	}
}

func columnValue(columns []string, values []interface{}, col string) interface{} {
	col = plainName(col)
	for i, c := range columns {
		if c == col {
			return values[i]
		}
	}
	return nil
}
