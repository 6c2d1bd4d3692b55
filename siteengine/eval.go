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

// row is one table row addressed by column name, the shape every verb
// evaluates a select_condition/join_condition against.
type row map[string]interface{}

// EvalCondition evaluates cond against row, coercing operands with
// spf13/cast the same way catalog.EvalHorizontalPredicate does for
// fragmentation predicates.
func EvalCondition(cond ddbsql.ConditionNode, r row) (bool, error) {
	switch c := cond.(type) {
	case nil:
		return true, nil
	case ddbsql.Condition:
		return evalComparison(c, r)
	case ddbsql.ConditionAnd:
		for _, child := range c.Conditions {
			ok, err := EvalCondition(child, r)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case ddbsql.ConditionOr:
		for _, child := range c.Conditions {
			ok, err := EvalCondition(child, r)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("siteengine: unrecognized condition node %T", cond)
	}
}

func evalComparison(c ddbsql.Condition, r row) (bool, error) {
	lhs := resolveOperand(c.LHS, r)
	rhs := resolveOperand(c.RHS, r)

	if lf, lok := cast.ToFloat64E(lhs); lok == nil {
		if rf, rok := cast.ToFloat64E(rhs); rok == nil {
			return compareFloat(c.Op, lf, rf)
		}
	}
	return compareString(c.Op, cast.ToString(lhs), cast.ToString(rhs))
}

// resolveOperand turns an operand string into a Go value: a quoted string
// literal, a bare numeric literal, a (possibly table-qualified) column
// reference resolved against row, or an aggregate "f(col)" looked up under
// the "F(col)" name a grouped project gives it.
func resolveOperand(operand string, r row) interface{} {
	if len(operand) >= 2 && operand[0] == '\'' && operand[len(operand)-1] == '\'' {
		return operand[1 : len(operand)-1]
	}
	if _, err := cast.ToFloat64E(operand); err == nil && looksNumeric(operand) {
		return operand
	}
	if fn, arg, isAgg := splitAggregate(operand); isAgg {
		if v, ok := r[fn+"("+plainName(arg)+")"]; ok {
			return v
		}
	}
	col := operand
	if dot := strings.LastIndexByte(operand, '.'); dot >= 0 {
		col = operand[dot+1:]
	}
	if v, ok := r[col]; ok {
		return v
	}
	return operand
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '.' || (r == '-' && i == 0) {
			continue
		}
		return false
	}
	return true
}

func compareFloat(op string, a, b float64) (bool, error) {
	switch op {
	case "=":
		return a == b, nil
	case "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	default:
		return false, fmt.Errorf("siteengine: unsupported operator %q", op)
	}
}

func compareString(op string, a, b string) (bool, error) {
	switch op {
	case "=":
		return a == b, nil
	case "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	default:
		return false, fmt.Errorf("siteengine: unsupported operator %q", op)
	}
}

func toRow(columns []string, values []interface{}) row {
	r := make(row, len(columns))
	for i, c := range columns {
		if i < len(values) {
			r[c] = values[i]
		}
	}
	return r
}
