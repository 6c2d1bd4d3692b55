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

// Package rpc is the wire layer between sites: the JSON condition format
// exchanged in /exec/<verb> bodies, and the HTTP client the planner's
// executor and the 2PC coordinator use to reach a site daemon
// (spec.md §4.4-§4.6).
package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/ddbms-chat/ddbsql/ddbsql"
)

// ConditionWire is the JSON shape of a ddbsql.ConditionNode on the wire: a
// leaf carries lhs/op/rhs, a combinator carries type ("and"/"or") plus
// nested conditions.
type ConditionWire struct {
	LHS        string          `json:"lhs,omitempty"`
	Op         string          `json:"op,omitempty"`
	RHS        string          `json:"rhs,omitempty"`
	Type       string          `json:"type,omitempty"`
	Conditions []ConditionWire `json:"conditions,omitempty"`
}

// EncodeCondition converts a ddbsql.ConditionNode into its wire form. A nil
// node encodes as the zero ConditionWire, which DecodeCondition turns back
// into nil (e.g. a Cartesian Join's nil condition).
func EncodeCondition(node ddbsql.ConditionNode) ConditionWire {
	switch n := node.(type) {
	case ddbsql.Condition:
		return ConditionWire{LHS: n.LHS, Op: n.Op, RHS: n.RHS}
	case ddbsql.ConditionAnd:
		return ConditionWire{Type: "and", Conditions: encodeAll(n.Conditions)}
	case ddbsql.ConditionOr:
		return ConditionWire{Type: "or", Conditions: encodeAll(n.Conditions)}
	default:
		return ConditionWire{}
	}
}

func encodeAll(nodes []ddbsql.ConditionNode) []ConditionWire {
	out := make([]ConditionWire, len(nodes))
	for i, n := range nodes {
		out[i] = EncodeCondition(n)
	}
	return out
}

// DecodeCondition converts a wire condition back into a ddbsql.ConditionNode.
func DecodeCondition(w ConditionWire) (ddbsql.ConditionNode, error) {
	switch w.Type {
	case "":
		if w.Op == "" {
			return nil, nil
		}
		return ddbsql.Condition{LHS: w.LHS, Op: w.Op, RHS: w.RHS}, nil
	case "and":
		children, err := decodeAll(w.Conditions)
		if err != nil {
			return nil, err
		}
		return ddbsql.ConditionAnd{Conditions: children}, nil
	case "or":
		children, err := decodeAll(w.Conditions)
		if err != nil {
			return nil, err
		}
		return ddbsql.ConditionOr{Conditions: children}, nil
	default:
		return nil, fmt.Errorf("rpc: unknown condition type %q", w.Type)
	}
}

func decodeAll(wires []ConditionWire) ([]ddbsql.ConditionNode, error) {
	out := make([]ddbsql.ConditionNode, len(wires))
	for i, w := range wires {
		n, err := DecodeCondition(w)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// MarshalConditionJSON encodes node's wire form as raw JSON. Operation Args
// maps hold EncodeCondition's result directly and are serialized wholesale.
func MarshalConditionJSON(node ddbsql.ConditionNode) json.RawMessage {
	b, _ := json.Marshal(EncodeCondition(node))
	return b
}
