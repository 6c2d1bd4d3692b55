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

package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/plan"
	"github.com/ddbms-chat/ddbsql/rpc"
)

// relState is the (site, name) a subtree currently resolves to, plus the
// provenance set of original fragment names that fed into it — the
// ingredient for the "<qid>_<step>-<fragments>" naming scheme.
type relState struct {
	Site      int
	Name      string
	Fragments []string
}

type linearizer struct {
	qid   string
	step  int
	ops   []Operation
	memo  map[*plan.Node]*relState
	query *ddbsql.SelectQuery
	root  *plan.Node
}

// Linearize walks tree bottom-up and emits the ordered Operation list that
// realizes it (spec.md §4.4). query supplies GroupBy/Having, carried on the
// final project operation only. qid tags every intermediate relation name.
func Linearize(tree *plan.QueryTree, query *ddbsql.SelectQuery, qid string) ([]Operation, Result, error) {
	l := &linearizer{
		qid:   qid,
		memo:  map[*plan.Node]*relState{},
		query: query,
		root:  tree.Root,
	}
	final, err := l.resolve(tree.Root)
	if err != nil {
		return nil, Result{}, err
	}
	return l.ops, Result{SiteID: final.Site, Name: final.Name}, nil
}

func (l *linearizer) resolve(n *plan.Node) (*relState, error) {
	if rs, ok := l.memo[n]; ok {
		return rs, nil
	}

	var rs *relState
	var err error

	switch n.Kind {
	case plan.RelationKind:
		rs = &relState{Site: n.Site, Name: n.RelationName, Fragments: []string{n.RelationName}}

	case plan.SelectionKind:
		rs, err = l.resolveSelection(n)

	case plan.ProjectionKind:
		rs, err = l.resolveProjection(n)

	case plan.JoinKind:
		rs, err = l.resolveBinary(n, "join")

	case plan.UnionKind:
		rs, err = l.resolveBinary(n, "union")

	default:
		return nil, fmt.Errorf("planner: unknown node kind %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}

	l.memo[n] = rs
	return rs, nil
}

func (l *linearizer) resolveSelection(n *plan.Node) (*relState, error) {
	child, err := l.resolve(n.Children[0])
	if err != nil {
		return nil, err
	}
	name := l.nextName(child.Fragments)
	l.emit(child.Site, "select", map[string]interface{}{
		"relation_name":    child.Name,
		"select_condition": rpc.EncodeCondition(n.Condition),
		"target":           name,
	}, name)
	return &relState{Site: child.Site, Name: name, Fragments: child.Fragments}, nil
}

func (l *linearizer) resolveProjection(n *plan.Node) (*relState, error) {
	child, err := l.resolve(n.Children[0])
	if err != nil {
		return nil, err
	}
	name := l.nextName(child.Fragments)
	args := map[string]interface{}{
		"relation_name":   child.Name,
		"project_columns": n.Columns,
		"target":          name,
	}
	if n == l.root {
		if len(l.query.GroupBy) > 0 {
			args["group_by"] = l.query.GroupBy
		}
		if l.query.Having != nil {
			args["having"] = rpc.EncodeCondition(l.query.Having)
		}
	}
	l.emit(child.Site, "project", args, name)
	return &relState{Site: child.Site, Name: name, Fragments: child.Fragments}, nil
}

func (l *linearizer) resolveBinary(n *plan.Node, verb string) (*relState, error) {
	a, err := l.resolve(n.Children[0])
	if err != nil {
		return nil, err
	}
	b, err := l.resolve(n.Children[1])
	if err != nil {
		return nil, err
	}

	fragments := mergeUnique(a.Fragments, b.Fragments)
	bName := b.Name

	if a.Site != b.Site {
		fetchName := l.nextName(b.Fragments)
		l.emit(a.Site, "fetch", map[string]interface{}{
			"relation_name":        b.Name,
			"site_id":              b.Site,
			"target_relation_name": fetchName,
		}, fetchName)
		bName = fetchName
	}

	name := l.nextName(fragments)
	args := map[string]interface{}{
		"relation1_name": a.Name,
		"relation2_name": bName,
		"target":         name,
	}
	if verb == "join" {
		args["join_condition"] = rpc.EncodeCondition(n.Condition)
	}
	l.emit(a.Site, verb, args, name)

	return &relState{Site: a.Site, Name: name, Fragments: fragments}, nil
}

func (l *linearizer) emit(site int, verb string, args map[string]interface{}, name string) {
	l.ops = append(l.ops, Operation{SiteID: site, Verb: verb, Args: args, OutputName: name})
}

// nextName implements "<qid>_<step>-<sorted-unique-fragment-names>".
func (l *linearizer) nextName(fragments []string) string {
	l.step++
	sorted := append([]string(nil), fragments...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s_%d-%s", l.qid, l.step, strings.Join(sorted, ","))
}

func mergeUnique(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
