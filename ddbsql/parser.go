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

package ddbsql

import (
	"fmt"
	"strconv"
	"strings"
)

// rawTableRef is a FROM-clause entry before alias resolution.
type rawTableRef struct {
	Name  string
	Alias string // equal to Name if no alias was given
}

// rawQuery is the parser's output before column resolution (ddbsql.Resolve).
type rawQuery struct {
	Columns []string // alias.col, bare col, or "f(alias.col)"; "*" expands later
	Tables  []rawTableRef
	Where   ConditionNode // nil if no WHERE/ON conditions at all
	GroupBy []string
	Having  ConditionNode
	Limit   *int
}

// parser is a recursive-descent parser over the token stream produced by
// lexer, in the spirit of this corpus's hand-rolled SQL front ends rather
// than a general-purpose grammar library (spec.md §4.1's dialect is a
// handful of productions).
type parser struct {
	tokens []Token
	pos    int
}

func newParser(tokens []Token) *parser {
	return &parser{tokens: tokens}
}

func (p *parser) cur() Token  { return p.tokens[p.pos] }
func (p *parser) atEOF() bool { return p.cur().Type == EOFToken }

func (p *parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expectKeyword(kw string) error {
	t := p.cur()
	if t.Type != KeywordToken || t.Value != kw {
		return ErrParse.New(t.Pos, fmt.Sprintf("expected %s, got %q", kw, t.Value))
	}
	p.advance()
	return nil
}

func (p *parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Type == KeywordToken && t.Value == kw
}

// ParseSelect parses a restricted SELECT statement into its raw (pre-resolution) form.
func ParseSelect(sql string) (*rawQuery, error) {
	lx := newLexer(sql)
	tokens, err := lx.tokenize()
	if err != nil {
		return nil, err
	}

	p := newParser(tokens)
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	q := &rawQuery{}

	columns, err := p.parseColumnList()
	if err != nil {
		return nil, err
	}
	q.Columns = columns

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}

	tables, err := p.parseTableList()
	if err != nil {
		return nil, err
	}
	q.Tables = tables

	var joinConditions []ConditionNode
	for p.isKeyword("INNER") || p.isKeyword("JOIN") {
		if p.isKeyword("INNER") {
			p.advance()
		}
		if err := p.expectKeyword("JOIN"); err != nil {
			return nil, err
		}
		joinTable, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		q.Tables = append(q.Tables, joinTable)

		if err := p.expectKeyword("ON"); err != nil {
			return nil, err
		}
		cond, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		joinConditions = append(joinConditions, cond)
	}

	if p.isKeyword("WHERE") {
		p.advance()
		where, err := p.parseConditionList()
		if err != nil {
			return nil, err
		}
		joinConditions = append(joinConditions, where)
	}

	if len(joinConditions) > 0 {
		q.Where = combineAnd(joinConditions)
	}

	if p.isKeyword("GROUP") {
		p.advance()
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = cols
	}

	if p.isKeyword("HAVING") {
		p.advance()
		having, err := p.parseConditionList()
		if err != nil {
			return nil, err
		}
		q.Having = having
	}

	if p.isKeyword("LIMIT") {
		p.advance()
		t := p.cur()
		if t.Type != IntToken {
			return nil, ErrUnsupported.New(fmt.Sprintf("LIMIT requires an integer literal, got %q", t.Value))
		}
		p.advance()
		n, _ := strconv.Atoi(t.Value)
		q.Limit = &n
	}

	if !p.atEOF() {
		return nil, ErrParse.New(p.cur().Pos, fmt.Sprintf("unexpected trailing token %q", p.cur().Value))
	}

	return q, nil
}

// combineAnd merges a set of already-parsed condition trees (WHERE plus any
// flattened JOIN...ON conditions) into one normalized ConditionAnd; a single
// condition is returned normalized but not wrapped.
func combineAnd(conditions []ConditionNode) ConditionNode {
	if len(conditions) == 1 {
		return Normalize(conditions[0])
	}
	return Normalize(ConditionAnd{Conditions: conditions})
}

func (p *parser) parseColumnList() ([]string, error) {
	if p.cur().Type == StarToken {
		p.advance()
		return []string{"*"}, nil
	}

	var columns []string
	for {
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)

		if p.cur().Type != CommaToken {
			break
		}
		p.advance()
	}
	return columns, nil
}

// parseColumnRef parses "alias.col", bare "col", or "f(alias.col)".
func (p *parser) parseColumnRef() (string, error) {
	t := p.cur()
	if t.Type != IdentifierToken {
		return "", ErrParse.New(t.Pos, fmt.Sprintf("expected column reference, got %q", t.Value))
	}
	p.advance()

	if p.cur().Type == LeftParenToken {
		// aggregate function: f(col) or f(alias.col)
		p.advance()
		inner, err := p.parseDottedName()
		if err != nil {
			return "", err
		}
		if p.cur().Type != RightParenToken {
			return "", ErrParse.New(p.cur().Pos, "expected ')'")
		}
		p.advance()
		return fmt.Sprintf("%s(%s)", t.Value, inner), nil
	}

	if p.cur().Type == DotToken {
		p.advance()
		col := p.cur()
		if col.Type != IdentifierToken && col.Type != KeywordToken {
			return "", ErrParse.New(col.Pos, "expected column name after '.'")
		}
		p.advance()
		name := col.Value
		if col.Type == KeywordToken {
			name = strings.ToLower(name)
		}
		return fmt.Sprintf("%s.%s", t.Value, name), nil
	}

	return t.Value, nil
}

// parseDottedName parses "a" or "a.b" as a single name (used inside
// aggregate parens and ON/WHERE operands).
func (p *parser) parseDottedName() (string, error) {
	t := p.cur()
	if t.Type != IdentifierToken {
		return "", ErrParse.New(t.Pos, fmt.Sprintf("expected identifier, got %q", t.Value))
	}
	p.advance()
	name := t.Value

	if p.cur().Type == DotToken {
		p.advance()
		col := p.cur()
		if col.Type != IdentifierToken && col.Type != KeywordToken {
			return "", ErrParse.New(col.Pos, "expected column name after '.'")
		}
		p.advance()
		if col.Type == KeywordToken {
			name = name + "." + strings.ToLower(col.Value)
		} else {
			name = name + "." + col.Value
		}
	}
	return name, nil
}

func (p *parser) parseIdentifierList() ([]string, error) {
	var names []string
	for {
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.cur().Type != CommaToken {
			break
		}
		p.advance()
	}
	return names, nil
}

func (p *parser) parseTableList() ([]rawTableRef, error) {
	var tables []rawTableRef
	for {
		ref, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		tables = append(tables, ref)
		if p.cur().Type != CommaToken {
			break
		}
		p.advance()
	}
	return tables, nil
}

func (p *parser) parseTableRef() (rawTableRef, error) {
	t := p.cur()
	if t.Type != IdentifierToken {
		return rawTableRef{}, ErrParse.New(t.Pos, fmt.Sprintf("expected table name, got %q", t.Value))
	}
	p.advance()
	ref := rawTableRef{Name: t.Value, Alias: t.Value}

	if p.isKeyword("AS") {
		p.advance()
		alias := p.cur()
		if alias.Type != IdentifierToken {
			return rawTableRef{}, ErrParse.New(alias.Pos, "expected alias after AS")
		}
		p.advance()
		ref.Alias = alias.Value
	} else if p.cur().Type == IdentifierToken {
		ref.Alias = p.advance().Value
	}

	return ref, nil
}

// parseConditionList parses a CNF-style condition list: comparisons and
// parenthesized sub-expressions joined by AND/OR keywords (spec.md §4.1).
func (p *parser) parseConditionList() (ConditionNode, error) {
	var conditions []ConditionNode
	combiner := "AND" // default/only combiner seen so far

	for {
		var cond ConditionNode
		var err error

		if p.cur().Type == LeftParenToken {
			p.advance()
			cond, err = p.parseConditionList()
			if err != nil {
				return nil, err
			}
			if p.cur().Type != RightParenToken {
				return nil, ErrParse.New(p.cur().Pos, "expected ')'")
			}
			p.advance()
		} else {
			cond, err = p.parseComparison()
			if err != nil {
				return nil, err
			}
		}
		conditions = append(conditions, cond)

		if p.isKeyword("AND") {
			combiner = "AND"
			p.advance()
			continue
		}
		if p.isKeyword("OR") {
			combiner = "OR"
			p.advance()
			continue
		}
		break
	}

	if len(conditions) == 1 {
		return conditions[0], nil
	}
	if combiner == "OR" {
		return ConditionOr{Conditions: conditions}, nil
	}
	return ConditionAnd{Conditions: conditions}, nil
}

func (p *parser) parseComparison() (Condition, error) {
	lhs, err := p.parseDottedName()
	if err != nil {
		return Condition{}, err
	}
	if p.cur().Type == LeftParenToken {
		// aggregate function: f(col) or f(alias.col)
		p.advance()
		inner, err := p.parseDottedName()
		if err != nil {
			return Condition{}, err
		}
		if p.cur().Type != RightParenToken {
			return Condition{}, ErrParse.New(p.cur().Pos, "expected ')'")
		}
		p.advance()
		lhs = fmt.Sprintf("%s(%s)", lhs, inner)
	}

	op := p.cur()
	if op.Type != OpToken {
		return Condition{}, ErrParse.New(op.Pos, fmt.Sprintf("expected comparison operator, got %q", op.Value))
	}
	p.advance()

	rhs, err := p.parseOperand()
	if err != nil {
		return Condition{}, err
	}

	return Condition{LHS: lhs, Op: op.Value, RHS: rhs}, nil
}

// parseOperand parses the right-hand side of a comparison: a literal
// (string/int/float) or a dotted column reference.
func (p *parser) parseOperand() (string, error) {
	t := p.cur()
	switch t.Type {
	case StringToken:
		p.advance()
		return "'" + t.Value + "'", nil
	case IntToken, FloatToken:
		p.advance()
		return t.Value, nil
	case IdentifierToken:
		return p.parseDottedName()
	default:
		return "", ErrParse.New(t.Pos, fmt.Sprintf("expected operand, got %q", t.Value))
	}
}

// ParseUpdate extracts the table name from an UPDATE statement without
// rewriting it: the 2PC coordinator (txn package) forwards the SQL text
// verbatim to each fragment, only swapping the table identifier.
func ParseUpdate(sql string) (UpdateStatement, error) {
	fields := strings.Fields(strings.TrimSpace(sql))
	if len(fields) < 2 || strings.ToUpper(fields[0]) != "UPDATE" {
		return UpdateStatement{}, ErrParse.New(0, "expected UPDATE statement")
	}
	table := strings.Trim(fields[1], "`")
	return UpdateStatement{Table: table, SQL: sql}, nil
}
