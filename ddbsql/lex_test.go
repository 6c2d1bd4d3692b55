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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexSimpleSelect(t *testing.T) {
	tokens, err := newLexer("SELECT a.id FROM user AS a WHERE a.id = 1;").tokenize()
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}

	require.Equal(t, []TokenType{
		KeywordToken, IdentifierToken, DotToken, IdentifierToken,
		KeywordToken, IdentifierToken, KeywordToken, IdentifierToken,
		KeywordToken, IdentifierToken, DotToken, IdentifierToken,
		OpToken, IntToken, EOFToken,
	}, types)
}

func TestLexStringAndFloat(t *testing.T) {
	tokens, err := newLexer(`WHERE a.name = 'bob' AND a.score > 3.5`).tokenize()
	require.NoError(t, err)

	require.Equal(t, StringToken, tokens[5].Type)
	require.Equal(t, "bob", tokens[5].Value)
	require.Equal(t, FloatToken, tokens[len(tokens)-2].Type)
	require.Equal(t, "3.5", tokens[len(tokens)-2].Value)
}

func TestLexOperators(t *testing.T) {
	tokens, err := newLexer("<= >= != < > =").tokenize()
	require.NoError(t, err)
	var values []string
	for _, tok := range tokens {
		if tok.Type == OpToken {
			values = append(values, tok.Value)
		}
	}
	require.Equal(t, []string{"<=", ">=", "!=", "<", ">", "="}, values)
}

func TestLexLineComment(t *testing.T) {
	tokens, err := newLexer("SELECT * -- trailing comment\nFROM t;").tokenize()
	require.NoError(t, err)
	require.Equal(t, KeywordToken, tokens[0].Type)
	require.Equal(t, StarToken, tokens[1].Type)
	require.Equal(t, KeywordToken, tokens[2].Type)
	require.Equal(t, "FROM", tokens[2].Value)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := newLexer("WHERE a = 'oops").tokenize()
	require.Error(t, err)
}

func TestLexMalformedNumber(t *testing.T) {
	_, err := newLexer("WHERE a = 12abc").tokenize()
	require.Error(t, err)
}

func TestLexBacktickIdentifier(t *testing.T) {
	tokens, err := newLexer("SELECT `group`.id FROM `group`").tokenize()
	require.NoError(t, err)
	require.Equal(t, IdentifierToken, tokens[1].Type)
	require.Equal(t, "group", tokens[1].Value)
}
