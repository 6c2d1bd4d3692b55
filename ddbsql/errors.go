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

// Package ddbsql implements the restricted SELECT/UPDATE SQL front-end:
// lexing, parsing and column resolution (spec.md §4.1).
package ddbsql

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrParse is returned for a malformed statement, with the offending
	// token's position.
	ErrParse = errors.NewKind("parse error at position %d: %s")
	// ErrResolve is returned when a column reference is ambiguous or
	// unknown against the FROM tables.
	ErrResolve = errors.NewKind("%s")
	// ErrUnsupported is returned for syntax outside the restricted dialect
	// (e.g. a non-integer LIMIT).
	ErrUnsupported = errors.NewKind("unsupported: %s")
)
