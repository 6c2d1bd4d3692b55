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

package plan

import (
	errors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrDisconnected is returned when the FROM relations do not converge
	// to a single root after every WHERE condition has been applied.
	ErrDisconnected = errors.NewKind("query tree is disconnected: relations %v never joined")
	// ErrNoSuchRelation is returned when a condition references a table
	// not present in the FROM list.
	ErrNoSuchRelation = errors.NewKind("condition references unknown relation %q")
)
