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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpAndLoadRoundTrips(t *testing.T) {
	s := seeded()
	t1, err := s.Get("user_2")
	require.NoError(t, err)

	dump := Dump(t1)
	require.Equal(t, "user_2", dump.SourceName)
	require.NotEmpty(t, dump.Statements)
	require.Contains(t, dump.Statements[0], "user_2")

	dst := NewStore()
	dst.Load(&dump, "q1_1-user_2")

	out, err := dst.Get("q1_1-user_2")
	require.NoError(t, err)
	require.Equal(t, t1.Columns, out.Columns)
	require.Len(t, out.Rows, len(t1.Rows))
}

func TestLoadMaterializesUnderTargetName(t *testing.T) {
	s := seeded()
	t1, err := s.Get("group_1")
	require.NoError(t, err)

	dump := Dump(t1)

	dst := NewStore()
	dst.Load(&dump, "renamed")

	out, err := dst.Get("renamed")
	require.NoError(t, err)
	require.Equal(t, t1.Columns, out.Columns)
	require.Len(t, out.Rows, len(t1.Rows))
}
