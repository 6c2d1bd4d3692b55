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

package catalog

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFragmentNaming(t *testing.T) {
	c := Default()
	require.NoError(t, c.CheckFragmentNaming())
}

func TestDefaultVerticalCoverage(t *testing.T) {
	c := Default()
	user, err := c.TableByName("user")
	require.NoError(t, err)
	require.NoError(t, c.CheckVerticalCoverage(user.ID))
}

func TestDefaultHorizontalCoverage(t *testing.T) {
	c := Default()
	group, err := c.TableByName("group")
	require.NoError(t, err)

	var samples []map[string]string
	for id := 1; id <= 16; id++ {
		samples = append(samples, map[string]string{"id": strconv.Itoa(id)})
	}

	require.NoError(t, c.CheckHorizontalCoverage(group.ID, samples))
}

func TestSiteOfFragment(t *testing.T) {
	c := Default()
	frag, err := c.FragmentByName("group_3")
	require.NoError(t, err)

	site, err := c.SiteOfFragment(frag.ID)
	require.NoError(t, err)
	require.Equal(t, "site-c", site.Name)
}

func TestUnknownTableByName(t *testing.T) {
	c := Default()
	_, err := c.TableByName("usr")
	require.Error(t, err)
}

func TestDerivedHorizontalSpec(t *testing.T) {
	frag, err := Default().FragmentByName("message_3")
	require.NoError(t, err)

	fk, parent, ok := DerivedHorizontalSpec(frag)
	require.True(t, ok)
	require.Equal(t, "group", fk)
	require.Equal(t, "group_3", parent)
}
