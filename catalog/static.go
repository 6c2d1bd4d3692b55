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

// Default is the hand-authored catalog shipped with this repository: four
// sites, four logical tables (user, group, message, group_member) covering
// every fragmentation kind used in spec.md §8's scenarios S1-S4. The
// catalog itself is out of scope (spec.md §1); this is simply the fixture
// a deployment starts from, the way the source system's syscat/*.py module
// hand-authors the same four tables.
func Default() *Catalog {
	sites := []Site{
		{ID: 1, Name: "site-a", IP: "127.0.0.1", Port: 12117, User: "ddb", Password: "secret-a"},
		{ID: 2, Name: "site-b", IP: "127.0.0.1", Port: 12118, User: "ddb", Password: "secret-b"},
		{ID: 3, Name: "site-c", IP: "127.0.0.1", Port: 12119, User: "ddb", Password: "secret-c"},
		{ID: 4, Name: "site-d", IP: "127.0.0.1", Port: 12120, User: "ddb", Password: "secret-d"},
	}

	tables := []Table{
		{ID: 1, Name: "user", FragmentType: Vertical},
		{ID: 2, Name: "group", FragmentType: Horizontal},
		{ID: 3, Name: "message", FragmentType: DerivedHorizontal},
		{ID: 4, Name: "group_member", FragmentType: Unfragmented},
	}

	columns := []Column{
		// user (V: user_1=username,last_seen / user_2=name,status / user_3=phone,email)
		{ID: 1, Name: "id", Table: 1, Type: "int", PK: true, NotNull: true, Unique: true},
		{ID: 2, Name: "username", Table: 1, Type: "str", NotNull: true, Unique: true},
		{ID: 3, Name: "last_seen", Table: 1, Type: "datetime"},
		{ID: 4, Name: "name", Table: 1, Type: "str"},
		{ID: 5, Name: "status", Table: 1, Type: "str"},
		{ID: 6, Name: "phone", Table: 1, Type: "str"},
		{ID: 7, Name: "email", Table: 1, Type: "str"},

		// group (H by id%4)
		{ID: 8, Name: "id", Table: 2, Type: "int", PK: true, NotNull: true, Unique: true},
		{ID: 9, Name: "name", Table: 2, Type: "str", NotNull: true},
		{ID: 10, Name: "created_by", Table: 2, Type: "user"},

		// message (DH parented to group_i)
		{ID: 11, Name: "id", Table: 3, Type: "int", PK: true, NotNull: true, Unique: true},
		{ID: 12, Name: "group", Table: 3, Type: "group", NotNull: true},
		{ID: 13, Name: "author", Table: 3, Type: "user", NotNull: true},
		{ID: 14, Name: "content", Table: 3, Type: "str"},
		{ID: 15, Name: "sent_at", Table: 3, Type: "datetime"},

		// group_member (-)
		{ID: 16, Name: "group", Table: 4, Type: "group", PK: true, NotNull: true},
		{ID: 17, Name: "user", Table: 4, Type: "user", PK: true, NotNull: true},
	}

	fragments := []Fragment{
		{ID: 1, Name: "user_1", Type: Vertical, Logic: "username,last_seen", Parent: 1, Table: 1},
		{ID: 2, Name: "user_2", Type: Vertical, Logic: "name,status", Parent: 2, Table: 1},
		{ID: 3, Name: "user_3", Type: Vertical, Logic: "phone,email", Parent: 3, Table: 1},

		{ID: 4, Name: "group_1", Type: Horizontal, Logic: "id%4==0", Parent: 4, Table: 2},
		{ID: 5, Name: "group_2", Type: Horizontal, Logic: "id%4==1", Parent: 5, Table: 2},
		{ID: 6, Name: "group_3", Type: Horizontal, Logic: "id%4==2", Parent: 6, Table: 2},
		{ID: 7, Name: "group_4", Type: Horizontal, Logic: "id%4==3", Parent: 7, Table: 2},

		{ID: 8, Name: "message_1", Type: DerivedHorizontal, Logic: "group|>group_1", Parent: 4, Table: 3},
		{ID: 9, Name: "message_2", Type: DerivedHorizontal, Logic: "group|>group_2", Parent: 5, Table: 3},
		{ID: 10, Name: "message_3", Type: DerivedHorizontal, Logic: "group|>group_3", Parent: 6, Table: 3},
		{ID: 11, Name: "message_4", Type: DerivedHorizontal, Logic: "group|>group_4", Parent: 7, Table: 3},

		{ID: 12, Name: "group_member_1", Type: Unfragmented, Logic: "", Parent: 12, Table: 4},
	}

	allocations := []Allocation{
		{Fragment: 1, Site: 1},
		{Fragment: 2, Site: 2},
		{Fragment: 3, Site: 3},

		{Fragment: 4, Site: 1},
		{Fragment: 5, Site: 2},
		{Fragment: 6, Site: 3},
		{Fragment: 7, Site: 4},

		{Fragment: 8, Site: 1},
		{Fragment: 9, Site: 2},
		{Fragment: 10, Site: 3},
		{Fragment: 11, Site: 4},

		{Fragment: 12, Site: 1},
	}

	return New(sites, tables, columns, fragments, allocations)
}
