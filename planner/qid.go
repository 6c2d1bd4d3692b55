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
	"strings"

	uuid "github.com/satori/go.uuid"
)

// NewQID mints a query identifier: a random token plus the originating
// site id, tagging every intermediate this query creates at every site
// (spec.md's Query entities lifecycle note).
func NewQID(originSiteID int) string {
	token := strings.ReplaceAll(uuid.NewV4().String(), "-", "")[:12]
	return fmt.Sprintf("q%s_s%d", token, originSiteID)
}
