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

// Package similartext renders "maybe you mean X?" hints for unresolved
// table/column names, appended to ResolveError messages.
package similartext

import (
	"sort"
	"strings"

	"github.com/ddbms-chat/ddbsql/internal/text_distance"
)

// maxDistance bounds how different a name can be from target and still be
// suggested; beyond this the names are considered unrelated.
const maxDistance = 3

// Find returns a ", maybe you mean X?" (or "X or Y?") suffix listing every
// name tied for the closest edit distance to target, or "" if target is
// empty, names is empty, or nothing is within maxDistance.
func Find(names []string, target string) string {
	if target == "" || len(names) == 0 {
		return ""
	}

	best := closest(names, target)
	if len(best) == 0 {
		return ""
	}

	return ", maybe you mean " + strings.Join(best, " or ") + "?"
}

// FindFromMap is Find over a map's keys.
func FindFromMap[V any](names map[string]V, target string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Find(keys, target)
}

func closest(names []string, target string) []string {
	bestDist := maxDistance + 1
	var best []string

	for _, n := range names {
		d := text_distance.Levenshtein(n, target)
		switch {
		case d < bestDist:
			bestDist = d
			best = []string{n}
		case d == bestDist:
			best = append(best, n)
		}
	}

	if bestDist > maxDistance {
		return nil
	}

	return best
}
