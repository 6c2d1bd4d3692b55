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

// Package text_distance computes Levenshtein edit distance between short
// identifiers (table, column, fragment names) and finds the closest match.
package text_distance

// Levenshtein returns the edit distance between a and b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)

	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost

			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}

	return prev[lb]
}

// FindSimilarName returns the name in names closest to target by edit
// distance. An empty target returns the first name; an empty names list
// returns "".
func FindSimilarName(names []string, target string) string {
	if len(names) == 0 {
		return ""
	}
	if target == "" {
		return names[0]
	}

	best := names[0]
	bestDist := Levenshtein(names[0], target)

	for _, n := range names[1:] {
		if d := Levenshtein(n, target); d < bestDist {
			best, bestDist = n, d
		}
	}

	return best
}

// FindSimilarNameFromMap is FindSimilarName over a map's keys.
func FindSimilarNameFromMap[V any](names map[string]V, target string) string {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}

	return FindSimilarName(keys, target)
}
