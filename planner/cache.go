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
	"sync"

	"github.com/mitchellh/hashstructure"

	"github.com/ddbms-chat/ddbsql/ddbsql"
	"github.com/ddbms-chat/ddbsql/plan"
)

// cacheEntry holds a resolved query and its built-and-optimized tree. Both
// are qid-less: Linearize still needs to be called with a fresh qid on
// every cache hit, so a hit skips straight past Resolve, Build and Optimize
// and goes directly into Linearize's inputs.
type cacheEntry struct {
	query *ddbsql.SelectQuery
	tree  *plan.QueryTree
}

// Cache memoizes a SQL statement's resolved query and optimized tree,
// keyed by a hash of the raw SQL text, to skip straight to Linearize on a
// repeat of the exact same statement — an exact-match cache, not a
// normalizing one: whitespace or aliasing differences still miss.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64]cacheEntry
}

// NewCache builds an empty plan cache.
func NewCache() *Cache {
	return &Cache{entries: map[uint64]cacheEntry{}}
}

// Key computes sql's structural hash.
func Key(sql string) (uint64, error) {
	return hashstructure.Hash(sql, nil)
}

// Get returns the cached query and tree for key, if present.
func (c *Cache) Get(key uint64) (*ddbsql.SelectQuery, *plan.QueryTree, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil, false
	}
	return e.query, e.tree, true
}

// Put stores query and tree under key.
func (c *Cache) Put(key uint64, query *ddbsql.SelectQuery, tree *plan.QueryTree) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{query: query, tree: tree}
}
