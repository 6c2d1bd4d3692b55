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

// Package planner linearizes an optimized, localized query tree into an
// ordered list of site operations (spec.md §4.4).
package planner

// Operation is one step of an execution plan: run Verb at SiteID with Args,
// materializing its result as OutputName.
type Operation struct {
	SiteID     int
	Verb       string
	Args       map[string]interface{}
	OutputName string
}

// Result is the plan's final materialized relation, still sitting at the
// site that produced it until the executor fetches it to the originator.
type Result struct {
	SiteID int
	Name   string
}
