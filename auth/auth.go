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

// Package auth authenticates inbound requests to a site daemon: a shared
// secret carried in the Authorization header, with loopback callers
// exempted (spec.md §4.6).
package auth

import (
	"net/http"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Permission holds the permissions required by an endpoint or granted to a caller.
type Permission int

const (
	// ReadPerm covers /ping, /fetch and read-only exec verbs.
	ReadPerm Permission = 1 << iota
	// WritePerm covers the 2PC endpoints and mutating exec verbs.
	WritePerm
)

var (
	// AllPermissions holds every defined permission.
	AllPermissions = ReadPerm | WritePerm
	// DefaultPermissions are granted once a caller authenticates with the
	// shared secret: there is no finer-grained per-user model at site level.
	DefaultPermissions = AllPermissions

	// PermissionNames translates between human and machine representations.
	PermissionNames = map[string]Permission{
		"read":  ReadPerm,
		"write": WritePerm,
	}

	// ErrNotAuthorized is returned when a caller fails the shared-secret check.
	ErrNotAuthorized = errors.NewKind("not authorized")
	// ErrNoPermission is returned when an authenticated caller lacks a
	// needed permission.
	ErrNoPermission = errors.NewKind("caller does not have permission: %s")
)

// String returns the permissions set to on, comma-separated.
func (p Permission) String() string {
	var str []string
	for k, v := range PermissionNames {
		if p&v != 0 {
			str = append(str, k)
		}
	}
	return strings.Join(str, ", ")
}

// Auth authenticates an inbound HTTP request and checks it against a
// required permission.
type Auth interface {
	// Allowed checks whether r is authorized for permission. Loopback
	// callers (implementations decide the rule) may be exempted.
	Allowed(r *http.Request, permission Permission) error
}
