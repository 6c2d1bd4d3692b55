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

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoneAlwaysAllows(t *testing.T) {
	n := &None{}
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	require.NoError(t, n.Allowed(r, AllPermissions))
}

func TestSharedSecretRejectsWrongSecret(t *testing.T) {
	s := NewSharedSecret("s3cr3t")
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.RemoteAddr = "203.0.113.10:4321"
	r.Header.Set("Authorization", "wrong")
	require.Error(t, s.Allowed(r, ReadPerm))
}

func TestSharedSecretAcceptsCorrectSecret(t *testing.T) {
	s := NewSharedSecret("s3cr3t")
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.RemoteAddr = "203.0.113.10:4321"
	r.Header.Set("Authorization", "s3cr3t")
	require.NoError(t, s.Allowed(r, ReadPerm))
}

func TestSharedSecretBypassesLoopback(t *testing.T) {
	s := NewSharedSecret("s3cr3t")
	r := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.RemoteAddr = "127.0.0.1:4321"
	require.NoError(t, s.Allowed(r, AllPermissions))
}

func TestPermissionString(t *testing.T) {
	require.Equal(t, "read", ReadPerm.String())
}
