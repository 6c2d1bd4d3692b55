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
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"os"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrParseSecretsFile is given when a secrets file is malformed.
var ErrParseSecretsFile = errors.NewKind("error parsing secrets file: %s")

// SharedSecret is the site daemon's native Auth method: it accepts any of a
// known set of secrets carried in the Authorization header, and exempts
// loopback callers entirely (spec.md §4.6). Multiple secrets let an
// operator rotate the cluster secret without a synchronized restart.
type SharedSecret struct {
	secrets [][]byte
}

// NewSharedSecret builds a SharedSecret accepting exactly one secret value.
func NewSharedSecret(secret string) *SharedSecret {
	return &SharedSecret{secrets: [][]byte{[]byte(secret)}}
}

// LoadSharedSecrets reads a JSON array of secret strings from path (the
// rotation list: old and new secret both valid during a rollout).
func LoadSharedSecrets(path string) (*SharedSecret, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw []string
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, ErrParseSecretsFile.New(err.Error())
	}

	s := &SharedSecret{}
	for _, secret := range raw {
		s.secrets = append(s.secrets, []byte(secret))
	}
	return s, nil
}

// Allowed implements Auth: loopback callers are always allowed; everyone
// else must present a header matching one of the known secrets.
func (s *SharedSecret) Allowed(r *http.Request, permission Permission) error {
	if isLoopback(r) {
		return nil
	}

	got := []byte(r.Header.Get("Authorization"))
	for _, want := range s.secrets {
		if subtle.ConstantTimeCompare(got, want) == 1 {
			return nil
		}
	}
	return ErrNotAuthorized.New()
}

// isLoopback reports whether r's remote address is the local host.
func isLoopback(r *http.Request) bool {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
