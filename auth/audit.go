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
	"time"

	"github.com/sirupsen/logrus"
)

// AuditMethod is called to log the audit trail of site daemon requests.
type AuditMethod interface {
	// Authorization logs an authorization event.
	Authorization(r *http.Request, p Permission, err error)
	// Request logs a completed /exec or /2pc call.
	Request(r *http.Request, verb string, d time.Duration, err error)
}

// NewAudit wraps auth so every Allowed call is also sent to method.
func NewAudit(auth Auth, method AuditMethod) Auth {
	return &Audit{auth: auth, method: method}
}

// Audit is an Auth proxy that reports every check to an AuditMethod.
type Audit struct {
	auth   Auth
	method AuditMethod
}

// Allowed implements Auth.
func (a *Audit) Allowed(r *http.Request, permission Permission) error {
	err := a.auth.Allowed(r, permission)
	a.method.Authorization(r, permission, err)
	return err
}

// NewAuditLog creates an AuditMethod that logs to a logrus.Logger.
func NewAuditLog(l *logrus.Logger) AuditMethod {
	return &AuditLog{log: l.WithField("system", "audit")}
}

const auditLogMessage = "audit trail"

// AuditLog logs audit trails via logrus.
type AuditLog struct {
	log *logrus.Entry
}

// Authorization implements AuditMethod.
func (a *AuditLog) Authorization(r *http.Request, p Permission, err error) {
	fields := logrus.Fields{
		"action":     "authorization",
		"remote":     r.RemoteAddr,
		"path":       r.URL.Path,
		"permission": p.String(),
		"success":    err == nil,
	}
	if err != nil {
		fields["err"] = err
	}
	a.log.WithFields(fields).Info(auditLogMessage)
}

// Request implements AuditMethod.
func (a *AuditLog) Request(r *http.Request, verb string, d time.Duration, err error) {
	fields := logrus.Fields{
		"action":   "request",
		"remote":   r.RemoteAddr,
		"path":     r.URL.Path,
		"verb":     verb,
		"duration": d,
		"success":  err == nil,
	}
	if err != nil {
		fields["err"] = err
	}
	a.log.WithFields(fields).Info(auditLogMessage)
}
