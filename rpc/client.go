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

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/ddbms-chat/ddbsql/catalog"
)

// ErrRemoteFailed wraps a non-OK response from a site daemon.
var ErrRemoteFailed = errors.NewKind("site %s returned %d: %s")

// Client is the HTTP client every remote call to a site daemon goes
// through: retried transport, shared-secret auth, and an opentracing span
// per call (spec.md §4.6's authentication model).
type Client struct {
	http   *retryablehttp.Client
	secret string
	log    *logrus.Entry
}

// NewClient builds a Client. secret is sent verbatim as the Authorization
// header on every request (loopback bypass is the site daemon's concern,
// not the caller's).
func NewClient(secret string, log *logrus.Entry) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.RetryMax = 3
	// Only transport errors are retried; a non-OK response from a site is
	// returned to the caller as ErrRemoteFailed.
	rc.CheckRetry = func(ctx context.Context, _ *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return err != nil, nil
	}
	rc.Logger = nil
	if log != nil {
		rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				log.WithFields(logrus.Fields{"url": req.URL.String(), "attempt": attempt}).Warn("retrying site rpc")
			}
		}
	}
	return &Client{http: rc, secret: secret, log: log}
}

func siteURL(site catalog.Site, format string, args ...interface{}) string {
	return fmt.Sprintf("http://%s:%d%s", site.IP, site.Port, fmt.Sprintf(format, args...))
}

func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "rpc."+method)
	defer span.Finish()
	span.SetTag("rpc.url", url)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return ErrRemoteFailed.New(url, resp.StatusCode, string(payload))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Ping checks that a site daemon is reachable.
func (c *Client) Ping(ctx context.Context, site catalog.Site) error {
	return c.do(ctx, http.MethodGet, siteURL(site, "/ping"), nil, nil)
}

// Exec posts one plan operation's args to /exec/<verb>.
func (c *Client) Exec(ctx context.Context, site catalog.Site, verb string, args map[string]interface{}) error {
	return c.do(ctx, http.MethodPost, siteURL(site, "/exec/%s", verb), args, nil)
}

// RelationDump is the DDL+DML dump format returned by /fetch/<relation>, to
// be rewritten and replayed locally by the fetch verb (spec.md §4.6).
type RelationDump struct {
	SourceName string   `json:"source_name"`
	Statements []string `json:"statements"`
	Rows       [][]any  `json:"rows,omitempty"`
	Columns    []string `json:"columns,omitempty"`
}

// Fetch pulls a relation's dump from site.
func (c *Client) Fetch(ctx context.Context, site catalog.Site, relation string) (*RelationDump, error) {
	var dump RelationDump
	if err := c.do(ctx, http.MethodGet, siteURL(site, "/fetch/%s", relation), nil, &dump); err != nil {
		return nil, err
	}
	return &dump, nil
}

// Cleanup drops every table at site whose name begins with qid.
func (c *Client) Cleanup(ctx context.Context, site catalog.Site, qid string) error {
	return c.do(ctx, http.MethodPost, siteURL(site, "/cleanup/%s", qid), nil, nil)
}

// PrepareRequest is the 2PC prepare body: the fragment-local UPDATE text.
type PrepareRequest struct {
	TxID  string `json:"tx_id"`
	Table string `json:"table"`
	SQL   string `json:"sql"`
}

// PrepareResponse is a participant's vote.
type PrepareResponse struct {
	VoteCommit bool   `json:"vote_commit"`
	Reason     string `json:"reason,omitempty"`
}

// Prepare asks a participant to stage txID's write and vote.
func (c *Client) Prepare(ctx context.Context, site catalog.Site, req PrepareRequest) (*PrepareResponse, error) {
	var resp PrepareResponse
	if err := c.do(ctx, http.MethodPost, siteURL(site, "/2pc/prepare"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GlobalCommit instructs a participant to make txID's shadow table durable.
func (c *Client) GlobalCommit(ctx context.Context, site catalog.Site, txID string) error {
	return c.do(ctx, http.MethodPost, siteURL(site, "/2pc/global-commit"), map[string]string{"tx_id": txID}, nil)
}

// GlobalAbort instructs a participant to discard txID's shadow table.
func (c *Client) GlobalAbort(ctx context.Context, site catalog.Site, txID string) error {
	return c.do(ctx, http.MethodPost, siteURL(site, "/2pc/global-abort"), map[string]string{"tx_id": txID}, nil)
}
