// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gateway is the HTTP client for the remote ledger gateway: the
// info endpoint, the by-height block endpoint, and the cursor-based
// record query endpoint. All requests pass through a shared rate
// limiter so scans stay polite toward the externally-owned source.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
	"github.com/AleutianAI/weavescan/services/scanner/observability"
)

// HTTPClient interface allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultRequestsPerSecond paces gateway calls when no explicit rate is
// configured. The gateway rate-limits aggressively; four per second has
// proven safe.
const DefaultRequestsPerSecond = 4

// Client talks to one remote ledger gateway.
type Client struct {
	baseURL string
	http    HTTPClient
	limiter *rate.Limiter
}

// NewClient builds a gateway client. A nil httpClient falls back to a
// default client with a 30s timeout; rps <= 0 falls back to
// DefaultRequestsPerSecond.
func NewClient(baseURL string, httpClient HTTPClient, rps float64) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Info returns the gateway's current frontier.
func (c *Client) Info(ctx context.Context) (datatypes.NetworkInfo, error) {
	var info datatypes.NetworkInfo
	err := c.getJSON(ctx, "/info", &info)
	return info, err
}

// BlockByHeight fetches one block header.
func (c *Client) BlockByHeight(ctx context.Context, height int64) (datatypes.Block, error) {
	var block datatypes.Block
	err := c.getJSON(ctx, "/block/height/"+strconv.FormatInt(height, 10), &block)
	return block, err
}

// QueryPage runs one page of a cursor-based record query.
func (c *Client) QueryPage(ctx context.Context, q datatypes.RecordQuery) (datatypes.RecordPage, error) {
	var page datatypes.RecordPage
	err := c.postJSON(ctx, "/records/query", q, &page)
	return page, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	// The limiter wait is the politeness delay between consecutive
	// requests of a scan; it is also a cancellation point.
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	observability.RecordGatewayRequest(path, err == nil)
	if err != nil {
		return fmt.Errorf("gateway request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the transport can reuse the connection.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gateway request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
