// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package efood is the HTTP client for the upstream eFood REST API. The
// dashboard backend never owns category, item or user data; it reads and
// writes it through this client using the API token of the signed-in user.
package efood

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 15 * time.Second

// APIError is returned for any non-2xx upstream response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("efood API error (status %d): %s", e.Status, e.Body)
}

// Message returns the human-readable part of the upstream error body: the
// "message" or "error" field of a JSON body, or the raw body otherwise.
func (e *APIError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal([]byte(e.Body), &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(e.Body)
}

// IsUnauthorized reports whether err is an upstream 401, meaning the
// session's API token is no longer valid.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to the eFood API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do performs a request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("efood marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("efood request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("efood http %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("efood read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("efood unmarshal %s: %w", path, err)
	}
	return nil
}

// Record is a loosely-typed upstream record; field presence is not guaranteed.
type Record = map[string]any

// listEnvelope accepts both a bare array and the {"data": [...]} envelope.
type listEnvelope []Record

func (l *listEnvelope) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Record
		if err := unmarshalNumbers(trimmed, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	var wrapped struct {
		Data []Record `json:"data"`
	}
	if err := unmarshalNumbers(trimmed, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Data
	return nil
}

func unmarshalNumbers(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// list fetches a collection endpoint.
func (c *Client) list(ctx context.Context, path, token string, query url.Values) ([]Record, error) {
	var out listEnvelope
	if err := c.do(ctx, http.MethodGet, path, token, query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return []Record{}, nil
	}
	return out, nil
}
