// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements the resilient request layer of the Letta
// API client: typed operations, cursor pagination, server-sent-event
// streaming, and error classification with bounded retry.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/go-letta/letta"
)

// Client is a Letta API client. It is safe for concurrent use; its
// configuration is immutable after New.
type Client struct {
	opts *options

	// API surfaces.
	Agents   *AgentsAPI
	Memory   *MemoryAPI
	Messages *MessagesAPI
}

// New creates a new client.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.baseURL == "" {
		return nil, &APIError{Kind: KindValidation, Message: "base URL is required"}
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	if o.streamClient == nil {
		o.streamClient = &http.Client{Transport: o.httpClient.Transport}
	}

	c := &Client{opts: o}
	c.Agents = &AgentsAPI{client: c}
	c.Memory = &MemoryAPI{client: c}
	c.Messages = &MessagesAPI{client: c}
	return c, nil
}

// RequestOption adjusts one API call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	idempotent     bool
	idempotencyKey string
}

// Idempotent marks a write operation as safe to re-issue, making it
// eligible for retry. The client attaches an Idempotency-Key header,
// generated once per call and reused verbatim across retry attempts,
// so the server can deduplicate re-issued writes. Reads are always
// retry-eligible and need no flag.
func Idempotent() RequestOption {
	return func(ro *requestOptions) {
		ro.idempotent = true
		ro.idempotencyKey = uuid.NewString()
	}
}

func applyRequestOptions(opts []RequestOption) *requestOptions {
	ro := &requestOptions{}
	for _, opt := range opts {
		opt(ro)
	}
	return ro
}

// attempt issues one HTTP exchange and returns the raw response body.
// Failures come back classified: connection-level problems as
// KindTransport, non-2xx statuses through classify. attempt never
// mutates client state, so a verbatim re-issue is always safe.
func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, body []byte, ro *requestOptions) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, query, body, ro)
	if err != nil {
		return nil, err
	}

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classify(resp.StatusCode, resp.Header, respBody)
	}
	return respBody, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte, ro *requestOptions) (*http.Request, error) {
	u := c.opts.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &APIError{Kind: KindValidation, Message: err.Error(), cause: err}
	}

	if c.opts.creds.IsExpired() {
		return nil, &APIError{Kind: KindAuth, Message: "bearer token is expired"}
	}
	header, err := c.opts.creds.AuthHeader()
	if err != nil {
		return nil, &APIError{Kind: KindAuth, Message: err.Error(), cause: err}
	}
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	req.Header.Set("User-Agent", c.opts.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ro.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", ro.idempotencyKey)
	}
	return req, nil
}

// request runs one operation through the retry policy and decodes the
// response into T. idempotent reflects the operation's nature: true
// for reads, the caller-supplied flag for writes.
func request[T any](ctx context.Context, c *Client, method, path string, query url.Values, reqBody any, idempotent bool, ro *requestOptions) (T, error) {
	var zero T

	var encoded []byte
	if reqBody != nil {
		var err error
		encoded, err = json.Marshal(reqBody)
		if err != nil {
			return zero, fmt.Errorf("letta: encode request: %w", err)
		}
	}

	respBody, err := retryWithConfig(ctx, c.opts.retryConfig, c.opts.logger, idempotent, func(ctx context.Context) ([]byte, error) {
		return c.attempt(ctx, method, path, query, encoded, ro)
	})
	if err != nil {
		return zero, err
	}

	if len(respBody) == 0 {
		return zero, nil
	}
	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return zero, fmt.Errorf("letta: decode response: %w", err)
	}
	return result, nil
}

// get issues a retryable GET.
func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	return request[T](ctx, c, http.MethodGet, path, query, nil, true, &requestOptions{})
}

// post issues a POST; retry requires the Idempotent request option.
func post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	ro := applyRequestOptions(opts)
	return request[T](ctx, c, http.MethodPost, path, nil, body, ro.idempotent, ro)
}

// patch issues a PATCH; retry requires the Idempotent request option.
func patch[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (T, error) {
	ro := applyRequestOptions(opts)
	return request[T](ctx, c, http.MethodPatch, path, nil, body, ro.idempotent, ro)
}

// del issues a DELETE; retry requires the Idempotent request option.
func del[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (T, error) {
	ro := applyRequestOptions(opts)
	return request[T](ctx, c, http.MethodDelete, path, nil, nil, ro.idempotent, ro)
}

// openStream issues a streaming POST and hands the undecoded response
// to the caller. Only the initial connection attempt goes through the
// retry policy (and then only when flagged idempotent); once the
// stream is live, a drop is never retried here because mid-stream
// replay needs request-level knowledge the transport lacks.
func (c *Client) openStream(ctx context.Context, path string, reqBody any, opts ...RequestOption) (*http.Response, error) {
	ro := applyRequestOptions(opts)

	encoded, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("letta: encode request: %w", err)
	}

	return retryWithConfig(ctx, c.opts.retryConfig, c.opts.logger, ro.idempotent, func(ctx context.Context) (*http.Response, error) {
		req, err := c.newRequest(ctx, http.MethodPost, path, nil, encoded, ro)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := c.opts.streamClient.Do(req)
		if err != nil {
			return nil, transportError(err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			defer resp.Body.Close()
			respBody, _ := io.ReadAll(resp.Body)
			return nil, classify(resp.StatusCode, resp.Header, respBody)
		}
		return resp, nil
	})
}

// paginationQuery encodes cursor parameters for list endpoints.
func paginationQuery(params letta.PaginationParams) url.Values {
	q := url.Values{}
	if params.Before != "" {
		q.Set("before", params.Before)
	}
	if params.After != "" {
		q.Set("after", params.After)
	}
	if params.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", params.Limit))
	}
	if params.Ascending {
		q.Set("ascending", "true")
	}
	return q
}
