// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/url"

	"github.com/go-letta/letta"
)

// MessagesAPI groups operations on an agent's message history and the
// send-message call itself.
type MessagesAPI struct {
	client *Client
}

// List returns a pager over an agent's message history. History pages
// carry no cursor of their own, so continuation derives the next
// cursor from the ID of the last message on each full page.
func (m *MessagesAPI) List(ctx context.Context, agentID letta.ID, params letta.PaginationParams) *Pager[letta.Message] {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) + "/messages"

	fetch := func(ctx context.Context, cursor string, limit int32) (letta.Page[letta.Message], error) {
		p := params
		if cursor != "" {
			p.After = cursor
			p.Before = ""
		}
		if limit > 0 {
			p.Limit = limit
		}
		list, err := get[letta.MessageList](ctx, m.client, path, paginationQuery(p))
		if err != nil {
			return letta.Page[letta.Message]{}, err
		}
		return letta.Page[letta.Message]{Items: list}, nil
	}

	opts := []PagerOption[letta.Message]{
		WithPagerLimit[letta.Message](m.client.pageLimit(params.Limit)),
		WithPageCursorFunc[letta.Message](messageCursor),
	}
	if params.After != "" {
		opts = append(opts, WithPagerCursor[letta.Message](params.After))
	}
	return NewPager(fetch, opts...)
}

// messageCursor extracts the pagination cursor from a message. Raw
// variants without a modeled ID yield no cursor and end pagination.
func messageCursor(m letta.Message) string {
	switch msg := m.(type) {
	case letta.SystemMessage:
		return msg.ID.String()
	case letta.UserMessage:
		return msg.ID.String()
	case letta.AssistantMessage:
		return msg.ID.String()
	case letta.ReasoningMessage:
		return msg.ID.String()
	case letta.HiddenReasoningMessage:
		return msg.ID.String()
	case letta.ToolCallMessage:
		return msg.ID.String()
	case letta.ToolReturnMessage:
		return msg.ID.String()
	default:
		return ""
	}
}

// Create sends messages to an agent and waits for the full response.
// Pass [Idempotent] to make the call retry-eligible.
func (m *MessagesAPI) Create(ctx context.Context, agentID letta.ID, req letta.SendMessageRequest, opts ...RequestOption) (letta.Response, error) {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) + "/messages"
	return post[letta.Response](ctx, m.client, path, req, opts...)
}

// StreamOption adjusts a streaming send-message call.
type StreamOption func(*streamOptions)

type streamOptions struct {
	streamTokens bool
	reqOpts      []RequestOption
}

// WithStreamTokens requests token-level streaming: assistant and
// reasoning events arrive as incremental fragments rather than whole
// messages.
func WithStreamTokens() StreamOption {
	return func(so *streamOptions) { so.streamTokens = true }
}

// WithStreamRequestOptions forwards request options, such as
// [Idempotent], to the underlying connection attempt.
func WithStreamRequestOptions(opts ...RequestOption) StreamOption {
	return func(so *streamOptions) { so.reqOpts = append(so.reqOpts, opts...) }
}

// CreateStream sends messages to an agent and streams the response as
// server-sent events. The caller owns the returned stream and must
// Close it.
func (m *MessagesAPI) CreateStream(ctx context.Context, agentID letta.ID, req letta.SendMessageRequest, opts ...StreamOption) (*MessageStream, error) {
	so := &streamOptions{}
	for _, opt := range opts {
		opt(so)
	}

	body := struct {
		letta.SendMessageRequest
		StreamTokens bool `json:"stream_tokens,omitempty"`
	}{req, so.streamTokens}

	path := "/v1/agents/" + url.PathEscape(agentID.String()) + "/messages/stream"
	resp, err := m.client.openStream(ctx, path, body, so.reqOpts...)
	if err != nil {
		return nil, err
	}
	return newMessageStream(resp, so.streamTokens), nil
}

// Health reports service liveness and version.
func (c *Client) Health(ctx context.Context) (letta.Health, error) {
	return get[letta.Health](ctx, c, "/v1/health", nil)
}
