// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/url"

	"github.com/go-letta/letta"
)

// AgentsAPI groups operations on agents.
type AgentsAPI struct {
	client *Client
}

// List returns a pager over all agents, fetched lazily page by page.
func (a *AgentsAPI) List(ctx context.Context, params letta.PaginationParams) *Pager[letta.AgentState] {
	fetch := func(ctx context.Context, cursor string, limit int32) (letta.Page[letta.AgentState], error) {
		p := params
		if cursor != "" {
			p.After = cursor
			p.Before = ""
		}
		if limit > 0 {
			p.Limit = limit
		}
		return get[letta.Page[letta.AgentState]](ctx, a.client, "/v1/agents", paginationQuery(p))
	}

	opts := []PagerOption[letta.AgentState]{
		WithPagerLimit[letta.AgentState](a.client.pageLimit(params.Limit)),
		WithPageCursorFunc[letta.AgentState](func(s letta.AgentState) string { return s.ID.String() }),
	}
	if params.After != "" {
		opts = append(opts, WithPagerCursor[letta.AgentState](params.After))
	}
	return NewPager(fetch, opts...)
}

// Get retrieves one agent by ID.
func (a *AgentsAPI) Get(ctx context.Context, agentID letta.ID) (letta.AgentState, error) {
	return get[letta.AgentState](ctx, a.client, "/v1/agents/"+url.PathEscape(agentID.String()), nil)
}

// Create creates a new agent. Pass [Idempotent] to make the call
// retry-eligible.
func (a *AgentsAPI) Create(ctx context.Context, req letta.CreateAgentRequest, opts ...RequestOption) (letta.AgentState, error) {
	return post[letta.AgentState](ctx, a.client, "/v1/agents", req, opts...)
}

// Delete deletes an agent. Pass [Idempotent] to make the call
// retry-eligible.
func (a *AgentsAPI) Delete(ctx context.Context, agentID letta.ID, opts ...RequestOption) error {
	_, err := del[struct{}](ctx, a.client, "/v1/agents/"+url.PathEscape(agentID.String()), opts...)
	return err
}

// pageLimit resolves the effective page size for a list call.
func (c *Client) pageLimit(requested int32) int32 {
	if requested > 0 {
		return requested
	}
	return c.opts.pageLimit
}
