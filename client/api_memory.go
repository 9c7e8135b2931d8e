// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-letta/letta"
)

// MemoryAPI groups operations on agent memory: core memory blocks and
// archival passages.
type MemoryAPI struct {
	client *Client
}

// GetCoreBlock retrieves one core memory block by label.
func (m *MemoryAPI) GetCoreBlock(ctx context.Context, agentID letta.ID, label string) (letta.Block, error) {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) + "/core-memory/blocks/" + url.PathEscape(label)
	return get[letta.Block](ctx, m.client, path, nil)
}

// UpdateCoreBlock rewrites a core memory block. Pass [Idempotent] to
// make the call retry-eligible.
func (m *MemoryAPI) UpdateCoreBlock(ctx context.Context, agentID letta.ID, label string, req letta.UpdateBlockRequest, opts ...RequestOption) (letta.Block, error) {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) + "/core-memory/blocks/" + url.PathEscape(label)
	return patch[letta.Block](ctx, m.client, path, req, opts...)
}

// ListArchival returns a pager over an agent's archival memory
// passages.
func (m *MemoryAPI) ListArchival(ctx context.Context, agentID letta.ID, params letta.PaginationParams) *Pager[letta.Passage] {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) + "/archival-memory"

	fetch := func(ctx context.Context, cursor string, limit int32) (letta.Page[letta.Passage], error) {
		p := params
		if cursor != "" {
			p.After = cursor
			p.Before = ""
		}
		if limit > 0 {
			p.Limit = limit
		}
		return get[letta.Page[letta.Passage]](ctx, m.client, path, paginationQuery(p))
	}

	opts := []PagerOption[letta.Passage]{
		WithPagerLimit[letta.Passage](m.client.pageLimit(params.Limit)),
		WithPageCursorFunc[letta.Passage](func(p letta.Passage) string { return p.ID.String() }),
	}
	if params.After != "" {
		opts = append(opts, WithPagerCursor[letta.Passage](params.After))
	}
	return NewPager(fetch, opts...)
}

// CreateArchival inserts an archival memory passage. Pass
// [Idempotent] to make the call retry-eligible.
func (m *MemoryAPI) CreateArchival(ctx context.Context, agentID letta.ID, req letta.CreatePassageRequest, opts ...RequestOption) ([]letta.Passage, error) {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) + "/archival-memory"
	return post[[]letta.Passage](ctx, m.client, path, req, opts...)
}

// UpdateArchival rewrites an archival memory passage.
//
// Certain server versions return a malformed tuple-like shape
// `[["passages", [...]]]` from this endpoint instead of the
// documented passage list. That defect is tolerated here with an
// accept-either-shape fallback, deliberately local to this one call.
func (m *MemoryAPI) UpdateArchival(ctx context.Context, agentID, passageID letta.ID, req letta.UpdatePassageRequest, opts ...RequestOption) ([]letta.Passage, error) {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) +
		"/archival-memory/" + url.PathEscape(passageID.String())

	raw, err := patch[jsontext.Value](ctx, m.client, path, req, opts...)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var passages []letta.Passage
	if err := json.Unmarshal(raw, &passages); err == nil {
		return passages, nil
	}

	var tuples [][]jsontext.Value
	if err := json.Unmarshal(raw, &tuples); err == nil {
		for _, tuple := range tuples {
			if len(tuple) != 2 {
				continue
			}
			var inner []letta.Passage
			if err := json.Unmarshal(tuple[1], &inner); err == nil {
				return inner, nil
			}
		}
	}
	return nil, fmt.Errorf("letta: decode archival update response: unrecognized shape %q", raw)
}

// DeleteArchival deletes an archival memory passage. Pass
// [Idempotent] to make the call retry-eligible.
func (m *MemoryAPI) DeleteArchival(ctx context.Context, agentID, passageID letta.ID, opts ...RequestOption) error {
	path := "/v1/agents/" + url.PathEscape(agentID.String()) +
		"/archival-memory/" + url.PathEscape(passageID.String())
	_, err := del[struct{}](ctx, m.client, path, opts...)
	return err
}
