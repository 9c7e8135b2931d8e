// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package letta

import (
	"github.com/go-json-experiment/json/jsontext"
)

// PaginationParams are the cursor parameters accepted by Letta list
// endpoints. Before and After are opaque cursors; the two directions
// are independent and must not be combined in one request.
type PaginationParams struct {
	// Before returns items positioned before this cursor.
	Before string `json:"before,omitempty"`
	// After returns items positioned after this cursor.
	After string `json:"after,omitempty"`
	// Limit is the maximum number of items per page.
	Limit int32 `json:"limit,omitempty"`
	// Ascending orders results oldest-first when true.
	Ascending bool `json:"ascending,omitempty"`
}

// Page is one fetched batch of a paginated list endpoint, in the
// `{items, next_cursor, has_more}` wire shape. A Page is produced
// fresh per fetch; its cursors are opaque continuation tokens.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	// HasMore is nil when the backend omitted the flag; an explicit
	// false is authoritative termination even when a cursor is
	// present.
	HasMore *bool `json:"has_more,omitempty"`
}

// Bool returns a pointer to v, for optional wire fields.
func Bool(v bool) *bool { return &v }

// AgentState is the server-side state of one stateful agent. Only the
// fields the core client operations need are modeled; the complete
// response body is preserved in Raw.
type AgentState struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	System      string   `json:"system,omitempty"`
	Model       string   `json:"model,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`

	Raw jsontext.Value `json:"-"`
}

// CreateAgentRequest is the body for creating a new agent.
type CreateAgentRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	System       string   `json:"system,omitempty"`
	Model        string   `json:"model,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	MemoryBlocks []Block  `json:"memory_blocks,omitempty"`
}

// Block is a section of an agent's core memory, such as the "human"
// or "persona" block.
type Block struct {
	ID    ID     `json:"id,omitzero"`
	Label string `json:"label"`
	Value string `json:"value"`
	Limit int64  `json:"limit,omitempty"`
}

// UpdateBlockRequest is the body for updating a core memory block.
type UpdateBlockRequest struct {
	Value string `json:"value,omitempty"`
	Limit int64  `json:"limit,omitempty"`
}

// Passage is one archival memory entry.
type Passage struct {
	ID        ID     `json:"id,omitzero"`
	AgentID   ID     `json:"agent_id,omitzero"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreatePassageRequest is the body for inserting an archival memory
// passage.
type CreatePassageRequest struct {
	Text string `json:"text"`
}

// UpdatePassageRequest is the body for rewriting an archival memory
// passage.
type UpdatePassageRequest struct {
	Text string `json:"text"`
}

// Health is the response of the service health endpoint.
type Health struct {
	Version string `json:"version"`
	Status  string `json:"status"`
}
