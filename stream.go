// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package letta

import (
	"github.com/go-json-experiment/json/jsontext"
)

// StreamEvent is one event observed while an agent turn streams over
// a server-sent-event connection. Concrete types are
// [AssistantEvent], [ReasoningEvent], [ToolCallEvent],
// [ToolReturnEvent], [UsageEvent], [PingEvent], [StreamErrorEvent],
// and [DoneEvent].
//
// Within one stream, events are delivered in strict arrival order.
type StreamEvent interface {
	streamEvent()
}

// AssistantEvent carries assistant reply text. When the stream was
// opened in token mode, Fragment is true and Content holds one
// partial-text fragment; callers reassemble the full reply by
// concatenating fragments that share an OTID. Fragments are never
// buffered or coalesced by the client.
type AssistantEvent struct {
	ID       ID
	OTID     string
	Content  string
	Fragment bool
}

func (AssistantEvent) streamEvent() {}

// ReasoningEvent carries one internal reasoning step.
type ReasoningEvent struct {
	ID        ID
	OTID      string
	Reasoning string
	Fragment  bool
}

func (ReasoningEvent) streamEvent() {}

// ToolCallEvent is the agent requesting a tool invocation.
type ToolCallEvent struct {
	ID       ID
	ToolCall ToolCall
}

func (ToolCallEvent) streamEvent() {}

// ToolReturnEvent is the result of a tool invocation.
type ToolReturnEvent struct {
	ID         ID
	Return     string
	Status     string
	ToolCallID string
}

func (ToolReturnEvent) streamEvent() {}

// UsageEvent carries the turn's token usage statistics.
type UsageEvent struct {
	Usage UsageStatistics
}

func (UsageEvent) streamEvent() {}

// PingEvent is a keep-alive marker. It carries no payload.
type PingEvent struct{}

func (PingEvent) streamEvent() {}

// StreamErrorEvent reports a stream-scoped failure: either an error
// event sent by the server or a malformed frame. A StreamErrorEvent
// does not terminate the stream unless followed by closure.
type StreamErrorEvent struct {
	Code    string
	Message string
	// Err is set when the event originates client-side, such as a
	// frame whose payload failed to parse.
	Err error
}

func (StreamErrorEvent) streamEvent() {}

// DoneEvent is the terminal marker of a successfully completed
// stream. StopReason is populated when the server reported one before
// the marker.
type DoneEvent struct {
	StopReason StopReasonType
}

func (DoneEvent) streamEvent() {}

// RawEvent preserves a well-formed frame whose payload shape this
// package does not model, rather than collapsing it to untyped data
// or dropping it.
type RawEvent struct {
	Event   string
	Payload jsontext.Value
}

func (RawEvent) streamEvent() {}
