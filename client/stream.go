// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-letta/letta"
	"github.com/go-letta/letta/internal/sse"
)

// ErrStreamClosed is returned by [MessageStream.Next] after Close.
var ErrStreamClosed = errors.New("letta: stream is closed")

// doneMarker is the sentinel data payload terminating a stream.
const doneMarker = "[DONE]"

// MessageStream is the pull-driven event sequence of one streaming
// agent turn. Each Next call reads exactly as much of the response
// as one frame requires, so memory is bounded by the largest frame.
//
// A MessageStream is owned by one consumer and is not safe for
// concurrent use. Close releases the underlying connection and must
// be called on every path, including early abandonment.
type MessageStream struct {
	body      io.ReadCloser
	dec       *sse.Decoder
	tokenMode bool

	stopReason letta.StopReasonType
	// serverErrored records that the server sent an explicit error
	// event, after which a clean closure is a valid end of stream.
	serverErrored bool
	complete      bool
	closed        bool
}

func newMessageStream(resp *http.Response, tokenMode bool) *MessageStream {
	return &MessageStream{
		body:      resp.Body,
		dec:       sse.NewDecoder(resp.Body),
		tokenMode: tokenMode,
	}
}

// Next returns the next stream event. After the terminal [letta.DoneEvent]
// has been delivered, Next returns io.EOF. A connection that drops
// before the terminal marker yields an [APIError] of
// KindIncompleteStream, never a silent end; closure after an explicit
// server error event is a valid end and returns io.EOF.
//
// A frame whose payload fails to parse is reported as a single
// [letta.StreamErrorEvent] and does not end the stream; frame-level
// malformedness says nothing about the connection's health.
func (s *MessageStream) Next(ctx context.Context) (letta.StreamEvent, error) {
	if s.closed {
		if s.complete {
			return nil, io.EOF
		}
		return nil, ErrStreamClosed
	}
	if s.complete {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := s.dec.Next()
		if err != nil {
			s.close()
			switch {
			case err == io.EOF && s.serverErrored:
				s.complete = true
				return nil, io.EOF
			case err == io.EOF, err == io.ErrUnexpectedEOF:
				return nil, &APIError{
					Kind:    KindIncompleteStream,
					Message: "stream closed before terminal done marker",
				}
			default:
				return nil, transportError(err)
			}
		}

		event, ok := s.classify(frame)
		if !ok {
			continue
		}
		if _, done := event.(letta.DoneEvent); done {
			s.complete = true
			s.close()
		}
		return event, nil
	}
}

// classify maps one dispatched frame to a stream event. The second
// result is false for frames that produce no caller-visible event,
// such as a stop_reason payload that only enriches the later done
// marker.
func (s *MessageStream) classify(frame sse.Frame) (letta.StreamEvent, bool) {
	if frame.Data == doneMarker {
		return letta.DoneEvent{StopReason: s.stopReason}, true
	}

	switch frame.Event {
	case "ping":
		return letta.PingEvent{}, true
	case "error":
		s.serverErrored = true
		return s.classifyError(frame.Data), true
	}

	var probe struct {
		MessageType letta.MessageType `json:"message_type"`
		Error       *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(frame.Data), &probe); err != nil {
		return letta.StreamErrorEvent{
			Code:    string(KindFrameParse),
			Message: "malformed frame payload",
			Err:     &APIError{Kind: KindFrameParse, Message: err.Error(), Body: frame.Data, cause: err},
		}, true
	}
	if probe.Error != nil {
		s.serverErrored = true
		return letta.StreamErrorEvent{Code: probe.Error.Code, Message: probe.Error.Message}, true
	}

	switch probe.MessageType {
	case letta.MessageTypeStopReason:
		var stop letta.StopReason
		if err := json.Unmarshal([]byte(frame.Data), &stop); err == nil {
			s.stopReason = stop.StopReason
		}
		return nil, false

	case letta.MessageTypeUsage:
		var usage letta.UsageStatistics
		if err := json.Unmarshal([]byte(frame.Data), &usage); err != nil {
			return s.parseFailure(frame, err), true
		}
		return letta.UsageEvent{Usage: usage}, true

	case letta.MessageTypeAssistant:
		var m letta.AssistantMessage
		if err := json.Unmarshal([]byte(frame.Data), &m); err != nil {
			return s.parseFailure(frame, err), true
		}
		return letta.AssistantEvent{
			ID:       m.ID,
			OTID:     m.OTID,
			Content:  m.Content,
			Fragment: s.tokenMode,
		}, true

	case letta.MessageTypeReasoning:
		var m letta.ReasoningMessage
		if err := json.Unmarshal([]byte(frame.Data), &m); err != nil {
			return s.parseFailure(frame, err), true
		}
		return letta.ReasoningEvent{
			ID:        m.ID,
			OTID:      m.OTID,
			Reasoning: m.Reasoning,
			Fragment:  s.tokenMode,
		}, true

	case letta.MessageTypeToolCall:
		var m letta.ToolCallMessage
		if err := json.Unmarshal([]byte(frame.Data), &m); err != nil {
			return s.parseFailure(frame, err), true
		}
		return letta.ToolCallEvent{ID: m.ID, ToolCall: m.ToolCall}, true

	case letta.MessageTypeToolReturn:
		var m letta.ToolReturnMessage
		if err := json.Unmarshal([]byte(frame.Data), &m); err != nil {
			return s.parseFailure(frame, err), true
		}
		return letta.ToolReturnEvent{
			ID:         m.ID,
			Return:     m.ToolReturn,
			Status:     m.Status,
			ToolCallID: m.ToolCallID,
		}, true

	default:
		return letta.RawEvent{
			Event:   frame.Event,
			Payload: jsontext.Value(frame.Data).Clone(),
		}, true
	}
}

func (s *MessageStream) classifyError(data string) letta.StreamEvent {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return letta.StreamErrorEvent{Message: data}
	}
	if payload.Error != nil {
		return letta.StreamErrorEvent{Code: payload.Error.Code, Message: payload.Error.Message}
	}
	return letta.StreamErrorEvent{Code: payload.Code, Message: payload.Message}
}

func (s *MessageStream) parseFailure(frame sse.Frame, err error) letta.StreamEvent {
	return letta.StreamErrorEvent{
		Code:    string(KindFrameParse),
		Message: "malformed frame payload",
		Err:     &APIError{Kind: KindFrameParse, Message: err.Error(), Body: frame.Data, cause: err},
	}
}

// Close releases the underlying connection. It is safe to call
// multiple times and after completion.
func (s *MessageStream) Close() error {
	return s.close()
}

func (s *MessageStream) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
