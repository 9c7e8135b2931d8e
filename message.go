// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package letta

import (
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
)

// MessageRole identifies the author of a message.
type MessageRole string

// Message roles.
const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// MessageType discriminates the message union returned by the
// service. The value is carried in the "message_type" field.
type MessageType string

// Message types.
const (
	MessageTypeSystem          MessageType = "system_message"
	MessageTypeUser            MessageType = "user_message"
	MessageTypeAssistant       MessageType = "assistant_message"
	MessageTypeReasoning       MessageType = "reasoning_message"
	MessageTypeHiddenReasoning MessageType = "hidden_reasoning_message"
	MessageTypeToolCall        MessageType = "tool_call_message"
	MessageTypeToolReturn      MessageType = "tool_return_message"
	MessageTypeStopReason      MessageType = "stop_reason"
	MessageTypeUsage           MessageType = "usage_statistics"
)

// Message is one element of the message union. Concrete types are
// [SystemMessage], [UserMessage], [AssistantMessage],
// [ReasoningMessage], [HiddenReasoningMessage], [ToolCallMessage],
// [ToolReturnMessage], and [RawMessage] for shapes this package does
// not model.
type Message interface {
	MessageType() MessageType
}

// MessageBase carries the fields shared by every message variant.
type MessageBase struct {
	ID   ID     `json:"id,omitzero"`
	Date string `json:"date,omitempty"`
	// OTID is the client-generated offline threading ID, used to
	// correlate streamed fragments of the same logical message.
	OTID string `json:"otid,omitempty"`
}

// SystemMessage is a system prompt message.
type SystemMessage struct {
	MessageBase
	Content string `json:"content"`
}

// MessageType implements [Message].
func (SystemMessage) MessageType() MessageType { return MessageTypeSystem }

// UserMessage is a message sent by the user.
type UserMessage struct {
	MessageBase
	Content string `json:"content"`
}

// MessageType implements [Message].
func (UserMessage) MessageType() MessageType { return MessageTypeUser }

// AssistantMessage is the agent's visible reply.
type AssistantMessage struct {
	MessageBase
	Content string `json:"content"`
}

// MessageType implements [Message].
func (AssistantMessage) MessageType() MessageType { return MessageTypeAssistant }

// ReasoningMessage is the agent's internal reasoning step.
type ReasoningMessage struct {
	MessageBase
	Reasoning string `json:"reasoning"`
}

// MessageType implements [Message].
func (ReasoningMessage) MessageType() MessageType { return MessageTypeReasoning }

// HiddenReasoningMessage is a redacted reasoning step.
type HiddenReasoningMessage struct {
	MessageBase
	State string `json:"state,omitempty"`
}

// MessageType implements [Message].
func (HiddenReasoningMessage) MessageType() MessageType { return MessageTypeHiddenReasoning }

// ToolCall describes one tool invocation requested by the agent.
type ToolCall struct {
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
	ToolCallID string `json:"tool_call_id"`
}

// ToolCallMessage is the agent requesting a tool invocation.
type ToolCallMessage struct {
	MessageBase
	ToolCall ToolCall `json:"tool_call"`
}

// MessageType implements [Message].
func (ToolCallMessage) MessageType() MessageType { return MessageTypeToolCall }

// ToolReturnMessage is the result of a tool invocation.
type ToolReturnMessage struct {
	MessageBase
	ToolReturn string `json:"tool_return"`
	Status     string `json:"status,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// MessageType implements [Message].
func (ToolReturnMessage) MessageType() MessageType { return MessageTypeToolReturn }

// RawMessage preserves a message whose message_type this package does
// not model. The payload is kept verbatim.
type RawMessage struct {
	Type    MessageType
	Payload jsontext.Value
}

// MessageType implements [Message].
func (m RawMessage) MessageType() MessageType { return m.Type }

// UnmarshalMessage decodes one element of the message union,
// dispatching on the "message_type" field. Unknown types decode to
// [RawMessage] rather than failing.
func UnmarshalMessage(data []byte) (Message, error) {
	var probe struct {
		MessageType MessageType `json:"message_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("letta: probe message type: %w", err)
	}

	switch probe.MessageType {
	case MessageTypeSystem:
		var m SystemMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeUser:
		var m UserMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeAssistant:
		var m AssistantMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeReasoning:
		var m ReasoningMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeHiddenReasoning:
		var m HiddenReasoningMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeToolCall:
		var m ToolCallMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeToolReturn:
		var m ToolReturnMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case "":
		return nil, fmt.Errorf("letta: message without message_type")
	default:
		return RawMessage{Type: probe.MessageType, Payload: jsontext.Value(data).Clone()}, nil
	}
}

// MessageList decodes a JSON array of the message union.
type MessageList []Message

// UnmarshalJSON implements json.Unmarshaler.
func (l *MessageList) UnmarshalJSON(data []byte) error {
	var raw []jsontext.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(MessageList, 0, len(raw))
	for _, v := range raw {
		m, err := UnmarshalMessage(v)
		if err != nil {
			return err
		}
		out = append(out, m)
	}
	*l = out
	return nil
}

// NewOTID generates a client-side offline threading ID for outbound
// messages. Resending a message with the same OTID lets the server
// deduplicate it, and streamed response fragments echo it back for
// reassembly.
func NewOTID() string { return uuid.NewString() }

// MessageCreate is one outbound message in a send-messages request.
type MessageCreate struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	Name    string      `json:"name,omitempty"`
	OTID    string      `json:"otid,omitempty"`
}

// SendMessageRequest carries messages to an agent for processing.
type SendMessageRequest struct {
	Messages []MessageCreate `json:"messages"`
	MaxSteps int32           `json:"max_steps,omitempty"`
}

// StopReasonType enumerates the reasons an agent turn ends.
type StopReasonType string

// Stop reasons.
const (
	StopEndTurn         StopReasonType = "end_turn"
	StopError           StopReasonType = "error"
	StopInvalidToolCall StopReasonType = "invalid_tool_call"
	StopMaxSteps        StopReasonType = "max_steps"
	StopNoToolCall      StopReasonType = "no_tool_call"
	StopToolRule        StopReasonType = "tool_rule"
)

// StopReason reports why message processing stopped.
type StopReason struct {
	StopReason StopReasonType `json:"stop_reason"`
}

// UsageStatistics reports token usage for one agent turn.
type UsageStatistics struct {
	CompletionTokens int64 `json:"completion_tokens,omitempty"`
	PromptTokens     int64 `json:"prompt_tokens,omitempty"`
	TotalTokens      int64 `json:"total_tokens,omitempty"`
	StepCount        int64 `json:"step_count,omitempty"`
}

// Response is the non-streaming result of sending messages to an
// agent: the produced messages plus turn metadata.
type Response struct {
	Messages   MessageList     `json:"messages"`
	StopReason StopReason      `json:"stop_reason"`
	Usage      UsageStatistics `json:"usage"`
}
