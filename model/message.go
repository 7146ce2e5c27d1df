package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role tags each Message variant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model. Arguments holds the
// raw JSON the model produced.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message represents a chat message in the conversation.
//
// ToolCalls is only set on assistant messages; ToolCallID and ToolName are only
// set on tool messages.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content, Timestamp: time.Now()}
}

func HumanMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

func AIMessage(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls, Timestamp: time.Now()}
}

func ToolMessage(call ToolCall, output string) Message {
	return Message{
		Role:       RoleTool,
		Content:    output,
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Timestamp:  time.Now(),
	}
}

// ArgumentsMap decodes Arguments into a map. Empty or invalid JSON yields an
// empty map.
func (c ToolCall) ArgumentsMap() map[string]any {
	args := make(map[string]any)
	if strings.TrimSpace(c.Arguments) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(c.Arguments), &args); err != nil {
		return make(map[string]any)
	}
	return args
}

// ArgumentsJSON encodes a provider's decoded argument map back to a string.
func ArgumentsJSON(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// CloneMessages copies the slice and each message's tool calls so callers can
// keep a snapshot that later appends do not alias.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m
		if m.ToolCalls != nil {
			out[i].ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
		}
	}
	return out
}

// SequenceError describes the first ordering violation found by ValidateSequence.
type SequenceError struct {
	Index  int
	Reason string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("invalid message sequence at %d: %s", e.Index, e.Reason)
}

// ValidateSequence checks the ordering the completion endpoints rely on: the
// system prompt comes first, and every tool message answers a call made by the
// closest preceding assistant message, before any new human message.
func ValidateSequence(msgs []Message) error {
	if len(msgs) == 0 {
		return &SequenceError{Index: 0, Reason: "empty sequence"}
	}
	if msgs[0].Role != RoleSystem {
		return &SequenceError{Index: 0, Reason: "first message is not the system prompt"}
	}

	// open holds calls of the latest assistant message still awaiting a result
	var open map[string]string
	for i := 1; i < len(msgs); i++ {
		msg := msgs[i]
		switch msg.Role {
		case RoleTool:
			if open == nil {
				return &SequenceError{Index: i, Reason: "tool message without a preceding tool call"}
			}
			name, ok := open[msg.ToolCallID]
			if !ok {
				return &SequenceError{Index: i, Reason: fmt.Sprintf("no pending call with id %q", msg.ToolCallID)}
			}
			if name != msg.ToolName {
				return &SequenceError{Index: i, Reason: fmt.Sprintf("tool %q answers call to %q", msg.ToolName, name)}
			}
			delete(open, msg.ToolCallID)
		case RoleAssistant, RoleUser:
			if len(open) > 0 {
				return &SequenceError{Index: i, Reason: fmt.Sprintf("%d tool call(s) left unanswered", len(open))}
			}
			open = nil
			if msg.Role == RoleAssistant && len(msg.ToolCalls) > 0 {
				open = make(map[string]string, len(msg.ToolCalls))
				for _, call := range msg.ToolCalls {
					open[call.ID] = call.Name
				}
			}
		case RoleSystem:
			return &SequenceError{Index: i, Reason: "system prompt repeated"}
		default:
			return &SequenceError{Index: i, Reason: fmt.Sprintf("unknown role %q", msg.Role)}
		}
	}
	return nil
}
