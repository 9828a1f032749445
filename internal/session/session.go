// Package session holds per-conversation state: the ordered turn history,
// the current suggestion topic, and lifecycle bookkeeping.
package session

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ninhvo/salonmate/internal/model/contract"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one role-tagged message in a conversation. Immutable once appended.
type Turn struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"ts"`
	Role      Role                 `json:"role"`
	Content   string               `json:"content"`
	ToolCalls []*contract.ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool turn back to the request that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

func NewUserTurn(content string) Turn {
	return Turn{
		ID:        ulid.Make().String(),
		Timestamp: time.Now(),
		Role:      RoleUser,
		Content:   content,
	}
}

func NewAssistantTurn(content string, toolCalls []*contract.ToolCall) Turn {
	return Turn{
		ID:        ulid.Make().String(),
		Timestamp: time.Now(),
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	}
}

func NewToolTurn(content, toolCallID string) Turn {
	return Turn{
		ID:         ulid.Make().String(),
		Timestamp:  time.Now(),
		Role:       RoleTool,
		Content:    content,
		ToolCallID: toolCallID,
	}
}

func (t Turn) Message() contract.Message {
	return contract.Message{
		Role:       string(t.Role),
		Content:    t.Content,
		ToolCalls:  t.ToolCalls,
		ToolCallID: t.ToolCallID,
	}
}

// Session is the state of one ongoing conversation. A session is owned
// exclusively by one in-flight turn at a time (see Store locks); fields are
// not individually synchronized.
type Session struct {
	ID           string
	Turns        []Turn
	CurrentTopic string
	LastActivity time.Time
}

// Window returns the most recent limit turns without splitting a tool turn
// from the assistant turn that requested it. limit <= 0 returns everything.
func (s *Session) Window(limit int) []Turn {
	if limit <= 0 || len(s.Turns) <= limit {
		return s.Turns
	}

	start := len(s.Turns) - limit
	// Slide back so the window never opens on an orphaned tool result.
	for start > 0 && s.Turns[start].Role == RoleTool {
		start--
	}
	return s.Turns[start:]
}

// Messages converts a slice of turns to the reasoning-engine message format.
func Messages(turns []Turn) []contract.Message {
	msgs := make([]contract.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, t.Message())
	}
	return msgs
}
