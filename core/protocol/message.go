// Package protocol defines the conversation types shared by the transcript,
// the orchestrator, and backend implementations.
package protocol

import "time"

// Role identifies the sender class of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// ToolCall records a tool invocation a backend made while producing a
// message. Result holds the tool output fed back to the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Result    string `json:"result,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// Message is a single transcript entry. Sequence is assigned by the
// transcript on append and is 1-based. SpeakerID is empty for user messages
// and holds the persona id for agent messages.
//
// Messages are values; once appended they are never modified.
type Message struct {
	Sequence  int        `json:"sequence"`
	Role      Role       `json:"role"`
	SpeakerID string     `json:"speaker_id,omitempty"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "The checkout service is failing")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewAgentMessage creates an agent Message attributed to speaker.
func NewAgentMessage(speaker, content string) Message {
	return Message{Role: RoleAgent, SpeakerID: speaker, Content: content}
}

// IsUser reports whether the message was authored by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}
