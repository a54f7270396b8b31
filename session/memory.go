package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

type memoryTranscript struct {
	id       string
	messages []protocol.Message
	now      func() time.Time
	mu       sync.RWMutex
}

// NewTranscript creates a Transcript backed by an in-memory slice.
// The transcript is assigned a unique UUIDv7 identifier.
func NewTranscript() Transcript {
	return &memoryTranscript{
		id:  uuid.Must(uuid.NewV7()).String(),
		now: time.Now,
	}
}

func (t *memoryTranscript) ID() string {
	return t.id
}

func (t *memoryTranscript) Append(msg protocol.Message) protocol.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Sequence = len(t.messages) + 1
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = t.now().UTC()
	}
	msg.ToolCalls = slices.Clone(msg.ToolCalls)
	t.messages = append(t.messages, msg)

	return clone(msg)
}

func (t *memoryTranscript) Messages() []protocol.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	copied := make([]protocol.Message, len(t.messages))
	for i, msg := range t.messages {
		copied[i] = clone(msg)
	}
	return copied
}

func (t *memoryTranscript) Last() (protocol.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.messages) == 0 {
		return protocol.Message{}, false
	}
	return clone(t.messages[len(t.messages)-1]), true
}

func (t *memoryTranscript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

func clone(msg protocol.Message) protocol.Message {
	msg.ToolCalls = slices.Clone(msg.ToolCalls)
	return msg
}
