package orchestrate

import (
	"fmt"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// Selection identifies the persona chosen to speak next.
type Selection struct {
	Index     int
	PersonaID string
}

// SelectionStrategy decides which participant speaks next. Implementations
// must be pure with respect to their inputs; the loop persists the returned
// index on the conversation.
type SelectionStrategy interface {
	Select(transcript []protocol.Message, participants []string, current int) (Selection, error)
}

// SelectionFunc adapts a function to the SelectionStrategy interface.
type SelectionFunc func(transcript []protocol.Message, participants []string, current int) (Selection, error)

func (f SelectionFunc) Select(transcript []protocol.Message, participants []string, current int) (Selection, error) {
	return f(transcript, participants, current)
}

// RoundRobin cycles through participants in order. A fresh transcript, or
// one whose last message came from the user, restarts the cycle at the first
// participant.
type RoundRobin struct{}

func (RoundRobin) Select(transcript []protocol.Message, participants []string, current int) (Selection, error) {
	n := len(participants)
	if n == 0 {
		return Selection{}, ErrNoParticipants
	}

	if len(transcript) == 0 || transcript[len(transcript)-1].IsUser() {
		return Selection{Index: 0, PersonaID: participants[0]}, nil
	}

	if current < 0 || current >= n {
		return Selection{}, fmt.Errorf("current index %d out of range [0,%d)", current, n)
	}

	next := (current + 1) % n
	return Selection{Index: next, PersonaID: participants[next]}, nil
}
