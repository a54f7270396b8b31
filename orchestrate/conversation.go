package orchestrate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/session"
)

// Status is the lifecycle state of a conversation. Transitions are one-way:
// Running to Terminated or Failed.
type Status string

const (
	StatusRunning    Status = "running"
	StatusTerminated Status = "terminated"
	StatusFailed     Status = "failed"
)

// Phase is the loop position of a conversation, reported in events.
type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseSelectingSpeaker      Phase = "selecting_speaker"
	PhaseAwaitingAgentResponse Phase = "awaiting_agent_response"
	PhaseCheckingTermination   Phase = "checking_termination"
	PhaseTerminated            Phase = "terminated"
	PhaseFailed                Phase = "failed"
)

// Conversation is one group-chat session: a transcript, a fixed ordered set
// of participants and the turn bookkeeping. Only the Orchestrator driving it
// mutates a Conversation; everything exported is read-only.
type Conversation struct {
	mu           sync.RWMutex
	transcript   session.Transcript
	participants []string
	currentIndex int
	status       Status
	phase        Phase
	reason       Reason
	turnsTaken   int
	maxTurns     int
	err          error
}

// NewConversation opens a session whose transcript starts with the user
// prompt. Participants must be non-empty with no blank ids and maxTurns
// must be positive; otherwise the error wraps ErrConfiguration.
func NewConversation(prompt string, participants []string, maxTurns int) (*Conversation, error) {
	return newConversation(session.NewTranscript(), prompt, participants, maxTurns)
}

// NewConversationWith is NewConversation over a caller-provided, empty
// transcript.
func NewConversationWith(transcript session.Transcript, prompt string, participants []string, maxTurns int) (*Conversation, error) {
	if transcript == nil {
		return nil, configError(errors.New("nil transcript"))
	}
	if transcript.Len() != 0 {
		return nil, configError(errors.New("transcript must be empty"))
	}
	return newConversation(transcript, prompt, participants, maxTurns)
}

func newConversation(transcript session.Transcript, prompt string, participants []string, maxTurns int) (*Conversation, error) {
	if err := validateParticipants(participants); err != nil {
		return nil, configError(err)
	}
	if maxTurns < 1 {
		return nil, configError(ErrInvalidMaxTurns)
	}

	transcript.Append(protocol.NewMessage(protocol.RoleUser, prompt))

	return &Conversation{
		transcript:   transcript,
		participants: append([]string(nil), participants...),
		status:       StatusRunning,
		phase:        PhaseIdle,
		maxTurns:     maxTurns,
	}, nil
}

func validateParticipants(participants []string) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	for i, id := range participants {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("participant %d has an empty id", i)
		}
	}
	return nil
}

// ID returns the session identifier, shared with the transcript.
func (c *Conversation) ID() string { return c.transcript.ID() }

// Transcript returns a copy of the messages so far.
func (c *Conversation) Transcript() []protocol.Message { return c.transcript.Messages() }

// Participants returns the ordered participant ids.
func (c *Conversation) Participants() []string {
	return append([]string(nil), c.participants...)
}

// CurrentIndex is the participant index of the most recent speaker.
func (c *Conversation) CurrentIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentIndex
}

func (c *Conversation) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Conversation) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

func (c *Conversation) Reason() Reason {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reason
}

func (c *Conversation) TurnsTaken() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.turnsTaken
}

func (c *Conversation) MaxTurns() int { return c.maxTurns }

// Err is the abort error of a failed conversation.
func (c *Conversation) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Result snapshots the conversation.
func (c *Conversation) Result() *Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Result{
		SessionID:    c.transcript.ID(),
		Participants: append([]string(nil), c.participants...),
		Transcript:   c.transcript.Messages(),
		Status:       c.status,
		Reason:       c.reason,
		TurnsTaken:   c.turnsTaken,
		MaxTurns:     c.maxTurns,
		Err:          c.err,
	}
}

func (c *Conversation) setPhase(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusRunning {
		c.phase = p
	}
}

// record appends a completed agent turn and persists the speaker index.
func (c *Conversation) record(msg protocol.Message, index int) protocol.Message {
	stored := c.transcript.Append(msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.turnsTaken++
	c.currentIndex = index
	return stored
}

func (c *Conversation) terminate(reason Reason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusRunning {
		return
	}
	c.status = StatusTerminated
	c.phase = PhaseTerminated
	c.reason = reason
}

func (c *Conversation) fail(reason Reason, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusRunning {
		return
	}
	c.status = StatusFailed
	c.phase = PhaseFailed
	c.reason = reason
	c.err = err
}

// Result is the outcome of a conversation.
type Result struct {
	SessionID    string             `json:"session_id"`
	Participants []string           `json:"participants"`
	Transcript   []protocol.Message `json:"transcript"`
	Status       Status             `json:"status"`
	Reason       Reason             `json:"reason"`
	TurnsTaken   int                `json:"turns_taken"`
	MaxTurns     int                `json:"max_turns"`
	Err          error              `json:"-"`
}
