//go:generate mockgen -source=backend.go -destination=mock/mock_backend.go -package=mock

// Package backend defines the contract between the orchestrator and the
// external model service that plays each persona.
//
// The orchestrator never reasons about content itself: for every turn it
// builds an Invocation and hands it to a Backend, which returns the message
// the persona speaks.
package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/persona"
	"github.com/tailored-agentic-units/groupchat/tools"
)

// ToolSet is the set of tools available to a persona during one invocation.
// Execute errors must abort the invocation; backends return them (wrapped)
// rather than feeding them back to the model.
type ToolSet interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// Observation is the output of a tool the orchestrator ran before the turn.
type Observation struct {
	Tool    string
	Content string
}

// Invocation carries everything a backend needs for one persona turn.
// Transcript is already narrowed according to the persona's ContextFrom.
type Invocation struct {
	Persona      persona.Persona
	Instructions string
	Transcript   []protocol.Message
	Observations []Observation
	Tools        ToolSet
}

// Backend produces a persona's next message. The orchestrator overrides
// Role and SpeakerID of the returned message, so implementations only need
// to fill Content (and ToolCalls when they called tools).
type Backend interface {
	Invoke(ctx context.Context, inv Invocation) (protocol.Message, error)
}

// Func adapts a function to the Backend interface.
type Func func(ctx context.Context, inv Invocation) (protocol.Message, error)

func (f Func) Invoke(ctx context.Context, inv Invocation) (protocol.Message, error) {
	return f(ctx, inv)
}

// NoTools is an empty ToolSet.
type NoTools struct{}

func (NoTools) List() []protocol.Tool { return nil }

func (NoTools) Execute(_ context.Context, name string, _ json.RawMessage) (tools.Result, error) {
	return tools.Result{}, fmt.Errorf("%w: %s", tools.ErrNotFound, name)
}
