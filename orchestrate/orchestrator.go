// Package orchestrate drives a fixed set of personas through a shared
// transcript. It decides whose turn it is, detects convergence, and enforces
// the turn budget; the content of every turn comes from a backend.Backend.
//
//	o, err := orchestrate.New(catalog, b,
//	    orchestrate.WithTools(registry),
//	    orchestrate.WithTermination(orchestrate.PhraseTermination{Marker: "no action needed"}),
//	)
//	conv, err := orchestrate.NewConversation("hello", []string{"INCIDENT_MANAGER", "DEVOPS_ASSISTANT"}, 10)
//	result, err := o.Run(ctx, conv)
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/groupchat/backend"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/observability"
	"github.com/tailored-agentic-units/groupchat/persona"
)

// ResponseValidator checks a persona's response before it is appended.
// Rejections should wrap ErrUnrecognizedResponse.
type ResponseValidator interface {
	Validate(p persona.Persona, content string) error
}

// ValidatorFunc adapts a function to the ResponseValidator interface.
type ValidatorFunc func(p persona.Persona, content string) error

func (f ValidatorFunc) Validate(p persona.Persona, content string) error {
	return f(p, content)
}

// TurnFunc is called after each agent message is appended, before the
// termination check. Useful for live rendering.
type TurnFunc func(turn int, msg protocol.Message)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSelection overrides the default RoundRobin strategy.
func WithSelection(s SelectionStrategy) Option {
	return func(o *Orchestrator) { o.selection = s }
}

// WithTermination overrides the default PhraseTermination on DefaultMarker.
func WithTermination(t TerminationStrategy) Option {
	return func(o *Orchestrator) { o.termination = t }
}

// WithValidator sets the response validator. Without one, only empty
// responses are rejected.
func WithValidator(v ResponseValidator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithTools sets the tool set observation tools and persona tools are drawn
// from.
func WithTools(t backend.ToolSet) Option {
	return func(o *Orchestrator) { o.tools = t }
}

// WithObserver overrides the default NoOpObserver.
func WithObserver(obs observability.Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithVars sets the base values for instruction templates. PersonaID,
// DisplayName and Participants are filled per turn.
func WithVars(v persona.Vars) Option {
	return func(o *Orchestrator) { o.vars = v }
}

// WithTurnFunc registers a callback invoked after every agent turn.
func WithTurnFunc(fn TurnFunc) Option {
	return func(o *Orchestrator) { o.onTurn = fn }
}

// Orchestrator runs conversations. It holds no per-session state, so one
// Orchestrator may run many conversations concurrently.
type Orchestrator struct {
	catalog     *persona.Catalog
	backend     backend.Backend
	selection   SelectionStrategy
	termination TerminationStrategy
	validator   ResponseValidator
	tools       backend.ToolSet
	observer    observability.Observer
	vars        persona.Vars
	onTurn      TurnFunc
}

// New creates an Orchestrator over a persona catalog and a backend.
func New(catalog *persona.Catalog, b backend.Backend, opts ...Option) (*Orchestrator, error) {
	if catalog == nil {
		return nil, configError(errors.New("nil persona catalog"))
	}
	if b == nil {
		return nil, configError(errors.New("nil backend"))
	}

	o := &Orchestrator{
		catalog:     catalog,
		backend:     b,
		selection:   RoundRobin{},
		termination: PhraseTermination{Marker: DefaultMarker},
		tools:       backend.NoTools{},
		observer:    observability.NoOpObserver{},
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.selection == nil || o.termination == nil || o.tools == nil || o.observer == nil {
		return nil, configError(errors.New("nil strategy, tool set or observer"))
	}

	return o, nil
}

// Run drives conv until it terminates or fails. The returned Result is never
// nil. A Failed conversation also returns its abort error (*ToolError or
// *BackendError); Terminated conversations, including budget exhaustion and
// cancellation, return a nil error. A backend error that wraps the error of
// the already cancelled ctx ends the conversation as Terminated with
// ReasonCancelled rather than Failed. Participants unknown to the catalog
// return an ErrConfiguration error before any turn is taken.
func (o *Orchestrator) Run(ctx context.Context, conv *Conversation) (*Result, error) {
	if conv == nil {
		return &Result{}, configError(errors.New("nil conversation"))
	}
	if conv.Status() != StatusRunning {
		return conv.Result(), ErrConversationClosed
	}
	if err := o.catalog.Resolve(conv.participants); err != nil {
		return conv.Result(), configError(err)
	}

	o.emit(ctx, EventRunStart, observability.LevelInfo, map[string]any{
		"session_id":   conv.ID(),
		"participants": conv.Participants(),
		"max_turns":    conv.maxTurns,
	})

	for {
		if err := ctx.Err(); err != nil {
			return o.terminate(ctx, conv, ReasonCancelled), nil
		}

		conv.setPhase(PhaseSelectingSpeaker)
		transcript := conv.Transcript()
		turn := conv.TurnsTaken() + 1

		sel, err := o.selectSpeaker(transcript, conv)
		if err != nil {
			return o.fail(ctx, conv, ReasonSelectionError, err)
		}

		o.emit(ctx, EventSpeakerSelected, observability.LevelVerbose, map[string]any{
			"session_id": conv.ID(),
			"turn":       turn,
			"index":      sel.Index,
			"persona":    sel.PersonaID,
		})

		p, err := o.catalog.Get(sel.PersonaID)
		if err != nil {
			return o.fail(ctx, conv, ReasonSelectionError, err)
		}

		conv.setPhase(PhaseAwaitingAgentResponse)
		o.emit(ctx, EventTurnStart, observability.LevelVerbose, map[string]any{
			"session_id": conv.ID(),
			"turn":       turn,
			"persona":    p.ID,
		})

		msg, err := o.takeTurn(ctx, conv, p, turn, transcript)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return o.terminate(ctx, conv, ReasonCancelled), nil
			}
			var toolErr *ToolError
			if errors.As(err, &toolErr) {
				return o.fail(ctx, conv, ReasonToolError, toolErr)
			}
			return o.fail(ctx, conv, ReasonBackendError, err)
		}

		stored := conv.record(msg, sel.Index)

		o.emit(ctx, EventTurnComplete, observability.LevelInfo, map[string]any{
			"session_id":     conv.ID(),
			"turn":           turn,
			"persona":        p.ID,
			"sequence":       stored.Sequence,
			"content_length": len(stored.Content),
			"tool_calls":     len(stored.ToolCalls),
		})

		if o.onTurn != nil {
			o.onTurn(turn, stored)
		}

		conv.setPhase(PhaseCheckingTermination)
		if done, reason := o.termination.ShouldTerminate(conv.Transcript()); done {
			if reason == ReasonNone {
				reason = ReasonMarkerFound
			}
			return o.terminate(ctx, conv, reason), nil
		}

		if conv.TurnsTaken() >= conv.maxTurns {
			return o.terminate(ctx, conv, ReasonBudgetExhausted), nil
		}
	}
}

func (o *Orchestrator) selectSpeaker(transcript []protocol.Message, conv *Conversation) (Selection, error) {
	sel, err := o.selection.Select(transcript, conv.participants, conv.CurrentIndex())
	if err != nil {
		return Selection{}, fmt.Errorf("select speaker: %w", err)
	}
	if sel.Index < 0 || sel.Index >= len(conv.participants) {
		return Selection{}, fmt.Errorf("select speaker: index %d out of range [0,%d)", sel.Index, len(conv.participants))
	}
	if sel.PersonaID == "" {
		sel.PersonaID = conv.participants[sel.Index]
	}
	if sel.PersonaID != conv.participants[sel.Index] {
		return Selection{}, fmt.Errorf("select speaker: persona %s is not participant %d", sel.PersonaID, sel.Index)
	}
	return sel, nil
}

// takeTurn runs the persona's observation tools, invokes the backend and
// validates the response. Nothing is appended here.
func (o *Orchestrator) takeTurn(ctx context.Context, conv *Conversation, p persona.Persona, turn int, transcript []protocol.Message) (protocol.Message, error) {
	observations := make([]backend.Observation, 0, len(p.Observe))
	for _, name := range p.Observe {
		o.emit(ctx, EventToolObserve, observability.LevelVerbose, map[string]any{
			"session_id": conv.ID(),
			"turn":       turn,
			"persona":    p.ID,
			"tool":       name,
		})

		res, err := o.tools.Execute(ctx, name, nil)
		if err != nil {
			return protocol.Message{}, &ToolError{Tool: name, Persona: p.ID, Turn: turn, Err: err}
		}
		if res.IsError {
			return protocol.Message{}, &ToolError{Tool: name, Persona: p.ID, Turn: turn, Err: errors.New(res.Content)}
		}
		observations = append(observations, backend.Observation{Tool: name, Content: res.Content})
	}

	vars := o.vars
	vars.PersonaID = p.ID
	vars.DisplayName = p.DisplayName
	vars.Participants = conv.Participants()

	instructions, err := persona.Render(p, vars)
	if err != nil {
		return protocol.Message{}, &BackendError{Persona: p.ID, Turn: turn, Err: err}
	}

	msg, err := o.backend.Invoke(ctx, backend.Invocation{
		Persona:      p,
		Instructions: instructions,
		Transcript:   narrow(transcript, p.ContextFrom),
		Observations: observations,
		Tools:        newScopedTools(o.tools, p, turn),
	})
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return protocol.Message{}, toolErr
		}
		return protocol.Message{}, &BackendError{Persona: p.ID, Turn: turn, Err: err}
	}

	if strings.TrimSpace(msg.Content) == "" {
		return protocol.Message{}, &BackendError{Persona: p.ID, Turn: turn, Err: fmt.Errorf("%w: empty content", ErrUnrecognizedResponse)}
	}
	if o.validator != nil {
		if err := o.validator.Validate(p, msg.Content); err != nil {
			return protocol.Message{}, &BackendError{Persona: p.ID, Turn: turn, Err: err}
		}
	}

	msg.Role = protocol.RoleAgent
	msg.SpeakerID = p.ID
	msg.Sequence = 0
	msg.CreatedAt = time.Time{}
	return msg, nil
}

// narrow returns the context a persona sees. With from set, that is the most
// recent message spoken by that persona, or the last message when it has
// not spoken yet.
func narrow(transcript []protocol.Message, from string) []protocol.Message {
	if from == "" || len(transcript) == 0 {
		return transcript
	}
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].SpeakerID == from {
			return []protocol.Message{transcript[i]}
		}
	}
	return []protocol.Message{transcript[len(transcript)-1]}
}

func (o *Orchestrator) terminate(ctx context.Context, conv *Conversation, reason Reason) *Result {
	conv.terminate(reason)
	result := conv.Result()

	o.emit(ctx, EventTerminated, observability.LevelInfo, map[string]any{
		"session_id":  result.SessionID,
		"reason":      string(result.Reason),
		"turns_taken": result.TurnsTaken,
		"max_turns":   result.MaxTurns,
	})
	return result
}

func (o *Orchestrator) fail(ctx context.Context, conv *Conversation, reason Reason, err error) (*Result, error) {
	conv.fail(reason, err)
	result := conv.Result()

	o.emit(ctx, EventFailed, observability.LevelError, map[string]any{
		"session_id":  result.SessionID,
		"reason":      string(result.Reason),
		"turns_taken": result.TurnsTaken,
		"error":       err.Error(),
	})
	return result, err
}

func (o *Orchestrator) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	o.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "orchestrate.Run",
		Data:      data,
	})
}
