package orchestrate

import "github.com/tailored-agentic-units/groupchat/observability"

// Orchestration event types emitted by Run.
const (
	EventRunStart        observability.EventType = "orchestrate.run.start"
	EventTurnStart       observability.EventType = "orchestrate.turn.start"
	EventSpeakerSelected observability.EventType = "orchestrate.speaker.selected"
	EventToolObserve     observability.EventType = "orchestrate.tool.observe"
	EventTurnComplete    observability.EventType = "orchestrate.turn.complete"
	EventTerminated      observability.EventType = "orchestrate.terminated"
	EventFailed          observability.EventType = "orchestrate.failed"
)
