package observability

import "context"

// NoOpObserver drops every event. It is the orchestrator's default observer
// and is skipped by NewMultiObserver.
type NoOpObserver struct{}

var _ Observer = NoOpObserver{}

func (NoOpObserver) OnEvent(context.Context, Event) {}
