package kernel

import "github.com/tailored-agentic-units/groupchat/observability"

// Kernel event types emitted around each group chat run.
const (
	EventRunStart    observability.EventType = "kernel.run.start"
	EventRunComplete observability.EventType = "kernel.run.complete"
	EventReportSaved observability.EventType = "kernel.report.saved"
	EventError       observability.EventType = "kernel.error"
)
