package incident

import (
	"github.com/tailored-agentic-units/groupchat/persona"
	"github.com/tailored-agentic-units/groupchat/tools"
)

const (
	IncidentManagerID = "INCIDENT_MANAGER"
	DevOpsAssistantID = "DEVOPS_ASSISTANT"
)

const incidentManagerInstructions = `
You are {{.PersonaID}}, the incident manager. Analyse the log file at {{.LogPath}}.
The current log content is provided before every turn.

Every response must start with "{{.PersonaID}} > {{.LogPath}} |" followed by exactly one of:
- one action from: {{join .Actions ", "}}
- the phrase "{{.Marker}}" when every ERROR or CRITICAL entry is resolved.

Treat lines above the "` + AnnotationHeader + `" marker as original log entries and lines
below it as actions already attempted. Never recommend an action that was already attempted.
If the same action already failed more than once, recommend EscalateIssue.
You never execute actions yourself.
`

const devOpsAssistantInstructions = `
You are {{.PersonaID}}, the DevOps assistant. You receive the latest recommendation of
the incident manager and execute it with the matching tool.

Every response must start with "{{.PersonaID}} >" followed by a short report of the
action you executed and its result, or "{{.Marker}}" when no action was recommended.
Execute exactly one action per turn and never invent actions that were not recommended.
`

// IncidentManager returns the diagnostic persona. It observes the log
// before each turn and recommends one action or no action.
func IncidentManager() persona.Persona {
	return persona.Persona{
		ID:           IncidentManagerID,
		DisplayName:  "Incident Manager",
		Description:  "Analyses the incident log and recommends one remediation action.",
		Instructions: incidentManagerInstructions,
		Role:         persona.RoleDiagnostic,
		Observe:      []string{tools.ReadLogTool},
		Tools:        []string{tools.ReadLogTool},
	}
}

// DevOpsAssistant returns the execution persona. It sees only the latest
// incident manager message and may call the action tools.
func DevOpsAssistant() persona.Persona {
	return persona.Persona{
		ID:           DevOpsAssistantID,
		DisplayName:  "DevOps Assistant",
		Description:  "Executes the remediation action recommended by the incident manager.",
		Instructions: devOpsAssistantInstructions,
		Role:         persona.RoleExecution,
		Tools:        ToolNames(),
		ContextFrom:  IncidentManagerID,
	}
}

// Participants is the canonical turn order.
func Participants() []string {
	return []string{IncidentManagerID, DevOpsAssistantID}
}

// Catalog returns the canonical two-persona catalog.
func Catalog() *persona.Catalog {
	return persona.MustCatalog(IncidentManager(), DevOpsAssistant())
}

// Vars returns template values for the canonical personas.
func Vars(logPath, marker string) persona.Vars {
	return persona.Vars{
		LogPath: logPath,
		Marker:  marker,
		Actions: Vocabulary(),
	}
}
