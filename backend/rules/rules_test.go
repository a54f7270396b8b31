package rules_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tailored-agentic-units/groupchat/backend"
	"github.com/tailored-agentic-units/groupchat/backend/mock"
	"github.com/tailored-agentic-units/groupchat/backend/rules"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/incident"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
	"github.com/tailored-agentic-units/groupchat/persona"
	"github.com/tailored-agentic-units/groupchat/tools"
)

const incidentLog = `2026-10-15 10:00:01 ERROR [auth-api] service unresponsive
2026-10-15 10:00:05 CRITICAL [payments-db] transaction deadlock detected
`

func setup(t *testing.T, opts ...incident.ExecutorOption) (string, *tools.Registry) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(incidentLog), 0o644))

	reg := tools.NewRegistry()
	tool, handler := tools.ReadText(tools.ReadLogTool, path, tools.FileReader{})
	require.NoError(t, reg.Register(tool, handler))
	require.NoError(t, incident.NewExecutor(path, opts...).Register(reg))
	return path, reg
}

func run(t *testing.T, path string, reg *tools.Registry, maxTurns int) *orchestrate.Result {
	t.Helper()

	o, err := orchestrate.New(incident.Catalog(), rules.New(rules.WithLogPath(path)),
		orchestrate.WithTools(reg),
		orchestrate.WithValidator(incident.Validator{Marker: orchestrate.DefaultMarker}),
		orchestrate.WithVars(incident.Vars(path, orchestrate.DefaultMarker)),
		orchestrate.WithTermination(orchestrate.AnyOf(
			orchestrate.PhraseTermination{Marker: orchestrate.DefaultMarker},
			incident.EscalationTermination{SpeakerID: incident.DevOpsAssistantID},
		)),
	)
	require.NoError(t, err)

	conv, err := orchestrate.NewConversation("Investigate the incident", incident.Participants(), maxTurns)
	require.NoError(t, err)

	result, err := o.Run(context.Background(), conv)
	require.NoError(t, err)
	return result
}

func contents(msgs []protocol.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Content)
	}
	return out
}

func Test_Rules_Resolve_Incident(t *testing.T) {
	req := require.New(t)
	path, reg := setup(t)

	result := run(t, path, reg, 10)

	req.Equal(orchestrate.StatusTerminated, result.Status)
	req.Equal(orchestrate.ReasonMarkerFound, result.Reason)
	req.Equal(5, result.TurnsTaken)
	req.Equal([]string{
		"Investigate the incident",
		"INCIDENT_MANAGER > " + path + " | Restart service auth-api",
		"DEVOPS_ASSISTANT > restarted service auth-api",
		"INCIDENT_MANAGER > " + path + " | Rollback transaction",
		"DEVOPS_ASSISTANT > rolled back transaction",
		"INCIDENT_MANAGER > " + path + " | No action needed",
	}, contents(result.Transcript))

	req.Len(result.Transcript[2].ToolCalls, 1)
	req.Equal("restart_service", result.Transcript[2].ToolCalls[0].Name)
	req.Equal(`{"target":"auth-api"}`, result.Transcript[2].ToolCalls[0].Arguments)

	log := incident.ParseLog(readFile(t, path))
	req.Len(log.Attempts, 2)
	req.Empty(log.Unresolved())
}

func Test_Rules_Escalate_Repeated_Failures(t *testing.T) {
	req := require.New(t)
	path, reg := setup(t, incident.WithOutcome(incident.FailTargets("auth-api")))

	result := run(t, path, reg, 10)

	req.Equal(orchestrate.ReasonEscalated, result.Reason)
	req.Equal(6, result.TurnsTaken)
	req.Equal([]string{
		"Investigate the incident",
		"INCIDENT_MANAGER > " + path + " | Restart service auth-api",
		"DEVOPS_ASSISTANT > restarted service auth-api (failed)",
		"INCIDENT_MANAGER > " + path + " | Redeploy resource auth-api",
		"DEVOPS_ASSISTANT > redeployed resource auth-api (failed)",
		"INCIDENT_MANAGER > " + path + " | Escalate issue",
		"DEVOPS_ASSISTANT > escalated issue",
	}, contents(result.Transcript))
	req.NotEmpty(result.Transcript[6].ToolCalls[0].Result)
}

func Test_Rules_Budget(t *testing.T) {
	req := require.New(t)
	path, reg := setup(t)

	result := run(t, path, reg, 3)
	req.Equal(orchestrate.ReasonBudgetExhausted, result.Reason)
	req.Len(result.Transcript, 4)
}

func Test_Rules_Diagnose_Reads_Log_Without_Observation(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	set := mock.NewMockToolSet(ctrl)
	set.EXPECT().
		Execute(gomock.Any(), tools.ReadLogTool, gomock.Nil()).
		Return(tools.Result{Content: "INFO nothing to see"}, nil)

	msg, err := rules.New(rules.WithLogPath("app.log")).Invoke(context.Background(), backend.Invocation{
		Persona: incident.IncidentManager(),
		Tools:   set,
	})
	req.NoError(err)
	req.Equal("INCIDENT_MANAGER > app.log | No action needed", msg.Content)
	req.Len(msg.ToolCalls, 1)
	req.Equal(tools.ReadLogTool, msg.ToolCalls[0].Name)
}

func Test_Rules_Errors(t *testing.T) {
	req := require.New(t)
	b := rules.New()

	_, err := b.Invoke(context.Background(), backend.Invocation{
		Persona: persona.Persona{ID: "X", Role: persona.RoleGeneral},
	})
	req.ErrorIs(err, rules.ErrUnsupportedRole)

	_, err = b.Invoke(context.Background(), backend.Invocation{
		Persona:    incident.DevOpsAssistant(),
		Transcript: []protocol.Message{protocol.NewAgentMessage(incident.IncidentManagerID, "INCIDENT_MANAGER > log | hmm")},
		Tools:      backend.NoTools{},
	})
	req.ErrorIs(err, orchestrate.ErrUnrecognizedResponse)

	_, err = b.Invoke(context.Background(), backend.Invocation{
		Persona:    incident.DevOpsAssistant(),
		Transcript: []protocol.Message{protocol.NewAgentMessage(incident.IncidentManagerID, "INCIDENT_MANAGER > log | Increase quota")},
		Tools:      backend.NoTools{},
	})
	req.ErrorIs(err, tools.ErrNotFound)

	msg, err := b.Invoke(context.Background(), backend.Invocation{
		Persona:    incident.DevOpsAssistant(),
		Transcript: []protocol.Message{protocol.NewAgentMessage(incident.IncidentManagerID, "INCIDENT_MANAGER > log | No action needed")},
	})
	req.NoError(err)
	req.Equal("DEVOPS_ASSISTANT > No action taken", msg.Content)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Invoke(ctx, backend.Invocation{Persona: incident.IncidentManager()})
	req.ErrorIs(err, context.Canceled)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func Test_Rules_Execute_Repeated_Mention_Is_One_Action(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	set := mock.NewMockToolSet(ctrl)
	set.EXPECT().
		Execute(gomock.Any(), "restart_service", gomock.Any()).
		Return(tools.Result{Content: "ACTION restart_service target=auth-api result=success"}, nil).
		Times(1)

	msg, err := rules.New().Invoke(context.Background(), backend.Invocation{
		Persona: incident.DevOpsAssistant(),
		Transcript: []protocol.Message{protocol.NewAgentMessage(incident.IncidentManagerID,
			"INCIDENT_MANAGER > log | RestartService(auth-api): restart service auth-api")},
		Tools: set,
	})
	req.NoError(err)
	req.Equal("DEVOPS_ASSISTANT > restarted service auth-api", msg.Content)
}
