package incident_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tailored-agentic-units/groupchat/incident"
)

func Test_ParseActions_Recognises_Phrasings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []incident.Action
	}{
		{
			name: "imperative restart",
			text: "INCIDENT_MANAGER > log.txt | Restart service auth-api",
			want: []incident.Action{incident.RestartService("auth-api")},
		},
		{
			name: "past tense restart without noun",
			text: "DEVOPS_ASSISTANT > restarted auth-api",
			want: []incident.Action{incident.RestartService("auth-api")},
		},
		{
			name: "call notation",
			text: "RedeployResource(billing-worker)",
			want: []incident.Action{incident.RedeployResource("billing-worker")},
		},
		{
			name: "call notation without target",
			text: "IncreaseQuota",
			want: []incident.Action{incident.IncreaseQuota()},
		},
		{
			name: "rollback past tense",
			text: "rolled back the transaction",
			want: []incident.Action{incident.RollbackTransaction()},
		},
		{
			name: "escalation",
			text: "Escalated issue to on-call",
			want: []incident.Action{incident.EscalateIssue()},
		},
		{
			name: "trailing punctuation trimmed",
			text: "Redeploy resource cache-01.",
			want: []incident.Action{incident.RedeployResource("cache-01")},
		},
		{
			name: "order of appearance",
			text: "increase the quota, then restart service api",
			want: []incident.Action{incident.IncreaseQuota(), incident.RestartService("api")},
		},
		{
			name: "marker only",
			text: "No action needed",
			want: []incident.Action{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, incident.ParseActions(tt.text))
		})
	}
}

func Test_Action_Renders_Round_Trip_Through_Parser(t *testing.T) {
	req := require.New(t)

	actions := []incident.Action{
		incident.RestartService("auth-api"),
		incident.RollbackTransaction(),
		incident.RedeployResource("worker"),
		incident.IncreaseQuota(),
		incident.EscalateIssue(),
	}

	for _, a := range actions {
		req.Equal([]incident.Action{a}, incident.ParseActions(a.String()), a.String())
		req.Equal([]incident.Action{a}, incident.ParseActions(a.PastTense()), a.PastTense())
	}
}

func Test_Kinds_Match_Tool_Names(t *testing.T) {
	req := require.New(t)

	names := incident.ToolNames()
	req.Len(names, 5)
	for i, k := range incident.Kinds() {
		req.Equal(string(k), names[i])
	}
	req.True(incident.KindRestartService.Targeted())
	req.False(incident.KindIncreaseQuota.Targeted())
}
