package orchestrate_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
)

var participants = []string{"INCIDENT_MANAGER", "DEVOPS_ASSISTANT"}

func userMsg(content string) protocol.Message {
	return protocol.NewMessage(protocol.RoleUser, content)
}

func agentMsg(speaker, content string) protocol.Message {
	return protocol.NewAgentMessage(speaker, content)
}

func Test_RoundRobin_Select(t *testing.T) {
	tests := []struct {
		name         string
		transcript   []protocol.Message
		participants []string
		current      int
		want         orchestrate.Selection
	}{
		{
			name:         "empty transcript starts at first",
			participants: participants,
			current:      1,
			want:         orchestrate.Selection{Index: 0, PersonaID: "INCIDENT_MANAGER"},
		},
		{
			name:         "user message resets to first",
			transcript:   []protocol.Message{userMsg("hi"), agentMsg("INCIDENT_MANAGER", "x"), userMsg("again")},
			participants: participants,
			current:      0,
			want:         orchestrate.Selection{Index: 0, PersonaID: "INCIDENT_MANAGER"},
		},
		{
			name:         "agent message advances",
			transcript:   []protocol.Message{userMsg("hi"), agentMsg("INCIDENT_MANAGER", "x")},
			participants: participants,
			current:      0,
			want:         orchestrate.Selection{Index: 1, PersonaID: "DEVOPS_ASSISTANT"},
		},
		{
			name:         "wraps around",
			transcript:   []protocol.Message{userMsg("hi"), agentMsg("DEVOPS_ASSISTANT", "x")},
			participants: participants,
			current:      1,
			want:         orchestrate.Selection{Index: 0, PersonaID: "INCIDENT_MANAGER"},
		},
		{
			name:         "single participant",
			transcript:   []protocol.Message{userMsg("hi"), agentMsg("SOLO", "x")},
			participants: []string{"SOLO"},
			current:      0,
			want:         orchestrate.Selection{Index: 0, PersonaID: "SOLO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := orchestrate.RoundRobin{}.Select(tt.transcript, tt.participants, tt.current)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_RoundRobin_Result_Always_In_Range(t *testing.T) {
	req := require.New(t)
	roster := []string{"A", "B", "C"}
	transcript := []protocol.Message{userMsg("go"), agentMsg("A", "x")}

	for current := range roster {
		got, err := orchestrate.RoundRobin{}.Select(transcript, roster, current)
		req.NoError(err)
		req.GreaterOrEqual(got.Index, 0)
		req.Less(got.Index, len(roster))
		req.Equal((current+1)%len(roster), got.Index)
		req.Equal(roster[got.Index], got.PersonaID)
	}
}

func Test_RoundRobin_Errors(t *testing.T) {
	req := require.New(t)

	_, err := orchestrate.RoundRobin{}.Select(nil, nil, 0)
	req.ErrorIs(err, orchestrate.ErrNoParticipants)

	_, err = orchestrate.RoundRobin{}.Select([]protocol.Message{agentMsg("A", "x")}, []string{"A"}, 3)
	req.Error(err)
}

func Test_PhraseTermination(t *testing.T) {
	term := orchestrate.PhraseTermination{Marker: "No Action Needed"}

	tests := []struct {
		name       string
		transcript []protocol.Message
		done       bool
	}{
		{"empty transcript", nil, false},
		{"user last", []protocol.Message{userMsg("no action needed")}, false},
		{"agent without marker", []protocol.Message{userMsg("hi"), agentMsg("A", "Restart service api")}, false},
		{"agent with marker", []protocol.Message{userMsg("hi"), agentMsg("A", "A > log | no action NEEDED.")}, true},
		{"marker in earlier message only", []protocol.Message{userMsg("hi"), agentMsg("A", "no action needed"), agentMsg("B", "restarted api")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done, reason := term.ShouldTerminate(tt.transcript)
			require.Equal(t, tt.done, done)
			if tt.done {
				require.Equal(t, orchestrate.ReasonMarkerFound, reason)
			} else {
				require.Equal(t, orchestrate.ReasonNone, reason)
			}
		})
	}
}

func Test_AnyPhraseTermination(t *testing.T) {
	req := require.New(t)

	term, err := orchestrate.NewAnyPhraseTermination("No action needed", "all clear", "", "ALL CLEAR")
	req.NoError(err)
	req.Equal([]string{"no action needed", "all clear"}, term.Markers())

	done, reason := term.ShouldTerminate([]protocol.Message{userMsg("x"), agentMsg("A", "Systems are All Clear now")})
	req.True(done)
	req.Equal(orchestrate.ReasonMarkerFound, reason)

	done, _ = term.ShouldTerminate([]protocol.Message{userMsg("all clear")})
	req.False(done)

	done, _ = term.ShouldTerminate([]protocol.Message{userMsg("x"), agentMsg("A", "restart service api")})
	req.False(done)

	empty, err := orchestrate.NewAnyPhraseTermination()
	req.NoError(err)
	done, _ = empty.ShouldTerminate([]protocol.Message{agentMsg("A", "anything")})
	req.False(done)
}

func Test_AnyOf_Reports_First_Matching_Reason(t *testing.T) {
	req := require.New(t)

	never := orchestrate.TerminationFunc(func([]protocol.Message) (bool, orchestrate.Reason) {
		return false, orchestrate.ReasonNone
	})
	escalated := orchestrate.TerminationFunc(func([]protocol.Message) (bool, orchestrate.Reason) {
		return true, orchestrate.ReasonEscalated
	})

	done, reason := orchestrate.AnyOf(never, nil, escalated, orchestrate.PhraseTermination{Marker: "x"}).
		ShouldTerminate([]protocol.Message{agentMsg("A", "x")})
	req.True(done)
	req.Equal(orchestrate.ReasonEscalated, reason)

	done, _ = orchestrate.AnyOf(never).ShouldTerminate([]protocol.Message{agentMsg("A", "x")})
	req.False(done)
}
