// Package report turns finished conversations into incident tickets and
// persists them. A Report is a self-contained record of one session:
// outcome, participants, and the full transcript.
package report

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
)

// Report is the persisted form of an orchestrate.Result.
type Report struct {
	ID           string             `json:"id"`
	SessionID    string             `json:"session_id"`
	CreatedAt    time.Time          `json:"created_at"`
	Prompt       string             `json:"prompt"`
	LogPath      string             `json:"log_path,omitempty"`
	Participants []string           `json:"participants"`
	Status       orchestrate.Status `json:"status"`
	Reason       orchestrate.Reason `json:"reason"`
	TurnsTaken   int                `json:"turns_taken"`
	MaxTurns     int                `json:"max_turns"`
	Actions      []string           `json:"actions,omitempty"`
	Error        string             `json:"error,omitempty"`
	Transcript   []protocol.Message `json:"transcript"`
}

// Option sets optional report fields.
type Option func(*Report)

// WithLogPath records the observed log.
func WithLogPath(path string) Option {
	return func(r *Report) { r.LogPath = path }
}

// WithActions records the actions taken during the session.
func WithActions(actions ...string) Option {
	return func(r *Report) { r.Actions = append([]string(nil), actions...) }
}

// WithClock overrides time.Now for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Report) { r.CreatedAt = now().UTC() }
}

// FromResult builds a report with a fresh UUIDv7 id.
func FromResult(res *orchestrate.Result, opts ...Option) Report {
	r := Report{
		ID:           uuid.Must(uuid.NewV7()).String(),
		SessionID:    res.SessionID,
		CreatedAt:    time.Now().UTC(),
		Participants: append([]string(nil), res.Participants...),
		Status:       res.Status,
		Reason:       res.Reason,
		TurnsTaken:   res.TurnsTaken,
		MaxTurns:     res.MaxTurns,
		Transcript:   append([]protocol.Message(nil), res.Transcript...),
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	for _, msg := range res.Transcript {
		if msg.IsUser() {
			r.Prompt = msg.Content
			break
		}
	}

	for _, opt := range opts {
		opt(&r)
	}
	return r
}

const ticketTemplate = `# Incident report {{.ID}}

| Field | Value |
|-------|-------|
| Session | {{.SessionID}} |
| Created | {{.CreatedAt.Format "2006-01-02T15:04:05Z07:00"}} |
| Status | {{.Status}} |
| Reason | {{.Reason}} |
| Turns | {{.TurnsTaken}} / {{.MaxTurns}} |
{{- if .LogPath}}
| Log | {{.LogPath}} |
{{- end}}
{{- if .Error}}
| Error | {{cell .Error}} |
{{- end}}

## Prompt

{{.Prompt}}
{{- if .Actions}}

## Actions
{{range .Actions}}
- {{.}}
{{- end}}
{{- end}}

## Transcript
{{range .Transcript}}
{{.Sequence}}. **{{speaker .}}**: {{.Content}}
{{- range .ToolCalls}}
   - tool ` + "`{{.Name}}`" + `{{if .IsError}} (error){{end}}
{{- end}}
{{- end}}
`

var ticket = template.Must(template.New("ticket").Funcs(template.FuncMap{
	"speaker": func(m protocol.Message) string {
		if m.IsUser() {
			return "USER"
		}
		return m.SpeakerID
	},
	"cell": func(s string) string {
		return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
	},
}).Parse(ticketTemplate))

// Markdown renders the report as a ticket.
func Markdown(r Report) (string, error) {
	var buf bytes.Buffer
	if err := ticket.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
