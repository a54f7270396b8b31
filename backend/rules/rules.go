// Package rules is an offline backend that plays the canonical incident
// personas deterministically. The diagnostic persona reads the incident log
// and recommends one action; the execution persona parses that
// recommendation and runs the matching tool.
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/tailored-agentic-units/groupchat/backend"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/incident"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
	"github.com/tailored-agentic-units/groupchat/persona"
	"github.com/tailored-agentic-units/groupchat/tools"
)

// ErrUnsupportedRole is returned for personas that are neither diagnostic
// nor execution.
var ErrUnsupportedRole = errors.New("unsupported persona role")

// Option configures a Backend.
type Option func(*Backend)

// WithLogPath sets the log path named in diagnostic responses.
func WithLogPath(path string) Option {
	return func(b *Backend) { b.logPath = path }
}

// WithMarker sets the no-action phrase.
func WithMarker(marker string) Option {
	return func(b *Backend) { b.marker = marker }
}

// WithFailureThreshold sets how many failures of one action lead to
// escalation.
func WithFailureThreshold(n int) Option {
	return func(b *Backend) { b.threshold = n }
}

// Backend implements backend.Backend without a model.
type Backend struct {
	logPath   string
	marker    string
	threshold int
	calls     atomic.Int64
}

// New creates a rules backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		logPath:   "log",
		marker:    orchestrate.DefaultMarker,
		threshold: incident.DefaultFailureThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Invoke(ctx context.Context, inv backend.Invocation) (protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return protocol.Message{}, err
	}

	switch inv.Persona.Role {
	case persona.RoleDiagnostic:
		return b.diagnose(ctx, inv)
	case persona.RoleExecution:
		return b.execute(ctx, inv)
	default:
		return protocol.Message{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedRole, inv.Persona.Role, inv.Persona.ID)
	}
}

func (b *Backend) diagnose(ctx context.Context, inv backend.Invocation) (protocol.Message, error) {
	var msg protocol.Message

	content, ok := observed(inv.Observations, tools.ReadLogTool)
	if !ok {
		call, res, err := b.call(ctx, inv.Tools, tools.ReadLogTool, nil)
		if err != nil {
			return protocol.Message{}, err
		}
		msg.ToolCalls = append(msg.ToolCalls, call)
		content = res.Content
	}

	rec := incident.ParseLog(content).Recommend(b.threshold)

	verdict := capitalize(b.marker)
	if !rec.NoAction {
		verdict = rec.Action.String()
	}
	msg.Content = fmt.Sprintf("%s > %s | %s", inv.Persona.ID, b.logPath, verdict)
	return msg, nil
}

func (b *Backend) execute(ctx context.Context, inv backend.Invocation) (protocol.Message, error) {
	if len(inv.Transcript) == 0 {
		return protocol.Message{}, errors.New("no recommendation to act on")
	}

	recommendation := inv.Transcript[len(inv.Transcript)-1].Content
	if _, rest, found := strings.Cut(recommendation, "|"); found {
		recommendation = rest
	}

	actions := lo.Uniq(incident.ParseActions(recommendation))
	switch {
	case len(actions) == 0 && strings.Contains(strings.ToLower(recommendation), strings.ToLower(b.marker)):
		return protocol.Message{Content: inv.Persona.ID + " > No action taken"}, nil
	case len(actions) != 1:
		return protocol.Message{}, fmt.Errorf("%w: %d actions in %q", orchestrate.ErrUnrecognizedResponse, len(actions), strings.TrimSpace(recommendation))
	}

	action := actions[0]
	var args json.RawMessage
	if action.Kind.Targeted() {
		data, err := json.Marshal(incident.TargetArgs{Target: action.Target})
		if err != nil {
			return protocol.Message{}, err
		}
		args = data
	}

	call, res, err := b.call(ctx, inv.Tools, string(action.Kind), args)
	if err != nil {
		return protocol.Message{}, err
	}

	content := fmt.Sprintf("%s > %s", inv.Persona.ID, action.PastTense())
	if res.IsError {
		content += " (failed)"
	}
	return protocol.Message{Content: content, ToolCalls: []protocol.ToolCall{call}}, nil
}

func (b *Backend) call(ctx context.Context, set backend.ToolSet, name string, args json.RawMessage) (protocol.ToolCall, tools.Result, error) {
	if set == nil {
		set = backend.NoTools{}
	}

	call := protocol.ToolCall{
		ID:        fmt.Sprintf("rules-%d", b.calls.Add(1)),
		Name:      name,
		Arguments: string(args),
	}

	res, err := set.Execute(ctx, name, args)
	if err != nil {
		return call, tools.Result{}, fmt.Errorf("call %s: %w", name, err)
	}
	call.Result = res.Content
	call.IsError = res.IsError
	return call, res, nil
}

func observed(obs []backend.Observation, tool string) (string, bool) {
	for _, o := range obs {
		if o.Tool == tool {
			return o.Content, true
		}
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
