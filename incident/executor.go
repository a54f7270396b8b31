package incident

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/tools"
)

// OutcomeFunc decides the outcome of an executed action.
type OutcomeFunc func(a Action) Outcome

// AlwaysSucceed is the default OutcomeFunc.
func AlwaysSucceed(Action) Outcome { return OutcomeSuccess }

// FailTargets returns an OutcomeFunc failing every action on the given
// targets.
func FailTargets(targets ...string) OutcomeFunc {
	failing := make(map[string]bool, len(targets))
	for _, t := range targets {
		failing[t] = true
	}
	return func(a Action) Outcome {
		if failing[a.Target] {
			return OutcomeFailed
		}
		return OutcomeSuccess
	}
}

// Executor carries out remediation actions against an incident log. It has
// no access to real infrastructure: executing an action records an attempt
// in the log's annotation region, so the next read of the log observes it.
type Executor struct {
	path    string
	outcome OutcomeFunc
	now     func() time.Time
	mu      sync.Mutex
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithOutcome overrides AlwaysSucceed.
func WithOutcome(fn OutcomeFunc) ExecutorOption {
	return func(e *Executor) { e.outcome = fn }
}

// WithClock overrides time.Now for annotation timestamps.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

// NewExecutor creates an Executor annotating the log at path.
func NewExecutor(path string, opts ...ExecutorOption) *Executor {
	e := &Executor{
		path:    path,
		outcome: AlwaysSucceed,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the action and annotates the log. A missing log yields
// tools.ErrResourceNotFound.
func (e *Executor) Execute(ctx context.Context, a Action) (Attempt, error) {
	if err := ctx.Err(); err != nil {
		return Attempt{}, err
	}
	if a.Kind.Targeted() && a.Target == "" {
		return Attempt{}, fmt.Errorf("%w: %s requires a target", tools.ErrInvalidArguments, a.Kind)
	}

	attempt := Attempt{Action: a, Outcome: e.outcome(a)}
	if err := e.Annotate(attempt); err != nil {
		return Attempt{}, err
	}
	return attempt, nil
}

// Annotate appends an attempt line, opening the annotation region first
// when the log has none.
func (e *Executor) Annotate(a Attempt) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: %s", tools.ErrResourceNotFound, e.path)
		}
		return fmt.Errorf("read %s: %w", e.path, err)
	}

	var buf bytes.Buffer
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		buf.WriteByte('\n')
	}
	if !hasHeader(data) {
		buf.WriteString(AnnotationHeader)
		buf.WriteByte('\n')
	}
	buf.WriteString(e.now().UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	buf.WriteString(FormatAttempt(a))
	buf.WriteByte('\n')

	f, err := os.OpenFile(e.path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", tools.ErrResourceNotFound, e.path, err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("annotate %s: %w", e.path, err)
	}
	return nil
}

func hasHeader(data []byte) bool {
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == AnnotationHeader {
			return true
		}
	}
	return false
}

// TargetArgs is the argument payload of the action tools.
type TargetArgs struct {
	Target string `json:"target,omitempty"`
}

var toolDescriptions = map[Kind]string{
	KindRestartService:      "Restarts the named service.",
	KindRollbackTransaction: "Rolls back the failing transaction.",
	KindRedeployResource:    "Redeploys the named resource.",
	KindIncreaseQuota:       "Increases the exhausted quota.",
	KindEscalateIssue:       "Escalates the incident to on-call engineers.",
}

// Tool returns the definition and handler of the action tool for kind.
func (e *Executor) Tool(kind Kind) (protocol.Tool, tools.Handler) {
	params := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
	if kind.Targeted() {
		params["properties"] = map[string]any{
			"target": map[string]any{
				"type":        "string",
				"description": "Name of the service or resource.",
			},
		}
		params["required"] = []string{"target"}
	}

	tool := protocol.Tool{
		Name:        string(kind),
		Description: toolDescriptions[kind],
		Parameters:  params,
	}

	handler := func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
		var args TargetArgs
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return tools.Result{}, fmt.Errorf("%w: %v", tools.ErrInvalidArguments, err)
			}
		}

		action := Action{Kind: kind}
		if kind.Targeted() {
			action.Target = strings.TrimSpace(args.Target)
		}

		attempt, err := e.Execute(ctx, action)
		if err != nil {
			return tools.Result{}, err
		}
		return tools.Result{
			Content: FormatAttempt(attempt),
			IsError: attempt.Outcome == OutcomeFailed,
		}, nil
	}

	return tool, handler
}

// Register adds all five action tools to the registry.
func (e *Executor) Register(r *tools.Registry) error {
	for _, kind := range Kinds() {
		tool, handler := e.Tool(kind)
		if err := r.Register(tool, handler); err != nil {
			return fmt.Errorf("register %s: %w", kind, err)
		}
	}
	return nil
}

// ToolNames returns the names of the action tools.
func ToolNames() []string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return names
}
