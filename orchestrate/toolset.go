package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/tailored-agentic-units/groupchat/backend"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/persona"
	"github.com/tailored-agentic-units/groupchat/tools"
)

// scopedTools exposes only the tools a persona is granted and turns every
// execution failure into a *ToolError for the turn.
type scopedTools struct {
	base    backend.ToolSet
	allowed map[string]struct{}
	persona string
	turn    int
}

func newScopedTools(base backend.ToolSet, p persona.Persona, turn int) *scopedTools {
	return &scopedTools{
		base:    base,
		allowed: lo.SliceToMap(p.Tools, func(name string) (string, struct{}) { return name, struct{}{} }),
		persona: p.ID,
		turn:    turn,
	}
}

func (s *scopedTools) List() []protocol.Tool {
	return lo.Filter(s.base.List(), func(t protocol.Tool, _ int) bool {
		_, ok := s.allowed[t.Name]
		return ok
	})
}

func (s *scopedTools) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	if _, ok := s.allowed[name]; !ok {
		return tools.Result{}, &ToolError{
			Tool:    name,
			Persona: s.persona,
			Turn:    s.turn,
			Err:     fmt.Errorf("%w: %s is not available to %s", tools.ErrNotFound, name, s.persona),
		}
	}

	result, err := s.base.Execute(ctx, name, args)
	if err != nil {
		return tools.Result{}, &ToolError{Tool: name, Persona: s.persona, Turn: s.turn, Err: err}
	}
	return result, nil
}
