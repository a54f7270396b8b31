package incident

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
	"github.com/tailored-agentic-units/groupchat/persona"
)

var noActionPattern = regexp.MustCompile(`(?i)\bno\s+(?:further\s+)?action\b`)

// Validator checks persona output against the incident vocabulary:
// "<ID> >" prefix, then either the marker or exactly one action. Repeated
// mentions of the same action count once. Diagnostic
// output also names the log before a "|" separator. General personas are
// not checked.
type Validator struct {
	Marker string
}

// Validate implements orchestrate.ResponseValidator.
func (v Validator) Validate(p persona.Persona, content string) error {
	if p.Role == persona.RoleGeneral || p.Role == "" {
		return nil
	}

	body, ok := stripPrefix(p.ID, content)
	if !ok {
		return unrecognized(p.ID, "missing %q prefix", p.ID+" >")
	}

	if p.Role == persona.RoleDiagnostic {
		path, rest, found := strings.Cut(body, "|")
		if !found || strings.TrimSpace(path) == "" {
			return unrecognized(p.ID, "missing \"<log path> |\" header")
		}
		body = rest
	}

	hasMarker := v.Marker != "" && strings.Contains(strings.ToLower(body), strings.ToLower(v.Marker))
	actions := lo.Uniq(ParseActions(body))

	switch {
	case hasMarker && len(actions) == 0:
		return nil
	case hasMarker:
		return unrecognized(p.ID, "both %q and an action", v.Marker)
	case len(actions) == 1:
		return nil
	case len(actions) > 1:
		return unrecognized(p.ID, "%d actions, want exactly one", len(actions))
	case p.Role == persona.RoleExecution && noActionPattern.MatchString(body):
		return nil
	default:
		return unrecognized(p.ID, "no recognised action")
	}
}

func stripPrefix(id, content string) (string, bool) {
	content = strings.TrimSpace(content)
	rest, ok := strings.CutPrefix(content, id)
	if !ok {
		return "", false
	}
	rest = strings.TrimLeft(rest, " \t")
	rest, ok = strings.CutPrefix(rest, ">")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func unrecognized(id, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", orchestrate.ErrUnrecognizedResponse, id, fmt.Sprintf(format, args...))
}

// EscalationTermination stops the conversation once the execution persona
// reports an escalation. With SpeakerID empty, any agent's report counts.
type EscalationTermination struct {
	SpeakerID string
}

func (e EscalationTermination) ShouldTerminate(transcript []protocol.Message) (bool, orchestrate.Reason) {
	if len(transcript) == 0 {
		return false, orchestrate.ReasonNone
	}
	last := transcript[len(transcript)-1]
	if last.Role != protocol.RoleAgent {
		return false, orchestrate.ReasonNone
	}
	if e.SpeakerID != "" && last.SpeakerID != e.SpeakerID {
		return false, orchestrate.ReasonNone
	}
	for _, a := range ParseActions(last.Content) {
		if a.Kind == KindEscalateIssue {
			return true, orchestrate.ReasonEscalated
		}
	}
	return false, orchestrate.ReasonNone
}
