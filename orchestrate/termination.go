package orchestrate

import (
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"

	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

// Reason explains why a conversation stopped.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMarkerFound     Reason = "marker_found"
	ReasonEscalated       Reason = "escalated"
	ReasonBudgetExhausted Reason = "budget_exhausted"
	ReasonCancelled       Reason = "cancelled"
	ReasonToolError       Reason = "tool_error"
	ReasonBackendError    Reason = "backend_error"
	ReasonSelectionError  Reason = "selection_error"
)

// TerminationStrategy decides, after each agent message, whether the
// conversation has converged.
type TerminationStrategy interface {
	ShouldTerminate(transcript []protocol.Message) (bool, Reason)
}

// TerminationFunc adapts a function to the TerminationStrategy interface.
type TerminationFunc func(transcript []protocol.Message) (bool, Reason)

func (f TerminationFunc) ShouldTerminate(transcript []protocol.Message) (bool, Reason) {
	return f(transcript)
}

// lastAgent returns the last message when it was spoken by an agent.
func lastAgent(transcript []protocol.Message) (protocol.Message, bool) {
	if len(transcript) == 0 {
		return protocol.Message{}, false
	}
	last := transcript[len(transcript)-1]
	if last.Role != protocol.RoleAgent {
		return protocol.Message{}, false
	}
	return last, true
}

// PhraseTermination stops when the last agent message contains Marker,
// compared case-insensitively as a substring.
type PhraseTermination struct {
	Marker string
}

func (p PhraseTermination) ShouldTerminate(transcript []protocol.Message) (bool, Reason) {
	last, ok := lastAgent(transcript)
	if !ok || p.Marker == "" {
		return false, ReasonNone
	}
	if strings.Contains(strings.ToLower(last.Content), strings.ToLower(p.Marker)) {
		return true, ReasonMarkerFound
	}
	return false, ReasonNone
}

// AnyPhraseTermination stops when the last agent message contains any of
// several markers. Matching is case-insensitive and runs in a single pass
// over the content.
type AnyPhraseTermination struct {
	machine *goahocorasick.Machine
	markers []string
}

// NewAnyPhraseTermination builds the matcher for the given markers. Empty
// and duplicate markers are ignored.
func NewAnyPhraseTermination(markers ...string) (*AnyPhraseTermination, error) {
	cleaned := lo.Uniq(lo.FilterMap(markers, func(m string, _ int) (string, bool) {
		m = strings.ToLower(strings.TrimSpace(m))
		return m, m != ""
	}))
	if len(cleaned) == 0 {
		return &AnyPhraseTermination{}, nil
	}

	dict := lo.Map(cleaned, func(m string, _ int) []rune { return []rune(m) })
	machine := new(goahocorasick.Machine)
	if err := machine.Build(dict); err != nil {
		return nil, configError(err)
	}
	return &AnyPhraseTermination{machine: machine, markers: cleaned}, nil
}

// Markers returns the normalized markers.
func (a *AnyPhraseTermination) Markers() []string {
	return append([]string(nil), a.markers...)
}

func (a *AnyPhraseTermination) ShouldTerminate(transcript []protocol.Message) (bool, Reason) {
	last, ok := lastAgent(transcript)
	if !ok || a.machine == nil {
		return false, ReasonNone
	}
	terms := a.machine.MultiPatternSearch([]rune(strings.ToLower(last.Content)), true)
	if len(terms) > 0 {
		return true, ReasonMarkerFound
	}
	return false, ReasonNone
}

// AnyOf stops as soon as one of the strategies does, reporting that
// strategy's reason. Strategies are consulted in order.
func AnyOf(strategies ...TerminationStrategy) TerminationStrategy {
	return TerminationFunc(func(transcript []protocol.Message) (bool, Reason) {
		for _, s := range strategies {
			if s == nil {
				continue
			}
			if done, reason := s.ShouldTerminate(transcript); done {
				return true, reason
			}
		}
		return false, ReasonNone
	})
}
