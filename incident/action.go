// Package incident holds the incident-response domain played by the canonical
// group chat: the action vocabulary, the log format with its annotation
// region, the executor tools, and the personas that use them.
package incident

import (
	"regexp"
	"sort"
	"strings"
)

// Kind names a remediation action. Kinds double as executor tool names.
type Kind string

const (
	KindRestartService      Kind = "restart_service"
	KindRollbackTransaction Kind = "rollback_transaction"
	KindRedeployResource    Kind = "redeploy_resource"
	KindIncreaseQuota       Kind = "increase_quota"
	KindEscalateIssue       Kind = "escalate_issue"
)

// Kinds lists every action kind in vocabulary order.
func Kinds() []Kind {
	return []Kind{
		KindRestartService,
		KindRollbackTransaction,
		KindRedeployResource,
		KindIncreaseQuota,
		KindEscalateIssue,
	}
}

// Targeted reports whether the kind acts on a named service or resource.
func (k Kind) Targeted() bool {
	return k == KindRestartService || k == KindRedeployResource
}

// Action is one remediation step. Target is empty for untargeted kinds.
type Action struct {
	Kind   Kind   `json:"kind"`
	Target string `json:"target,omitempty"`
}

func RestartService(name string) Action   { return Action{Kind: KindRestartService, Target: name} }
func RollbackTransaction() Action         { return Action{Kind: KindRollbackTransaction} }
func RedeployResource(name string) Action { return Action{Kind: KindRedeployResource, Target: name} }
func IncreaseQuota() Action               { return Action{Kind: KindIncreaseQuota} }
func EscalateIssue() Action               { return Action{Kind: KindEscalateIssue} }

var (
	imperative = map[Kind]string{
		KindRestartService:      "Restart service",
		KindRollbackTransaction: "Rollback transaction",
		KindRedeployResource:    "Redeploy resource",
		KindIncreaseQuota:       "Increase quota",
		KindEscalateIssue:       "Escalate issue",
	}
	past = map[Kind]string{
		KindRestartService:      "restarted service",
		KindRollbackTransaction: "rolled back transaction",
		KindRedeployResource:    "redeployed resource",
		KindIncreaseQuota:       "increased quota",
		KindEscalateIssue:       "escalated issue",
	}
)

// String renders the action as an instruction, e.g. "Restart service auth-api".
func (a Action) String() string {
	return phrase(imperative[a.Kind], a.Target)
}

// PastTense renders the action as a report, e.g. "restarted service auth-api".
func (a Action) PastTense() string {
	return phrase(past[a.Kind], a.Target)
}

func phrase(verb, target string) string {
	if target == "" {
		return verb
	}
	return verb + " " + target
}

// Vocabulary returns the recognised actions in the notation used by persona
// instructions.
func Vocabulary() []string {
	return []string{
		"RestartService(name)",
		"RollbackTransaction",
		"RedeployResource(name)",
		"IncreaseQuota",
		"EscalateIssue",
	}
}

const targetPattern = `([A-Za-z0-9][\w.\-/]*)`

var (
	callPattern = regexp.MustCompile(`\b(RestartService|RollbackTransaction|RedeployResource|IncreaseQuota|EscalateIssue)\b(?:\s*\(\s*([^)]*?)\s*\))?`)

	phrasePatterns = []struct {
		kind Kind
		re   *regexp.Regexp
	}{
		{KindRestartService, regexp.MustCompile(`(?i)\brestart(?:ed|ing|s)?\s+(?:the\s+)?(?:service\s+)?` + targetPattern)},
		{KindRollbackTransaction, regexp.MustCompile(`(?i)\broll(?:ed|ing|s)?[\s-]*back\b`)},
		{KindRedeployResource, regexp.MustCompile(`(?i)\bredeploy(?:ed|ing|s)?\s+(?:the\s+)?(?:resource\s+)?` + targetPattern)},
		{KindIncreaseQuota, regexp.MustCompile(`(?i)\bincreas(?:e|ed|es|ing)\s+(?:the\s+)?(?:[\w-]+\s+)?quota\b`)},
		{KindEscalateIssue, regexp.MustCompile(`(?i)\bescalat(?:e|ed|es|ing|ion)\b`)},
	}

	callKinds = map[string]Kind{
		"RestartService":      KindRestartService,
		"RollbackTransaction": KindRollbackTransaction,
		"RedeployResource":    KindRedeployResource,
		"IncreaseQuota":       KindIncreaseQuota,
		"EscalateIssue":       KindEscalateIssue,
	}

	fillers = map[string]bool{"the": true, "service": true, "resource": true}
)

type match struct {
	start, end int
	action     Action
}

// ParseActions finds the actions mentioned in text, in order of appearance.
// Call notation ("RestartService(auth-api)"), imperative ("Restart service
// auth-api") and past-tense ("restarted auth-api") phrasings are recognised.
func ParseActions(text string) []Action {
	var found []match

	for _, loc := range callPattern.FindAllStringSubmatchIndex(text, -1) {
		a := Action{Kind: callKinds[text[loc[2]:loc[3]]]}
		if a.Kind.Targeted() && loc[4] >= 0 {
			a.Target = cleanTarget(text[loc[4]:loc[5]])
		}
		found = append(found, match{start: loc[0], end: loc[1], action: a})
	}

	for _, p := range phrasePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			a := Action{Kind: p.kind}
			if p.kind.Targeted() && len(loc) >= 4 && loc[2] >= 0 {
				a.Target = cleanTarget(text[loc[2]:loc[3]])
				if fillers[strings.ToLower(a.Target)] {
					a.Target = ""
				}
			}
			found = append(found, match{start: loc[0], end: loc[1], action: a})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].start < found[j].start })

	actions := make([]Action, 0, len(found))
	end := -1
	for _, m := range found {
		if m.start < end {
			continue
		}
		actions = append(actions, m.action)
		end = m.end
	}
	return actions
}

func cleanTarget(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".-/")
}
