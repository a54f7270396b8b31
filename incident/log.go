package incident

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// AnnotationHeader opens the region of the log where executed actions are
// recorded. Lines after it are attempts, never original log entries.
const AnnotationHeader = "### ACTIONS ATTEMPTED ###"

// DefaultFailureThreshold is the number of failures of one action after
// which the issue is escalated instead of retried.
const DefaultFailureThreshold = 2

// Outcome is the result of an executed action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Entry is an ERROR or CRITICAL line from the original log.
type Entry struct {
	Line      int    `json:"line"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// Attempt is an annotated action from the attempts region.
type Attempt struct {
	Action  Action  `json:"action"`
	Outcome Outcome `json:"outcome"`
}

// Log is a parsed incident log.
type Log struct {
	Entries  []Entry   `json:"entries"`
	Attempts []Attempt `json:"attempts"`
}

var (
	levelPattern     = regexp.MustCompile(`\b(ERROR|CRITICAL)\b`)
	componentPattern = regexp.MustCompile(`\[([^\]]+)\]`)
	attemptPattern   = regexp.MustCompile(`\bACTION\s+(\w+)(?:\s+target=("(?:[^"\\]|\\.)*"|\S*))?(?:\s+result=(\w+))?`)
)

// ParseLog splits content into original error entries and annotated attempts.
func ParseLog(content string) Log {
	var log Log
	inAttempts := false

	for i, raw := range strings.Split(content, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if text == AnnotationHeader {
			inAttempts = true
			continue
		}

		if inAttempts {
			if a, ok := parseAttempt(text); ok {
				log.Attempts = append(log.Attempts, a)
			}
			continue
		}

		if e, ok := parseEntry(i+1, text); ok {
			log.Entries = append(log.Entries, e)
		}
	}
	return log
}

func parseEntry(line int, text string) (Entry, bool) {
	loc := levelPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Entry{}, false
	}

	e := Entry{Line: line, Level: text[loc[2]:loc[3]]}
	rest := text[loc[1]:]
	if m := componentPattern.FindStringSubmatchIndex(rest); m != nil {
		e.Component = strings.TrimSpace(rest[m[2]:m[3]])
		rest = rest[:m[0]] + rest[m[1]:]
	}
	e.Message = strings.Trim(strings.TrimSpace(rest), ":- ")
	return e, true
}

func parseAttempt(text string) (Attempt, bool) {
	m := attemptPattern.FindStringSubmatch(text)
	if m == nil {
		return Attempt{}, false
	}
	kind := Kind(m[1])
	if !lo.Contains(Kinds(), kind) {
		return Attempt{}, false
	}
	outcome := OutcomeSuccess
	if Outcome(m[3]) == OutcomeFailed {
		outcome = OutcomeFailed
	}
	target := m[2]
	if strings.HasPrefix(target, `"`) {
		unquoted, err := strconv.Unquote(target)
		if err != nil {
			return Attempt{}, false
		}
		target = unquoted
	}
	return Attempt{Action: Action{Kind: kind, Target: target}, Outcome: outcome}, true
}

// formatTarget quotes targets that would not survive as a single bare token.
func formatTarget(t string) string {
	if t == "" || strings.ContainsAny(t, " \t\r\n\"\\") {
		return strconv.Quote(t)
	}
	return t
}

// FormatAttempt renders the annotation line for an attempt, without the
// timestamp prefix.
func FormatAttempt(a Attempt) string {
	var b strings.Builder
	b.WriteString("ACTION ")
	b.WriteString(string(a.Action.Kind))
	if a.Action.Target != "" {
		b.WriteString(" target=")
		b.WriteString(formatTarget(a.Action.Target))
	}
	b.WriteString(" result=")
	b.WriteString(string(a.Outcome))
	return b.String()
}

// Escalated reports whether an escalation has been recorded.
func (l Log) Escalated() bool {
	return lo.SomeBy(l.Attempts, func(a Attempt) bool {
		return a.Action.Kind == KindEscalateIssue
	})
}

// Failures counts failed attempts of exactly this action.
func (l Log) Failures(a Action) int {
	return lo.CountBy(l.Attempts, func(at Attempt) bool {
		return at.Action == a && at.Outcome == OutcomeFailed
	})
}

// Attempted reports whether the action has been tried, whatever the outcome.
func (l Log) Attempted(a Action) bool {
	return lo.SomeBy(l.Attempts, func(at Attempt) bool { return at.Action == a })
}

// Resolved reports whether a successful attempt addresses the entry.
func (l Log) Resolved(e Entry) bool {
	candidates := Candidates(e)
	return lo.SomeBy(l.Attempts, func(at Attempt) bool {
		return at.Outcome == OutcomeSuccess && lo.Contains(candidates, at.Action)
	})
}

// Unresolved returns the entries no successful attempt addresses.
func (l Log) Unresolved() []Entry {
	return lo.Reject(l.Entries, func(e Entry, _ int) bool { return l.Resolved(e) })
}

var candidateRules = []struct {
	keywords []string
	actions  func(component string) []Action
}{
	{
		keywords: []string{"deadlock", "transaction", "rollback", "inconsistent"},
		actions:  func(string) []Action { return []Action{RollbackTransaction()} },
	},
	{
		keywords: []string{"quota", "rate limit", "limit exceeded", "throttl", "429"},
		actions:  func(string) []Action { return []Action{IncreaseQuota()} },
	},
	{
		keywords: []string{"deploy", "image", "crashloop", "configuration", "corrupt", "version"},
		actions: func(c string) []Action {
			return []Action{RedeployResource(c), RestartService(c)}
		},
	},
}

// Candidates returns the remediation actions suited to an entry, most
// preferred first. An entry without a component can only be escalated unless
// an untargeted action applies.
func Candidates(e Entry) []Action {
	msg := strings.ToLower(e.Message)
	for _, rule := range candidateRules {
		if lo.SomeBy(rule.keywords, func(k string) bool { return strings.Contains(msg, k) }) {
			return lo.Filter(rule.actions(e.Component), func(a Action, _ int) bool {
				return !a.Kind.Targeted() || a.Target != ""
			})
		}
	}
	if e.Component == "" {
		return nil
	}
	return []Action{RestartService(e.Component), RedeployResource(e.Component)}
}

// Recommendation is the diagnosis of a log: either no action, or exactly
// one action for the first unresolved entry.
type Recommendation struct {
	Action   Action `json:"action"`
	NoAction bool   `json:"no_action"`
	Entry    *Entry `json:"entry,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Recommend diagnoses the log. Actions already attempted are not repeated;
// an action that failed threshold times or more, or an entry with no untried
// candidate left, is escalated. Nothing unresolved, or an escalation already
// recorded, means no action.
func (l Log) Recommend(threshold int) Recommendation {
	if threshold < 1 {
		threshold = DefaultFailureThreshold
	}
	if l.Escalated() {
		return Recommendation{NoAction: true, Note: "issue already escalated"}
	}

	unresolved := l.Unresolved()
	if len(unresolved) == 0 {
		return Recommendation{NoAction: true, Note: "no unresolved errors"}
	}

	entry := unresolved[0]
	candidates := Candidates(entry)

	for _, c := range candidates {
		if l.Failures(c) >= threshold {
			return Recommendation{Action: EscalateIssue(), Entry: &entry, Note: c.String() + " failed repeatedly"}
		}
	}

	for _, c := range candidates {
		if !l.Attempted(c) {
			return Recommendation{Action: c, Entry: &entry}
		}
	}

	return Recommendation{Action: EscalateIssue(), Entry: &entry, Note: "no untried remediation left"}
}
