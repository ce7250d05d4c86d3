// Package intent turns free-form utterance text into a structured Intent.
//
// Classification is an ordered rule list: each rule pairs a pattern with a
// parameter extractor, and the first matching rule wins. More specific
// phrasings ("remind me to ... at ...") are listed before general ones so
// they cannot be shadowed. Classification is total: anything unrecognized
// becomes KindUnknown, never an error.
package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pbaille/nexis/internal/config"
	"github.com/pbaille/nexis/internal/domain"
)

type rule struct {
	name    string
	re      *regexp.Regexp
	extract func(c *Classifier, text string, m []string) (domain.Intent, bool)

	// examples are canonical phrasings this rule must win; New verifies no
	// earlier rule shadows them.
	examples []string
}

// Classifier evaluates the rule list against normalized utterances.
type Classifier struct {
	rules     []rule
	apps      []string // known app names, longest first
	processes []string
	now       func() time.Time
}

// New builds a Classifier from the configured app name tables. It fails if
// the rule list is inconsistent: duplicate names, or an example phrase
// claimed by an earlier rule than its owner.
func New(cfg *config.Config) (*Classifier, error) {
	c := &Classifier{
		apps:      sortedNames(cfg.Apps),
		processes: sortedNames(cfg.Processes),
		now:       time.Now,
	}
	c.rules = buildRules()

	seen := make(map[string]bool, len(c.rules))
	for _, r := range c.rules {
		if seen[r.name] {
			return nil, fmt.Errorf("duplicate rule %q", r.name)
		}
		seen[r.name] = true
	}

	for _, r := range c.rules {
		for _, ex := range r.examples {
			winner := c.winningRule(normalize(ex))
			if winner != r.name {
				return nil, fmt.Errorf("rule %q shadowed by %q for example %q", r.name, winner, ex)
			}
		}
	}

	return c, nil
}

// Classify maps text to exactly one Intent. Total: unparsable input yields
// KindUnknown with the raw text preserved.
func (c *Classifier) Classify(text string) domain.Intent {
	raw := strings.TrimSpace(text)
	t := normalize(raw)
	if t == "" {
		return domain.Intent{Kind: domain.KindUnknown, Raw: raw}
	}

	for _, r := range c.rules {
		m := r.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		in, ok := r.extract(c, t, m)
		if !ok {
			continue // extractor rejected (e.g. unparsable time); fall through
		}
		in.Raw = raw
		return in
	}

	return domain.Intent{Kind: domain.KindUnknown, Raw: raw}
}

// winningRule returns the name of the first rule claiming text, or "".
func (c *Classifier) winningRule(t string) string {
	for _, r := range c.rules {
		m := r.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		if _, ok := r.extract(c, t, m); ok {
			return r.name
		}
	}
	return ""
}

// normalize lowercases and strips terminal punctuation so keyword rules
// match spoken and typed phrasings alike. Inner characters are kept: the
// calculator needs its operators.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, "?!.")
	return strings.Join(strings.Fields(s), " ")
}

func sortedNames(table map[string]string) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, strings.ToLower(name))
	}
	// Longest first so "vs code" beats "code".
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return names
}

func buildRules() []rule {
	return []rule{
		{
			name: "exit",
			re:   regexp.MustCompile(`^(bye|goodbye|exit|quit|see you( later)?|later|cya|peace out)$`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindExit}, true
			},
			examples: []string{"bye", "exit", "see you later"},
		},
		{
			name: "help",
			re:   regexp.MustCompile(`^(help( me)?|what can you do|commands)$`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindHelp}, true
			},
			examples: []string{"help", "what can you do"},
		},
		{
			name: "list_reminders",
			re:   regexp.MustCompile(`\b(list|show|my|pending) reminders\b`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindListReminders}, true
			},
			examples: []string{"list reminders", "show reminders", "my reminders"},
		},
		{
			name: "set_reminder",
			re:   regexp.MustCompile(`\bremind me to\s+(.+)$`),
			extract: func(c *Classifier, _ string, m []string) (domain.Intent, bool) {
				due, message, ok := parseWhen(m[1], c.now())
				if !ok || message == "" {
					return domain.Intent{}, false
				}
				return domain.Intent{
					Kind:    domain.KindSetReminder,
					Message: message,
					DueAt:   due,
				}, true
			},
			examples: []string{
				"remind me to call mom at 8 pm",
				"remind me to stretch in 10 minutes",
			},
		},
		{
			name: "clear_memory",
			re:   regexp.MustCompile(`\b(clear memory|forget everything|delete memories)\b`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindClearMemory}, true
			},
			examples: []string{"clear memory", "forget everything"},
		},
		{
			name: "recall_memory",
			re:   regexp.MustCompile(`\b(what do you remember|recall|show memories|my notes)\b`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindRecallMemory}, true
			},
			examples: []string{"what do you remember", "show memories"},
		},
		{
			name: "remember_note",
			re:   regexp.MustCompile(`\bremember\s+(that\s+)?(.+)$`),
			extract: func(_ *Classifier, _ string, m []string) (domain.Intent, bool) {
				text := strings.TrimSpace(m[2])
				if text == "" {
					return domain.Intent{}, false
				}
				return domain.Intent{Kind: domain.KindRememberNote, Message: text}, true
			},
			examples: []string{"remember that my wifi password is abc"},
		},
		{
			name: "greeting",
			re: regexp.MustCompile(`\b(hi|hello|hey|what's up|whats up|sup|howdy|hiya|` +
				`good (morning|afternoon|evening|night)|how are you|how're you|you good)\b`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindGreeting}, true
			},
			examples: []string{"hello", "what's up", "good morning", "how are you"},
		},
		{
			name: "time_query",
			re:   regexp.MustCompile(`\b(what time|current time|what's the time|tell me the time)\b`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindTimeQuery}, true
			},
			examples: []string{"what time is it", "tell me the time"},
		},
		{
			name: "date_query",
			re: regexp.MustCompile(`\b(what('s| is) (today|the date)|today's date|current date|` +
				`what day|which day)\b`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindDateQuery}, true
			},
			examples: []string{"what's today's date", "what day is it"},
		},
		{
			name: "joke",
			re:   regexp.MustCompile(`\b(joke|make me laugh|something funny)\b`),
			extract: func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
				return domain.Intent{Kind: domain.KindJoke}, true
			},
			examples: []string{"tell me a joke", "make me laugh"},
		},
		{
			name:     "lock",
			re:       regexp.MustCompile(`\block (the )?(screen|pc|computer)\b`),
			extract:  systemAction(domain.ActionLock),
			examples: []string{"lock the screen", "lock pc"},
		},
		{
			name:     "screenshot",
			re:       regexp.MustCompile(`\b(screenshot|screen capture|capture screen)\b`),
			extract:  systemAction(domain.ActionScreenshot),
			examples: []string{"take a screenshot"},
		},
		{
			name:     "volume_up",
			re:       regexp.MustCompile(`\b(volume up|louder|increase volume)\b`),
			extract:  systemAction(domain.ActionVolumeUp),
			examples: []string{"volume up", "louder"},
		},
		{
			name:     "volume_down",
			re:       regexp.MustCompile(`\b(volume down|quieter|lower volume|decrease volume)\b`),
			extract:  systemAction(domain.ActionVolumeDown),
			examples: []string{"volume down", "quieter"},
		},
		{
			name:     "mute",
			re:       regexp.MustCompile(`\b(mute|silence)\b`),
			extract:  systemAction(domain.ActionMute),
			examples: []string{"mute"},
		},
		{
			name:     "shutdown",
			re:       regexp.MustCompile(`\b(shutdown|shut down|power off|turn off the (pc|computer))\b`),
			extract:  systemAction(domain.ActionShutdown),
			examples: []string{"shut down the computer", "power off"},
		},
		{
			name:     "restart",
			re:       regexp.MustCompile(`\b(restart|reboot)\b`),
			extract:  systemAction(domain.ActionRestart),
			examples: []string{"restart the pc", "reboot"},
		},
		{
			name: "calculate",
			re:   regexp.MustCompile(`^(?:(?:calculate|compute|how much is|what is|what's)\s+)?([0-9][0-9\s+\-*/.]*)$`),
			extract: func(_ *Classifier, _ string, m []string) (domain.Intent, bool) {
				expr := strings.TrimSpace(m[1])
				if !ValidExpression(expr) {
					return domain.Intent{}, false
				}
				return domain.Intent{Kind: domain.KindCalculate, Expression: expr}, true
			},
			examples: []string{"calculate 25 * 4 + 10", "5 / 0", "what is 2 + 2"},
		},
		{
			name: "open_app",
			re:   regexp.MustCompile(`\b(open|launch|start|run)\b\s*(.*)$`),
			extract: func(c *Classifier, t string, m []string) (domain.Intent, bool) {
				name, ok := extractAppName(t, m[2], c.apps)
				if !ok {
					return domain.Intent{}, false
				}
				return domain.Intent{Kind: domain.KindOpenApp, App: name}, true
			},
			examples: []string{"open firefox", "launch the calculator"},
		},
		{
			name: "close_app",
			re:   regexp.MustCompile(`\b(close|kill|stop)\b\s*(.*)$`),
			extract: func(c *Classifier, t string, m []string) (domain.Intent, bool) {
				name, ok := extractAppName(t, m[2], c.processes)
				if !ok {
					return domain.Intent{}, false
				}
				return domain.Intent{Kind: domain.KindCloseApp, App: name}, true
			},
			examples: []string{"close firefox", "kill spotify"},
		},
		{
			name: "knowledge_query",
			re:   regexp.MustCompile(`\b(what is|what are|who is|who was|tell me about|explain|define|describe)\b\s*(.*)$`),
			extract: func(_ *Classifier, _ string, m []string) (domain.Intent, bool) {
				topic := strings.TrimSpace(m[2])
				if topic == "" {
					return domain.Intent{}, false
				}
				return domain.Intent{Kind: domain.KindKnowledge, Topic: topic}, true
			},
			examples: []string{"what is a black hole", "tell me about jupiter"},
		},
		{
			name: "web_search",
			re:   regexp.MustCompile(`\b(search for|look up|google|search|find)\b\s*(.*)$`),
			extract: func(_ *Classifier, _ string, m []string) (domain.Intent, bool) {
				query := strings.TrimSpace(m[2])
				if query == "" {
					return domain.Intent{}, false
				}
				return domain.Intent{Kind: domain.KindWebSearch, Query: query}, true
			},
			examples: []string{"search for go tutorials", "look up the tallest mountain"},
		},
	}
}

func systemAction(a domain.SystemAction) func(*Classifier, string, []string) (domain.Intent, bool) {
	return func(_ *Classifier, _ string, _ []string) (domain.Intent, bool) {
		return domain.Intent{Kind: domain.KindSystemControl, Action: a}, true
	}
}

// extractAppName resolves the spoken app name against the configured table,
// longest name first (so "vs code" beats "code"). An unresolved tail is still
// returned as the name: resolution failure is reported at dispatch time, not
// treated as a classification miss.
func extractAppName(text, tail string, known []string) (string, bool) {
	for _, name := range known {
		if strings.Contains(text, name) {
			return name, true
		}
	}

	tail = strings.TrimSpace(tail)
	for _, article := range []string{"the ", "a ", "an ", "my "} {
		tail = strings.TrimPrefix(tail, article)
	}
	if tail == "" {
		return "", false
	}
	return tail, true
}
