// Package brain routes classified intents to their handlers and produces
// the reply text for each.
package brain

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pbaille/nexis/internal/apps"
	"github.com/pbaille/nexis/internal/config"
	"github.com/pbaille/nexis/internal/domain"
	"github.com/pbaille/nexis/internal/intent"
)

// Store is the persistence surface the dispatcher needs.
type Store interface {
	AddNote(ctx context.Context, text string) (*domain.Note, error)
	ListNotes(ctx context.Context) ([]domain.Note, error)
	ClearNotes(ctx context.Context) error
	AddReminder(ctx context.Context, message string, dueAt time.Time) (*domain.Reminder, error)
	ListPendingReminders(ctx context.Context) ([]domain.Reminder, error)
}

// Lookup is the knowledge collaborator.
type Lookup interface {
	FindAnswer(ctx context.Context, query string, preferWikipedia bool) (string, error)
}

// AppControl is the OS process-control collaborator.
type AppControl interface {
	Launch(name string) error
	Terminate(name string) error
	SystemAction(action domain.SystemAction) error
}

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs!",
	"I would tell you a UDP joke, but you might not get it.",
	"A SQL query walks into a bar, walks up to two tables and asks: Can I join you?",
	"Why did the computer go to the doctor? It had a virus!",
	"To understand recursion, you must first understand recursion.",
	"There are only 10 kinds of people: those who understand binary, and those who don't.",
}

var reWeather = regexp.MustCompile(`\b(weather|temperature|forecast)\b`)

// Brain dispatches one intent at a time. It is synchronous; the reminder
// scheduler runs beside it and shares only the store.
type Brain struct {
	store  Store
	lookup Lookup
	apps   AppControl
	cfg    *config.Config
	log    zerolog.Logger
	now    func() time.Time
	pick   func(n int) int
}

// New wires a Brain from its collaborators.
func New(store Store, lookup Lookup, appCtl AppControl, cfg *config.Config, log zerolog.Logger) *Brain {
	return &Brain{
		store:  store,
		lookup: lookup,
		apps:   appCtl,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
		pick:   rand.Intn,
	}
}

// Dispatch handles in and returns the reply plus whether the interaction
// loop should stop. It never returns an error: every failure mode maps to a
// reply the assistant can speak.
func (b *Brain) Dispatch(ctx context.Context, in domain.Intent) (reply string, exit bool) {
	b.log.Debug().
		Str("trace", uuid.NewString()).
		Str("kind", string(in.Kind)).
		Str("raw", in.Raw).
		Msg("dispatch")

	switch in.Kind {
	case domain.KindExit:
		return fmt.Sprintf("Take care, %s! Shutting down now.", b.cfg.UserName), true

	case domain.KindGreeting:
		return b.greeting(), false

	case domain.KindTimeQuery:
		return "It's currently " + b.now().Format("3:04 PM") + ".", false

	case domain.KindDateQuery:
		return "Today is " + b.now().Format("Monday, January 2, 2006") + ".", false

	case domain.KindJoke:
		return jokes[b.pick(len(jokes))], false

	case domain.KindHelp:
		return helpText, false

	case domain.KindKnowledge:
		return b.answer(ctx, in.Topic, true), false

	case domain.KindWebSearch:
		return b.answer(ctx, in.Query, false), false

	case domain.KindUnknown:
		// Last resort: never flatly refuse, search the web for the raw text.
		return b.answer(ctx, in.Raw, false), false

	case domain.KindOpenApp:
		return b.openApp(in.App), false

	case domain.KindCloseApp:
		return b.closeApp(in.App), false

	case domain.KindSystemControl:
		return b.systemControl(in.Action), false

	case domain.KindSetReminder:
		return b.setReminder(ctx, in.Message, in.DueAt), false

	case domain.KindListReminders:
		return b.listReminders(ctx), false

	case domain.KindRememberNote:
		return b.rememberNote(ctx, in.Message), false

	case domain.KindRecallMemory:
		return b.recallMemory(ctx), false

	case domain.KindClearMemory:
		if err := b.store.ClearNotes(ctx); err != nil {
			return b.storeFailure(err), false
		}
		return "I've cleared all stored memories.", false

	case domain.KindCalculate:
		return b.calculate(in.Expression), false
	}

	return b.answer(ctx, in.Raw, false), false
}

func (b *Brain) greeting() string {
	var tod string
	switch hour := b.now().Hour(); {
	case hour >= 5 && hour < 12:
		tod = "Good morning"
	case hour >= 12 && hour < 17:
		tod = "Good afternoon"
	case hour >= 17 && hour < 21:
		tod = "Good evening"
	default:
		tod = "Hey"
	}
	return fmt.Sprintf("%s, %s! How can I help you today?", tod, b.cfg.UserName)
}

func (b *Brain) answer(ctx context.Context, query string, preferWikipedia bool) string {
	if reWeather.MatchString(strings.ToLower(query)) {
		return "I don't have a weather source, but I can search the web for a forecast site if you ask me to."
	}

	answer, err := b.lookup.FindAnswer(ctx, query, preferWikipedia)
	if err != nil {
		b.log.Warn().Err(err).Str("query", query).Msg("lookup failed")
		return "I couldn't find a reliable answer for that. Try asking me something else!"
	}
	return answer
}

func (b *Brain) openApp(name string) string {
	err := b.apps.Launch(name)
	switch {
	case err == nil:
		return fmt.Sprintf("Opening %s.", name)
	case errors.Is(err, apps.ErrAppNotFound):
		return fmt.Sprintf("I don't have a shortcut for '%s'. You can add it to the apps file.", name)
	default:
		b.log.Warn().Err(err).Str("app", name).Msg("launch failed")
		return fmt.Sprintf("Couldn't open %s.", name)
	}
}

func (b *Brain) closeApp(name string) string {
	err := b.apps.Terminate(name)
	switch {
	case err == nil:
		return fmt.Sprintf("Closed %s.", name)
	case errors.Is(err, apps.ErrAppNotFound):
		return fmt.Sprintf("I don't know the process name for '%s'. You can add it to the apps file.", name)
	case errors.Is(err, apps.ErrNotRunning):
		return fmt.Sprintf("%s doesn't seem to be running.", name)
	default:
		b.log.Warn().Err(err).Str("app", name).Msg("terminate failed")
		return fmt.Sprintf("Couldn't close %s.", name)
	}
}

func (b *Brain) systemControl(action domain.SystemAction) string {
	if err := b.apps.SystemAction(action); err != nil {
		b.log.Warn().Err(err).Str("action", string(action)).Msg("system action failed")
		return fmt.Sprintf("Couldn't %s.", strings.ReplaceAll(string(action), "_", " "))
	}

	switch action {
	case domain.ActionLock:
		return "Screen locked."
	case domain.ActionVolumeUp:
		return "Volume increased."
	case domain.ActionVolumeDown:
		return "Volume decreased."
	case domain.ActionMute:
		return "Audio muted."
	case domain.ActionScreenshot:
		return "Screenshot taken."
	case domain.ActionShutdown:
		return "The computer will shut down in one minute."
	case domain.ActionRestart:
		return "The computer will restart in one minute."
	}
	return "Done."
}

func (b *Brain) setReminder(ctx context.Context, message string, dueAt time.Time) string {
	r, err := b.store.AddReminder(ctx, message, dueAt)
	if err != nil {
		return b.storeFailure(err)
	}
	return fmt.Sprintf("Got it! I'll remind you to '%s' at %s.", r.Message, r.DueAt.Format("3:04 PM on Monday"))
}

func (b *Brain) listReminders(ctx context.Context) string {
	reminders, err := b.store.ListPendingReminders(ctx)
	if err != nil {
		return b.storeFailure(err)
	}
	if len(reminders) == 0 {
		return "You have no pending reminders."
	}

	var sb strings.Builder
	sb.WriteString("Your reminders:")
	for _, r := range reminders {
		fmt.Fprintf(&sb, "\n- %s at %s", r.Message, r.DueAt.Format("3:04 PM on Monday"))
	}
	return sb.String()
}

func (b *Brain) rememberNote(ctx context.Context, text string) string {
	n, err := b.store.AddNote(ctx, text)
	if err != nil {
		return b.storeFailure(err)
	}
	return fmt.Sprintf("I'll remember that: '%s'", n.Text)
}

func (b *Brain) recallMemory(ctx context.Context) string {
	notes, err := b.store.ListNotes(ctx)
	if err != nil {
		return b.storeFailure(err)
	}
	if len(notes) == 0 {
		return "I don't have anything saved in memory yet."
	}

	var sb strings.Builder
	sb.WriteString("Here's what I remember:")
	for _, n := range notes {
		fmt.Fprintf(&sb, "\n- %s (saved %s)", n.Text, n.CreatedAt.Format("2006-01-02"))
	}
	return sb.String()
}

func (b *Brain) calculate(expr string) string {
	result, err := intent.Evaluate(expr)
	switch {
	case errors.Is(err, intent.ErrDivisionByZero):
		return "That's undefined: dividing by zero has no answer."
	case err != nil:
		b.log.Debug().Err(err).Str("expr", expr).Msg("calculation rejected")
		return "I can't compute that."
	}
	return "The answer is " + intent.FormatResult(result) + "."
}

func (b *Brain) storeFailure(err error) string {
	b.log.Error().Err(err).Msg("store operation failed")
	return "Something went wrong saving that. Please try again."
}

const helpText = `Here's what I can do:
- "What time is it?" or "What's today's date?"
- "What is a black hole?" for a Wikipedia answer
- "Search for Go tutorials" for a web search
- "Open firefox" / "Close firefox"
- "Remind me to call mom at 8 pm"
- "Remember that my wifi password is hunter2", "What do you remember?"
- "Calculate 25 * 4 + 10"
- "Tell me a joke"
- "Lock the screen", "Volume up", "Take a screenshot"
- "Exit" to quit`
