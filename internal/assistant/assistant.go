// Package assistant wires the interaction loop: listen, classify, dispatch,
// speak, with the reminder scheduler running beside it.
package assistant

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/pbaille/nexis/internal/config"
	"github.com/pbaille/nexis/internal/domain"
	"github.com/pbaille/nexis/internal/scheduler"
)

// Listener supplies utterances; blocks until one is available.
type Listener interface {
	Next() (string, error)
}

// Speaker emits replies.
type Speaker interface {
	Say(text string)
}

// Classifier maps utterance text to an Intent.
type Classifier interface {
	Classify(text string) domain.Intent
}

// Dispatcher handles an Intent and reports whether the loop should stop.
type Dispatcher interface {
	Dispatch(ctx context.Context, in domain.Intent) (reply string, exit bool)
}

// Assistant owns the interaction loop and the scheduler lifecycle.
type Assistant struct {
	listener   Listener
	speaker    Speaker
	classifier Classifier
	brain      Dispatcher
	sched      *scheduler.Scheduler
	cfg        *config.Config
	log        zerolog.Logger
	banner     io.Writer
	now        func() time.Time
}

// New assembles an Assistant. banner receives the startup banner text.
func New(l Listener, s Speaker, c Classifier, d Dispatcher, sched *scheduler.Scheduler,
	cfg *config.Config, banner io.Writer, log zerolog.Logger) *Assistant {
	return &Assistant{
		listener:   l,
		speaker:    s,
		classifier: c,
		brain:      d,
		sched:      sched,
		cfg:        cfg,
		log:        log,
		banner:     banner,
		now:        time.Now,
	}
}

// Run starts the scheduler, greets, and loops until an exit intent or ctx
// cancellation. The scheduler is stopped deterministically before Run
// returns: no reminder fires after the assistant has logically exited.
func (a *Assistant) Run(ctx context.Context) error {
	a.printBanner()

	schedCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := a.sched.Run(schedCtx); err != nil && ctx.Err() == nil {
			a.log.Error().Err(err).Msg("scheduler stopped unexpectedly")
		}
	}()
	defer a.sched.Stop()

	a.speaker.Say(a.startupGreeting())

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		utterance, err := a.listener.Next()
		if err != nil {
			a.log.Error().Err(err).Msg("input failed")
			a.speaker.Say("Something went wrong. Please try again.")
			continue
		}
		if utterance == "" {
			continue
		}

		in := a.classifier.Classify(utterance)
		reply, exit := a.brain.Dispatch(ctx, in)
		a.speaker.Say(reply)

		if exit {
			a.sched.Stop()
			return nil
		}
	}
}

func (a *Assistant) startupGreeting() string {
	var tod string
	switch hour := a.now().Hour(); {
	case hour >= 5 && hour < 12:
		tod = "Good morning! How can I help you today?"
	case hour >= 12 && hour < 17:
		tod = "Good afternoon! What can I do for you?"
	case hour >= 17 && hour < 21:
		tod = "Good evening! Ready to assist."
	default:
		tod = "Working late? I'm here to help!"
	}
	return fmt.Sprintf("What's up %s? %s", a.cfg.UserName, tod)
}

func (a *Assistant) printBanner() {
	line := "────────────────────────────────────────────"
	fmt.Fprintln(a.banner, line)
	fmt.Fprintf(a.banner, "  %s - local command assistant\n", a.cfg.AssistantName)
	fmt.Fprintf(a.banner, "  %s\n", a.now().Format("Monday, January 2 2006  3:04 PM"))
	fmt.Fprintln(a.banner, line)
	fmt.Fprintln(a.banner, "  Say 'exit' or 'bye' to quit, 'help' for commands.")
	fmt.Fprintln(a.banner, line)
}
