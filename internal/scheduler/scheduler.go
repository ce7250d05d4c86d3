// Package scheduler polls the store for due reminders and delivers them
// beside the interaction loop.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pbaille/nexis/internal/domain"
)

// State is the scheduler lifecycle: Idle until Run, Running while polling,
// Stopping once an exit is requested, Stopped after the final cycle drains.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Store is the persistence surface the scheduler needs.
type Store interface {
	DueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error)
	MarkFired(ctx context.Context, id int64) error
}

// Scheduler wakes on a fixed interval and fires due reminders through the
// notify callback, the same output path interactive replies use.
type Scheduler struct {
	store    Store
	notify   func(string)
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	state    atomic.Int32
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New builds an idle Scheduler. notify must be safe for calls concurrent
// with the interaction loop's own output.
func New(store Store, notify func(string), interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		store:    store,
		notify:   notify,
		interval: interval,
		log:      log,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run polls until ctx is canceled or Stop is called. The first poll happens
// immediately so reminders that came due while the process was down fire
// without waiting a full interval.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return errors.New("scheduler already started")
	}
	defer func() {
		s.state.Store(int32(StateStopped))
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Msg("reminder scheduler starting")

	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.state.Store(int32(StateStopping))
			s.log.Info().Msg("reminder scheduler stopping")
			return ctx.Err()
		case <-s.stop:
			s.state.Store(int32(StateStopping))
			s.log.Info().Msg("reminder scheduler stopping")
			return nil
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// Stop requests shutdown and blocks until the current cycle has drained.
// The scheduler performs no store writes after Stop returns.
func (s *Scheduler) Stop() {
	if s.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		close(s.done)
		return
	}
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// poll fires every due reminder once. A store read error skips the cycle;
// the scheduler only terminates on the exit signal. Each reminder is
// emitted before it is marked fired: a crash between the two refires it
// once on restart, which is preferred over silent loss.
func (s *Scheduler) poll(ctx context.Context) {
	now := s.now()
	due, err := s.store.DueReminders(ctx, now)
	if err != nil {
		s.log.Error().Err(err).Msg("poll cycle skipped")
		return
	}

	for _, r := range due {
		s.notify("Reminder: " + r.Message)
		if err := s.store.MarkFired(ctx, r.ID); err != nil {
			s.log.Error().Err(err).Int64("id", r.ID).Msg("mark fired failed")
			continue
		}
		s.log.Debug().Int64("id", r.ID).Time("due_at", r.DueAt).Msg("reminder fired")
	}
}
