// Package apps launches and terminates applications and runs system-level
// actions. All commands go through an injectable runner so the dispatcher
// can be tested without touching the host.
package apps

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pbaille/nexis/internal/config"
	"github.com/pbaille/nexis/internal/domain"
)

var (
	// ErrAppNotFound means the spoken name has no entry in the name table.
	ErrAppNotFound = errors.New("app not configured")
	// ErrNotRunning means the kill target had no matching process.
	ErrNotRunning = errors.New("process not running")
)

// CommandRunner abstracts process execution. Start is fire-and-forget
// (app launches); Run waits for completion (kill, system actions).
type CommandRunner interface {
	Start(name string, args ...string) error
	Run(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func (execRunner) Run(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Controller is the OS process-control collaborator.
type Controller struct {
	apps      map[string]string
	processes map[string]string
	runner    CommandRunner
	log       zerolog.Logger
}

// New builds a Controller from the configured name tables.
func New(cfg *config.Config, log zerolog.Logger) *Controller {
	return &Controller{
		apps:      lowered(cfg.Apps),
		processes: lowered(cfg.Processes),
		runner:    execRunner{},
		log:       log,
	}
}

// Launch starts the application registered under name.
func (c *Controller) Launch(name string) error {
	command, ok := c.apps[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrAppNotFound)
	}

	parts := strings.Fields(command)
	if err := c.runner.Start(parts[0], parts[1:]...); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}
	c.log.Info().Str("app", name).Msg("launched")
	return nil
}

// Terminate kills the process registered under name.
func (c *Controller) Terminate(name string) error {
	process, ok := c.processes[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrAppNotFound)
	}

	var err error
	if runtime.GOOS == "windows" {
		err = c.runner.Run("taskkill", "/F", "/IM", process, "/T")
	} else {
		err = c.runner.Run("pkill", "-x", process)
	}
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return fmt.Errorf("%q: %w", name, ErrNotRunning)
		}
		return fmt.Errorf("terminate %s: %w", name, err)
	}
	c.log.Info().Str("app", name).Msg("terminated")
	return nil
}

// SystemAction runs the OS command mapped to action. Shutdown and restart
// use a one-minute delay so the confirmation reply is delivered first.
func (c *Controller) SystemAction(action domain.SystemAction) error {
	name, args, ok := systemCommand(action, runtime.GOOS)
	if !ok {
		return fmt.Errorf("unsupported action %q on %s", action, runtime.GOOS)
	}

	if err := c.runner.Run(name, args...); err != nil {
		return fmt.Errorf("system action %s: %w", action, err)
	}
	c.log.Info().Str("action", string(action)).Msg("system action")
	return nil
}

func systemCommand(action domain.SystemAction, goos string) (string, []string, bool) {
	if goos == "windows" {
		switch action {
		case domain.ActionLock:
			return "rundll32.exe", []string{"user32.dll,LockWorkStation"}, true
		case domain.ActionShutdown:
			return "shutdown", []string{"/s", "/t", "60"}, true
		case domain.ActionRestart:
			return "shutdown", []string{"/r", "/t", "60"}, true
		}
		return "", nil, false
	}

	switch action {
	case domain.ActionLock:
		return "loginctl", []string{"lock-session"}, true
	case domain.ActionVolumeUp:
		return "amixer", []string{"-q", "sset", "Master", "5%+"}, true
	case domain.ActionVolumeDown:
		return "amixer", []string{"-q", "sset", "Master", "5%-"}, true
	case domain.ActionMute:
		return "amixer", []string{"-q", "sset", "Master", "toggle"}, true
	case domain.ActionScreenshot:
		return "gnome-screenshot", nil, true
	case domain.ActionShutdown:
		return "shutdown", []string{"-h", "+1"}, true
	case domain.ActionRestart:
		return "shutdown", []string{"-r", "+1"}, true
	}
	return "", nil, false
}

func lowered(table map[string]string) map[string]string {
	out := make(map[string]string, len(table))
	for name, v := range table {
		out[strings.ToLower(name)] = v
	}
	return out
}
