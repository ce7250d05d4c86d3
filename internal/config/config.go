package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all assistant settings. Environment variables use the NEXIS_
// prefix, e.g. NEXIS_USER_NAME, NEXIS_POLL_INTERVAL.
type Config struct {
	UserName      string `envconfig:"USER_NAME" default:"there"`
	AssistantName string `envconfig:"ASSISTANT_NAME" default:"NEXIS"`

	// DBPath defaults to ~/.nexis/nexis.db when empty.
	DBPath string `envconfig:"DB_PATH" default:""`

	// PollInterval is the reminder scheduler wake cadence.
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`

	// TTSCommand is an external text-to-speech program (e.g. "espeak").
	// Empty disables speech output; replies are still printed.
	TTSCommand string `envconfig:"TTS_COMMAND" default:""`

	// Knowledge lookup settings.
	AnswerMaxSentences int    `envconfig:"ANSWER_MAX_SENTENCES" default:"2"`
	WikipediaURL       string `envconfig:"WIKIPEDIA_URL" default:"https://en.wikipedia.org/api/rest_v1"`
	DuckDuckGoURL      string `envconfig:"DUCKDUCKGO_URL" default:"https://lite.duckduckgo.com/lite/"`

	// AppsFile points to a JSON file overriding the app name table.
	AppsFile string `envconfig:"APPS_FILE" default:""`

	// Apps maps spoken app names to launch commands; Processes maps them to
	// process names for termination. Loaded from AppsFile or defaults.
	Apps      map[string]string `ignored:"true"`
	Processes map[string]string `ignored:"true"`
}

// appTable is the on-disk shape of AppsFile.
type appTable struct {
	Apps      map[string]string `json:"apps"`
	Processes map[string]string `json:"processes"`
}

var defaultApps = map[string]string{
	"firefox":    "firefox",
	"chrome":     "google-chrome",
	"calculator": "gnome-calculator",
	"files":      "nautilus",
	"terminal":   "gnome-terminal",
	"editor":     "code",
	"vs code":    "code",
	"vscode":     "code",
	"spotify":    "spotify",
	"vlc":        "vlc",
}

var defaultProcesses = map[string]string{
	"firefox":    "firefox",
	"chrome":     "chrome",
	"calculator": "gnome-calculator",
	"files":      "nautilus",
	"editor":     "code",
	"vs code":    "code",
	"vscode":     "code",
	"spotify":    "spotify",
	"vlc":        "vlc",
}

// New parses environment variables and loads the app name table.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("NEXIS", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".nexis", "nexis.db")
	}

	cfg.Apps = defaultApps
	cfg.Processes = defaultProcesses

	if cfg.AppsFile != "" {
		if err := cfg.loadAppsFile(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) loadAppsFile() error {
	data, err := os.ReadFile(c.AppsFile)
	if err != nil {
		return fmt.Errorf("read apps file: %w", err)
	}

	var table appTable
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parse apps file: %w", err)
	}

	if len(table.Apps) > 0 {
		c.Apps = table.Apps
	}
	if len(table.Processes) > 0 {
		c.Processes = table.Processes
	}
	return nil
}
