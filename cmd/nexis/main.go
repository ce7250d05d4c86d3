package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pbaille/nexis/internal/apps"
	"github.com/pbaille/nexis/internal/assistant"
	"github.com/pbaille/nexis/internal/brain"
	"github.com/pbaille/nexis/internal/config"
	"github.com/pbaille/nexis/internal/intent"
	"github.com/pbaille/nexis/internal/knowledge"
	"github.com/pbaille/nexis/internal/scheduler"
	"github.com/pbaille/nexis/internal/speech"
	"github.com/pbaille/nexis/internal/store"
)

var (
	envFile string
	debug   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nexis",
		Short: "Local voice-driven command assistant",
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(notesCmd())
	rootCmd.AddCommand(remindersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load(envFile) // missing .env is fine
	return config.New()
}

// buildBrain assembles the dispatcher and its collaborators.
func buildBrain(cfg *config.Config, s *store.Store, log zerolog.Logger) (*brain.Brain, *intent.Classifier, error) {
	classifier, err := intent.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build classifier: %w", err)
	}

	lookup := knowledge.New(cfg, log.With().Str("component", "knowledge").Logger())
	appCtl := apps.New(cfg, log.With().Str("component", "apps").Logger())
	b := brain.New(s, lookup, appCtl, cfg, log.With().Str("component", "brain").Logger())
	return b, classifier, nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			b, classifier, err := buildBrain(cfg, s, log)
			if err != nil {
				return err
			}

			speaker := speech.NewSpeaker(cfg.AssistantName, cfg.TTSCommand, os.Stdout,
				log.With().Str("component", "speech").Logger())
			listener := speech.NewListener(os.Stdin, os.Stdout)

			sched := scheduler.New(s, speaker.Say, cfg.PollInterval,
				log.With().Str("component", "scheduler").Logger())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := assistant.New(listener, speaker, classifier, b, sched, cfg, os.Stdout, log)
			if err := a.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [utterance]",
		Short: "Classify and dispatch a single utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			b, classifier, err := buildBrain(cfg, s, log)
			if err != nil {
				return err
			}

			reply, _ := b.Dispatch(cmd.Context(), classifier.Classify(strings.Join(args, " ")))
			fmt.Println(reply)
			return nil
		},
	}
}

func notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage remembered notes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notes in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			notes, err := s.ListNotes(cmd.Context())
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Println("No notes yet. Ask the assistant to remember something.")
				return nil
			}
			for _, n := range notes {
				fmt.Printf("%s  %s\n", n.CreatedAt.Format("2006-01-02 15:04"), n.Text)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ClearNotes(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("All notes cleared.")
			return nil
		},
	})

	return cmd
}

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage reminders",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending reminders by due time",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			reminders, err := s.ListPendingReminders(cmd.Context())
			if err != nil {
				return err
			}
			if len(reminders) == 0 {
				fmt.Println("No pending reminders.")
				return nil
			}
			for _, r := range reminders {
				fmt.Printf("%d  %s  %s\n", r.ID, r.DueAt.Format("2006-01-02 15:04"), r.Message)
			}
			return nil
		},
	})

	return cmd
}
