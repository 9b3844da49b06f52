package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/timekeepapp/timekeep/internal/config"
	"github.com/timekeepapp/timekeep/internal/engine"
	"github.com/timekeepapp/timekeep/internal/gate"
	"github.com/timekeepapp/timekeep/internal/prompt"
	"github.com/timekeepapp/timekeep/internal/store"
	"github.com/timekeepapp/timekeep/internal/tui"
)

var configPath string

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "timekeep",
		Short: "Track work time against projects",
		Long:  `timekeep tracks elapsed work time against user-defined projects, auto-stops on screen lock, and exports grouped CSV summaries.`,
		RunE:  runDashboard,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Directory containing config.yaml")
	rootCmd.AddCommand(NewAddCommand())
	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles what every subcommand needs.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *store.Store
}

// loadApp reads config and opens the data store.
func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: newLogger(cfg.Log.Level), store: st}, nil
}

// newEngine constructs the session engine with the app's configuration.
func (a *app) newEngine(notifier engine.Notifier) (*engine.Engine, error) {
	return engine.New(engine.Options{
		Store:       a.store,
		Log:         a.log,
		Notifier:    notifier,
		RequireNote: a.cfg.Start.RequireNote,
		Resume: engine.ResumePolicy{
			MinGap:           a.cfg.Resume.MinGap,
			Expiry:           a.cfg.Resume.Expiry,
			RepromptDebounce: a.cfg.Resume.RepromptDebounce,
			RetryDelay:       a.cfg.Resume.RetryDelay,
		},
	})
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	// Resume prompts reach the TUI banner and, when configured, a desktop
	// notification command.
	channelNotifier := prompt.NewChannelNotifier()
	notifier := prompt.Multi{channelNotifier}
	if a.cfg.Prompt.NotifyCommand != "" {
		notifier = append(notifier, prompt.NewExecNotifier(a.cfg.Prompt.NotifyCommand, a.log))
	}

	eng, err := a.newEngine(notifier)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The activity gate feeds pause/resume into the engine for the whole
	// dashboard session.
	activityGate := gate.NewCommandGate(a.cfg.Gate.WatcherCommand, a.log)
	go activityGate.Run(ctx, gate.Callbacks{
		OnPause:  eng.HandlePause,
		OnResume: eng.HandleResume,
	})

	if err := tui.Run(eng, channelNotifier.Requests()); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
