// Package config loads application configuration with viper, supporting a
// YAML config file, TIMEKEEP_* environment overrides, and built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for timekeep.
type Config struct {
	DataDir string       `mapstructure:"data_dir"`
	Log     LogConfig    `mapstructure:"log"`
	Start   StartConfig  `mapstructure:"start"`
	Resume  ResumeConfig `mapstructure:"resume"`
	Gate    GateConfig   `mapstructure:"gate"`
	Prompt  PromptConfig `mapstructure:"prompt"`
	Export  ExportConfig `mapstructure:"export"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug/info/warn/error
}

// StartConfig selects the session-start policy.
type StartConfig struct {
	// RequireNote, when true, rejects starting a session with an empty note.
	// The default engine variant allows an empty note.
	RequireNote bool `mapstructure:"require_note"`
}

// ResumeConfig holds the resume-prompt timing policy. The defaults are the
// reference behavior; all four windows are tunable.
type ResumeConfig struct {
	// MinGap suppresses prompting when unlock follows the auto-stop almost
	// instantly (lock/unlock flicker).
	MinGap time.Duration `mapstructure:"min_gap"`
	// Expiry suppresses prompting once the auto-stop is too old to matter.
	Expiry time.Duration `mapstructure:"expiry"`
	// RepromptDebounce suppresses a second prompt shortly after one was shown.
	RepromptDebounce time.Duration `mapstructure:"reprompt_debounce"`
	// RetryDelay is the delay before the single scheduled retry prompt.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// GateConfig configures the external activity watcher process.
type GateConfig struct {
	// WatcherCommand is a command whose stdout emits "paused" / "resumed"
	// lines as the OS locks and unlocks. Empty disables the gate.
	WatcherCommand string `mapstructure:"watcher_command"`
}

// PromptConfig configures the external resume-prompt notifier.
type PromptConfig struct {
	// NotifyCommand is a notify-send style command; the project name is
	// appended as the final argument. Empty disables desktop notifications.
	NotifyCommand string `mapstructure:"notify_command"`
}

// ExportConfig holds CSV export defaults.
type ExportConfig struct {
	GroupBy string `mapstructure:"group_by"` // date, project-date-task, project-task, project-note
}

// Load reads configuration from configPath (a directory, may be empty to use
// the default location) plus environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	} else if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "timekeep"))
	}

	v.SetEnvPrefix("timekeep")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets the values used when neither the file nor the environment
// provides one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())

	v.SetDefault("log.level", "warn")

	v.SetDefault("start.require_note", false)

	v.SetDefault("resume.min_gap", "2s")
	v.SetDefault("resume.expiry", "4h")
	v.SetDefault("resume.reprompt_debounce", "10s")
	v.SetDefault("resume.retry_delay", "20s")

	v.SetDefault("gate.watcher_command", "")
	v.SetDefault("prompt.notify_command", "")

	v.SetDefault("export.group_by", "project-date-task")
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timekeep"
	}
	return filepath.Join(homeDir, ".timekeep")
}
