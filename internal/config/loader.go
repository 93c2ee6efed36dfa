package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (ATLAS_FILES_BASE_DIR).
const EnvPrefix = "ATLAS"

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// Load loads configuration with precedence
// defaults < config file < env vars.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ConfigFileUsed returns the config file that was loaded, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

// DefaultPath is where `atlas config init` writes a fresh config file.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "atlas", "atlas.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "atlas", "atlas.yaml")
}

func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("atlas")
	v.SetConfigType("yaml")

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, "atlas"))
	}
	if homeDir, _ := os.UserHomeDir(); homeDir != "" {
		v.AddConfigPath(filepath.Join(homeDir, ".config", "atlas"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.setDefaults(cfg)

	// Unmarshal ignores env vars on nested keys unless they are bound.
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	v.AutomaticEnv()
}

// setDefaults registers every default so that env bindings and Unmarshal
// see the full key set.
func (l *Loader) setDefaults(cfg *Config) {
	v := l.v

	// Symbols
	v.SetDefault("symbols.open", cfg.Symbols.Open)
	v.SetDefault("symbols.top", cfg.Symbols.Top)
	v.SetDefault("symbols.done", cfg.Symbols.Done)
	v.SetDefault("symbols.info", cfg.Symbols.Info)
	v.SetDefault("symbols.paused", cfg.Symbols.Paused)
	v.SetDefault("symbols.for_rescheduling", cfg.Symbols.ForRescheduling)
	v.SetDefault("symbols.rescheduled_periodic", cfg.Symbols.RescheduledPeriodic)
	v.SetDefault("symbols.heading", cfg.Symbols.Heading)
	v.SetDefault("symbols.separator", cfg.Symbols.Separator)
	v.SetDefault("symbols.tag_prefix", cfg.Symbols.TagPrefix)
	v.SetDefault("symbols.cat_prefix", cfg.Symbols.CatPrefix)
	v.SetDefault("symbols.day", cfg.Symbols.Day)
	v.SetDefault("symbols.month", cfg.Symbols.Month)
	v.SetDefault("symbols.year", cfg.Symbols.Year)
	v.SetDefault("symbols.date_separator", cfg.Symbols.DateSeparator)
	v.SetDefault("symbols.time_separator", cfg.Symbols.TimeSeparator)
	v.SetDefault("symbols.log_entry_prefix", cfg.Symbols.LogEntryPrefix)

	// Properties
	v.SetDefault("properties.due", cfg.Properties.Due)
	v.SetDefault("properties.dur", cfg.Properties.Dur)
	v.SetDefault("properties.rec", cfg.Properties.Rec)
	v.SetDefault("properties.daily_rec_value", cfg.Properties.DailyRecValue)

	// Tags
	v.SetDefault("tags.work", cfg.Tags.Work)
	v.SetDefault("tags.incoming", cfg.Tags.Incoming)
	v.SetDefault("tags.shlist_cat", cfg.Tags.ShlistCat)

	// Headings
	v.SetDefault("headings.ttl", cfg.Headings.TTL)
	v.SetDefault("headings.incoming", cfg.Headings.Incoming)
	v.SetDefault("headings.tasks_proposed", cfg.Headings.TasksProposed)
	v.SetDefault("headings.tasks_done", cfg.Headings.TasksDone)

	// Forms
	v.SetDefault("forms.earned_time_balance", cfg.Forms.EarnedTimeBalance)
	v.SetDefault("forms.remaining_duration", cfg.Forms.RemainingDuration)

	// Files
	v.SetDefault("files.base_dir", cfg.Files.BaseDir)
	v.SetDefault("files.portfolio", cfg.Files.Portfolio)
	v.SetDefault("files.daily", cfg.Files.Daily)
	v.SetDefault("files.booked", cfg.Files.Booked)
	v.SetDefault("files.periodic", cfg.Files.Periodic)
	v.SetDefault("files.shlist", cfg.Files.Shlist)
	v.SetDefault("files.today", cfg.Files.Today)
	v.SetDefault("files.earned_times", cfg.Files.EarnedTimes)
	v.SetDefault("files.progress_log", cfg.Files.ProgressLog)
	v.SetDefault("files.archive_dir", cfg.Files.ArchiveDir)
	v.SetDefault("files.backup_dir", cfg.Files.BackupDir)
	v.SetDefault("files.extension", cfg.Files.Extension)

	v.SetDefault("sort_tokens", cfg.SortTokens)

	// Options
	v.SetDefault("options.refresh_after_done", cfg.Options.RefreshAfterDone)
	v.SetDefault("options.log_line_length", cfg.Options.LogLineLength)

	// Logging
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.caller", cfg.Logging.Caller)
}

// loadConfigFile reads the config file. A missing file is only an error when
// it was named explicitly.
func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(expandTilde(l.configFile))
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && l.configFile == "" {
			return nil
		}
		return err
	}
	return nil
}

// expandPaths expands ~ in all path-related config fields.
func expandPaths(cfg *Config) {
	cfg.Files.BaseDir = expandTilde(cfg.Files.BaseDir)
	cfg.Files.BackupDir = expandTilde(cfg.Files.BackupDir)
	cfg.Files.ArchiveDir = expandTilde(cfg.Files.ArchiveDir)
}
