// Package config holds the portfolio configuration: the grammar symbols of the
// task format, the file layout of the portfolio and the engine options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure. It is loaded once and treated
// as immutable by the engine.
type Config struct {
	Symbols    Symbols       `yaml:"symbols" mapstructure:"symbols"`
	Properties Properties    `yaml:"properties" mapstructure:"properties"`
	Tags       Tags          `yaml:"tags" mapstructure:"tags"`
	Headings   Headings      `yaml:"headings" mapstructure:"headings"`
	Forms      Forms         `yaml:"forms" mapstructure:"forms"`
	Files      Files         `yaml:"files" mapstructure:"files"`
	SortTokens []string      `yaml:"sort_tokens" mapstructure:"sort_tokens"`
	Options    Options       `yaml:"options" mapstructure:"options"`
	Logging    LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// Symbols are the single-character status markers and the separators of the
// task grammar.
type Symbols struct {
	Open                string `yaml:"open" mapstructure:"open"`
	Top                 string `yaml:"top" mapstructure:"top"`
	Done                string `yaml:"done" mapstructure:"done"`
	Info                string `yaml:"info" mapstructure:"info"`
	Paused              string `yaml:"paused" mapstructure:"paused"`
	ForRescheduling     string `yaml:"for_rescheduling" mapstructure:"for_rescheduling"`
	RescheduledPeriodic string `yaml:"rescheduled_periodic" mapstructure:"rescheduled_periodic"`
	Heading             string `yaml:"heading" mapstructure:"heading"`

	// Separator splits a line into words.
	Separator string `yaml:"separator" mapstructure:"separator"`

	TagPrefix string `yaml:"tag_prefix" mapstructure:"tag_prefix"`
	CatPrefix string `yaml:"cat_prefix" mapstructure:"cat_prefix"`

	// Day, Month and Year are the recurrence unit symbols (rec:3d, rec:1m).
	Day   string `yaml:"day" mapstructure:"day"`
	Month string `yaml:"month" mapstructure:"month"`
	Year  string `yaml:"year" mapstructure:"year"`

	DateSeparator  string `yaml:"date_separator" mapstructure:"date_separator"`
	TimeSeparator  string `yaml:"time_separator" mapstructure:"time_separator"`
	LogEntryPrefix string `yaml:"log_entry_prefix" mapstructure:"log_entry_prefix"`
}

// Properties are the inline key prefixes recognized inside words.
type Properties struct {
	Due string `yaml:"due" mapstructure:"due"`
	Dur string `yaml:"dur" mapstructure:"dur"`
	Rec string `yaml:"rec" mapstructure:"rec"`

	// DailyRecValue marks tasks that recur every day. Such tasks are
	// copied into the day plan verbatim and never reconciled at origin.
	DailyRecValue string `yaml:"daily_rec_value" mapstructure:"daily_rec_value"`
}

type Tags struct {
	Work      string `yaml:"work" mapstructure:"work"`
	Incoming  string `yaml:"incoming" mapstructure:"incoming"`
	ShlistCat string `yaml:"shlist_cat" mapstructure:"shlist_cat"`
}

type Headings struct {
	TTL           string `yaml:"ttl" mapstructure:"ttl"`
	Incoming      string `yaml:"incoming" mapstructure:"incoming"`
	TasksProposed string `yaml:"tasks_proposed" mapstructure:"tasks_proposed"`
	TasksDone     string `yaml:"tasks_done" mapstructure:"tasks_done"`
}

// Forms are the fixed texts of the analysis header lines.
type Forms struct {
	EarnedTimeBalance string `yaml:"earned_time_balance" mapstructure:"earned_time_balance"`
	RemainingDuration string `yaml:"remaining_duration" mapstructure:"remaining_duration"`
}

// Files describes the portfolio on disk. Relative paths are resolved
// against BaseDir.
type Files struct {
	BaseDir     string   `yaml:"base_dir" mapstructure:"base_dir"`
	Portfolio   []string `yaml:"portfolio" mapstructure:"portfolio"`
	Daily       string   `yaml:"daily" mapstructure:"daily"`
	Booked      string   `yaml:"booked" mapstructure:"booked"`
	Periodic    string   `yaml:"periodic" mapstructure:"periodic"`
	Shlist      string   `yaml:"shlist" mapstructure:"shlist"`
	Today       string   `yaml:"today" mapstructure:"today"`
	EarnedTimes string   `yaml:"earned_times" mapstructure:"earned_times"`
	ProgressLog string   `yaml:"progress_log" mapstructure:"progress_log"`
	ArchiveDir  string   `yaml:"archive_dir" mapstructure:"archive_dir"`
	BackupDir   string   `yaml:"backup_dir" mapstructure:"backup_dir"`
	Extension   string   `yaml:"extension" mapstructure:"extension"`
}

type Options struct {
	// RefreshAfterDone re-runs the analyzer and the scheduler on the daily
	// file after a task is marked done.
	RefreshAfterDone bool `yaml:"refresh_after_done" mapstructure:"refresh_after_done"`

	// LogLineLength is the wrap width of progress log entries.
	LogLineLength int `yaml:"log_line_length" mapstructure:"log_line_length"`
}

type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// Caller adds the source location to every log entry.
	Caller bool `yaml:"caller" mapstructure:"caller"`
}

// DefaultConfig returns the default symbol set and portfolio layout.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, "atlas")
	return &Config{
		Symbols: Symbols{
			Open:                "-",
			Top:                 "!",
			Done:                "x",
			Info:                ">",
			Paused:              "=",
			ForRescheduling:     "?",
			RescheduledPeriodic: "~",
			Heading:             "#",
			Separator:           " ",
			TagPrefix:           "+",
			CatPrefix:           "@",
			Day:                 "d",
			Month:               "m",
			Year:                "y",
			DateSeparator:       "-",
			TimeSeparator:       ":",
			LogEntryPrefix:      "=== ",
		},
		Properties: Properties{
			Due:           "due:",
			Dur:           "dur:",
			Rec:           "rec:",
			DailyRecValue: "rec:daily",
		},
		Tags: Tags{
			Work:      "+work",
			Incoming:  "+incoming",
			ShlistCat: "@shopping",
		},
		Headings: Headings{
			TTL:           "Top Tasks List",
			Incoming:      "Incoming",
			TasksProposed: "Tasks proposed for",
			TasksDone:     "Tasks DONE on",
		},
		Forms: Forms{
			EarnedTimeBalance: "Earned time balance (work) = ",
			RemainingDuration: "Remaining tasks duration (work) = ",
		},
		Files: Files{
			BaseDir:     base,
			Portfolio:   []string{"home.txt", "work.txt"},
			Daily:       "daily.txt",
			Booked:      "booked.txt",
			Periodic:    "periodic.txt",
			Shlist:      "shlist.txt",
			Today:       "today.txt",
			EarnedTimes: "earned_times.txt",
			ProgressLog: "log.txt",
			ArchiveDir:  "archive",
			BackupDir:   filepath.Join(home, "atlas-backups"),
			Extension:   ".txt",
		},
		SortTokens: []string{"@morning", "+work", "+home", "@shopping", "@evening"},
		Options: Options{
			RefreshAfterDone: false,
			LogLineLength:    80,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that the grammar is unambiguous and the portfolio usable.
func (c *Config) Validate() error {
	markers := []struct {
		key   string
		value string
	}{
		{"symbols.open", c.Symbols.Open},
		{"symbols.top", c.Symbols.Top},
		{"symbols.done", c.Symbols.Done},
		{"symbols.info", c.Symbols.Info},
		{"symbols.paused", c.Symbols.Paused},
		{"symbols.for_rescheduling", c.Symbols.ForRescheduling},
		{"symbols.rescheduled_periodic", c.Symbols.RescheduledPeriodic},
		{"symbols.heading", c.Symbols.Heading},
	}
	seen := map[string]string{}
	for _, m := range markers {
		if utf8.RuneCountInString(m.value) != 1 {
			return fmt.Errorf("%s must be a single character, got %q", m.key, m.value)
		}
		if other, ok := seen[m.value]; ok {
			return fmt.Errorf("%s and %s share the marker %q", other, m.key, m.value)
		}
		seen[m.value] = m.key
	}

	required := []struct {
		key   string
		value string
	}{
		{"symbols.separator", c.Symbols.Separator},
		{"symbols.tag_prefix", c.Symbols.TagPrefix},
		{"symbols.cat_prefix", c.Symbols.CatPrefix},
		{"symbols.day", c.Symbols.Day},
		{"symbols.month", c.Symbols.Month},
		{"symbols.year", c.Symbols.Year},
		{"symbols.date_separator", c.Symbols.DateSeparator},
		{"symbols.time_separator", c.Symbols.TimeSeparator},
		{"properties.due", c.Properties.Due},
		{"properties.dur", c.Properties.Dur},
		{"properties.rec", c.Properties.Rec},
		{"properties.daily_rec_value", c.Properties.DailyRecValue},
		{"headings.ttl", c.Headings.TTL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if strings.Contains(c.Properties.Due, c.Symbols.Separator) ||
		strings.Contains(c.Properties.Dur, c.Symbols.Separator) ||
		strings.Contains(c.Properties.Rec, c.Symbols.Separator) {
		return errors.New("property prefixes must not contain the separator")
	}
	if len(c.Files.Portfolio) == 0 {
		return errors.New("files.portfolio must list at least one file")
	}
	if c.Options.LogLineLength < 1 {
		return errors.New("options.log_line_length must be at least 1")
	}
	return nil
}

// ActiveMarkers returns the markers of schedulable tasks.
func (c *Config) ActiveMarkers() []string {
	return []string{c.Symbols.Open, c.Symbols.Top}
}

// Path resolves a configured file name against the base directory.
func (c *Config) Path(name string) string {
	name = expandTilde(name)
	if name == "" || filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(c.Files.BaseDir, name)
}

// PortfolioPaths returns the resolved portfolio files in configured order.
func (c *Config) PortfolioPaths() []string {
	out := make([]string, 0, len(c.Files.Portfolio))
	for _, p := range c.Files.Portfolio {
		out = append(out, c.Path(p))
	}
	return out
}

// IsPortfolio reports whether path names one of the portfolio files.
func (c *Config) IsPortfolio(path string) bool {
	target := filepath.Clean(path)
	for _, p := range c.PortfolioPaths() {
		if p == target {
			return true
		}
	}
	return false
}

// WriteDefault writes the default configuration as YAML to path. An existing
// file is left untouched.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	b, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
