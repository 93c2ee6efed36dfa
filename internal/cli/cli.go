package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/atlas/internal/config"
	"github.com/amirbrooks/atlas/internal/logging"
	"github.com/amirbrooks/atlas/internal/store"
	"github.com/amirbrooks/atlas/internal/tasks"
)

// Exit codes
const (
	ExitOK           = 0
	ExitUsage        = 2
	ExitNotFound     = 3
	ExitConflict     = 4
	ExitPrecondition = 5
	ExitTask         = 6
	ExitInternal     = 10
)

type GlobalFlags struct {
	Config    string
	LogLevel  string
	LogFormat string
	Quiet     bool
}

// app carries the state of one invocation.
type app struct {
	flags  GlobalFlags
	stdout io.Writer
	stderr io.Writer
}

// usageError marks bad arguments; it maps to ExitUsage.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if err == nil {
		return ExitOK
	}
	name := "atlas"
	if cmd != nil && cmd != root {
		name = cmd.Name()
	}
	fmt.Fprintln(stderr, name+":", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue),
		errors.Is(err, store.ErrInvalid),
		errors.Is(err, tasks.ErrInvalid),
		strings.HasPrefix(err.Error(), "unknown command"),
		strings.HasPrefix(err.Error(), "unknown flag"),
		strings.HasPrefix(err.Error(), "unknown shorthand flag"):
		return ExitUsage
	case errors.Is(err, store.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, store.ErrConflict):
		return ExitConflict
	case errors.Is(err, tasks.ErrPrecondition):
		return ExitPrecondition
	case errors.Is(err, tasks.ErrMissingDuration), errors.Is(err, tasks.ErrMalformedProperty):
		return ExitTask
	default:
		return ExitInternal
	}
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "atlas",
		Short: "Plain-text task portfolio and day planner",
		Long: `atlas keeps tasks as lines in plain text files. It plans the day from the
portfolio, schedules and analyses daily tasks files and resolves finished
tasks back at their origin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.Config, "config", "c", "", "config file (default: search ., $XDG_CONFIG_HOME/atlas, ~/.config/atlas)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	pf.StringVar(&a.flags.LogFormat, "log-format", "", "log format (console, json)")
	pf.BoolVarP(&a.flags.Quiet, "quiet", "q", false, "suppress logs and informational output")

	root.AddCommand(a.initCmd())
	a.addTaskCommands(root)
	a.addPlanCommands(root)
	root.AddCommand(a.configCmd())
	return root
}

// loadConfig resolves the configuration and initialises logging from it and
// the global flags.
func (a *app) loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if a.flags.Config != "" {
		loader.SetConfigFile(a.flags.Config)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Output = a.stderr
	if cfg.Logging.Level != "" {
		lc.Level = cfg.Logging.Level
	}
	if cfg.Logging.Format != "" {
		lc.Format = cfg.Logging.Format
	}
	lc.EnableCaller = cfg.Logging.Caller
	if a.flags.LogLevel != "" {
		lc.Level = a.flags.LogLevel
	}
	if a.flags.LogFormat != "" {
		lc.Format = a.flags.LogFormat
	}
	if a.flags.Quiet {
		lc.Level = "disabled"
	}
	logging.Init(lc)
	if used := loader.ConfigFileUsed(); used != "" {
		logging.Debug().Str("file", used).Msg("config loaded")
	}
	return cfg, nil
}

func (a *app) openWorkspace() (*store.Workspace, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}

func (a *app) printf(format string, args ...any) {
	if a.flags.Quiet {
		return
	}
	fmt.Fprintf(a.stdout, format, args...)
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("accepts %d arg(s), received %d\nusage: %s", n, len(args), cmd.UseLine())
		}
		return nil
	}
}

func rangeArgs(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || len(args) > hi {
			return usagef("accepts between %d and %d arg(s), received %d\nusage: %s", lo, hi, len(args), cmd.UseLine())
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("requires at least %d arg(s), received %d\nusage: %s", n, len(args), cmd.UseLine())
		}
		return nil
	}
}

// parseRow converts a 1-based row argument to a 0-based index.
func parseRow(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, usagef("row must be a positive line number, got %q", s)
	}
	return n - 1, nil
}

func (a *app) printWritten(paths []string) {
	for _, p := range paths {
		a.printf("wrote %s\n", p)
	}
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the portfolio directory and missing portfolio files",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			created, err := ws.Init()
			if err != nil {
				return err
			}
			if len(created) == 0 {
				a.printf("portfolio already initialised in %s\n", ws.Config().Files.BaseDir)
				return nil
			}
			for _, p := range created {
				a.printf("created %s\n", p)
			}
			return nil
		},
	}
}
