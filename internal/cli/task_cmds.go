package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/atlas/internal/tasks"
)

// Commands that rewrite one task file. Rows are 1-based on the command line.

func (a *app) addTaskCommands(root *cobra.Command) {
	root.AddCommand(
		a.doneCmd(),
		a.rescheduleCmd(),
		a.reschedulePeriodicCmd(),
		a.toggleTopCmd(),
		a.tagCmd(),
		a.addCmd(),
		a.scheduleCmd(),
		a.analyseCmd(),
		a.sortCmd(),
		a.moveCmd(),
	)
}

// rowCommand builds a command taking <file> <row> that runs fn on the
// resolved file.
func (a *app) rowCommand(use, short string, fn func(path string, row int) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file> <row>",
		Short: short,
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[1])
			if err != nil {
				return err
			}
			written, err := fn(args[0], row)
			if err != nil {
				return err
			}
			a.printWritten(written)
			return nil
		},
	}
}

func (a *app) doneCmd() *cobra.Command {
	return a.rowCommand("done", "Mark a task done and resolve it at its origin", func(name string, row int) ([]string, error) {
		ws, err := a.openWorkspace()
		if err != nil {
			return nil, err
		}
		return ws.MarkTaskDone(ws.Resolve(name), row)
	})
}

func (a *app) rescheduleCmd() *cobra.Command {
	var periodic bool
	cmd := a.rowCommand("reschedule", "Move a task to the end of the day marked for rescheduling", func(name string, row int) ([]string, error) {
		ws, err := a.openWorkspace()
		if err != nil {
			return nil, err
		}
		return ws.MarkTaskForRescheduling(ws.Resolve(name), row, periodic)
	})
	cmd.Flags().BoolVar(&periodic, "periodic", false, "use the rescheduled-periodic marker")
	return cmd
}

func (a *app) reschedulePeriodicCmd() *cobra.Command {
	return a.rowCommand("reschedule-periodic", "Advance a periodic task at its origin and mark it rescheduled", func(name string, row int) ([]string, error) {
		ws, err := a.openWorkspace()
		if err != nil {
			return nil, err
		}
		return ws.ReschedulePeriodicTask(ws.Resolve(name), row)
	})
}

func (a *app) toggleTopCmd() *cobra.Command {
	return a.rowCommand("toggle-top", "Toggle a task between open and top", func(name string, row int) ([]string, error) {
		ws, err := a.openWorkspace()
		if err != nil {
			return nil, err
		}
		path := ws.Resolve(name)
		if err := ws.ToggleTop(path, row); err != nil {
			return nil, err
		}
		return []string{path}, nil
	})
}

func (a *app) tagCmd() *cobra.Command {
	return a.rowCommand("tag", "Tag a line with the file it belongs to", func(name string, row int) ([]string, error) {
		ws, err := a.openWorkspace()
		if err != nil {
			return nil, err
		}
		path := ws.Resolve(name)
		changed, err := ws.TagLine(path, row)
		if err != nil {
			return nil, err
		}
		if !changed {
			a.printf("line %d already tagged\n", row+1)
			return nil, nil
		}
		return []string{path}, nil
	})
}

func (a *app) addCmd() *cobra.Command {
	var task tasks.AdHocTask
	cmd := &cobra.Command{
		Use:   "add <file> <description...>",
		Short: "Add an ad hoc task to a portfolio or daily tasks file",
		Args:  minArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if task.Duration < 1 {
				return usagef("--dur must be a positive number of minutes")
			}
			task.Description = strings.Join(args[1:], " ")
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			path := ws.Resolve(args[0])
			if err := ws.AddAdHocTask(path, task); err != nil {
				return err
			}
			a.printWritten([]string{path})
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&task.Duration, "dur", 0, "duration in minutes")
	f.StringArrayVar(&task.Tags, "tag", nil, "tag or category word (repeatable)")
	f.BoolVar(&task.Finished, "finished", false, "record the task as already done")
	f.BoolVar(&task.Work, "work", false, "add the work tag")
	return cmd
}

// fileCommand builds a command taking a single <file>.
func (a *app) fileCommand(use, short string, fn func(path string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fn(args[0])
		},
	}
}

func (a *app) scheduleCmd() *cobra.Command {
	return a.fileCommand("schedule", "Stamp active tasks with start times from now", func(name string) error {
		ws, err := a.openWorkspace()
		if err != nil {
			return err
		}
		path := ws.Resolve(name)
		if err := ws.ScheduleTasks(path); err != nil {
			return err
		}
		a.printWritten([]string{path})
		return nil
	})
}

func (a *app) analyseCmd() *cobra.Command {
	return a.fileCommand("analyse", "Rewrite the remaining and earned time header", func(name string) error {
		ws, err := a.openWorkspace()
		if err != nil {
			return err
		}
		cfg := ws.Config()
		sum, err := ws.AnalyseTasks(ws.Resolve(name))
		if err != nil {
			return err
		}
		a.printf("remaining %s (work %s)\n", tasks.FormatClock(cfg, sum.Remaining), tasks.FormatClock(cfg, sum.WorkRemaining))
		a.printf("earned    %s (work %s)\n", tasks.FormatClock(cfg, sum.Earned), tasks.FormatClock(cfg, sum.WorkEarned))
		return nil
	})
}

func (a *app) sortCmd() *cobra.Command {
	return a.fileCommand("sort", "Sort the lines of a file, dropping blank lines", func(name string) error {
		ws, err := a.openWorkspace()
		if err != nil {
			return err
		}
		path := ws.Resolve(name)
		if err := ws.SortFile(path); err != nil {
			return err
		}
		a.printWritten([]string{path})
		return nil
	})
}

func (a *app) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "move <file> <row> <up|down>",
		Short:     "Swap a line with its neighbour",
		Args:      exactArgs(3),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[1])
			if err != nil {
				return err
			}
			var delta int
			switch args[2] {
			case "up":
				delta = -1
			case "down":
				delta = 1
			default:
				return usagef("direction must be up or down, got %q", args[2])
			}
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			path := ws.Resolve(args[0])
			if err := ws.MoveLine(path, row, delta); err != nil {
				return err
			}
			a.printWritten([]string{path})
			return nil
		},
	}
}
