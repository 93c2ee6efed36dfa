package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/atlas/internal/tasks"
)

var timeNow = time.Now

func (a *app) addPlanCommands(root *cobra.Command) {
	root.AddCommand(
		a.extractCmd(),
		a.ttlCmd(),
		a.planCmd(),
		a.archiveCmd(),
		a.backupCmd(),
		a.earnedCmd(),
		a.logCmd(),
	)
}

func (a *app) extractCmd() *cobra.Command {
	kinds := make([]string, 0, len(tasks.ExtractKinds)+1)
	for _, k := range tasks.ExtractKinds {
		kinds = append(kinds, string(k))
	}
	kinds = append(kinds, "all")

	return &cobra.Command{
		Use:       "extract <" + strings.Join(kinds, "|") + ">",
		Short:     "Regenerate auxiliary task files from the portfolio",
		Args:      exactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind tasks.ExtractKind
			if args[0] != "all" {
				k, err := tasks.ParseExtractKind(args[0])
				if err != nil {
					return err
				}
				kind = k
			}
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			if kind == "" {
				written, err := ws.ExtractAll()
				if err != nil {
					return err
				}
				a.printWritten(written)
				return nil
			}
			path, n, err := ws.Extract(kind)
			if err != nil {
				return err
			}
			a.printf("wrote %s (%d tasks)\n", path, n)
			return nil
		},
	}
}

func (a *app) ttlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ttl [file]",
		Short: "Rebuild the Top Tasks List of one or every portfolio file",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				path := ws.Resolve(args[0])
				if err := ws.GenerateTTL(path); err != nil {
					return err
				}
				a.printWritten([]string{path})
				return nil
			}
			written, err := ws.GenerateTTLs()
			if err != nil {
				return err
			}
			a.printWritten(written)
			return nil
		},
	}
}

func (a *app) planCmd() *cobra.Command {
	var (
		date  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Prepare the day plan into the today file and a dated daily tasks file",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			day := timeNow()
			if date != "" {
				day, err = tasks.ParseDate(ws.Config(), date)
				if err != nil {
					return usagef("--date: %v", err)
				}
			}
			path, err := ws.PrepareDayPlan(day, force)
			if err != nil {
				return err
			}
			a.printWritten([]string{path})
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "plan date as YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing daily tasks file")
	return cmd
}

func (a *app) archiveCmd() *cobra.Command {
	return a.fileCommand("archive", "Move a daily tasks file into the archive directory", func(name string) error {
		ws, err := a.openWorkspace()
		if err != nil {
			return err
		}
		dest, err := ws.ArchiveDailyFile(ws.Resolve(name))
		if err != nil {
			return err
		}
		a.printf("archived to %s\n", dest)
		return nil
	})
}

func (a *app) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the portfolio directory into a timestamped backup",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			dest, err := ws.BackUp()
			if err != nil {
				return err
			}
			a.printf("backed up to %s\n", dest)
			return nil
		},
	}
}

func (a *app) earnedCmd() *cobra.Command {
	return a.fileCommand("earned", "Append the earned time of a daily tasks file to the earned times log", func(name string) error {
		ws, err := a.openWorkspace()
		if err != nil {
			return err
		}
		entry, err := ws.ExtractEarnedTime(ws.Resolve(name))
		if err != nil {
			return err
		}
		a.printf("%s\n", entry)
		return nil
	})
}

func (a *app) logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <text...>",
		Short: "Prepend an entry to the progress log",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			id, err := ws.LogProgress(strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.printf("logged %s\n", id)
			return nil
		},
	}
}
