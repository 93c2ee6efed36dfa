package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/atlas/internal/config"
	"github.com/amirbrooks/atlas/internal/store"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration",
	}
	cmd.AddCommand(a.configShowCmd(), a.configInitCmd(), a.configPathCmd())
	return cmd
}

func (a *app) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}

func (a *app) configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  rangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%w: %s already exists", store.ErrConflict, path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			a.printWritten([]string{path})
			return nil
		},
	}
}

func (a *app) configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			if a.flags.Config != "" {
				loader.SetConfigFile(a.flags.Config)
			}
			if _, err := loader.Load(); err != nil {
				return err
			}
			used := loader.ConfigFileUsed()
			if used == "" {
				used = "(defaults; no config file found, create one at " + config.DefaultPath() + ")"
			}
			fmt.Fprintln(a.stdout, used)
			return nil
		},
	}
}
