package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/forecastchat/internal/config"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration in effect, after the config file,
FORECASTCHAT_ENDPOINT and command-line flags are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.AddCommand(
		newConfigSetCmd(),
		newConfigPathCmd(),
		newConfigEditCmd(deps),
	)
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	keys := config.Keys()
	sort.Strings(keys)

	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long: fmt.Sprintf(`Change a setting in the config file.

Keys: %s
Themes: %s`, strings.Join(keys, ", "), strings.Join(config.AvailableThemes(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				// Start over from defaults when the file is broken
				cfg = config.DefaultConfig()
			}
			if err := config.Set(&cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigEditCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open configuration menu",
		Long:  `Interactive menu to configure forecastchat settings.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps == nil {
				deps = NewDependencies()
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				cfg = config.DefaultConfig()
			}
			return deps.TUI.RunConfig(cfg)
		},
	}
}

var configCmd = NewConfigCmd(nil)
