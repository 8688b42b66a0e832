package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], args[1])
			if err := writeConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val := viper.Get(args[0])
			if val == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: (not set)\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", args[0], val)
			}
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := viper.AllKeys()
			sort.Strings(keys)
			for _, key := range keys {
				// Mask sensitive values
				if key == "auth.token" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: (credentials stored)\n", key)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", key, viper.Get(key))
			}
			return nil
		},
	}
}

// writeConfig saves the configuration to the file in use, or the default path
func writeConfig() error {
	if path := viper.ConfigFileUsed(); path != "" {
		return viper.WriteConfigAs(path)
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}
