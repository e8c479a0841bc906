package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaykit/agentcore/internal/store"
)

// cliConfigKey is the app_config row this command group reads and writes:
// small CLI-local settings (e.g. the default agent id) too minor to belong
// in the YAML config file, stored as one schemaless JSON document.
const cliConfigKey = "cli"

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set CLI-local settings (stored in the conversation database)",
	}
	cmd.AddCommand(buildConfigGetCmd(), buildConfigSetCmd())
	return cmd
}

func buildConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Read a value at a dotted JSON path, e.g. default_agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			value, ok, err := st.GetConfig(cmd.Context(), cliConfigKey, args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "(not set)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), value.String())
			return nil
		},
	}
}

func buildConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Write a value at a dotted JSON path, e.g. default_agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetConfig(cmd.Context(), cliConfigKey, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}
