package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/policy"
	"github.com/relaykit/agentcore/internal/tools"
)

// buildExecCmd runs one shell command through the same Shell tool the agent
// uses, with the same workspace scoping, output truncation, and permission
// path. Useful for checking what the agent would actually see.
func buildExecCmd() *cobra.Command {
	var cwd string
	cmd := &cobra.Command{
		Use:   "exec <command...>",
		Short: "Run a one-shot shell command through the Shell tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			registry := tools.NewBuiltinRegistry(tools.BuiltinConfig{Workspace: cfg.Workspace})
			executor := tools.NewExecutor(registry, tools.ExecutorConfig{Checker: policy.AllowAll{}})

			input := map[string]string{"command": strings.Join(args, " ")}
			if cwd != "" {
				input["cwd"] = cwd
			}
			raw, err := json.Marshal(input)
			if err != nil {
				return err
			}

			call := convo.ToolCallFull{
				CallID:    uuid.NewString(),
				Name:      "shell",
				Arguments: convo.Parsed(raw),
			}
			result, _, _ := executor.Dispatch(cmd.Context(), discardSender{}, call)

			fmt.Fprintln(cmd.OutOrStdout(), result.Content)
			if result.IsError {
				return fmt.Errorf("command failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cwd, "cwd", "", "working directory, relative to the workspace root")
	return cmd
}

type discardSender struct{}

func (discardSender) Send(string) {}
