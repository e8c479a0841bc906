// Command agentcore is the CLI entry point for the agent runtime: start or
// resume a conversation, list stored conversations, force a compaction,
// persist provider credentials, run one-shot shell commands, and inspect or
// edit small CLI-local settings. One buildXCmd per subcommand, flags bound
// through closures, --config resolved once per command.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/relaykit/agentcore/internal/config"
)

// Build information, populated by ldflags during release builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "agentcore",
		Short:        "agentcore drives agent conversations against Anthropic and OpenAI models",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "path to the YAML/JSON5 config file")

	root.AddCommand(
		buildStartCmd(),
		buildResumeCmd(),
		buildListCmd(),
		buildCompactCmd(),
		buildAuthCmd(),
		buildExecCmd(),
		buildConfigCmd(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	return cfg, nil
}
