package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/relaykit/agentcore/internal/compact"
	"github.com/relaykit/agentcore/internal/config"
	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/hooks"
	"github.com/relaykit/agentcore/internal/metrics"
	"github.com/relaykit/agentcore/internal/orchestrator"
	"github.com/relaykit/agentcore/internal/store"
	"github.com/relaykit/agentcore/internal/title"
	"github.com/relaykit/agentcore/internal/toolerr"
)

func buildStartCmd() *cobra.Command {
	var agentID string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			agentCfg, err := resolveAgent(cfg, agentID)
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			conv := &convo.Conversation{
				ID:      uuid.NewString(),
				AgentID: agentCfg.ID,
				ModelID: agentCfg.ModelID,
			}
			ctxState := conv.EmptyContext()
			ctxState.Entries = append(ctxState.Entries, convo.MessageEntry{Role: convo.RoleSystem, Text: agentCfg.System})

			return runChat(cmd, conv, agentCfg, newRuntimeDeps(cfg, st))
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "agent id to bind this conversation to (defaults to the first configured agent)")
	return cmd
}

func buildResumeCmd() *cobra.Command {
	var last bool
	cmd := &cobra.Command{
		Use:   "resume [conversation-id]",
		Short: "Resume a stored conversation",
		Args:  cobra.MaximumNArgs(1),
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

			var conv *convo.Conversation
			switch {
			case last:
				found, ok, err := st.FindLast(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no stored conversations")
				}
				conv = found
			case len(args) == 1:
				found, err := st.Find(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("find conversation %s: %w", args[0], err)
				}
				conv = found
			default:
				return fmt.Errorf("pass a conversation id or --last")
			}

			agentCfg, err := resolveAgent(cfg, conv.AgentID)
			if err != nil {
				return err
			}
			return runChat(cmd, conv, agentCfg, newRuntimeDeps(cfg, st))
		},
	}
	cmd.Flags().BoolVar(&last, "last", false, "resume the most recently updated conversation")
	return cmd
}

func resolveAgent(cfg *config.Config, agentID string) (config.AgentConfig, error) {
	if agentID != "" {
		a, ok := cfg.FindAgent(agentID)
		if !ok {
			return config.AgentConfig{}, fmt.Errorf("no agent configured with id %q", agentID)
		}
		return a, nil
	}
	if len(cfg.Agents) == 0 {
		return config.AgentConfig{}, fmt.Errorf("no agents configured")
	}
	return cfg.Agents[0], nil
}

// runChat drives an interactive read-eval-print loop over conv: each line of
// stdin becomes one user turn, driven through a fresh Orchestrator (the
// orchestrator is built per turn since it's bound to exactly one Run call;
// see internal/orchestrator), with every ChatResponse event rendered to
// stdout as it arrives.
func runChat(cmd *cobra.Command, conv *convo.Conversation, agentCfg config.AgentConfig, deps *runtimeDeps) error {
	services, catalog, registry, err := deps.agentOrchestratorInputs(cmd.Context(), agentCfg)
	if err != nil {
		return err
	}
	resolvedTools := registry.Resolve(agentCfg.Tools)

	summarizer := &chatSummarizer{client: services.Chat, modelID: agentCfg.ModelID}
	compactCfg := compact.DefaultConfig()
	if agentCfg.CompactThresholdTokens > 0 {
		compactCfg.CompactThresholdTokens = agentCfg.CompactThresholdTokens
	}
	compactor := compact.New(summarizer, compactCfg)

	bus := hooks.New()
	bus.Register(compact.NewHook(compactor))
	bus.Register(title.New(summarizer.generateTitle))
	bus.Register(metrics.NewHook(deps.metrics))

	tracker := toolerr.NewTracker(agentCfg.MaxToolFailurePerTurn)
	agent := orchestrator.Agent{
		ID:                     agentCfg.ID,
		ModelID:                agentCfg.ModelID,
		System:                 agentCfg.System,
		ToolOrder:              agentCfg.ToolOrder,
		MaxRequestsPerTurn:     agentCfg.MaxRequestsPerTurn,
		MaxToolFailurePerTurn:  agentCfg.MaxToolFailurePerTurn,
		CompactThresholdTokens: agentCfg.CompactThresholdTokens,
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Conversation %s (agent %s, model %s). Ctrl-D to exit.\n", conv.ID, agentCfg.ID, agentCfg.ModelID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		userMsg := &convo.MessageEntry{Role: convo.RoleUser, Text: line}
		orch := orchestrator.New(services, agent, catalog, registry, tracker, bus, conv, resolvedTools)
		for resp := range orch.Run(cmd.Context(), userMsg) {
			printResponse(out, resp)
		}
		conv = orch.GetConversation()
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return deps.store.Save(cmd.Context(), conv)
}

func printResponse(out io.Writer, resp orchestrator.ChatResponse) {
	switch resp.Kind {
	case orchestrator.KindText:
		fmt.Fprintln(out, resp.Text)
	case orchestrator.KindReasoning:
		fmt.Fprintf(out, "[reasoning] %s\n", resp.Text)
	case orchestrator.KindToolCallStart:
		if resp.Text != "" {
			fmt.Fprintf(out, "[tool] %s: %s\n", resp.Call.Name, resp.Text)
		} else {
			fmt.Fprintf(out, "[tool] %s...\n", resp.Call.Name)
		}
	case orchestrator.KindToolCallEnd:
		status := "ok"
		if resp.Result.IsError {
			status = "error"
		}
		fmt.Fprintf(out, "[tool] %s: %s\n", resp.Call.Name, status)
	case orchestrator.KindUsage:
		if in, ok := resp.Usage.InputTokens.Value(); ok {
			if outTok, ok2 := resp.Usage.OutputTokens.Value(); ok2 {
				fmt.Fprintf(out, "[usage] input=%d output=%d\n", in, outTok)
			}
		}
	case orchestrator.KindRetryAttempt:
		fmt.Fprintf(out, "[retry] %v, sleeping %s\n", resp.RetryCause, resp.RetryDuration)
	case orchestrator.KindInterrupt:
		fmt.Fprintf(out, "[interrupt] %s\n", resp.Interrupt.Kind)
	case orchestrator.KindTaskComplete:
		fmt.Fprintln(out, "[done]")
	case orchestrator.KindError:
		fmt.Fprintf(out, "[error] %v\n", resp.Err)
	}
}
