package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaykit/agentcore/internal/compact"
	"github.com/relaykit/agentcore/internal/store"
)

func buildCompactCmd() *cobra.Command {
	var agentID string
	cmd := &cobra.Command{
		Use:   "compact <conversation-id>",
		Short: "Force-compact a stored conversation's history",
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

			conv, err := st.Find(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find conversation %s: %w", args[0], err)
			}

			preferredAgent := agentID
			if preferredAgent == "" {
				preferredAgent = conv.AgentID
			}
			agentCfg, err := resolveAgent(cfg, preferredAgent)
			if err != nil {
				return err
			}

			_, client, err := providerFor(cmd.Context(), cfg, st, agentCfg.ModelID)
			if err != nil {
				return err
			}
			summarizer := &chatSummarizer{client: client, modelID: agentCfg.ModelID}
			compactor := compact.New(summarizer, compact.Config{
				CompactThresholdTokens: 1, // force: any non-empty compactable prefix qualifies
				SummaryPrompt:          compact.DefaultConfig().SummaryPrompt,
			})

			result, err := compactor.Compact(cmd.Context(), conv)
			if err != nil {
				return fmt.Errorf("compact: %w", err)
			}
			if err := st.Save(cmd.Context(), conv); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Compacted %s: %d -> %d messages, ~%d -> ~%d tokens\n",
				conv.ID, result.MsgsBefore, result.MsgsAfter, result.TokensBefore, result.TokensAfter)
			return nil
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "agent id whose model should summarize (defaults to the conversation's bound agent)")
	return cmd
}
