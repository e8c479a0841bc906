package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaykit/agentcore/internal/store"
)

func buildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored conversations",
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

			convos, err := st.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(convos) == 0 {
				fmt.Fprintln(out, "No conversations found.")
				return nil
			}
			for _, c := range convos {
				title := "(untitled)"
				if c.Title != nil {
					title = *c.Title
				}
				fmt.Fprintf(out, "%s  %-30s  agent=%s model=%s updated=%s\n", c.ID, title, c.AgentID, c.ModelID, c.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
