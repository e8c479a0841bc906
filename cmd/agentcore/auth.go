package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relaykit/agentcore/internal/store"
)

// credentialsConfigKey is the app_config row provider credentials are
// persisted under, one dotted path per provider id. Keys arrive through
// provider-specific environment variables (or --key) and are migrated here
// on first use so later invocations work without the variable exported.
const credentialsConfigKey = "credentials"

func buildAuthCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "auth <provider-id>",
		Short: "Persist a provider API key into the conversation database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			providerCfg, ok := cfg.FindProvider(args[0])
			if !ok {
				return fmt.Errorf("no provider configured with id %q", args[0])
			}

			resolved := key
			if resolved == "" {
				resolved = providerCfg.APIKey
			}
			if resolved == "" {
				hint := providerCfg.APIKeyEnv
				if hint == "" {
					hint = "--key"
				}
				return fmt.Errorf("no API key for provider %q: set %s or pass --key", providerCfg.ID, hint)
			}

			st, err := store.Open(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetConfig(cmd.Context(), credentialsConfigKey, providerCfg.ID+".api_key", resolved); err != nil {
				return fmt.Errorf("persist credential for %s: %w", providerCfg.ID, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for provider %s\n", providerCfg.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key to store (defaults to the provider's configured key/env var)")
	return cmd
}

// storedAPIKey returns the persisted credential for providerID, if any.
func storedAPIKey(ctx context.Context, st *store.Store, providerID string) (string, bool) {
	if st == nil {
		return "", false
	}
	value, ok, err := st.GetConfig(ctx, credentialsConfigKey, providerID+".api_key")
	if err != nil || !ok {
		return "", false
	}
	return value.String(), value.String() != ""
}

// migrateAPIKey persists an env-sourced key on first use, so the
// environment variable is only required once per workspace.
func migrateAPIKey(ctx context.Context, st *store.Store, providerID, key string) {
	if st == nil || key == "" {
		return
	}
	if _, ok := storedAPIKey(ctx, st, providerID); ok {
		return
	}
	// Best effort: a failed migration never blocks the turn.
	_ = st.SetConfig(ctx, credentialsConfigKey, providerID+".api_key", key)
}
