package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relaykit/agentcore/internal/config"
	"github.com/relaykit/agentcore/internal/metrics"
	"github.com/relaykit/agentcore/internal/orchestrator"
	"github.com/relaykit/agentcore/internal/policy"
	"github.com/relaykit/agentcore/internal/provider"
	"github.com/relaykit/agentcore/internal/retry"
	"github.com/relaykit/agentcore/internal/store"
	"github.com/relaykit/agentcore/internal/tools"
)

// staticCatalog resolves a model id to its dialect and transformer-pipeline
// capabilities from the configured providers. Every model a configured
// provider advertises is assumed to support tools, reasoning, and images;
// the config format (internal/config) carries nothing finer-grained than a
// flat model id list, so a deployment that needs per-model capability
// overrides has to widen ProviderConfig first.
type staticCatalog struct {
	models map[string]orchestrator.Model
}

func newStaticCatalog(cfg *config.Config) *staticCatalog {
	c := &staticCatalog{models: make(map[string]orchestrator.Model)}
	for _, p := range cfg.Providers {
		dialect := provider.Dialect(p.Dialect)
		for _, modelID := range p.Models {
			c.models[modelID] = orchestrator.Model{
				ID:                 modelID,
				Dialect:            dialect,
				ToolsSupported:     true,
				ReasoningSupported: true,
				ImagesSupported:    true,
			}
		}
	}
	return c
}

func (c *staticCatalog) Lookup(modelID string) (orchestrator.Model, bool) {
	m, ok := c.models[modelID]
	return m, ok
}

// providerFor returns the Provider owning modelID, and the chat client bound
// to it. Keys resolved from the environment are migrated into the store's
// persisted credentials on first use; a provider with no key in config falls
// back to whatever `agentcore auth` persisted earlier.
func providerFor(ctx context.Context, cfg *config.Config, st *store.Store, modelID string) (*provider.Provider, provider.ChatClient, error) {
	for _, p := range cfg.Providers {
		for _, m := range p.Models {
			if m != modelID {
				continue
			}
			apiKey := p.APIKey
			if apiKey == "" {
				apiKey, _ = storedAPIKey(ctx, st, p.ID)
			} else {
				migrateAPIKey(ctx, st, p.ID, apiKey)
			}
			bound := provider.NewAPIKeyProvider(provider.ID(p.ID), provider.Dialect(p.Dialect), p.BaseURL, apiKey)
			client, err := buildChatClient(bound)
			if err != nil {
				return nil, nil, err
			}
			return bound, client, nil
		}
	}
	return nil, nil, fmt.Errorf("no configured provider advertises model %q", modelID)
}

func buildChatClient(p *provider.Provider) (provider.ChatClient, error) {
	retryCfg := retry.DefaultConfig()
	switch p.Dialect {
	case provider.DialectAnthropic:
		return provider.NewAnthropicClient(p, retryCfg), nil
	case provider.DialectOpenAI:
		return provider.NewOpenAIClient(p, retryCfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider dialect %q", p.Dialect)
	}
}

// runtimeDeps bundles the long-lived collaborators shared across every turn
// in one CLI invocation: the conversation store, the Prometheus registry,
// and the built-in tool catalog. Built once per command, not per turn.
type runtimeDeps struct {
	cfg      *config.Config
	store    *store.Store
	metrics  *metrics.Metrics
	registry *tools.Registry
	executor *tools.Executor
}

func newRuntimeDeps(cfg *config.Config, st *store.Store) *runtimeDeps {
	registry := tools.NewBuiltinRegistry(tools.BuiltinConfig{Workspace: cfg.Workspace})
	executor := tools.NewExecutor(registry, tools.ExecutorConfig{Checker: policy.AllowAll{}})
	return &runtimeDeps{
		cfg:      cfg,
		store:    st,
		metrics:  metrics.New(prometheus.DefaultRegisterer),
		registry: registry,
		executor: executor,
	}
}

func (d *runtimeDeps) agentOrchestratorInputs(ctx context.Context, agentCfg config.AgentConfig) (orchestrator.Services, *staticCatalog, *tools.Registry, error) {
	_, client, err := providerFor(ctx, d.cfg, d.store, agentCfg.ModelID)
	if err != nil {
		return orchestrator.Services{}, nil, nil, err
	}
	services := orchestrator.Services{
		Chat:     client,
		Executor: d.executor,
		Repo:     d.store,
	}
	return services, newStaticCatalog(d.cfg), d.registry, nil
}
