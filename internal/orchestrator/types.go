package orchestrator

import (
	"context"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/provider"
	"github.com/relaykit/agentcore/internal/tools"
)

// Model describes one entry of the model catalog: which dialect it speaks
// and which transformer-pipeline capabilities it advertises.
type Model struct {
	ID                 string
	Dialect            provider.Dialect
	ToolsSupported     bool
	ReasoningSupported bool
	ImagesSupported    bool
}

// ModelCatalog resolves a model id to its capabilities.
type ModelCatalog interface {
	Lookup(modelID string) (Model, bool)
}

// Agent is the bound configuration the orchestrator drives a turn against:
// which model answers, which tools it may call, its tool declaration
// order, and the per-turn limits that can interrupt the loop.
type Agent struct {
	ID        string
	ModelID   string
	System    string
	ToolOrder []string

	// MaxRequestsPerTurn bounds how many provider round-trips a single Run
	// may issue. Zero means unlimited.
	MaxRequestsPerTurn int

	// MaxToolFailurePerTurn is the per-tool failure ceiling passed to the
	// error tracker. Zero means unlimited.
	MaxToolFailurePerTurn int

	// CompactThresholdTokens records the agent's compaction threshold. The
	// orchestrator does not read it: compaction runs in the compact.Hook
	// registered on the bus, which cmd/agentcore configures with this value,
	// or with compact.DefaultConfig's 100,000 tokens when it is zero.
	CompactThresholdTokens int
}

// ConversationRepo is the opaque persistence boundary the orchestrator
// saves through after every context mutation. The core never queries it
// beyond Save; listing, resuming, and compacting by id are driven from
// outside the turn loop (see cmd/agentcore).
type ConversationRepo interface {
	Save(ctx context.Context, conv *convo.Conversation) error
}

// Services bundles the external collaborators a turn drives: the chat
// client for the bound provider dialect, the tool executor, and the
// conversation repository.
type Services struct {
	Chat     provider.ChatClient
	Executor Executor
	Repo     ConversationRepo
}

// Executor is the subset of *tools.Executor the orchestrator depends on,
// named locally so tests can stub it without constructing a real Registry.
// The Sender parameter type must match tools.Sender exactly for a real
// *tools.Executor to satisfy this interface.
type Executor interface {
	Dispatch(ctx context.Context, sender tools.Sender, call convo.ToolCallFull) (convo.ToolResult, convo.FileOperation, string)
}

// ToolCatalog is the subset of *tools.Registry the orchestrator needs: the
// yield check that decides whether a tool call pauses the turn.
type ToolCatalog interface {
	ShouldYield(name string) bool
}
