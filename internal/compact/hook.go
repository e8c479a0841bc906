package compact

import (
	"context"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/hooks"
)

// Hook adapts a Compactor into a hooks.Handler that checks the running
// token estimate on every Response event and compacts in place when the
// threshold is reached; the orchestrator reloads its working context from
// the conversation after firing Response, so a mutation here is picked up
// before the next request is built.
type Hook struct {
	Compactor *Compactor
}

// NewHook wraps c as a hooks.Handler.
func NewHook(c *Compactor) *Hook {
	return &Hook{Compactor: c}
}

// Handle implements hooks.Handler.
func (h *Hook) Handle(ctx context.Context, event hooks.Event, conv *convo.Conversation) error {
	if event.Type != hooks.EventResponse {
		return nil
	}
	if conv.Context == nil {
		return nil
	}
	tokens := EstimateTokens(conv.Context.Entries)
	if !h.Compactor.ShouldCompact(tokens) {
		return nil
	}
	_, err := h.Compactor.Compact(ctx, conv)
	return err
}
