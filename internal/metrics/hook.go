package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/hooks"
)

// Hook adapts a Metrics set into a hooks.Handler, recording request/tool
// latency and counts as the orchestrator's lifecycle events fire. In-flight
// start times are tracked keyed by conversation id (requests) and tool call
// id (tool dispatches) since a single Handle call only ever sees one event,
// not a matched start/end pair.
//
// Request/Response only bracket the happy path: a provider error short-
// circuits the turn before Response fires (see internal/orchestrator), so
// RequestCounter's "error" outcome is never incremented by this hook alone
// — a wire-level decorator would be needed to observe transport failures,
// which is out of scope for the lifecycle bus.
type Hook struct {
	metrics *Metrics

	mu           sync.Mutex
	requestStart map[string]time.Time
	toolStart    map[string]time.Time
}

// NewHook wraps m as a hooks.Handler.
func NewHook(m *Metrics) *Hook {
	return &Hook{
		metrics:      m,
		requestStart: make(map[string]time.Time),
		toolStart:    make(map[string]time.Time),
	}
}

// Handle implements hooks.Handler.
func (h *Hook) Handle(_ context.Context, event hooks.Event, conv *convo.Conversation) error {
	switch event.Type {
	case hooks.EventStart:
		h.metrics.ActiveConversations.Inc()
	case hooks.EventRequest:
		h.mu.Lock()
		h.requestStart[conv.ID] = time.Now()
		h.mu.Unlock()
	case hooks.EventResponse:
		h.recordResponse(conv, event.Message)
	case hooks.EventToolcallStart:
		if event.Call != nil {
			h.mu.Lock()
			h.toolStart[event.Call.CallID] = time.Now()
			h.mu.Unlock()
		}
	case hooks.EventToolcallEnd:
		h.recordToolEnd(event.Call, event.Result)
	case hooks.EventEnd:
		h.metrics.ActiveConversations.Dec()
	}
	return nil
}

func (h *Hook) recordResponse(conv *convo.Conversation, message *convo.MessageEntry) {
	h.mu.Lock()
	start, ok := h.requestStart[conv.ID]
	if ok {
		delete(h.requestStart, conv.ID)
	}
	h.mu.Unlock()

	model := conv.ModelID
	h.metrics.RequestCounter.WithLabelValues(model, "success").Inc()
	if ok {
		h.metrics.RequestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	}
	if message != nil && message.Usage != nil {
		if n, present := message.Usage.InputTokens.Value(); present {
			h.metrics.TokensUsed.WithLabelValues(model, "input").Add(float64(n))
		}
		if n, present := message.Usage.OutputTokens.Value(); present {
			h.metrics.TokensUsed.WithLabelValues(model, "output").Add(float64(n))
		}
	}
}

func (h *Hook) recordToolEnd(call *convo.ToolCallFull, result *convo.ToolResult) {
	if call == nil {
		return
	}
	h.mu.Lock()
	start, ok := h.toolStart[call.CallID]
	if ok {
		delete(h.toolStart, call.CallID)
	}
	h.mu.Unlock()

	outcome := "success"
	if result != nil && result.IsError {
		outcome = "error"
	}
	h.metrics.ToolExecutionCounter.WithLabelValues(call.Name, outcome).Inc()
	if ok {
		h.metrics.ToolExecutionDuration.WithLabelValues(call.Name).Observe(time.Since(start).Seconds())
	}
}
