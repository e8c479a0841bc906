// Package hooks implements the lifecycle event bus: an ordered registry of
// handlers the orchestrator fires at each turn milestone. Handlers may
// mutate the conversation they're passed and may spawn background work,
// but must return promptly; a handler error is fatal to the turn since it
// indicates a design bug, not an expected runtime condition.
//
// Dispatch delivers each event to an ordered list of Handlers fired in
// registration order: multiple independent observers (the title hook, the
// compactor, the metrics hook) rather than one fan-out sink.
package hooks

import (
	"context"
	"sync"

	"github.com/relaykit/agentcore/internal/convo"
)

// EventType names one of the six lifecycle milestones the orchestrator
// fires during a turn.
type EventType string

const (
	EventStart         EventType = "start"
	EventRequest       EventType = "request"
	EventResponse      EventType = "response"
	EventToolcallStart EventType = "toolcall_start"
	EventToolcallEnd   EventType = "toolcall_end"
	EventEnd           EventType = "end"
)

// Event carries the payload for one lifecycle milestone. Which fields are
// meaningful depends on Type:
//
//   - Start: no extra fields; handlers may observe the first user message
//     via the Conversation passed to Handle.
//   - Request: RequestCount.
//   - Response: Message, FinishReason.
//   - ToolcallStart: Call.
//   - ToolcallEnd: Call, Result.
//   - End: no extra fields.
type Event struct {
	Type EventType

	RequestCount int

	Message      *convo.MessageEntry
	FinishReason convo.FinishReason

	Call   *convo.ToolCallFull
	Result *convo.ToolResult
}

// Handler observes a lifecycle Event and may mutate conv in response.
type Handler interface {
	Handle(ctx context.Context, event Event, conv *convo.Conversation) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event, conv *convo.Conversation) error

func (f HandlerFunc) Handle(ctx context.Context, event Event, conv *convo.Conversation) error {
	return f(ctx, event, conv)
}

// Bus is an ordered registry of Handlers. Events fire in the orchestrator's
// turn sequence; handlers within one event fire in registration order.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Register appends h to the bus. Registration order is dispatch order.
func (b *Bus) Register(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Fire dispatches event to every registered handler in order, stopping at
// (and returning) the first error. A handler error is fatal to the
// orchestrator's turn.
func (b *Bus) Fire(ctx context.Context, event Event, conv *convo.Conversation) error {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, event, conv); err != nil {
			return err
		}
	}
	return nil
}
