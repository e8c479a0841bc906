package orchestrator

import (
	"sync"
	"time"

	"github.com/relaykit/agentcore/internal/convo"
)

// ChatResponseKind discriminates the events an Orchestrator emits to its
// stream over the course of a turn.
type ChatResponseKind string

const (
	KindText          ChatResponseKind = "text"
	KindReasoning     ChatResponseKind = "reasoning"
	KindToolCallStart ChatResponseKind = "tool_call_start"
	KindToolCallEnd   ChatResponseKind = "tool_call_end"
	KindUsage         ChatResponseKind = "usage"
	KindRetryAttempt  ChatResponseKind = "retry_attempt"
	KindInterrupt     ChatResponseKind = "interrupt"
	KindTaskComplete  ChatResponseKind = "task_complete"
	KindError         ChatResponseKind = "error"
)

// InterruptKind names why the orchestrator yielded before the model itself
// signaled completion.
type InterruptKind string

const (
	InterruptMaxToolFailurePerTurn InterruptKind = "max_tool_failure_per_turn"
	InterruptMaxRequestsPerTurn    InterruptKind = "max_requests_per_turn"
)

// InterruptReason describes one such early yield.
type InterruptReason struct {
	Kind  InterruptKind
	Limit int

	// ToolNames is set for MaxToolFailurePerTurn: every tool name currently
	// carrying at least one failure.
	ToolNames []string
}

// ChatResponse is one event in the stream an Orchestrator drives: at most
// the fields relevant to Kind are populated; the rest are zero.
//
//   - Text / Reasoning: Text carries the assistant's final text (or
//     reasoning text, for Reasoning) for the request that just completed.
//     The underlying provider clients assemble a full message before
//     returning, so these are not sub-token deltas; they fire once per
//     provider round-trip rather than once per SSE frame.
//   - ToolCallStart: Call, and Text holding the tool's to_content preview
//     when the tool produced one.
//   - ToolCallEnd: Call, Result.
//   - Usage: Usage.
//   - RetryAttempt: RetryCause, RetryDuration.
//   - Interrupt: Interrupt.
//   - TaskComplete: no extra fields.
//   - Error (internal convenience kind): Err. Not part of the UI wire
//     protocol proper; the orchestrator uses it to report a fatal failure on
//     the same channel instead of a second error return from Run.
type ChatResponse struct {
	Kind ChatResponseKind

	Err error

	Text string

	Call   *convo.ToolCallFull
	Result *convo.ToolResult

	Usage *convo.Usage

	RetryCause    error
	RetryDuration time.Duration

	Interrupt InterruptReason
}

// Stream is a single-producer channel of ChatResponse events with a
// 64-event buffer; once the buffer is full, emission blocks until the
// consumer reads.
// Orchestrator.Run returns the receive side; the orchestrator itself owns
// emission and closes the channel when the turn ends.
type Stream struct {
	ch chan ChatResponse

	mu     sync.Mutex
	closed bool
}

func newStream() *Stream {
	return &Stream{ch: make(chan ChatResponse, 64)}
}

// Chan returns the receive side consumers read from.
func (s *Stream) Chan() <-chan ChatResponse { return s.ch }

func (s *Stream) emit(resp ChatResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- resp
}

func (s *Stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
