// Package orchestrator drives a single agent turn to completion: it
// assembles the canonical Context, routes it through the transformer
// pipeline into a provider-specific request, issues it through the retry
// driver, executes any tool calls the response carries, updates the
// conversation, and streams a sequence of ChatResponse events describing
// what happened.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/hooks"
	"github.com/relaykit/agentcore/internal/provider"
	"github.com/relaykit/agentcore/internal/retry"
	"github.com/relaykit/agentcore/internal/toolcall"
	"github.com/relaykit/agentcore/internal/toolerr"
	"github.com/relaykit/agentcore/internal/tools"
	"github.com/relaykit/agentcore/internal/transform"
)

// Orchestrator owns the active Conversation for the duration of exactly one
// turn: construct one per turn, call Run once, and persist whatever
// GetConversation returns afterward (Run also persists after every mutation
// on its own, so an additional save is only needed if the caller wants a
// synchronous guarantee after the channel closes).
type Orchestrator struct {
	services Services
	agent    Agent
	catalog  ModelCatalog
	catalogR ToolCatalog
	tracker  *toolerr.Tracker
	hooks    *hooks.Bus

	resolvedTools []convo.ToolDefinition

	conv   *convo.Conversation
	stream *Stream
}

// New constructs an Orchestrator bound to conv. resolvedTools is the
// agent's already-resolved tool catalog (see tools.Registry.Resolve);
// toolCatalog is consulted for should_yield per call.
func New(services Services, agent Agent, catalog ModelCatalog, toolCatalog ToolCatalog, tracker *toolerr.Tracker, bus *hooks.Bus, conv *convo.Conversation, resolvedTools []convo.ToolDefinition) *Orchestrator {
	return &Orchestrator{
		services:      services,
		agent:         agent,
		catalog:       catalog,
		catalogR:      toolCatalog,
		tracker:       tracker,
		hooks:         bus,
		resolvedTools: resolvedTools,
		conv:          conv,
		stream:        newStream(),
	}
}

// GetConversation returns the current aggregate, for persistence outside
// the turn loop.
func (o *Orchestrator) GetConversation() *convo.Conversation {
	return o.conv
}

// Run drives one agent turn to completion. userMessage, if non-nil, is
// appended to the conversation's context before the loop starts (the
// "initial event" triggering this turn); pass nil when resuming a turn with
// no new user input. The returned channel is closed once the turn ends,
// after the final Interrupt or TaskComplete event (if any) has been sent.
func (o *Orchestrator) Run(ctx context.Context, userMessage *convo.MessageEntry) <-chan ChatResponse {
	go o.run(ctx, userMessage)
	return o.stream.Chan()
}

func (o *Orchestrator) run(ctx context.Context, userMessage *convo.MessageEntry) {
	defer o.stream.close()

	ctxState := o.conv.EmptyContext()
	if userMessage != nil {
		ctxState.Entries = append(ctxState.Entries, *userMessage)
	}

	if err := o.hooks.Fire(ctx, hooks.Event{Type: hooks.EventStart}, o.conv); err != nil {
		o.stream.emit(ChatResponse{Kind: KindError, Err: fmt.Errorf("orchestrator: start hook: %w", err)})
		return
	}

	model, ok := o.catalog.Lookup(o.agent.ModelID)
	if !ok {
		o.stream.emit(ChatResponse{Kind: KindError, Err: ErrUnknownModel})
		return
	}

	requestCount := 0
	shouldYield := false
	isComplete := false

	for !shouldYield {
		if err := o.save(ctx); err != nil {
			o.stream.emit(ChatResponse{Kind: KindError, Err: err})
			return
		}

		if err := o.hooks.Fire(ctx, hooks.Event{Type: hooks.EventRequest, RequestCount: requestCount}, o.conv); err != nil {
			o.stream.emit(ChatResponse{Kind: KindError, Err: fmt.Errorf("orchestrator: request hook: %w", err)})
			return
		}

		reqCtx, err := o.buildRequest(model)
		if err != nil {
			o.stream.emit(ChatResponse{Kind: KindError, Err: err})
			return
		}

		retryCtx := retry.WithOnRetry(ctx, func(attempt int, cause error, sleep time.Duration) {
			o.stream.emit(ChatResponse{Kind: KindRetryAttempt, RetryCause: cause, RetryDuration: sleep})
		})
		result, err := o.services.Chat.StreamChat(retryCtx, reqCtx, model.ID)
		if err != nil {
			o.stream.emit(ChatResponse{Kind: KindError, Err: err})
			return
		}
		message := result.Entry

		if err := o.hooks.Fire(ctx, hooks.Event{Type: hooks.EventResponse, Message: &message, FinishReason: result.FinishReason}, o.conv); err != nil {
			o.stream.emit(ChatResponse{Kind: KindError, Err: fmt.Errorf("orchestrator: response hook: %w", err)})
			return
		}
		// A handler (e.g. the compaction hook) may have mutated the
		// conversation's context in place; ctxState must be re-read rather
		// than reused so the rest of this iteration sees it.
		ctxState = o.conv.EmptyContext()

		if message.Text != "" {
			o.stream.emit(ChatResponse{Kind: KindText, Text: message.Text})
		}
		if reasoningText := reasoningText(message.Reasoning); reasoningText != "" {
			o.stream.emit(ChatResponse{Kind: KindReasoning, Text: reasoningText})
		}
		if message.Usage != nil {
			o.stream.emit(ChatResponse{Kind: KindUsage, Usage: message.Usage})
		}

		// Models without native tool support carry their calls as
		// <forge_tool_call> blocks inside the assistant text (the
		// TransformToolCalls step advertised the grammar on the way out);
		// extract them here so the rest of the loop sees structured calls.
		if !model.ToolsSupported && len(message.ToolCalls) == 0 {
			message.ToolCalls = extractEmbeddedToolCalls(message.Text)
		}

		// Gemini-family models may report Stop alongside tool calls; the
		// tool_calls.empty() conjunct below means that case is correctly
		// treated as incomplete without any extra branching.
		isComplete = result.FinishReason == convo.FinishStop && len(message.ToolCalls) == 0
		shouldYield = isComplete || anyShouldYield(o.catalogR, message.ToolCalls)

		records, toolEntries, err := o.executeToolCalls(ctx, message.ToolCalls)
		if err != nil {
			o.stream.emit(ChatResponse{Kind: KindError, Err: err})
			return
		}

		o.tracker.AdjustRecord(records)
		applyRetryHints(records, toolEntries, o.tracker, o.agent.MaxToolFailurePerTurn)

		ctxState.Entries = append(ctxState.Entries, message)
		ctxState.Entries = append(ctxState.Entries, toolEntries...)

		if o.tracker.LimitReached() {
			reason := InterruptReason{Kind: InterruptMaxToolFailurePerTurn, Limit: o.agent.MaxToolFailurePerTurn, ToolNames: o.tracker.Errors()}
			o.stream.emit(ChatResponse{Kind: KindInterrupt, Interrupt: reason})
			shouldYield = true
		}

		transform.SetModel(&transform.Env{Context: ctxState, ModelID: model.ID})

		if !shouldYield && o.agent.MaxRequestsPerTurn > 0 && requestCount+1 >= o.agent.MaxRequestsPerTurn {
			reason := InterruptReason{Kind: InterruptMaxRequestsPerTurn, Limit: o.agent.MaxRequestsPerTurn}
			o.stream.emit(ChatResponse{Kind: KindInterrupt, Interrupt: reason})
			shouldYield = true
		}

		requestCount++
		o.recordFileOperations(records)
	}

	if err := o.hooks.Fire(ctx, hooks.Event{Type: hooks.EventEnd}, o.conv); err != nil {
		o.stream.emit(ChatResponse{Kind: KindError, Err: fmt.Errorf("orchestrator: end hook: %w", err)})
		return
	}
	if err := o.save(ctx); err != nil {
		o.stream.emit(ChatResponse{Kind: KindError, Err: err})
		return
	}
	if isComplete {
		o.stream.emit(ChatResponse{Kind: KindTaskComplete})
	}
}

func (o *Orchestrator) save(ctx context.Context) error {
	if o.services.Repo == nil {
		return nil
	}
	if err := o.services.Repo.Save(ctx, o.conv); err != nil {
		return fmt.Errorf("orchestrator: persist conversation: %w", err)
	}
	return nil
}

// buildRequest clones the conversation's context, runs it through the
// canonical transformer pipeline plus the model's dialect-specific edge
// steps, and returns the result ready for provider.ChatClient.StreamChat.
// The canonical context stored on the conversation is never mutated by
// this — only the clone used for the wire request.
func (o *Orchestrator) buildRequest(model Model) (*convo.Context, error) {
	reqCtx := o.conv.EmptyContext().Clone()
	reqCtx.Tools = append([]convo.ToolDefinition(nil), o.resolvedTools...)

	env := &transform.Env{
		Context: reqCtx,
		Caps: transform.Capabilities{
			ToolsSupported:     model.ToolsSupported,
			ReasoningSupported: model.ReasoningSupported,
			ImagesSupported:    model.ImagesSupported,
		},
		Dialect:   transformDialect(model.Dialect),
		ToolOrder: o.agent.ToolOrder,
		ModelID:   model.ID,
	}

	if err := transform.Default().Run(env); err != nil {
		return nil, fmt.Errorf("orchestrator: transform pipeline: %w", err)
	}

	switch model.Dialect {
	case provider.DialectAnthropic:
		if err := transform.SetCache(env); err != nil {
			return nil, fmt.Errorf("orchestrator: set cache: %w", err)
		}
	case provider.DialectOpenAI:
		if err := transform.TrimToolCallIds(env); err != nil {
			return nil, fmt.Errorf("orchestrator: trim tool call ids: %w", err)
		}
	}

	return env.Context, nil
}

func transformDialect(d provider.Dialect) transform.Dialect {
	switch d {
	case provider.DialectAnthropic:
		return transform.DialectAnthropic
	default:
		return transform.DialectOpenAI
	}
}

func anyShouldYield(catalog ToolCatalog, calls []convo.ToolCallFull) bool {
	for _, c := range calls {
		if catalog.ShouldYield(c.Name) {
			return true
		}
	}
	return false
}

// extractEmbeddedToolCalls parses <forge_tool_call> blocks out of assistant
// text, synthesizing a call id per block since the XML grammar carries none
// of its own. Empty extraction yields nil: plain prose stays plain prose.
func extractEmbeddedToolCalls(text string) []convo.ToolCallFull {
	parsed := toolcall.ExtractToolCalls(text)
	if len(parsed) == 0 {
		return nil
	}
	calls := make([]convo.ToolCallFull, 0, len(parsed))
	for _, p := range parsed {
		calls = append(calls, toolcall.CallFromXML(uuid.NewString(), p))
	}
	return calls
}

func reasoningText(blocks []convo.ReasoningBlock) string {
	var text string
	for _, b := range blocks {
		text += b.Text
	}
	return text
}

// executeToolCalls dispatches every call sequentially, in emission order,
// firing ToolcallStart/ToolcallEnd around each. The stream ToolCallStart/
// ToolCallEnd notifications are emitted only for system-owned calls (tools
// present in the agent's resolved catalog), never for agent-as-tool
// delegation. It returns the raw dispatch records (for the error tracker)
// and the tool-result MessageEntry for each call, in order; a hook error is
// fatal to the turn, like every other lifecycle fire.
func (o *Orchestrator) executeToolCalls(ctx context.Context, calls []convo.ToolCallFull) ([]toolerr.Record, []convo.MessageEntry, error) {
	records := make([]toolerr.Record, 0, len(calls))
	entries := make([]convo.MessageEntry, 0, len(calls))

	systemTools := make(map[string]bool, len(o.resolvedTools))
	for _, t := range o.resolvedTools {
		systemTools[t.Name] = true
	}

	for _, call := range calls {
		call := call
		isSystemTool := systemTools[call.Name]

		if isSystemTool {
			o.stream.emit(ChatResponse{Kind: KindToolCallStart, Call: &call})
		}
		if err := o.hooks.Fire(ctx, hooks.Event{Type: hooks.EventToolcallStart, Call: &call}, o.conv); err != nil {
			return nil, nil, fmt.Errorf("orchestrator: toolcall start hook: %w", err)
		}

		sender := &previewSender{stream: o.stream, call: call}
		result, fileOp, path := o.services.Executor.Dispatch(ctx, sender, call)

		if err := o.hooks.Fire(ctx, hooks.Event{Type: hooks.EventToolcallEnd, Call: &call, Result: &result}, o.conv); err != nil {
			return nil, nil, fmt.Errorf("orchestrator: toolcall end hook: %w", err)
		}
		if isSystemTool {
			o.stream.emit(ChatResponse{Kind: KindToolCallEnd, Call: &call, Result: &result})
		}

		records = append(records, toolerr.Record{Call: call, Result: result, FileOp: fileOp, Path: path})
		entries = append(entries, convo.MessageEntry{Role: convo.RoleTool, ToolResult: &result})
	}

	return records, entries, nil
}

func (o *Orchestrator) recordFileOperations(records []toolerr.Record) {
	for _, r := range records {
		if r.Path == "" {
			continue
		}
		o.conv.Metrics.RecordFileOperation(r.Path, r.FileOp.ToolKind, r.FileOp.ContentHash)
	}
}

// previewSender forwards a tool's optional to_content summary as a second
// ToolCallStart event carrying the preview text.
type previewSender struct {
	stream *Stream
	call   convo.ToolCallFull
}

func (s *previewSender) Send(summary string) {
	s.stream.emit(ChatResponse{Kind: KindToolCallStart, Call: &s.call, Text: summary})
}

// applyRetryHints adds machine-readable attempts_left and
// allowed_max_attempts fields to every erroring tool result that is not a
// policy denial, using the tracker's post-update remaining-attempts count.
// Content that is a JSON object gets the two fields merged into it; any
// other content gets a separate JSON object appended on a new line.
func applyRetryHints(records []toolerr.Record, entries []convo.MessageEntry, tracker *toolerr.Tracker, limit int) {
	for i := range records {
		if !records[i].Result.IsError || records[i].Result.Denied {
			continue
		}
		remaining := tracker.RemainingAttempts(records[i].Call.Name)
		hinted := appendRetryHint(records[i].Result.Content, remaining, limit)
		records[i].Result.Content = hinted
		if entries[i].ToolResult != nil {
			entries[i].ToolResult.Content = hinted
		}
	}
}

func appendRetryHint(content string, attemptsLeft, allowedMax int) string {
	hint := map[string]int{"attempts_left": attemptsLeft, "allowed_max_attempts": allowedMax}

	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		obj["attempts_left"] = attemptsLeft
		obj["allowed_max_attempts"] = allowedMax
		if out, err := json.Marshal(obj); err == nil {
			return string(out)
		}
	}

	payload, err := json.Marshal(hint)
	if err != nil {
		return content
	}
	return content + "\n" + string(payload)
}

var _ tools.Sender = (*previewSender)(nil)
