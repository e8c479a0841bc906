package transform

import (
	"strings"
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

func TestTrimToolCallIds_TruncatesBothSides(t *testing.T) {
	longID := strings.Repeat("a", 64)
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleAssistant, ToolCalls: []convo.ToolCallFull{{CallID: longID, Name: "read"}}},
		{Role: convo.RoleTool, ToolResult: &convo.ToolResult{CallID: longID, Content: "ok"}},
	}}
	env := &Env{Context: ctx, Dialect: DialectOpenAI}
	if err := TrimToolCallIds(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotCall := ctx.Entries[0].ToolCalls[0].CallID
	gotResult := ctx.Entries[1].ToolResult.CallID
	if len(gotCall) != maxToolCallIDLen || len(gotResult) != maxToolCallIDLen {
		t.Fatalf("expected both ids truncated to %d, got %d and %d", maxToolCallIDLen, len(gotCall), len(gotResult))
	}
	if gotCall != gotResult {
		t.Fatalf("expected truncated ids to still match: %q vs %q", gotCall, gotResult)
	}
}

func TestTrimToolCallIds_LeavesShortIdsAlone(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleAssistant, ToolCalls: []convo.ToolCallFull{{CallID: "short", Name: "read"}}},
	}}
	env := &Env{Context: ctx, Dialect: DialectOpenAI}
	if err := TrimToolCallIds(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Entries[0].ToolCalls[0].CallID != "short" {
		t.Fatalf("expected short id unchanged")
	}
}

func TestTrimToolCallIds_NoopOutsideOpenAI(t *testing.T) {
	longID := strings.Repeat("b", 64)
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleAssistant, ToolCalls: []convo.ToolCallFull{{CallID: longID}}},
	}}
	env := &Env{Context: ctx, Dialect: DialectAnthropic}
	if err := TrimToolCallIds(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Entries[0].ToolCalls[0].CallID != longID {
		t.Fatalf("expected id unchanged under Anthropic dialect")
	}
}
