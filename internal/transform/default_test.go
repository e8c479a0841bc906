package transform

import (
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

func TestDefaultTransformation_DropsEmptyAssistantEntries(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleUser, Text: "hi"},
		{Role: convo.RoleAssistant, Text: ""},
		{Role: convo.RoleAssistant, Text: "hello"},
	}}
	env := &Env{Context: ctx}
	if err := DefaultTransformation(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctx.Entries) != 2 {
		t.Fatalf("expected empty assistant entry dropped, got %d entries", len(ctx.Entries))
	}
}

func TestDefaultTransformation_KeepsEmptyTextWithToolCalls(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleAssistant, Text: "", ToolCalls: []convo.ToolCallFull{{CallID: "1", Name: "read"}}},
	}}
	env := &Env{Context: ctx}
	if err := DefaultTransformation(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctx.Entries) != 1 {
		t.Fatalf("expected tool-call-only assistant entry kept, got %d entries", len(ctx.Entries))
	}
}

func TestDefaultTransformation_TrimsSystemTrailingWhitespace(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleSystem, Text: "be helpful \n\n"},
	}}
	env := &Env{Context: ctx}
	if err := DefaultTransformation(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Entries[0].Text != "be helpful" {
		t.Fatalf("expected trimmed system text, got %q", ctx.Entries[0].Text)
	}
}
