package wire

import (
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
	openai "github.com/sashabaranov/go-openai"
)

func TestEncodeOpenAI_SystemAndUserMessages(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleSystem, Text: "be helpful"},
		{Role: convo.RoleUser, Text: "hi"},
	}}
	req, err := EncodeOpenAI(ctx, "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Model != "gpt-4o" || !req.Stream {
		t.Fatalf("expected streaming request for gpt-4o, got %+v", req)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected system then user message, got %+v", req.Messages)
	}
}

func TestEncodeOpenAI_ToolCallRoundTrip(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleAssistant, ToolCalls: []convo.ToolCallFull{{CallID: "call_1", Name: "read", Arguments: convo.Unparsed(`{"path":"a.go"}`)}}},
		{Role: convo.RoleTool, ToolResult: &convo.ToolResult{CallID: "call_1", Content: "contents"}},
	}}
	req, err := EncodeOpenAI(ctx, "gpt-4o")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Messages[0].ToolCalls) != 1 || req.Messages[0].ToolCalls[0].Function.Arguments != `{"path":"a.go"}` {
		t.Fatalf("expected tool call arguments preserved verbatim, got %+v", req.Messages[0])
	}
	if req.Messages[1].ToolCallID != "call_1" {
		t.Fatalf("expected tool result id to match, got %+v", req.Messages[1])
	}
}

func TestOpenAIDecoder_AssemblesTextAndToolCallAcrossChunks(t *testing.T) {
	d := NewOpenAIDecoder()
	idx0 := 0
	d.Feed(openai.ChatCompletionStreamResponse{Choices: []openai.ChatCompletionStreamChoice{
		{Delta: openai.ChatCompletionStreamChoiceDelta{Content: "Hel"}},
	}})
	d.Feed(openai.ChatCompletionStreamResponse{Choices: []openai.ChatCompletionStreamChoice{
		{Delta: openai.ChatCompletionStreamChoiceDelta{Content: "lo"}},
	}})
	d.Feed(openai.ChatCompletionStreamResponse{Choices: []openai.ChatCompletionStreamChoice{
		{Delta: openai.ChatCompletionStreamChoiceDelta{ToolCalls: []openai.ToolCall{
			{Index: &idx0, ID: "call_1", Function: openai.FunctionCall{Name: "read"}},
		}}},
	}})
	d.Feed(openai.ChatCompletionStreamResponse{Choices: []openai.ChatCompletionStreamChoice{
		{Delta: openai.ChatCompletionStreamChoiceDelta{ToolCalls: []openai.ToolCall{
			{Index: &idx0, Function: openai.FunctionCall{Arguments: `{"path":"a"}`}},
		}}},
	}})

	entry := d.Finalize()
	if entry.Text != "Hello" {
		t.Fatalf("expected concatenated text, got %q", entry.Text)
	}
	if len(entry.ToolCalls) != 1 || entry.ToolCalls[0].Name != "read" {
		t.Fatalf("expected one assembled tool call, got %+v", entry.ToolCalls)
	}
	raw, _ := entry.ToolCalls[0].Arguments.Raw()
	if raw != `{"path":"a"}` {
		t.Fatalf("expected assembled arguments, got %q", raw)
	}
}

func TestOpenAIDecoder_UsageFromFinalChunk(t *testing.T) {
	d := NewOpenAIDecoder()
	d.Feed(openai.ChatCompletionStreamResponse{Usage: &openai.Usage{PromptTokens: 10, CompletionTokens: 5}})
	entry := d.Finalize()
	if entry.Usage == nil {
		t.Fatalf("expected usage recorded")
	}
	in, _ := entry.Usage.InputTokens.Value()
	out, _ := entry.Usage.OutputTokens.Value()
	if in != 10 || out != 5 {
		t.Fatalf("expected input=10 output=5, got input=%d output=%d", in, out)
	}
}
