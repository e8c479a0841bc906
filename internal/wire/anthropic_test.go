package wire

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/relaykit/agentcore/internal/convo"
)

func decodeEvent(t *testing.T, raw string) anthropic.MessageStreamEventUnion {
	t.Helper()
	var event anthropic.MessageStreamEventUnion
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("failed to decode fixture event: %v", err)
	}
	return event
}

func TestAnthropicDecoder_AssemblesTextAcrossDeltas(t *testing.T) {
	d := NewAnthropicDecoder()
	d.Feed(decodeEvent(t, `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_stop","index":0}`))

	entry := d.Finalize()
	if entry.Text != "Hello" {
		t.Fatalf("expected concatenated text, got %q", entry.Text)
	}
}

func TestAnthropicDecoder_AssemblesToolUseInputAcrossDeltas(t *testing.T) {
	d := NewAnthropicDecoder()
	d.Feed(decodeEvent(t, `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"call_1","name":"read","input":{}}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"path\":"}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"a\"}"}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_stop","index":0}`))

	entry := d.Finalize()
	if len(entry.ToolCalls) != 1 || entry.ToolCalls[0].CallID != "call_1" || entry.ToolCalls[0].Name != "read" {
		t.Fatalf("expected assembled tool call, got %+v", entry.ToolCalls)
	}
	raw, _ := entry.ToolCalls[0].Arguments.Raw()
	if raw != `{"path":"a"}` {
		t.Fatalf("expected assembled json args, got %q", raw)
	}
}

func TestAnthropicDecoder_ThinkingBecomesReasoningBlock(t *testing.T) {
	d := NewAnthropicDecoder()
	d.Feed(decodeEvent(t, `{"type":"content_block_start","index":0,"content_block":{"type":"thinking","thinking":""}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"reasoning..."}}`))
	d.Feed(decodeEvent(t, `{"type":"content_block_stop","index":0}`))

	entry := d.Finalize()
	if len(entry.Reasoning) != 1 || entry.Reasoning[0].Kind != convo.ReasoningText || entry.Reasoning[0].Text != "reasoning..." {
		t.Fatalf("expected one merged reasoning text block, got %+v", entry.Reasoning)
	}
}

func TestAnthropicDecoder_UsageFromStartAndDelta(t *testing.T) {
	d := NewAnthropicDecoder()
	d.Feed(decodeEvent(t, `{"type":"message_start","message":{"id":"m1","type":"message","role":"assistant","content":[],"model":"claude","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":12,"output_tokens":0}}}`))
	d.Feed(decodeEvent(t, `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":7}}`))

	entry := d.Finalize()
	in, _ := entry.Usage.InputTokens.Value()
	out, _ := entry.Usage.OutputTokens.Value()
	if in != 12 || out != 7 {
		t.Fatalf("expected input=12 output=7, got input=%d output=%d", in, out)
	}
}
