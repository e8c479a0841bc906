package toolcall

import "testing"

func TestExtractToolCalls_Single(t *testing.T) {
	text := `Let me read that file.
<forge_tool_call>
  <read>
    <path>/a/b.go</path>
  </read>
</forge_tool_call>
Done.`

	calls := ExtractToolCalls(text)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Name != "read" {
		t.Fatalf("expected tool name read, got %q", calls[0].Name)
	}
	v, ok := calls[0].Get("path")
	if !ok || v != "/a/b.go" {
		t.Fatalf("expected path param /a/b.go, got %q (ok=%v)", v, ok)
	}
}

func TestExtractToolCalls_Multiple(t *testing.T) {
	text := `<forge_tool_call><read><path>/a</path></read></forge_tool_call>
some prose in between
<forge_tool_call><write><path>/b</path><content>hi</content></write></forge_tool_call>`

	calls := ExtractToolCalls(text)
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Name != "read" || calls[1].Name != "write" {
		t.Fatalf("unexpected names: %+v", calls)
	}
	content, _ := calls[1].Get("content")
	if content != "hi" {
		t.Fatalf("expected content hi, got %q", content)
	}
}

func TestExtractToolCalls_EmptyYieldsEmptyList(t *testing.T) {
	calls := ExtractToolCalls("just some plain assistant prose, no tool calls here")
	if calls == nil {
		return // nil slice is fine, it's still "empty"
	}
	if len(calls) != 0 {
		t.Fatalf("expected empty, got %v", calls)
	}
}

func TestExtractToolCalls_ValueWithNewlinesAndAngleBrackets(t *testing.T) {
	text := `<forge_tool_call><patch><diff>if (a < b) {
  return 1;
}
</diff></patch></forge_tool_call>`

	calls := ExtractToolCalls(text)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	diff, ok := calls[0].Get("diff")
	if !ok {
		t.Fatalf("missing diff param")
	}
	want := "if (a < b) {\n  return 1;\n}\n"
	if diff != want {
		t.Fatalf("got %q want %q", diff, want)
	}
}

func TestExtractToolCalls_LaterErrorAfterSuccessStopsButKeepsPrior(t *testing.T) {
	text := `<forge_tool_call><read><path>/a</path></read></forge_tool_call>` +
		`<forge_tool_call><write><path>/b` // malformed: missing closing tags

	calls := ExtractToolCalls(text)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call preserved before the malformed block, got %d", len(calls))
	}
	if calls[0].Name != "read" {
		t.Fatalf("unexpected call: %+v", calls[0])
	}
}

func TestExtractToolCalls_LeadingMalformedDoesNotBlockLater(t *testing.T) {
	text := `<forge_tool_call><nottool>oops` +
		`<forge_tool_call><read><path>/a</path></read></forge_tool_call>`

	calls := ExtractToolCalls(text)
	if len(calls) != 1 || calls[0].Name != "read" {
		t.Fatalf("expected recovery to find the later well-formed call, got %+v", calls)
	}
}

func TestExtractToolCalls_WhitespaceInsideTags(t *testing.T) {
	text := "< forge_tool_call >\n< read >\n< path >/a</ path >\n</ read >\n</ forge_tool_call >"
	calls := ExtractToolCalls(text)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d: %+v", len(calls), calls)
	}
	v, _ := calls[0].Get("path")
	if v != "/a" {
		t.Fatalf("got %q", v)
	}
}
