package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

type stubTool struct{ name string }

func (s stubTool) Definition() convo.ToolDefinition { return convo.ToolDefinition{Name: s.name} }
func (s stubTool) ToContent(json.RawMessage) (string, bool) { return "", false }
func (s stubTool) Execute(context.Context, json.RawMessage) (Output, error) {
	return Output{}, nil
}

func newTestRegistry(names ...string) *Registry {
	r := NewRegistry()
	for _, n := range names {
		r.Register(stubTool{name: n})
	}
	return r
}

func TestRegistry_ResolveOrdersLiteralsThenPatterns(t *testing.T) {
	r := newTestRegistry("a", "fs_read", "fs_write", "b")
	defs := r.Resolve([]string{"a", "fs_*", "b"})
	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
	}
	want := []string{"a", "b", "fs_read", "fs_write"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestRegistry_ResolveDeduplicates(t *testing.T) {
	r := newTestRegistry("a", "fs_read")
	defs := r.Resolve([]string{"a", "a", "fs_*", "fs_read"})
	if len(defs) != 2 {
		t.Fatalf("expected deduplicated resolution, got %v", defs)
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Fatalf("expected missing tool to report not found")
	}
}
