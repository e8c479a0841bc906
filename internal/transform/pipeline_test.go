package transform

import (
	"errors"
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

func TestPipeline_RunsStepsInOrder(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{{Role: convo.RoleUser, Text: ""}}}
	env := &Env{Context: ctx}

	var order []string
	p := New().
		Pipe(Func(func(e *Env) error { order = append(order, "a"); return nil })).
		Pipe(Func(func(e *Env) error { order = append(order, "b"); return nil }))

	if err := p.Run(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected steps in order, got %v", order)
	}
}

func TestPipeline_SkipsStepWhenPredicateFalse(t *testing.T) {
	env := &Env{Context: &convo.Context{}}
	ran := false
	p := New().When(func(e *Env) bool { return false }, Func(func(e *Env) error { ran = true; return nil }))
	if err := p.Run(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Fatalf("expected guarded step skipped")
	}
}

func TestPipeline_AbortsOnFirstError(t *testing.T) {
	env := &Env{Context: &convo.Context{}}
	boom := errors.New("boom")
	second := false
	p := New().
		Pipe(Func(func(e *Env) error { return boom })).
		Pipe(Func(func(e *Env) error { second = true; return nil }))

	err := p.Run(env)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if second {
		t.Fatalf("expected pipeline to stop after first error")
	}
}

func TestDefault_AppliesToolXMLFallbackWhenToolsUnsupported(t *testing.T) {
	ctx := &convo.Context{
		Entries: []convo.MessageEntry{{Role: convo.RoleUser, Text: "hi"}},
		Tools:   []convo.ToolDefinition{{Name: "read", Description: "reads"}},
	}
	env := &Env{Context: ctx, Caps: Capabilities{ToolsSupported: false}}
	if err := Default().Run(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Tools != nil {
		t.Fatalf("expected tools cleared by fallback step")
	}
	if !ctx.Entries[0].IsSystem() {
		t.Fatalf("expected a system entry holding the XML tool instructions")
	}
}

func TestDefault_LeavesNativeToolsInPlace(t *testing.T) {
	ctx := &convo.Context{
		Entries: []convo.MessageEntry{{Role: convo.RoleUser, Text: "hi"}},
		Tools:   []convo.ToolDefinition{{Name: "read"}},
	}
	env := &Env{Context: ctx, Caps: Capabilities{ToolsSupported: true}}
	if err := Default().Run(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctx.Tools) != 1 {
		t.Fatalf("expected native tools preserved, got %v", ctx.Tools)
	}
}
