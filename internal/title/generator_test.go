package title

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/hooks"
)

func newConv(id, firstPrompt string) *convo.Conversation {
	return &convo.Conversation{
		ID: id,
		Context: &convo.Context{Entries: []convo.MessageEntry{
			{Role: convo.RoleUser, Text: firstPrompt},
		}},
	}
}

func blockingGen(release <-chan struct{}, spawns *atomic.Int32) GenerateFunc {
	return func(ctx context.Context, prompt string) (*string, error) {
		spawns.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		title := "Title: " + prompt
		return &title, nil
	}
}

func TestGenerator_SingleSpawnUnderConcurrentStart(t *testing.T) {
	var spawns atomic.Int32
	release := make(chan struct{})
	g := New(blockingGen(release, &spawns))
	conv := newConv("c1", "hello there")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Handle(context.Background(), hooks.Event{Type: hooks.EventStart}, conv)
		}()
	}
	wg.Wait()
	close(release)

	if got := spawns.Load(); got != 1 {
		t.Fatalf("expected exactly one spawned task, got %d", got)
	}
	st, ok := g.stateFor("c1")
	if !ok || st != stageInProgress {
		t.Fatalf("expected entry to remain InProgress until End, got stage=%v ok=%v", st, ok)
	}
}

func TestGenerator_StartNoOpWhenTitleAlreadySet(t *testing.T) {
	var spawns atomic.Int32
	release := make(chan struct{})
	close(release)
	g := New(blockingGen(release, &spawns))
	title := "already titled"
	conv := newConv("c2", "hi")
	conv.Title = &title

	_ = g.Handle(context.Background(), hooks.Event{Type: hooks.EventStart}, conv)

	if spawns.Load() != 0 {
		t.Fatalf("expected no task spawned when conversation already has a title")
	}
}

func TestGenerator_EndTransitionsInProgressToDone(t *testing.T) {
	var spawns atomic.Int32
	release := make(chan struct{})
	close(release)
	g := New(blockingGen(release, &spawns))
	conv := newConv("c3", "what is go")

	if err := g.Handle(context.Background(), hooks.Event{Type: hooks.EventStart}, conv); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		if st, ok := g.stateFor("c3"); ok && st == stageInProgress {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for InProgress entry")
		default:
		}
	}

	if err := g.Handle(context.Background(), hooks.Event{Type: hooks.EventEnd}, conv); err != nil {
		t.Fatalf("end: %v", err)
	}

	if conv.Title == nil || *conv.Title != "Title: what is go" {
		t.Fatalf("expected title set from generated result, got %+v", conv.Title)
	}
	st, ok := g.stateFor("c3")
	if !ok || st != stageDone {
		t.Fatalf("expected Done stage, got stage=%v ok=%v", st, ok)
	}
}

func TestGenerator_EndOnNilTitleRemovesEntry(t *testing.T) {
	g := New(func(ctx context.Context, prompt string) (*string, error) { return nil, nil })
	conv := newConv("c4", "hi")

	_ = g.Handle(context.Background(), hooks.Event{Type: hooks.EventStart}, conv)
	deadline := time.After(time.Second)
	for {
		if _, ok := g.stateFor("c4"); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for entry to appear")
		default:
		}
	}
	if err := g.Handle(context.Background(), hooks.Event{Type: hooks.EventEnd}, conv); err != nil {
		t.Fatalf("end: %v", err)
	}

	if _, ok := g.stateFor("c4"); ok {
		t.Fatalf("expected entry removed after nil title result")
	}
	if conv.Title != nil {
		t.Fatalf("expected conversation title left unset")
	}
}

func TestGenerator_EndNoOpWhenNoEntry(t *testing.T) {
	g := New(func(ctx context.Context, prompt string) (*string, error) {
		title := "x"
		return &title, nil
	})
	conv := newConv("c5", "hi")

	if err := g.Handle(context.Background(), hooks.Event{Type: hooks.EventEnd}, conv); err != nil {
		t.Fatalf("end on absent entry should be a no-op, got error: %v", err)
	}
	if conv.Title != nil {
		t.Fatalf("expected no title set")
	}
}
