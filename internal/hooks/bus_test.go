package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

func TestBus_FiresHandlersInRegistrationOrder(t *testing.T) {
	var order []string
	b := New()
	b.Register(HandlerFunc(func(ctx context.Context, e Event, conv *convo.Conversation) error {
		order = append(order, "first")
		return nil
	}))
	b.Register(HandlerFunc(func(ctx context.Context, e Event, conv *convo.Conversation) error {
		order = append(order, "second")
		return nil
	}))

	if err := b.Fire(context.Background(), Event{Type: EventStart}, &convo.Conversation{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected handlers fired in registration order, got %v", order)
	}
}

func TestBus_StopsAtFirstError(t *testing.T) {
	b := New()
	called := false
	boom := errors.New("boom")
	b.Register(HandlerFunc(func(ctx context.Context, e Event, conv *convo.Conversation) error {
		return boom
	}))
	b.Register(HandlerFunc(func(ctx context.Context, e Event, conv *convo.Conversation) error {
		called = true
		return nil
	}))

	err := b.Fire(context.Background(), Event{Type: EventEnd}, &convo.Conversation{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if called {
		t.Fatalf("expected second handler not to run after first errored")
	}
}

func TestBus_HandlerCanMutateConversation(t *testing.T) {
	b := New()
	b.Register(HandlerFunc(func(ctx context.Context, e Event, conv *convo.Conversation) error {
		title := "mutated"
		conv.Title = &title
		return nil
	}))

	conv := &convo.Conversation{}
	if err := b.Fire(context.Background(), Event{Type: EventResponse}, conv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.Title == nil || *conv.Title != "mutated" {
		t.Fatalf("expected handler mutation to persist, got %+v", conv.Title)
	}
}
