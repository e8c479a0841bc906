// Package title implements the concurrent title-generation hook: a
// per-conversation-id state machine that spawns at most one background task
// to produce a short title from the first user prompt, and serializes the
// InProgress -> Awaiting -> Done transition so a concurrent Start can never
// respawn or double-claim a task.
//
// A generic single-flight group dedupes concurrent callers of the same key
// behind one in-flight call. The title handler needs the same single-spawn
// guarantee but also needs the *result* delivered asymmetrically — to
// whichever goroutine processes the conversation's End event, not to
// whichever goroutine happened to call Start — so the three named states
// (InProgress/Awaiting/Done) replace a single-flight group's anonymous
// call/channel pair with an explicit state machine.
package title

import (
	"context"
	"sync"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/hooks"
)

// GenerateFunc produces a short title from the conversation's first user
// prompt. A nil title (with nil error) means "no title could be produced";
// the entry is removed so a future Start may retry.
type GenerateFunc func(ctx context.Context, firstUserPrompt string) (*string, error)

type stage int

const (
	stageInProgress stage = iota
	stageAwaiting
	stageDone
)

type task struct {
	cancel context.CancelFunc
	done   chan taskResult
}

type taskResult struct {
	title *string
	err   error
}

type stateEntry struct {
	stage stage
	task  *task // nil once stage leaves stageInProgress
	title string
}

// Generator is the per-conversation-id title state machine. It implements
// hooks.Handler: register it on the bus to observe Start and End events.
type Generator struct {
	mu      sync.Mutex
	entries map[string]*stateEntry
	gen     GenerateFunc
}

// New returns a Generator that calls gen to produce each title.
func New(gen GenerateFunc) *Generator {
	return &Generator{entries: make(map[string]*stateEntry), gen: gen}
}

// Handle implements hooks.Handler, reacting to Start and End; every other
// event type is ignored.
func (g *Generator) Handle(ctx context.Context, event hooks.Event, conv *convo.Conversation) error {
	switch event.Type {
	case hooks.EventStart:
		g.start(conv)
		return nil
	case hooks.EventEnd:
		return g.end(ctx, conv)
	default:
		return nil
	}
}

// start spawns a title-generation task for conv.ID, unless the conversation
// already has a title or an entry already exists in any state: a background
// task is spawned at most once per conversation id, and any concurrent
// Start on an occupied entry is a strict no-op.
func (g *Generator) start(conv *convo.Conversation) {
	if conv.Title != nil {
		return
	}
	prompt := firstUserPrompt(conv)
	if prompt == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.entries[conv.ID]; exists {
		return
	}

	taskCtx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan taskResult, 1)}
	g.entries[conv.ID] = &stateEntry{stage: stageInProgress, task: t}

	gen := g.gen
	go func() {
		title, err := gen(taskCtx, prompt)
		t.done <- taskResult{title: title, err: err}
	}()
}

// end atomically swaps InProgress(t) for Awaiting, releasing ownership of t
// to this call only, then awaits it. An entry that isn't InProgress (no
// entry, Awaiting already claimed by a racing End, or Done) is left
// untouched.
func (g *Generator) end(ctx context.Context, conv *convo.Conversation) error {
	g.mu.Lock()
	e, ok := g.entries[conv.ID]
	if !ok || e.stage != stageInProgress {
		g.mu.Unlock()
		return nil
	}
	t := e.task
	e.stage = stageAwaiting
	e.task = nil
	g.mu.Unlock()

	select {
	case r := <-t.done:
		g.mu.Lock()
		defer g.mu.Unlock()
		switch {
		case r.err != nil:
			delete(g.entries, conv.ID)
		case r.title == nil:
			delete(g.entries, conv.ID)
		default:
			conv.Title = r.title
			e.stage = stageDone
			e.title = *r.title
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close aborts every in-flight task. Call it when the Generator itself is
// being torn down.
func (g *Generator) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.entries {
		if e.task != nil {
			e.task.cancel()
		}
	}
}

// stateFor reports the current stage for id, for tests exercising the
// invariants directly. ok is false if there is no entry.
func (g *Generator) stateFor(id string) (stage, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[id]
	if !ok {
		return 0, false
	}
	return e.stage, true
}

func firstUserPrompt(conv *convo.Conversation) string {
	if conv.Context == nil {
		return ""
	}
	for _, e := range conv.Context.Entries {
		if e.IsUser() {
			return e.Text
		}
	}
	return ""
}
