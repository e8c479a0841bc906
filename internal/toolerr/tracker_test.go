package toolerr

import (
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

func record(name string, isError bool) Record {
	return Record{Call: convo.ToolCallFull{Name: name}, Result: convo.ToolResult{IsError: isError}}
}

func TestTracker_IncrementsOnFailureResetsOnSuccess(t *testing.T) {
	tr := NewTracker(3)
	tr.AdjustRecord([]Record{record("shell", true)})
	tr.AdjustRecord([]Record{record("shell", true)})
	if tr.RemainingAttempts("shell") != 1 {
		t.Fatalf("expected 1 remaining, got %d", tr.RemainingAttempts("shell"))
	}

	tr.AdjustRecord([]Record{record("shell", false)})
	if tr.RemainingAttempts("shell") != 3 {
		t.Fatalf("expected reset to full remaining, got %d", tr.RemainingAttempts("shell"))
	}
}

func TestTracker_LimitReached(t *testing.T) {
	tr := NewTracker(2)
	tr.AdjustRecord([]Record{record("shell", true), record("shell", true)})
	if !tr.LimitReached() {
		t.Fatalf("expected limit reached")
	}
	if got := tr.Errors(); len(got) != 1 || got[0] != "shell" {
		t.Fatalf("expected [shell], got %v", got)
	}
}

func TestTracker_NoLimitNeverTrips(t *testing.T) {
	tr := NewTracker(0)
	for i := 0; i < 50; i++ {
		tr.AdjustRecord([]Record{record("shell", true)})
	}
	if tr.LimitReached() {
		t.Fatalf("expected no-limit tracker to never trip")
	}
	if tr.RemainingAttempts("shell") != 0 {
		t.Fatalf("expected RemainingAttempts to echo the no-limit sentinel, got %d", tr.RemainingAttempts("shell"))
	}
}

func TestTracker_ErrorsOnlyListsFailingTools(t *testing.T) {
	tr := NewTracker(5)
	tr.AdjustRecord([]Record{record("read", false), record("shell", true)})
	got := tr.Errors()
	if len(got) != 1 || got[0] != "shell" {
		t.Fatalf("expected [shell], got %v", got)
	}
}

func TestTracker_DeniedResultNeitherCountsNorResets(t *testing.T) {
	tr := NewTracker(2)
	tr.AdjustRecord([]Record{record("shell", true)})
	denied := Record{Call: convo.ToolCallFull{Name: "shell"}, Result: convo.ToolResult{IsError: true, Denied: true}}
	tr.AdjustRecord([]Record{denied})
	if tr.RemainingAttempts("shell") != 1 {
		t.Fatalf("expected denial to leave the count untouched, got remaining %d", tr.RemainingAttempts("shell"))
	}
	if got := tr.Errors(); len(got) != 1 || got[0] != "shell" {
		t.Fatalf("expected [shell] still tracked from the real failure, got %v", got)
	}

	for i := 0; i < 5; i++ {
		tr.AdjustRecord([]Record{denied})
	}
	if tr.LimitReached() {
		t.Fatalf("repeated denials must never trip the ceiling")
	}
}
