// Package toolerr implements the per-tool, per-turn failure counter the
// orchestrator consults to decide when repeated tool failures should
// interrupt a turn.
package toolerr

import (
	"sync"

	"github.com/relaykit/agentcore/internal/convo"
)

// Record pairs a dispatched tool call with its result, the unit
// AdjustRecord consumes. FileOp and Path carry the file-change metric a
// file-writing tool produced (Path is empty when the call wrote nothing);
// the orchestrator threads them through unchanged to
// convo.Metrics.RecordFileOperation after the turn's error bookkeeping.
type Record struct {
	Call   convo.ToolCallFull
	Result convo.ToolResult
	FileOp convo.FileOperation
	Path   string
}

// Tracker counts consecutive failures per tool name within a single turn,
// resetting a tool's count to zero the moment it succeeds once.
type Tracker struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
}

// NewTracker returns a Tracker with the given per-tool failure ceiling.
// limit <= 0 means no tool ever trips the ceiling (LimitReached always
// false).
func NewTracker(limit int) *Tracker {
	return &Tracker{limit: limit, counts: make(map[string]int)}
}

// AdjustRecord increments the failure count for every erroring result and
// resets it to zero for every successful one. A policy denial (Result.Denied)
// is neither: the agent chose the action and the user refused it, so it is
// left out of the count entirely rather than counted as a failure or
// treated as exonerating success.
func (t *Tracker) AdjustRecord(records []Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range records {
		if r.Result.Denied {
			continue
		}
		if r.Result.IsError {
			t.counts[r.Call.Name]++
		} else {
			t.counts[r.Call.Name] = 0
		}
	}
}

// RemainingAttempts returns how many more failures name may accrue before
// tripping the ceiling.
func (t *Tracker) RemainingAttempts(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit <= 0 {
		return t.limit
	}
	remaining := t.limit - t.counts[name]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LimitReached reports whether any tracked tool has reached the ceiling.
func (t *Tracker) LimitReached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.limit <= 0 {
		return false
	}
	for _, count := range t.counts {
		if count >= t.limit {
			return true
		}
	}
	return false
}

// Errors returns the names of every tool currently carrying at least one
// failure, sorted for determinism.
func (t *Tracker) Errors() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var names []string
	for name, count := range t.counts {
		if count > 0 {
			names = append(names, name)
		}
	}
	sortStrings(names)
	return names
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
