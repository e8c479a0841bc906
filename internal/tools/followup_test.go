package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func TestFollowupTool_IsYield(t *testing.T) {
	tool := NewFollowupTool()
	if !tool.Definition().Yield {
		t.Fatalf("expected followup to be a yield tool")
	}
	args, _ := json.Marshal(map[string]any{"question": "which file?"})
	out, err := tool.Execute(context.Background(), args)
	if err != nil || out.IsError {
		t.Fatalf("unexpected error: %v %+v", err, out)
	}
}

func TestAttemptCompletionTool_IsYield(t *testing.T) {
	tool := NewAttemptCompletionTool()
	if !tool.Definition().Yield {
		t.Fatalf("expected attempt_completion to be a yield tool")
	}
	args, _ := json.Marshal(map[string]any{"result": "done"})
	out, err := tool.Execute(context.Background(), args)
	if err != nil || out.IsError {
		t.Fatalf("unexpected error: %v %+v", err, out)
	}
}

func TestPlanTool_IsNotYield(t *testing.T) {
	tool := NewPlanTool()
	if tool.Definition().Yield {
		t.Fatalf("expected plan to not yield")
	}
	args, _ := json.Marshal(map[string]any{"steps": []string{"a", "b"}})
	out, err := tool.Execute(context.Background(), args)
	if err != nil || out.IsError {
		t.Fatalf("unexpected error: %v %+v", err, out)
	}
}
