package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// AttemptCompletionTool lets the model declare the task done and present a
// result summary. Like Followup, it's a yield tool: its invocation ends
// the turn loop rather than producing further provider round-trips.
type AttemptCompletionTool struct{}

func NewAttemptCompletionTool() *AttemptCompletionTool { return &AttemptCompletionTool{} }

func (t *AttemptCompletionTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "attempt_completion",
		Description: "Declare the task complete and present a result summary to the operator.",
		Yield:       true,
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"result":  map[string]any{"type": "string", "description": "Summary of what was accomplished."},
				"command": map[string]any{"type": "string", "description": "Optional command the operator can run to see the result."},
			},
			"required": []string{"result"},
		}),
	}
}

func (t *AttemptCompletionTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Result string `json:"result"`
	}
	if json.Unmarshal(params, &in) != nil || in.Result == "" {
		return "", false
	}
	return in.Result, true
}

func (t *AttemptCompletionTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Result  string `json:"result"`
		Command string `json:"command"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.Result) == "" {
		return errOutput("result is required"), nil
	}

	payload, err := json.MarshalIndent(map[string]any{
		"result":  in.Result,
		"command": in.Command,
	}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload)}, nil
}
