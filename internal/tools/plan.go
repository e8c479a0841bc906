package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// PlanTool records a numbered plan of upcoming steps for the operator to
// review before the model continues executing. Unlike Followup and
// AttemptCompletion it does not yield: emitting a plan is informational
// and the orchestrator keeps looping.
type PlanTool struct{}

func NewPlanTool() *PlanTool { return &PlanTool{} }

func (t *PlanTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "plan",
		Description: "Record a numbered plan of upcoming steps for the operator to review.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"steps": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Ordered list of step descriptions."},
			},
			"required": []string{"steps"},
		}),
	}
}

func (t *PlanTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Steps []string `json:"steps"`
	}
	if json.Unmarshal(params, &in) != nil || len(in.Steps) == 0 {
		return "", false
	}
	return strings.Join(in.Steps, "; "), true
}

func (t *PlanTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Steps []string `json:"steps"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if len(in.Steps) == 0 {
		return errOutput("steps are required"), nil
	}

	payload, err := json.MarshalIndent(map[string]any{"steps": in.Steps}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload)}, nil
}
