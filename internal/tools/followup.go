package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// FollowupTool asks the operator a clarifying question and pauses the
// turn loop for a reply. It performs no work of its own: the orchestrator
// treats its Yield definition as the signal to stop looping, and its
// Output.Content is simply the question surfaced to the stream.
type FollowupTool struct{}

func NewFollowupTool() *FollowupTool { return &FollowupTool{} }

func (t *FollowupTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "followup",
		Description: "Ask the operator a clarifying question and wait for a reply.",
		Yield:       true,
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string", "description": "The question to ask the operator."},
				"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Optional suggested answers."},
			},
			"required": []string{"question"},
		}),
	}
}

func (t *FollowupTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Question string `json:"question"`
	}
	if json.Unmarshal(params, &in) != nil || in.Question == "" {
		return "", false
	}
	return in.Question, true
}

func (t *FollowupTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.Question) == "" {
		return errOutput("question is required"), nil
	}

	payload, err := json.MarshalIndent(map[string]any{
		"question": in.Question,
		"options":  in.Options,
	}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload)}, nil
}
