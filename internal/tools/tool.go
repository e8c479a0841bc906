// Package tools implements the built-in tool catalog, tool resolution, and
// the dispatch contract the orchestrator drives each tool call through:
// argument coercion, permission checks, oversize-output truncation, and
// file-change metric recording.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/relaykit/agentcore/internal/convo"
)

// Output is a tool's result before the executor's truncation and metrics
// bookkeeping are applied.
type Output struct {
	Content string
	IsError bool

	// WrittenPath and WrittenContent are set by file-mutating tools so the
	// executor can record a Metrics entry without re-reading the file from
	// disk.
	WrittenPath    string
	WrittenContent []byte
}

// Tool is a single built-in capability. Definition() feeds the provider
// wire layer (via convo.ToolDefinition); Execute does the work.
type Tool interface {
	Definition() convo.ToolDefinition
	// ToContent renders a short human-readable summary of this call for the
	// streaming UI, or reports false to mean "nothing worth showing".
	ToContent(params json.RawMessage) (string, bool)
	Execute(ctx context.Context, params json.RawMessage) (Output, error)
}

// schema marshals a JSON-schema literal for a tool's InputSchema, falling
// back to a bare object schema if marshaling somehow fails.
func schema(m map[string]any) json.RawMessage {
	payload, err := json.Marshal(m)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func errOutput(format string, args ...any) Output {
	return Output{Content: jsonError(format, args...), IsError: true}
}

func jsonError(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	payload, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return msg
	}
	return string(payload)
}
