package tools

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// RemoveTool deletes a file or an empty directory from the workspace, or,
// with recursive set, a whole directory tree.
type RemoveTool struct {
	resolver PathResolver
}

func NewRemoveTool(root string) *RemoveTool {
	return &RemoveTool{resolver: PathResolver{Root: root}}
}

func (t *RemoveTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "remove",
		Description: "Remove a file or directory tree from the workspace.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":      map[string]any{"type": "string", "description": "Path to remove (relative to workspace)."},
				"recursive": map[string]any{"type": "boolean", "description": "Remove a directory and its contents (default: false)."},
			},
			"required": []string{"path"},
		}),
	}
}

func (t *RemoveTool) PermissionRequest(params json.RawMessage) (convo.PermissionRequest, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return convo.PermissionRequest{}, false
	}
	return convo.PermissionRequest{Path: in.Path}, true
}

func (t *RemoveTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return "", false
	}
	return "Removing " + in.Path, true
}

func (t *RemoveTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Path      string `json:"path"`
		Recursive bool   `json:"recursive"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.Path) == "" {
		return errOutput("path is required"), nil
	}

	resolved, err := t.resolver.Resolve(in.Path)
	if err != nil {
		return errOutput("%v", err), nil
	}

	if in.Recursive {
		err = os.RemoveAll(resolved)
	} else {
		err = os.Remove(resolved)
	}
	if err != nil {
		return errOutput("remove: %v", err), nil
	}

	payload, err := json.MarshalIndent(map[string]any{"path": in.Path, "removed": true}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload)}, nil
}
