package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// WriteTool writes content to a file in the workspace, overwriting by
// default or appending when asked.
type WriteTool struct {
	resolver PathResolver
}

func NewWriteTool(root string) *WriteTool {
	return &WriteTool{resolver: PathResolver{Root: root}}
}

func (t *WriteTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "write",
		Description: "Write content to a file in the workspace (overwrites by default).",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string", "description": "Path to write (relative to workspace)."},
				"content": map[string]any{"type": "string", "description": "File contents to write."},
				"append":  map[string]any{"type": "boolean", "description": "Append instead of overwrite (default: false)."},
			},
			"required": []string{"path", "content"},
		}),
	}
}

func (t *WriteTool) PermissionRequest(params json.RawMessage) (convo.PermissionRequest, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return convo.PermissionRequest{}, false
	}
	return convo.PermissionRequest{Path: in.Path}, true
}

func (t *WriteTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return "", false
	}
	return "Writing " + in.Path, true
}

func (t *WriteTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Path    string `json:"path"`
		Content string `json:"content"`
		Append  bool   `json:"append"`
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
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return errOutput("create directory: %v", err), nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if in.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(resolved, flags, 0o644)
	if err != nil {
		return errOutput("open file: %v", err), nil
	}
	defer file.Close()

	n, err := file.WriteString(in.Content)
	if err != nil {
		return errOutput("write file: %v", err), nil
	}

	final := []byte(in.Content)
	if in.Append {
		final, err = os.ReadFile(resolved)
		if err != nil {
			final = []byte(in.Content)
		}
	}

	payload, err := json.MarshalIndent(map[string]any{
		"path":          in.Path,
		"bytes_written": n,
		"append":        in.Append,
	}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload), WrittenPath: resolved, WrittenContent: final}, nil
}
