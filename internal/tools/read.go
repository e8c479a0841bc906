package tools

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

const defaultMaxReadBytes = 200_000

// ReadTool reads a file from the workspace with an optional byte offset and
// a per-call or default byte limit.
type ReadTool struct {
	resolver     PathResolver
	maxReadBytes int
}

// NewReadTool returns a ReadTool scoped to root. maxReadBytes <= 0 uses the
// default (200,000 bytes).
func NewReadTool(root string, maxReadBytes int) *ReadTool {
	if maxReadBytes <= 0 {
		maxReadBytes = defaultMaxReadBytes
	}
	return &ReadTool{resolver: PathResolver{Root: root}, maxReadBytes: maxReadBytes}
}

func (t *ReadTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "read",
		Description: "Read a file from the workspace with optional offset and byte limit.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":      map[string]any{"type": "string", "description": "Path to the file (relative to workspace)."},
				"offset":    map[string]any{"type": "integer", "minimum": 0, "description": "Byte offset to start reading from (default: 0)."},
				"max_bytes": map[string]any{"type": "integer", "minimum": 0, "description": "Maximum bytes to read (capped by tool default)."},
			},
			"required": []string{"path"},
		}),
	}
}

func (t *ReadTool) PermissionRequest(params json.RawMessage) (convo.PermissionRequest, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return convo.PermissionRequest{}, false
	}
	return convo.PermissionRequest{Path: in.Path}, true
}

func (t *ReadTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return "", false
	}
	return "Reading " + in.Path, true
}

func (t *ReadTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Path     string `json:"path"`
		Offset   int64  `json:"offset"`
		MaxBytes int    `json:"max_bytes"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.Path) == "" {
		return errOutput("path is required"), nil
	}
	if in.Offset < 0 {
		return errOutput("offset must be >= 0"), nil
	}

	resolved, err := t.resolver.Resolve(in.Path)
	if err != nil {
		return errOutput("%v", err), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return errOutput("open file: %v", err), nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return errOutput("stat file: %v", err), nil
	}
	if in.Offset > 0 {
		if _, err := file.Seek(in.Offset, io.SeekStart); err != nil {
			return errOutput("seek file: %v", err), nil
		}
	}

	limit := t.maxReadBytes
	if in.MaxBytes > 0 && in.MaxBytes < limit {
		limit = in.MaxBytes
	}

	remaining := int64(limit)
	if size := info.Size(); size > 0 {
		remaining = size - in.Offset
		if remaining < 0 {
			remaining = 0
		}
		if remaining > int64(limit) {
			remaining = int64(limit)
		}
	}

	buf, err := io.ReadAll(io.LimitReader(file, remaining))
	if err != nil {
		return errOutput("read file: %v", err), nil
	}

	truncated := info.Size() > 0 && in.Offset+int64(len(buf)) < info.Size()
	payload, err := json.MarshalIndent(map[string]any{
		"path":      in.Path,
		"content":   string(buf),
		"offset":    in.Offset,
		"bytes":     len(buf),
		"truncated": truncated,
	}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload)}, nil
}
