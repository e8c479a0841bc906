package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// SnapshotStore is the external collaborator that holds prior file content
// so a write or patch can be undone. Its persistence (on-disk, content-
// addressed, or otherwise) is out of scope for the core; the Undo tool
// only needs this narrow contract.
type SnapshotStore interface {
	// Restore reverts path to the state it held before its most recent
	// recorded write, returning the restored content. ok is false when no
	// prior snapshot exists for path.
	Restore(path string) (content []byte, ok bool, err error)
}

// UndoTool reverts the most recent write or patch to a workspace file,
// delegating the actual snapshot storage to an injected SnapshotStore.
type UndoTool struct {
	resolver PathResolver
	store    SnapshotStore
}

func NewUndoTool(root string, store SnapshotStore) *UndoTool {
	return &UndoTool{resolver: PathResolver{Root: root}, store: store}
}

func (t *UndoTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "undo",
		Description: "Revert the most recent write or patch applied to a workspace file.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string", "description": "Path to revert (relative to workspace)."},
			},
			"required": []string{"path"},
		}),
	}
}

func (t *UndoTool) PermissionRequest(params json.RawMessage) (convo.PermissionRequest, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return convo.PermissionRequest{}, false
	}
	return convo.PermissionRequest{Path: in.Path}, true
}

func (t *UndoTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Path string `json:"path"`
	}
	if json.Unmarshal(params, &in) != nil || in.Path == "" {
		return "", false
	}
	return "Undoing last change to " + in.Path, true
}

func (t *UndoTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.Path) == "" {
		return errOutput("path is required"), nil
	}
	if t.store == nil {
		return errOutput("no snapshot store configured"), nil
	}

	resolved, err := t.resolver.Resolve(in.Path)
	if err != nil {
		return errOutput("%v", err), nil
	}

	content, ok, err := t.store.Restore(resolved)
	if err != nil {
		return errOutput("restore: %v", err), nil
	}
	if !ok {
		return errOutput("no prior snapshot for %s", in.Path), nil
	}

	payload, err := json.MarshalIndent(map[string]any{"path": in.Path, "restored": true}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload), WrittenPath: resolved, WrittenContent: content}, nil
}
