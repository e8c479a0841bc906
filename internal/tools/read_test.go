package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestReadTool_ReadsWithOffsetAndLimit(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "f.txt"), []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	tool := NewReadTool(root, 0)

	args, _ := json.Marshal(map[string]any{"path": "f.txt", "offset": 2, "max_bytes": 3})
	out, err := tool.Execute(context.Background(), args)
	if err != nil || out.IsError {
		t.Fatalf("unexpected error: %v %+v", err, out)
	}
	var decoded struct {
		Content   string `json:"content"`
		Truncated bool   `json:"truncated"`
	}
	if err := json.Unmarshal([]byte(out.Content), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Content != "234" || !decoded.Truncated {
		t.Fatalf("got %+v", decoded)
	}
}

func TestReadTool_RejectsEscapingPath(t *testing.T) {
	root := t.TempDir()
	tool := NewReadTool(root, 0)
	args, _ := json.Marshal(map[string]any{"path": "../outside.txt"})
	out, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsError {
		t.Fatalf("expected error for escaping path, got %+v", out)
	}
}
