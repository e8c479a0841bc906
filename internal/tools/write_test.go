package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteTool_OverwritesByDefault(t *testing.T) {
	root := t.TempDir()
	tool := NewWriteTool(root)

	args, _ := json.Marshal(map[string]any{"path": "f.txt", "content": "first"})
	if _, err := tool.Execute(context.Background(), args); err != nil {
		t.Fatal(err)
	}
	args, _ = json.Marshal(map[string]any{"path": "f.txt", "content": "second"})
	out, err := tool.Execute(context.Background(), args)
	if err != nil || out.IsError {
		t.Fatalf("unexpected error: %v %+v", err, out)
	}
	data, _ := os.ReadFile(filepath.Join(root, "f.txt"))
	if string(data) != "second" {
		t.Fatalf("expected overwrite, got %q", data)
	}
	if out.WrittenPath != filepath.Join(root, "f.txt") || string(out.WrittenContent) != "second" {
		t.Fatalf("unexpected write bookkeeping: %+v", out)
	}
}

func TestWriteTool_Appends(t *testing.T) {
	root := t.TempDir()
	tool := NewWriteTool(root)

	args, _ := json.Marshal(map[string]any{"path": "f.txt", "content": "a"})
	if _, err := tool.Execute(context.Background(), args); err != nil {
		t.Fatal(err)
	}
	args, _ = json.Marshal(map[string]any{"path": "f.txt", "content": "b", "append": true})
	out, err := tool.Execute(context.Background(), args)
	if err != nil || out.IsError {
		t.Fatalf("unexpected error: %v %+v", err, out)
	}
	if string(out.WrittenContent) != "ab" {
		t.Fatalf("expected accumulated content ab, got %q", out.WrittenContent)
	}
}
