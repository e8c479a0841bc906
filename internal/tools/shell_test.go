package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func TestShellTool_RunsCommandAndCapturesStdout(t *testing.T) {
	root := t.TempDir()
	tool := NewShellTool(root, 0)
	args, _ := json.Marshal(map[string]any{"command": "echo hi"})
	out, err := tool.Execute(context.Background(), args)
	if err != nil || out.IsError {
		t.Fatalf("unexpected error: %v %+v", err, out)
	}
	var decoded struct {
		Stdout   string `json:"stdout"`
		ExitCode int    `json:"exit_code"`
	}
	if err := json.Unmarshal([]byte(out.Content), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Stdout != "hi\n" || decoded.ExitCode != 0 {
		t.Fatalf("unexpected result: %+v", decoded)
	}
}

func TestShellTool_NonZeroExitIsError(t *testing.T) {
	root := t.TempDir()
	tool := NewShellTool(root, 0)
	args, _ := json.Marshal(map[string]any{"command": "exit 7"})
	out, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsError {
		t.Fatalf("expected IsError true for nonzero exit, got %+v", out)
	}
}
