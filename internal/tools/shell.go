package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/relaykit/agentcore/internal/convo"
)

const defaultShellMaxOutputBytes = 64_000

// ShellTool runs a command through /bin/sh -c inside the workspace.
// Execution is serialized per Executor by Executor.shellMu, so two shell
// calls dispatched through the same Executor never interleave captured
// stdout/stderr; calls dispatched through different Executors are not
// serialized against each other.
type ShellTool struct {
	resolver  PathResolver
	maxOutput int
}

func NewShellTool(root string, maxOutputBytes int) *ShellTool {
	if maxOutputBytes <= 0 {
		maxOutputBytes = defaultShellMaxOutputBytes
	}
	return &ShellTool{resolver: PathResolver{Root: root}, maxOutput: maxOutputBytes}
}

func (t *ShellTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        shellToolName,
		Description: "Run a shell command in the workspace.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command":         map[string]any{"type": "string", "description": "Shell command to execute."},
				"cwd":             map[string]any{"type": "string", "description": "Working directory (relative to workspace)."},
				"timeout_seconds": map[string]any{"type": "integer", "minimum": 0, "description": "Timeout in seconds (0 = no timeout)."},
			},
			"required": []string{"command"},
		}),
	}
}

func (t *ShellTool) PermissionRequest(params json.RawMessage) (convo.PermissionRequest, bool) {
	var in struct {
		Command string `json:"command"`
		Cwd     string `json:"cwd"`
	}
	if json.Unmarshal(params, &in) != nil || strings.TrimSpace(in.Command) == "" {
		return convo.PermissionRequest{}, false
	}
	return convo.PermissionRequest{Command: in.Command, WorkingDir: in.Cwd}, true
}

func (t *ShellTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Command string `json:"command"`
	}
	if json.Unmarshal(params, &in) != nil || strings.TrimSpace(in.Command) == "" {
		return "", false
	}
	return "Running " + in.Command, true
}

func (t *ShellTool) Execute(ctx context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Command        string `json:"command"`
		Cwd            string `json:"cwd"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	command := strings.TrimSpace(in.Command)
	if command == "" {
		return errOutput("command is required"), nil
	}

	runCtx := ctx
	if in.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(in.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	dir := ""
	if in.Cwd != "" {
		resolved, err := t.resolver.Resolve(in.Cwd)
		if err != nil {
			return errOutput("%v", err), nil
		}
		dir = resolved
	} else if resolved, err := t.resolver.Resolve("."); err == nil {
		dir = resolved
	}

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, max: t.maxOutput}
	cmd.Stderr = &limitWriter{buf: &stderr, max: t.maxOutput}

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := map[string]any{
		"command":     command,
		"cwd":         dir,
		"stdout":      stdout.String(),
		"stderr":      stderr.String(),
		"exit_code":   exitCode(runErr),
		"duration_ms": duration.Milliseconds(),
	}
	isError := runErr != nil
	if isError {
		result["error"] = runErr.Error()
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload), IsError: isError}, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// limitWriter caps how many bytes it will buffer, silently discarding the
// rest; the dispatch contract's oversize-output truncation then takes over
// for whatever did fit.
type limitWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.max <= 0 || w.buf.Len() >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.buf.Len()
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	w.buf.Write(p)
	return len(p), nil
}
