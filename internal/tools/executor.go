package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/filechange"
	"github.com/relaykit/agentcore/internal/policy"
	"github.com/relaykit/agentcore/internal/toolcall"
)

// shellToolName is the registered name of the Shell tool. Execute calls for
// it are serialized through Executor.shellMu: a second shell command issued
// while one is still running would otherwise interleave with it in the same
// working directory.
const shellToolName = "shell"

const defaultMaxOutputBytes = 32 * 1024

// Sender streams a short UI summary of a tool call as it starts.
type Sender interface {
	Send(summary string)
}

// PermissionSubject is implemented by tools whose calls are subject to a
// permission check before dispatch (anything touching a path, a shell
// command, or a URL). Tools with nothing to check simply don't implement
// it.
type PermissionSubject interface {
	PermissionRequest(params json.RawMessage) (convo.PermissionRequest, bool)
}

// ExecutorConfig tunes the dispatch contract's truncation and permission
// behavior.
type ExecutorConfig struct {
	// MaxOutputBytes truncates tool output larger than this to a temp file,
	// substituting a marker that references the file path. Zero uses the
	// default (32KiB).
	MaxOutputBytes int
	// TempDir is where oversize output is written. Empty uses os.TempDir().
	TempDir string
	// Checker consults permission rules before dispatch. Nil allows
	// everything (policy.AllowAll).
	Checker policy.Checker
}

// Executor drives every tool call through the dispatch contract: argument
// coercion, a permission check, an optional UI summary, invocation,
// oversize-output truncation, and file-change metric recording.
type Executor struct {
	registry *Registry
	config   ExecutorConfig
	shellMu  sync.Mutex
}

// NewExecutor returns an Executor over registry, applying config defaults.
func NewExecutor(registry *Registry, config ExecutorConfig) *Executor {
	if config.MaxOutputBytes <= 0 {
		config.MaxOutputBytes = defaultMaxOutputBytes
	}
	if config.Checker == nil {
		config.Checker = policy.AllowAll{}
	}
	return &Executor{registry: registry, config: config}
}

// Dispatch runs a single tool call to completion and returns the
// convo.ToolResult to append to the conversation. When the tool wrote a
// file, it also returns the convo.FileOperation to record and the path it
// was recorded against; both are zero otherwise.
func (e *Executor) Dispatch(ctx context.Context, sender Sender, call convo.ToolCallFull) (convo.ToolResult, convo.FileOperation, string) {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		return e.fail(call.CallID, "unknown tool %q", call.Name)
	}

	params, err := toolcall.Parse(call.Arguments)
	if err != nil {
		return e.fail(call.CallID, "invalid arguments: %v", err)
	}

	if err := validateParams(tool, params); err != nil {
		return e.fail(call.CallID, "schema validation: %v", err)
	}

	if subject, ok := tool.(PermissionSubject); ok {
		if req, applies := subject.PermissionRequest(params); applies {
			switch e.config.Checker.Check(req) {
			case convo.PermissionDeny:
				return e.deny(call.CallID, "denied by policy")
			case convo.PermissionConfirm:
				return e.deny(call.CallID, "requires confirmation before running")
			}
		}
	}

	if sender != nil {
		if summary, ok := tool.ToContent(params); ok {
			sender.Send(summary)
		}
	}

	out, err := e.execute(ctx, call.Name, tool, params)
	if err != nil {
		return e.fail(call.CallID, "%v", err)
	}

	content := out.Content
	if !out.IsError && len(content) > e.config.MaxOutputBytes {
		if path, terr := e.dumpOversize(call.Name, content); terr == nil {
			content = fmt.Sprintf("output exceeded %d bytes; full output written to %s", e.config.MaxOutputBytes, path)
		}
	}

	result := convo.ToolResult{CallID: call.CallID, Content: content, IsError: out.IsError}
	if out.IsError || out.WrittenPath == "" {
		return result, convo.FileOperation{}, ""
	}

	hash := filechange.Hash(out.WrittenContent)
	return result, convo.FileOperation{ToolKind: call.Name, ContentHash: &hash}, out.WrittenPath
}

func (e *Executor) execute(ctx context.Context, name string, tool Tool, params []byte) (Output, error) {
	if name == shellToolName {
		e.shellMu.Lock()
		defer e.shellMu.Unlock()
	}
	return tool.Execute(ctx, params)
}

func (e *Executor) dumpOversize(toolName, content string) (string, error) {
	dir := e.config.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, fmt.Sprintf("agentcore-%s-*.txt", toolName))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func (e *Executor) fail(callID, format string, args ...any) (convo.ToolResult, convo.FileOperation, string) {
	return convo.ToolResult{CallID: callID, Content: jsonError(format, args...), IsError: true}, convo.FileOperation{}, ""
}

// deny reports a policy refusal: surfaced to the model as error text like
// any other failure, but flagged so the tool-error tracker never counts it
// against the per-turn ceiling (the agent chose the action; the user or a
// configured rule refused it, which is not the agent misbehaving).
func (e *Executor) deny(callID, format string, args ...any) (convo.ToolResult, convo.FileOperation, string) {
	result, fileOp, path := e.fail(callID, format, args...)
	result.Denied = true
	return result, fileOp, path
}
