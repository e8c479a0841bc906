package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// PatchTool applies a unified diff to one or more files in the workspace.
type PatchTool struct {
	resolver PathResolver
}

func NewPatchTool(root string) *PatchTool {
	return &PatchTool{resolver: PathResolver{Root: root}}
}

func (t *PatchTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "patch",
		Description: "Apply a unified diff patch to one or more files in the workspace.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"patch": map[string]any{"type": "string", "description": "Unified diff patch (---/+++ headers required)."},
			},
			"required": []string{"patch"},
		}),
	}
}

func (t *PatchTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Patch string `json:"patch"`
	}
	if json.Unmarshal(params, &in) != nil || strings.TrimSpace(in.Patch) == "" {
		return "", false
	}
	return "Applying patch", true
}

func (t *PatchTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Patch string `json:"patch"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.Patch) == "" {
		return errOutput("patch is required"), nil
	}

	patches, err := parseUnifiedDiff(in.Patch)
	if err != nil {
		return errOutput("%v", err), nil
	}

	var lastPath string
	var lastContent []byte
	results := make([]map[string]any, 0, len(patches))
	for _, p := range patches {
		resolved, err := t.resolver.Resolve(p.Path)
		if err != nil {
			return errOutput("%v", err), nil
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return errOutput("read file: %v", err), nil
		}
		updated, err := applyFilePatch(string(data), p)
		if err != nil {
			return errOutput("apply patch: %v", err), nil
		}
		if err := os.WriteFile(resolved, []byte(updated.Content), 0o644); err != nil {
			return errOutput("write file: %v", err), nil
		}
		lastPath, lastContent = resolved, []byte(updated.Content)
		results = append(results, map[string]any{
			"path":          p.Path,
			"hunks":         len(p.Hunks),
			"lines_added":   updated.Added,
			"lines_removed": updated.Removed,
		})
	}

	payload, err := json.MarshalIndent(map[string]any{"applied": results}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload), WrittenPath: lastPath, WrittenContent: lastContent}, nil
}

type filePatch struct {
	Path  string
	Hunks []hunk
}

type hunk struct {
	OldStart int
	Lines    []string
}

type patchResult struct {
	Content string
	Added   int
	Removed int
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+\d+(?:,\d+)? @@`)

func parseUnifiedDiff(patch string) ([]filePatch, error) {
	lines := strings.Split(patch, "\n")
	var patches []filePatch
	var current *filePatch
	var currentHunk *hunk

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "diff ") || strings.HasPrefix(line, "index "):
			continue
		case strings.HasPrefix(line, "--- "):
			if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "+++ ") {
				return nil, fmt.Errorf("invalid patch: missing +++ header")
			}
			newPath := strings.TrimSpace(strings.TrimPrefix(lines[i+1], "+++ "))
			newPath = strings.TrimPrefix(strings.TrimPrefix(newPath, "b/"), "a/")
			patches = append(patches, filePatch{Path: newPath})
			current = &patches[len(patches)-1]
			currentHunk = nil
			i++
		case strings.HasPrefix(line, "@@ "):
			if current == nil {
				return nil, fmt.Errorf("invalid patch: hunk without file header")
			}
			match := hunkHeader.FindStringSubmatch(line)
			if match == nil {
				return nil, fmt.Errorf("invalid patch: malformed hunk header")
			}
			current.Hunks = append(current.Hunks, hunk{OldStart: atoi(match[1])})
			currentHunk = &current.Hunks[len(current.Hunks)-1]
		default:
			if currentHunk == nil || line == "" || line == "\\ No newline at end of file" {
				continue
			}
			prefix := line[:1]
			if prefix != " " && prefix != "+" && prefix != "-" {
				return nil, fmt.Errorf("invalid patch line: %s", line)
			}
			currentHunk.Lines = append(currentHunk.Lines, line)
		}
	}

	if len(patches) == 0 {
		return nil, fmt.Errorf("invalid patch: no file headers found")
	}
	return patches, nil
}

func applyFilePatch(content string, patch filePatch) (patchResult, error) {
	hadTrailing := strings.HasSuffix(content, "\n")
	trimmed := strings.TrimSuffix(content, "\n")
	var lines []string
	if trimmed != "" {
		lines = strings.Split(trimmed, "\n")
	}

	added, removed := 0, 0
	for _, h := range patch.Hunks {
		idx := h.OldStart - 1
		if idx < 0 {
			idx = 0
		}
		for _, line := range h.Lines {
			prefix := line[:1]
			text := ""
			if len(line) > 1 {
				text = line[1:]
			}
			switch prefix {
			case " ":
				if idx >= len(lines) || lines[idx] != text {
					return patchResult{}, fmt.Errorf("context mismatch")
				}
				idx++
			case "-":
				if idx >= len(lines) || lines[idx] != text {
					return patchResult{}, fmt.Errorf("delete mismatch")
				}
				lines = append(lines[:idx], lines[idx+1:]...)
				removed++
			case "+":
				lines = append(lines[:idx], append([]string{text}, lines[idx:]...)...)
				idx++
				added++
			}
		}
	}

	result := strings.Join(lines, "\n")
	if hadTrailing {
		result += "\n"
	}
	return patchResult{Content: result, Added: added, Removed: removed}, nil
}

func atoi(value string) int {
	out := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			return out
		}
		out = out*10 + int(r-'0')
	}
	return out
}
