package transform

import (
	"path/filepath"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

// SortTools reorders env.Context.Tools to match env.ToolOrder: literal names
// are placed first in the order they're declared, followed by glob-style
// patterns in their declared order, and finally every tool not mentioned by
// ToolOrder at all, in their original relative order. Declaring the same tool name
// twice in ToolOrder, or matching one tool against multiple patterns, never
// duplicates it in the result — its first match wins.
func SortTools(env *Env) error {
	if len(env.ToolOrder) == 0 {
		return nil
	}

	tools := env.Context.Tools
	byName := make(map[string]int, len(tools))
	for i, t := range tools {
		byName[t.Name] = i
	}

	used := make([]bool, len(tools))
	var ordered []int

	for _, spec := range env.ToolOrder {
		if strings.ContainsAny(spec, "*?[") {
			continue
		}
		if i, ok := byName[spec]; ok && !used[i] {
			ordered = append(ordered, i)
			used[i] = true
		}
	}

	for _, spec := range env.ToolOrder {
		if !strings.ContainsAny(spec, "*?[") {
			continue
		}
		for i, t := range tools {
			if used[i] {
				continue
			}
			if ok, _ := filepath.Match(spec, t.Name); ok {
				ordered = append(ordered, i)
				used[i] = true
			}
		}
	}

	for i := range tools {
		if !used[i] {
			ordered = append(ordered, i)
		}
	}

	out := make([]convo.ToolDefinition, len(ordered))
	for pos, i := range ordered {
		out[pos] = tools[i]
	}
	env.Context.Tools = out
	return nil
}
