package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
)

const defaultMaxSearchMatches = 200

// searchMatch is a single line matching a Search call's pattern.
type searchMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// SearchTool recursively greps workspace files for a regular expression.
type SearchTool struct {
	resolver   PathResolver
	maxMatches int
}

func NewSearchTool(root string, maxMatches int) *SearchTool {
	if maxMatches <= 0 {
		maxMatches = defaultMaxSearchMatches
	}
	return &SearchTool{resolver: PathResolver{Root: root}, maxMatches: maxMatches}
}

func (t *SearchTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "search",
		Description: "Search workspace files for lines matching a regular expression.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern":        map[string]any{"type": "string", "description": "Regular expression to match against each line."},
				"path":           map[string]any{"type": "string", "description": "Directory or file to search (default: workspace root)."},
				"case_sensitive": map[string]any{"type": "boolean", "description": "Match case-sensitively (default: true)."},
				"max_matches":    map[string]any{"type": "integer", "minimum": 0, "description": "Maximum matches to return (capped by tool default)."},
			},
			"required": []string{"pattern"},
		}),
	}
}

func (t *SearchTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		Pattern string `json:"pattern"`
	}
	if json.Unmarshal(params, &in) != nil || in.Pattern == "" {
		return "", false
	}
	return "Searching for " + in.Pattern, true
}

func (t *SearchTool) Execute(_ context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		Pattern       string `json:"pattern"`
		Path          string `json:"path"`
		CaseSensitive *bool  `json:"case_sensitive"`
		MaxMatches    int    `json:"max_matches"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.Pattern) == "" {
		return errOutput("pattern is required"), nil
	}

	expr := in.Pattern
	if in.CaseSensitive != nil && !*in.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return errOutput("invalid pattern: %v", err), nil
	}

	root := in.Path
	if root == "" {
		root = "."
	}
	resolved, err := t.resolver.Resolve(root)
	if err != nil {
		return errOutput("%v", err), nil
	}

	limit := t.maxMatches
	if in.MaxMatches > 0 && in.MaxMatches < limit {
		limit = in.MaxMatches
	}

	var matches []searchMatch
	truncated := false
	walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= limit {
			truncated = true
			return nil
		}
		rel, relErr := filepath.Rel(resolved, path)
		if relErr != nil {
			rel = path
		}
		found, serr := grepFile(path, re, limit-len(matches))
		if serr != nil {
			return nil
		}
		for _, m := range found {
			m.Path = rel
			matches = append(matches, m)
		}
		if len(matches) >= limit {
			truncated = true
		}
		return nil
	})
	if walkErr != nil {
		return errOutput("search: %v", walkErr), nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Path != matches[j].Path {
			return matches[i].Path < matches[j].Path
		}
		return matches[i].Line < matches[j].Line
	})

	payload, err := json.MarshalIndent(map[string]any{
		"matches":   matches,
		"truncated": truncated,
	}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload)}, nil
}

func grepFile(path string, re *regexp.Regexp, limit int) ([]searchMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []searchMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(out) >= limit {
			break
		}
		line := scanner.Text()
		if re.MatchString(line) {
			out = append(out, searchMatch{Line: lineNo, Text: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("scan: %w", err)
	}
	return out, nil
}
