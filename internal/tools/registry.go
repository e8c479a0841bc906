package tools

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/relaykit/agentcore/internal/convo"
)

// Registry is a thread-safe catalog of built-in tools, keyed by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool by its declared name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Definition().Name] = t
}

// Get returns a tool by exact name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns every registered tool name, most recently registered order
// not guaranteed — callers needing determinism should sort or use Resolve.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Resolve selects and orders tool definitions for an agent declaring tool
// patterns (literal names or glob patterns like "fs_*"): every known tool
// is matched against every pattern, collected, deduplicated, then sorted
// with literal-name matches first (in declared pattern order) followed by
// glob matches (in declared pattern order, catalog order within a
// pattern).
func (r *Registry) Resolve(patterns []string) []convo.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalogOrder := make([]string, 0, len(r.tools))
	for name := range r.tools {
		catalogOrder = append(catalogOrder, name)
	}
	sortCatalog(catalogOrder)

	seen := make(map[string]bool, len(catalogOrder))
	var ordered []string

	// Literal names first, in declared order.
	for _, pattern := range patterns {
		if strings.ContainsAny(pattern, "*?[") {
			continue
		}
		if _, ok := r.tools[pattern]; ok && !seen[pattern] {
			ordered = append(ordered, pattern)
			seen[pattern] = true
		}
	}

	// Then pattern matches, in declared pattern order, catalog order within
	// each pattern.
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			continue
		}
		for _, name := range catalogOrder {
			if seen[name] {
				continue
			}
			if ok, _ := filepath.Match(pattern, name); ok {
				ordered = append(ordered, name)
				seen[name] = true
			}
		}
	}

	defs := make([]convo.ToolDefinition, 0, len(ordered))
	for _, name := range ordered {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// ShouldYield reports whether name is registered and its ToolDefinition is
// marked Yield — the orchestrator ends its turn after such a call rather
// than continuing to the next request.
func (r *Registry) ShouldYield(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return false
	}
	return t.Definition().Yield
}

func sortCatalog(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
}
