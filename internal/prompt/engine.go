// Package prompt is the process-wide template engine behind every prompt
// and instruction block the orchestrator builds at runtime — the tool-call
// XML instructions injected by internal/transform and the compaction
// summary instructions passed to internal/compact's Summarizer. It wraps
// stdlib text/template with embedded partials and three helpers: inc
// (1-based loop indices), json (inline re-serialization of a Go value),
// and contains (membership test over a slice, not substring search — see
// containsHelper below).
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var partials embed.FS

// Engine renders named partial templates (and ad-hoc template strings)
// against arbitrary data, sharing one FuncMap and one parsed partial set.
// The zero value is not usable; construct with New or use Default.
type Engine struct {
	funcs template.FuncMap
	base  *template.Template
}

// New parses every embedded *.tmpl partial once and returns an Engine ready
// to render any of them by name, or ad-hoc strings via RenderString.
func New() (*Engine, error) {
	funcs := defaultFuncMap()
	base, err := template.New("partials").Funcs(funcs).ParseFS(partials, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("prompt: parse embedded templates: %w", err)
	}
	return &Engine{funcs: funcs, base: base}, nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
	defaultErr    error
)

// Default returns the process-wide Engine, parsing the embedded partials on
// first use. Every call after the first returns the same instance; callers
// that need an independent copy (e.g. to add per-request template names)
// should use Clone.
func Default() (*Engine, error) {
	defaultOnce.Do(func() { defaultEngine, defaultErr = New() })
	return defaultEngine, defaultErr
}

// Clone returns an Engine sharing e's FuncMap but with an independent
// *template.Template tree, safe for a caller to extend with Parse without
// mutating e or any other clone.
func (e *Engine) Clone() (*Engine, error) {
	cloned, err := e.base.Clone()
	if err != nil {
		return nil, fmt.Errorf("prompt: clone: %w", err)
	}
	return &Engine{funcs: e.funcs, base: cloned}, nil
}

// Render executes the embedded partial named name (its template/*.tmpl
// filename) against data.
func (e *Engine) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.base.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderString parses tmplStr as a one-off template (with access to the
// same helpers and partials as Render) and executes it against data. Used
// for configuration-supplied prompt text that isn't one of the embedded
// partials.
func (e *Engine) RenderString(tmplStr string, data any) (string, error) {
	if tmplStr == "" {
		return "", nil
	}
	cloned, err := e.base.Clone()
	if err != nil {
		return "", fmt.Errorf("prompt: clone for ad-hoc render: %w", err)
	}
	parsed, err := cloned.New("_adhoc").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("prompt: parse ad-hoc template: %w", err)
	}
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, "_adhoc", data); err != nil {
		return "", fmt.Errorf("prompt: execute ad-hoc template: %w", err)
	}
	return buf.String(), nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"inc":      func(i int) int { return i + 1 },
		"json":     jsonHelper,
		"contains": containsHelper,
	}
}

// jsonHelper serializes v inline. A raw json.RawMessage renders verbatim
// rather than re-escaped as a quoted string.
func jsonHelper(v any) (string, error) {
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 {
			return "", nil
		}
		return string(raw), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("json helper: %w", err)
	}
	return string(b), nil
}

// containsHelper reports whether list contains value, comparing elements by
// their formatted string form. list may be any slice or array (including
// []string and []any); a non-slice list reports false. This is array
// membership, not strings.Contains substring search.
func containsHelper(list any, value any) bool {
	if list == nil {
		return false
	}
	rv := reflect.ValueOf(list)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return false
	}
	target := fmt.Sprint(value)
	for i := 0; i < rv.Len(); i++ {
		if fmt.Sprint(rv.Index(i).Interface()) == target {
			return true
		}
	}
	return false
}
