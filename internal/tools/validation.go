package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache holds one compiled *jsonschema.Schema per distinct InputSchema
// literal, keyed by its raw bytes. Tool schemas are fixed at registration
// time and shared across every call, so compiling once per distinct schema
// (rather than once per tool instance) is enough.
var schemaCache sync.Map

func compileToolSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	key := string(raw)
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}
	compiled, err := jsonschema.CompileString(name+".schema.json", key)
	if err != nil {
		return nil, err
	}
	actual, _ := schemaCache.LoadOrStore(key, compiled)
	return actual.(*jsonschema.Schema), nil
}

// validateParams checks params against tool's declared InputSchema. A tool
// with no schema (or a bare `{"type":"object"}` placeholder from schema's
// marshal-failure fallback) is treated as unconstrained.
func validateParams(tool Tool, params []byte) error {
	def := tool.Definition()
	if len(def.InputSchema) == 0 {
		return nil
	}

	compiled, err := compileToolSchema(def.Name, def.InputSchema)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(params, &decoded); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	if decoded == nil {
		decoded = map[string]any{}
	}

	if err := compiled.Validate(decoded); err != nil {
		return fmt.Errorf("arguments invalid: %w", err)
	}
	return nil
}
