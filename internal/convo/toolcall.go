package convo

import "encoding/json"

// ToolCallArguments holds a tool call's arguments as either an unparsed,
// verbatim string (the common case when streamed from an OpenAI-family
// delta) or an already-parsed JSON value. Parsing is lazy; see
// internal/toolcall for the tolerant parser that backs Parse().
//
// Unparsed is preserved byte-for-byte so that cache-key stability (critical
// for Anthropic prompt caching) is never disturbed by a round-trip through
// this type: a valid-JSON Unparsed string marshals back out as raw JSON, and
// an invalid one marshals as a JSON string literal.
type ToolCallArguments struct {
	unparsed string
	parsed   json.RawMessage
	isParsed bool
}

// Unparsed wraps a verbatim argument string (e.g. concatenated streaming
// deltas of `function.arguments`).
func Unparsed(s string) ToolCallArguments {
	return ToolCallArguments{unparsed: s}
}

// Parsed wraps an already-parsed JSON value.
func Parsed(v json.RawMessage) ToolCallArguments {
	return ToolCallArguments{parsed: v, isParsed: true}
}

// IsParsed reports whether the arguments are already a parsed value.
func (a ToolCallArguments) IsParsed() bool { return a.isParsed }

// Raw returns the unparsed string form, if that's how the value is held.
func (a ToolCallArguments) Raw() (string, bool) {
	if a.isParsed {
		return "", false
	}
	return a.unparsed, true
}

// ParsedValue returns the already-parsed value, if that's how the value is
// held. Callers that need tolerant repair of an Unparsed value should use
// internal/toolcall.Parse instead.
func (a ToolCallArguments) ParsedValue() (json.RawMessage, bool) {
	if !a.isParsed {
		return nil, false
	}
	return a.parsed, true
}

// MarshalJSON emits raw JSON when the unparsed string is itself valid JSON
// (preserving byte layout), and a JSON string literal otherwise. Already
// parsed values always marshal as raw JSON.
func (a ToolCallArguments) MarshalJSON() ([]byte, error) {
	if a.isParsed {
		if len(a.parsed) == 0 {
			return []byte("null"), nil
		}
		return a.parsed, nil
	}
	if json.Valid([]byte(a.unparsed)) {
		return []byte(a.unparsed), nil
	}
	return json.Marshal(a.unparsed)
}

// UnmarshalJSON accepts either a JSON string (treated as Unparsed) or any
// other JSON value (treated as Parsed, preserving raw bytes).
func (a *ToolCallArguments) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Unparsed(s)
		return nil
	}
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	*a = Parsed(raw)
	return nil
}

// ToolCallFull is a fully assembled tool invocation carrying a stable
// CallID, the tool name, and its arguments.
type ToolCallFull struct {
	CallID    string
	Name      string
	Arguments ToolCallArguments
}

// ToolCallPart is a single streamed fragment of a tool call, keyed by a
// positional Index shared across the fragments that make up one call. The
// wire decoder assembles these into a ToolCallFull at stream end.
type ToolCallPart struct {
	Index             int
	CallID            string
	Name              string
	ArgumentsFragment string
}

// ToolDefinition describes a tool as advertised to a provider.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage

	// Yield marks a tool whose invocation pauses the orchestrator loop on
	// call (e.g. Followup, AttemptCompletion) rather than continuing to the
	// next provider round-trip.
	Yield bool
}

// ToolResult is the outcome of executing a single tool call, appended to the
// Context as a tool-result MessageEntry.
type ToolResult struct {
	CallID  string
	Content string
	IsError bool

	// Denied marks a result produced by a policy refusal rather than a tool
	// failure: the agent chose the action, the user (or a configured rule)
	// refused it. A denial is surfaced to the model
	// as error text but must never count against the per-turn tool-failure
	// ceiling (internal/toolerr.Tracker skips it).
	Denied bool
}
