// Package convo holds the canonical, provider-agnostic representation of an
// agent conversation turn. Everything in the provider wire layer adapts to
// or from this model; nothing downstream of it should need to know which
// vendor dialect produced a message.
package convo

import "encoding/json"

// Role identifies who authored a MessageEntry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ReasoningConfig carries provider reasoning/thinking knobs. It is never
// nulled out by the reasoning transformer (see internal/transform) because
// it governs future turns, not just the most recent one.
type ReasoningConfig struct {
	Enabled      bool
	BudgetTokens int
}

// ResponseFormatKind selects between free-form text and a constrained
// JSON-schema response.
type ResponseFormatKind string

const (
	ResponseFormatText       ResponseFormatKind = "text"
	ResponseFormatJSONSchema ResponseFormatKind = "json_schema"
)

// ResponseFormat constrains the shape of an assistant's reply.
type ResponseFormat struct {
	Kind   ResponseFormatKind
	Schema json.RawMessage // only meaningful when Kind == ResponseFormatJSONSchema
}

// MessageEntry is one element of a Context. Exactly which fields are
// meaningful depends on Role:
//
//   - system: Text only.
//   - user: Text, optionally ModelID (the model that produced any inlined
//     attachments referenced by this message).
//   - assistant: Text, optional Reasoning, optional ThoughtSignature,
//     optional ToolCalls, optional Usage.
//   - tool: ToolResult, referencing a prior assistant ToolCallFull by
//     CallID (invariant: the referencing assistant entry need not be
//     immediately prior, only somewhere earlier in the Context).
type MessageEntry struct {
	Role Role
	Text string

	ModelID string // user entries only

	Attachments []Attachment // user entries only

	Reasoning        []ReasoningBlock // assistant entries only
	ThoughtSignature string           // assistant entries only
	ToolCalls        []ToolCallFull   // assistant entries only
	Usage            *Usage           // assistant entries only

	ToolResult *ToolResult // tool entries only

	// Cached marks this entry as a prompt-cache breakpoint (Anthropic
	// dialect only); set by the SetCache transformer, never by callers.
	Cached bool
}

// IsAssistant, IsUser, IsTool, IsSystem are small role predicates used
// throughout the transformer pipeline and orchestrator.
func (m MessageEntry) IsAssistant() bool { return m.Role == RoleAssistant }
func (m MessageEntry) IsUser() bool      { return m.Role == RoleUser }
func (m MessageEntry) IsTool() bool      { return m.Role == RoleTool }
func (m MessageEntry) IsSystem() bool    { return m.Role == RoleSystem }

// Attachment is an inlined image or file carried by a user MessageEntry.
type Attachment struct {
	MimeType string
	Data     []byte
	URL      string
}

// ToolChoiceMode constrains how the model may invoke tools.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
)

// Context is the canonical, provider-agnostic request: an ordered sequence
// of MessageEntry values plus the sampling and tool-declaration knobs that
// travel alongside them.
//
// Invariants (enforced by callers, not by this type):
//
//  1. A tool-result entry must be preceded (not necessarily immediately) by
//     an assistant entry containing a tool call with the same CallID.
//  2. Role alternation is not required; consecutive same-role entries are
//     legal.
//  3. Usage counters on assistant entries are monotone non-decreasing
//     across a single stream assembly but reset per request.
type Context struct {
	Entries []MessageEntry

	Tools      []ToolDefinition
	ToolChoice *ToolChoiceMode

	MaxTokens   *int
	Temperature *float64
	TopP        *float64
	TopK        *int

	Reasoning *ReasoningConfig
	Stream    *bool

	ResponseFormat *ResponseFormat
}

// Clone returns a deep-enough copy of c for transformer pipelines to mutate
// without aliasing the caller's slices.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := *c
	out.Entries = append([]MessageEntry(nil), c.Entries...)
	for i := range out.Entries {
		out.Entries[i].Reasoning = append([]ReasoningBlock(nil), c.Entries[i].Reasoning...)
		out.Entries[i].ToolCalls = append([]ToolCallFull(nil), c.Entries[i].ToolCalls...)
		out.Entries[i].Attachments = append([]Attachment(nil), c.Entries[i].Attachments...)
	}
	out.Tools = append([]ToolDefinition(nil), c.Tools...)
	return &out
}

// LastAssistantIndex returns the index of the last assistant entry, or -1
// if there is none.
func (c *Context) LastAssistantIndex() int {
	for i := len(c.Entries) - 1; i >= 0; i-- {
		if c.Entries[i].IsAssistant() {
			return i
		}
	}
	return -1
}

// FirstSystemIndex returns the index of the first system entry, or -1 if
// there is none.
func (c *Context) FirstSystemIndex() int {
	for i, e := range c.Entries {
		if e.IsSystem() {
			return i
		}
	}
	return -1
}
