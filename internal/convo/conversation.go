package convo

import "time"

// FileOperation records the most recent write/patch the agent performed
// against a single path: which tool kind touched it, and the content hash
// at the time of that operation (nil if the content could not be hashed).
type FileOperation struct {
	ToolKind    string
	ContentHash *string
}

// Metrics tracks per-file operations for a Conversation, keyed by path. The
// file-change detector (internal/filechange) compares these recorded hashes
// against the filesystem's current state.
type Metrics struct {
	FileOperations map[string]FileOperation
}

// RecordFileOperation upserts the operation recorded for path.
func (m *Metrics) RecordFileOperation(path, toolKind string, contentHash *string) {
	if m.FileOperations == nil {
		m.FileOperations = make(map[string]FileOperation)
	}
	m.FileOperations[path] = FileOperation{ToolKind: toolKind, ContentHash: contentHash}
}

// Conversation is the primary aggregate: a persisted, titled conversation
// bound to one agent and model, carrying its current Context and file
// Metrics.
//
// Lifecycle: created on the first user prompt; mutated on every
// orchestrator turn and hook fire; persisted by the conversation repository
// after each mutation; never deleted by the core (retention is an external
// concern).
type Conversation struct {
	ID      string
	Title   *string
	Context *Context
	Metrics Metrics

	AgentID string
	ModelID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmptyContext returns c.Context, defaulting to a freshly allocated, empty
// Context when none is set yet.
func (c *Conversation) EmptyContext() *Context {
	if c.Context == nil {
		c.Context = &Context{}
	}
	return c.Context
}
