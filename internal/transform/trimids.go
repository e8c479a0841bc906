package transform

// maxToolCallIDLen is the longest tool_call_id OpenAI's API accepts.
const maxToolCallIDLen = 40

// TrimToolCallIds truncates tool-call and tool-result identifiers to
// maxToolCallIDLen for the OpenAI dialect, which rejects longer ones.
// Anthropic has no such limit, so this only runs for DialectOpenAI. Both
// sides of a call (the assistant's ToolCallFull.CallID and the matching
// tool entry's ToolResult.CallID) are truncated identically so the pairing
// by id still holds after the rewrite.
func TrimToolCallIds(env *Env) error {
	if env.Dialect != DialectOpenAI {
		return nil
	}
	for i := range env.Context.Entries {
		e := &env.Context.Entries[i]
		for j := range e.ToolCalls {
			e.ToolCalls[j].CallID = trim(e.ToolCalls[j].CallID)
		}
		if e.ToolResult != nil {
			e.ToolResult.CallID = trim(e.ToolResult.CallID)
		}
	}
	return nil
}

func trim(id string) string {
	if len(id) <= maxToolCallIDLen {
		return id
	}
	return id[:maxToolCallIDLen]
}
