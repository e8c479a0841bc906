package convo

// FinishReason normalizes the dialect-specific strings a provider uses to
// explain why a response stopped, mapped from dialect strings such as
// length, content_filter, tool_calls, and stop/end_turn.
type FinishReason string

const (
	FinishUnknown       FinishReason = ""
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolCalls     FinishReason = "tool_calls"
)

// FinishReasonFromOpenAI maps an OpenAI-dialect finish_reason string onto
// the canonical FinishReason.
func FinishReasonFromOpenAI(s string) FinishReason {
	switch s {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	case "content_filter":
		return FinishContentFilter
	case "tool_calls", "function_call":
		return FinishToolCalls
	default:
		return FinishUnknown
	}
}

// FinishReasonFromAnthropic maps an Anthropic-dialect stop_reason string
// onto the canonical FinishReason.
func FinishReasonFromAnthropic(s string) FinishReason {
	switch s {
	case "end_turn", "stop_sequence":
		return FinishStop
	case "max_tokens":
		return FinishLength
	case "tool_use":
		return FinishToolCalls
	default:
		return FinishUnknown
	}
}
