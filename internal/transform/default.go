package transform

import "strings"

// DefaultTransformation applies the handful of universal normalizations that
// every provider dialect needs regardless of capability: dropping assistant
// entries that carry no text, tool calls, or reasoning (an assistant turn
// consisting only of tool calls has Text == "" and is kept), and trimming
// trailing whitespace off system entries
// so prompt-cache keys stay stable across otherwise-identical requests.
func DefaultTransformation(env *Env) error {
	entries := env.Context.Entries[:0]
	for _, e := range env.Context.Entries {
		if e.IsAssistant() && e.Text == "" && len(e.ToolCalls) == 0 && len(e.Reasoning) == 0 {
			continue
		}
		if e.IsSystem() {
			e.Text = strings.TrimRight(e.Text, " \t\n")
		}
		entries = append(entries, e)
	}
	env.Context.Entries = entries
	return nil
}
