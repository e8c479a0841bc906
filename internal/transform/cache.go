package transform

// SetCache marks Anthropic-dialect prompt-cache breakpoints: the first
// system entry (or, absent one, the first entry of any role) and the last
// entry. Anthropic bills and rewards caching up to the marked breakpoint,
// so marking more than these two wastes the budget; marking fewer forfeits
// reuse across turns. A no-op outside the Anthropic dialect or on an empty
// context.
func SetCache(env *Env) error {
	if env.Dialect != DialectAnthropic {
		return nil
	}
	n := len(env.Context.Entries)
	if n == 0 {
		return nil
	}

	for i := range env.Context.Entries {
		env.Context.Entries[i].Cached = false
	}

	first := env.Context.FirstSystemIndex()
	if first < 0 {
		first = 0
	}
	env.Context.Entries[first].Cached = true
	env.Context.Entries[n-1].Cached = true
	return nil
}
