package transform

// SetModel stamps env.ModelID onto the most recent user entry's ModelID
// field, recording which model will see (and, for any inlined attachments,
// produced) this turn. A no-op when the context has no user entry yet.
func SetModel(env *Env) error {
	for i := len(env.Context.Entries) - 1; i >= 0; i-- {
		if env.Context.Entries[i].IsUser() {
			env.Context.Entries[i].ModelID = env.ModelID
			return nil
		}
	}
	return nil
}
