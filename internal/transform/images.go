package transform

// ImageHandling strips inlined attachments from user entries when the
// target model has no vision support, leaving a short textual placeholder
// so the conversation history still records that an image was present.
// When images are supported it is a no-op: attachment encoding into the
// dialect's wire shape happens in internal/wire, not here.
func ImageHandling(env *Env) error {
	if env.Caps.ImagesSupported {
		return nil
	}
	for i := range env.Context.Entries {
		e := &env.Context.Entries[i]
		if !e.IsUser() || len(e.Attachments) == 0 {
			continue
		}
		n := len(e.Attachments)
		e.Attachments = nil
		if n == 1 {
			e.Text += "\n[1 attachment omitted: model does not support images]"
		} else {
			e.Text += "\n[attachments omitted: model does not support images]"
		}
	}
	return nil
}
