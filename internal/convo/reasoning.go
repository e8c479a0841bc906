package convo

// ReasoningKind distinguishes the shape of a reasoning block. Only Text
// blocks are ever merged across streaming deltas (see MergeReasoningParts).
type ReasoningKind string

const (
	ReasoningText      ReasoningKind = "text"
	ReasoningEncrypted ReasoningKind = "encrypted"
	ReasoningSummary   ReasoningKind = "summary"
)

// ReasoningPart is a single streamed fragment of model "thinking", keyed by
// its positional index within the assistant turn. Parts sharing an index
// arrive across multiple deltas and are assembled by MergeReasoningParts once
// the stream ends.
type ReasoningPart struct {
	Index     int
	Type      string // raw dialect type string, e.g. "reasoning.text"; empty when unset
	Text      string
	Signature string
	ID        string
	Format    string
}

// isText reports whether p counts as a reasoning.text fragment under the
// merge rule: type == "reasoning.text", or no type with non-empty text.
func (p ReasoningPart) isText() bool {
	if p.Type == "reasoning.text" {
		return true
	}
	return p.Type == "" && p.Text != ""
}

// ReasoningBlock is a finalized, merged block of reasoning attached to an
// assistant MessageEntry.
type ReasoningBlock struct {
	Kind      ReasoningKind
	Text      string
	Signature string
	ID        string
	Format    string
	Index     int
}

// MergeReasoningParts folds an ordered sequence of streamed ReasoningPart
// fragments into finalized ReasoningBlocks.
//
// Consecutive text parts (see ReasoningPart.isText) are concatenated into a
// single ReasoningBlock; the block's Signature, ID, Format, and Index
// take the first non-empty value seen across the run. Non-text parts are never
// merged, not even with each other — encountering one flushes any pending
// text run first, then the non-text part becomes its own block.
//
// This must run as a single finalization pass over the whole stream, not
// incrementally per-delta: the merge rule is order-sensitive across the
// entire part sequence.
func MergeReasoningParts(parts []ReasoningPart) []ReasoningBlock {
	if len(parts) == 0 {
		return nil
	}

	var blocks []ReasoningBlock
	var run []ReasoningPart

	flush := func() {
		if len(run) == 0 {
			return
		}
		blocks = append(blocks, mergeTextRun(run))
		run = run[:0]
	}

	for _, p := range parts {
		if p.isText() {
			run = append(run, p)
			continue
		}
		flush()
		blocks = append(blocks, ReasoningBlock{
			Kind:      kindForType(p.Type),
			Text:      p.Text,
			Signature: p.Signature,
			ID:        p.ID,
			Format:    p.Format,
			Index:     p.Index,
		})
	}
	flush()

	return blocks
}

func mergeTextRun(run []ReasoningPart) ReasoningBlock {
	var text, sig, id, format string
	var index int
	for _, p := range run {
		text += p.Text
		if sig == "" {
			sig = p.Signature
		}
		if id == "" {
			id = p.ID
		}
		if format == "" {
			format = p.Format
		}
		// Like the fields above, index takes the first set (non-zero) value
		// across the run, not positionally the first part's.
		if index == 0 {
			index = p.Index
		}
	}
	return ReasoningBlock{
		Kind:      ReasoningText,
		Text:      text,
		Signature: sig,
		ID:        id,
		Format:    format,
		Index:     index,
	}
}

func kindForType(t string) ReasoningKind {
	switch t {
	case "reasoning.encrypted", "encrypted":
		return ReasoningEncrypted
	case "reasoning.summary", "summary":
		return ReasoningSummary
	default:
		return ReasoningKind(t)
	}
}
