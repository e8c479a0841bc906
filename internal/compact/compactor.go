// Package compact implements the compaction engine: token-budget-driven
// summarization of older context into a single synthetic assistant turn,
// preserving the last compacted assistant's reasoning blocks so the
// reasoning-normalizer transformer (internal/transform) still has something
// to carry forward.
//
// ShouldCompact's threshold check and EstimateTokens' char/4 estimate keep
// the synthetic-message construction separate from the threshold check
// since the canonical Context model requires a protected suffix with
// reasoning-carryover semantics rather than a bare prefix drop.
package compact

import (
	"context"
	"fmt"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/prompt"
)

// Summarizer generates a summary of a message prefix. Implementations
// typically invoke a provider.ChatClient synchronously with a request built
// from prompt and entries.
type Summarizer interface {
	Summarize(ctx context.Context, entries []convo.MessageEntry, prompt string) (string, error)
}

// Config tunes when and how compaction runs.
type Config struct {
	// CompactThresholdTokens triggers compaction once the conversation's
	// estimated token usage reaches this many tokens.
	CompactThresholdTokens int

	// SummaryPrompt, if set, overrides the embedded default summarization
	// template (internal/prompt, templates/compaction_summary.tmpl). It is
	// itself rendered through the same engine, so it may reference
	// .MessageCount and .ToolNames exactly like the default template does.
	SummaryPrompt string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{CompactThresholdTokens: 100_000}
}

// Result reports what a single Compact call did.
type Result struct {
	TokensBefore int
	TokensAfter  int
	MsgsBefore   int
	MsgsAfter    int
}

// Compactor drives the compaction algorithm.
type Compactor struct {
	summarizer Summarizer
	config     Config
}

// New returns a Compactor that calls summarizer to produce each summary.
func New(summarizer Summarizer, config Config) *Compactor {
	return &Compactor{summarizer: summarizer, config: config}
}

// ShouldCompact reports whether tokensUsed has reached the configured
// threshold.
func (c *Compactor) ShouldCompact(tokensUsed int) bool {
	return c.config.CompactThresholdTokens > 0 && tokensUsed >= c.config.CompactThresholdTokens
}

// EstimateTokens approximates token usage from entry text length: total
// characters (plus a fixed per-entry overhead) over four.
func EstimateTokens(entries []convo.MessageEntry) int {
	total := 0
	for _, e := range entries {
		total += len(e.Text) + 20
		for _, r := range e.Reasoning {
			total += len(r.Text)
		}
	}
	return total / 4
}

// Compact summarizes the compactable prefix of conv's context — everything
// except the protected suffix (the last user message and everything after
// it) — and replaces it with one synthetic assistant message carrying the
// last compacted assistant's reasoning blocks. A conversation with no user
// message, or whose entire context is the protected suffix, is left
// untouched and Compact returns a zero Result.
func (c *Compactor) Compact(ctx context.Context, conv *convo.Conversation) (Result, error) {
	ctxState := conv.EmptyContext()
	entries := ctxState.Entries

	suffixStart := protectedSuffixStart(entries)
	if suffixStart <= 0 {
		return Result{}, nil
	}

	prefix := entries[:suffixStart]
	suffix := entries[suffixStart:]

	tokensBefore := EstimateTokens(entries)
	msgsBefore := len(entries)

	summaryPrompt, err := c.renderSummaryPrompt(prefix)
	if err != nil {
		return Result{}, err
	}

	summary, err := c.summarizer.Summarize(ctx, prefix, summaryPrompt)
	if err != nil {
		return Result{}, fmt.Errorf("compact: summarize: %w", err)
	}

	synthetic := convo.MessageEntry{
		Role:      convo.RoleAssistant,
		Text:      summary,
		Reasoning: lastAssistantReasoning(prefix),
	}

	newEntries := make([]convo.MessageEntry, 0, 1+len(suffix))
	newEntries = append(newEntries, synthetic)
	newEntries = append(newEntries, suffix...)
	ctxState.Entries = newEntries

	return Result{
		TokensBefore: tokensBefore,
		TokensAfter:  EstimateTokens(newEntries),
		MsgsBefore:   msgsBefore,
		MsgsAfter:    len(newEntries),
	}, nil
}

// protectedSuffixStart returns the index of the last user entry, which
// begins the protected suffix (that user message plus the
// assistant-plus-tool-result block that answers it). Returns -1 if there
// is no user entry, or 0 if the first entry is already the last user
// message (nothing to compact).
func protectedSuffixStart(entries []convo.MessageEntry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsUser() {
			return i
		}
	}
	return -1
}

// summaryPromptData is the data exposed to the compaction summary template,
// whether that is the embedded default or a Config.SummaryPrompt override.
type summaryPromptData struct {
	MessageCount int
	ToolNames    []string
}

// renderSummaryPrompt builds the instructions passed to Summarizer: the
// configured SummaryPrompt override rendered as an ad-hoc template if set,
// otherwise the embedded default template, both through the shared prompt
// engine.
func (c *Compactor) renderSummaryPrompt(prefix []convo.MessageEntry) (string, error) {
	engine, err := prompt.Default()
	if err != nil {
		return "", fmt.Errorf("compact: prompt engine: %w", err)
	}

	data := summaryPromptData{MessageCount: len(prefix), ToolNames: distinctToolNames(prefix)}

	if c.config.SummaryPrompt != "" {
		rendered, err := engine.RenderString(c.config.SummaryPrompt, data)
		if err != nil {
			return "", fmt.Errorf("compact: render summary prompt: %w", err)
		}
		return rendered, nil
	}

	rendered, err := engine.Render("compaction_summary.tmpl", data)
	if err != nil {
		return "", fmt.Errorf("compact: render summary prompt: %w", err)
	}
	return rendered, nil
}

// distinctToolNames collects the tool names called across entries, in first
// appearance order, for the summary template's "covering work done with"
// clause.
func distinctToolNames(entries []convo.MessageEntry) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		for _, tc := range e.ToolCalls {
			if !seen[tc.Name] {
				seen[tc.Name] = true
				names = append(names, tc.Name)
			}
		}
	}
	return names
}

// lastAssistantReasoning returns the reasoning blocks of the last assistant
// entry within the compacted prefix, or nil if there is none.
func lastAssistantReasoning(prefix []convo.MessageEntry) []convo.ReasoningBlock {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i].IsAssistant() {
			return prefix[i].Reasoning
		}
	}
	return nil
}
