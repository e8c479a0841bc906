package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/provider"
)

// chatSummarizer implements compact.Summarizer and the title generator's
// GenerateFunc by issuing a single one-shot request through the same
// ChatClient a turn would use, outside the orchestrator's turn loop.
type chatSummarizer struct {
	client  provider.ChatClient
	modelID string
}

// Summarize implements compact.Summarizer.
func (s *chatSummarizer) Summarize(ctx context.Context, entries []convo.MessageEntry, prompt string) (string, error) {
	reqCtx := &convo.Context{
		Entries: []convo.MessageEntry{
			{Role: convo.RoleSystem, Text: prompt},
			{Role: convo.RoleUser, Text: renderEntries(entries)},
		},
	}
	result, err := s.client.StreamChat(ctx, reqCtx, s.modelID)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return result.Entry.Text, nil
}

// generateTitle implements title.GenerateFunc, asking the model for a short
// title from the conversation's first user prompt.
func (s *chatSummarizer) generateTitle(ctx context.Context, firstUserPrompt string) (*string, error) {
	reqCtx := &convo.Context{
		Entries: []convo.MessageEntry{
			{Role: convo.RoleSystem, Text: "Reply with a short title (five words or fewer) for a conversation that starts with the following message. Reply with the title only."},
			{Role: convo.RoleUser, Text: firstUserPrompt},
		},
	}
	result, err := s.client.StreamChat(ctx, reqCtx, s.modelID)
	if err != nil {
		return nil, fmt.Errorf("generate title: %w", err)
	}
	title := strings.TrimSpace(result.Entry.Text)
	if title == "" {
		return nil, nil
	}
	return &title, nil
}

func renderEntries(entries []convo.MessageEntry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", e.Role, e.Text)
	}
	return b.String()
}
