package transform

import (
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

func TestImageHandling_StripsAttachmentsWhenUnsupported(t *testing.T) {
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleUser, Text: "look", Attachments: []convo.Attachment{{MimeType: "image/png"}}},
	}}
	env := &Env{Context: ctx, Caps: Capabilities{ImagesSupported: false}}
	if err := ImageHandling(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Entries[0].Attachments != nil {
		t.Fatalf("expected attachments stripped")
	}
	if ctx.Entries[0].Text == "look" {
		t.Fatalf("expected placeholder text appended")
	}
}

func TestImageHandling_NoopWhenSupported(t *testing.T) {
	att := []convo.Attachment{{MimeType: "image/png"}}
	ctx := &convo.Context{Entries: []convo.MessageEntry{
		{Role: convo.RoleUser, Text: "look", Attachments: att},
	}}
	env := &Env{Context: ctx, Caps: Capabilities{ImagesSupported: true}}
	if err := ImageHandling(env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctx.Entries[0].Attachments) != 1 {
		t.Fatalf("expected attachments preserved")
	}
}
