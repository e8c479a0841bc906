package convo

import (
	"reflect"
	"testing"
)

func TestMergeReasoningParts(t *testing.T) {
	tests := []struct {
		name  string
		parts []ReasoningPart
		want  []ReasoningBlock
	}{
		{
			name:  "empty",
			parts: nil,
			want:  nil,
		},
		{
			name: "consecutive text parts concatenate",
			parts: []ReasoningPart{
				{Type: "reasoning.text", Text: "I should "},
				{Type: "reasoning.text", Text: "read the file"},
				{Type: "reasoning.text", Text: " first."},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningText, Text: "I should read the file first."},
			},
		},
		{
			name: "untyped part with text counts as text",
			parts: []ReasoningPart{
				{Type: "reasoning.text", Text: "a"},
				{Text: "b"},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningText, Text: "ab"},
			},
		},
		{
			name: "first non-empty signature id format win",
			parts: []ReasoningPart{
				{Type: "reasoning.text", Text: "a", Index: 2},
				{Type: "reasoning.text", Text: "b", Signature: "sig-1", ID: "id-1"},
				{Type: "reasoning.text", Text: "c", Signature: "sig-2", ID: "id-2", Format: "fmt-1"},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningText, Text: "abc", Signature: "sig-1", ID: "id-1", Format: "fmt-1", Index: 2},
			},
		},
		{
			name: "index takes first set value not first part's",
			parts: []ReasoningPart{
				{Type: "reasoning.text", Text: "a"},
				{Type: "reasoning.text", Text: "b", Index: 3},
				{Type: "reasoning.text", Text: "c", Index: 5},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningText, Text: "abc", Index: 3},
			},
		},
		{
			name: "non-text flushes pending text run",
			parts: []ReasoningPart{
				{Type: "reasoning.text", Text: "before"},
				{Type: "encrypted", Text: "opaque", Signature: "s"},
				{Type: "reasoning.text", Text: "after"},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningText, Text: "before"},
				{Kind: ReasoningEncrypted, Text: "opaque", Signature: "s"},
				{Kind: ReasoningText, Text: "after"},
			},
		},
		{
			name: "non-text parts never merge with each other",
			parts: []ReasoningPart{
				{Type: "encrypted", Text: "x"},
				{Type: "encrypted", Text: "y"},
				{Type: "summary", Text: "z"},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningEncrypted, Text: "x"},
				{Kind: ReasoningEncrypted, Text: "y"},
				{Kind: ReasoningSummary, Text: "z"},
			},
		},
		{
			name: "untyped part without text is not a text part",
			parts: []ReasoningPart{
				{Type: "reasoning.text", Text: "a"},
				{Signature: "sig-only"},
				{Type: "reasoning.text", Text: "b"},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningText, Text: "a"},
				{Kind: ReasoningKind(""), Signature: "sig-only"},
				{Kind: ReasoningText, Text: "b"},
			},
		},
		{
			name: "dotted and bare type spellings normalize",
			parts: []ReasoningPart{
				{Type: "reasoning.encrypted", Text: "x"},
				{Type: "reasoning.summary", Text: "y"},
			},
			want: []ReasoningBlock{
				{Kind: ReasoningEncrypted, Text: "x"},
				{Kind: ReasoningSummary, Text: "y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeReasoningParts(tt.parts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("MergeReasoningParts = %+v, want %+v", got, tt.want)
			}
		})
	}
}
