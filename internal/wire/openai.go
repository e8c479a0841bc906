package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/relaykit/agentcore/internal/convo"
	openai "github.com/sashabaranov/go-openai"
)

// EncodeOpenAI builds a streaming chat-completion request from a canonical
// context. Callers run ctx through transform.Default() and the OpenAI-only
// edge steps (TrimToolCallIds) before calling this.
func EncodeOpenAI(ctx *convo.Context, modelID string) (openai.ChatCompletionRequest, error) {
	req := openai.ChatCompletionRequest{
		Model:  modelID,
		Stream: true,
	}

	if ctx.MaxTokens != nil {
		req.MaxTokens = *ctx.MaxTokens
	}
	if ctx.Temperature != nil {
		req.Temperature = float32(*ctx.Temperature)
	}
	if ctx.TopP != nil {
		req.TopP = float32(*ctx.TopP)
	}

	messages, err := encodeOpenAIMessages(ctx.Entries)
	if err != nil {
		return req, err
	}
	req.Messages = messages

	if len(ctx.Tools) > 0 {
		req.Tools = encodeOpenAITools(ctx.Tools)
	}
	if ctx.ToolChoice != nil {
		req.ToolChoice = encodeOpenAIToolChoice(*ctx.ToolChoice)
	}

	return req, nil
}

func encodeOpenAIMessages(entries []convo.MessageEntry) ([]openai.ChatCompletionMessage, error) {
	result := make([]openai.ChatCompletionMessage, 0, len(entries))

	for _, e := range entries {
		switch e.Role {
		case convo.RoleSystem:
			result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: e.Text})

		case convo.RoleUser:
			if len(e.Attachments) == 0 {
				result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: e.Text})
				continue
			}
			parts := make([]openai.ChatMessagePart, 0, len(e.Attachments)+1)
			if e.Text != "" {
				parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: e.Text})
			}
			for _, att := range e.Attachments {
				parts = append(parts, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: attachmentURL(att), Detail: openai.ImageURLDetailAuto},
				})
			}
			result = append(result, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts})

		case convo.RoleAssistant:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: e.Text}
			for _, tc := range e.ToolCalls {
				args, _ := tc.Arguments.Raw()
				if parsed, ok := tc.Arguments.ParsedValue(); ok {
					args = string(parsed)
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:       tc.CallID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: tc.Name, Arguments: args},
				})
			}
			result = append(result, msg)

		case convo.RoleTool:
			if e.ToolResult == nil {
				continue
			}
			result = append(result, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    e.ToolResult.Content,
				ToolCallID: e.ToolResult.CallID,
			})

		default:
			return nil, fmt.Errorf("wire: unknown role %q", e.Role)
		}
	}

	return result, nil
}

func attachmentURL(att convo.Attachment) string {
	if att.URL != "" {
		return att.URL
	}
	return "data:" + att.MimeType + ";base64," + base64.StdEncoding.EncodeToString(att.Data)
}

func encodeOpenAITools(tools []convo.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		var schema map[string]any
		if err := json.Unmarshal(t.InputSchema, &schema); err != nil {
			schema = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schema,
			},
		}
	}
	return result
}

func encodeOpenAIToolChoice(mode convo.ToolChoiceMode) any {
	switch mode {
	case convo.ToolChoiceNone:
		return "none"
	case convo.ToolChoiceRequired:
		return "required"
	default:
		return "auto"
	}
}

// OpenAIDecoder assembles streamed openai.ChatCompletionStreamResponse
// fragments into a single finalized assistant convo.MessageEntry. Text
// deltas concatenate in arrival order; tool-call fragments accumulate per
// Index and are only turned into convo.ToolCallFull values at Finalize,
// since argument JSON arrives split across many deltas.
type OpenAIDecoder struct {
	text         string
	toolCalls    map[int]*accumulatingToolCall
	order        []int
	usage        *convo.Usage
	finishReason convo.FinishReason
}

type accumulatingToolCall struct {
	callID string
	name   string
	args   string
}

// NewOpenAIDecoder returns an empty decoder ready to receive stream chunks.
func NewOpenAIDecoder() *OpenAIDecoder {
	return &OpenAIDecoder{toolCalls: make(map[int]*accumulatingToolCall)}
}

// Feed folds one streamed response chunk into the decoder's running state.
func (d *OpenAIDecoder) Feed(chunk openai.ChatCompletionStreamResponse) {
	if chunk.Usage != nil {
		d.usage = &convo.Usage{
			InputTokens:  convo.Actual(uint64(chunk.Usage.PromptTokens)),
			OutputTokens: convo.Actual(uint64(chunk.Usage.CompletionTokens)),
		}
	}
	if len(chunk.Choices) == 0 {
		return
	}
	delta := chunk.Choices[0].Delta

	if chunk.Choices[0].FinishReason != "" {
		d.finishReason = convo.FinishReasonFromOpenAI(string(chunk.Choices[0].FinishReason))
	}

	if delta.Content != "" {
		d.text += delta.Content
	}

	for _, tc := range delta.ToolCalls {
		index := 0
		if tc.Index != nil {
			index = *tc.Index
		}
		acc, ok := d.toolCalls[index]
		if !ok {
			acc = &accumulatingToolCall{}
			d.toolCalls[index] = acc
			d.order = append(d.order, index)
		}
		if tc.ID != "" {
			acc.callID = tc.ID
		}
		if tc.Function.Name != "" {
			acc.name = tc.Function.Name
		}
		if tc.Function.Arguments != "" {
			acc.args += tc.Function.Arguments
		}
	}
}

// Finalize returns the assembled assistant entry. It may be called only
// once stream iteration has ended.
func (d *OpenAIDecoder) Finalize() convo.MessageEntry {
	entry := convo.MessageEntry{Role: convo.RoleAssistant, Text: d.text, Usage: d.usage}
	for _, idx := range d.order {
		acc := d.toolCalls[idx]
		entry.ToolCalls = append(entry.ToolCalls, convo.ToolCallFull{
			CallID:    acc.callID,
			Name:      acc.name,
			Arguments: convo.Unparsed(acc.args),
		})
	}
	return entry
}

// FinishReason returns the normalized reason the stream stopped, as
// reported by the most recent chunk carrying a non-empty finish_reason.
func (d *OpenAIDecoder) FinishReason() convo.FinishReason { return d.finishReason }
