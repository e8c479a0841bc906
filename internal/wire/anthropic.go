package wire

import (
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/jsonrepair"
)

const defaultThinkingBudget = int64(10000)

// EncodeAnthropic builds a streaming Messages request from a canonical
// context. Callers run ctx through transform.Default() and the
// Anthropic-only edge step (SetCache) before calling this; Cached entries
// become cache_control breakpoints on their content blocks.
func EncodeAnthropic(ctx *convo.Context, modelID string) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 4096,
	}
	if ctx.MaxTokens != nil {
		params.MaxTokens = int64(*ctx.MaxTokens)
	}
	if ctx.Temperature != nil {
		params.Temperature = anthropic.Float(*ctx.Temperature)
	}
	if ctx.TopP != nil {
		params.TopP = anthropic.Float(*ctx.TopP)
	}

	if i := ctx.FirstSystemIndex(); i >= 0 {
		block := anthropic.TextBlockParam{Type: "text", Text: ctx.Entries[i].Text}
		if ctx.Entries[i].Cached {
			block.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
		params.System = []anthropic.TextBlockParam{block}
	}

	if ctx.Reasoning != nil && ctx.Reasoning.Enabled {
		budget := int64(ctx.Reasoning.BudgetTokens)
		if budget < 1024 {
			budget = defaultThinkingBudget
		}
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	}

	messages, err := encodeAnthropicMessages(ctx.Entries)
	if err != nil {
		return params, err
	}
	params.Messages = messages

	if len(ctx.Tools) > 0 {
		tools, err := encodeAnthropicTools(ctx.Tools)
		if err != nil {
			return params, err
		}
		params.Tools = tools
	}
	if ctx.ToolChoice != nil {
		params.ToolChoice = encodeAnthropicToolChoice(*ctx.ToolChoice)
	}

	return params, nil
}

func encodeAnthropicMessages(entries []convo.MessageEntry) ([]anthropic.MessageParam, error) {
	var result []anthropic.MessageParam

	for idx, e := range entries {
		if e.IsSystem() {
			continue
		}

		var content []anthropic.ContentBlockParamUnion
		if e.IsTool() {
			if e.ToolResult == nil {
				continue
			}
			content = append(content, anthropic.NewToolResultBlock(e.ToolResult.CallID, e.ToolResult.Content, e.ToolResult.IsError))
		} else {
			if e.Text != "" {
				content = append(content, anthropic.NewTextBlock(e.Text))
			}
			for _, tc := range e.ToolCalls {
				input, err := toolCallInputMap(tc)
				if err != nil {
					return nil, fmt.Errorf("wire: %w", err)
				}
				content = append(content, anthropic.NewToolUseBlock(tc.CallID, input, tc.Name))
			}
			for _, att := range e.Attachments {
				content = append(content, anthropicImageBlock(att))
			}
		}

		if len(content) == 0 {
			continue
		}
		if e.Cached {
			markCacheControl(content[len(content)-1])
		}

		var message anthropic.MessageParam
		if e.IsAssistant() {
			message = anthropic.NewAssistantMessage(content...)
		} else {
			message = anthropic.NewUserMessage(content...)
		}
		_ = idx
		result = append(result, message)
	}

	return result, nil
}

// toolCallInputMap produces the map[string]any Anthropic's tool_use block
// expects, parsing the argument JSON through the tolerant repairer
// (internal/jsonrepair). EncodeOpenAI, by contrast, passes argument JSON
// through as-is.
func toolCallInputMap(tc convo.ToolCallFull) (map[string]any, error) {
	if raw, ok := tc.Arguments.Raw(); ok {
		var m map[string]any
		if err := jsonrepair.Parse(raw, &m); err != nil {
			return nil, fmt.Errorf("invalid tool call input for %s: %w", tc.Name, err)
		}
		return m, nil
	}
	parsed, _ := tc.Arguments.ParsedValue()
	var m map[string]any
	if err := jsonrepair.Parse(string(parsed), &m); err != nil {
		return nil, fmt.Errorf("invalid tool call input for %s: %w", tc.Name, err)
	}
	return m, nil
}

func anthropicImageBlock(att convo.Attachment) anthropic.ContentBlockParamUnion {
	if att.URL != "" {
		return anthropic.NewImageBlock(anthropic.NewImageBlockParamSourceOfURL(att.URL))
	}
	return anthropic.NewImageBlock(anthropic.NewImageBlockParamSourceOfBase64(att.MimeType, base64.StdEncoding.EncodeToString(att.Data)))
}

// markCacheControl sets a cache breakpoint on whichever concrete content
// block union is populated. Anthropic only honors cache_control on the last
// block of a cached message, which is why callers only ever mark the final
// entry in content.
func markCacheControl(block anthropic.ContentBlockParamUnion) {
	switch {
	case block.OfText != nil:
		block.OfText.CacheControl = anthropic.NewCacheControlEphemeralParam()
	case block.OfToolUse != nil:
		block.OfToolUse.CacheControl = anthropic.NewCacheControlEphemeralParam()
	case block.OfToolResult != nil:
		block.OfToolResult.CacheControl = anthropic.NewCacheControlEphemeralParam()
	case block.OfImage != nil:
		block.OfImage.CacheControl = anthropic.NewCacheControlEphemeralParam()
	}
}

func encodeAnthropicTools(tools []convo.ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var schema anthropic.ToolInputSchemaParam
		if len(t.InputSchema) > 0 {
			if err := schema.UnmarshalJSON(t.InputSchema); err != nil {
				return nil, fmt.Errorf("wire: invalid tool schema for %s: %w", t.Name, err)
			}
		}
		param := anthropic.ToolUnionParamOfTool(schema, t.Name)
		if param.OfTool == nil {
			return nil, fmt.Errorf("wire: invalid tool schema for %s", t.Name)
		}
		param.OfTool.Description = anthropic.String(t.Description)
		result = append(result, param)
	}
	return result, nil
}

func encodeAnthropicToolChoice(mode convo.ToolChoiceMode) anthropic.ToolChoiceUnionParam {
	switch mode {
	case convo.ToolChoiceNone:
		return anthropic.ToolChoiceParamOfNone()
	case convo.ToolChoiceRequired:
		return anthropic.ToolChoiceParamOfAny()
	default:
		return anthropic.ToolChoiceParamOfAuto()
	}
}

// AnthropicDecoder assembles a streamed anthropic.MessageStreamEventUnion
// sequence into a finalized assistant convo.MessageEntry. Reasoning
// (thinking) and tool-use content blocks arrive across content_block_start
// / content_block_delta / content_block_stop triples keyed by block index;
// text deltas are folded in directly.
type AnthropicDecoder struct {
	parts        []convo.ReasoningPart
	text         string
	toolCalls    []convo.ToolCallFull
	usage        convo.Usage
	currentIndex int
	currentKind  blockKind
	toolID       string
	toolName     string
	toolArgs     string
	finishReason convo.FinishReason
}

type blockKind int

const (
	blockNone blockKind = iota
	blockThinking
	blockToolUse
)

// NewAnthropicDecoder returns an empty decoder ready to receive stream
// events.
func NewAnthropicDecoder() *AnthropicDecoder {
	return &AnthropicDecoder{}
}

// Feed folds one streamed event into the decoder's running state.
func (d *AnthropicDecoder) Feed(event anthropic.MessageStreamEventUnion) {
	switch event.Type {
	case "message_start":
		start := event.AsMessageStart()
		if start.Message.Usage.InputTokens > 0 {
			d.usage.InputTokens = convo.Actual(uint64(start.Message.Usage.InputTokens))
		}

	case "content_block_start":
		block := event.AsContentBlockStart()
		d.currentIndex = int(block.Index)
		switch block.ContentBlock.Type {
		case "thinking":
			d.currentKind = blockThinking
		case "tool_use":
			use := block.ContentBlock.AsToolUse()
			d.currentKind = blockToolUse
			d.toolID = use.ID
			d.toolName = use.Name
			d.toolArgs = ""
		default:
			d.currentKind = blockNone
		}

	case "content_block_delta":
		delta := event.AsContentBlockDelta()
		switch delta.Delta.Type {
		case "text_delta":
			d.text += delta.Delta.Text
		case "thinking_delta":
			d.parts = append(d.parts, convo.ReasoningPart{Index: d.currentIndex, Type: "reasoning.text", Text: delta.Delta.Thinking})
		case "signature_delta":
			d.parts = append(d.parts, convo.ReasoningPart{Index: d.currentIndex, Type: "reasoning.text", Signature: delta.Delta.Signature})
		case "input_json_delta":
			d.toolArgs += delta.Delta.PartialJSON
		}

	case "content_block_stop":
		if d.currentKind == blockToolUse {
			d.toolCalls = append(d.toolCalls, convo.ToolCallFull{
				CallID:    d.toolID,
				Name:      d.toolName,
				Arguments: convo.Unparsed(d.toolArgs),
			})
		}
		d.currentKind = blockNone

	case "message_delta":
		delta := event.AsMessageDelta()
		if delta.Usage.OutputTokens > 0 {
			d.usage.OutputTokens = convo.Actual(uint64(delta.Usage.OutputTokens))
		}
		if delta.Delta.StopReason != "" {
			d.finishReason = convo.FinishReasonFromAnthropic(string(delta.Delta.StopReason))
		}
	}
}

// FinishReason returns the normalized reason the stream stopped, as
// reported by the message_delta event's stop_reason field.
func (d *AnthropicDecoder) FinishReason() convo.FinishReason { return d.finishReason }

// Finalize returns the assembled assistant entry, merging any accumulated
// reasoning parts per the single-pass rule in internal/convo.
func (d *AnthropicDecoder) Finalize() convo.MessageEntry {
	return convo.MessageEntry{
		Role:      convo.RoleAssistant,
		Text:      d.text,
		Reasoning: convo.MergeReasoningParts(d.parts),
		ToolCalls: d.toolCalls,
		Usage:     &d.usage,
	}
}
