package provider

import (
	"context"

	"github.com/relaykit/agentcore/internal/convo"
)

// ChatResult is the fully-assembled outcome of one streaming chat call: the
// assistant MessageEntry the orchestrator appends to Context, and the
// normalized reason the stream stopped.
type ChatResult struct {
	Entry        convo.MessageEntry
	FinishReason convo.FinishReason
}

// ChatClient issues one streaming chat request against a bound Provider and
// folds the response into a ChatResult. Implementations wrap every call in
// internal/retry and classify errors via internal/retry's Classifier.
type ChatClient interface {
	StreamChat(ctx context.Context, reqCtx *convo.Context, modelID string) (ChatResult, error)
}

// messageDecoder is satisfied by both wire.OpenAIDecoder and
// wire.AnthropicDecoder; it's declared locally so this package need not
// import wire's SDK-shaped Feed signatures just to call Finalize/FinishReason.
type messageDecoder interface {
	Finalize() convo.MessageEntry
	FinishReason() convo.FinishReason
}

func finalize(d messageDecoder) ChatResult {
	return ChatResult{Entry: d.Finalize(), FinishReason: d.FinishReason()}
}
