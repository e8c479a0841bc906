// Package wire converts between the canonical convo.Context and the two
// provider wire dialects this module speaks: OpenAI's chat-completions
// shape (github.com/sashabaranov/go-openai) and Anthropic's messages shape
// (github.com/anthropics/anthropic-sdk-go). Each dialect gets an Encode
// function (canonical -> wire request) and a streaming Decoder (wire SSE
// events -> a finalized convo.MessageEntry), so the orchestrator never
// touches either SDK's types directly.
package wire
