package provider

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/retry"
	"github.com/relaykit/agentcore/internal/wire"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient issues streaming chat completions against an OpenAI-dialect
// Provider: build the request, open a stream, fold each chunk into a
// wire.OpenAIDecoder, retry the whole call on a transient failure.
type OpenAIClient struct {
	Provider *Provider
	Retry    retry.Config

	newClient func(apiKey, baseURL string) *openai.Client
}

// NewOpenAIClient returns a client bound to p, retrying per cfg.
func NewOpenAIClient(p *Provider, cfg retry.Config) *OpenAIClient {
	return &OpenAIClient{Provider: p, Retry: cfg}
}

func (c *OpenAIClient) client(apiKey string) *openai.Client {
	if c.newClient != nil {
		return c.newClient(apiKey, c.Provider.BaseURL)
	}
	config := openai.DefaultConfig(apiKey)
	if c.Provider.BaseURL != "" {
		config.BaseURL = c.Provider.BaseURL
	}
	return openai.NewClientWithConfig(config)
}

// StreamChat implements ChatClient.
func (c *OpenAIClient) StreamChat(ctx context.Context, reqCtx *convo.Context, modelID string) (ChatResult, error) {
	req, err := wire.EncodeOpenAI(reqCtx, modelID)
	if err != nil {
		return ChatResult{}, fmt.Errorf("openai: encode request: %w", err)
	}

	cfg := c.Retry
	if hook := retry.OnRetryFromContext(ctx); hook != nil {
		cfg.OnRetry = hook
	}

	result, outcome := retry.DoWithValue(ctx, cfg, func() (ChatResult, error) {
		apiKey, err := c.Provider.Authenticate(ctx)
		if err != nil {
			return ChatResult{}, retry.Permanent(err)
		}
		stream, err := c.client(apiKey).CreateChatCompletionStream(ctx, req)
		if err != nil {
			return ChatResult{}, classifyOpenAIError(err)
		}
		defer stream.Close()

		decoder := wire.NewOpenAIDecoder()
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return ChatResult{}, classifyOpenAIError(err)
			}
			decoder.Feed(chunk)
		}
		return finalize(decoder), nil
	})
	if outcome.Err != nil {
		return ChatResult{}, outcome.Err
	}
	return result, nil
}

// classifyOpenAIError adapts a go-openai error into the retry package's
// classifiable retry.UpstreamError shape.
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		return &retry.UpstreamError{StatusCode: apiErr.HTTPStatusCode, Code: code, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &retry.UpstreamError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
