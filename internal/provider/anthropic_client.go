package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/retry"
	"github.com/relaykit/agentcore/internal/wire"
)

// AnthropicClient issues streaming Messages requests against an
// Anthropic-dialect Provider: build the request, open
// client.Messages.NewStreaming, fold each event into a wire.AnthropicDecoder,
// retry the whole call on a transient failure.
type AnthropicClient struct {
	Provider *Provider
	Retry    retry.Config

	newClient func(apiKey, baseURL string) anthropic.Client
}

// NewAnthropicClient returns a client bound to p, retrying per cfg.
func NewAnthropicClient(p *Provider, cfg retry.Config) *AnthropicClient {
	return &AnthropicClient{Provider: p, Retry: cfg}
}

func (c *AnthropicClient) client(apiKey string) anthropic.Client {
	if c.newClient != nil {
		return c.newClient(apiKey, c.Provider.BaseURL)
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.Provider.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.Provider.BaseURL))
	}
	return anthropic.NewClient(opts...)
}

// StreamChat implements ChatClient.
func (c *AnthropicClient) StreamChat(ctx context.Context, reqCtx *convo.Context, modelID string) (ChatResult, error) {
	params, err := wire.EncodeAnthropic(reqCtx, modelID)
	if err != nil {
		return ChatResult{}, fmt.Errorf("anthropic: encode request: %w", err)
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
		stream := c.client(apiKey).Messages.NewStreaming(ctx, params)
		decoder := wire.NewAnthropicDecoder()
		for stream.Next() {
			decoder.Feed(stream.Current())
		}
		if err := stream.Err(); err != nil {
			return ChatResult{}, classifyAnthropicError(err)
		}
		return finalize(decoder), nil
	})
	if outcome.Err != nil {
		return ChatResult{}, outcome.Err
	}
	return result, nil
}

// classifyAnthropicError adapts an anthropic-sdk-go error into the retry
// package's classifiable retry.UpstreamError shape.
func classifyAnthropicError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &retry.UpstreamError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
	}
	return err
}
