package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/relaykit/agentcore/internal/convo"
)

const (
	defaultFetchMaxChars  = 10_000
	defaultFetchTimeout   = 15 * time.Second
	defaultFetchMaxBodyMB = 5 << 20
)

// FetchTool fetches a URL's body over HTTP(S) and returns up to a capped
// number of characters. Outbound requests are validated against SSRF:
// only http/https schemes are allowed, and any hostname resolving to a
// private, loopback, link-local, or cloud-metadata address is rejected.
type FetchTool struct {
	client   *http.Client
	maxChars int
}

func NewFetchTool(maxChars int) *FetchTool {
	if maxChars <= 0 {
		maxChars = defaultFetchMaxChars
	}
	return &FetchTool{
		client:   &http.Client{Timeout: defaultFetchTimeout},
		maxChars: maxChars,
	}
}

func (t *FetchTool) Definition() convo.ToolDefinition {
	return convo.ToolDefinition{
		Name:        "fetch",
		Description: "Fetch a URL's content over HTTP(S), truncated to a maximum character count.",
		InputSchema: schema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url":       map[string]any{"type": "string", "description": "URL to fetch (http/https only)."},
				"max_chars": map[string]any{"type": "integer", "minimum": 0, "description": "Maximum characters to return (default: 10000)."},
			},
			"required": []string{"url"},
		}),
	}
}

func (t *FetchTool) PermissionRequest(params json.RawMessage) (convo.PermissionRequest, bool) {
	var in struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(params, &in) != nil || in.URL == "" {
		return convo.PermissionRequest{}, false
	}
	return convo.PermissionRequest{URL: in.URL}, true
}

func (t *FetchTool) ToContent(params json.RawMessage) (string, bool) {
	var in struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(params, &in) != nil || in.URL == "" {
		return "", false
	}
	return "Fetching " + in.URL, true
}

func (t *FetchTool) Execute(ctx context.Context, params json.RawMessage) (Output, error) {
	var in struct {
		URL      string `json:"url"`
		MaxChars int    `json:"max_chars"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return errOutput("invalid parameters: %v", err), nil
	}
	if strings.TrimSpace(in.URL) == "" {
		return errOutput("url is required"), nil
	}
	if err := validateURLForSSRF(in.URL); err != nil {
		return errOutput("%v", err), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.URL, nil)
	if err != nil {
		return errOutput("build request: %v", err), nil
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return errOutput("fetch failed: %v", err), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, defaultFetchMaxBodyMB))
	if err != nil {
		return errOutput("read body: %v", err), nil
	}

	limit := t.maxChars
	if in.MaxChars > 0 && in.MaxChars < limit {
		limit = in.MaxChars
	}
	content := string(body)
	truncated := false
	if runes := []rune(content); limit > 0 && len(runes) > limit {
		content = string(runes[:limit])
		truncated = true
	}

	payload, err := json.MarshalIndent(map[string]any{
		"url":         in.URL,
		"status_code": resp.StatusCode,
		"content":     content,
		"truncated":   truncated,
	}, "", "  ")
	if err != nil {
		return errOutput("encode result: %v", err), nil
	}
	return Output{Content: string(payload), IsError: resp.StatusCode >= 400}, nil
}

func isPrivateOrReservedIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsPrivate() || ip.IsUnspecified() || ip.IsMulticast() {
		return true
	}
	return ip.Equal(net.ParseIP("169.254.169.254"))
}

func validateURLForSSRF(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got: %s", parsed.Scheme)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	lowerHost := strings.ToLower(hostname)
	if lowerHost == "localhost" || strings.HasSuffix(lowerHost, ".localhost") {
		return fmt.Errorf("localhost URLs are not allowed")
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if isPrivateOrReservedIP(ip) {
			return fmt.Errorf("URL resolves to a private or reserved IP address")
		}
	}
	return nil
}
