package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// ModelCache is a read-through cache of the model lists providers
// advertise, keyed by provider id. A miss fetches from the provider's
// ModelListSource and populates the entry atomically (the write lock is
// held across the fetch, so racing readers of the same provider wait
// rather than duplicating the request). There is no TTL: Refresh is an
// explicit method, never automatic.
type ModelCache struct {
	client *http.Client

	mu     sync.RWMutex
	models map[ID][]string
}

// NewModelCache returns an empty cache fetching over client; nil means
// http.DefaultClient.
func NewModelCache(client *http.Client) *ModelCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &ModelCache{client: client, models: make(map[ID][]string)}
}

// Models returns the cached model list for p, fetching and populating on
// miss.
func (c *ModelCache) Models(ctx context.Context, p *Provider) ([]string, error) {
	c.mu.RLock()
	cached, ok := c.models[p.ID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.models[p.ID]; ok {
		return cached, nil
	}
	fetched, err := c.fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	c.models[p.ID] = fetched
	return fetched, nil
}

// Refresh re-fetches p's model list unconditionally, replacing whatever the
// cache holds.
func (c *ModelCache) Refresh(ctx context.Context, p *Provider) ([]string, error) {
	fetched, err := c.fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.models[p.ID] = fetched
	c.mu.Unlock()
	return fetched, nil
}

// modelListResponse is the shape both dialects serve from their model-list
// endpoints: a data array of objects carrying an id.
type modelListResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *ModelCache) fetch(ctx context.Context, p *Provider) ([]string, error) {
	if len(p.ModelIDs.Models) > 0 {
		return append([]string(nil), p.ModelIDs.Models...), nil
	}
	if p.ModelIDs.URL == "" {
		return nil, fmt.Errorf("provider %s: no model list source configured", p.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ModelIDs.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("provider %s: build model list request: %w", p.ID, err)
	}
	key, err := p.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider %s: authenticate: %w", p.ID, err)
	}
	switch p.Dialect {
	case DialectAnthropic:
		req.Header.Set("x-api-key", key)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider %s: fetch model list: %w", p.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider %s: model list returned status %d", p.ID, resp.StatusCode)
	}

	var body modelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("provider %s: decode model list: %w", p.ID, err)
	}
	ids := make([]string, 0, len(body.Data))
	for _, m := range body.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
