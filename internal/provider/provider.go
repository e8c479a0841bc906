// Package provider holds the provider binding data model and the
// ChatClient boundary the orchestrator drives every turn through: encode
// the already-transformed context via internal/wire (the orchestrator runs
// internal/transform before calling a client), issue the dialect-specific
// streaming call, and fold the response back into a convo.MessageEntry plus
// its finish reason.
package provider

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// ID enumerates the vendors this module speaks to directly.
type ID string

const (
	IDOpenAI    ID = "openai"
	IDAnthropic ID = "anthropic"
)

// Dialect is which of the two wire shapes a Provider speaks.
type Dialect string

const (
	DialectOpenAI    Dialect = "openai"
	DialectAnthropic Dialect = "anthropic"
)

// Credential is either a bare API key or an OAuth token set. Exactly one of
// APIKey or Token should be set.
type Credential struct {
	APIKey string
	Token  *oauth2.Token
}

// RefreshStrategy exchanges an expiring OAuth token for a fresh one.
type RefreshStrategy interface {
	Refresh(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error)
}

// refreshSkew is how far ahead of expiry a credential is proactively
// refreshed: once time-until-expiry drops below this, Authenticate calls
// the refresh strategy and swaps in the new token before returning.
const refreshSkew = 5 * time.Minute

// ModelListSource resolves the set of models a Provider advertises: either
// a URL the provider serves its own catalog from, or a hardcoded list.
type ModelListSource struct {
	URL    string
	Models []string
}

// Provider is a single configured binding to a vendor: which dialect it
// speaks, where requests go, and how requests are authenticated.
type Provider struct {
	ID       ID
	Dialect  Dialect
	BaseURL  string
	ModelIDs ModelListSource

	credential Credential
	refresh    RefreshStrategy
}

// NewAPIKeyProvider returns a Provider authenticated by a bare API key.
func NewAPIKeyProvider(id ID, dialect Dialect, baseURL, apiKey string) *Provider {
	return &Provider{ID: id, Dialect: dialect, BaseURL: baseURL, credential: Credential{APIKey: apiKey}}
}

// NewOAuthProvider returns a Provider authenticated by an OAuth token,
// refreshed lazily by strategy.
func NewOAuthProvider(id ID, dialect Dialect, baseURL string, token *oauth2.Token, strategy RefreshStrategy) *Provider {
	return &Provider{ID: id, Dialect: dialect, BaseURL: baseURL, credential: Credential{Token: token}, refresh: strategy}
}

// Authenticate returns the API key to present on the wire, refreshing an
// OAuth token first if it is within refreshSkew of expiry.
func (p *Provider) Authenticate(ctx context.Context) (string, error) {
	if p.credential.Token == nil {
		return p.credential.APIKey, nil
	}
	tok := p.credential.Token
	if p.refresh != nil && !tok.Expiry.IsZero() && time.Until(tok.Expiry) < refreshSkew {
		fresh, err := p.refresh.Refresh(ctx, tok)
		if err != nil {
			return "", err
		}
		p.credential.Token = fresh
		tok = fresh
	}
	return tok.AccessToken, nil
}
