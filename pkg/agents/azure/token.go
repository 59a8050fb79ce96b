package azure

import (
	"context"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// DefaultScope is the audience of the hosted agent service.
const DefaultScope = "https://ai.azure.com/.default"

// TokenProvider yields a bearer token for each request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type aadTokenProvider struct {
	cred  azcore.TokenCredential
	scope string

	mu      sync.Mutex
	cached  string
	expires time.Time
}

// NewAADTokenProvider wraps an azidentity credential and refreshes the
// token shortly before it expires.
func NewAADTokenProvider(cred azcore.TokenCredential, scope string) TokenProvider {
	if scope == "" {
		scope = DefaultScope
	}
	return &aadTokenProvider{cred: cred, scope: scope}
}

func (p *aadTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != "" && time.Until(p.expires) > 2*time.Minute {
		return p.cached, nil
	}
	tk, err := p.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{p.scope}})
	if err != nil {
		return "", err
	}
	p.cached = tk.Token
	p.expires = tk.ExpiresOn
	return p.cached, nil
}

type staticTokenProvider string

// StaticTokenProvider returns the same token forever, for local
// endpoints and tests.
func StaticTokenProvider(token string) TokenProvider {
	return staticTokenProvider(token)
}

func (s staticTokenProvider) Token(context.Context) (string, error) {
	return string(s), nil
}
