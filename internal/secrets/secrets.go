// Package secrets resolves named secrets from Azure Key Vault with an
// environment fallback, so the app runs unchanged on a dev box without
// a vault.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/pkg/Logger"
)

type Provider interface {
	Get(ctx context.Context, name string) (string, error)
}

type provider struct {
	client *azsecrets.Client
	logger *Logger.Logger
}

// New builds a provider against the configured vault. A missing vault
// URL or credential failure is not fatal; lookups then come from the
// environment only.
func New(cfg config.VaultConfig, lg *Logger.Logger) Provider {
	p := &provider{logger: lg}
	if cfg.URL == "" {
		lg.Infof("no key vault configured, secrets come from the environment")
		return p
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		lg.Warnf("key vault credential unavailable: %v", err)
		return p
	}
	client, err := azsecrets.NewClient(cfg.URL, cred, nil)
	if err != nil {
		lg.Warnf("key vault client unavailable: %v", err)
		return p
	}
	p.client = client
	return p
}

func (p *provider) Get(ctx context.Context, name string) (string, error) {
	if p.client != nil {
		resp, err := p.client.GetSecret(ctx, name, "", nil)
		if err == nil && resp.Value != nil {
			return *resp.Value, nil
		}
		if err != nil {
			p.logger.Warnf("could not retrieve secret %q from key vault: %v", name, err)
		}
	}
	if value := os.Getenv(EnvName(name)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %s not found", name)
}

// EnvName maps a vault secret name to its environment fallback.
func EnvName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

type staticProvider map[string]string

// Static serves fixed values, for tests.
func Static(values map[string]string) Provider {
	return staticProvider(values)
}

func (s staticProvider) Get(_ context.Context, name string) (string, error) {
	if value, ok := s[name]; ok {
		return value, nil
	}
	return "", fmt.Errorf("secret %s not found", name)
}
