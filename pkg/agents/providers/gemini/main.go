package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/xpanvictor/newscap/internal/config"
	"google.golang.org/api/option"
)

// Provider wraps the Gemini API client.
type Provider struct {
	client *genai.Client
}

// New creates a new Provider instance.
func New(cfg config.LLMConfig) (*Provider, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	return &Provider{client: client}, nil
}

func (p *Provider) GetModel(modelName string) *genai.GenerativeModel {
	return p.client.GenerativeModel(modelName)
}

// Generate runs one blocking completion against the given model.
func (p *Provider) Generate(
	ctx context.Context,
	model *genai.GenerativeModel,
	parts ...genai.Part,
) (*genai.GenerateContentResponse, error) {
	if p.client == nil {
		return nil, fmt.Errorf("gemini client is not initialized")
	}
	return model.GenerateContent(ctx, parts...)
}

func (p *Provider) Close() error {
	return p.client.Close()
}
