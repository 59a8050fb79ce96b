package ollama

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
	"github.com/presbrey/ollamafarm"
	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/pkg/Logger"
)

// Provider fans chat requests out to whichever registered ollama
// server is currently online.
type Provider struct {
	farm *ollamafarm.Farm
}

func New(cfg config.LLMConfig, lg *Logger.Logger) Provider {
	farm := ollamafarm.New()

	for _, serverURL := range cfg.OllamaURLs {
		// todo: group name and priority
		if err := farm.RegisterURL(serverURL, nil); err != nil {
			lg.Warnf("skipping ollama server %s: %v", serverURL, err)
		}
	}

	return Provider{farm: farm}
}

func (p *Provider) Chat(
	ctx context.Context,
	req api.ChatRequest,
	fn api.ChatResponseFunc,
) error {
	// pick first available client
	ollama := p.farm.First(&ollamafarm.Where{Offline: false})
	if ollama != nil {
		return ollama.Client().Chat(ctx, &req, fn)
	}
	return fmt.Errorf("no ollama server online for model %v", req.Model)
}
