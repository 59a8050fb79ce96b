package app

import (
	"fmt"

	"github.com/xpanvictor/newscap/internal/config"
	"github.com/xpanvictor/newscap/pkg/Logger"
	geminiad "github.com/xpanvictor/newscap/pkg/agents/adapters/gemini"
	ollamaad "github.com/xpanvictor/newscap/pkg/agents/adapters/ollama"
	"github.com/xpanvictor/newscap/pkg/agents/adapters/openaichat"
	geminipv "github.com/xpanvictor/newscap/pkg/agents/providers/gemini"
	ollamapv "github.com/xpanvictor/newscap/pkg/agents/providers/ollama"
	"github.com/xpanvictor/newscap/pkg/agents/router"
)

// LLMRouterFactory assembles the chat backends the emulated agent
// service routes models to.
type LLMRouterFactory struct {
	config config.LLMConfig
	logger *Logger.Logger
}

// NewLLMRouterFactory creates a new LLM router factory
func NewLLMRouterFactory(cfg config.LLMConfig, logger *Logger.Logger) *LLMRouterFactory {
	return &LLMRouterFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateRouter registers every configured backend on a fresh mux.
func (f *LLMRouterFactory) CreateRouter() (*router.Mux, error) {
	mux := router.New(nil)
	registered := 0

	if f.config.OpenAIAPIKey != "" {
		mux.Register(router.BackendOpenAI, openaichat.New(f.config))
		registered++
	}

	if f.config.GeminiAPIKey != "" {
		provider, err := geminipv.New(f.config)
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		mux.Register(router.BackendGemini, geminiad.New(provider))
		registered++
	}

	if len(f.config.OllamaURLs) > 0 {
		provider := ollamapv.New(f.config, f.logger)
		mux.Register(router.BackendOllama, ollamaad.New(provider))
		registered++
	}

	if registered == 0 {
		return nil, fmt.Errorf("no chat backends configured for the emulated agent service")
	}

	f.logger.Infof("LLM router created with %d backend(s)", registered)
	return mux, nil
}
