package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/xpanvictor/newscap/pkg/agents/adapters"
)

const (
	BackendOpenAI = "openaichat"
	BackendGemini = "gemini"
	BackendOllama = "ollama"
)

// DefaultRP routes by model family; anything unrecognized lands on a
// local ollama server.
type DefaultRP struct{}

func (*DefaultRP) Select(model string) string {
	switch {
	case strings.HasPrefix(model, "gpt-"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return BackendOpenAI
	case strings.HasPrefix(model, "gemini-"):
		return BackendGemini
	}
	return BackendOllama
}

// New returns a Multiplexer over the registered adapters.
func New(policy RoutePolicy) *Mux {
	if policy == nil {
		policy = &DefaultRP{}
	}
	return &Mux{
		RouterPolicy: policy,
		AdapterMap:   make(map[string]AdapterPack),
	}
}

func (m *Mux) Register(name string, ad adapters.ChatAdapter) {
	m.AdapterMap[name] = AdapterPack{Name: name, Adapter: ad}
}

// Chat implements adapters.ChatAdapter by delegating to the backend
// the policy selects for the requested model.
func (m *Mux) Chat(ctx context.Context, input adapters.ContractInput) (*adapters.ContractOutput, error) {
	name := m.RouterPolicy.Select(input.Model)
	pack, ok := m.AdapterMap[name]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for backend %s (model %s)", name, input.Model)
	}
	return pack.Adapter.Chat(ctx, input)
}
