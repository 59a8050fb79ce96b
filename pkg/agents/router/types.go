package router

import "github.com/xpanvictor/newscap/pkg/agents/adapters"

type AdapterPack struct {
	Adapter adapters.ChatAdapter
	Name    string
}

type Mux struct {
	RouterPolicy RoutePolicy
	AdapterMap   map[string]AdapterPack
}

// RoutePolicy picks the backend name for a model.
type RoutePolicy interface {
	Select(model string) string
}
